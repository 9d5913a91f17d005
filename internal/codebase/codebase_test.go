package codebase

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBuilder_PreservesOrder tests that packages keep first-declaration order.
func TestBuilder_PreservesOrder(t *testing.T) {
	cb := New("app").
		Type("app.shipping.api", "Label", "app.billing.core.Invoice").
		Type("app.billing.api", "BillingApi").
		Type("app.shipping.api", "Parcel").
		Package("app.empty").
		Build()

	require.Len(t, cb.Packages, 3)
	assert.Equal(t, "app.shipping.api", cb.Packages[0].Path)
	assert.Equal(t, "app.billing.api", cb.Packages[1].Path)
	assert.Equal(t, "app.empty", cb.Packages[2].Path)

	assert.Equal(t, []Type{
		{Name: "Label", Refs: []string{"app.billing.core.Invoice"}},
		{Name: "Parcel"},
	}, cb.Packages[0].Types)
	assert.Empty(t, cb.Packages[2].Types)
	assert.Equal(t, ".", cb.Sep())
}

// TestShuffle_KeepsContent tests that shuffling only reorders packages.
func TestShuffle_KeepsContent(t *testing.T) {
	b := New("app")
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		b.Type("app."+name, "T"+name)
	}
	cb := b.Build()

	shuffled := cb.Shuffle(42)
	assert.ElementsMatch(t, cb.Packages, shuffled.Packages)
	assert.Equal(t, cb.Root, shuffled.Root)
	assert.Equal(t, "app.a", cb.Packages[0].Path, "original must be untouched")

	again := cb.Shuffle(42)
	assert.Equal(t, shuffled.Packages, again.Packages, "same seed, same order")
}

// TestValidate_Errors tests structural validation.
func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name string
		cb   Codebase
	}{
		{"missing root", Codebase{}},
		{"empty path", Codebase{Root: "app", Packages: []Package{{Path: ""}}}},
		{"duplicate", Codebase{Root: "app", Packages: []Package{{Path: "app.a"}, {Path: "app.a"}}}},
		{"unnamed type", Codebase{Root: "app", Packages: []Package{{Path: "app.a", Types: []Type{{}}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.cb.Validate())
		})
	}
}

// TestParseYAML_Valid tests parsing a description.
func TestParseYAML_Valid(t *testing.T) {
	data := []byte(`
root: com.shop
packages:
  - path: com.shop.billing.api
    types:
      - name: BillingApi
        refs: [com.shop.billing.core.Invoice]
  - path: com.shop.billing.core
    types:
      - name: Invoice
`)
	cb, err := ParseYAML(data)
	require.NoError(t, err)
	assert.Equal(t, "com.shop", cb.Root)
	assert.Equal(t, ".", cb.Separator)
	require.Len(t, cb.Packages, 2)
	assert.Equal(t, []string{"com.shop.billing.core.Invoice"}, cb.Packages[0].Types[0].Refs)
}

// TestParseYAML_UnknownField tests strict decoding.
func TestParseYAML_UnknownField(t *testing.T) {
	_, err := ParseYAML([]byte("root: app\npackage: []\n"))
	assert.Error(t, err)
}

// TestParseYAML_Invalid tests validation after decoding.
func TestParseYAML_Invalid(t *testing.T) {
	_, err := ParseYAML([]byte("packages: []\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "root is required")
}

// TestLoadYAML_RoundTrip tests loading a file written by MarshalYAML.
func TestLoadYAML_RoundTrip(t *testing.T) {
	cb := New("app").Type("app.a.api", "A", "app.b.api.B").Type("app.b.api", "B").Build()
	data, err := MarshalYAML(cb)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "codebase.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	loaded, err := LoadYAML(path)
	require.NoError(t, err)
	assert.Equal(t, cb, loaded)
}

// TestLoadYAML_Missing tests a missing file.
func TestLoadYAML_Missing(t *testing.T) {
	_, err := LoadYAML(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

// TestLoadYAML_Fixture tests the checked-in fixture.
func TestLoadYAML_Fixture(t *testing.T) {
	cb, err := LoadYAML("testdata/shop.yaml")
	require.NoError(t, err)
	assert.Equal(t, "com.shop", cb.Root)
	assert.NotEmpty(t, cb.Packages)
}

func TestQualify(t *testing.T) {
	assert.Equal(t, "app.billing.Invoice", Qualify("app.billing", "Invoice"))
}
