package compiler

import (
	"errors"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileDeclarationsBasic(t *testing.T) {
	decls, err := CompileSource(`
		module: billing: {
			display_name: "Billing"
			allowed_dependencies: ["shipping"]
			exposed: ["api", "spi"]
			internal: ["core"]
		}
		module: shipping: {
			display_name: "Shipping"
		}
	`, "modules.cue")
	require.NoError(t, err)
	require.Len(t, decls, 2)

	billing := decls[0]
	assert.Equal(t, "billing", billing.Name)
	assert.Equal(t, "Billing", billing.DisplayName)
	assert.Equal(t, []string{"shipping"}, billing.AllowedDependencies)
	assert.Equal(t, []string{"api", "spi"}, billing.Exposed)
	assert.Equal(t, []string{"core"}, billing.Internal)

	shipping := decls[1]
	assert.Equal(t, "shipping", shipping.Name)
	assert.Nil(t, shipping.AllowedDependencies, "absent list means unrestricted")
	assert.Nil(t, shipping.Exposed)
}

func TestCompileDeclarationsKeepsSourceOrder(t *testing.T) {
	decls, err := CompileSource(`
		module: zeta: {}
		module: alpha: {}
		module: mid: {}
	`, "order.cue")
	require.NoError(t, err)
	require.Len(t, decls, 3)
	assert.Equal(t, "zeta", decls[0].Name)
	assert.Equal(t, "alpha", decls[1].Name)
	assert.Equal(t, "mid", decls[2].Name)
}

func TestCompileDeclarationsEmptyAllowedList(t *testing.T) {
	decls, err := CompileSource(`module: core: allowed_dependencies: []`, "core.cue")
	require.NoError(t, err)
	require.Len(t, decls, 1)
	assert.NotNil(t, decls[0].AllowedDependencies, "present but empty list allows nothing")
	assert.Empty(t, decls[0].AllowedDependencies)
}

func TestCompileDeclarationsQuotedLabel(t *testing.T) {
	decls, err := CompileSource(`module: "order-management": display_name: "Orders"`, "q.cue")
	require.NoError(t, err)
	require.Len(t, decls, 1)
	assert.Equal(t, "order-management", decls[0].Name)
}

func TestCompileDeclarationsNoModules(t *testing.T) {
	decls, err := CompileSource(`other: 1`, "none.cue")
	require.NoError(t, err)
	assert.Empty(t, decls)
}

func TestCompileDeclarationWrongTypes(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		field string
	}{
		{"display name not string", `module: a: display_name: 3`, "display_name"},
		{"exposed not list", `module: a: exposed: "api"`, "exposed"},
		{"internal holds ints", `module: a: internal: [1, 2]`, "internal"},
		{"allowed not list", `module: a: allowed_dependencies: {b: true}`, "allowed_dependencies"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileSource(tt.src, "bad.cue")
			require.Error(t, err)

			var compileErr *CompileError
			require.True(t, errors.As(err, &compileErr))
			assert.Equal(t, tt.field, compileErr.Field)
		})
	}
}

func TestCompileDeclarationNotStruct(t *testing.T) {
	_, err := CompileSource(`module: a: "billing"`, "bad.cue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a struct")
}

func TestCompileDeclarationsCUEError(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		module: a: display_name: "A"
		module: a: display_name: "B"
	`, cue.Filename("conflict.cue"))

	_, err := CompileDeclarations(v)
	assert.Error(t, err)
}

func TestCompileDeclarationSingle(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`module: inventory: { exposed: ["api"] }`)
	require.NoError(t, v.Err())

	decl, err := CompileDeclaration(v.LookupPath(cue.ParsePath("module.inventory")))
	require.NoError(t, err)
	assert.Equal(t, "inventory", decl.Name)
	assert.Equal(t, []string{"api"}, decl.Exposed)
	assert.Empty(t, decl.DisplayName)
}

func TestCompileErrorFormat(t *testing.T) {
	err := &CompileError{Field: "exposed", Message: "exposed must be a list of strings"}
	assert.Equal(t, "exposed: exposed must be a list of strings", err.Error())
}
