package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDeclarations = `module: billing: {
	display_name: "Billing"
	exposed: ["api"]
}
module: shipping: allowed_dependencies: ["billing"]
`

func runValidateCommand(t *testing.T, format string, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	return buf, cmd.Execute()
}

func TestValidateValidDeclarations(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "modules.cue", validDeclarations)

	buf, err := runValidateCommand(t, "text", dir)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "✓ 2 module declaration(s) valid")
}

func TestValidateValidDeclarationsJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "modules.cue", validDeclarations)

	buf, err := runValidateCommand(t, "json", dir)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.ElementsMatch(t, []string{"billing", "shipping"}, resp.Data.Modules)
}

func TestValidateNonExistentDirectory(t *testing.T) {
	buf, err := runValidateCommand(t, "text", "/nonexistent/modules")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "Error [E001]")
}

func TestValidateEmptyDirectory(t *testing.T) {
	buf, err := runValidateCommand(t, "text", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "Error [E003]")
}

func TestValidateSelfDependency(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "modules.cue", `module: billing: allowed_dependencies: ["billing"]`)

	buf, err := runValidateCommand(t, "text", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "✗ Validation failed")
	assert.Contains(t, buf.String(), "E104")
}

func TestValidateMultipleErrorsJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "modules.cue", `module: billing: {
	allowed_dependencies: ["billing", "shipping", "shipping"]
	exposed: ["../api"]
}
`)

	buf, err := runValidateCommand(t, "json", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)

	codes := make([]string, len(resp.Data.Errors))
	for i, e := range resp.Data.Errors {
		codes[i] = e.Code
	}
	assert.Contains(t, codes, "E104")
	assert.Contains(t, codes, "E105")
	assert.Contains(t, codes, "E106")
}

func TestValidateSyntaxError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "modules.cue", `module: billing: {`)

	buf, err := runValidateCommand(t, "text", dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "Error [E00")
}
