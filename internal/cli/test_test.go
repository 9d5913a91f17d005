package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `name: clean
description: "shipping uses the exposed billing api"
codebase:
  root: com.shop
  packages:
    - path: com.shop.billing.api
      types:
        - name: BillingApi
    - path: com.shop.shipping.api
      types:
        - name: ShippingApi
          refs: [com.shop.billing.api.BillingApi]
expect:
  passed: true
`

const failingScenario = `name: wrong
description: "expects a violation that never happens"
codebase:
  root: com.shop
  packages:
    - path: com.shop.billing.api
      types:
        - name: BillingApi
expect:
  passed: false
  violations:
    - CYCLE:billing->shipping
`

func runTestCommand(t *testing.T, format string, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	return buf, cmd.Execute()
}

func TestTestCommandMissingArgs(t *testing.T) {
	_, err := runTestCommand(t, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentScenariosDir(t *testing.T) {
	buf, err := runTestCommand(t, "text", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "scenarios directory not found")
}

func TestTestCommandEmptyScenariosDir(t *testing.T) {
	buf, err := runTestCommand(t, "text", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No scenarios found")
}

func TestTestCommandEmptyScenariosDirJSON(t *testing.T) {
	buf, err := runTestCommand(t, "json", t.TempDir())
	require.NoError(t, err)

	var response CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &response))
	assert.Equal(t, "ok", response.Status)
}

func TestTestCommandPassingScenario(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "clean.yaml", passingScenario)

	buf, err := runTestCommand(t, "text", dir)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "✓ clean")
	assert.Contains(t, buf.String(), "Test Summary: 1 passed, 0 failed, 1 total")
	assert.Contains(t, buf.String(), "✓ All scenarios passed")
}

func TestTestCommandFailingScenarioJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "clean.yaml", passingScenario)
	writeFile(t, dir, "wrong.yaml", failingScenario)

	buf, err := runTestCommand(t, "json", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeTestFailed, resp.Error.Code)
	assert.Equal(t, 1, resp.Data.Passed)
	assert.Equal(t, 1, resp.Data.Failed)
	assert.Equal(t, 2, resp.Data.Total)
}

func TestTestCommandInvalidScenario(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.yaml", "name: broken\n")

	buf, err := runTestCommand(t, "text", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "✗ broken.yaml")
	assert.Contains(t, buf.String(), "failed to load scenario")
}

func TestTestCommandUpdateThenCompare(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "clean.yaml", passingScenario)

	_, err := runTestCommand(t, "text", dir, "--update")
	require.NoError(t, err)

	golden, err := os.ReadFile(filepath.Join(dir, "golden", "clean.golden"))
	require.NoError(t, err)
	assert.Equal(t, `{"passed":true,"scenario":"clean","truncated":false,"violations":[]}`, string(golden))

	_, err = runTestCommand(t, "text", dir)
	require.NoError(t, err)

	writeFile(t, dir, "golden/clean.golden", `{"passed":false}`)
	buf, err := runTestCommand(t, "text", dir)
	require.Error(t, err)
	assert.Contains(t, buf.String(), "report does not match golden file")
}

func TestTestCommandRunsPackScenarios(t *testing.T) {
	dir := filepath.Join("..", "harness", "testdata", "scenarios")

	buf, err := runTestCommand(t, "text", dir)
	require.NoError(t, err, buf.String())
	assert.Contains(t, buf.String(), "✓ All scenarios passed")
}

func TestTestHelpText(t *testing.T) {
	buf, err := runTestCommand(t, "text", "--help")
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "conformance")
	assert.Contains(t, output, "--update")
	assert.Contains(t, output, "--filter")
	assert.Contains(t, output, "scenarios-dir")
}

func TestFindScenarioFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "cycle.yaml", "")
	writeFile(t, dir, "boundary.yml", "")
	writeFile(t, dir, "notes.txt", "")
	writeFile(t, dir, "golden/cycle.golden", "")

	files, err := findScenarioFiles(dir, "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "cycle.yaml"),
		filepath.Join(dir, "boundary.yml"),
	}, files)
}

func TestFindScenarioFilesWithFilter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "cycle-two.yaml", "")
	writeFile(t, dir, "cycle-three.yaml", "")
	writeFile(t, dir, "boundary.yaml", "")

	files, err := findScenarioFiles(dir, "cycle-*")
	require.NoError(t, err)
	assert.Len(t, files, 2)

	_, err = findScenarioFiles(dir, "[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter pattern")
}

func TestGoldenFilePath(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"scenarios/cycle.yaml", filepath.Join("scenarios", "golden", "cycle.golden")},
		{"/abs/boundary.yml", filepath.Join("/abs", "golden", "boundary.golden")},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, goldenFilePath(tt.input))
	}
}
