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

const minimalScenario = `name: minimal
description: one post
identities: [alice]
setup:
  - airdrop: { to: alice, lamports: 1000000000 }
flow:
  - invoke: createPost
    signer: alice
    args: { nonce: n1, topic: gm, content: hello }
    save: post
assertions:
  - type: record
    address: $post
    kind: post
    expect: { topic: gm }
`

func runTestCommand(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func writeScenario(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name+".yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestTestCommandMissingArgs(t *testing.T) {
	_, err := runTestCommand(t, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentScenariosDir(t *testing.T) {
	_, err := runTestCommand(t, "text", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenarios directory not found")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommandEmptyScenariosDir(t *testing.T) {
	out, err := runTestCommand(t, "text", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found")
}

func TestTestCommandEmptyScenariosDirJSON(t *testing.T) {
	out, err := runTestCommand(t, "json", t.TempDir())
	require.NoError(t, err)

	var response CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	assert.Equal(t, "ok", response.Status)
}

func TestTestCommandPassesWithoutGolden(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "minimal", minimalScenario)

	out, err := runTestCommand(t, "text", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ minimal")
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}

func TestTestCommandUpdateThenCompare(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "minimal", minimalScenario)

	_, err := runTestCommand(t, "text", dir, "--update")
	require.NoError(t, err)
	golden, err := os.ReadFile(filepath.Join(dir, "golden", "minimal.golden"))
	require.NoError(t, err)
	assert.Contains(t, string(golden), `"scenario_name":"minimal"`)

	_, err = runTestCommand(t, "text", dir)
	require.NoError(t, err)

	// A stale golden file fails the scenario.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "golden", "minimal.golden"), []byte("{}\n"), 0644))
	out, err := runTestCommand(t, "text", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "trace does not match golden file")
}

func TestTestCommandMatchesHarnessGolden(t *testing.T) {
	dir := t.TempDir()
	scenario, err := os.ReadFile(filepath.Join("..", "harness", "testdata", "scenarios", "post_lifecycle.yaml"))
	require.NoError(t, err)
	golden, err := os.ReadFile(filepath.Join("..", "harness", "testdata", "golden", "post_lifecycle.golden"))
	require.NoError(t, err)

	writeScenario(t, dir, "post_lifecycle", string(scenario))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "golden"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "golden", "post_lifecycle.golden"), golden, 0644))

	out, err := runTestCommand(t, "text", dir)
	require.NoError(t, err, out)
}

func TestTestCommandFailingScenarioJSON(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "broken", `name: broken
description: unfunded author
identities: [alice]
flow:
  - invoke: createPost
    signer: alice
    args: { nonce: n1, topic: gm, content: hello }
`)

	out, err := runTestCommand(t, "json", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var response struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	assert.Equal(t, "error", response.Status)
	assert.Equal(t, "E_TEST_FAILED", response.Error.Code)
	require.Len(t, response.Data.Scenarios, 1)
	assert.False(t, response.Data.Scenarios[0].Pass)
	assert.NotEmpty(t, response.Data.Scenarios[0].Errors)
}

func TestTestCommandLoadError(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "bad", "name: bad\nbogus: true\n")

	out, err := runTestCommand(t, "text", dir)
	require.Error(t, err)
	assert.Contains(t, out, "✗ bad.yaml")
	assert.Contains(t, out, "failed to load scenario")
}

func TestTestHelpText(t *testing.T) {
	out, err := runTestCommand(t, "text", "--help")
	require.NoError(t, err)

	assert.Contains(t, out, "in-memory ledger")
	assert.Contains(t, out, "--update")
	assert.Contains(t, out, "--filter")
	assert.Contains(t, out, "scenarios-dir")
}

func TestFindScenarioFiles(t *testing.T) {
	tmpDir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "test1.yaml"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "test2.yml"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "ignore.txt"), []byte(""), 0644))

	files, err := findScenarioFiles(tmpDir, "")
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestFindScenarioFilesWithFilter(t *testing.T) {
	tmpDir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "post_create.yaml"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "post_delete.yaml"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "profile_link.yaml"), []byte(""), 0644))

	files, err := findScenarioFiles(tmpDir, "post_*")
	require.NoError(t, err)
	assert.Len(t, files, 2)
	for _, f := range files {
		assert.Contains(t, filepath.Base(f), "post_")
	}
}

func TestFindScenarioFilesSkipsGoldenDir(t *testing.T) {
	tmpDir := t.TempDir()
	subDir := filepath.Join(tmpDir, "subdir")
	goldenDir := filepath.Join(tmpDir, "golden")
	require.NoError(t, os.MkdirAll(subDir, 0755))
	require.NoError(t, os.MkdirAll(goldenDir, 0755))

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "root.yaml"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(subDir, "sub.yaml"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(goldenDir, "stray.yaml"), []byte(""), 0644))

	files, err := findScenarioFiles(tmpDir, "")
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestGoldenFilePath(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"/path/to/scenario.yaml", "/path/to/golden/scenario.golden"},
		{"/path/to/scenario.yml", "/path/to/golden/scenario.golden"},
		{"scenarios/test.yaml", "scenarios/golden/test.golden"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, goldenFilePath(tc.input))
	}
}
