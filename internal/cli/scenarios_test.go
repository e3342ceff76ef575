package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `name: add_and_like
description: Add a recipe and like it
user:
  id: u-1
  name: Aki
steps:
  - op: add_recipe
    as: curry
    content:
      title: Curry
  - op: like
    recipe: curry
    expect:
      liked: true
assertions:
  - type: recipe
    recipe: curry
    likes: 1
`

const failingScenario = `name: wrong_count
description: Asserts a like count that never happens
user:
  id: u-1
steps:
  - op: add_recipe
    as: curry
    content:
      title: Curry
assertions:
  - type: recipe
    recipe: curry
    likes: 5
`

func writeScenario(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestTestCommand_UpdateThenCompare(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "add_and_like.yaml", passingScenario)

	out, err := execute(t, "", "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ add_and_like (golden updated)")

	golden := filepath.Join(dir, "golden", "add_and_like.golden")
	require.FileExists(t, golden)

	out, err = execute(t, "", "test", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ add_and_like\n")
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total")

	require.NoError(t, os.WriteFile(golden, []byte(`{"scenario_name":"add_and_like","trace":[]}`), 0644))
	out, err = execute(t, "", "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "trace does not match golden file")
}

func TestTestCommand_MatchesHarnessGoldens(t *testing.T) {
	src := filepath.Join("..", "harness", "testdata")
	dir := t.TempDir()
	for _, name := range []string{"like_undo_redo", "edit_rollback", "social"} {
		data, err := os.ReadFile(filepath.Join(src, "scenarios", name+".yaml"))
		require.NoError(t, err)
		writeScenario(t, dir, name+".yaml", string(data))

		golden, err := os.ReadFile(filepath.Join(src, "golden", name+".golden"))
		require.NoError(t, err)
		writeScenario(t, dir, filepath.Join("golden", name+".golden"), string(golden))
	}

	out, err := execute(t, "", "test", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Test Summary: 3 passed, 0 failed, 3 total")
}

func TestTestCommand_AssertionFailure(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "wrong_count.yaml", failingScenario)

	out, err := execute(t, "", "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong_count")
	assert.Contains(t, out, "1 failed")
}

func TestTestCommand_Filter(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "add_and_like.yaml", passingScenario)
	writeScenario(t, dir, "nested/wrong_count.yml", failingScenario)

	files, err := findScenarioFiles(dir, "")
	require.NoError(t, err)
	assert.Len(t, files, 2)

	files, err = findScenarioFiles(dir, "add_*")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(dir, "add_and_like.yaml"), files[0])

	out, err := execute(t, "", "test", dir, "--filter", "add_*")
	require.NoError(t, err)
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")

	_, err = findScenarioFiles(dir, "[")
	assert.Error(t, err)

	_, err = execute(t, "", "test", dir, "--filter", "[")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommand_SkipsGoldenDir(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "golden/stray.yaml", passingScenario)

	out, err := execute(t, "", "test", dir)
	require.NoError(t, err)
	assert.Equal(t, "No scenarios found.\n", out)
}

func TestTestCommand_JSON(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "add_and_like.yaml", passingScenario)

	out, err := execute(t, "", "--format", "json", "test", dir)
	require.NoError(t, err)

	var result TestResult
	decodeData(t, out, &result)
	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 1, result.Total)
	require.Len(t, result.Scenarios, 1)
	assert.Equal(t, "add_and_like", result.Scenarios[0].Name)
}

func TestTestCommand_MissingDir(t *testing.T) {
	_, err := execute(t, "", "test", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("scenarios", "golden", "social.golden"),
		goldenFilePath(filepath.Join("scenarios", "social.yaml")))
}

func TestPlayCommand_KeepsWrites(t *testing.T) {
	dir := t.TempDir()
	scenario := writeScenario(t, dir, "add_and_like.yaml", passingScenario)
	db := filepath.Join(dir, "notebook.db")

	out, err := execute(t, "", "--db", db, "play", scenario)
	require.NoError(t, err)
	assert.Contains(t, out, "add_and_like\n")
	assert.Contains(t, out, "[1] add_recipe curry  Added recipe \"Curry\"  (undo 1, redo 0)")
	assert.Contains(t, out, "✓ passed")

	out, err = execute(t, "", "--db", db, "recipe", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Curry")
}

func TestPlayCommand_Failure(t *testing.T) {
	dir := t.TempDir()
	scenario := writeScenario(t, dir, "wrong_count.yaml", failingScenario)

	out, err := execute(t, "", "--db", filepath.Join(dir, "notebook.db"), "play", scenario)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ failed")
}

func TestPlayCommand_BadScenario(t *testing.T) {
	dir := t.TempDir()
	scenario := writeScenario(t, dir, "bad.yaml", "name: [unterminated\n")

	_, err := execute(t, "", "--db", filepath.Join(dir, "notebook.db"), "play", scenario)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
