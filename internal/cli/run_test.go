package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const demoManifest = `
program: {
	name:  "demo"
	world: "world.txt"
	ticks: 4
	rules: [
		{name: "swap", before: "swap-b.txt", after: "swap-a.txt"},
	]
}
`

// writeDemoProgram lays out a program whose single rule repaints the red
// region blue, reaching a fixed point after one tick.
func writeDemoProgram(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"program.cue": demoManifest,
		"world.txt":   "RB\n",
		"swap-b.txt":  "R\n",
		"swap-a.txt":  "B\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return filepath.Join(dir, "program.cue")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRunReachesFixedPoint(t *testing.T) {
	path := writeDemoProgram(t)

	out, err := execute(t, "run", path)
	require.NoError(t, err)
	assert.Contains(t, out, "demo: ")
	assert.Contains(t, out, "reached fixed point")
	assert.Contains(t, out, "BB")
}

func TestRunJSONReport(t *testing.T) {
	path := writeDemoProgram(t)

	out, err := execute(t, "--format", "json", "run", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"status": "ok"`)
	assert.Contains(t, out, `"fixed_point": true`)
	assert.Contains(t, out, `"final": "BB\n"`)
}

func TestRunWritesFinalWorld(t *testing.T) {
	path := writeDemoProgram(t)
	outPath := filepath.Join(t.TempDir(), "final.txt")

	_, err := execute(t, "run", "--out", outPath, path)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "BB\n", string(data))
}

func TestRunRecordsJournal(t *testing.T) {
	path := writeDemoProgram(t)
	dbPath := filepath.Join(t.TempDir(), "trace.db")

	_, err := execute(t, "run", "--db", dbPath, path)
	require.NoError(t, err)

	out, err := execute(t, "log", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "rules=1")
	assert.Contains(t, out, "finished")
}

func TestRunMissingManifest(t *testing.T) {
	_, err := execute(t, "run", filepath.Join(t.TempDir(), "absent.cue"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRunRejectsUnknownOutExtension(t *testing.T) {
	path := writeDemoProgram(t)

	_, err := execute(t, "run", "--out", filepath.Join(t.TempDir(), "final.bmp"), path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
