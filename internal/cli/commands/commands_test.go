package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDem = `ncols 4
nrows 3
xllcorner 0.0
yllcorner 0.0
cellsize 50.0
NODATA_value -9999
10 10 10 10
10 9 9 -9999
10 9 8 -9999
`

const testPar = `DEMfile dem.asc
dirroot out
resroot res
sim_time 100.0
initial_tstep 10.0
fpfric 0.06
`

// writeTestModel writes a runnable par file and DEM into a temp dir.
func writeTestModel(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dem.asc"), []byte(testDem), 0o644))
	par := filepath.Join(dir, "model.par")
	require.NoError(t, os.WriteFile(par, []byte(testPar), 0o644))
	return par
}

// execute runs a command with args and captures its output.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestNewRunCommand(t *testing.T) {
	cmd := NewRunCommand()

	assert.Equal(t, "run <parfile>", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")

	flags := []string{"until", "dt", "out-dir", "no-state"}
	for _, flag := range flags {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestNewInfoCommand(t *testing.T) {
	cmd := NewInfoCommand()

	assert.Equal(t, "info <parfile>", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")
}

func TestNewRunsCommand(t *testing.T) {
	cmd := NewRunsCommand()

	assert.Equal(t, "runs", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("limit"), "flag limit should exist")
}

func TestRunCommand(t *testing.T) {
	par := writeTestModel(t)

	out, err := execute(t, NewRunCommand(), par, "--no-state")
	require.NoError(t, err)

	assert.Contains(t, out, "Running LFP from 2000-01-01 00:00:00")
	assert.Contains(t, out, "Completed")
	assert.NotContains(t, out, "Run ", "no-state must skip run recording")
}

func TestRunCommandRecordsState(t *testing.T) {
	par := writeTestModel(t)
	t.Chdir(t.TempDir())

	out, err := execute(t, NewRunCommand(), par)
	require.NoError(t, err)
	assert.Contains(t, out, "completed")

	out, err = execute(t, NewRunsCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "LFP")
	assert.Contains(t, out, "kinematic")
}

func TestRunCommandRejectsLateUntil(t *testing.T) {
	par := writeTestModel(t)

	_, err := execute(t, NewRunCommand(), par, "--no-state", "--until", "2000-01-02")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "past the model end time")
}

func TestInfoCommand(t *testing.T) {
	par := writeTestModel(t)

	out, err := execute(t, NewInfoCommand(), par)
	require.NoError(t, err)

	assert.Contains(t, out, "LFP (LISFlood-FP)")
	assert.Contains(t, out, "2000-01-01 00:00:00 to 2000-01-01 00:01:40")
	assert.Contains(t, out, "DEMfile")
	assert.Contains(t, out, "SGCQin")
	assert.Contains(t, out, "Qx")
}

func TestValidateCommand(t *testing.T) {
	par := writeTestModel(t)

	out, err := execute(t, NewValidateCommand(), par)
	require.NoError(t, err)
	assert.Contains(t, out, "OK (6 keys)")
}

func TestValidateCommandMissingKeys(t *testing.T) {
	dir := t.TempDir()
	par := filepath.Join(dir, "bad.par")
	require.NoError(t, os.WriteFile(par, []byte("DEMfile dem.asc\n"), 0o644))

	_, err := execute(t, NewValidateCommand(), par)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required keys")
	assert.Contains(t, err.Error(), "sim_time")
}

func TestRunsCommandEmpty(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := execute(t, NewRunsCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "No recorded runs")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, NewVersionCommand("1.2.3"))
	require.NoError(t, err)
	assert.Contains(t, out, "floodlink v1.2.3")
}
