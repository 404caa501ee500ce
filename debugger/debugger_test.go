package debugger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerollmops/reustmann/vm"
)

func TestUnsetInterpreterCommandsFail(t *testing.T) {
	d := New()
	assert.False(t, d.HasInterpreter())

	_, err := d.Reset()
	assert.ErrorIs(t, err, ErrNoInterpreter)

	_, _, _, err = d.Step(1, nil, nil)
	assert.ErrorIs(t, err, ErrNoInterpreter)

	_, err = d.Infos()
	assert.ErrorIs(t, err, ErrNoInterpreter)
}

func TestSetInterpreterRejectsBadArch(t *testing.T) {
	d := New()
	err := d.SetInterpreter(0, 8)
	var creationErr *InterpreterCreationError
	assert.ErrorAs(t, err, &creationErr)
}

func TestSetInterpreterThenStep(t *testing.T) {
	d := New()
	require.NoError(t, d.SetInterpreter(16, 8))

	executed, snap, last, err := d.Step(5, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, executed)
	assert.Len(t, snap.Memory, 16)
	assert.Equal(t, last, snap.Last)
	assert.EqualValues(t, 5, d.Cycles())
}

func TestStepStopsEarlyOnHalt(t *testing.T) {
	d := New()
	require.NoError(t, d.SetInterpreter(4, 8))
	p, err := vm.FromBytes([]byte("H;;;"))
	require.NoError(t, err)
	require.NoError(t, d.Interpreter().CopyProgram(p))

	executed, _, last, err := d.Step(10, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, executed)
	assert.Equal(t, "HALT", last.Op.String())
}

func TestCyclesSurviveReset(t *testing.T) {
	d := New()
	require.NoError(t, d.SetInterpreter(16, 8))
	d.Step(3, nil, nil)
	require.EqualValues(t, 3, d.Cycles())

	_, err := d.Reset()
	require.NoError(t, err)
	assert.EqualValues(t, 3, d.Cycles(), "cycle count tracks total work, not machine state")
}

func TestLoadProgramAutoCreatesInterpreter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.rm")
	require.NoError(t, os.WriteFile(path, []byte(";;H"), 0o644))

	d := New()
	require.NoError(t, d.LoadProgram(path, true))

	require.True(t, d.HasInterpreter())
	assert.EqualValues(t, 3, d.Interpreter().L())
	assert.Equal(t, 8, d.Interpreter().W())
	assert.Equal(t, path, d.LastProgram())
}

func TestLoadProgramIgnoresTrailingNewline(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.rm")
	require.NoError(t, os.WriteFile(path, []byte(";;H\n"), 0o644))

	d := New()
	require.NoError(t, d.LoadProgram(path, true))

	assert.EqualValues(t, 3, d.Interpreter().L(), "trailing newline must be dropped before sizing the interpreter")
	assert.Equal(t, byte(vm.HALT), d.Interpreter().Memory()[2])
}

func TestLoadProgramKeepsTrailingNewlineWhenNotIgnoring(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.rm")
	require.NoError(t, os.WriteFile(path, []byte(";;H\n"), 0o644))

	d := New()
	require.NoError(t, d.LoadProgram(path, false))

	assert.EqualValues(t, 4, d.Interpreter().L())
}

func TestLoadProgramMissingFile(t *testing.T) {
	d := New()
	err := d.LoadProgram(filepath.Join(t.TempDir(), "missing.rm"), true)
	var loadErr *ProgramLoadError
	assert.ErrorAs(t, err, &loadErr)
}
