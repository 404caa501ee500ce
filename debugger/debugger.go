// Package debugger provides a thin controller around a vm.Interpreter,
// exposing the high-level command surface (load, reset, step, inspect)
// that a shell or other UI layers on top of. It owns no I/O streams of
// its own; callers supply them per call.
package debugger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Kerollmops/reustmann/vm"
)

// ErrNoInterpreter is returned by any command that requires an
// interpreter when none has been created yet.
var ErrNoInterpreter = errors.New("debugger: no interpreter is set")

// InterpreterCreationError wraps the reason vm.New rejected a
// requested (L, W) pair.
type InterpreterCreationError struct {
	Reason error
}

func (e *InterpreterCreationError) Error() string {
	return fmt.Sprintf("debugger: creating interpreter: %v", e.Reason)
}

func (e *InterpreterCreationError) Unwrap() error { return e.Reason }

// ProgramLoadError wraps the reason a program failed to load.
type ProgramLoadError struct {
	Path   string
	Reason error
}

func (e *ProgramLoadError) Error() string {
	return fmt.Sprintf("debugger: loading program %q: %v", e.Path, e.Reason)
}

func (e *ProgramLoadError) Unwrap() error { return e.Reason }

// Debugger is a controller owning an optional interpreter plus
// bookkeeping a UI needs across commands: a monotonic step counter and
// the name of the last-loaded program.
type Debugger struct {
	interp *vm.Interpreter

	cycles      uint64
	lastProgram string
	last        vm.Statement
}

// New returns a Debugger with no interpreter set.
func New() *Debugger {
	return &Debugger{}
}

// HasInterpreter reports whether an interpreter has been created.
func (d *Debugger) HasInterpreter() bool {
	return d.interp != nil
}

// Interpreter returns the current interpreter, or nil if none is set.
func (d *Debugger) Interpreter() *vm.Interpreter {
	return d.interp
}

// Cycles returns the total number of steps executed across all Step
// calls since the current interpreter was set; SetInterpreter and
// UnsetInterpreter zero it. It survives Reset: the cycle count
// describes work done, not machine state.
func (d *Debugger) Cycles() uint64 {
	return d.cycles
}

// LastProgram returns the path of the most recently loaded program, or
// the empty string if none has been loaded.
func (d *Debugger) LastProgram() string {
	return d.lastProgram
}

// SetInterpreter replaces the current interpreter with a freshly
// constructed one of the given architecture. Any loaded program and
// cycle history is discarded along with the old interpreter.
func (d *Debugger) SetInterpreter(l uint32, w int) error {
	in, err := vm.New(l, w)
	if err != nil {
		return &InterpreterCreationError{Reason: err}
	}
	d.interp = in
	d.cycles = 0
	d.lastProgram = ""
	d.last = vm.Statement{}
	return nil
}

// UnsetInterpreter discards the current interpreter, if any.
func (d *Debugger) UnsetInterpreter() {
	d.interp = nil
	d.cycles = 0
	d.lastProgram = ""
	d.last = vm.Statement{}
}

// LoadProgram reads the program at path and copies it into the current
// interpreter's memory. If no interpreter exists yet, one is created
// with L set to the program's length and W set to 8, matching the
// byte-oriented architecture a freshly loaded file implies.
func (d *Debugger) LoadProgram(path string, ignoreTrailingNewline bool) error {
	f, err := os.Open(path)
	if err != nil {
		return &ProgramLoadError{Path: path, Reason: err}
	}
	defer f.Close()

	p, err := vm.NewFromStream(f, ignoreTrailingNewline)
	if err != nil {
		return &ProgramLoadError{Path: path, Reason: err}
	}

	if d.interp == nil {
		if err := d.SetInterpreter(uint32(p.Len()), 8); err != nil {
			return err
		}
	}

	if err := d.interp.CopyProgram(p); err != nil {
		return &ProgramLoadError{Path: path, Reason: err}
	}
	d.lastProgram = filepath.Clean(path)
	return nil
}

// Reset resets the current interpreter's registers. The cycle counter
// is not reset: it tracks total work performed by this Debugger, and a
// reset machine can still go on to execute more cycles.
func (d *Debugger) Reset() (vm.Statement, error) {
	if d.interp == nil {
		return vm.Statement{}, ErrNoInterpreter
	}
	d.last = d.interp.Reset()
	return d.last, nil
}

// Step executes up to n instructions, stopping early if HALT runs. It
// returns the number of instructions actually executed, a snapshot of
// the resulting state, and the last Statement produced.
func (d *Debugger) Step(n int, input io.ByteReader, output io.ByteWriter) (int, vm.Snapshot, vm.Statement, error) {
	if d.interp == nil {
		return 0, vm.Snapshot{}, vm.Statement{}, ErrNoInterpreter
	}
	executed := 0
	for i := 0; i < n; i++ {
		d.last = d.interp.Step(input, output)
		d.cycles++
		executed++
		if d.last.Op == vm.HALT {
			break
		}
	}
	return executed, d.interp.Snapshot(), d.last, nil
}

// Infos returns a snapshot of the current interpreter's state.
func (d *Debugger) Infos() (vm.Snapshot, error) {
	if d.interp == nil {
		return vm.Snapshot{}, ErrNoInterpreter
	}
	return d.interp.Snapshot(), nil
}
