package vm

import "fmt"

// Statement is the result of executing a single instruction: which
// opcode ran, and whether it completed without a recoverable I/O
// failure. HALT is a normal statement, not an error; the caller's step
// loop is what decides to stop on it.
type Statement struct {
	Op      Opcode
	Success bool
}

// ArchLengthError reports an out-of-range memory length L.
type ArchLengthError struct {
	L uint64
}

func (e *ArchLengthError) Error() string {
	return fmt.Sprintf("vm: architecture length %d out of range [1, 2^32)", e.L)
}

// ArchWidthError reports an out-of-range cell bit width W.
type ArchWidthError struct {
	W int
}

func (e *ArchWidthError) Error() string {
	return fmt.Sprintf("vm: architecture width %d out of range [6, 32]", e.W)
}

// ProgramTooLargeError reports a program longer than the interpreter's
// memory.
type ProgramTooLargeError struct {
	ProgramLen int
	L          uint32
}

func (e *ProgramTooLargeError) Error() string {
	return fmt.Sprintf("vm: program of %d bytes does not fit in %d cells", e.ProgramLen, e.L)
}

// Interpreter is the Reustmann execution engine: a fixed-length byte
// memory plus three registers (PC, SP, NZ), a decoder, and a per-opcode
// evaluator. It is not safe for concurrent use; each Step must run to
// completion before the next begins.
type Interpreter struct {
	l uint32 // architecture length, in cells
	w int    // architecture width, in bits

	memory []byte
	pc     uint32
	sp     uint32
	nz     bool

	last Statement
}

// New constructs an Interpreter with l memory cells, each holding values
// truncated to w bits. All cells start at NOP (0); registers start
// zeroed and NZ starts false.
func New(l uint32, w int) (*Interpreter, error) {
	if l == 0 {
		return nil, &ArchLengthError{L: uint64(l)}
	}
	if w < 6 || w > 32 {
		return nil, &ArchWidthError{W: w}
	}
	return &Interpreter{
		l:      l,
		w:      w,
		memory: make([]byte, l),
	}, nil
}

// L returns the architecture length (number of memory cells).
func (in *Interpreter) L() uint32 { return in.l }

// W returns the architecture width in bits.
func (in *Interpreter) W() int { return in.w }

// PC returns the current program counter.
func (in *Interpreter) PC() uint32 { return in.pc }

// SP returns the current stack pointer.
func (in *Interpreter) SP() uint32 { return in.sp }

// NZ returns the current non-zero flag.
func (in *Interpreter) NZ() bool { return in.nz }

// LastStatement returns the Statement produced by the most recent Step
// or Reset (a Reset, including the one CopyProgram performs, records
// {RESET, true}), or the zero Statement if neither has run since
// construction.
func (in *Interpreter) LastStatement() Statement { return in.last }

// mask returns the bitmask that truncates a stored value to W bits.
func (in *Interpreter) mask() uint32 {
	if in.w >= 32 {
		return 0xFFFFFFFF
	}
	return (uint32(1) << uint(in.w)) - 1
}

// maxValue returns 2^W - 1, the truncation mask's value as a cell
// value (used directly by DIV-by-zero semantics).
func (in *Interpreter) maxValue() uint32 {
	return in.mask()
}

// CopyProgram loads program into memory starting at cell 0 and performs
// an implicit Reset. Bytes are translated per the instruction table: a
// byte matching a reserved mnemonic character is stored as that
// opcode's numeric code; any other byte is stored verbatim (and will
// itself decode as NOP unless it happens to equal a valid opcode
// number). Cells beyond the program's length are left unchanged.
func (in *Interpreter) CopyProgram(p *Program) error {
	mem := p.Memory()
	if uint32(len(mem)) > in.l {
		return &ProgramTooLargeError{ProgramLen: len(mem), L: in.l}
	}
	for i, b := range mem {
		if IsValidMnemonic(b) {
			in.memory[i] = byte(FromMnemonic(b))
		} else {
			in.memory[i] = b
		}
	}
	in.Reset()
	return nil
}

// Reset zeroes PC, SP and NZ. Memory contents are untouched. Reset is
// idempotent and always succeeds.
func (in *Interpreter) Reset() Statement {
	in.pc = 0
	in.sp = 0
	in.nz = false
	in.last = Statement{Op: RESET, Success: true}
	return in.last
}

// Memory returns the interpreter's memory cells. The caller must not
// retain or mutate the returned slice across further Step calls; use
// Snapshot for an independent copy.
func (in *Interpreter) Memory() []byte {
	return in.memory
}
