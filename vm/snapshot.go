package vm

// Snapshot is a read-only, independent projection of interpreter state,
// safe to retain after the Interpreter that produced it has taken
// further steps. It never aliases the interpreter's live memory.
type Snapshot struct {
	Memory []byte
	PC     uint32
	SP     uint32
	NZ     bool
	Last   Statement
}

// Snapshot captures a copy of the interpreter's current state.
func (in *Interpreter) Snapshot() Snapshot {
	mem := make([]byte, len(in.memory))
	copy(mem, in.memory)
	return Snapshot{
		Memory: mem,
		PC:     in.pc,
		SP:     in.sp,
		NZ:     in.nz,
		Last:   in.last,
	}
}

// View returns a MemoryView over the snapshot's memory, for
// disassembly and display.
func (s Snapshot) View() MemoryView {
	return NewMemoryView(s.Memory)
}
