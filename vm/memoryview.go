package vm

import (
	"fmt"
	"strings"
)

// MemoryView is a read-only, bidirectional view over a VM memory cell
// array. It does not own the underlying bytes and renders no state of
// its own; it exists so a disassembler or debugger can ask, for any
// cell, both "what opcode is this" and "how should a human read it",
// without duplicating the decode table.
type MemoryView struct {
	cells []byte
}

// NewMemoryView wraps cells for disassembly. The view aliases cells; it
// does not copy them.
func NewMemoryView(cells []byte) MemoryView {
	return MemoryView{cells: cells}
}

// Len returns the number of cells in the view.
func (m MemoryView) Len() int {
	return len(m.cells)
}

// At returns the raw byte stored in cell i.
func (m MemoryView) At(i int) byte {
	return m.cells[i]
}

// OpcodeAt decodes the opcode that cell i executes as.
func (m MemoryView) OpcodeAt(i int) Opcode {
	return Decode(m.cells[i])
}

// MnemonicAt returns the short mnemonic character for the opcode stored
// at cell i.
func (m MemoryView) MnemonicAt(i int) byte {
	return ToMnemonic(m.OpcodeAt(i))
}

// LongMnemonicAt returns the long mnemonic for the opcode stored at
// cell i.
func (m MemoryView) LongMnemonicAt(i int) string {
	return ToLong(m.OpcodeAt(i))
}

// Disassemble renders every cell as its short mnemonic, in address
// order, one character per cell.
func (m MemoryView) Disassemble() string {
	out := make([]byte, len(m.cells))
	for i := range m.cells {
		out[i] = m.MnemonicAt(i)
	}
	return string(out)
}

// DisassembleLong renders every cell as "<addr>: <LONG>\n".
func (m MemoryView) DisassembleLong() string {
	var b strings.Builder
	for i := range m.cells {
		fmt.Fprintf(&b, "%d: %s\n", i, m.LongMnemonicAt(i))
	}
	return b.String()
}
