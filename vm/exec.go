package vm

import "io"

// Step decodes the opcode at PC, executes it, and returns the
// Statement describing what ran. Decode never fails: a memory byte
// outside [0, NumOpcodes) executes as NOP. Step always returns a
// Statement; it can never itself error.
//
// input is consulted by IN, output is written by OUT. Step reads or
// writes at most one byte from/to them, and always before returning.
// Either may be nil if the loaded program is known not to use IN/OUT.
func (in *Interpreter) Step(input io.ByteReader, output io.ByteWriter) Statement {
	op := Decode(in.memory[in.pc])
	success := true

	switch op {
	case NOP:
		in.advancePC(1)

	case RESET:
		in.Reset()
		return in.last

	case HALT:
		// No state change; the host loop treats this as terminal.

	case IN:
		in.sp = in.decIndex(in.sp)
		var b byte
		if input != nil {
			var err error
			b, err = input.ReadByte()
			if err != nil {
				success = false
				b = 0
			}
		} else {
			success = false
		}
		in.storeCell(in.sp, uint32(b))
		in.nz = b != 0
		in.advancePC(1)

	case OUT:
		v := in.loadCell(in.sp)
		if output != nil {
			if err := output.WriteByte(byte(v)); err != nil {
				success = false
			}
		} else {
			success = false
		}
		in.nz = v != 0
		in.sp = in.incIndex(in.sp)
		in.advancePC(1)

	case POP:
		v := in.popCell()
		in.nz = v != 0
		in.advancePC(1)

	case DUP:
		v := in.loadCell(in.sp)
		in.pushCell(v)
		in.nz = v != 0
		in.advancePC(1)

	case PUSHPC:
		in.pushCell(in.pc)
		in.advancePC(1)

	case POPPC:
		in.pc = in.loadCell(in.sp) % in.l
		in.sp = in.incIndex(in.sp)

	case POPSP:
		in.sp = in.loadCell(in.sp) % in.l
		in.advancePC(1)

	case SPTGT:
		if idx, found := in.searchForward(TARGET); found {
			in.sp = idx
		}
		in.advancePC(1)

	case PUSHNZ:
		if in.nz {
			in.pushCell(1)
		} else {
			in.pushCell(0)
		}
		in.advancePC(1)

	case SWAP:
		a := in.sp
		b := in.incIndex(in.sp)
		in.memory[a], in.memory[b] = in.memory[b], in.memory[a]
		in.advancePC(1)

	case PUSH0:
		in.pushCell(0)
		in.nz = false
		in.advancePC(1)

	case ADD:
		in.binaryOp(func(x, y uint32) uint32 { return x + y })

	case SUB:
		in.binaryOp(func(x, y uint32) uint32 { return x - y })

	case INC:
		v := (in.loadCell(in.sp) + 1) & in.mask()
		in.storeCell(in.sp, v)
		in.nz = v != 0
		in.advancePC(1)

	case DEC:
		v := (in.loadCell(in.sp) - 1) & in.mask()
		in.storeCell(in.sp, v)
		in.nz = v != 0
		in.advancePC(1)

	case MUL:
		in.binaryOp(func(x, y uint32) uint32 { return x * y })

	case DIV:
		in.execDiv()

	case XOR:
		in.binaryOp(func(x, y uint32) uint32 { return x ^ y })

	case AND:
		in.binaryOp(func(x, y uint32) uint32 { return x & y })

	case OR:
		in.binaryOp(func(x, y uint32) uint32 { return x | y })

	case SHL:
		v := (in.loadCell(in.sp) << 1) & in.mask()
		in.storeCell(in.sp, v)
		in.nz = v != 0
		in.advancePC(1)

	case SHR:
		v := in.loadCell(in.sp) >> 1
		in.storeCell(in.sp, v)
		in.nz = v != 0
		in.advancePC(1)

	case NOT:
		v := (^in.loadCell(in.sp)) & in.mask()
		in.storeCell(in.sp, v)
		in.nz = v != 0
		in.advancePC(1)

	case BZ:
		in.branchIf(!in.nz)

	case BNZ:
		in.branchIf(in.nz)

	case BEQ:
		in.branchIf(in.peek(1) == in.peek(0))

	case BGT:
		in.branchIf(in.peek(1) > in.peek(0))

	case BLT:
		in.branchIf(in.peek(1) < in.peek(0))

	case BGE:
		in.branchIf(in.peek(1) >= in.peek(0))

	case LOOP:
		in.advancePC(1)

	case ENDL:
		if idx, found := in.searchBackward(LOOP); found {
			in.pc = (idx + 1) % in.l
		} else {
			in.advancePC(1)
		}

	case BRAN:
		if idx, found := in.searchForward(TARGET); found {
			in.pc = (idx + 1) % in.l
		} else {
			in.advancePC(1)
		}

	case BRAP:
		if idx, found := in.searchBackward(TARGET); found {
			in.pc = (idx + 1) % in.l
		} else {
			in.advancePC(1)
		}

	case TARGET:
		in.advancePC(1)

	default: // SKIP1..SKIP9
		n := uint32(op-SKIP1) + 1
		in.advancePC(n + 1)
	}

	in.last = Statement{Op: op, Success: success}
	return in.last
}

// advancePC moves PC forward by n cells, wrapping modulo L.
func (in *Interpreter) advancePC(n uint32) {
	in.pc = (in.pc + n) % in.l
}

// branchIf advances PC by 2 cells (skipping the next instruction) when
// cond holds, otherwise by the default 1.
func (in *Interpreter) branchIf(cond bool) {
	if cond {
		in.advancePC(2)
	} else {
		in.advancePC(1)
	}
}

// incIndex and decIndex wrap a memory index modulo L.
func (in *Interpreter) incIndex(i uint32) uint32 {
	return (i + 1) % in.l
}

func (in *Interpreter) decIndex(i uint32) uint32 {
	return (i + in.l - 1) % in.l
}

// loadCell and storeCell read/write a single memory cell, masking
// stores to the architecture width.
func (in *Interpreter) loadCell(i uint32) uint32 {
	return uint32(in.memory[i])
}

func (in *Interpreter) storeCell(i uint32, v uint32) {
	in.memory[i] = byte(v & in.mask())
}

// pushCell decrements SP (wrapping) and stores v, masked to W bits, at
// the new SP.
func (in *Interpreter) pushCell(v uint32) {
	in.sp = in.decIndex(in.sp)
	in.storeCell(in.sp, v)
}

// popCell reads the cell at SP, then increments SP (wrapping).
func (in *Interpreter) popCell() uint32 {
	v := in.loadCell(in.sp)
	in.sp = in.incIndex(in.sp)
	return v
}

// peek reads the cell at (SP + k) mod L without moving SP.
func (in *Interpreter) peek(k uint32) uint32 {
	return in.loadCell((in.sp + k) % in.l)
}

// binaryOp implements the ADD/SUB/MUL/XOR/AND/OR family: SP moves first,
// then peek(2)/peek(1) read the two operands relative to the new SP
// (peek(2) the deeper, first-pushed operand; peek(1) the one that was
// on top), and the truncated result is stored at the new SP, on top of
// both operands, which stay in memory below it.
func (in *Interpreter) binaryOp(f func(x, y uint32) uint32) {
	in.sp = in.decIndex(in.sp)
	x, y := in.peek(2), in.peek(1)
	result := f(x, y) & in.mask()
	in.storeCell(in.sp, result)
	in.nz = result != 0
	in.advancePC(1)
}

// execDiv implements DIV, including the specified by-zero behavior:
// quotient saturates to 2^W-1 and remainder is 0, with NZ forced true.
// Like binaryOp, SP moves first and the operands are read relative to
// the new SP; the quotient is left on top (at SP) and the remainder in
// the next cell (SP+1), overwriting the divisor.
func (in *Interpreter) execDiv() {
	in.sp = in.decIndex(in.sp)
	a, b := in.peek(2), in.peek(1)
	var quotient, remainder uint32
	if b == 0 {
		quotient = in.maxValue()
		remainder = 0
	} else {
		quotient = (a / b) & in.mask()
		remainder = a % b
	}
	in.storeCell(in.sp, quotient)
	in.storeCell(in.incIndex(in.sp), remainder)
	in.nz = quotient != 0
	in.advancePC(1)
}

// searchForward scans cells (PC+1) .. (L-1) inclusive, with no
// wraparound, for the first cell decoding as target.
func (in *Interpreter) searchForward(target Opcode) (uint32, bool) {
	for i := in.pc + 1; i < in.l; i++ {
		if Decode(in.memory[i]) == target {
			return i, true
		}
	}
	return 0, false
}

// searchBackward scans cells (PC-1) .. 0 inclusive, with no
// wraparound, for the first cell (nearest PC) decoding as target.
func (in *Interpreter) searchBackward(target Opcode) (uint32, bool) {
	if in.pc == 0 {
		return 0, false
	}
	for i := in.pc - 1; ; i-- {
		if Decode(in.memory[i]) == target {
			return i, true
		}
		if i == 0 {
			break
		}
	}
	return 0, false
}
