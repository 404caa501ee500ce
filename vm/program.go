package vm

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrProgramEmpty is returned when a program source yields zero bytes.
var ErrProgramEmpty = errors.New("vm: program is empty")

// Program is an immutable byte sequence ready to be copied into an
// Interpreter's memory. It performs no opcode validation of its own:
// per the specification, every byte sequence is a legal program.
type Program struct {
	bytes []byte
}

// FromBytes wraps an in-memory byte slice as a Program. The slice is
// copied so the caller may reuse or mutate the original.
func FromBytes(b []byte) (*Program, error) {
	if len(b) == 0 {
		return nil, ErrProgramEmpty
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return &Program{bytes: cp}, nil
}

// FromFile reads the full contents of path and builds a Program from it.
// No trailing newline is trimmed; use NewFromStream for that behavior.
func FromFile(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("vm: opening program file: %w", err)
	}
	defer f.Close()
	return NewFromStream(f, false)
}

// ByteSource yields program bytes one at a time. Next returns each byte
// with done false, and done true once the source is exhausted; a byte
// returned together with done true is ignored.
type ByteSource interface {
	Next() (b byte, done bool)
}

// FromIter drains src and builds a Program from the collected bytes.
func FromIter(src ByteSource) (*Program, error) {
	var buf []byte
	for {
		b, done := src.Next()
		if done {
			break
		}
		buf = append(buf, b)
	}
	return FromBytes(buf)
}

// NewFromStream reads r to completion and builds a Program from it.
// ErrProgramEmpty is returned for an empty stream. When
// ignoreTrailingNewline is set, at most one trailing '\n' is dropped,
// along with an immediately preceding '\r'; no other whitespace is
// stripped.
func NewFromStream(r io.Reader, ignoreTrailingNewline bool) (*Program, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("vm: reading program stream: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrProgramEmpty
	}
	if ignoreTrailingNewline && data[len(data)-1] == '\n' {
		data = data[:len(data)-1]
		if len(data) > 0 && data[len(data)-1] == '\r' {
			data = data[:len(data)-1]
		}
	}
	if len(data) == 0 {
		return nil, ErrProgramEmpty
	}
	return &Program{bytes: bytes.Clone(data)}, nil
}

// Memory returns the program's bytes. The caller must not mutate the
// returned slice.
func (p *Program) Memory() []byte {
	return p.bytes
}

// Len returns the number of bytes in the program.
func (p *Program) Len() int {
	return len(p.bytes)
}
