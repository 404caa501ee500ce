package vm

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsZeroLength(t *testing.T) {
	_, err := New(0, 8)
	var archErr *ArchLengthError
	assert.ErrorAs(t, err, &archErr)
}

func TestNewRejectsWidthOutOfRange(t *testing.T) {
	_, err := New(16, 5)
	var widthErr *ArchWidthError
	require.ErrorAs(t, err, &widthErr)

	_, err = New(16, 33)
	require.ErrorAs(t, err, &widthErr)
}

func TestNewStartsZeroed(t *testing.T) {
	in, err := New(16, 8)
	require.NoError(t, err)
	assert.EqualValues(t, 0, in.PC())
	assert.EqualValues(t, 0, in.SP())
	assert.False(t, in.NZ())
	for _, b := range in.Memory() {
		assert.Zero(t, b)
	}
}

func TestCopyProgramRejectsOversized(t *testing.T) {
	in, err := New(2, 8)
	require.NoError(t, err)
	p, err := FromBytes([]byte{1, 2, 3})
	require.NoError(t, err)

	err = in.CopyProgram(p)
	var tooLarge *ProgramTooLargeError
	assert.ErrorAs(t, err, &tooLarge)
}

func TestCopyProgramTranslatesMnemonics(t *testing.T) {
	in, err := New(8, 8)
	require.NoError(t, err)
	p, err := FromBytes([]byte(";H?"))
	require.NoError(t, err)
	require.NoError(t, in.CopyProgram(p))

	assert.Equal(t, byte(NOP), in.Memory()[0])
	assert.Equal(t, byte(HALT), in.Memory()[1])
	// '?' is not a reserved mnemonic, stored verbatim.
	assert.Equal(t, byte('?'), in.Memory()[2])
	// untouched cells beyond the program stay at their prior value (zero).
	assert.Zero(t, in.Memory()[3])
}

func TestCopyProgramResetsRegisters(t *testing.T) {
	in, err := New(8, 8)
	require.NoError(t, err)
	p, err := FromBytes([]byte(";;;"))
	require.NoError(t, err)
	in.Step(nil, nil) // PC moves off zero before load
	require.NoError(t, in.CopyProgram(p))
	assert.EqualValues(t, 0, in.PC())
	assert.EqualValues(t, 0, in.SP())
	assert.False(t, in.NZ())
}

func TestResetIdempotent(t *testing.T) {
	in, err := New(8, 8)
	require.NoError(t, err)
	in.Reset()
	st := in.Reset()
	assert.Equal(t, RESET, st.Op)
	assert.True(t, st.Success)
}

func loadMnemonics(t *testing.T, l uint32, w int, src string) *Interpreter {
	t.Helper()
	in, err := New(l, w)
	require.NoError(t, err)
	p, err := FromBytes([]byte(src))
	require.NoError(t, err)
	require.NoError(t, in.CopyProgram(p))
	return in
}

func run(in *Interpreter, input *bytes.Reader, output *bytes.Buffer, maxSteps int) (executed int, last Statement) {
	for i := 0; i < maxSteps; i++ {
		last = in.Step(input, output)
		executed++
		if last.Op == HALT {
			break
		}
	}
	return executed, last
}

// Scenario 1: echo-until-zero.
func TestScenarioEchoUntilZero(t *testing.T) {
	in := loadMnemonics(t, 15, 8, "LIzHO]")
	input := bytes.NewReader([]byte{0x41, 0x42, 0x00})
	var output bytes.Buffer

	_, last := run(in, input, &output, 60)

	assert.Equal(t, "AB", output.String())
	assert.Equal(t, HALT, last.Op)
}

// Scenario 2: arithmetic.
func TestScenarioArithmetic(t *testing.T) {
	in := loadMnemonics(t, 15, 8, "0.0..+O")
	var output bytes.Buffer

	for i := 0; i < 7; i++ {
		in.Step(nil, &output)
	}

	assert.Equal(t, []byte{0x03}, output.Bytes())
	assert.True(t, in.NZ())
}

// Scenario 3: skip. Per the canonical SKIPn formula (PC <- PC+n+1 mod L),
// three steps over ";2;;;H" run NOP, then SKIP2 (PC 1 -> 4), then the NOP
// at index 4, leaving PC pointing at the HALT cell for the next step.
func TestScenarioSkip(t *testing.T) {
	in := loadMnemonics(t, 15, 8, ";2;;;H")
	var last Statement
	for i := 0; i < 3; i++ {
		last = in.Step(nil, nil)
	}
	assert.Equal(t, NOP, last.Op)
	assert.EqualValues(t, 5, in.PC())

	last = in.Step(nil, nil)
	assert.Equal(t, HALT, last.Op)
}

// Scenario 4: wraparound.
func TestScenarioWraparound(t *testing.T) {
	in := loadMnemonics(t, 4, 8, "....")
	for i := 0; i < 4; i++ {
		in.Step(nil, nil)
	}
	assert.EqualValues(t, 4, in.Memory()[0])
	assert.EqualValues(t, 0, in.PC())
	assert.EqualValues(t, 0, in.SP())
}

// Scenario 5: division by zero.
func TestScenarioDivisionByZero(t *testing.T) {
	in := loadMnemonics(t, 15, 8, "00/")
	for i := 0; i < 3; i++ {
		in.Step(nil, nil)
	}
	top := in.Memory()[in.SP()]
	next := in.Memory()[(in.SP()+1)%in.L()]
	assert.EqualValues(t, 0xFF, top)
	assert.EqualValues(t, 0x00, next)
	assert.True(t, in.NZ())
}

// Scenario 6: BRAN with no TARGET degrades to NOP.
func TestScenarioBranNoTarget(t *testing.T) {
	in := loadMnemonics(t, 15, 8, "B;;;")
	in.Step(nil, nil)
	assert.EqualValues(t, 1, in.PC())
	assert.EqualValues(t, 0, in.SP())
	assert.False(t, in.NZ())
}

func TestSPTGTMustNotFindTargetAtOrBeforePC(t *testing.T) {
	in := loadMnemonics(t, 8, 8, "T;G;;;;;")
	in.Step(nil, nil) // TARGET marker itself, PC 0 -> 1
	in.Step(nil, nil) // NOP, PC 1 -> 2
	in.Step(nil, nil) // SPTGT at index 2; the only TARGET is behind PC
	assert.EqualValues(t, 0, in.SP(), "SPTGT must not match a TARGET at or before PC")
}

func TestBRANWrapsToZeroWhenTargetAtLastCell(t *testing.T) {
	in := loadMnemonics(t, 4, 8, "B;;T")
	in.Step(nil, nil)
	assert.EqualValues(t, 0, in.PC())
}

func TestENDLMustNotFindLoopAtOrAfterPC(t *testing.T) {
	// No LOOP marker precedes the ENDL at index 2, so it must degrade to
	// a plain advance rather than search past itself or wrap around.
	in := loadMnemonics(t, 8, 8, ";;];;;;;")
	in.Step(nil, nil) // NOP, PC 0 -> 1
	in.Step(nil, nil) // NOP, PC 1 -> 2
	in.Step(nil, nil) // ENDL at index 2, no LOOP found, PC 2 -> 3
	assert.EqualValues(t, 3, in.PC())
}

func TestInvariantsHoldAfterEverySteps(t *testing.T) {
	in := loadMnemonics(t, 16, 8, "+-*/^&|()~.,")
	var output bytes.Buffer
	for i := 0; i < 60; i++ {
		in.Step(nil, &output)
		assert.Less(t, in.PC(), in.L())
		assert.Less(t, in.SP(), in.L())
		for _, c := range in.Memory() {
			assert.LessOrEqual(t, int(c), 255)
		}
	}
}
