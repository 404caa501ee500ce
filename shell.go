package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/Kerollmops/reustmann/debugger"
	"github.com/Kerollmops/reustmann/vm"
)

// shell is the interactive line-editing debugger REPL. It owns the
// line editor and the stdin/stdout byte channels the running program's
// IN/OUT instructions read and write; the debugger.Debugger it drives
// owns no I/O of its own.
type shell struct {
	dbg         *debugger.Debugger
	line        *liner.State
	historyPath string
	lastCmd     string

	in  *stdinByteReader
	out *stdoutByteWriter
}

func newShell(historyPath string) (*shell, error) {
	l := liner.NewLiner()
	l.SetCtrlCAborts(true)

	if f, err := openHistory(historyPath); err == nil {
		l.ReadHistory(f)
		f.Close()
	}

	return &shell{
		dbg:         debugger.New(),
		line:        l,
		historyPath: historyPath,
		in:          &stdinByteReader{},
		out:         &stdoutByteWriter{},
	}, nil
}

func (s *shell) Close() {
	if f, err := createHistory(s.historyPath); err == nil {
		s.line.WriteHistory(f)
		f.Close()
	}
	s.line.Close()
}

func (s *shell) Run() {
	for {
		text, err := s.line.Prompt("reustmann> ")
		if err != nil {
			return // EOF or Ctrl-D
		}
		s.line.AppendHistory(text)

		cmd := strings.TrimSpace(text)
		if cmd == "" {
			cmd = s.lastCmd
			if cmd == "" {
				s.printErr(errNoRepeat)
				continue
			}
		} else {
			s.lastCmd = cmd
		}

		if s.dispatch(cmd) {
			return
		}
	}
}

var errNoRepeat = fmt.Errorf("no previous command to repeat")

// dispatch runs one command line and reports whether the shell should exit.
func (s *shell) dispatch(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	name, args := fields[0], fields[1:]

	switch name {
	case "interpreter", "set_interpreter":
		s.cmdSetInterpreter(args)
	case "unset_interpreter":
		s.dbg.UnsetInterpreter()
		s.printOK("interpreter unset")
	case "infos_interpreter", "inter":
		s.cmdInterpreterInfo()
	case "infos", "info", "i":
		s.cmdInfos()
	case "copy", "load":
		s.cmdLoad(args)
	case "reset", "r":
		s.cmdReset()
	case "step", "s", "next", "n":
		s.cmdStep(args)
	case "exit", "quit", "q", "e":
		return true
	default:
		s.printErr(fmt.Errorf("unknown command %q", name))
	}
	return false
}

func (s *shell) cmdSetInterpreter(args []string) {
	if len(args) != 2 {
		s.printErr(fmt.Errorf("usage: interpreter <L> <W>"))
		return
	}
	l, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		s.printErr(fmt.Errorf("invalid L: %w", err))
		return
	}
	w, err := strconv.Atoi(args[1])
	if err != nil {
		s.printErr(fmt.Errorf("invalid W: %w", err))
		return
	}
	if err := s.dbg.SetInterpreter(uint32(l), w); err != nil {
		s.printErr(err)
		return
	}
	s.printOK("interpreter L=%d W=%d", l, w)
}

func (s *shell) cmdLoad(args []string) {
	if len(args) < 1 {
		s.printErr(fmt.Errorf("usage: load <path> [ignore_nl]"))
		return
	}
	ignoreNL := true
	if len(args) >= 2 {
		v, err := strconv.ParseBool(args[1])
		if err != nil {
			s.printErr(fmt.Errorf("invalid ignore_nl: %w", err))
			return
		}
		ignoreNL = v
	}
	if err := s.dbg.LoadProgram(args[0], ignoreNL); err != nil {
		s.printErr(err)
		return
	}
	s.printOK("loaded %s", args[0])
}

func (s *shell) cmdReset() {
	if _, err := s.dbg.Reset(); err != nil {
		s.printErr(err)
		return
	}
	s.printOK("reset")
}

func (s *shell) cmdStep(args []string) {
	n := 1
	if len(args) >= 1 {
		v, err := strconv.Atoi(args[0])
		if err != nil {
			s.printErr(fmt.Errorf("invalid step count: %w", err))
			return
		}
		n = v
	}
	executed, snap, last, err := s.dbg.Step(n, s.in, s.out)
	if err != nil {
		s.printErr(err)
		return
	}
	color.New(color.FgCyan).Printf("executed %d/%d steps, last=%s (success=%v)\n", executed, n, last.Op, last.Success)
	s.printRegisters(snap)
}

func (s *shell) cmdInterpreterInfo() {
	in := s.dbg.Interpreter()
	if in == nil {
		s.printErr(debugger.ErrNoInterpreter)
		return
	}
	color.New(color.FgGreen).Printf("L=%d W=%d cycles=%d program=%q\n", in.L(), in.W(), s.dbg.Cycles(), s.dbg.LastProgram())
}

func (s *shell) cmdInfos() {
	snap, err := s.dbg.Infos()
	if err != nil {
		s.printErr(err)
		return
	}
	s.printRegisters(snap)
	fmt.Println(snap.View().Disassemble())
}

func (s *shell) printRegisters(snap vm.Snapshot) {
	color.New(color.FgYellow).Printf("PC=%d SP=%d NZ=%v last=%s\n", snap.PC, snap.SP, snap.NZ, snap.Last.Op)
}

func (s *shell) printOK(format string, a ...any) {
	color.New(color.FgGreen).Printf(format+"\n", a...)
}

func (s *shell) printErr(err error) {
	color.New(color.FgRed).Fprintf(os.Stderr, "error: %v\n", err)
}
