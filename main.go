package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	archLength uint32
	archWidth  int
	ignoreNL   bool
	historyFile string
)

var rootCmd = &cobra.Command{
	Use:   "reustmann [program]",
	Short: "Reustmann abstract machine interpreter and debugger",
	Long: `reustmann runs and inspects programs for the Reustmann abstract
machine: a fixed-memory stack VM in which every byte sequence is a
legal, executable program. Run with no arguments to enter the
interactive debugger shell, or give it a program file to load and
immediately drop into the shell with it ready to step.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRoot,
}

func init() {
	rootCmd.Flags().Uint32Var(&archLength, "length", 0, "architecture length L in cells (default: program size)")
	rootCmd.Flags().IntVar(&archWidth, "width", 8, "architecture width W in bits [6, 32] (used with --length; an interpreter sized from a program has W=8)")
	rootCmd.Flags().BoolVar(&ignoreNL, "ignore-trailing-newline", true, "drop one trailing newline when loading a program")
	rootCmd.Flags().StringVar(&historyFile, "history", defaultHistoryPath(), "line-editing history file")
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
}

// runRoot starts the shell and, if --length was given, constructs the
// interpreter up front. A failure at that point is the only thing that
// aborts startup with a non-zero exit code; a bad program path is
// reported and left for the user to retry from the shell.
func runRoot(cmd *cobra.Command, args []string) error {
	sh, err := newShell(historyFile)
	if err != nil {
		return err
	}
	defer sh.Close()

	if archLength > 0 {
		if err := sh.dbg.SetInterpreter(archLength, archWidth); err != nil {
			return err
		}
	}

	if len(args) == 1 {
		if err := sh.dbg.LoadProgram(args[0], ignoreNL); err != nil {
			sh.printErr(err)
		} else {
			sh.printOK("loaded %s", args[0])
		}
	}

	sh.Run()
	return nil
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".reustmann_history"
	}
	return home + "/.reustmann_history"
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
