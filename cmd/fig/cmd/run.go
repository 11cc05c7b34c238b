package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/puqiar/go-fig/pkg/fig"
	"github.com/spf13/cobra"
)

var (
	evalExpr     string
	showWarnings bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a Fig file or expression",
	Long: `Execute a Fig program from a file or inline expression.

Examples:
  # Run a script file
  fig run script.fig

  # Evaluate an inline expression
  fig run -e '__fstdout_println("Hello, World!");'`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(_ *cobra.Command, args []string) error {
		if evalExpr != "" {
			return runSource(evalExpr, "<eval>")
		}
		if len(args) == 1 {
			return runFile(args[0])
		}
		return fmt.Errorf("either provide a file path or use -e flag for inline code")
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "evaluate inline code instead of reading from file")
	runCmd.Flags().BoolVarP(&showWarnings, "warnings", "w", false, "print lexer warnings to stderr")
}

// runFile reads and executes a script file.
func runFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to read file %s: %v\n", path, err)
		return err
	}
	return runSource(string(content), path)
}

// runSource compiles and runs source, printing formatted errors to stderr.
func runSource(source, path string) error {
	engine := fig.New(
		fig.WithOutput(os.Stdout),
		fig.WithSourcePath(path),
		fig.WithLibraryRoot(executableDir()),
	)

	script, err := engine.Compile(source)
	if err != nil {
		fmt.Fprintln(os.Stderr, fig.FormatError(err, true))
		return err
	}
	if showWarnings {
		for _, w := range script.Warnings() {
			fmt.Fprintln(os.Stderr, w.String())
		}
	}
	if err := script.Run(); err != nil {
		fmt.Fprintln(os.Stderr, fig.FormatError(err, true))
		return err
	}
	return nil
}

func executableDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}
