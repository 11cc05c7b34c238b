package cmd

import (
	"fmt"
	"os"

	"github.com/puqiar/go-fig/internal/errors"
	"github.com/puqiar/go-fig/internal/lexer"
	"github.com/puqiar/go-fig/internal/parser"
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a Fig file and print the AST",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		source := string(content)

		l := lexer.New(source)
		p := parser.New(l)
		program, perr := p.ParseProgram()
		if perr != nil {
			fmt.Fprintln(os.Stderr, perr.WithSource(args[0], errors.SplitLines(source)).Format(true))
			return fmt.Errorf("parsing failed")
		}
		fmt.Println(program.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
}
