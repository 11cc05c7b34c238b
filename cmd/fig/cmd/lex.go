package cmd

import (
	"fmt"
	"os"

	"github.com/puqiar/go-fig/internal/lexer"
	"github.com/spf13/cobra"
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a Fig file and print the tokens",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", args[0], err)
		}

		l := lexer.New(string(content))
		for {
			tok := l.NextToken()
			if tok.Type == lexer.EOF {
				break
			}
			fmt.Printf("%d:%d\t%s\t%q\n", tok.Pos.Line, tok.Pos.Column, tok.Type, tok.Literal)
			if tok.Type == lexer.ILLEGAL {
				break
			}
		}
		if lerr := l.Err(); lerr != nil {
			fmt.Fprintln(os.Stderr, lerr.Error())
			return fmt.Errorf("lexing failed")
		}
		for _, w := range l.Warnings() {
			fmt.Fprintln(os.Stderr, w.String())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lexCmd)
}
