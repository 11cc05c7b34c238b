// Package fig is the embeddable API of the Fig interpreter. It wires the
// lexer, parser and evaluator together behind a small Engine type.
//
//	engine := fig.New(fig.WithOutput(os.Stdout))
//	script, err := engine.Compile(source)
//	if err != nil { ... }
//	err = script.Run()
package fig

import (
	"io"
	"os"

	"github.com/puqiar/go-fig/internal/ast"
	"github.com/puqiar/go-fig/internal/errors"
	"github.com/puqiar/go-fig/internal/interp"
	"github.com/puqiar/go-fig/internal/lexer"
	"github.com/puqiar/go-fig/internal/parser"
)

// Option configures an Engine.
type Option func(*Engine)

// WithOutput directs print builtins to w. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(e *Engine) { e.output = w }
}

// WithInput directs stdin builtins to r. Defaults to os.Stdin.
func WithInput(r io.Reader) Option {
	return func(e *Engine) { e.input = r }
}

// WithSourcePath sets the path reported in errors and used as the module
// search base.
func WithSourcePath(path string) Option {
	return func(e *Engine) { e.sourcePath = path }
}

// WithLibraryRoot sets the interpreter install directory searched for
// Library modules.
func WithLibraryRoot(dir string) Option {
	return func(e *Engine) { e.libraryRoot = dir }
}

// Engine compiles and runs Fig source.
type Engine struct {
	output      io.Writer
	input       io.Reader
	sourcePath  string
	libraryRoot string
}

// New creates an Engine with the given options.
func New(opts ...Option) *Engine {
	e := &Engine{
		output:     os.Stdout,
		sourcePath: "<script>",
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Script is a compiled program ready to run.
type Script struct {
	engine   *Engine
	program  *ast.Program
	source   string
	warnings []lexer.Warning
}

// Compile tokenizes and parses source. The returned error, if any, is a
// *errors.Error with source context attached; format it with FormatError.
func (e *Engine) Compile(source string) (*Script, error) {
	l := lexer.New(source)
	p := parser.New(l)
	program, perr := p.ParseProgram()
	if perr != nil {
		return nil, perr.WithSource(e.sourcePath, errors.SplitLines(source))
	}
	return &Script{
		engine:   e,
		program:  program,
		source:   source,
		warnings: l.Warnings(),
	}, nil
}

// Warnings returns the non-fatal lexer diagnostics of the compiled script.
func (s *Script) Warnings() []lexer.Warning {
	return s.warnings
}

// Run evaluates the compiled program. Returns nil on success or a
// *errors.Error describing the failure.
func (s *Script) Run() error {
	in := interp.New(s.engine.output)
	if s.engine.input != nil {
		in.SetInput(s.engine.input)
	}
	in.SetSource(s.engine.sourcePath, errors.SplitLines(s.source))
	if s.engine.libraryRoot != "" {
		in.SetLibraryRoot(s.engine.libraryRoot)
	}
	if err := in.Run(s.program); err != nil {
		return err
	}
	return nil
}

// Run compiles and runs source in one step.
func (e *Engine) Run(source string) error {
	script, err := e.Compile(source)
	if err != nil {
		return err
	}
	return script.Run()
}

// FormatError renders an error returned by Compile or Run with source
// context, a caret, and the stack trace. Falls back to err.Error() for
// foreign errors.
func FormatError(err error, color bool) string {
	if fe, ok := err.(*errors.Error); ok {
		return fe.Format(color)
	}
	return err.Error()
}
