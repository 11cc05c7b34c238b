// Package errors provides positioned error records for the Fig interpreter.
// Errors are formatted with source context, line/column information, a caret
// pointing at the offending column, and the scope stack trace.
package errors

import (
	"fmt"
	"strings"

	"github.com/puqiar/go-fig/internal/lexer"
)

// Error kinds. Addressable kinds carry a source position; RuntimeError and
// ModuleNotFoundError do not.
const (
	SyntaxError                    = "SyntaxError"
	TypeError                      = "TypeError"
	ValueError                     = "ValueError"
	RedeclarationError             = "RedeclarationError"
	ImmutableError                 = "ImmutableError"
	UndeclaredIdentifierError      = "UndeclaredIdentifierError"
	NoAttributeError               = "NoAttributeError"
	NoSubscriptableError           = "NoSubscriptableError"
	IndexOutOfRangeError           = "IndexOutOfRangeError"
	KeyError                       = "KeyError"
	ArgumentMismatchError          = "ArgumentMismatchError"
	ArgumentTypeMismatchError      = "ArgumentTypeMismatchError"
	DefaultParameterTypeError      = "DefaultParameterTypeError"
	ReturnTypeMismatchError        = "ReturnTypeMismatchError"
	StructInitArgumentMismatch     = "StructInitArgumentMismatchError"
	StructFieldTypeMismatchError   = "StructFieldTypeMismatchError"
	StructFieldRedeclarationError  = "StructFieldRedeclarationError"
	StructFieldNotFoundError       = "StructFieldNotFoundError"
	InterfaceSignatureMismatch     = "InterfaceSignatureMismatchError"
	DuplicateImplementMethodError  = "DuplicateImplementMethodError"
	DuplicateImplementError        = "DuplicateImplementError"
	MissingImplementationError     = "MissingImplementationError"
	RedundantImplementationError   = "RedundantImplementationError"
	UnsupportedOpError             = "UnsupportedOpError"
	UncaughtExceptionError         = "UncaughtExceptionError"
	BreakOutsideLoopError          = "BreakOutsideLoopError"
	ContinueOutsideLoopError       = "ContinueOutsideLoopError"
	RuntimeError                   = "RuntimeError"
	ModuleNotFoundError            = "ModuleNotFoundError"
)

// Error is a single Fig diagnostic with position and source context.
// SourceLines is shared with the parser so the formatter can show the
// offending line. Stack lists scope names outermost first.
type Error struct {
	Kind        string
	Message     string
	Pos         lexer.Position
	SourcePath  string
	SourceLines []string
	Stack       []string
}

// New creates an addressable error at the given position.
func New(kind, message string, pos lexer.Position) *Error {
	return &Error{Kind: kind, Message: message, Pos: pos}
}

// Newf creates an addressable error with a formatted message.
func Newf(kind string, pos lexer.Position, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Pos: pos}
}

// NewRuntime creates an unaddressable error (no source position).
func NewRuntime(kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Addressable reports whether the error carries a source position.
func (e *Error) Addressable() bool {
	return e.Pos.Line > 0
}

// WithSource attaches the source path and lines used by Format.
func (e *Error) WithSource(path string, lines []string) *Error {
	if e.SourcePath == "" {
		e.SourcePath = path
	}
	if e.SourceLines == nil {
		e.SourceLines = lines
	}
	return e
}

// WithStack attaches the scope stack trace (outermost first).
func (e *Error) WithStack(stack []string) *Error {
	if e.Stack == nil {
		e.Stack = stack
	}
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Addressable() {
		return fmt.Sprintf("[%s] %s at %d:%d", e.Kind, e.Message, e.Pos.Line, e.Pos.Column)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Format renders the error with source context and the stack trace.
// If color is true, ANSI color codes are used for terminal output.
func (e *Error) Format(color bool) string {
	var sb strings.Builder

	if color {
		sb.WriteString("\033[1;31m")
	}
	sb.WriteString("[" + e.Kind + "]")
	if color {
		sb.WriteString("\033[0m")
	}
	sb.WriteString(" " + e.Message + "\n")

	if e.Addressable() {
		if e.SourcePath != "" {
			sb.WriteString(fmt.Sprintf("  at %s:%d:%d\n", e.SourcePath, e.Pos.Line, e.Pos.Column))
		} else {
			sb.WriteString(fmt.Sprintf("  at line %d:%d\n", e.Pos.Line, e.Pos.Column))
		}

		if line := e.sourceLine(e.Pos.Line); line != "" {
			lineNumStr := fmt.Sprintf("%4d | ", e.Pos.Line)
			sb.WriteString(lineNumStr)
			sb.WriteString(line)
			sb.WriteString("\n")

			col := e.Pos.Column
			if col < 1 {
				col = 1
			}
			sb.WriteString(strings.Repeat(" ", len(lineNumStr)+col-1))
			if color {
				sb.WriteString("\033[1;31m")
			}
			sb.WriteString("^")
			if color {
				sb.WriteString("\033[0m")
			}
			sb.WriteString("\n")
		}
	}

	if len(e.Stack) > 0 {
		sb.WriteString("[STACK TRACE]\n")
		for i, scope := range e.Stack {
			sb.WriteString(fmt.Sprintf("  #%d %s\n", i, scope))
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

// sourceLine returns the 1-indexed source line, or "".
func (e *Error) sourceLine(n int) string {
	if n < 1 || n > len(e.SourceLines) {
		return ""
	}
	return e.SourceLines[n-1]
}

// SplitLines splits source text into lines for error reporting.
func SplitLines(source string) []string {
	source = strings.ReplaceAll(source, "\r\n", "\n")
	source = strings.ReplaceAll(source, "\r", "\n")
	return strings.Split(source, "\n")
}
