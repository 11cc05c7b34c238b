package ast

import (
	"bytes"
	"strings"

	"github.com/puqiar/go-fig/internal/lexer"
)

// BlockStatement represents { stmt; stmt; ... }.
type BlockStatement struct {
	Token      lexer.Token // the '{' token
	Statements []Statement
}

func (bs *BlockStatement) statementNode()       {}
func (bs *BlockStatement) TokenLiteral() string { return bs.Token.Literal }
func (bs *BlockStatement) Pos() lexer.Position  { return bs.Token.Pos }
func (bs *BlockStatement) String() string {
	var out bytes.Buffer
	out.WriteString("{ ")
	for _, s := range bs.Statements {
		out.WriteString(s.String())
		out.WriteString(" ")
	}
	out.WriteString("}")
	return out.String()
}

// ExpressionStatement wraps an expression in statement position.
type ExpressionStatement struct {
	Token      lexer.Token
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExpressionStatement) Pos() lexer.Position  { return es.Token.Pos }
func (es *ExpressionStatement) String() string       { return es.Expression.String() + ";" }

// TypeFollowsValue is the sentinel declared-type of a `:=` definition: the
// slot's declared type is taken from the initializer at evaluation time.
const TypeFollowsValue = "(Followed)"

// VarDefStatement represents `var`/`const` declarations.
// TypeName is "Any" when no annotation was written and TypeFollowsValue for
// walrus definitions. Value may be nil.
type VarDefStatement struct {
	Token    lexer.Token // the 'var' or 'const' token
	Name     string
	TypeName string
	Value    Expression
	IsConst  bool
	IsPublic bool
}

func (vd *VarDefStatement) statementNode()       {}
func (vd *VarDefStatement) TokenLiteral() string { return vd.Token.Literal }
func (vd *VarDefStatement) Pos() lexer.Position  { return vd.Token.Pos }
func (vd *VarDefStatement) String() string {
	var out bytes.Buffer
	if vd.IsPublic {
		out.WriteString("public ")
	}
	if vd.IsConst {
		out.WriteString("const ")
	} else {
		out.WriteString("var ")
	}
	out.WriteString(vd.Name)
	if vd.TypeName != "Any" && vd.TypeName != TypeFollowsValue {
		out.WriteString(": " + vd.TypeName)
	}
	if vd.Value != nil {
		if vd.TypeName == TypeFollowsValue {
			out.WriteString(" := ")
		} else {
			out.WriteString(" = ")
		}
		out.WriteString(vd.Value.String())
	}
	out.WriteString(";")
	return out.String()
}

// FunctionDefStatement represents a named function definition.
// ReturnType is "Any" when no `->` annotation was written.
type FunctionDefStatement struct {
	Token      lexer.Token // the 'func' token
	Name       string
	Params     Parameters
	ReturnType string
	Body       *BlockStatement
	IsPublic   bool
}

func (fd *FunctionDefStatement) statementNode()       {}
func (fd *FunctionDefStatement) TokenLiteral() string { return fd.Token.Literal }
func (fd *FunctionDefStatement) Pos() lexer.Position  { return fd.Token.Pos }
func (fd *FunctionDefStatement) String() string {
	var out bytes.Buffer
	if fd.IsPublic {
		out.WriteString("public ")
	}
	out.WriteString("func " + fd.Name + "(" + fd.Params.String() + ")")
	if fd.ReturnType != "Any" {
		out.WriteString(" -> " + fd.ReturnType)
	}
	out.WriteString(" " + fd.Body.String())
	return out.String()
}

// FieldDecl is one field declaration inside a struct body.
// TypeName is "Any" when unannotated; Default may be nil.
type FieldDecl struct {
	Access   AccessModifier
	Name     string
	TypeName string
	Default  Expression
}

func (f FieldDecl) String() string {
	var out bytes.Buffer
	if f.Access != AccessNormal {
		out.WriteString(f.Access.String() + " ")
	}
	out.WriteString(f.Name)
	if f.TypeName != "Any" {
		out.WriteString(": " + f.TypeName)
	}
	if f.Default != nil {
		out.WriteString(" = " + f.Default.String())
	}
	return out.String()
}

// StructDefStatement represents a struct definition. Body holds the method
// (and nested struct) definitions; fields are collected separately.
type StructDefStatement struct {
	Token    lexer.Token // the 'struct' token
	Name     string
	Fields   []FieldDecl
	Body     *BlockStatement
	IsPublic bool
}

func (sd *StructDefStatement) statementNode()       {}
func (sd *StructDefStatement) TokenLiteral() string { return sd.Token.Literal }
func (sd *StructDefStatement) Pos() lexer.Position  { return sd.Token.Pos }
func (sd *StructDefStatement) String() string {
	var out bytes.Buffer
	if sd.IsPublic {
		out.WriteString("public ")
	}
	out.WriteString("struct " + sd.Name + " { ")
	for _, f := range sd.Fields {
		out.WriteString(f.String() + "; ")
	}
	for _, s := range sd.Body.Statements {
		out.WriteString(s.String() + " ")
	}
	out.WriteString("}")
	return out.String()
}

// InterfaceMethod is one method declaration of an interface.
// DefaultBody is nil for abstract methods.
type InterfaceMethod struct {
	Name        string
	Params      Parameters
	ReturnType  string
	DefaultBody *BlockStatement
}

// HasDefaultBody reports whether the method carries a default implementation.
func (m InterfaceMethod) HasDefaultBody() bool { return m.DefaultBody != nil }

func (m InterfaceMethod) String() string {
	s := m.Name + "(" + m.Params.String() + ") -> " + m.ReturnType
	if m.DefaultBody != nil {
		return s + " " + m.DefaultBody.String()
	}
	return s + ";"
}

// InterfaceDefStatement represents an interface definition. Bundles lists the
// names of interfaces whose methods are aggregated into this one.
type InterfaceDefStatement struct {
	Token    lexer.Token // the 'interface' token
	Name     string
	Bundles  []Expression
	Methods  []InterfaceMethod
	IsPublic bool
}

func (id *InterfaceDefStatement) statementNode()       {}
func (id *InterfaceDefStatement) TokenLiteral() string { return id.Token.Literal }
func (id *InterfaceDefStatement) Pos() lexer.Position  { return id.Token.Pos }
func (id *InterfaceDefStatement) String() string {
	var out bytes.Buffer
	if id.IsPublic {
		out.WriteString("public ")
	}
	out.WriteString("interface " + id.Name + " { ")
	if len(id.Bundles) > 0 {
		names := make([]string, len(id.Bundles))
		for i, b := range id.Bundles {
			names[i] = b.String()
		}
		out.WriteString("bundle " + strings.Join(names, ", ") + "; ")
	}
	for _, m := range id.Methods {
		out.WriteString(m.String() + " ")
	}
	out.WriteString("}")
	return out.String()
}

// ImplMethod is one method body of an impl statement.
type ImplMethod struct {
	Name   string
	Params Parameters
	Body   *BlockStatement
}

func (m ImplMethod) String() string {
	return m.Name + "(" + m.Params.String() + ") " + m.Body.String()
}

// ImplementStatement represents `impl Interface for Struct { ... }`.
type ImplementStatement struct {
	Token         lexer.Token // the 'impl' token
	InterfaceName string
	StructName    string
	Methods       []ImplMethod
}

func (is *ImplementStatement) statementNode()       {}
func (is *ImplementStatement) TokenLiteral() string { return is.Token.Literal }
func (is *ImplementStatement) Pos() lexer.Position  { return is.Token.Pos }
func (is *ImplementStatement) String() string {
	var out bytes.Buffer
	out.WriteString("impl " + is.InterfaceName + " for " + is.StructName + " { ")
	for _, m := range is.Methods {
		out.WriteString(m.String() + " ")
	}
	out.WriteString("}")
	return out.String()
}

// ElseIfClause is one `else if` arm of an if statement.
type ElseIfClause struct {
	Condition Expression
	Body      *BlockStatement
}

// IfStatement represents if / else if / else.
type IfStatement struct {
	Token     lexer.Token // the 'if' token
	Condition Expression
	Body      *BlockStatement
	ElseIfs   []ElseIfClause
	Else      *BlockStatement
}

func (is *IfStatement) statementNode()       {}
func (is *IfStatement) TokenLiteral() string { return is.Token.Literal }
func (is *IfStatement) Pos() lexer.Position  { return is.Token.Pos }
func (is *IfStatement) String() string {
	var out bytes.Buffer
	out.WriteString("if " + is.Condition.String() + " " + is.Body.String())
	for _, ei := range is.ElseIfs {
		out.WriteString(" else if " + ei.Condition.String() + " " + ei.Body.String())
	}
	if is.Else != nil {
		out.WriteString(" else " + is.Else.String())
	}
	return out.String()
}

// WhileStatement represents while loops.
type WhileStatement struct {
	Token     lexer.Token // the 'while' token
	Condition Expression
	Body      *BlockStatement
}

func (ws *WhileStatement) statementNode()       {}
func (ws *WhileStatement) TokenLiteral() string { return ws.Token.Literal }
func (ws *WhileStatement) Pos() lexer.Position  { return ws.Token.Pos }
func (ws *WhileStatement) String() string {
	return "while " + ws.Condition.String() + " " + ws.Body.String()
}

// ForStatement represents the C-style for loop. Increment may be nil and is
// restricted by the parser to assignments and expression statements.
type ForStatement struct {
	Token     lexer.Token // the 'for' token
	Init      Statement
	Condition Expression
	Increment Statement
	Body      *BlockStatement
}

func (fs *ForStatement) statementNode()       {}
func (fs *ForStatement) TokenLiteral() string { return fs.Token.Literal }
func (fs *ForStatement) Pos() lexer.Position  { return fs.Token.Pos }
func (fs *ForStatement) String() string {
	var out bytes.Buffer
	out.WriteString("for " + fs.Init.String() + " " + fs.Condition.String() + ";")
	if fs.Increment != nil {
		out.WriteString(" " + fs.Increment.String())
	}
	out.WriteString(" " + fs.Body.String())
	return out.String()
}

// ReturnStatement represents `return expr?;`.
type ReturnStatement struct {
	Token lexer.Token // the 'return' token
	Value Expression  // nil for bare return
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *ReturnStatement) Pos() lexer.Position  { return rs.Token.Pos }
func (rs *ReturnStatement) String() string {
	if rs.Value == nil {
		return "return;"
	}
	return "return " + rs.Value.String() + ";"
}

// BreakStatement represents `break;`.
type BreakStatement struct {
	Token lexer.Token
}

func (bs *BreakStatement) statementNode()       {}
func (bs *BreakStatement) TokenLiteral() string { return bs.Token.Literal }
func (bs *BreakStatement) Pos() lexer.Position  { return bs.Token.Pos }
func (bs *BreakStatement) String() string       { return "break;" }

// ContinueStatement represents `continue;`.
type ContinueStatement struct {
	Token lexer.Token
}

func (cs *ContinueStatement) statementNode()       {}
func (cs *ContinueStatement) TokenLiteral() string { return cs.Token.Literal }
func (cs *ContinueStatement) Pos() lexer.Position  { return cs.Token.Pos }
func (cs *ContinueStatement) String() string       { return "continue;" }

// CatchClause is one catch arm of a try statement. TypeName is "" for an
// untyped catch, which matches any thrown value.
type CatchClause struct {
	VarName  string
	TypeName string
	Body     *BlockStatement
}

func (c CatchClause) String() string {
	if c.TypeName == "" {
		return "catch (" + c.VarName + ") " + c.Body.String()
	}
	return "catch (" + c.VarName + ": " + c.TypeName + ") " + c.Body.String()
}

// TryStatement represents try / catch / finally.
type TryStatement struct {
	Token   lexer.Token // the 'try' token
	Body    *BlockStatement
	Catches []CatchClause
	Finally *BlockStatement
}

func (ts *TryStatement) statementNode()       {}
func (ts *TryStatement) TokenLiteral() string { return ts.Token.Literal }
func (ts *TryStatement) Pos() lexer.Position  { return ts.Token.Pos }
func (ts *TryStatement) String() string {
	var out bytes.Buffer
	out.WriteString("try " + ts.Body.String())
	for _, c := range ts.Catches {
		out.WriteString(" " + c.String())
	}
	if ts.Finally != nil {
		out.WriteString(" finally " + ts.Finally.String())
	}
	return out.String()
}

// ThrowStatement represents `throw expr;`.
type ThrowStatement struct {
	Token lexer.Token // the 'throw' token
	Value Expression
}

func (ts *ThrowStatement) statementNode()       {}
func (ts *ThrowStatement) TokenLiteral() string { return ts.Token.Literal }
func (ts *ThrowStatement) Pos() lexer.Position  { return ts.Token.Pos }
func (ts *ThrowStatement) String() string       { return "throw " + ts.Value.String() + ";" }

// ImportStatement represents `import a.b.c;`.
type ImportStatement struct {
	Token lexer.Token // the 'import' token
	Path  []string
}

func (is *ImportStatement) statementNode()       {}
func (is *ImportStatement) TokenLiteral() string { return is.Token.Literal }
func (is *ImportStatement) Pos() lexer.Position  { return is.Token.Pos }
func (is *ImportStatement) String() string       { return "import " + strings.Join(is.Path, ".") + ";" }
