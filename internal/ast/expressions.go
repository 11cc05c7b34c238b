package ast

import (
	"bytes"
	"strings"

	"github.com/puqiar/go-fig/internal/lexer"
)

// Identifier represents a variable reference.
type Identifier struct {
	Token lexer.Token // the IDENT token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) String() string       { return i.Value }
func (i *Identifier) Pos() lexer.Position  { return i.Token.Pos }

// IntegerLiteral represents an integer literal value.
type IntegerLiteral struct {
	Token lexer.Token
	Value int64
}

func (il *IntegerLiteral) expressionNode()      {}
func (il *IntegerLiteral) TokenLiteral() string { return il.Token.Literal }
func (il *IntegerLiteral) String() string       { return il.Token.Literal }
func (il *IntegerLiteral) Pos() lexer.Position  { return il.Token.Pos }

// FloatLiteral represents a floating-point literal value.
type FloatLiteral struct {
	Token lexer.Token
	Value float64
}

func (fl *FloatLiteral) expressionNode()      {}
func (fl *FloatLiteral) TokenLiteral() string { return fl.Token.Literal }
func (fl *FloatLiteral) String() string       { return fl.Token.Literal }
func (fl *FloatLiteral) Pos() lexer.Position  { return fl.Token.Pos }

// StringLiteral represents a string literal value.
type StringLiteral struct {
	Token lexer.Token
	Value string
}

func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLiteral) String() string       { return "\"" + sl.Value + "\"" }
func (sl *StringLiteral) Pos() lexer.Position  { return sl.Token.Pos }

// BooleanLiteral represents true or false.
type BooleanLiteral struct {
	Token lexer.Token
	Value bool
}

func (bl *BooleanLiteral) expressionNode()      {}
func (bl *BooleanLiteral) TokenLiteral() string { return bl.Token.Literal }
func (bl *BooleanLiteral) String() string       { return bl.Token.Literal }
func (bl *BooleanLiteral) Pos() lexer.Position  { return bl.Token.Pos }

// NullLiteral represents the null literal.
type NullLiteral struct {
	Token lexer.Token
}

func (nl *NullLiteral) expressionNode()      {}
func (nl *NullLiteral) TokenLiteral() string { return nl.Token.Literal }
func (nl *NullLiteral) String() string       { return "null" }
func (nl *NullLiteral) Pos() lexer.Position  { return nl.Token.Pos }

// UnaryExpression represents a prefix operation such as -x or !b.
type UnaryExpression struct {
	Token    lexer.Token // the operator token
	Operator Operator
	Right    Expression
}

func (ue *UnaryExpression) expressionNode()      {}
func (ue *UnaryExpression) TokenLiteral() string { return ue.Token.Literal }
func (ue *UnaryExpression) Pos() lexer.Position  { return ue.Token.Pos }
func (ue *UnaryExpression) String() string {
	return "(" + ue.Operator.String() + ue.Right.String() + ")"
}

// BinaryExpression represents an infix operation, including assignments.
type BinaryExpression struct {
	Token    lexer.Token // the operator token
	Left     Expression
	Operator Operator
	Right    Expression
}

func (be *BinaryExpression) expressionNode()      {}
func (be *BinaryExpression) TokenLiteral() string { return be.Token.Literal }
func (be *BinaryExpression) Pos() lexer.Position  { return be.Token.Pos }
func (be *BinaryExpression) String() string {
	var out bytes.Buffer
	out.WriteString("(")
	out.WriteString(be.Left.String())
	out.WriteString(" " + be.Operator.String() + " ")
	out.WriteString(be.Right.String())
	out.WriteString(")")
	return out.String()
}

// TernaryExpression represents cond ? a : b.
type TernaryExpression struct {
	Token     lexer.Token // the '?' token
	Condition Expression
	IfTrue    Expression
	IfFalse   Expression
}

func (te *TernaryExpression) expressionNode()      {}
func (te *TernaryExpression) TokenLiteral() string { return te.Token.Literal }
func (te *TernaryExpression) Pos() lexer.Position  { return te.Token.Pos }
func (te *TernaryExpression) String() string {
	return "(" + te.Condition.String() + " ? " + te.IfTrue.String() + " : " + te.IfFalse.String() + ")"
}

// MemberExpression represents member access a.b.
type MemberExpression struct {
	Token  lexer.Token // the '.' token
	Base   Expression
	Member string
}

func (me *MemberExpression) expressionNode()      {}
func (me *MemberExpression) TokenLiteral() string { return me.Token.Literal }
func (me *MemberExpression) Pos() lexer.Position  { return me.Token.Pos }
func (me *MemberExpression) String() string {
	return me.Base.String() + "." + me.Member
}

// IndexExpression represents subscript access a[b].
type IndexExpression struct {
	Token lexer.Token // the '[' token
	Base  Expression
	Index Expression
}

func (ie *IndexExpression) expressionNode()      {}
func (ie *IndexExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *IndexExpression) Pos() lexer.Position  { return ie.Token.Pos }
func (ie *IndexExpression) String() string {
	return ie.Base.String() + "[" + ie.Index.String() + "]"
}

// CallExpression represents a function call.
type CallExpression struct {
	Token     lexer.Token // the '(' token
	Callee    Expression
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CallExpression) Pos() lexer.Position  { return ce.Token.Pos }
func (ce *CallExpression) String() string {
	args := make([]string, len(ce.Arguments))
	for i, a := range ce.Arguments {
		args[i] = a.String()
	}
	return ce.Callee.String() + "(" + strings.Join(args, ", ") + ")"
}

// ListLiteral represents [a, b, c].
type ListLiteral struct {
	Token    lexer.Token // the '[' token
	Elements []Expression
}

func (ll *ListLiteral) expressionNode()      {}
func (ll *ListLiteral) TokenLiteral() string { return ll.Token.Literal }
func (ll *ListLiteral) Pos() lexer.Position  { return ll.Token.Pos }
func (ll *ListLiteral) String() string {
	elems := make([]string, len(ll.Elements))
	for i, e := range ll.Elements {
		elems[i] = e.String()
	}
	return "[" + strings.Join(elems, ", ") + "]"
}

// MapEntry is one key/value pair of a map literal. Entries are kept in
// source order so evaluation stays left-to-right.
type MapEntry struct {
	Key   Expression
	Value Expression
}

// MapLiteral represents {k: v, ...}.
type MapLiteral struct {
	Token   lexer.Token // the '{' token
	Entries []MapEntry
}

func (ml *MapLiteral) expressionNode()      {}
func (ml *MapLiteral) TokenLiteral() string { return ml.Token.Literal }
func (ml *MapLiteral) Pos() lexer.Position  { return ml.Token.Pos }
func (ml *MapLiteral) String() string {
	pairs := make([]string, len(ml.Entries))
	for i, e := range ml.Entries {
		pairs[i] = e.Key.String() + ": " + e.Value.String()
	}
	return "{" + strings.Join(pairs, ", ") + "}"
}

// TupleLiteral represents (a, b, c). The empty tuple is ().
type TupleLiteral struct {
	Token    lexer.Token // the '(' token
	Elements []Expression
}

func (tl *TupleLiteral) expressionNode()      {}
func (tl *TupleLiteral) TokenLiteral() string { return tl.Token.Literal }
func (tl *TupleLiteral) Pos() lexer.Position  { return tl.Token.Pos }
func (tl *TupleLiteral) String() string {
	elems := make([]string, len(tl.Elements))
	for i, e := range tl.Elements {
		elems[i] = e.String()
	}
	return "(" + strings.Join(elems, ", ") + ")"
}

// InitMode selects how a struct-init expression binds its arguments.
type InitMode int

const (
	InitPositional InitMode = iota // Point{1, 2}
	InitNamed                      // Point{x: 1, y: 2}
	InitShorthand                  // Point{x, y}
)

func (m InitMode) String() string {
	switch m {
	case InitNamed:
		return "named"
	case InitShorthand:
		return "shorthand"
	default:
		return "positional"
	}
}

// InitArg is one argument of a struct-init expression. Name is empty in
// positional mode.
type InitArg struct {
	Name  string
	Value Expression
}

// StructInitExpression represents TypeName{...} construction.
type StructInitExpression struct {
	Token lexer.Token // the '{' token
	Type  Expression  // expression naming the struct type
	Args  []InitArg
	Mode  InitMode
}

func (se *StructInitExpression) expressionNode()      {}
func (se *StructInitExpression) TokenLiteral() string { return se.Token.Literal }
func (se *StructInitExpression) Pos() lexer.Position  { return se.Token.Pos }
func (se *StructInitExpression) String() string {
	args := make([]string, len(se.Args))
	for i, a := range se.Args {
		if a.Name != "" && se.Mode == InitNamed {
			args[i] = a.Name + ": " + a.Value.String()
		} else {
			args[i] = a.Value.String()
		}
	}
	return se.Type.String() + "{" + strings.Join(args, ", ") + "}"
}

// Param is a positional function parameter. TypeName is "Any" when no
// annotation was written.
type Param struct {
	Name     string
	TypeName string
}

// DefaultParam is a defaulted function parameter.
type DefaultParam struct {
	Name     string
	TypeName string
	Default  Expression
}

// Parameters describes a function's parameter list. A variadic parameter is
// exclusive with all other parameter kinds.
type Parameters struct {
	Positional []Param
	Defaulted  []DefaultParam
	Variadic   string // variadic parameter name, "" if none
}

// IsVariadic reports whether the list is a single variadic tail.
func (p Parameters) IsVariadic() bool { return p.Variadic != "" }

// Len returns the total number of declarable parameters.
func (p Parameters) Len() int { return len(p.Positional) + len(p.Defaulted) }

func (p Parameters) String() string {
	var parts []string
	for _, pp := range p.Positional {
		s := pp.Name
		if pp.TypeName != "Any" {
			s += ": " + pp.TypeName
		}
		parts = append(parts, s)
	}
	for _, dp := range p.Defaulted {
		s := dp.Name
		if dp.TypeName != "Any" {
			s += ": " + dp.TypeName
		}
		s += " = " + dp.Default.String()
		parts = append(parts, s)
	}
	if p.Variadic != "" {
		parts = append(parts, p.Variadic+"...")
	}
	return strings.Join(parts, ", ")
}

// FunctionLiteral represents an anonymous function expression. Exactly one of
// Body and ExprBody is set; ExprBody holds the `=> expr` form.
type FunctionLiteral struct {
	Token    lexer.Token // the 'func' token
	Params   Parameters
	Body     *BlockStatement
	ExprBody Expression
}

func (fl *FunctionLiteral) expressionNode()      {}
func (fl *FunctionLiteral) TokenLiteral() string { return fl.Token.Literal }
func (fl *FunctionLiteral) Pos() lexer.Position  { return fl.Token.Pos }

// IsExprMode reports whether the literal uses the single-expression body form.
func (fl *FunctionLiteral) IsExprMode() bool { return fl.ExprBody != nil }

func (fl *FunctionLiteral) String() string {
	if fl.IsExprMode() {
		return "func(" + fl.Params.String() + ") => " + fl.ExprBody.String()
	}
	return "func(" + fl.Params.String() + ") " + fl.Body.String()
}
