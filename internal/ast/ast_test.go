package ast

import (
	"testing"

	"github.com/puqiar/go-fig/internal/lexer"
)

func tok(t lexer.TokenType, lit string) lexer.Token {
	return lexer.Token{Type: t, Literal: lit, Pos: lexer.Position{Line: 1, Column: 1}}
}

func TestBinaryExpressionString(t *testing.T) {
	expr := &BinaryExpression{
		Token:    tok(lexer.PLUS, "+"),
		Left:     &IntegerLiteral{Token: tok(lexer.NUMBER, "1"), Value: 1},
		Operator: OpAdd,
		Right:    &IntegerLiteral{Token: tok(lexer.NUMBER, "2"), Value: 2},
	}
	if expr.String() != "(1 + 2)" {
		t.Errorf("got %q", expr.String())
	}
}

func TestProgramPosition(t *testing.T) {
	empty := &Program{}
	if pos := empty.Pos(); pos.Line != 1 || pos.Column != 1 {
		t.Errorf("empty program position: %v", pos)
	}
}

func TestAccessModifier(t *testing.T) {
	tests := []struct {
		public, constant bool
		want             AccessModifier
	}{
		{false, false, AccessNormal},
		{false, true, AccessConst},
		{true, false, AccessPublic},
		{true, true, AccessPublicConst},
	}
	for _, tt := range tests {
		got := NewAccessModifier(tt.public, tt.constant)
		if got != tt.want {
			t.Errorf("NewAccessModifier(%v, %v) = %v", tt.public, tt.constant, got)
		}
		if got.IsPublic() != tt.public || got.IsConst() != tt.constant {
			t.Errorf("%v flags mismatch", got)
		}
	}
}

func TestTokenOperatorMapping(t *testing.T) {
	tests := []struct {
		tokType lexer.TokenType
		want    Operator
	}{
		{lexer.PLUS, OpAdd},
		{lexer.AND, OpAnd},
		{lexer.DOUBLE_AMPERSAND, OpAnd},
		{lexer.OR, OpOr},
		{lexer.DOUBLE_PIPE, OpOr},
		{lexer.BANG, OpNot},
		{lexer.NOT, OpNot},
		{lexer.EQ, OpEqual},
		{lexer.WALRUS, OpNone},
		{lexer.POWER, OpPow},
	}
	for _, tt := range tests {
		if got := TokenOperator(tt.tokType); got != tt.want {
			t.Errorf("TokenOperator(%s) = %v, want %v", tt.tokType, got, tt.want)
		}
	}
}

func TestOperatorClassification(t *testing.T) {
	if !OpNot.IsUnary() || !OpBitNot.IsUnary() || !OpSub.IsUnary() {
		t.Error("expected !, ~, - to be unary")
	}
	if OpAdd.IsUnary() {
		t.Error("+ is not a unary operator")
	}
	if !OpAssign.IsAssignment() || !OpAddAssign.IsAssignment() {
		t.Error("expected = and += to classify as assignments")
	}
	if OpEqual.IsAssignment() {
		t.Error("== is not an assignment")
	}
}

func TestParametersString(t *testing.T) {
	params := Parameters{
		Positional: []Param{{Name: "a", TypeName: "Int"}, {Name: "b", TypeName: "Any"}},
		Defaulted: []DefaultParam{{
			Name: "c", TypeName: "Any",
			Default: &IntegerLiteral{Token: tok(lexer.NUMBER, "1"), Value: 1},
		}},
	}
	if got := params.String(); got != "a: Int, b, c = 1" {
		t.Errorf("got %q", got)
	}

	variadic := Parameters{Variadic: "args"}
	if !variadic.IsVariadic() || variadic.String() != "args..." {
		t.Errorf("got %q", variadic.String())
	}
}
