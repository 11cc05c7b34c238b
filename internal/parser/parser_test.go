package parser

import (
	"testing"

	"github.com/puqiar/go-fig/internal/ast"
	"github.com/puqiar/go-fig/internal/errors"
	"github.com/puqiar/go-fig/internal/lexer"
)

// parseProgram parses input and fails the test on error.
func parseProgram(t *testing.T, input string) *ast.Program {
	t.Helper()
	p := New(lexer.New(input))
	program, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("parse error: %s", err.Error())
	}
	return program
}

// parseError parses input and returns the expected error.
func parseError(t *testing.T, input string) *errors.Error {
	t.Helper()
	p := New(lexer.New(input))
	_, err := p.ParseProgram()
	if err == nil {
		t.Fatalf("expected a parse error for %q", input)
	}
	return err
}

// firstExpr extracts the expression of the first statement.
func firstExpr(t *testing.T, program *ast.Program) ast.Expression {
	t.Helper()
	if len(program.Statements) == 0 {
		t.Fatal("program has no statements")
	}
	es, ok := program.Statements[0].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("statement is %T, not expression statement", program.Statements[0])
	}
	return es.Expression
}

func TestOperatorPrecedence(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1 + 2 * 3;", "(1 + (2 * 3))"},
		{"1 * 2 + 3;", "((1 * 2) + 3)"},
		{"-a * b;", "((-a) * b)"},
		{"!x == y;", "((!x) == y)"},
		{"a + b - c;", "((a + b) - c)"},
		{"2 ** 3 ** 2;", "(2 ** (3 ** 2))"},
		{"a < b == c < d;", "((a < b) == (c < d))"},
		{"a << 1 + 2;", "(a << (1 + 2))"},
		{"a & b | c;", "((a & b) | c)"},
		{"a & b ^ c;", "((a & b) ^ c)"},
		{"x and y or z;", "((x and y) or z)"},
		{"a == b and c != d;", "((a == b) and (c != d))"},
		{"a = b = c;", "(a = (b = c))"},
		{"x += 1 + 2;", "(x += (1 + 2))"},
		{"a is Int == true;", "((a is Int) == true)"},
		{"(1 + 2) * 3;", "((1 + 2) * 3)"},
		{"~a & b;", "((~a) & b)"},
	}

	for _, tt := range tests {
		program := parseProgram(t, tt.input)
		got := firstExpr(t, program).String()
		if got != tt.expected {
			t.Errorf("input %q: expected %s, got %s", tt.input, tt.expected, got)
		}
	}
}

func TestPostfixExpressions(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"a.b.c;", "a.b.c"},
		{"a[1][2];", "a[1][2]"},
		{"f(1, 2);", "f(1, 2)"},
		{"a.b(1)[2];", "a.b(1)[2]"},
		{"cond ? a : b;", "(cond ? a : b)"},
		{"a + b ? c : d;", "((a + b) ? c : d)"},
		{"x = c ? 1 : 2;", "(x = (c ? 1 : 2))"},
		{"c ? 1 : d ? 2 : 3;", "(c ? 1 : (d ? 2 : 3))"},
	}
	for _, tt := range tests {
		program := parseProgram(t, tt.input)
		got := firstExpr(t, program).String()
		if got != tt.expected {
			t.Errorf("input %q: expected %s, got %s", tt.input, tt.expected, got)
		}
	}
}

func TestLiterals(t *testing.T) {
	program := parseProgram(t, `42; 3.14; "hi"; true; null; [1, 2]; ({1: "a"}); (1, 2);`)
	wants := []string{"42", "3.14", `"hi"`, "true", "null", "[1, 2]", `{1: "a"}`, "(1, 2)"}
	if len(program.Statements) != len(wants) {
		t.Fatalf("expected %d statements, got %d", len(wants), len(program.Statements))
	}
	for i, want := range wants {
		es := program.Statements[i].(*ast.ExpressionStatement)
		if es.Expression.String() != want {
			t.Errorf("statement %d: expected %s, got %s", i, want, es.Expression.String())
		}
	}
}

func TestVarDef(t *testing.T) {
	tests := []struct {
		input    string
		name     string
		typeName string
		isConst  bool
		isPublic bool
		hasValue bool
	}{
		{"var x = 5;", "x", "Any", false, false, true},
		{"var n: Int = 5;", "n", "Int", false, false, true},
		{"var u;", "u", "Any", false, false, false},
		{"const k = 1;", "k", "Any", true, false, true},
		{"public const k = 1;", "k", "Any", true, true, true},
		{"var w := 5;", "w", ast.TypeFollowsValue, false, false, true},
	}

	for _, tt := range tests {
		program := parseProgram(t, tt.input)
		vd, ok := program.Statements[0].(*ast.VarDefStatement)
		if !ok {
			t.Fatalf("input %q: statement is %T", tt.input, program.Statements[0])
		}
		if vd.Name != tt.name || vd.TypeName != tt.typeName ||
			vd.IsConst != tt.isConst || vd.IsPublic != tt.isPublic ||
			(vd.Value != nil) != tt.hasValue {
			t.Errorf("input %q: got %+v", tt.input, vd)
		}
	}
}

func TestWalrusWithTypeAnnotationIsError(t *testing.T) {
	err := parseError(t, "var x: Int := 5;")
	if err.Kind != errors.SyntaxError {
		t.Errorf("expected SyntaxError, got %s", err.Kind)
	}
}

func TestFunctionDef(t *testing.T) {
	program := parseProgram(t, "func add(a: Int, b: Int = 2) -> Int { return a + b; }")
	fd, ok := program.Statements[0].(*ast.FunctionDefStatement)
	if !ok {
		t.Fatalf("statement is %T", program.Statements[0])
	}
	if fd.Name != "add" || fd.ReturnType != "Int" {
		t.Errorf("got name=%s returnType=%s", fd.Name, fd.ReturnType)
	}
	if len(fd.Params.Positional) != 1 || fd.Params.Positional[0].Name != "a" || fd.Params.Positional[0].TypeName != "Int" {
		t.Errorf("positional params: %+v", fd.Params.Positional)
	}
	if len(fd.Params.Defaulted) != 1 || fd.Params.Defaulted[0].Name != "b" {
		t.Errorf("defaulted params: %+v", fd.Params.Defaulted)
	}
}

func TestVariadicFunction(t *testing.T) {
	program := parseProgram(t, "func all(args...) { }")
	fd := program.Statements[0].(*ast.FunctionDefStatement)
	if !fd.Params.IsVariadic() || fd.Params.Variadic != "args" {
		t.Errorf("expected variadic parameter args, got %+v", fd.Params)
	}

	err := parseError(t, "func bad(a, rest...) { }")
	if err.Kind != errors.SyntaxError {
		t.Errorf("expected SyntaxError, got %s", err.Kind)
	}
}

func TestFunctionLiteralForms(t *testing.T) {
	program := parseProgram(t, "var f = func(x) => x + 1;")
	vd := program.Statements[0].(*ast.VarDefStatement)
	fl, ok := vd.Value.(*ast.FunctionLiteral)
	if !ok {
		t.Fatalf("value is %T", vd.Value)
	}
	if !fl.IsExprMode() {
		t.Error("expected expression-mode body")
	}

	program = parseProgram(t, "var g = func(x) { return x; };")
	vd = program.Statements[0].(*ast.VarDefStatement)
	fl = vd.Value.(*ast.FunctionLiteral)
	if fl.IsExprMode() {
		t.Error("expected block body")
	}
}

func TestNamedFunctionLiteralIsError(t *testing.T) {
	err := parseError(t, "var f = func named() { };")
	if err.Kind != errors.SyntaxError {
		t.Errorf("expected SyntaxError, got %s", err.Kind)
	}
}

func TestInitModes(t *testing.T) {
	tests := []struct {
		input string
		mode  ast.InitMode
		args  int
	}{
		{`P{"a", 1};`, ast.InitPositional, 2},
		{`P{name: "a", age: 1};`, ast.InitNamed, 2},
		{`P{name, age};`, ast.InitShorthand, 2},
		{`P{};`, ast.InitPositional, 0},
	}
	for _, tt := range tests {
		program := parseProgram(t, tt.input)
		ie, ok := firstExpr(t, program).(*ast.StructInitExpression)
		if !ok {
			t.Fatalf("input %q: expression is %T", tt.input, firstExpr(t, program))
		}
		if ie.Mode != tt.mode {
			t.Errorf("input %q: expected mode %s, got %s", tt.input, tt.mode, ie.Mode)
		}
		if len(ie.Args) != tt.args {
			t.Errorf("input %q: expected %d args, got %d", tt.input, tt.args, len(ie.Args))
		}
	}
}

func TestStructDef(t *testing.T) {
	input := `struct Person {
		public name: String;
		const age: Int = 18;
		func greet() { return name; }
	}`
	program := parseProgram(t, input)
	sd, ok := program.Statements[0].(*ast.StructDefStatement)
	if !ok {
		t.Fatalf("statement is %T", program.Statements[0])
	}
	if sd.Name != "Person" || len(sd.Fields) != 2 || len(sd.Body.Statements) != 1 {
		t.Errorf("got name=%s fields=%d methods=%d", sd.Name, len(sd.Fields), len(sd.Body.Statements))
	}
	if !sd.Fields[0].Access.IsPublic() {
		t.Error("field name should be public")
	}
	if !sd.Fields[1].Access.IsConst() {
		t.Error("field age should be const")
	}
}

func TestVarInsideStructIsError(t *testing.T) {
	err := parseError(t, "struct S { var x = 1; }")
	if err.Kind != errors.SyntaxError {
		t.Errorf("expected SyntaxError, got %s", err.Kind)
	}
}

func TestInterfaceDef(t *testing.T) {
	input := `interface Greet {
		hello() -> String;
		bye() -> String { return "bye"; }
	}`
	program := parseProgram(t, input)
	id, ok := program.Statements[0].(*ast.InterfaceDefStatement)
	if !ok {
		t.Fatalf("statement is %T", program.Statements[0])
	}
	if len(id.Methods) != 2 {
		t.Fatalf("expected 2 methods, got %d", len(id.Methods))
	}
	if id.Methods[0].HasDefaultBody() {
		t.Error("hello should be abstract")
	}
	if !id.Methods[1].HasDefaultBody() {
		t.Error("bye should have a default body")
	}
}

func TestInterfaceBundle(t *testing.T) {
	program := parseProgram(t, "interface C { bundle A, B; extra() -> Int; }")
	id := program.Statements[0].(*ast.InterfaceDefStatement)
	if len(id.Bundles) != 2 {
		t.Errorf("expected 2 bundles, got %d", len(id.Bundles))
	}
	if len(id.Methods) != 1 {
		t.Errorf("expected 1 method, got %d", len(id.Methods))
	}
}

func TestImplement(t *testing.T) {
	program := parseProgram(t, "impl Greet for P { hello() { return 1; } }")
	is, ok := program.Statements[0].(*ast.ImplementStatement)
	if !ok {
		t.Fatalf("statement is %T", program.Statements[0])
	}
	if is.InterfaceName != "Greet" || is.StructName != "P" || len(is.Methods) != 1 {
		t.Errorf("got %+v", is)
	}
}

func TestIfElifElse(t *testing.T) {
	input := `if a { 1; } else if b { 2; } else if c { 3; } else { 4; }`
	program := parseProgram(t, input)
	is, ok := program.Statements[0].(*ast.IfStatement)
	if !ok {
		t.Fatalf("statement is %T", program.Statements[0])
	}
	if len(is.ElseIfs) != 2 || is.Else == nil {
		t.Errorf("expected 2 elifs and an else, got %d elifs else=%v", len(is.ElseIfs), is.Else != nil)
	}
}

func TestConditionWithoutParens(t *testing.T) {
	// a bare identifier condition must not be mistaken for a struct init
	program := parseProgram(t, "while running { work(); }")
	ws, ok := program.Statements[0].(*ast.WhileStatement)
	if !ok {
		t.Fatalf("statement is %T", program.Statements[0])
	}
	if _, ok := ws.Condition.(*ast.Identifier); !ok {
		t.Errorf("condition is %T, expected identifier", ws.Condition)
	}
}

func TestForLoop(t *testing.T) {
	program := parseProgram(t, "for var i = 0; i < 10; i = i + 1 { use(i); }")
	fs, ok := program.Statements[0].(*ast.ForStatement)
	if !ok {
		t.Fatalf("statement is %T", program.Statements[0])
	}
	if fs.Init == nil || fs.Condition == nil || fs.Increment == nil {
		t.Error("expected all three clauses")
	}

	// parenthesized form
	program = parseProgram(t, "for (var i = 0; i < 10; i = i + 1) { use(i); }")
	if _, ok := program.Statements[0].(*ast.ForStatement); !ok {
		t.Errorf("statement is %T", program.Statements[0])
	}
}

func TestForIncrementRejectsControlFlow(t *testing.T) {
	for _, input := range []string{
		"for var i = 0; i < 10; break { }",
		"for var i = 0; i < 10; return 1 { }",
		"for var i = 0; i < 10; { } { }",
	} {
		err := parseError(t, input)
		if err.Kind != errors.SyntaxError {
			t.Errorf("input %q: expected SyntaxError, got %s", input, err.Kind)
		}
	}
}

func TestTryCatchFinally(t *testing.T) {
	input := `try { risky(); } catch (e) { log(e); } catch (e: Error) { log(e); } finally { done(); }`
	program := parseProgram(t, input)
	ts, ok := program.Statements[0].(*ast.TryStatement)
	if !ok {
		t.Fatalf("statement is %T", program.Statements[0])
	}
	if len(ts.Catches) != 2 || ts.Finally == nil {
		t.Fatalf("expected 2 catches and a finally, got %d / %v", len(ts.Catches), ts.Finally != nil)
	}
	if ts.Catches[0].TypeName != "" {
		t.Error("first catch should be untyped")
	}
	if ts.Catches[1].TypeName != "Error" {
		t.Error("second catch should be typed Error")
	}
}

func TestImport(t *testing.T) {
	program := parseProgram(t, "import a.b.c;")
	is, ok := program.Statements[0].(*ast.ImportStatement)
	if !ok {
		t.Fatalf("statement is %T", program.Statements[0])
	}
	if len(is.Path) != 3 || is.Path[0] != "a" || is.Path[2] != "c" {
		t.Errorf("got path %v", is.Path)
	}
}

func TestErrorPositions(t *testing.T) {
	err := parseError(t, "var = 5;")
	if err.Pos.Line != 1 || err.Pos.Column != 5 {
		t.Errorf("expected error at 1:5, got %d:%d", err.Pos.Line, err.Pos.Column)
	}
}

func TestElseWithoutIf(t *testing.T) {
	err := parseError(t, "else { }")
	if err.Kind != errors.SyntaxError {
		t.Errorf("expected SyntaxError, got %s", err.Kind)
	}
}

func TestLexerErrorSurfacesAsSyntaxError(t *testing.T) {
	err := parseError(t, `var s = "unterminated`)
	if err.Kind != errors.SyntaxError {
		t.Errorf("expected SyntaxError, got %s", err.Kind)
	}
}

func TestEmptySourceIsEmptyProgram(t *testing.T) {
	program := parseProgram(t, "")
	if len(program.Statements) != 0 {
		t.Errorf("expected empty program, got %d statements", len(program.Statements))
	}
}

func TestMissingSemicolon(t *testing.T) {
	err := parseError(t, "var x = 5")
	if err.Kind != errors.SyntaxError {
		t.Errorf("expected SyntaxError, got %s", err.Kind)
	}
}
