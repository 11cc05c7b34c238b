package interp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/puqiar/go-fig/internal/errors"
	"github.com/puqiar/go-fig/internal/lexer"
	"github.com/puqiar/go-fig/internal/parser"
)

// runScript parses and evaluates input, returning captured stdout. Fails the
// test on any error.
func runScript(t *testing.T, input string) string {
	t.Helper()
	out, err := tryRun(input)
	if err != nil {
		t.Fatalf("unexpected error: %s", err.Error())
	}
	return out
}

// runError parses and evaluates input, expecting an evaluation error.
func runError(t *testing.T, input string) *errors.Error {
	t.Helper()
	_, err := tryRun(input)
	if err == nil {
		t.Fatalf("expected an error for %q", input)
	}
	return err
}

func tryRun(input string) (string, *errors.Error) {
	l := lexer.New(input)
	p := parser.New(l)
	program, perr := p.ParseProgram()
	if perr != nil {
		return "", perr
	}
	var buf bytes.Buffer
	in := New(&buf)
	in.SetSource("<test>", errors.SplitLines(input))
	if err := in.Run(program); err != nil {
		return buf.String(), err
	}
	return buf.String(), nil
}

// println wraps an expression in a print statement.
func println(expr string) string {
	return "__fstdout_println(" + expr + ");"
}

func TestIntegerArithmetic(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"1 + 2", "3"},
		{"7 - 10", "-3"},
		{"6 * 7", "42"},
		{"6 / 3", "2"},
		{"7 / 2", "3.5"},
		{"2 ** 10", "1024"},
		{"7 % 3", "1"},
		{"(-7) % 3", "2"},
		{"7 % (-3)", "-2"},
		{"1 + 2 * 3", "7"},
		{"(1 + 2) * 3", "9"},
		{"-5 + 10", "5"},
	}
	for _, tt := range tests {
		got := runScript(t, println(tt.expr))
		if got != tt.want+"\n" {
			t.Errorf("%s: expected %q, got %q", tt.expr, tt.want+"\n", got)
		}
	}
}

func TestDoubleArithmetic(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"1.5 + 2.5", "4"},
		{"1 + 0.5", "1.5"},
		{"5.0 / 2", "2.5"},
		{"1.14e3", "1140"},
	}
	for _, tt := range tests {
		got := runScript(t, println(tt.expr))
		if got != tt.want+"\n" {
			t.Errorf("%s: expected %q, got %q", tt.expr, tt.want+"\n", got)
		}
	}
}

func TestIntOverflowWraps(t *testing.T) {
	// two's-complement wraparound on Int overflow
	got := runScript(t, println("9223372036854775807 + 1"))
	if got != "-9223372036854775808\n" {
		t.Errorf("expected wraparound, got %q", got)
	}
}

func TestStringOperations(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{`"foo" + "bar"`, "foobar"},
		{`"ab" * 3`, "ababab"},
		{`"ab" * (-1)`, ""},
		{`"hello"[1]`, "e"},
		{`"héllo".length()`, "5"},
	}
	for _, tt := range tests {
		got := runScript(t, println(tt.expr))
		if got != tt.want+"\n" {
			t.Errorf("%s: expected %q, got %q", tt.expr, tt.want+"\n", got)
		}
	}
}

func TestStringMutation(t *testing.T) {
	script := `
var s = "hello";
s.replace(0, "H");
__fstdout_println(s);
s.insert(5, "!");
__fstdout_println(s);
s.erase(0, 1);
__fstdout_println(s);
__fstdout_println(s.length());
`
	got := runScript(t, script)
	want := "Hello\nHello!\nello!\n5\n"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestComparisons(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"1 < 2", "true"},
		{"2 <= 2", "true"},
		{"3 > 4", "false"},
		{"1 == 1.0", "true"},
		{"0.1 + 0.2 == 0.3", "true"}, // epsilon comparison
		{"1 != 2", "true"},
		{`"abc" < "abd"`, "true"},
		{`"a" == "a"`, "true"},
		{"null == null", "true"},
	}
	for _, tt := range tests {
		got := runScript(t, println(tt.expr))
		if got != tt.want+"\n" {
			t.Errorf("%s: expected %q, got %q", tt.expr, tt.want+"\n", got)
		}
	}
}

func TestLogicalOperators(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"true and false", "false"},
		{"true or false", "true"},
		{"!true", "false"},
		{"not false", "true"},
	}
	for _, tt := range tests {
		got := runScript(t, println(tt.expr))
		if got != tt.want+"\n" {
			t.Errorf("%s: expected %q, got %q", tt.expr, tt.want+"\n", got)
		}
	}
}

func TestShortCircuit(t *testing.T) {
	script := `
func boom() { throw "called"; }
__fstdout_println(false and boom());
__fstdout_println(true or boom());
`
	got := runScript(t, script)
	if got != "false\ntrue\n" {
		t.Errorf("expected short-circuit, got %q", got)
	}
}

func TestBitwise(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"6 & 3", "2"},
		{"6 | 3", "7"},
		{"6 ^ 3", "5"},
		{"1 << 4", "16"},
		{"16 >> 2", "4"},
		{"~0", "-1"},
	}
	for _, tt := range tests {
		got := runScript(t, println(tt.expr))
		if got != tt.want+"\n" {
			t.Errorf("%s: expected %q, got %q", tt.expr, tt.want+"\n", got)
		}
	}
}

func TestDivisionByZero(t *testing.T) {
	err := runError(t, println("1 / 0"))
	if err.Kind != errors.ValueError {
		t.Errorf("expected ValueError, got %s", err.Kind)
	}
	err = runError(t, println("1 % 0"))
	if err.Kind != errors.ValueError {
		t.Errorf("expected ValueError, got %s", err.Kind)
	}
}

func TestTruthinessIsBoolOnly(t *testing.T) {
	err := runError(t, "if 1 { }")
	if err.Kind != errors.TypeError {
		t.Errorf("expected TypeError, got %s", err.Kind)
	}
	err = runError(t, println("1 ? 2 : 3"))
	if err.Kind != errors.TypeError {
		t.Errorf("expected TypeError, got %s", err.Kind)
	}
}

func TestBitwiseRequiresInt(t *testing.T) {
	err := runError(t, println(`1 & "x"`))
	if err.Kind != errors.TypeError {
		t.Errorf("expected TypeError, got %s", err.Kind)
	}
}

func TestVariables(t *testing.T) {
	script := `
var x = 10;
x = 20;
x += 5;
__fstdout_println(x);
`
	if got := runScript(t, script); got != "25\n" {
		t.Errorf("got %q", got)
	}
}

func TestConstRejectsAssignment(t *testing.T) {
	err := runError(t, "const k = 1; k = 2;")
	if err.Kind != errors.ImmutableError {
		t.Errorf("expected ImmutableError, got %s", err.Kind)
	}
}

func TestRedeclaration(t *testing.T) {
	err := runError(t, "var x = 1; var x = 2;")
	if err.Kind != errors.RedeclarationError {
		t.Errorf("expected RedeclarationError, got %s", err.Kind)
	}
}

func TestUndeclaredIdentifier(t *testing.T) {
	err := runError(t, println("missing"))
	if err.Kind != errors.UndeclaredIdentifierError {
		t.Errorf("expected UndeclaredIdentifierError, got %s", err.Kind)
	}
}

func TestDeclaredTypeEnforced(t *testing.T) {
	err := runError(t, `var n: Int = 1; n = "nope";`)
	if err.Kind != errors.TypeError {
		t.Errorf("expected TypeError, got %s", err.Kind)
	}
}

func TestWalrusInfersType(t *testing.T) {
	err := runError(t, `var n := 1; n = "nope";`)
	if err.Kind != errors.TypeError {
		t.Errorf("expected TypeError, got %s", err.Kind)
	}
	// and the happy path still works
	if got := runScript(t, "var n := 1; n = 2; "+println("n")); got != "2\n" {
		t.Errorf("got %q", got)
	}
}

func TestBlockScoping(t *testing.T) {
	script := `
var x = 1;
{
	var x = 2;
	__fstdout_println(x);
}
__fstdout_println(x);
`
	if got := runScript(t, script); got != "2\n1\n" {
		t.Errorf("got %q", got)
	}
}

func TestWhileLoop(t *testing.T) {
	script := `
var i = 0;
var sum = 0;
while i < 5 {
	sum += i;
	i += 1;
}
__fstdout_println(sum);
`
	if got := runScript(t, script); got != "10\n" {
		t.Errorf("got %q", got)
	}
}

func TestForLoop(t *testing.T) {
	script := `
var sum = 0;
for var i = 0; i < 5; i += 1 {
	sum += i;
}
__fstdout_println(sum);
`
	if got := runScript(t, script); got != "10\n" {
		t.Errorf("got %q", got)
	}
}

func TestBreakContinue(t *testing.T) {
	script := `
var out = "";
for var i = 0; i < 10; i += 1 {
	if i == 3 { continue; }
	if i == 6 { break; }
	out += __fvalue_string_from(i);
}
__fstdout_println(out);
`
	if got := runScript(t, script); got != "01245\n" {
		t.Errorf("got %q", got)
	}
}

func TestBreakOutsideLoop(t *testing.T) {
	err := runError(t, "break;")
	if err.Kind != errors.BreakOutsideLoopError {
		t.Errorf("expected BreakOutsideLoopError, got %s", err.Kind)
	}
	err = runError(t, "continue;")
	if err.Kind != errors.ContinueOutsideLoopError {
		t.Errorf("expected ContinueOutsideLoopError, got %s", err.Kind)
	}
}

func TestListOperations(t *testing.T) {
	script := `
var xs = [1, 2, 3];
xs.push(4);
xs[0] = 10;
__fstdout_println(xs.length());
__fstdout_println(xs[0]);
__fstdout_println(xs.get(99));
`
	if got := runScript(t, script); got != "4\n10\nnull\n" {
		t.Errorf("got %q", got)
	}
}

func TestListIndexOutOfRange(t *testing.T) {
	err := runError(t, "var xs = [1, 2]; "+println("xs[2]"))
	if err.Kind != errors.IndexOutOfRangeError {
		t.Errorf("expected IndexOutOfRangeError, got %s", err.Kind)
	}
}

func TestMapOperations(t *testing.T) {
	script := `
var m = {"a": 1};
m["b"] = 2;
__fstdout_println(m["a"]);
__fstdout_println(m.contains("b"));
__fstdout_println(m.get("missing"));
`
	if got := runScript(t, script); got != "1\ntrue\nnull\n" {
		t.Errorf("got %q", got)
	}
}

func TestMapMissingKeyThroughIndex(t *testing.T) {
	err := runError(t, `var m = {"a": 1};`+println(`m["zzz"]`))
	if err.Kind != errors.KeyError {
		t.Errorf("expected KeyError, got %s", err.Kind)
	}
}

func TestNotSubscriptable(t *testing.T) {
	err := runError(t, println("5[0]"))
	if err.Kind != errors.NoSubscriptableError {
		t.Errorf("expected NoSubscriptableError, got %s", err.Kind)
	}
}

func TestFunctionCalls(t *testing.T) {
	script := `
func add(a: Int, b: Int) -> Int { return a + b; }
__fstdout_println(add(2, 3));
`
	if got := runScript(t, script); got != "5\n" {
		t.Errorf("got %q", got)
	}
}

func TestDefaultParameters(t *testing.T) {
	script := `
func greet(name, punct = "!") { return name + punct; }
__fstdout_println(greet("fig"));
__fstdout_println(greet("fig", "?"));
`
	if got := runScript(t, script); got != "fig!\nfig?\n" {
		t.Errorf("got %q", got)
	}
}

func TestVariadicFunction(t *testing.T) {
	script := `
func count(args...) { return args.length(); }
__fstdout_println(count());
__fstdout_println(count(1, 2, 3));
`
	if got := runScript(t, script); got != "0\n3\n" {
		t.Errorf("got %q", got)
	}
}

func TestArgumentErrors(t *testing.T) {
	err := runError(t, "func f(a) { return a; } f();")
	if err.Kind != errors.ArgumentMismatchError {
		t.Errorf("expected ArgumentMismatchError, got %s", err.Kind)
	}
	err = runError(t, `func f(a: Int) { return a; } f("s");`)
	if err.Kind != errors.ArgumentTypeMismatchError {
		t.Errorf("expected ArgumentTypeMismatchError, got %s", err.Kind)
	}
	err = runError(t, `func f() -> Int { return "s"; } f();`)
	if err.Kind != errors.ReturnTypeMismatchError {
		t.Errorf("expected ReturnTypeMismatchError, got %s", err.Kind)
	}
}

func TestImplicitNullReturn(t *testing.T) {
	if got := runScript(t, "func f() { } "+println("f()")); got != "null\n" {
		t.Errorf("got %q", got)
	}
}

func TestRecursion(t *testing.T) {
	script := `
func fib(n: Int) -> Int {
	if n < 2 { return n; }
	return fib(n - 1) + fib(n - 2);
}
__fstdout_println(fib(12));
`
	if got := runScript(t, script); got != "144\n" {
		t.Errorf("got %q", got)
	}
}

func TestFunctionEquality(t *testing.T) {
	script := `
func f() { }
var g = f;
__fstdout_println(f == g);
var h = func() => 1;
__fstdout_println(f == h);
`
	if got := runScript(t, script); got != "true\nfalse\n" {
		t.Errorf("got %q", got)
	}
}

func TestValueBuiltins(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{`__fvalue_type(1)`, "Int"},
		{`__fvalue_type(1.5)`, "Double"},
		{`__fvalue_type("s")`, "String"},
		{`__fvalue_type(true)`, "Bool"},
		{`__fvalue_type(null)`, "Null"},
		{`__fvalue_type([1])`, "List"},
		{`__fvalue_int_parse("42")`, "42"},
		{`__fvalue_int_from(3.9)`, "3"},
		{`__fvalue_int_from(true)`, "1"},
		{`__fvalue_double_from(2)`, "2"},
		{`__fvalue_string_from(42)`, "42"},
		{`__fvalue_string_from(__fvalue_int_parse("123"))`, "123"},
	}
	for _, tt := range tests {
		got := runScript(t, println(tt.expr))
		if got != tt.want+"\n" {
			t.Errorf("%s: expected %q, got %q", tt.expr, tt.want+"\n", got)
		}
	}
}

func TestMathBuiltins(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"__fmath_sqrt(9)", "3"},
		{"__fmath_floor(3.7)", "3"},
		{"__fmath_ceil(3.2)", "4"},
		{"__fmath_gcd(12, 18)", "6"},
		{"__fmath_hypot(3, 4)", "5"},
		{"__fmath_fabs(-2.5)", "2.5"},
		{"__fmath_isequal(0.1 + 0.2, 0.3)", "true"},
	}
	for _, tt := range tests {
		got := runScript(t, println(tt.expr))
		if got != tt.want+"\n" {
			t.Errorf("%s: expected %q, got %q", tt.expr, tt.want+"\n", got)
		}
	}
}

func TestStdinBuiltins(t *testing.T) {
	l := lexer.New(`__fstdout_println(__fstdin_read()); __fstdout_println(__fstdin_readln());`)
	p := parser.New(l)
	program, perr := p.ParseProgram()
	if perr != nil {
		t.Fatalf("parse error: %v", perr)
	}
	var buf bytes.Buffer
	in := New(&buf)
	in.SetInput(strings.NewReader("token rest of line\nnext"))
	if err := in.Run(program); err != nil {
		t.Fatalf("run error: %v", err)
	}
	if buf.String() != "token\n rest of line\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestTimeBuiltin(t *testing.T) {
	script := `
var t = __ftime_now_ns();
__fstdout_println(__fvalue_type(t));
__fstdout_println(t >= 0);
`
	if got := runScript(t, script); got != "Int\ntrue\n" {
		t.Errorf("got %q", got)
	}
}

func TestFloorModuloLaw(t *testing.T) {
	// ((x % m) + m) % m == x mod m for positive m
	script := `
var xs = [-7, -3, 0, 3, 7, 10];
for var i = 0; i < xs.length(); i += 1 {
	var x = xs[i];
	__fstdout_println(((x % 3) + 3) % 3 == x % 3);
}
`
	got := runScript(t, script)
	if got != strings.Repeat("true\n", 6) {
		t.Errorf("got %q", got)
	}
}

func TestEmptySource(t *testing.T) {
	if got := runScript(t, ""); got != "" {
		t.Errorf("expected no output, got %q", got)
	}
}

func TestCaretAssignUnsupported(t *testing.T) {
	err := runError(t, "var x = 1; x ^= 2;")
	if err.Kind != errors.UnsupportedOpError {
		t.Errorf("expected UnsupportedOpError, got %s", err.Kind)
	}
}

func TestIsOperator(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{`"x" is String`, "true"},
		{`1 is Int`, "true"},
		{`1 is Double`, "false"},
		{`1.5 is Double`, "true"},
		{`true is Bool`, "true"},
		{`[1] is List`, "true"},
		{`{1: 2} is Map`, "true"},
	}
	for _, tt := range tests {
		got := runScript(t, println(tt.expr))
		if got != tt.want+"\n" {
			t.Errorf("%s: expected %q, got %q", tt.expr, tt.want+"\n", got)
		}
	}
}
