package interp

import (
	"testing"

	"github.com/puqiar/go-fig/internal/errors"
)

func TestClosureCounter(t *testing.T) {
	script := `
func makeCounter() { var n = 0; return func() { n += 1; return n; }; }
var c = makeCounter(); __fstdout_println(c()); __fstdout_println(c()); __fstdout_println(c());
`
	if got := runScript(t, script); got != "1\n2\n3\n" {
		t.Errorf("got %q", got)
	}
}

func TestIndependentClosures(t *testing.T) {
	script := `
func makeCounter() { var n = 0; return func() { n += 1; return n; }; }
var a = makeCounter();
var b = makeCounter();
a(); a();
__fstdout_println(a());
__fstdout_println(b());
`
	if got := runScript(t, script); got != "3\n1\n" {
		t.Errorf("got %q", got)
	}
}

func TestOperatorOverloading(t *testing.T) {
	script := `
struct V { x: Int; y: Int; }
interface Operation { Add(a, b) -> V; }
impl Operation for V { Add(a, b) { return V{ x: a.x + b.x, y: a.y + b.y }; } }
var r = V{1,2} + V{3,4};
__fstdout_println(r.x); __fstdout_println(r.y);
`
	if got := runScript(t, script); got != "4\n6\n" {
		t.Errorf("got %q", got)
	}
}

func TestUnaryOverload(t *testing.T) {
	script := `
struct N { v: Int; }
interface Operation { Neg(a) -> N; }
impl Operation for N { Neg(a) { return N{ v: 0 - a.v }; } }
var n = -N{5};
__fstdout_println(n.v);
`
	if got := runScript(t, script); got != "-5\n" {
		t.Errorf("got %q", got)
	}
}

func TestOverloadPreemptsNativeSemantics(t *testing.T) {
	script := `
struct W { v: Int; }
interface Operation { Equal(a, b) -> Bool; }
impl Operation for W { Equal(a, b) { return true; } }
__fstdout_println(W{1} == W{2});
`
	if got := runScript(t, script); got != "true\n" {
		t.Errorf("got %q", got)
	}
}

func TestOverloadBuiltinTypeForbidden(t *testing.T) {
	err := runError(t, `
interface Operation { Add(a, b) -> Any; }
impl Operation for Int { Add(a, b) { return a; } }
`)
	if err.Kind != errors.TypeError {
		t.Errorf("expected TypeError, got %s", err.Kind)
	}
}

func TestDuplicateOverload(t *testing.T) {
	script := `
struct V { x: Int; }
interface Operation { Add(a, b) -> V; }
impl Operation for V { Add(a, b) { return a; } }
impl Operation for V { Add(a, b) { return b; } }
`
	err := runError(t, script)
	if err.Kind != errors.DuplicateImplementError {
		t.Errorf("expected DuplicateImplementError, got %s", err.Kind)
	}
}

func TestOverloadParameterTypeRestriction(t *testing.T) {
	script := `
struct V { x: Int; }
interface Operation { Add(a, b) -> V; }
impl Operation for V { Add(a: Int, b: Int) { return a; } }
`
	err := runError(t, script)
	if err.Kind != errors.TypeError {
		t.Errorf("expected TypeError, got %s", err.Kind)
	}
}

func TestIsOverloadPreemptsNativeTest(t *testing.T) {
	script := `
struct V { x: Int; }
interface Operation { Is(a, b) -> Bool; }
impl Operation for V { Is(a, b) { return true; } }
__fstdout_println(V{1} is 42);
`
	if got := runScript(t, script); got != "true\n" {
		t.Errorf("got %q", got)
	}
}

func TestCompoundAssignmentExpressionValue(t *testing.T) {
	script := `
var n = 1;
var x = (n += 5);
__fstdout_println(x);
__fstdout_println(n);
`
	if got := runScript(t, script); got != "6\n6\n" {
		t.Errorf("got %q", got)
	}
}

func TestBreakInsideFunctionDefinedInLoop(t *testing.T) {
	script := `
while true {
	func f() { break; }
	f();
}
`
	err := runError(t, script)
	if err.Kind != errors.BreakOutsideLoopError {
		t.Errorf("expected BreakOutsideLoopError, got %s", err.Kind)
	}
}

func TestInterfaceDefaultFallback(t *testing.T) {
	script := `
interface Greet { hello() -> String { return "hi"; } }
struct P {} impl Greet for P {}
__fstdout_println(P{}.hello());
`
	if got := runScript(t, script); got != "hi\n" {
		t.Errorf("got %q", got)
	}
}

func TestInterfaceOverride(t *testing.T) {
	script := `
interface Greet { hello() -> String { return "hi"; } }
struct P {}
impl Greet for P { hello() { return "hello from P"; } }
__fstdout_println(P{}.hello());
`
	if got := runScript(t, script); got != "hello from P\n" {
		t.Errorf("got %q", got)
	}
}

func TestMissingImplementation(t *testing.T) {
	script := `
interface Greet { hello() -> String; }
struct P {}
impl Greet for P {}
`
	err := runError(t, script)
	if err.Kind != errors.MissingImplementationError {
		t.Errorf("expected MissingImplementationError, got %s", err.Kind)
	}
}

func TestRedundantImplementation(t *testing.T) {
	script := `
interface Greet { hello() -> String; }
struct P {}
impl Greet for P { hello() { return "x"; } extra() { return 1; } }
`
	err := runError(t, script)
	if err.Kind != errors.RedundantImplementationError {
		t.Errorf("expected RedundantImplementationError, got %s", err.Kind)
	}
}

func TestSignatureMismatch(t *testing.T) {
	script := `
interface Greet { hello(name: String) -> String; }
struct P {}
impl Greet for P { hello(other: String) { return other; } }
`
	err := runError(t, script)
	if err.Kind != errors.InterfaceSignatureMismatch {
		t.Errorf("expected InterfaceSignatureMismatchError, got %s", err.Kind)
	}
}

func TestInterfaceBundles(t *testing.T) {
	script := `
interface A { a() -> Int { return 1; } }
interface B { b() -> Int { return 2; } }
interface C { bundle A, B; c() -> Int { return 3; } }
struct S {}
impl C for S {}
var s = S{};
__fstdout_println(s.a());
__fstdout_println(s.b());
__fstdout_println(s.c());
`
	if got := runScript(t, script); got != "1\n2\n3\n" {
		t.Errorf("got %q", got)
	}
}

func TestBundleDuplicateMethod(t *testing.T) {
	script := `
interface A { m() -> Int; }
interface B { m() -> Int; }
interface C { bundle A, B; }
`
	err := runError(t, script)
	if err.Kind != errors.DuplicateImplementMethodError {
		t.Errorf("expected DuplicateImplementMethodError, got %s", err.Kind)
	}
}

func TestIsWithInterface(t *testing.T) {
	script := `
interface Greet { hello() -> String { return "hi"; } }
struct P {}
struct Q {}
impl Greet for P {}
__fstdout_println(P{} is Greet);
__fstdout_println(Q{} is Greet);
__fstdout_println(P{} is P);
`
	if got := runScript(t, script); got != "true\nfalse\ntrue\n" {
		t.Errorf("got %q", got)
	}
}

func TestStructConstructionModes(t *testing.T) {
	script := `
struct Person { name: String; age: Int = 18; }
var p1 = Person{"ada", 36};
__fstdout_println(p1.name); __fstdout_println(p1.age);
var p2 = Person{name: "bob"};
__fstdout_println(p2.name); __fstdout_println(p2.age);
var name = "eve"; var age = 7;
var p3 = Person{name, age};
__fstdout_println(p3.name); __fstdout_println(p3.age);
`
	want := "ada\n36\nbob\n18\neve\n7\n"
	if got := runScript(t, script); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestStructFieldTypeEnforced(t *testing.T) {
	err := runError(t, `struct P { n: Int; } var p = P{"s"};`)
	if err.Kind != errors.StructFieldTypeMismatchError {
		t.Errorf("expected StructFieldTypeMismatchError, got %s", err.Kind)
	}
}

func TestStructInitArgumentCount(t *testing.T) {
	err := runError(t, `struct P { a: Int; } var p = P{1, 2};`)
	if err.Kind != errors.StructInitArgumentMismatch {
		t.Errorf("expected StructInitArgumentMismatchError, got %s", err.Kind)
	}
}

func TestStructMethodsSeeInstanceFields(t *testing.T) {
	script := `
struct Point {
	x: Int;
	y: Int;
	func sum() { return x + y; }
}
var p = Point{3, 4};
__fstdout_println(p.sum());
`
	if got := runScript(t, script); got != "7\n" {
		t.Errorf("got %q", got)
	}
}

func TestInstanceMutationVisibleThroughAliases(t *testing.T) {
	script := `
struct Box { v: Int; }
var a = Box{1};
var b = a;
b.v = 99;
__fstdout_println(a.v);
`
	if got := runScript(t, script); got != "99\n" {
		t.Errorf("got %q", got)
	}
}

func TestConstFieldRejectsWrite(t *testing.T) {
	err := runError(t, `struct P { const k: Int; } var p = P{1}; p.k = 2;`)
	if err.Kind != errors.ImmutableError {
		t.Errorf("expected ImmutableError, got %s", err.Kind)
	}
}

func TestMethodAssignmentRejected(t *testing.T) {
	script := `
interface Greet { hello() -> String { return "hi"; } }
struct P {}
impl Greet for P {}
var p = P{};
p.hello = 1;
`
	err := runError(t, script)
	if err.Kind != errors.ImmutableError {
		t.Errorf("expected ImmutableError, got %s", err.Kind)
	}
}

func TestNoAttribute(t *testing.T) {
	err := runError(t, `struct P {} var p = P{}; __fstdout_println(p.ghost);`)
	if err.Kind != errors.NoAttributeError {
		t.Errorf("expected NoAttributeError, got %s", err.Kind)
	}
}

func TestBuiltinTypeConstruction(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"Int{}", "0"},
		{"Int{5}", "5"},
		{`String{}`, ""},
		{"Bool{}", "false"},
		{"Double{1.5}", "1.5"},
	}
	for _, tt := range tests {
		got := runScript(t, println(tt.expr))
		if got != tt.want+"\n" {
			t.Errorf("%s: expected %q, got %q", tt.expr, tt.want+"\n", got)
		}
	}

	// List{} copies the container, not the elements
	script := `
var a = [1, 2];
var b = List{a};
b.push(3);
__fstdout_println(a.length());
__fstdout_println(b.length());
`
	if got := runScript(t, script); got != "2\n3\n" {
		t.Errorf("got %q", got)
	}
}

func TestTryCatchFinally(t *testing.T) {
	script := `try { throw "boom"; } catch (e) { __fstdout_println(e); } finally { __fstdout_println("done"); }`
	if got := runScript(t, script); got != "boom\ndone\n" {
		t.Errorf("got %q", got)
	}
}

func TestTypedCatch(t *testing.T) {
	script := `
try { throw 42; } catch (e: String) { __fstdout_println("string"); } catch (e: Int) { __fstdout_println("int"); }
`
	if got := runScript(t, script); got != "int\n" {
		t.Errorf("got %q", got)
	}
}

func TestCatchByInterface(t *testing.T) {
	script := `
struct MyErr { msg: String; }
impl Error for MyErr {
	toString() { return msg; }
	getErrorClass() { return "MyErr"; }
	getErrorMessage() { return msg; }
}
try { throw MyErr{"bad"}; } catch (e: Error) { __fstdout_println(e.getErrorMessage()); }
`
	if got := runScript(t, script); got != "bad\n" {
		t.Errorf("got %q", got)
	}
}

func TestUncaughtException(t *testing.T) {
	err := runError(t, `throw "boom";`)
	if err.Kind != errors.UncaughtExceptionError {
		t.Errorf("expected UncaughtExceptionError, got %s", err.Kind)
	}
}

func TestThrowNull(t *testing.T) {
	err := runError(t, `throw null;`)
	if err.Kind != errors.TypeError {
		t.Errorf("expected TypeError, got %s", err.Kind)
	}
}

func TestThrowPropagatesThroughCalls(t *testing.T) {
	script := `
func inner() { throw "deep"; }
func outer() { inner(); }
try { outer(); } catch (e) { __fstdout_println(e); }
`
	if got := runScript(t, script); got != "deep\n" {
		t.Errorf("got %q", got)
	}
}

func TestEvaluatorErrorCaughtUntyped(t *testing.T) {
	script := `
try { __fstdout_println(1 / 0); } catch (e) { __fstdout_println("caught"); }
`
	if got := runScript(t, script); got != "caught\n" {
		t.Errorf("got %q", got)
	}
}

func TestFinallyRunsOnUncaught(t *testing.T) {
	script := `
try {
	try { throw "inner"; } finally { __fstdout_println("cleanup"); }
} catch (e) { __fstdout_println(e); }
`
	if got := runScript(t, script); got != "cleanup\ninner\n" {
		t.Errorf("got %q", got)
	}
}

func TestTernary(t *testing.T) {
	if got := runScript(t, println(`1 < 2 ? "yes" : "no"`)); got != "yes\n" {
		t.Errorf("got %q", got)
	}
}

func TestTupleEvaluatesToList(t *testing.T) {
	script := `
var t = (1, 2, 3);
__fstdout_println(t.length());
__fstdout_println(t[1]);
`
	if got := runScript(t, script); got != "3\n2\n" {
		t.Errorf("got %q", got)
	}
}

func TestFunctionLiteralExprBody(t *testing.T) {
	script := `
var double = func(x) => x * 2;
__fstdout_println(double(21));
`
	if got := runScript(t, script); got != "42\n" {
		t.Errorf("got %q", got)
	}
}

func TestHigherOrderFunctions(t *testing.T) {
	script := `
func apply(f, x) { return f(x); }
__fstdout_println(apply(func(v) => v + 1, 41));
`
	if got := runScript(t, script); got != "42\n" {
		t.Errorf("got %q", got)
	}
}

func TestImplForBuiltinReceiver(t *testing.T) {
	script := `
interface Answer { answer() -> Int; }
impl Answer for Int { answer() { return 42; } }
__fstdout_println((5).answer());
`
	if got := runScript(t, script); got != "42\n" {
		t.Errorf("got %q", got)
	}
}
