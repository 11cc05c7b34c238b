package fig

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineRunHelloWorld(t *testing.T) {
	var out bytes.Buffer
	engine := New(WithOutput(&out))

	err := engine.Run(`__fstdout_println("Hello, World!");`)
	require.NoError(t, err)
	assert.Equal(t, "Hello, World!\n", out.String())
}

func TestCompileThenRun(t *testing.T) {
	var out bytes.Buffer
	engine := New(WithOutput(&out))

	script, err := engine.Compile(`
func square(n: Int) -> Int { return n * n; }
__fstdout_println(square(9));
`)
	require.NoError(t, err)
	require.NoError(t, script.Run())
	assert.Equal(t, "81\n", out.String())
}

func TestCompileError(t *testing.T) {
	engine := New()
	_, err := engine.Compile("var = ;")
	require.Error(t, err)
	assert.Contains(t, FormatError(err, false), "[SyntaxError]")
}

func TestRuntimeError(t *testing.T) {
	var out bytes.Buffer
	engine := New(WithOutput(&out))

	err := engine.Run("__fstdout_println(1 / 0);")
	require.Error(t, err)
	formatted := FormatError(err, false)
	assert.Contains(t, formatted, "[ValueError]")
	assert.Contains(t, formatted, "Division by zero")
}

func TestUncaughtExceptionExitsWithError(t *testing.T) {
	engine := New(WithOutput(&bytes.Buffer{}))
	err := engine.Run(`throw "kaboom";`)
	require.Error(t, err)
	assert.Contains(t, FormatError(err, false), "kaboom")
}

func TestWithInput(t *testing.T) {
	var out bytes.Buffer
	engine := New(
		WithOutput(&out),
		WithInput(strings.NewReader("fig\n")),
	)

	err := engine.Run(`__fstdout_println("hi " + __fstdin_readln());`)
	require.NoError(t, err)
	assert.Equal(t, "hi fig\n", out.String())
}

func TestWarnings(t *testing.T) {
	engine := New(WithOutput(&bytes.Buffer{}))
	script, err := engine.Compile("var x = 1;")
	require.NoError(t, err)
	require.Len(t, script.Warnings(), 1)
	assert.Equal(t, 2, script.Warnings()[0].ID) // short identifier
}

func TestModuleImportThroughEngine(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "m.fig"), []byte("public const K = 42;"), 0o644))

	var out bytes.Buffer
	engine := New(
		WithOutput(&out),
		WithSourcePath(filepath.Join(dir, "main.fig")),
	)
	err := engine.Run("import m; __fstdout_println(m.K);")
	require.NoError(t, err)
	assert.Equal(t, "42\n", out.String())
}

func TestRunIsolation(t *testing.T) {
	// two runs of the same engine share nothing
	var out bytes.Buffer
	engine := New(WithOutput(&out))
	require.NoError(t, engine.Run("var x = 1;"))
	require.NoError(t, engine.Run(`__fstdout_println("ok");`))
	assert.Equal(t, "ok\n", out.String())
}
