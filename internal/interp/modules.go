package interp

import (
	"os"
	"path/filepath"

	"github.com/puqiar/go-fig/internal/ast"
	"github.com/puqiar/go-fig/internal/errors"
	"github.com/puqiar/go-fig/internal/lexer"
	"github.com/puqiar/go-fig/internal/parser"
)

// BuiltinsModuleName imports the builtin function table instead of a file.
const BuiltinsModuleName = "_builtins"

// evalImport executes `import a.b.c;`: resolves the module file, evaluates
// it in a fresh root environment, merges its impl and operator registries,
// and binds the module under the last path segment.
func (in *Interpreter) evalImport(stmt *ast.ImportStatement, env *Environment) (StatementResult, error) {
	modName := stmt.Path[len(stmt.Path)-1]

	if modName == BuiltinsModuleName {
		in.registerBuiltinFunctions(env)
		return normalResult(), nil
	}

	path, e := in.resolveModulePath(stmt.Path)
	if e != nil {
		return normalResult(), e
	}

	modEnv, err := in.loadModule(path)
	if err != nil {
		return normalResult(), err
	}

	env.MergeRegistries(modEnv)

	if env.ContainsInThisScope(modName) {
		return normalResult(), errors.Newf(errors.RedeclarationError, stmt.Pos(),
			"`%s` has already been declared", modName)
	}
	env.Define(modName, TypeModule, ast.AccessPublicConst, &ModuleValue{Name: modName, Env: modEnv})
	return normalResult(), nil
}

// resolveModulePath maps a dotted module path onto the filesystem. Search
// order: the directory of the current source file, <install>/Library,
// <install>/Library/fpm. The first segment matches either `<seg>.fig` or a
// directory `<seg>/` containing `<seg>.fig`; each later segment must be
// `<prev-dir>/<seg>.fig` (terminal) or `<prev-dir>/<seg>/` (intermediate).
func (in *Interpreter) resolveModulePath(pathVec []string) (string, *errors.Error) {
	root := in.libraryRoot
	if root == "" {
		if exe, err := os.Executable(); err == nil {
			root = filepath.Dir(exe)
		}
	}

	searchDirs := []string{
		filepath.Dir(in.sourcePath),
		filepath.Join(root, "Library"),
		filepath.Join(root, "Library", "fpm"),
	}

	top := pathVec[0]
	var modPath string
	found := false
	for _, dir := range searchDirs {
		candidate := filepath.Join(dir, top+".fig")
		if fileExists(candidate) {
			modPath = candidate
			found = true
			break
		}
		sub := filepath.Join(dir, top)
		if dirExists(sub) {
			candidate = filepath.Join(sub, top+".fig")
			if !fileExists(candidate) {
				return "", errors.NewRuntime(errors.ModuleNotFoundError,
					"Module directory `"+top+"` does not contain "+top+".fig")
			}
			modPath = candidate
			found = true
			break
		}
	}
	if !found {
		return "", errors.NewRuntime(errors.ModuleNotFoundError, "Could not find module `"+top+"`")
	}

	for i := 1; i < len(pathVec); i++ {
		seg := pathVec[i]
		parent := filepath.Dir(modPath)

		terminal := filepath.Join(parent, seg+".fig")
		if fileExists(terminal) {
			if i != len(pathVec)-1 {
				return "", errors.NewRuntime(errors.ModuleNotFoundError,
					"Expected `"+seg+"` to be a directory in the module path, but found a file")
			}
			modPath = terminal
			continue
		}

		sub := filepath.Join(parent, seg)
		if !dirExists(sub) {
			return "", errors.NewRuntime(errors.ModuleNotFoundError, "Could not find module `"+seg+"`")
		}
		if i == len(pathVec)-1 {
			terminal = filepath.Join(sub, seg+".fig")
			if !fileExists(terminal) {
				return "", errors.NewRuntime(errors.ModuleNotFoundError,
					"Module directory `"+seg+"` does not contain "+seg+".fig")
			}
			modPath = terminal
		} else {
			modPath = filepath.Join(sub, seg+".fig") // placeholder file in sub dir for the next segment
		}
	}

	return modPath, nil
}

// loadModule parses and evaluates a module file in a fresh root environment.
// Loaded modules are cached by absolute path so re-imports cannot diverge.
func (in *Interpreter) loadModule(path string) (*Environment, error) {
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	if cached, ok := in.moduleCache[path]; ok {
		return cached, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewRuntime(errors.ModuleNotFoundError, "Could not read module file "+path)
	}
	source := string(content)

	l := lexer.New(source)
	p := parser.New(l)
	program, perr := p.ParseProgram()
	if perr != nil {
		return nil, perr.WithSource(path, errors.SplitLines(source))
	}

	modEnv := NewEnvironment("<Module " + moduleBaseName(path) + ">")
	in.registerBuiltinValues(modEnv)

	// evaluate with the module's own source context for resolution of its
	// nested imports and error reporting
	savedPath, savedLines := in.sourcePath, in.sourceLines
	in.sourcePath, in.sourceLines = path, errors.SplitLines(source)
	defer func() {
		in.sourcePath, in.sourceLines = savedPath, savedLines
	}()

	for _, stmt := range program.Statements {
		sr, err := in.evalStatement(stmt, modEnv)
		if err != nil {
			if fe, ok := err.(*errors.Error); ok {
				return nil, fe.WithSource(path, in.sourceLines)
			}
			return nil, err
		}
		if !sr.IsNormal() {
			break
		}
	}

	in.moduleCache[path] = modEnv
	return modEnv, nil
}

func moduleBaseName(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return base[:len(base)-len(ext)]
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
