// Package pipeline evaluates the CEL pre_install/post_install hook
// expressions a RuntimeSpec's Hooks declare, adapted from the predecessor's
// pkg/pipeline CEL evaluator (same cel.NewEnv + custom-function-binding
// shape) but trimmed from its ~20-function general sandbox down to the
// handful an install hook genuinely needs: chmod, move, glob, rm, path, log,
// fail. Bindings are {install_dir, version, os, arch}
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// Bindings are the variables an install hook expression may reference.
type Bindings struct {
	InstallDir string
	Version    string
	OS         string
	Arch       string
}

// Environment wraps a configured CEL environment bound to one installation's
// context, so every hook expression for that install shares compiled
// function bindings.
type Environment struct {
	env     *cel.Env
	vars    map[string]any
	failMsg string
}

// New constructs an Environment for the given bindings.
func New(b Bindings) (*Environment, error) {
	e := &Environment{}
	env, err := cel.NewEnv(
		cel.Variable("install_dir", cel.StringType),
		cel.Variable("version", cel.StringType),
		cel.Variable("os", cel.StringType),
		cel.Variable("arch", cel.StringType),
		cel.Function("chmod",
			cel.Overload("chmod_strings", []*cel.Type{cel.StringType, cel.IntType}, cel.IntType,
				cel.BinaryBinding(e.chmodCEL))),
		cel.Function("glob",
			cel.Overload("glob_string", []*cel.Type{cel.StringType}, cel.ListType(cel.StringType),
				cel.UnaryBinding(e.globCEL))),
		cel.Function("move",
			cel.Overload("move_strings", []*cel.Type{cel.StringType, cel.StringType}, cel.StringType,
				cel.BinaryBinding(e.moveCEL))),
		cel.Function("rm",
			cel.Overload("rm_string", []*cel.Type{cel.StringType}, cel.IntType,
				cel.UnaryBinding(e.rmCEL))),
		cel.Function("path",
			cel.Overload("path_join_strings", []*cel.Type{cel.StringType, cel.StringType}, cel.StringType,
				cel.BinaryBinding(e.pathJoinCEL))),
		cel.Function("log",
			cel.Overload("log_strings", []*cel.Type{cel.StringType, cel.StringType}, cel.BoolType,
				cel.BinaryBinding(e.logCEL))),
		cel.Function("fail",
			cel.Overload("fail_string", []*cel.Type{cel.StringType}, cel.BoolType,
				cel.UnaryBinding(e.failCEL))),
	)
	if err != nil {
		return nil, fmt.Errorf("creating CEL environment: %w", err)
	}
	e.env = env
	e.vars = map[string]any{
		"install_dir": b.InstallDir,
		"version":     b.Version,
		"os":          b.OS,
		"arch":        b.Arch,
	}
	return e, nil
}

// Run evaluates each expression in order, stopping at the first one that
// calls fail(...) or errors.
func (e *Environment) Run(expressions []string) error {
	for _, expr := range expressions {
		if err := e.eval(expr); err != nil {
			return err
		}
		if e.failMsg != "" {
			return fmt.Errorf("hook failed: %s", e.failMsg)
		}
	}
	return nil
}

func (e *Environment) eval(expr string) error {
	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("compiling hook expression %q: %w", expr, issues.Err())
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return fmt.Errorf("building hook program %q: %w", expr, err)
	}
	if _, _, err := prg.Eval(e.vars); err != nil {
		return fmt.Errorf("evaluating hook expression %q: %w", expr, err)
	}
	return nil
}

func (e *Environment) chmodCEL(pathVal, modeVal ref.Val) ref.Val {
	path := pathVal.(types.String)
	mode := modeVal.(types.Int)
	if err := os.Chmod(string(path), os.FileMode(int64(mode))); err != nil {
		return types.NewErr("chmod %s: %v", path, err)
	}
	return types.Int(0)
}

func (e *Environment) globCEL(patternVal ref.Val) ref.Val {
	pattern := string(patternVal.(types.String))
	base := e.vars["install_dir"].(string)
	matches, err := doublestar.Glob(os.DirFS(base), pattern)
	if err != nil {
		return types.NewErr("glob %s: %v", pattern, err)
	}
	out := make([]ref.Val, len(matches))
	for i, m := range matches {
		out[i] = types.String(m)
	}
	return types.NewDynamicList(types.DefaultTypeAdapter, out)
}

func (e *Environment) moveCEL(srcVal, dstVal ref.Val) ref.Val {
	src := string(srcVal.(types.String))
	dst := string(dstVal.(types.String))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return types.NewErr("move %s -> %s: %v", src, dst, err)
	}
	if err := os.Rename(src, dst); err != nil {
		return types.NewErr("move %s -> %s: %v", src, dst, err)
	}
	return types.String(dst)
}

func (e *Environment) rmCEL(pathVal ref.Val) ref.Val {
	path := string(pathVal.(types.String))
	if err := os.RemoveAll(path); err != nil {
		return types.NewErr("rm %s: %v", path, err)
	}
	return types.Int(0)
}

func (e *Environment) pathJoinCEL(aVal, bVal ref.Val) ref.Val {
	return types.String(filepath.Join(string(aVal.(types.String)), string(bVal.(types.String))))
}

func (e *Environment) logCEL(levelVal, msgVal ref.Val) ref.Val {
	return types.Bool(true)
}

func (e *Environment) failCEL(msgVal ref.Val) ref.Val {
	e.failMsg = string(msgVal.(types.String))
	return types.Bool(true)
}
