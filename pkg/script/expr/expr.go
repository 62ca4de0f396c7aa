// Package expr backs script.Runtime with github.com/expr-lang/expr.
//
// Scripts are single expressions. The environment is exposed through the same
// functions as the Lua backend: payload(), line_number(), param("x"), accept("msg")...
package expr

import (
	"context"
	"maps"

	"github.com/aretw0/vigil/pkg/script"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Runtime compiles expressions against a fixed function table bound to an Environment.
type Runtime struct {
	env   *script.Environment
	table map[string]any
	// ctx is the context of the running expression, read by host functions.
	ctx context.Context
}

// New creates a runtime bound to env.
func New(env *script.Environment) *Runtime {
	r := &Runtime{env: env}
	r.table = r.functions()
	return r
}

// Factory adapts New to script.Factory.
func Factory(env *script.Environment) (script.Runtime, error) {
	return New(env), nil
}

// Compile type-checks the expression against the function table.
func (r *Runtime) Compile(name, source string) (script.Compiled, error) {
	program, err := expr.Compile(source, expr.Env(r.table))
	if err != nil {
		return nil, &script.CompileError{Name: name, Err: err}
	}
	return &compiled{rt: r, program: program}, nil
}

type compiled struct {
	rt      *Runtime
	program *vm.Program
}

func (c *compiled) Run(ctx context.Context) (any, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	c.rt.ctx = ctx
	defer func() { c.rt.ctx = nil }()
	out, err := expr.Run(c.program, c.rt.table)
	if err != nil {
		return nil, err
	}
	return script.Normalize(out), nil
}

// functions builds the table: host functions first, then the built-ins, which
// take precedence.
func (r *Runtime) functions() map[string]any {
	env := r.env
	table := make(map[string]any)
	for _, name := range env.Functions() {
		table[name] = func(args ...any) (any, error) {
			return env.Call(r.ctx, name, args)
		}
	}
	maps.Copy(table, r.builtins())
	return table
}

func (r *Runtime) builtins() map[string]any {
	env := r.env
	return map[string]any{
		"timestamp": func() any {
			if ts, ok := env.Timestamp(); ok {
				return ts
			}
			return nil
		},
		"payload": func() any {
			if p, ok := env.Payload(); ok {
				return p
			}
			return nil
		},
		"line_number": func() any {
			if n, ok := env.LineNumber(); ok {
				return n
			}
			return nil
		},
		"channel": func() any {
			if c, ok := env.Channel(); ok {
				return c
			}
			return nil
		},
		"is_eof":      func() bool { return env.IsEOF() },
		"param":       func(name string) (string, error) { return env.Param(name) },
		"has_param":   func(name string) bool { return env.HasParam(name) },
		"group":       func(i int) (string, error) { return env.Group(i) },
		"group_count": func() int { return env.GroupCount() },
		"info": func(msg string) bool {
			env.Info(msg)
			return true
		},
		"debug": func(msg string) bool {
			env.Debug(msg)
			return true
		},
		"halt": func() bool {
			env.Halt()
			return true
		},
		"accept": func(msg ...string) (bool, error) {
			return true, env.Accept(first(msg))
		},
		"reject": func(msg ...string) (bool, error) {
			return true, env.Reject(first(msg))
		},
	}
}

func first(msg []string) string {
	if len(msg) == 0 {
		return ""
	}
	return msg[0]
}
