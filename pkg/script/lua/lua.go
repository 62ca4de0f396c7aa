// Package lua backs script.Runtime with github.com/yuin/gopher-lua.
//
// All scripts of one automaton share a single interpreter state, so globals assigned
// by on_load are visible to every later hook. Numbers cross the boundary as float64.
package lua

import (
	"context"
	"strings"

	"github.com/aretw0/vigil/pkg/script"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

// Runtime is a gopher-lua interpreter bound to one script.Environment.
type Runtime struct {
	L   *lua.LState
	env *script.Environment
}

// New creates a runtime and registers the environment functions as globals.
func New(env *script.Environment) *Runtime {
	r := &Runtime{
		L:   lua.NewState(),
		env: env,
	}
	r.bind()
	return r
}

// Factory adapts New to script.Factory.
func Factory(env *script.Environment) (script.Runtime, error) {
	return New(env), nil
}

// Compile parses source once. Expressions do not need an explicit "return":
// the source is first tried as "return <source>" and then as a plain block.
func (r *Runtime) Compile(name, source string) (script.Compiled, error) {
	proto, err := compile(name, "return "+source)
	if err != nil {
		proto, err = compile(name, source)
		if err != nil {
			return nil, &script.CompileError{Name: name, Err: err}
		}
	}
	return &program{rt: r, proto: proto}, nil
}

// Close releases the interpreter state.
func (r *Runtime) Close() error {
	r.L.Close()
	return nil
}

func compile(name, source string) (*lua.FunctionProto, error) {
	chunk, err := parse.Parse(strings.NewReader(source), name)
	if err != nil {
		return nil, err
	}
	return lua.Compile(chunk, name)
}

type program struct {
	rt    *Runtime
	proto *lua.FunctionProto
}

func (p *program) Run(ctx context.Context) (any, error) {
	L := p.rt.L
	if ctx != nil {
		L.SetContext(ctx)
		defer L.RemoveContext()
	}

	L.Push(L.NewFunctionFromProto(p.proto))
	if err := L.PCall(0, 1, nil); err != nil {
		return nil, err
	}
	ret := L.Get(-1)
	L.Pop(1)
	return toGo(ret), nil
}

func toGo(lv lua.LValue) any {
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		return float64(v)
	case lua.LString:
		return string(v)
	default:
		return nil
	}
}

// toLua converts a normalized script value.
func toLua(v any) lua.LValue {
	switch t := v.(type) {
	case bool:
		return lua.LBool(t)
	case int64:
		return lua.LNumber(float64(t))
	case float64:
		return lua.LNumber(t)
	case string:
		return lua.LString(t)
	default:
		return lua.LNil
	}
}
