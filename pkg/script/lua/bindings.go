package lua

import (
	lua "github.com/yuin/gopher-lua"
)

// bind registers host functions, then the built-ins, which take precedence.
func (r *Runtime) bind() {
	for _, name := range r.env.Functions() {
		r.L.SetGlobal(name, r.L.NewFunction(r.host(name)))
	}

	fns := map[string]lua.LGFunction{
		"timestamp":   r.timestamp,
		"payload":     r.payload,
		"line_number": r.lineNumber,
		"channel":     r.channel,
		"is_eof":      r.isEOF,
		"param":       r.param,
		"has_param":   r.hasParam,
		"group":       r.group,
		"group_count": r.groupCount,
		"info":        r.info,
		"debug":       r.debug,
		"halt":        r.halt,
		"accept":      r.accept,
		"reject":      r.reject,
	}
	for name, fn := range fns {
		r.L.SetGlobal(name, r.L.NewFunction(fn))
	}
}

func (r *Runtime) timestamp(L *lua.LState) int {
	if ts, ok := r.env.Timestamp(); ok {
		L.Push(lua.LNumber(float64(ts)))
	} else {
		L.Push(lua.LNil)
	}
	return 1
}

func (r *Runtime) payload(L *lua.LState) int {
	if p, ok := r.env.Payload(); ok {
		L.Push(lua.LString(p))
	} else {
		L.Push(lua.LNil)
	}
	return 1
}

func (r *Runtime) lineNumber(L *lua.LState) int {
	if n, ok := r.env.LineNumber(); ok {
		L.Push(lua.LNumber(float64(n)))
	} else {
		L.Push(lua.LNil)
	}
	return 1
}

func (r *Runtime) channel(L *lua.LState) int {
	if c, ok := r.env.Channel(); ok {
		L.Push(lua.LString(c))
	} else {
		L.Push(lua.LNil)
	}
	return 1
}

func (r *Runtime) isEOF(L *lua.LState) int {
	L.Push(lua.LBool(r.env.IsEOF()))
	return 1
}

func (r *Runtime) param(L *lua.LState) int {
	v, err := r.env.Param(L.CheckString(1))
	if err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}
	L.Push(lua.LString(v))
	return 1
}

func (r *Runtime) hasParam(L *lua.LState) int {
	L.Push(lua.LBool(r.env.HasParam(L.CheckString(1))))
	return 1
}

func (r *Runtime) group(L *lua.LState) int {
	v, err := r.env.Group(L.CheckInt(1))
	if err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}
	L.Push(lua.LString(v))
	return 1
}

func (r *Runtime) groupCount(L *lua.LState) int {
	L.Push(lua.LNumber(float64(r.env.GroupCount())))
	return 1
}

func (r *Runtime) info(L *lua.LState) int {
	r.env.Info(L.ToStringMeta(L.CheckAny(1)).String())
	return 0
}

func (r *Runtime) debug(L *lua.LState) int {
	r.env.Debug(L.ToStringMeta(L.CheckAny(1)).String())
	return 0
}

func (r *Runtime) halt(L *lua.LState) int {
	r.env.Halt()
	return 0
}

func (r *Runtime) accept(L *lua.LState) int {
	if err := r.env.Accept(L.OptString(1, "")); err != nil {
		L.RaiseError("%s", err.Error())
	}
	return 0
}

func (r *Runtime) reject(L *lua.LState) int {
	if err := r.env.Reject(L.OptString(1, "")); err != nil {
		L.RaiseError("%s", err.Error())
	}
	return 0
}

func (r *Runtime) host(name string) lua.LGFunction {
	return func(L *lua.LState) int {
		args := make([]any, L.GetTop())
		for i := range args {
			args[i] = toGo(L.Get(i + 1))
		}
		out, err := r.env.Call(L.Context(), name, args)
		if err != nil {
			L.RaiseError("%s", err.Error())
			return 0
		}
		L.Push(toLua(out))
		return 1
	}
}
