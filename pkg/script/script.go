package script

import (
	"context"
	"fmt"
	"math"
)

// Runtime compiles scripts for one automaton instance.
type Runtime interface {
	// Compile parses source once. name is used in error messages.
	Compile(name, source string) (Compiled, error)
}

// Compiled is a ready-to-run script.
type Compiled interface {
	// Run executes the script and returns its normalized result.
	Run(ctx context.Context) (any, error)
}

// Factory builds a Runtime bound to an Environment.
type Factory func(env *Environment) (Runtime, error)

// CompileError reports a script that failed to compile.
type CompileError struct {
	Name string
	Err  error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("script %s does not compile: %v", e.Name, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// Truthy coerces a script result to a boolean.
//
//	bool    -> itself
//	integer -> value != 0
//	string  -> len > 0
//	float   -> value != 0.0
//	other   -> false
func Truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case int:
		return t != 0
	case int8:
		return t != 0
	case int16:
		return t != 0
	case int32:
		return t != 0
	case int64:
		return t != 0
	case uint:
		return t != 0
	case uint8:
		return t != 0
	case uint16:
		return t != 0
	case uint32:
		return t != 0
	case uint64:
		return t != 0
	case string:
		return len(t) > 0
	case float32:
		return t != 0
	case float64:
		return t != 0
	default:
		return false
	}
}

// Normalize maps a backend value onto nil | bool | int64 | float64 | string.
// Values of any other type are returned as nil.
func Normalize(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case bool, int64, float64, string:
		return t
	case int:
		return int64(t)
	case int8:
		return int64(t)
	case int16:
		return int64(t)
	case int32:
		return int64(t)
	case uint:
		return fromUint64(uint64(t))
	case uint8:
		return int64(t)
	case uint16:
		return int64(t)
	case uint32:
		return int64(t)
	case uint64:
		return fromUint64(t)
	case float32:
		return float64(t)
	default:
		return nil
	}
}

// fromUint64 keeps values above math.MaxInt64 as float64 rather than wrapping.
func fromUint64(v uint64) any {
	if v > math.MaxInt64 {
		return float64(v)
	}
	return int64(v)
}
