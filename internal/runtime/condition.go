package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/vigil/pkg/domain"
	"github.com/aretw0/vigil/pkg/script"
	"github.com/dlclark/regexp2"
)

// ConditionKind is the closed set of guards an edge can carry.
type ConditionKind int

const (
	AlwaysTrigger ConditionKind = iota
	EndOfStream
	Regex
	TimeInterval
	ScriptCheck
)

func (k ConditionKind) String() string {
	switch k {
	case AlwaysTrigger:
		return "trigger_always"
	case EndOfStream:
		return "trigger_on_eof"
	case Regex:
		return "regex"
	case TimeInterval:
		return "time_interval"
	case ScriptCheck:
		return "check_exp"
	default:
		return "unknown"
	}
}

// Condition is one guard of an edge. Every edge carries all eight instances
// (one per kind, four intervals), only the configured ones are active.
type Condition struct {
	kind ConditionKind

	// AlwaysTrigger / EndOfStream
	configured bool
	value      bool

	// Regex
	pattern *regexp2.Regexp

	// TimeInterval
	ref      ClockReference
	interval *Interval

	// ScriptCheck
	check script.Compiled
}

func newAlwaysTrigger(enabled bool) Condition {
	return Condition{kind: AlwaysTrigger, configured: enabled, value: true}
}

func newEndOfStream(v *bool) Condition {
	c := Condition{kind: EndOfStream}
	if v != nil {
		c.configured = true
		c.value = *v
	}
	return c
}

func newRegex(pattern string) (Condition, error) {
	c := Condition{kind: Regex}
	if pattern == "" {
		return c, nil
	}
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return c, fmt.Errorf("regex %q does not compile: %w", pattern, err)
	}
	c.pattern = re
	return c, nil
}

func newTimeInterval(ref ClockReference, literal string) (Condition, error) {
	c := Condition{kind: TimeInterval, ref: ref}
	if literal == "" {
		return c, nil
	}
	iv, err := ParseInterval(literal)
	if err != nil {
		return c, fmt.Errorf("time_interval_%s: %w", ref, err)
	}
	c.interval = iv
	return c, nil
}

func newScriptCheck(compiled script.Compiled) Condition {
	return Condition{kind: ScriptCheck, check: compiled}
}

// Kind returns the condition kind.
func (c *Condition) Kind() ConditionKind { return c.kind }

// Active reports whether the condition was configured on its edge.
func (c *Condition) Active() bool {
	switch c.kind {
	case AlwaysTrigger, EndOfStream:
		return c.configured
	case Regex:
		return c.pattern != nil
	case TimeInterval:
		return c.interval != nil
	case ScriptCheck:
		return c.check != nil
	default:
		return false
	}
}

// Applicable reports whether the condition takes part in evaluating ev.
// Only end-of-stream conditions apply to EOF; every other kind applies to log entries.
func (c *Condition) Applicable(ev domain.Event) bool {
	if c.kind == EndOfStream {
		return ev.IsEOF()
	}
	return !ev.IsEOF()
}

// Evaluate decides the condition for ev. A matching regex publishes its capture
// groups to env; a non-matching one clears them.
func (c *Condition) Evaluate(ctx context.Context, ev domain.Event, clock *Clock, env *script.Environment) (bool, error) {
	switch c.kind {
	case AlwaysTrigger:
		return true, nil
	case EndOfStream:
		return c.value, nil
	case Regex:
		return c.evaluateRegex(ev, env)
	case TimeInterval:
		return c.interval.ContainsMillis(ev.Entry.Timestamp - clock.Reference(c.ref)), nil
	case ScriptCheck:
		v, err := runScript(ctx, c.check, env)
		if err != nil {
			return false, err
		}
		return script.Truthy(v), nil
	default:
		return false, fmt.Errorf("unknown condition kind %d", c.kind)
	}
}

func (c *Condition) evaluateRegex(ev domain.Event, env *script.Environment) (bool, error) {
	m, err := c.pattern.FindStringMatch(ev.Entry.Payload)
	if err != nil {
		env.ClearGroups()
		return false, err
	}
	if m == nil {
		env.ClearGroups()
		return false, nil
	}
	groups := m.Groups()
	captured := make([]string, len(groups))
	for i, g := range groups {
		captured[i] = g.String()
	}
	env.SetGroups(captured)
	return true, nil
}

// runScript executes compiled and surfaces any fault the environment recorded,
// even when the script itself swallowed the error.
func runScript(ctx context.Context, compiled script.Compiled, env *script.Environment) (any, error) {
	v, err := compiled.Run(ctx)
	if fault := env.TakeFault(); fault != nil {
		return nil, fault
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}
