package runtime

import (
	"context"

	"github.com/aretw0/vigil/pkg/domain"
	"github.com/aretw0/vigil/pkg/script"
)

// Edge is a compiled, guarded transition. Source and Destination never change after build.
type Edge struct {
	ID          string
	Name        string
	Description string
	Source      *Node
	Destination *Node

	// conditions are kept in evaluation order: regex first so its groups are
	// published even when a later condition decides the edge, then always, eof,
	// the four intervals and the check script.
	conditions []Condition
	policy     domain.RequiredConditions
	channel    string
	onWalk     script.Compiled
}

// Label returns the edge name, falling back to its ID.
func (e *Edge) Label() string {
	if e.Name != "" {
		return e.Name
	}
	return e.ID
}

// Channel returns the channel filter of the edge.
func (e *Edge) Channel() string { return e.channel }

// Policy returns the required-conditions policy.
func (e *Edge) Policy() domain.RequiredConditions { return e.policy }

// Conditions returns the edge's conditions in evaluation order.
func (e *Edge) Conditions() []Condition { return e.conditions }

// HasOnWalk reports whether the edge runs a script when taken.
func (e *Edge) HasOnWalk() bool { return e.onWalk != nil }

// Matches evaluates the edge against ev. On a match it returns the capture groups
// of the edge's regex, if any.
//
// Only active conditions applicable to the event kind take part. With ALL every one
// must hold and an edge with none never matches; with ONE a single one suffices.
func (e *Edge) Matches(ctx context.Context, ev domain.Event, clock *Clock, env *script.Environment) (bool, []string, error) {
	if ev.SupportsChannel() && ev.Entry.Channel != e.channel {
		return false, nil, nil
	}

	env.ClearGroups()
	defer env.ClearGroups()

	applicable := 0
	for i := range e.conditions {
		c := &e.conditions[i]
		if !c.Active() || !c.Applicable(ev) {
			continue
		}
		applicable++

		ok, err := c.Evaluate(ctx, ev, clock, env)
		if err != nil {
			return false, nil, err
		}
		if e.policy == domain.RequireOne && ok {
			return true, env.Groups(), nil
		}
		if e.policy == domain.RequireAll && !ok {
			return false, nil, nil
		}
	}

	if applicable == 0 || e.policy == domain.RequireOne {
		return false, nil, nil
	}
	return true, env.Groups(), nil
}
