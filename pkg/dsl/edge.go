package dsl

import "github.com/aretw0/vigil/pkg/domain"

// EdgeBuilder provides a fluent API for configuring an edge.
type EdgeBuilder struct {
	edge domain.EdgeDef
	from *NodeBuilder
}

// Name sets the display name.
func (e *EdgeBuilder) Name(name string) *EdgeBuilder {
	e.edge.Name = name
	return e
}

// Describe sets the edge description.
func (e *EdgeBuilder) Describe(description string) *EdgeBuilder {
	e.edge.Description = description
	return e
}

// Match adds a regex condition on the payload.
func (e *EdgeBuilder) Match(pattern string) *EdgeBuilder {
	e.edge.Regex = pattern
	return e
}

// Check adds a script condition.
func (e *EdgeBuilder) Check(source string) *EdgeBuilder {
	e.edge.CheckExp = source
	return e
}

// Always makes the edge fire on every log entry.
func (e *EdgeBuilder) Always() *EdgeBuilder {
	e.edge.TriggerAlways = true
	return e
}

// OnEOF adds an end-of-stream condition with the given outcome.
func (e *EdgeBuilder) OnEOF(fire bool) *EdgeBuilder {
	e.edge.TriggerOnEOF = &fire
	return e
}

// SinceStart bounds the time elapsed since the first event, e.g. "(;5s]".
func (e *EdgeBuilder) SinceStart(interval string) *EdgeBuilder {
	e.edge.TimeSinceStart = interval
	return e
}

// SinceLastTransition bounds the time elapsed since the last node change.
func (e *EdgeBuilder) SinceLastTransition(interval string) *EdgeBuilder {
	e.edge.TimeSinceLastTransition = interval
	return e
}

// SinceLastMicrotransition bounds the time elapsed since the last edge taken.
func (e *EdgeBuilder) SinceLastMicrotransition(interval string) *EdgeBuilder {
	e.edge.TimeSinceLastMicrotransition = interval
	return e
}

// ForEvent bounds the event timestamp itself.
func (e *EdgeBuilder) ForEvent(interval string) *EdgeBuilder {
	e.edge.TimeForEvent = interval
	return e
}

// AnyOf switches the edge to fire when at least one condition holds.
func (e *EdgeBuilder) AnyOf() *EdgeBuilder {
	e.edge.RequiredConditions = string(domain.RequireOne)
	return e
}

// Channel restricts the edge to entries of one channel.
func (e *EdgeBuilder) Channel(channel string) *EdgeBuilder {
	e.edge.Channel = channel
	return e
}

// OnWalk sets the script run while the edge is taken.
func (e *EdgeBuilder) OnWalk(source string) *EdgeBuilder {
	e.edge.OnWalk = source
	return e
}

// Done returns to the source node builder.
func (e *EdgeBuilder) Done() *NodeBuilder {
	return e.from
}

// Build returns the underlying domain.EdgeDef.
func (e *EdgeBuilder) Build() domain.EdgeDef {
	return e.edge
}
