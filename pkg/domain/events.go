package domain

import (
	"context"
	"time"
)

// EventType defines the category of a lifecycle event.
type EventType string

const (
	EventNodeEnter  EventType = "node_enter"
	EventNodeLeave  EventType = "node_leave"
	EventTransition EventType = "transition"
)

// EventBase contains common fields for all lifecycle events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	// Automaton is the name of the automaton emitting the event.
	Automaton string `json:"automaton"`
}

// NodeEvent represents entry or exit from a node.
type NodeEvent struct {
	EventBase
	NodeID   string   `json:"node_id"`
	NodeType NodeType `json:"node_type,omitempty"`
}

// TransitionEvent represents a microtransition along an edge.
type TransitionEvent struct {
	EventBase
	Transition Transition `json:"transition"`
}

// LifecycleHooks defines callbacks for engine observability.
// Hooks run synchronously on the goroutine feeding the automaton.
type LifecycleHooks struct {
	OnNodeEnter  func(context.Context, *NodeEvent)
	OnNodeLeave  func(context.Context, *NodeEvent)
	OnTransition func(context.Context, *TransitionEvent)
}

// Transition records a microtransition, for diagnostics.
type Transition struct {
	FromNodeID string `json:"from_node_id"`
	EdgeID     string `json:"edge_id"`
	ToNodeID   string `json:"to_node_id"`
	// Elapsed is the automaton-relative time of the triggering event, in milliseconds.
	Elapsed int64 `json:"elapsed_ms"`
	// LineNumber of the triggering entry; zero when triggered by EOF.
	LineNumber int  `json:"line_number,omitempty"`
	EOF        bool `json:"eof,omitempty"`
}

// MergeHooks returns hooks that call each of the given hooks in order.
func MergeHooks(all ...LifecycleHooks) LifecycleHooks {
	var out LifecycleHooks
	for _, h := range all {
		if h.OnNodeEnter != nil {
			prev, next := out.OnNodeEnter, h.OnNodeEnter
			out.OnNodeEnter = func(ctx context.Context, e *NodeEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				next(ctx, e)
			}
		}
		if h.OnNodeLeave != nil {
			prev, next := out.OnNodeLeave, h.OnNodeLeave
			out.OnNodeLeave = func(ctx context.Context, e *NodeEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				next(ctx, e)
			}
		}
		if h.OnTransition != nil {
			prev, next := out.OnTransition, h.OnTransition
			out.OnTransition = func(ctx context.Context, e *TransitionEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				next(ctx, e)
			}
		}
	}
	return out
}
