package runtime

import (
	"context"
	"errors"
	"time"

	"github.com/aretw0/vigil/pkg/domain"
	"github.com/aretw0/vigil/pkg/script"
)

func (a *Automaton) pushEvent(ctx context.Context, ev domain.Event) error {
	if a.defect != nil {
		return nil
	}
	if !a.started {
		if err := a.start(ctx, ev); err != nil {
			return a.fail(err)
		}
	}
	if !a.CanProceed() {
		return nil
	}

	if !ev.IsEOF() {
		a.clock.Observe(ev.Entry.Timestamp)
	}
	a.env.SetEvent(ev, a.clock.CurrentEvent)

	origin := a.current
	visited := map[*Node]bool{origin: true}
	for first := true; a.CanProceed() && (first || !a.current.Wait); first = false {
		more, err := a.proceed(ctx, ev, visited)
		if err != nil {
			return a.fail(err)
		}
		if !more {
			break
		}
	}

	if a.current != origin {
		a.clock.MarkTransition()
	}
	return nil
}

// start runs on_load and enters the initial node. The clock is seeded from the
// first event; an EOF-only run starts at zero.
func (a *Automaton) start(ctx context.Context, ev domain.Event) error {
	a.started = true
	var t int64
	if !ev.IsEOF() {
		t = ev.Entry.Timestamp
	}
	a.clock.Seed(t)

	if a.graph.onLoad != nil {
		if _, err := runScript(ctx, a.graph.onLoad, a.env); err != nil {
			return a.executionError(err, nil, nil)
		}
	}

	a.current = a.graph.initial
	a.emitNodeEnter(ctx, a.current)
	if a.current.onEnter != nil {
		if _, err := runScript(ctx, a.current.onEnter, a.env); err != nil {
			return a.executionError(err, a.current, nil)
		}
	}
	return nil
}

// proceed performs at most one microtransition. It reports whether the caller
// should keep iterating.
func (a *Automaton) proceed(ctx context.Context, ev domain.Event, visited map[*Node]bool) (bool, error) {
	from := a.current

	var matched []*Edge
	var groups [][]string
	for _, e := range from.outgoing {
		ok, g, err := e.Matches(ctx, ev, &a.clock, a.env)
		if err != nil {
			return false, a.executionError(err, from, []*Edge{e})
		}
		if ok {
			matched = append(matched, e)
			groups = append(groups, g)
		}
	}

	if len(matched) == 0 {
		return false, nil
	}
	if len(matched) > 1 && !equivalent(matched) {
		return false, &domain.ExecutionError{
			Code:    domain.ErrCodeAmbiguousTransition,
			Message: "several non-equivalent edges match the same event",
			NodeID:  from.ID,
			EdgeIDs: edgeIDs(matched),
		}
	}

	edge := matched[0]
	loop := visited[edge.Destination]
	visited[edge.Destination] = true

	if err := a.walk(ctx, ev, edge, groups[0]); err != nil {
		return false, err
	}
	return !loop, nil
}

// equivalent reports whether matching edges lead to the same node and none of them
// runs an on_walk script.
func equivalent(edges []*Edge) bool {
	dst := edges[0].Destination
	for _, e := range edges {
		if e.Destination != dst || e.onWalk != nil {
			return false
		}
	}
	return true
}

// walk takes edge: on_leave, on_walk with the edge's capture groups, move, on_enter.
func (a *Automaton) walk(ctx context.Context, ev domain.Event, edge *Edge, groups []string) error {
	from := edge.Source

	if from.onLeave != nil {
		if _, err := runScript(ctx, from.onLeave, a.env); err != nil {
			return a.executionError(err, from, []*Edge{edge})
		}
	}
	a.emitNodeLeave(ctx, from)

	if edge.onWalk != nil {
		a.env.SetGroups(groups)
		_, err := runScript(ctx, edge.onWalk, a.env)
		a.env.ClearGroups()
		if err != nil {
			return a.executionError(err, from, []*Edge{edge})
		}
	}

	a.current = edge.Destination
	a.emitNodeEnter(ctx, a.current)
	if a.current.onEnter != nil {
		if _, err := runScript(ctx, a.current.onEnter, a.env); err != nil {
			return a.executionError(err, a.current, []*Edge{edge})
		}
	}

	a.clock.MarkMicrotransition()
	a.last = &domain.Transition{
		FromNodeID: from.ID,
		EdgeID:     edge.ID,
		ToNodeID:   edge.Destination.ID,
		Elapsed:    a.clock.Elapsed(),
		LineNumber: ev.Entry.LineNumber,
		EOF:        ev.IsEOF(),
	}
	a.logger.Debug("microtransition",
		"from", from.ID,
		"edge", edge.ID,
		"to", edge.Destination.ID,
		"line", ev.Entry.LineNumber,
		"eof", ev.IsEOF(),
	)
	a.emitTransition(ctx, *a.last)
	return nil
}

// fail marks the automaton defective and returns err to the feeding caller.
func (a *Automaton) fail(err error) error {
	a.markDefective(err)
	return err
}

// executionError wraps err as a SCRIPT_FAILURE unless it already is an
// ExecutionError, and attaches the node and edges involved.
func (a *Automaton) executionError(err error, n *Node, edges []*Edge) error {
	var ee *domain.ExecutionError
	if errors.As(err, &ee) {
		out := *ee
		if out.NodeID == "" && n != nil {
			out.NodeID = n.ID
		}
		if len(out.EdgeIDs) == 0 {
			out.EdgeIDs = edgeIDs(edges)
		}
		return &out
	}

	msg := "script raised an error"
	var ce *script.CompileError
	if errors.As(err, &ce) {
		msg = "script does not compile"
	}
	out := &domain.ExecutionError{
		Code:    domain.ErrCodeScriptFailure,
		Message: msg,
		EdgeIDs: edgeIDs(edges),
		Err:     err,
	}
	if n != nil {
		out.NodeID = n.ID
	}
	return out
}

func edgeIDs(edges []*Edge) []string {
	if len(edges) == 0 {
		return nil
	}
	ids := make([]string, len(edges))
	for i, e := range edges {
		ids[i] = e.ID
	}
	return ids
}

func (a *Automaton) emitNodeEnter(ctx context.Context, n *Node) {
	if a.hooks.OnNodeEnter == nil {
		return
	}
	a.hooks.OnNodeEnter(ctx, &domain.NodeEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventNodeEnter, Automaton: a.name},
		NodeID:    n.ID,
		NodeType:  n.Type,
	})
}

func (a *Automaton) emitNodeLeave(ctx context.Context, n *Node) {
	if a.hooks.OnNodeLeave == nil {
		return
	}
	a.hooks.OnNodeLeave(ctx, &domain.NodeEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventNodeLeave, Automaton: a.name},
		NodeID:    n.ID,
		NodeType:  n.Type,
	})
}

func (a *Automaton) emitTransition(ctx context.Context, t domain.Transition) {
	if a.hooks.OnTransition == nil {
		return
	}
	a.hooks.OnTransition(ctx, &domain.TransitionEvent{
		EventBase:  domain.EventBase{Timestamp: time.Now(), Type: domain.EventTransition, Automaton: a.name},
		Transition: t,
	})
}
