package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/vigil/pkg/domain"
	"github.com/aretw0/vigil/pkg/registry"
	"github.com/aretw0/vigil/pkg/script"
)

// Automaton runs one compiled definition over one stream of events.
//
// An Automaton is owned by the goroutine that feeds it; it does no locking.
// Construction never fails: load-time problems make the instance defective and are
// reported through ErrorReason.
type Automaton struct {
	name      string
	logger    *slog.Logger
	hooks     domain.LifecycleHooks
	factories map[string]script.Factory
	functions *registry.Registry

	graph   *Graph
	env     *script.Environment
	scripts script.Runtime

	clock   Clock
	started bool
	current *Node
	last    *domain.Transition
	defect  error
}

// New compiles def with params. It never returns nil.
func New(def *domain.Definition, params map[string]string, opts ...Option) *Automaton {
	a := &Automaton{
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		factories: defaultFactories(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if def == nil {
		a.env = script.NewEnvironment(params, a.logger)
		a.markDefective(&domain.DefinitionError{Problems: []error{domain.ErrNoDefinition}})
		return a
	}
	if a.name == "" {
		a.name = def.Name
	}
	a.logger = a.logger.With("automaton", a.name)
	a.env = script.NewEnvironment(params, a.logger)
	a.env.SetFunctions(a.functions)

	var problems []error
	lang := def.ScriptLanguage
	if lang == "" {
		lang = domain.DefaultScriptLanguage
	}
	if factory, ok := a.factories[lang]; !ok {
		problems = append(problems, fmt.Errorf("unknown script language %q", lang))
	} else if rt, err := factory(a.env); err != nil {
		problems = append(problems, fmt.Errorf("script language %q: %w", lang, err))
	} else {
		a.scripts = rt
	}

	g, err := buildGraph(def, params, a.scripts)
	if err != nil {
		if de, ok := err.(*domain.DefinitionError); ok {
			problems = append(problems, de.Problems...)
		} else {
			problems = append(problems, err)
		}
	}
	if len(problems) > 0 {
		a.markDefective(&domain.DefinitionError{Problems: problems})
		return a
	}
	a.graph = g
	return a
}

// NewDefective returns an automaton that is defective from the start, for callers
// that failed before a definition was available.
func NewDefective(err error, opts ...Option) *Automaton {
	a := &Automaton{
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		factories: defaultFactories(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.env = script.NewEnvironment(nil, a.logger)
	a.markDefective(err)
	return a
}

// Name returns the automaton name.
func (a *Automaton) Name() string { return a.name }

// ProceedWithLogEntry feeds one log entry. It is a no-op once the automaton can no
// longer proceed. A returned error is an *domain.ExecutionError and leaves the
// automaton defective.
func (a *Automaton) ProceedWithLogEntry(ctx context.Context, entry domain.LogEntry) error {
	return a.pushEvent(ctx, domain.NewLogEntryEvent(entry))
}

// PushEOF feeds the end-of-stream marker, with the same gating as ProceedWithLogEntry.
func (a *Automaton) PushEOF(ctx context.Context) error {
	return a.pushEvent(ctx, domain.EOFEvent())
}

// CanProceed is false once the automaton is defective, halted, accepted or rejected,
// or when the current node (the initial one before any event) is a FAILURE node or
// has no outgoing edges.
func (a *Automaton) CanProceed() bool {
	if a.defect != nil || a.env.Halted() || a.env.Accepted() || a.env.Rejected() {
		return false
	}
	n := a.node()
	if n == nil || n.Type == domain.NodeTypeFailure {
		return false
	}
	return len(n.outgoing) > 0
}

// Succeeded reports the verdict. An explicit accept or reject wins; otherwise the
// current node must be a SUCCESS node whose success check, if any, holds.
// A success check that fails to run makes the automaton defective.
func (a *Automaton) Succeeded() bool {
	ok, _ := a.verdict()
	return ok
}

// IsDefective reports whether a load-time or execution error was captured.
func (a *Automaton) IsDefective() bool { return a.defect != nil }

// Defect returns the captured error, if any.
func (a *Automaton) Defect() error { return a.defect }

// ErrorReason explains why Succeeded is false. It is empty (false) on success.
func (a *Automaton) ErrorReason() (string, bool) {
	ok, reason := a.verdict()
	if ok {
		return "", false
	}
	return reason, true
}

// Description returns the automaton description after parameter substitution.
func (a *Automaton) Description() string {
	if a.graph == nil {
		return ""
	}
	return a.graph.Description
}

// CurrentNode returns the id of the current node, or "" before the first event.
func (a *Automaton) CurrentNode() string {
	if a.current == nil {
		return ""
	}
	return a.current.ID
}

// LastTransition returns the most recent microtransition.
func (a *Automaton) LastTransition() (domain.Transition, bool) {
	if a.last == nil {
		return domain.Transition{}, false
	}
	return *a.last, true
}

// Graph returns the compiled graph, or nil when the automaton is defective at load.
func (a *Automaton) Graph() *Graph { return a.graph }

// Close releases the script runtime.
func (a *Automaton) Close() error {
	if c, ok := a.scripts.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// node is the current node, or the pending initial node before the first event.
func (a *Automaton) node() *Node {
	if a.current != nil {
		return a.current
	}
	if a.graph == nil {
		return nil
	}
	return a.graph.initial
}

func (a *Automaton) verdict() (bool, string) {
	if a.defect != nil {
		return false, a.defect.Error()
	}
	if a.env.Accepted() {
		return true, ""
	}
	if a.env.Rejected() {
		if msg := a.env.RejectMessage(); msg != "" {
			return false, msg
		}
		return false, "rejected by script" + a.lastTransitionNote()
	}

	n := a.node()
	if n == nil {
		return false, "automaton has no initial node"
	}

	var reason string
	switch n.Type {
	case domain.NodeTypeSuccess:
		if n.successCheck == nil {
			return true, ""
		}
		v, err := runScript(context.Background(), n.successCheck, a.env)
		if err != nil {
			a.markDefective(a.executionError(err, n, nil))
			return false, a.defect.Error()
		}
		if script.Truthy(v) {
			return true, ""
		}
		reason = fmt.Sprintf("success check of node %q failed", n.Label())
	case domain.NodeTypeFailure:
		reason = fmt.Sprintf("reached FAILURE node %q", n.Label())
	default:
		reason = fmt.Sprintf("stopped in non-SUCCESS node %q", n.Label())
	}
	if n.Description != "" {
		reason += ": " + n.Description
	}
	return false, reason + a.lastTransitionNote()
}

func (a *Automaton) lastTransitionNote() string {
	if a.last == nil {
		return " (no transition taken)"
	}
	at := "EOF"
	if !a.last.EOF {
		at = fmt.Sprintf("line %d", a.last.LineNumber)
	}
	return fmt.Sprintf(" (last transition from %q via edge %q at +%dms, %s)",
		a.last.FromNodeID, a.last.EdgeID, a.last.Elapsed, at)
}

func (a *Automaton) markDefective(err error) {
	if a.defect != nil {
		return
	}
	a.defect = err
	a.logger.Warn("automaton is defective", "err", err)
}
