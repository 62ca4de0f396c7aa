package runtime

import (
	"errors"
	"fmt"

	"github.com/aretw0/vigil/pkg/domain"
	"github.com/aretw0/vigil/pkg/schema"
	"github.com/aretw0/vigil/pkg/script"
	"github.com/go-playground/validator/v10"
)

var structValidator = validator.New()

// Graph is the compiled automaton structure. It is built once per instance;
// only the engine's run state changes afterwards.
type Graph struct {
	Description string

	onLoad  script.Compiled
	initial *Node
	nodes   []*Node
	index   map[string]*Node
	edges   []*Edge
}

// Initial returns the INITIAL node.
func (g *Graph) Initial() *Node { return g.initial }

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.index[id]
	return n, ok
}

// Nodes returns every node in definition order.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Edges returns every edge in definition order.
func (g *Graph) Edges() []*Edge { return g.edges }

// builder accumulates problems while compiling a definition so that a single
// DefinitionError lists all of them.
type builder struct {
	rt       script.Runtime
	sub      *substituter
	problems []error
}

func (b *builder) fail(format string, args ...any) {
	b.problems = append(b.problems, fmt.Errorf(format, args...))
}

func (b *builder) compile(where, source string) script.Compiled {
	if source == "" || b.rt == nil {
		return nil
	}
	c, err := b.rt.Compile(where, source)
	if err != nil {
		b.problems = append(b.problems, err)
		return nil
	}
	return c
}

// buildGraph compiles def in two passes: nodes into an index first, then edges
// resolved through it. rt may be nil when the script language is unknown; the
// caller has already reported that.
func buildGraph(def *domain.Definition, params map[string]string, rt script.Runtime) (*Graph, error) {
	b := &builder{rt: rt, sub: &substituter{params: params}}

	if err := structValidator.Struct(def); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				b.fail("%s: failed %q validation", fe.Namespace(), fe.Tag())
			}
		} else {
			b.problems = append(b.problems, err)
		}
	}

	b.checkParameters(def.Parameters, params)

	g := &Graph{
		Description: b.sub.apply("description", def.Description),
		onLoad:      b.compile("on_load", def.OnLoad),
		index:       make(map[string]*Node, len(def.Nodes)),
	}

	initials := 0
	for _, nd := range def.Nodes {
		if nd.ID == "" {
			continue // reported by the struct validator
		}
		if _, dup := g.index[nd.ID]; dup {
			b.fail("duplicate node id %q", nd.ID)
			continue
		}
		where := fmt.Sprintf("node %q", nd.ID)
		n := &Node{
			ID:          nd.ID,
			Name:        b.sub.apply(where+" name", nd.Name),
			Description: b.sub.apply(where+" description", nd.Description),
			Type:        nd.Type,
			Wait:        nd.Wait,
			onEnter:     b.compile(where+" on_enter", nd.OnEnter),
			onLeave:     b.compile(where+" on_leave", nd.OnLeave),
		}
		if nd.SuccessCheck != "" {
			if nd.Type != domain.NodeTypeSuccess {
				b.fail("%s: success_check is only allowed on SUCCESS nodes", where)
			} else {
				n.successCheck = b.compile(where+" success_check", nd.SuccessCheck)
			}
		}
		if nd.Type == domain.NodeTypeInitial {
			initials++
			if g.initial == nil {
				g.initial = n
			}
		}
		g.index[n.ID] = n
		g.nodes = append(g.nodes, n)
	}

	switch initials {
	case 1:
	case 0:
		b.fail("no INITIAL node")
	default:
		b.fail("%d INITIAL nodes, exactly one is required", initials)
	}

	seen := make(map[string]bool, len(def.Edges))
	for _, ed := range def.Edges {
		if ed.ID == "" {
			continue
		}
		if seen[ed.ID] {
			b.fail("duplicate edge id %q", ed.ID)
			continue
		}
		seen[ed.ID] = true
		if e := b.edge(g, ed); e != nil {
			g.edges = append(g.edges, e)
			e.Source.outgoing = append(e.Source.outgoing, e)
			e.Destination.incoming = append(e.Destination.incoming, e)
		}
	}

	for _, n := range g.nodes {
		if n.Type == domain.NodeTypeFailure && len(n.outgoing) > 0 {
			b.fail("FAILURE node %q has %d outgoing edges", n.ID, len(n.outgoing))
		}
	}

	b.problems = append(b.problems, b.sub.problems...)
	if len(b.problems) > 0 {
		return nil, &domain.DefinitionError{Problems: b.problems}
	}
	return g, nil
}

// durationType lets parameters declared as "duration" be checked with the
// interval unit syntax.
var durationType = schema.Custom("duration", func(v string) error {
	_, err := parseDuration(v)
	return err
})

// checkParameters validates params against the declared parameter types.
func (b *builder) checkParameters(declared, params map[string]string) {
	if len(declared) == 0 {
		return
	}
	s, err := schema.ParseTypeMap(declared, durationType)
	if err == nil {
		err = schema.Validate(s, params)
	}
	b.problems = append(b.problems, schema.ValidationErrors(err)...)
}

func (b *builder) edge(g *Graph, ed domain.EdgeDef) *Edge {
	where := fmt.Sprintf("edge %q", ed.ID)

	src, ok := g.index[ed.SourceID]
	if !ok && ed.SourceID != "" {
		b.fail("%s: unknown source node %q", where, ed.SourceID)
	}
	dst, ok := g.index[ed.DestinationID]
	if !ok && ed.DestinationID != "" {
		b.fail("%s: unknown destination node %q", where, ed.DestinationID)
	}

	policy, ok := domain.ParseRequiredConditions(ed.RequiredConditions)
	if !ok {
		b.fail("%s: required_conditions %q is not one of ALL, AND, ONE, OR", where, ed.RequiredConditions)
	}

	e := &Edge{
		ID:          ed.ID,
		Name:        b.sub.apply(where+" name", ed.Name),
		Description: b.sub.apply(where+" description", ed.Description),
		Source:      src,
		Destination: dst,
		policy:      policy,
		channel:     b.sub.apply(where+" channel", ed.Channel),
		onWalk:      b.compile(where+" on_walk", ed.OnWalk),
	}

	reported := len(b.problems) + len(b.sub.problems)

	regex, err := newRegex(b.sub.apply(where+" regex", ed.Regex))
	if err != nil {
		b.fail("%s: %w", where, err)
	}
	e.conditions = append(e.conditions,
		regex,
		newAlwaysTrigger(ed.TriggerAlways),
		newEndOfStream(ed.TriggerOnEOF),
	)

	intervals := []struct {
		ref     ClockReference
		literal string
	}{
		{SinceLastMicrotransition, ed.TimeSinceLastMicrotransition},
		{SinceLastTransition, ed.TimeSinceLastTransition},
		{SinceStart, ed.TimeSinceStart},
		{ForEvent, ed.TimeForEvent},
	}
	for _, iv := range intervals {
		literal := b.sub.apply(fmt.Sprintf("%s time_interval_%s", where, iv.ref), iv.literal)
		c, err := newTimeInterval(iv.ref, literal)
		if err != nil {
			b.fail("%s: %w", where, err)
		}
		e.conditions = append(e.conditions, c)
	}

	e.conditions = append(e.conditions, newScriptCheck(b.compile(where+" check_exp", ed.CheckExp)))

	// A condition that failed to build has already been reported, as has a
	// check script left uncompiled by an unknown language.
	broken := len(b.problems)+len(b.sub.problems) > reported || (ed.CheckExp != "" && b.rt == nil)
	if !broken && !hasActiveCondition(e.conditions) {
		b.fail("%s: no active condition", where)
	}

	if src == nil || dst == nil {
		return nil
	}
	return e
}

// hasActiveCondition decides on the built conditions, after substitution: a
// pattern or interval that substitutes to "" leaves its condition inactive.
func hasActiveCondition(conditions []Condition) bool {
	for i := range conditions {
		if conditions[i].Active() {
			return true
		}
	}
	return false
}
