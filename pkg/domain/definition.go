package domain

// Definition is the in-memory form of an automaton contract.
// It is produced once by a loader (file, memory, DSL) and never re-read by the engine.
type Definition struct {
	// Name is an optional label used in logs, metrics and reports.
	Name        string `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`

	// OnLoad runs once, right before the initial node is entered.
	OnLoad string `json:"on_load,omitempty" yaml:"on_load,omitempty" mapstructure:"on_load"`

	// ScriptLanguage selects the embedded runtime ("lua" by default, or "expr").
	ScriptLanguage string `json:"script_language,omitempty" yaml:"script_language,omitempty" mapstructure:"script_language"`

	// Parameters declares the type of each ${name} parameter (string, int, float,
	// bool, regex, duration, or a "[type]" list). Undeclared parameters are unchecked.
	Parameters map[string]string `json:"parameters,omitempty" yaml:"parameters,omitempty" mapstructure:"parameters"`

	Nodes []NodeDef `json:"nodes" yaml:"nodes" mapstructure:"nodes" validate:"dive"`
	Edges []EdgeDef `json:"edges" yaml:"edges" mapstructure:"edges" validate:"dive"`
}

// Node returns the definition of the node with the given id.
func (d *Definition) Node(id string) (NodeDef, bool) {
	for _, n := range d.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return NodeDef{}, false
}

// Outgoing returns the edges leaving the node with the given id, in definition order.
func (d *Definition) Outgoing(id string) []EdgeDef {
	var out []EdgeDef
	for _, e := range d.Edges {
		if e.SourceID == id {
			out = append(out, e)
		}
	}
	return out
}
