package domain

// NodeType defines the role of a node in the verdict.
type NodeType string

const (
	// NodeTypeInitial marks the entry node. Exactly one per automaton.
	NodeTypeInitial NodeType = "INITIAL"
	// NodeTypeSuccess marks an accepting node.
	NodeTypeSuccess NodeType = "SUCCESS"
	// NodeTypeFailure marks a rejecting sink. It must not have outgoing edges.
	NodeTypeFailure NodeType = "FAILURE"
	// NodeTypeNone is an intermediate node.
	NodeTypeNone NodeType = ""
)

// NodeDef describes a state of the automaton.
type NodeDef struct {
	ID          string   `json:"id" yaml:"id" mapstructure:"id" validate:"required"`
	Name        string   `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Type        NodeType `json:"type,omitempty" yaml:"type,omitempty" mapstructure:"type" validate:"omitempty,oneof=INITIAL SUCCESS FAILURE"`

	// Scripts
	OnEnter string `json:"on_enter,omitempty" yaml:"on_enter,omitempty" mapstructure:"on_enter"`
	OnLeave string `json:"on_leave,omitempty" yaml:"on_leave,omitempty" mapstructure:"on_leave"`
	// SuccessCheck is only legal on SUCCESS nodes. It decides whether ending here is a pass.
	SuccessCheck string `json:"success_check,omitempty" yaml:"success_check,omitempty" mapstructure:"success_check"`

	// Wait suspends further microtransitions once the node is entered,
	// until the next event arrives.
	Wait bool `json:"wait,omitempty" yaml:"wait,omitempty" mapstructure:"wait"`
}

// Label returns the display name of the node, falling back to its ID.
func (n NodeDef) Label() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}
