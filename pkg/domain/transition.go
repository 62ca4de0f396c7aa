package domain

import "strings"

// RequiredConditions is the policy applied to an edge's applicable conditions.
type RequiredConditions string

const (
	// RequireAll needs every applicable active condition to hold (default).
	RequireAll RequiredConditions = "ALL"
	// RequireOne needs at least one applicable active condition to hold.
	RequireOne RequiredConditions = "ONE"
)

// ParseRequiredConditions accepts ALL/AND and ONE/OR (case-insensitive). Empty means ALL.
func ParseRequiredConditions(s string) (RequiredConditions, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "ALL", "AND":
		return RequireAll, true
	case "ONE", "OR":
		return RequireOne, true
	default:
		return "", false
	}
}

// EdgeDef defines a guarded transition between two nodes.
type EdgeDef struct {
	ID            string `json:"id" yaml:"id" mapstructure:"id" validate:"required"`
	Name          string `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Description   string `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	SourceID      string `json:"source_id" yaml:"source_id" mapstructure:"source_id" validate:"required"`
	DestinationID string `json:"destination_id" yaml:"destination_id" mapstructure:"destination_id" validate:"required"`

	// Conditions. Every configured field becomes an "active" condition.
	Regex         string `json:"regex,omitempty" yaml:"regex,omitempty" mapstructure:"regex"`
	CheckExp      string `json:"check_exp,omitempty" yaml:"check_exp,omitempty" mapstructure:"check_exp"`
	TriggerAlways bool   `json:"trigger_always,omitempty" yaml:"trigger_always,omitempty" mapstructure:"trigger_always"`
	// TriggerOnEOF is active whenever it is set, even to false.
	TriggerOnEOF *bool `json:"trigger_on_eof,omitempty" yaml:"trigger_on_eof,omitempty" mapstructure:"trigger_on_eof"`

	// Time intervals, e.g. "[10ms; 20min)".
	TimeSinceLastMicrotransition string `json:"time_interval_since_last_microtransition,omitempty" yaml:"time_interval_since_last_microtransition,omitempty" mapstructure:"time_interval_since_last_microtransition"`
	TimeSinceLastTransition      string `json:"time_interval_since_last_transition,omitempty" yaml:"time_interval_since_last_transition,omitempty" mapstructure:"time_interval_since_last_transition"`
	TimeSinceStart               string `json:"time_interval_since_start,omitempty" yaml:"time_interval_since_start,omitempty" mapstructure:"time_interval_since_start"`
	TimeForEvent                 string `json:"time_interval_for_event,omitempty" yaml:"time_interval_for_event,omitempty" mapstructure:"time_interval_for_event"`

	RequiredConditions string `json:"required_conditions,omitempty" yaml:"required_conditions,omitempty" mapstructure:"required_conditions"`
	Channel            string `json:"channel,omitempty" yaml:"channel,omitempty" mapstructure:"channel"`
	OnWalk             string `json:"on_walk,omitempty" yaml:"on_walk,omitempty" mapstructure:"on_walk"`
}

// Label returns the display name of the edge, falling back to its ID.
func (e EdgeDef) Label() string {
	if e.Name != "" {
		return e.Name
	}
	return e.ID
}
