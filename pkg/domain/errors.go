package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrVerdictNotFound is returned when a verdict ID cannot be found in a store.
var ErrVerdictNotFound = errors.New("verdict not found")

// ErrNoDefinition is returned by loaders that have nothing to load.
var ErrNoDefinition = errors.New("no automaton definition")

// ExecutionErrorCode categorizes execution-time failures.
type ExecutionErrorCode string

const (
	// ErrCodeAmbiguousTransition: several edges matched and they are not equivalent.
	ErrCodeAmbiguousTransition ExecutionErrorCode = "AMBIGUOUS_TRANSITION"
	// ErrCodeScriptFailure: an embedded script raised an error.
	ErrCodeScriptFailure ExecutionErrorCode = "SCRIPT_FAILURE"
	// ErrCodeUndefinedParameter: a script asked for a parameter that was not supplied.
	ErrCodeUndefinedParameter ExecutionErrorCode = "UNDEFINED_PARAMETER"
	// ErrCodeCaptureGroupRange: a script asked for a capture group that does not exist.
	ErrCodeCaptureGroupRange ExecutionErrorCode = "CAPTURE_GROUP_RANGE"
	// ErrCodeConflictingVerdict: a script called both accept and reject.
	ErrCodeConflictingVerdict ExecutionErrorCode = "CONFLICTING_VERDICT"
)

// ExecutionError is returned by the feed methods when the automaton fails while
// processing an event. The automaton is defective afterwards.
type ExecutionError struct {
	Code    ExecutionErrorCode
	Message string
	NodeID  string
	EdgeIDs []string
	Err     error
}

func (e *ExecutionError) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Code))
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if e.NodeID != "" {
		fmt.Fprintf(&sb, " (node=%s", e.NodeID)
		if len(e.EdgeIDs) > 0 {
			fmt.Fprintf(&sb, ", edges=%s", strings.Join(e.EdgeIDs, ","))
		}
		sb.WriteString(")")
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// IsExecutionError reports whether err carries an ExecutionError with the given code.
func IsExecutionError(err error, code ExecutionErrorCode) bool {
	var ee *ExecutionError
	if errors.As(err, &ee) {
		return ee.Code == code
	}
	return false
}

// DefinitionError aggregates every load-time problem found in a Definition.
type DefinitionError struct {
	Problems []error
}

func (e *DefinitionError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid automaton: " + e.Problems[0].Error()
	}
	msg := fmt.Sprintf("invalid automaton: %d problems:\n", len(e.Problems))
	for i, err := range e.Problems {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// Unwrap exposes the individual problems to errors.Is / errors.As.
func (e *DefinitionError) Unwrap() []error { return e.Problems }
