package script

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/vigil/pkg/domain"
	"github.com/aretw0/vigil/pkg/registry"
)

// Environment is the façade scripts use to read the current event and parameters
// and to signal halt, accept or reject. It belongs to exactly one automaton and
// is only touched by the goroutine feeding that automaton.
type Environment struct {
	params    map[string]string
	logger    *slog.Logger
	functions *registry.Registry

	hasEvent  bool
	event     domain.Event
	timestamp int64

	groups []string

	halted        bool
	accepted      bool
	rejected      bool
	acceptMessage string
	rejectMessage string

	fault error
}

// NewEnvironment creates an environment over a copy of params.
func NewEnvironment(params map[string]string, logger *slog.Logger) *Environment {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	copied := make(map[string]string, len(params))
	for k, v := range params {
		copied[k] = v
	}
	return &Environment{params: copied, logger: logger}
}

// SetEvent publishes the event being processed. For EOF, timestamp is the time of the
// last log entry seen (the engine's current event time).
func (e *Environment) SetEvent(ev domain.Event, timestamp int64) {
	e.hasEvent = true
	e.event = ev
	e.timestamp = timestamp
}

// Timestamp returns the current event time in milliseconds; false before any event.
func (e *Environment) Timestamp() (int64, bool) {
	if !e.hasEvent {
		return 0, false
	}
	return e.timestamp, true
}

// Payload returns the current entry's text; false before any event and on EOF.
func (e *Environment) Payload() (string, bool) {
	if !e.hasEvent || e.event.IsEOF() {
		return "", false
	}
	return e.event.Entry.Payload, true
}

// LineNumber returns the current entry's line; false before any event and on EOF.
func (e *Environment) LineNumber() (int, bool) {
	if !e.hasEvent || e.event.IsEOF() {
		return 0, false
	}
	return e.event.Entry.LineNumber, true
}

// Channel returns the current entry's channel; false before any event and on EOF.
func (e *Environment) Channel() (string, bool) {
	if !e.hasEvent || e.event.IsEOF() {
		return "", false
	}
	return e.event.Entry.Channel, true
}

// IsEOF reports whether the current event is the end-of-stream marker.
func (e *Environment) IsEOF() bool {
	return e.hasEvent && e.event.IsEOF()
}

// Param looks up a caller-supplied parameter.
func (e *Environment) Param(name string) (string, error) {
	v, ok := e.params[name]
	if !ok {
		return "", e.raise(&domain.ExecutionError{
			Code:    domain.ErrCodeUndefinedParameter,
			Message: fmt.Sprintf("parameter %q is not defined", name),
		})
	}
	return v, nil
}

// HasParam reports whether a parameter was supplied.
func (e *Environment) HasParam(name string) bool {
	_, ok := e.params[name]
	return ok
}

// Params returns a copy of the parameter map.
func (e *Environment) Params() map[string]string {
	out := make(map[string]string, len(e.params))
	for k, v := range e.params {
		out[k] = v
	}
	return out
}

// SetFunctions exposes the host functions of reg to scripts. It must be called
// before a Runtime is built on the environment.
func (e *Environment) SetFunctions(reg *registry.Registry) {
	e.functions = reg
}

// Functions returns the names of the host functions, sorted.
func (e *Environment) Functions() []string {
	return e.functions.Names()
}

// Call runs host function name. Arguments are normalized first.
func (e *Environment) Call(ctx context.Context, name string, args []any) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	for i, a := range args {
		args[i] = Normalize(a)
	}
	out, err := e.functions.Call(ctx, name, args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return Normalize(out), nil
}

// SetGroups publishes the capture groups of the most recent regex match. Group 0 is the whole match.
func (e *Environment) SetGroups(groups []string) {
	e.groups = groups
}

// ClearGroups removes any published capture groups.
func (e *Environment) ClearGroups() {
	e.groups = nil
}

// Groups returns a copy of the published groups.
func (e *Environment) Groups() []string {
	if e.groups == nil {
		return nil
	}
	return append([]string(nil), e.groups...)
}

// GroupCount returns the number of published groups.
func (e *Environment) GroupCount() int {
	return len(e.groups)
}

// Group returns capture group i.
func (e *Environment) Group(i int) (string, error) {
	if i < 0 || i >= len(e.groups) {
		return "", e.raise(&domain.ExecutionError{
			Code:    domain.ErrCodeCaptureGroupRange,
			Message: fmt.Sprintf("capture group %d requested but only %d available", i, len(e.groups)),
		})
	}
	return e.groups[i], nil
}

// Info writes a script log line at Info level.
func (e *Environment) Info(msg string) {
	e.logger.Info(msg, e.logAttrs()...)
}

// Debug writes a script log line at Debug level.
func (e *Environment) Debug(msg string) {
	e.logger.Debug(msg, e.logAttrs()...)
}

func (e *Environment) logAttrs() []any {
	if line, ok := e.LineNumber(); ok {
		return []any{"source", "script", "line", line}
	}
	return []any{"source", "script"}
}

// Halt stops the automaton after the current microtransition, keeping its verdict.
func (e *Environment) Halt() {
	e.halted = true
}

// Accept forces a successful verdict.
func (e *Environment) Accept(msg string) error {
	if e.rejected {
		return e.conflict()
	}
	e.accepted = true
	if msg != "" {
		e.acceptMessage = msg
	}
	return nil
}

// Reject forces a failed verdict. msg becomes the error reason.
func (e *Environment) Reject(msg string) error {
	if e.accepted {
		return e.conflict()
	}
	e.rejected = true
	if msg != "" {
		e.rejectMessage = msg
	}
	return nil
}

func (e *Environment) conflict() error {
	return e.raise(&domain.ExecutionError{
		Code:    domain.ErrCodeConflictingVerdict,
		Message: "script called both accept and reject",
	})
}

func (e *Environment) Halted() bool          { return e.halted }
func (e *Environment) Accepted() bool        { return e.accepted }
func (e *Environment) Rejected() bool        { return e.rejected }
func (e *Environment) AcceptMessage() string { return e.acceptMessage }
func (e *Environment) RejectMessage() string { return e.rejectMessage }

// raise records err as a fault so that it survives scripts that swallow interpreter errors.
func (e *Environment) raise(err error) error {
	if e.fault == nil {
		e.fault = err
	}
	return err
}

// TakeFault returns and clears the first fault raised since the last call.
func (e *Environment) TakeFault() error {
	f := e.fault
	e.fault = nil
	return f
}
