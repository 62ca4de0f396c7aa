/*
Package domain contains the core domain models of the Vigil log-contract engine.

It defines the persisted shape of an automaton (Definition, NodeDef, EdgeDef), the events
the engine consumes (LogEntry and end-of-stream), the verdicts it reports and the errors
callers can distinguish. This package is kept pure and free of external dependencies
like I/O or scripting runtimes, following Hexagonal Architecture principles.

# Key Entities

  - Definition: The automaton as loaded from a contract document.
  - NodeDef: A state (INITIAL, SUCCESS, FAILURE or intermediate) with optional scripts.
  - EdgeDef: A transition guarded by regex, script, EOF and timing conditions.
  - Event: Either a timestamped LogEntry or the end-of-stream marker.
  - Verdict: The outcome of running one automaton against one log source.
*/
package domain
