/*
Package observability exposes automaton activity as Prometheus metrics and
structured log records, through domain.LifecycleHooks.

Metrics counts node entries and microtransitions and records verdicts; LoggingHooks
writes every lifecycle event at Debug level.
*/
package observability
