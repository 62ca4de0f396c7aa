/*
Package ports defines the driven ports (interfaces) around the vigil engine.

These interfaces decouple the automaton core from where definitions come from, how
log text becomes entries, and where verdicts are kept.

# Key Interfaces

  - DefinitionLoader: produces a domain.Definition (file, memory, DSL).
  - EntrySource: yields log entries one at a time, ending with io.EOF.
  - VerdictStore: persists verdict reports (memory, Redis).
*/
package ports
