/*
Package script defines the embedded-scripting capability used by automaton hooks and checks.

A Runtime compiles source once into a Compiled program that can be run many times.
Every value returned across the boundary is normalized to nil, bool, int64, float64 or
string, and Truthy applies the boolean coercion table used by check expressions and
success checks.

Scripts talk back to the engine through an Environment: they read the current event,
caller-supplied parameters and regex capture groups, log lines, and signal halt, accept
or reject. Backends live in the lua and expr subpackages.
*/
package script
