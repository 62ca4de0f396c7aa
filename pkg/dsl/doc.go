/*
Package dsl provides a Go DSL for programmatically constructing vigil automatons.

It allows developers to define contracts using a type-safe, fluent builder
instead of YAML or JSON files. This is particularly useful for tests and for
contracts generated from code.

Example usage:

	b := dsl.New("boot")

	b.Add("down").Initial().
		To("up", "ready").Match(`listening on :(\d+)`).SinceStart("(;5s]").Done().
		To("late", "timeout").SinceStart("(5s;]").Always()

	b.Add("ready").Success()
	b.Add("timeout").Failure().Describe("service did not start in time")

	loader, err := b.Build()
	// ... pass loader to vigil.Load(...)
*/
package dsl
