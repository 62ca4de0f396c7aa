/*
Package vigil checks logs against behavioral contracts.

A contract is a finite-state automaton whose edges carry regular expressions,
script checks and timing windows. Log entries are fed one at a time; the automaton
follows matching edges and, once the log ends, reports whether it stopped in a
SUCCESS node.

# Concept

Each definition (YAML, JSON, or built with pkg/dsl) is compiled once into an
Automaton. Automatons never fail to construct: problems in the definition make the
instance defective, and ErrorReason explains why. An Automaton is owned by one
goroutine; to check many logs at once, run one automaton per log (see pkg/runner).

# Usage

	package main

	import (
		"context"
		"fmt"
		"os"

		"github.com/aretw0/vigil"
		"github.com/aretw0/vigil/pkg/adapters/file"
		"github.com/aretw0/vigil/pkg/logsource"
	)

	func main() {
		ctx := context.Background()
		a := vigil.Load(ctx, file.New("boot.yaml"), map[string]string{"limit": "5s"})
		defer a.Close()

		f, _ := os.Open("app.log")
		defer f.Close()

		src, _ := logsource.New(f, logsource.Config{TimestampPattern: `^(?<ts>\d+)`, TimestampFormat: "millis"})
		verdict, err := vigil.Check(ctx, a, src)
		if err != nil {
			panic(err)
		}
		fmt.Println(verdict.Result(), verdict.Reason)
	}

# Scripts

Scripts are Lua (default) or expr expressions. They can read the current event
through timestamp(), payload(), line_number() and channel(), read parameters with
param(name) and capture groups with group(i), log with info and debug, and end the
run with halt(), accept([msg]) or reject([msg]).
*/
package vigil
