/*
Package runner checks many logs against many contracts in parallel.

Each Job pairs one definition with one log source. The Runner gives every job its
own Automaton and runs jobs concurrently, bounded by a worker limit. A job whose
automaton turns defective, or whose source fails, yields a defective verdict; it
never aborts its siblings.

# Key Components

  - Runner: the orchestrator (worker limit, hooks, metrics, verdict store).
  - Reporter: decouples how verdicts are presented (text, JSON lines).
  - SignalManager: ties the run to SIGINT/SIGTERM.

# Usage

	r := runner.New(
		runner.WithWorkers(4),
		runner.WithStore(memory.NewStore()),
		runner.WithReporter(runner.NewTextReporter(os.Stdout)),
	)

	verdicts, err := r.Run(ctx, jobs)
*/
package runner
