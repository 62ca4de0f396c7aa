package runner

import (
	"log/slog"

	"github.com/aretw0/vigil/pkg/domain"
	"github.com/aretw0/vigil/pkg/observability"
	"github.com/aretw0/vigil/pkg/ports"
	"github.com/aretw0/vigil/pkg/registry"
	"github.com/aretw0/vigil/pkg/script"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithStore configures the VerdictStore verdicts are saved to.
func WithStore(store ports.VerdictStore) Option {
	return func(r *Runner) {
		r.Store = store
	}
}

// WithLogger configures the structured logger, shared with every automaton.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithWorkers bounds the number of jobs running at once.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		r.Workers = n
	}
}

// WithLifecycleHooks registers hooks on every automaton. Hooks may be called from
// several goroutines at once.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Runner) {
		r.Hooks = hooks
	}
}

// WithMetrics records lifecycle events and verdicts in m.
func WithMetrics(m *observability.Metrics) Option {
	return func(r *Runner) {
		r.Metrics = m
	}
}

// WithReporter configures how verdicts are presented as jobs finish.
func WithReporter(rep Reporter) Option {
	return func(r *Runner) {
		r.Reporter = rep
	}
}

// WithScriptRuntime registers a script language on every automaton.
func WithScriptRuntime(language string, factory script.Factory) Option {
	return func(r *Runner) {
		r.runtimes = append(r.runtimes, scriptRuntime{language, factory})
	}
}

// WithFunctions exposes host functions to the scripts of every automaton.
// Functions may be called from several goroutines at once.
func WithFunctions(reg *registry.Registry) Option {
	return func(r *Runner) {
		r.Functions = reg
	}
}
