package vigil

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/vigil/internal/runtime"
	"github.com/aretw0/vigil/pkg/domain"
	"github.com/aretw0/vigil/pkg/ports"
	"github.com/aretw0/vigil/pkg/registry"
	"github.com/aretw0/vigil/pkg/script"
)

// Automaton is one compiled contract being run over one log source.
// See runtime.Automaton for the full method set.
type Automaton = runtime.Automaton

// Option defines a functional option for configuring an Automaton.
type Option = runtime.Option

// WithLogger sets a custom structured logger for the automaton and its scripts.
func WithLogger(logger *slog.Logger) Option {
	return runtime.WithLogger(logger)
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return runtime.WithLifecycleHooks(hooks)
}

// WithScriptRuntime registers a script language, or replaces a built-in one.
func WithScriptRuntime(language string, factory script.Factory) Option {
	return runtime.WithScriptRuntime(language, factory)
}

// WithFunctions exposes host functions to the automaton's scripts, next to the
// built-in ones. Built-in names cannot be overridden.
func WithFunctions(reg *registry.Registry) Option {
	return runtime.WithFunctions(reg)
}

// WithName overrides the automaton name used in logs, hooks and verdicts.
func WithName(name string) Option {
	return runtime.WithName(name)
}

// New compiles def with params. It never fails: a definition with problems yields a
// defective automaton whose ErrorReason lists them.
func New(def *domain.Definition, params map[string]string, opts ...Option) *Automaton {
	return runtime.New(def, params, opts...)
}

// Load reads a definition through loader and compiles it. A loader failure also
// yields a defective automaton.
func Load(ctx context.Context, loader ports.DefinitionLoader, params map[string]string, opts ...Option) *Automaton {
	def, err := loader.Load(ctx)
	if err != nil {
		return runtime.NewDefective(&domain.DefinitionError{
			Problems: []error{fmt.Errorf("failed to load definition: %w", err)},
		}, opts...)
	}
	return runtime.New(def, params, opts...)
}
