package runtime

import (
	"log/slog"

	"github.com/aretw0/vigil/pkg/domain"
	"github.com/aretw0/vigil/pkg/registry"
	"github.com/aretw0/vigil/pkg/script"
	"github.com/aretw0/vigil/pkg/script/expr"
	"github.com/aretw0/vigil/pkg/script/lua"
)

// Option configures an Automaton.
type Option func(*Automaton)

// WithLogger sets the logger used by the engine and by script info/debug calls.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Automaton) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(a *Automaton) {
		a.hooks = hooks
	}
}

// WithScriptRuntime registers (or replaces) the runtime used for a script language.
func WithScriptRuntime(language string, factory script.Factory) Option {
	return func(a *Automaton) {
		a.factories[language] = factory
	}
}

// WithFunctions exposes the host functions of reg to every script.
func WithFunctions(reg *registry.Registry) Option {
	return func(a *Automaton) {
		a.functions = reg
	}
}

// WithName overrides the automaton name used in logs and hooks.
func WithName(name string) Option {
	return func(a *Automaton) {
		a.name = name
	}
}

func defaultFactories() map[string]script.Factory {
	return map[string]script.Factory{
		domain.ScriptLanguageLua:  lua.Factory,
		domain.ScriptLanguageExpr: expr.Factory,
	}
}
