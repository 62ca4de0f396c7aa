package cli

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/aretw0/vigil/internal/logging"
	"github.com/aretw0/vigil/pkg/adapters/process"
	"github.com/aretw0/vigil/pkg/persistence/middleware"
	"github.com/aretw0/vigil/pkg/ports"
	"github.com/aretw0/vigil/pkg/registry"
)

// ParseParams turns "key=value" pairs into a parameter map.
// The value may contain '='; the key may not be empty.
func ParseParams(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	params := make(map[string]string, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid parameter %q: expected key=value", p)
		}
		params[strings.TrimSpace(key)] = value
	}
	return params, nil
}

// createLogger configures the application logger.
// In debug mode, it writes to w (stderr, kept apart from the report on stdout).
func createLogger(w io.Writer, debug, json bool) *slog.Logger {
	if debug {
		return logging.NewWithWriter(w, slog.LevelDebug, json)
	}
	return logging.NewNop()
}

// nameOf derives an automaton name from its definition path.
func nameOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func mergeParams(base, override map[string]string) map[string]string {
	if len(base) == 0 {
		return override
	}
	out := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}

// secure wraps store with redaction and, when key is set, encryption.
func secure(store ports.VerdictStore, redact []string, key []byte) (ports.VerdictStore, error) {
	var mws []middleware.Middleware
	if len(redact) > 0 {
		mw, err := middleware.NewPIIMiddleware(redact)
		if err != nil {
			return nil, err
		}
		mws = append(mws, mw)
	}
	if len(key) > 0 {
		if len(key) != 32 {
			return nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(key))
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	}
	return middleware.Chain(store, mws...), nil
}

// loadTools exposes the commands of a tools file to scripts. Commands run from the
// file's directory.
func loadTools(path string) (*registry.Registry, error) {
	tools, err := process.LoadTools(path)
	if err != nil {
		return nil, err
	}
	reg := registry.NewRegistry()
	process.NewRunner(process.WithTools(tools), process.WithBaseDir(filepath.Dir(path))).RegisterFunctions(reg)
	return reg, nil
}
