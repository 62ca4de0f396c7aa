// Package process lets automaton scripts call allow-listed local commands.
//
// Each registered command becomes a host function. Script arguments are passed to
// the command as VIGIL_ARG_1, VIGIL_ARG_2... environment variables, never as
// command-line flags, and the trimmed standard output is the result.
package process

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"os/exec"
	"slices"
	"strings"

	"github.com/aretw0/vigil/pkg/registry"
)

// Runner executes allow-listed local processes.
type Runner struct {
	allowed map[string]ProcessConfig
	baseDir string
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithTools populates the allow-list from a loaded config.
func WithTools(tools map[string]ProcessConfig) RunnerOption {
	return func(r *Runner) {
		maps.Copy(r.allowed, tools)
	}
}

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// NewRunner creates a new process runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		allowed: make(map[string]ProcessConfig),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a trusted command to the allow-list.
func (r *Runner) Register(name string, command string, args ...string) {
	r.allowed[name] = ProcessConfig{Name: name, Command: command, Args: args}
}

// Execute runs the command registered as name.
func (r *Runner) Execute(ctx context.Context, name string, args []any) (string, error) {
	proc, ok := r.allowed[name]
	if !ok {
		return "", fmt.Errorf("process not registered: %s", name)
	}

	cmd := exec.CommandContext(ctx, proc.Command, proc.Args...)
	cmd.Dir = r.baseDir
	cmd.Env = cmd.Environ()
	for _, k := range slices.Sorted(maps.Keys(proc.Environment)) {
		cmd.Env = append(cmd.Env, k+"="+proc.Environment[k])
	}
	for i, a := range args {
		val := ""
		if a != nil {
			val = fmt.Sprint(a)
		}
		cmd.Env = append(cmd.Env, fmt.Sprintf("VIGIL_ARG_%d=%s", i+1, val))
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("execution failed: %w (stderr: %s)", err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

// Names returns the allowed command names, sorted.
func (r *Runner) Names() []string {
	return slices.Sorted(maps.Keys(r.allowed))
}

// RegisterFunctions exposes every allowed command as a host function of reg.
func (r *Runner) RegisterFunctions(reg *registry.Registry) {
	for _, name := range r.Names() {
		reg.Register(name, func(ctx context.Context, args []any) (any, error) {
			return r.Execute(ctx, name, args)
		})
	}
}
