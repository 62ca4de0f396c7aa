package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/aretw0/vigil"
	"github.com/aretw0/vigil/pkg/domain"
	"github.com/aretw0/vigil/pkg/observability"
	"github.com/aretw0/vigil/pkg/ports"
	"github.com/aretw0/vigil/pkg/registry"
	"github.com/aretw0/vigil/pkg/script"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Job is one definition checked against one log source.
type Job struct {
	// Name labels the verdict; it defaults to the definition name.
	Name   string
	Loader ports.DefinitionLoader
	Params map[string]string
	// Source labels where the entries come from (usually a file path).
	Source string
	// Open is called on the job's goroutine. A source that implements io.Closer is
	// closed once the job finishes.
	Open func(ctx context.Context) (ports.EntrySource, error)
}

// Runner executes jobs in parallel.
type Runner struct {
	// Workers bounds concurrency. Zero means runtime.GOMAXPROCS(0).
	Workers int

	// Logger is used for internal logging and handed to every automaton.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// Store receives every verdict. If nil, verdicts are only returned.
	Store ports.VerdictStore

	Hooks     domain.LifecycleHooks
	Metrics   *observability.Metrics
	Reporter  Reporter
	Functions *registry.Registry

	runtimes []scriptRuntime
	reportMu sync.Mutex
}

type scriptRuntime struct {
	language string
	factory  script.Factory
}

// New creates a Runner.
func New(opts ...Option) *Runner {
	r := &Runner{}
	for _, opt := range opts {
		opt(r)
	}
	if r.Logger == nil {
		r.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return r
}

// Run executes jobs and returns their verdicts in job order.
// The error is non-nil only when ctx is cancelled or a verdict cannot be saved or
// reported; verdicts of finished jobs are still returned.
func (r *Runner) Run(ctx context.Context, jobs []Job) ([]domain.Verdict, error) {
	workers := r.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	verdicts := make([]domain.Verdict, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, job := range jobs {
		g.Go(func() error {
			v, err := r.runJob(gctx, job)
			if err != nil {
				return fmt.Errorf("job %q: %w", job.Name, err)
			}
			verdicts[i] = v
			return r.record(gctx, v)
		})
	}

	err := g.Wait()
	return verdicts, err
}

// runJob checks one job. Only cancellation is returned as an error; every other
// failure becomes a defective verdict.
func (r *Runner) runJob(ctx context.Context, job Job) (domain.Verdict, error) {
	if err := ctx.Err(); err != nil {
		return domain.Verdict{}, err
	}
	started := time.Now()
	logger := r.Logger.With("job", job.Name)

	a := vigil.Load(ctx, job.Loader, job.Params, r.automatonOptions(job, logger)...)
	defer a.Close()

	v, err := r.check(ctx, a, job)
	if err != nil {
		if ctx.Err() != nil {
			return domain.Verdict{}, ctx.Err()
		}
		logger.Warn("job failed", "err", err)
		v.Succeeded = false
		v.Defective = true
		v.Reason = err.Error()
	}

	v.ID = uuid.NewString()
	if v.Automaton == "" {
		v.Automaton = job.Name
	}
	v.Source = job.Source
	v.StartedAt = started
	if v.FinishedAt.IsZero() {
		v.FinishedAt = time.Now()
	}

	logger.Info("job finished", "result", v.Result(), "entries", v.Entries, "final_node", v.FinalNode)
	return v, nil
}

func (r *Runner) check(ctx context.Context, a *vigil.Automaton, job Job) (domain.Verdict, error) {
	if a.IsDefective() {
		// Nothing to read: the verdict is already known.
		return vigil.Check(ctx, a, emptySource{})
	}
	if job.Open == nil {
		return domain.Verdict{Automaton: a.Name()}, fmt.Errorf("job %q has no log source", job.Name)
	}
	src, err := job.Open(ctx)
	if err != nil {
		return domain.Verdict{Automaton: a.Name()}, fmt.Errorf("failed to open source: %w", err)
	}
	if c, ok := src.(io.Closer); ok {
		defer c.Close()
	}
	return vigil.Check(ctx, a, src)
}

func (r *Runner) automatonOptions(job Job, logger *slog.Logger) []vigil.Option {
	hooks := r.Hooks
	if r.Metrics != nil {
		hooks = domain.MergeHooks(hooks, r.Metrics.Hooks())
	}
	opts := []vigil.Option{
		vigil.WithLogger(logger),
		vigil.WithLifecycleHooks(hooks),
	}
	if r.Functions != nil {
		opts = append(opts, vigil.WithFunctions(r.Functions))
	}
	if job.Name != "" {
		opts = append(opts, vigil.WithName(job.Name))
	}
	for _, rt := range r.runtimes {
		opts = append(opts, vigil.WithScriptRuntime(rt.language, rt.factory))
	}
	return opts
}

func (r *Runner) record(ctx context.Context, v domain.Verdict) error {
	if r.Metrics != nil {
		r.Metrics.ObserveVerdict(v)
	}
	if r.Store != nil {
		if err := r.Store.Save(ctx, v); err != nil {
			return fmt.Errorf("failed to save verdict %s: %w", v.ID, err)
		}
	}
	if r.Reporter != nil {
		r.reportMu.Lock()
		defer r.reportMu.Unlock()
		if err := r.Reporter.Report(ctx, v); err != nil {
			return fmt.Errorf("failed to report verdict %s: %w", v.ID, err)
		}
	}
	return nil
}

type emptySource struct{}

func (emptySource) Next(context.Context) (domain.LogEntry, error) {
	return domain.LogEntry{}, io.EOF
}
