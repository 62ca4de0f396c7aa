package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/vigil/internal/presentation/tui"
	"github.com/aretw0/vigil/pkg/adapters/file"
	"github.com/aretw0/vigil/pkg/adapters/redis"
	"github.com/aretw0/vigil/pkg/domain"
	"github.com/aretw0/vigil/pkg/logsource"
	"github.com/aretw0/vigil/pkg/observability"
	"github.com/aretw0/vigil/pkg/ports"
	"github.com/aretw0/vigil/pkg/runner"
)

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	// Automata and Logs are crossed: every automaton is checked against every log.
	Automata []string
	Logs     []string
	Params   map[string]string

	// Config is an optional job file whose jobs are added to the crossed ones.
	Config string
	Source logsource.Config

	// Tools is an optional tools.yaml whose commands scripts can call.
	Tools string

	Workers  int
	JSON     bool
	RedisURL string
	Debug    bool

	// Redact lists patterns masked in stored verdicts; EncryptionKey (32 bytes)
	// seals their reason and source. Both apply only when verdicts are stored.
	Redact        []string
	EncryptionKey []byte

	Out io.Writer
	Err io.Writer
}

// ErrNoJobs is returned when neither arguments nor a job file name anything to check.
var ErrNoJobs = errors.New("nothing to check: give an automaton and a log, or a job file")

// Run checks every job, reports each verdict as it finishes and returns whether all
// of them passed.
func Run(ctx context.Context, opts RunOptions) (bool, error) {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}

	var cfg Config
	if opts.Config != "" {
		c, err := LoadConfig(opts.Config)
		if err != nil {
			return false, err
		}
		cfg = *c
	}

	jobs := buildJobs(opts, cfg)
	if len(jobs) == 0 {
		return false, ErrNoJobs
	}

	logger := createLogger(opts.Err, opts.Debug, opts.JSON)
	runnerOpts := []runner.Option{
		runner.WithLogger(logger),
		runner.WithReporter(newReporter(opts)),
	}
	if opts.Debug {
		runnerOpts = append(runnerOpts, runner.WithLifecycleHooks(observability.LoggingHooks(logger)))
	}

	tools := opts.Tools
	if tools == "" {
		tools = cfg.Tools
	}
	if tools != "" {
		fns, err := loadTools(tools)
		if err != nil {
			return false, err
		}
		runnerOpts = append(runnerOpts, runner.WithFunctions(fns))
		logger.Debug("host functions loaded", "tools", tools, "functions", fns.Names())
	}

	workers := opts.Workers
	if workers == 0 {
		workers = cfg.Workers
	}
	runnerOpts = append(runnerOpts, runner.WithWorkers(workers))

	redisURL := opts.RedisURL
	if redisURL == "" {
		redisURL = cfg.RedisURL
	}
	if redisURL != "" {
		store, err := redis.NewFromURL(redisURL)
		if err != nil {
			return false, fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer store.Close()
		wrapped, err := secure(store, opts.Redact, opts.EncryptionKey)
		if err != nil {
			return false, err
		}
		runnerOpts = append(runnerOpts, runner.WithStore(wrapped))
		logger.Debug("saving verdicts", "store", "redis")
	}

	verdicts, err := runner.New(runnerOpts...).Run(ctx, jobs)
	if err != nil {
		return false, err
	}
	return allPassed(verdicts), nil
}

func buildJobs(opts RunOptions, cfg Config) []runner.Job {
	var jobs []runner.Job
	for _, a := range opts.Automata {
		for _, l := range opts.Logs {
			jobs = append(jobs, newJob("", a, l, opts.Params, opts.Source))
		}
	}
	for _, j := range cfg.Jobs {
		src := cfg.Source
		if j.Source != nil {
			src = *j.Source
		}
		params := mergeParams(mergeParams(cfg.Params, j.Params), opts.Params)
		jobs = append(jobs, newJob(j.Name, j.Automaton, j.Log, params, src))
	}
	return jobs
}

func newJob(name, automaton, log string, params map[string]string, src logsource.Config) runner.Job {
	if name == "" {
		name = nameOf(automaton)
	}
	return runner.Job{
		Name:   name,
		Loader: file.New(automaton),
		Params: params,
		Source: log,
		Open: func(ctx context.Context) (ports.EntrySource, error) {
			f, err := logsource.Open(log, src)
			if err != nil {
				return nil, err
			}
			return f, nil
		},
	}
}

func newReporter(opts RunOptions) runner.Reporter {
	if opts.JSON {
		return runner.NewJSONReporter(opts.Out)
	}
	return runner.NewTextReporter(opts.Out, runner.WithStyler(tui.NewStyler(opts.Out)))
}

func allPassed(verdicts []domain.Verdict) bool {
	for _, v := range verdicts {
		if v.Result() != "pass" {
			return false
		}
	}
	return true
}
