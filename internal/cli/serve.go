package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/aretw0/vigil/internal/presentation/tui"
	httpAdapter "github.com/aretw0/vigil/pkg/adapters/http"
	"github.com/aretw0/vigil/pkg/adapters/memory"
	"github.com/aretw0/vigil/pkg/adapters/redis"
	"github.com/aretw0/vigil/pkg/observability"
	"github.com/aretw0/vigil/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// ServeOptions configures the HTTP server.
type ServeOptions struct {
	Addr     string
	RedisURL string
	Debug    bool
	JSONLogs bool
	Quiet    bool

	// Redact and EncryptionKey protect stored verdicts, see RunOptions.
	Redact        []string
	EncryptionKey []byte

	// Listener, when set, is used instead of listening on Addr.
	Listener net.Listener
	Out      io.Writer
	Err      io.Writer
}

const shutdownTimeout = 5 * time.Second

// Serve runs the check API until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, opts ServeOptions) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	logger := createLogger(opts.Err, opts.Debug, opts.JSONLogs)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := observability.NewMetrics(reg)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	handlerOpts := []httpAdapter.Option{
		httpAdapter.WithMetrics(metrics, reg),
		httpAdapter.WithLogger(logger),
	}
	store, closeStore, err := openStore(opts.RedisURL, opts.Redact, opts.EncryptionKey)
	if err != nil {
		return err
	}
	defer closeStore()
	handlerOpts = append(handlerOpts, httpAdapter.WithStore(store))

	ln := opts.Listener
	if ln == nil {
		ln, err = net.Listen("tcp", opts.Addr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", opts.Addr, err)
		}
	}

	srv := &http.Server{
		Handler:           httpAdapter.NewHandler(handlerOpts...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		if !opts.Quiet {
			tui.PrintBanner(opts.Out)
			fmt.Fprintf(opts.Out, "Starting Vigil Server on %s\n", ln.Addr())
		}
		serverErrors <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		logger.Info("shutting down", "reason", context.Cause(ctx))

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			closeErr := srv.Close()
			return errors.Join(fmt.Errorf("graceful shutdown did not complete in %v: %w", shutdownTimeout, err), closeErr)
		}
		if err := <-serverErrors; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		if !opts.Quiet {
			fmt.Fprintln(opts.Out, "Vigil Server stopped gracefully")
		}
		return nil
	}
}

// openStore returns the Redis store at url, or an in-memory one, behind the
// redaction and encryption middleware.
func openStore(url string, redact []string, key []byte) (ports.VerdictStore, func(), error) {
	var store ports.VerdictStore = memory.NewStore()
	closeStore := func() {}
	if url != "" {
		rs, err := redis.NewFromURL(url)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		store = rs
		closeStore = func() { _ = rs.Close() }
	}
	secured, err := secure(store, redact, key)
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	return secured, closeStore, nil
}
