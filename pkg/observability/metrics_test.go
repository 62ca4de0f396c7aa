package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/aretw0/vigil"
	"github.com/aretw0/vigil/pkg/adapters/memory"
	"github.com/aretw0/vigil/pkg/domain"
	"github.com/aretw0/vigil/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ticker() *domain.Definition {
	return &domain.Definition{
		Name: "ticker",
		Nodes: []domain.NodeDef{
			{ID: "idle", Type: domain.NodeTypeInitial},
			{ID: "ticking", Wait: true},
			{ID: "done", Type: domain.NodeTypeSuccess},
		},
		Edges: []domain.EdgeDef{
			{ID: "tick", SourceID: "idle", DestinationID: "ticking", Regex: "tick"},
			{ID: "again", SourceID: "ticking", DestinationID: "ticking", Regex: "tick"},
			{ID: "stop", SourceID: "ticking", DestinationID: "done", Regex: "stop"},
		},
	}
}

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	a := vigil.New(ticker(), nil, vigil.WithLifecycleHooks(m.Hooks()))
	defer a.Close()

	src := memory.NewSource(
		domain.LogEntry{LineNumber: 1, Payload: "tick"},
		domain.LogEntry{LineNumber: 2, Payload: "tick"},
		domain.LogEntry{LineNumber: 3, Payload: "stop"},
	)
	v, err := vigil.Check(context.Background(), a, src)
	require.NoError(t, err)
	m.ObserveVerdict(v)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.Microtransitions.WithLabelValues("ticker")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NodeEnters.WithLabelValues("ticker", "idle")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.NodeEnters.WithLabelValues("ticker", "ticking")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Verdicts.WithLabelValues("pass")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.CheckDuration))
}

func TestNewMetrics_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	_, err = observability.NewMetrics(reg)
	assert.Error(t, err)

	m, err := observability.NewMetrics(nil)
	require.NoError(t, err)
	m.ObserveVerdict(domain.Verdict{Defective: true})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Verdicts.WithLabelValues("defect")))
}

func TestObserveVerdict_SkipsMissingTimes(t *testing.T) {
	m, err := observability.NewMetrics(nil)
	require.NoError(t, err)
	m.ObserveVerdict(domain.Verdict{Automaton: "x"})
	assert.Equal(t, 0, testutil.CollectAndCount(m.CheckDuration))

	now := time.Now()
	m.ObserveVerdict(domain.Verdict{Automaton: "x", StartedAt: now, FinishedAt: now.Add(time.Second)})
	assert.Equal(t, 1, testutil.CollectAndCount(m.CheckDuration))
}

func TestLoggingHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	a := vigil.New(ticker(), nil, vigil.WithLifecycleHooks(observability.LoggingHooks(logger)))
	defer a.Close()
	require.NoError(t, a.ProceedWithLogEntry(context.Background(), domain.LogEntry{LineNumber: 1, Timestamp: 1500, Payload: "tick"}))

	out := buf.String()
	assert.Contains(t, out, "msg=node_enter automaton=ticker node_id=idle type=INITIAL")
	assert.Contains(t, out, "msg=node_leave automaton=ticker node_id=idle")
	assert.Contains(t, out, "msg=transition automaton=ticker from=idle edge=tick to=ticking elapsed=0s")
}
