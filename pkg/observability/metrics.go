package observability

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/vigil/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors shared by every automaton of a process.
type Metrics struct {
	Microtransitions *prometheus.CounterVec
	NodeEnters       *prometheus.CounterVec
	Verdicts         *prometheus.CounterVec
	CheckDuration    *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Microtransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vigil_microtransitions_total",
				Help: "Total number of edges taken",
			},
			[]string{"automaton"},
		),
		NodeEnters: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vigil_node_enter_total",
				Help: "Total number of node entries",
			},
			[]string{"automaton", "node"},
		),
		Verdicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vigil_verdicts_total",
				Help: "Verdicts by result (pass, fail, defect)",
			},
			[]string{"result"},
		),
		CheckDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vigil_check_duration_seconds",
				Help:    "Wall time of a full check, from first entry to verdict",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"automaton"},
		),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.Microtransitions, m.NodeEnters, m.Verdicts, m.CheckDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that count node entries and microtransitions.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, e *domain.NodeEvent) {
			m.NodeEnters.WithLabelValues(e.Automaton, e.NodeID).Inc()
		},
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
			m.Microtransitions.WithLabelValues(e.Automaton).Inc()
		},
	}
}

// ObserveVerdict records the result and duration of a finished check.
func (m *Metrics) ObserveVerdict(v domain.Verdict) {
	m.Verdicts.WithLabelValues(v.Result()).Inc()
	if !v.StartedAt.IsZero() && !v.FinishedAt.Before(v.StartedAt) {
		m.CheckDuration.WithLabelValues(v.Automaton).Observe(v.FinishedAt.Sub(v.StartedAt).Seconds())
	}
}

// LoggingHooks returns hooks that log every lifecycle event at Debug level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "node_enter", "automaton", e.Automaton, "node_id", e.NodeID, "type", e.NodeType)
		},
		OnNodeLeave: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "node_leave", "automaton", e.Automaton, "node_id", e.NodeID)
		},
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			logger.DebugContext(ctx, "transition",
				"automaton", e.Automaton,
				"from", e.Transition.FromNodeID,
				"edge", e.Transition.EdgeID,
				"to", e.Transition.ToNodeID,
				"elapsed", time.Duration(e.Transition.Elapsed)*time.Millisecond,
			)
		},
	}
}
