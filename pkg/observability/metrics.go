package observability

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/weave/pkg/domain"
)

// Metrics holds the Prometheus collectors of one engine.
type Metrics struct {
	executions *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	expansions prometheus.Counter
	added      prometheus.Counter
	rejections prometheus.Counter

	mu      sync.Mutex
	started map[string]time.Time
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		executions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weave_node_executions_total",
				Help: "Total number of node executions",
			},
			[]string{"class"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "weave_node_duration_seconds",
				Help:    "Duration of node executions",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"class"},
		),
		expansions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "weave_expansions_total",
			Help: "Total number of subgraphs spliced into prompts",
		}),
		added: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "weave_expanded_nodes_total",
			Help: "Total number of nodes added by expansions",
		}),
		rejections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "weave_validation_rejections_total",
			Help: "Total number of prompts rejected by validation",
		}),
		started: make(map[string]time.Time),
	}
	if reg != nil {
		reg.MustRegister(m.executions, m.duration, m.expansions, m.added, m.rejections)
	}
	return m
}

// Hooks returns lifecycle hooks that feed the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeStart: func(_ context.Context, e *domain.NodeEvent) {
			m.mu.Lock()
			m.started[e.RunID+"/"+e.NodeID] = e.Timestamp
			m.mu.Unlock()
		},
		OnNodeDone: func(_ context.Context, e *domain.NodeEvent) {
			m.executions.WithLabelValues(e.Class).Inc()
			key := e.RunID + "/" + e.NodeID
			m.mu.Lock()
			start, ok := m.started[key]
			delete(m.started, key)
			m.mu.Unlock()
			if ok {
				m.duration.WithLabelValues(e.Class).Observe(e.Timestamp.Sub(start).Seconds())
			}
		},
		OnExpand: func(_ context.Context, e *domain.ExpansionEvent) {
			m.expansions.Inc()
			m.added.Add(float64(len(e.Added)))
		},
	}
}

// ObserveValidation counts err as a rejection when it is not nil.
func (m *Metrics) ObserveValidation(err error) {
	if err != nil {
		m.rejections.Inc()
	}
}

// Executions returns the execution counter, for tests and custom exporters.
func (m *Metrics) Executions() *prometheus.CounterVec { return m.executions }

// Expansions returns the expansion counter.
func (m *Metrics) Expansions() prometheus.Counter { return m.expansions }

// Rejections returns the validation rejection counter.
func (m *Metrics) Rejections() prometheus.Counter { return m.rejections }
