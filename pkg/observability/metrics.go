package observability

import (
	"context"

	"github.com/aretw0/swap/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "swap"

var scanStates = []domain.ScanState{
	domain.ScanUnsupported,
	domain.ScanReady,
	domain.ScanScanning,
	domain.ScanError,
}

// Metrics holds the terminal collectors.
type Metrics struct {
	Gatherer prometheus.Gatherer

	stepVisits    *prometheus.CounterVec
	verifications *prometheus.CounterVec
	verifyLatency prometheus.Histogram
	scanState     *prometheus.GaugeVec
	resets        prometheus.Counter
	collected     prometheus.Counter
}

// NewMetrics creates the collectors and registers them on reg.
// Pass prometheus.NewRegistry() to keep them off the global registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		Gatherer: reg,
		stepVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "step_visits_total",
				Help:      "Total number of step entries",
			},
			[]string{"step"},
		),
		verifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "verifications_total",
				Help:      "PIN verifications by outcome",
			},
			[]string{"outcome"},
		),
		verifyLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "verify_duration_seconds",
				Help:      "Duration of PIN verifications",
				Buckets:   []float64{0.1, 0.5, 1, 1.5, 2, 5},
			},
		),
		scanState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "scan_state",
				Help:      "Current scan state (1 for the active state)",
			},
			[]string{"state"},
		),
		resets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resets_total",
			Help:      "Sessions abandoned or closed by a reset",
		}),
		collected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collected_amount_total",
			Help:      "Sum of amounts of successful collections",
		}),
	}
	reg.MustRegister(m.stepVisits, m.verifications, m.verifyLatency, m.scanState, m.resets, m.collected)
	return m
}

// Hooks returns lifecycle hooks feeding the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(ctx context.Context, e *domain.StepEvent) {
			m.stepVisits.WithLabelValues(string(e.Step)).Inc()
			if e.Step == domain.StepSuccess {
				if v := (&domain.Session{Amount: e.Amount}).AmountValue(); v > 0 {
					m.collected.Add(float64(v))
				}
			}
		},
		OnScan: func(ctx context.Context, e *domain.ScanEvent) {
			m.SetScanState(e.To)
		},
		OnVerify: func(ctx context.Context, e *domain.VerifyEvent) {
			outcome := string(e.Outcome)
			if e.IsError {
				outcome = "error"
			}
			m.verifications.WithLabelValues(outcome).Inc()
			m.verifyLatency.Observe(e.Duration.Seconds())
		},
		OnReset: func(ctx context.Context, e *domain.StepEvent) {
			m.resets.Inc()
		},
	}
}

// SetScanState records the current scan state. Hosts call it once at
// startup since the initial state produces no transition.
func (m *Metrics) SetScanState(s domain.ScanState) {
	for _, st := range scanStates {
		v := 0.0
		if st == s {
			v = 1
		}
		m.scanState.WithLabelValues(string(st)).Set(v)
	}
}
