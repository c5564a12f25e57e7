package montecarlo

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Trial outcomes.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics bundles the Prometheus collectors of a simulation. A nil *Metrics
// records nothing.
type Metrics struct {
	Trials        *prometheus.CounterVec
	TrialDuration prometheus.Histogram
	SearchProbes  prometheus.Counter
}

// NewMetrics registers the simulation metrics against reg, defaulting to the
// global Prometheus registry when nil. Collectors already registered under
// the same name are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	trials, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "neighborhood_trials_total",
		Help: "Monte-Carlo trials run, labeled by outcome.",
	}, []string{"outcome"}), "neighborhood_trials_total")
	if err != nil {
		return nil, err
	}

	duration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "neighborhood_trial_duration_seconds",
		Help:    "Duration of one Monte-Carlo trial in seconds.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	}), "neighborhood_trial_duration_seconds")
	if err != nil {
		return nil, err
	}

	probes, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "neighborhood_search_probes_total",
		Help: "Distances evaluated by the neighborhood search, cache hits excluded.",
	}), "neighborhood_search_probes_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{Trials: trials, TrialDuration: duration, SearchProbes: probes}, nil
}

func (m *Metrics) observeTrial(start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.Trials.WithLabelValues(outcome).Inc()
	m.TrialDuration.Observe(time.Since(start).Seconds())
}

// ObserveProbe counts one evaluated search input.
func (m *Metrics) ObserveProbe() {
	if m == nil {
		return
	}
	m.SearchProbes.Inc()
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}

func registerCounter(reg prometheus.Registerer, c prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return c, nil
}
