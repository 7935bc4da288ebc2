// Package metrics counts run outcomes on a private Prometheus registry and
// writes them in the text exposition format at the end of a run
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cratesweep/cratesweep/pkg/types"
)

// Recorder implements interfaces.RunObserver
type Recorder struct {
	registry   *prometheus.Registry
	outcomes   *prometheus.CounterVec
	skipped    prometheus.Counter
	stageTimes *prometheus.HistogramVec
}

// NewRecorder creates a recorder with its own registry. Every outcome
// label is initialised so the exported file always lists all kinds.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cratesweep_outcomes_total",
				Help: "Packages attempted, by outcome",
			},
			[]string{"outcome"},
		),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cratesweep_packages_skipped_total",
			Help: "Packages skipped because a result was already recorded",
		}),
		stageTimes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cratesweep_stage_seconds",
				Help:    "Wall-clock time of successful build, test and bench stages",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
			},
			[]string{"stage"},
		),
	}

	r.registry.MustRegister(r.outcomes, r.skipped, r.stageTimes)
	for _, k := range types.OutcomeKinds {
		r.outcomes.WithLabelValues(string(k))
	}
	return r
}

// ObserveOutcome counts outcome and, for a success, records its stage times
func (r *Recorder) ObserveOutcome(pkg types.PackageID, outcome types.Outcome) {
	r.outcomes.WithLabelValues(string(outcome.Kind)).Inc()
	if !outcome.IsSuccess() {
		return
	}
	r.observeStage("build", outcome.BuildTime)
	if outcome.TestTime != nil {
		r.observeStage("test", *outcome.TestTime)
	}
	if outcome.BenchTime != nil {
		r.observeStage("bench", *outcome.BenchTime)
	}
}

// ObserveSkipped counts a package that already had a result
func (r *Recorder) ObserveSkipped(pkg types.PackageID) {
	r.skipped.Inc()
}

func (r *Recorder) observeStage(stage string, d time.Duration) {
	r.stageTimes.WithLabelValues(stage).Observe(d.Seconds())
}

// Gatherer exposes the private registry
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteToTextfile writes every metric to path, replacing it atomically
func (r *Recorder) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
