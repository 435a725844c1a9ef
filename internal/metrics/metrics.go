// Package metrics exports decomposition counters and latencies to Prometheus.
package metrics

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gcbaptista/go-query-decomposer/model"
)

// Outcome labels for decompositions_total.
const (
	OutcomeOK       = "ok"
	OutcomeInvalid  = "invalid"
	OutcomeTooLong  = "too_long"
	OutcomeCanceled = "canceled"
)

// Recorder tracks decomposition metrics. A nil *Recorder discards everything.
type Recorder struct {
	decompositions *prometheus.CounterVec
	cacheHits      prometheus.Counter
	duration       prometheus.Histogram
	splitGroups    *prometheus.CounterVec
	phraseGroups   prometheus.Histogram
}

// NewRecorder creates the collectors and registers them with reg
// (prometheus.DefaultRegisterer when nil). Collectors that are already
// registered under the same name are reused.
func NewRecorder(namespace string, reg prometheus.Registerer) (*Recorder, error) {
	if namespace == "" {
		namespace = "query_decomposer"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	r := &Recorder{
		decompositions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decompositions_total",
			Help:      "Decomposition requests by outcome.",
		}, []string{"outcome"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Decompositions served from the result cache.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "decomposition_duration_seconds",
			Help:      "Time spent decomposing a query.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
		}),
		splitGroups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "split_groups_total",
			Help:      "Split groups produced, by split count and origin.",
		}, []string{"split_count", "delimiter_derived"}),
		phraseGroups: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "phrase_groups_per_query",
			Help:      "Candidate phrase groups produced per query.",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
		}),
	}

	var err error
	if r.decompositions, err = register(reg, r.decompositions); err != nil {
		return nil, err
	}
	if r.cacheHits, err = register(reg, r.cacheHits); err != nil {
		return nil, err
	}
	if r.duration, err = register(reg, r.duration); err != nil {
		return nil, err
	}
	if r.splitGroups, err = register(reg, r.splitGroups); err != nil {
		return nil, err
	}
	if r.phraseGroups, err = register(reg, r.phraseGroups); err != nil {
		return nil, err
	}
	return r, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("register decomposition metric: %w", err)
	}
	return c, nil
}

// RecordDecomposition tracks a successful decomposition.
func (r *Recorder) RecordDecomposition(result model.DecompositionResult, elapsed time.Duration, cached bool) {
	if r == nil {
		return
	}
	r.decompositions.WithLabelValues(OutcomeOK).Inc()
	if cached {
		r.cacheHits.Inc()
		return
	}
	r.duration.Observe(elapsed.Seconds())
	r.phraseGroups.Observe(float64(result.TotalPhraseGroups()))
	for _, g := range result.SplitGroups {
		r.splitGroups.WithLabelValues(strconv.Itoa(g.SplitCount), strconv.FormatBool(g.DelimiterDerived)).Inc()
	}
}

// RecordRejected tracks a request that did not produce a decomposition.
func (r *Recorder) RecordRejected(outcome string) {
	if r == nil {
		return
	}
	r.decompositions.WithLabelValues(outcome).Inc()
}
