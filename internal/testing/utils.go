// Package testing provides utilities and helpers for testing the query decomposer.
package testing

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/go-query-decomposer/config"
	"github.com/gcbaptista/go-query-decomposer/internal/decompose"
	"github.com/gcbaptista/go-query-decomposer/internal/stopwords"
	"github.com/gcbaptista/go-query-decomposer/model"
	"github.com/gcbaptista/go-query-decomposer/services"
)

// TestStopWords is a small stop-word set that keeps expected decompositions
// easy to write by hand.
func TestStopWords() *stopwords.Set {
	return stopwords.New("compare", "vs", "and", "with", "the", "of", "in", "county", "counties")
}

// TestSettings returns settings suitable for unit tests, with a small cache
// and batch limits.
func TestSettings() config.Settings {
	s := config.Default()
	s.CacheSize = 16
	s.BatchConcurrency = 4
	s.MaxBatchQueries = 10
	return s
}

// CreateTestService creates a decomposition service with TestSettings and
// TestStopWords. mutate, when non-nil, may adjust the settings first.
func CreateTestService(t *testing.T, mutate func(*config.Settings), opts ...decompose.Option) *decompose.Service {
	t.Helper()

	settings := TestSettings()
	if mutate != nil {
		mutate(&settings)
	}
	svc, err := decompose.NewService(settings, TestStopWords(), opts...)
	require.NoError(t, err, "Failed to create test service")
	return svc
}

// RecordingTracker collects tracked events in memory.
type RecordingTracker struct {
	mu     sync.Mutex
	events []model.DecomposeEvent
	Err    error
}

// TrackEvent records event and returns r.Err.
func (r *RecordingTracker) TrackEvent(event model.DecomposeEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.Err
}

// Events returns a copy of the recorded events.
func (r *RecordingTracker) Events() []model.DecomposeEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.DecomposeEvent(nil), r.events...)
}

// SplitShape summarizes a decomposition as (split count, phrase group count) pairs.
type SplitShape struct {
	SplitCount       int
	DelimiterDerived bool
	PhraseGroups     int
}

// Shape returns the SplitShape of every split group in order.
func Shape(result model.DecompositionResult) []SplitShape {
	shape := make([]SplitShape, 0, len(result.SplitGroups))
	for _, g := range result.SplitGroups {
		shape = append(shape, SplitShape{
			SplitCount:       g.SplitCount,
			DelimiterDerived: g.DelimiterDerived,
			PhraseGroups:     len(g.PhraseGroups),
		})
	}
	return shape
}

// DecomposeTestCase represents a test case for decomposition requests
type DecomposeTestCase struct {
	Name          string
	Query         services.DecomposeQuery
	ExpectedShape []SplitShape
	ExpectedError error // matched with errors.Is
	ValidateFunc  func(t *testing.T, result services.DecomposeResult)
}

// RunDecomposeTests runs a suite of decomposition tests against a decomposer
func RunDecomposeTests(t *testing.T, decomposer services.Decomposer, tests []DecomposeTestCase) {
	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			result, err := decomposer.Decompose(ctx, tt.Query)
			if tt.ExpectedError != nil {
				require.ErrorIs(t, err, tt.ExpectedError)
				return
			}
			require.NoError(t, err, "Decompose should not fail")

			assert.NotEmpty(t, result.QueryID, "Result should have a query ID")
			assert.Equal(t, tt.Query.Query, result.Query, "Result should echo the query")
			if tt.ExpectedShape != nil {
				assert.Equal(t, tt.ExpectedShape, Shape(result.DecompositionResult), "Split groups should match")
			}

			if tt.ValidateFunc != nil {
				tt.ValidateFunc(t, result)
			}
		})
	}
}
