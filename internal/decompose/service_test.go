package decompose_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/go-query-decomposer/config"
	"github.com/gcbaptista/go-query-decomposer/internal/decompose"
	internalErrors "github.com/gcbaptista/go-query-decomposer/internal/errors"
	"github.com/gcbaptista/go-query-decomposer/internal/metrics"
	testhelpers "github.com/gcbaptista/go-query-decomposer/internal/testing"
	"github.com/gcbaptista/go-query-decomposer/model"
	"github.com/gcbaptista/go-query-decomposer/services"
)

func TestNewService_InvalidSettings(t *testing.T) {
	settings := config.Default()
	settings.MaxSplitCount = 7

	_, err := decompose.NewService(settings, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_split_count")
}

func TestNewService_DefaultsStopWords(t *testing.T) {
	svc, err := decompose.NewService(config.Settings{}, nil)
	require.NoError(t, err)

	assert.Equal(t, config.DefaultMaxSplitCount, svc.Settings().MaxSplitCount)
	assert.Contains(t, svc.StopWords(), "the")
}

func TestService_Decompose(t *testing.T) {
	svc := testhelpers.CreateTestService(t, func(s *config.Settings) { s.MaxQueryTokens = 6 })

	testhelpers.RunDecomposeTests(t, svc, []testhelpers.DecomposeTestCase{
		{
			Name:  "versus query",
			Query: services.DecomposeQuery{Query: "compare male population vs female population"},
			ExpectedShape: []testhelpers.SplitShape{
				{SplitCount: 2, DelimiterDerived: true, PhraseGroups: 1},
				{SplitCount: 3, PhraseGroups: 3},
			},
			ValidateFunc: func(t *testing.T, result services.DecomposeResult) {
				assert.Equal(t, "male population female population", result.NormalizedQuery)
				assert.Equal(t, []string{"male", "population", "female", "population"}, result.Tokens)
				assert.Equal(t, 4, result.TotalPhraseGroups)
				group, ok := result.DelimiterGroup()
				require.True(t, ok)
				assert.Equal(t, []string{"male population", "female population"}, group.PhraseGroups[0].Phrases())
			},
		},
		{
			Name:          "only stop words",
			Query:         services.DecomposeQuery{Query: "the of in"},
			ExpectedShape: []testhelpers.SplitShape{},
			ValidateFunc: func(t *testing.T, result services.DecomposeResult) {
				assert.True(t, result.IsEmpty())
				assert.NotNil(t, result.Tokens)
				assert.Empty(t, result.Tokens)
			},
		},
		{
			Name:  "lower split cap",
			Query: services.DecomposeQuery{Query: "a1 b2 c3 d4", MaxSplitCount: 2},
			ExpectedShape: []testhelpers.SplitShape{
				{SplitCount: 2, PhraseGroups: 3},
			},
		},
		{
			Name:  "split cap bounds the delimiter group",
			Query: services.DecomposeQuery{Query: "median income, poverty, unemployment", MaxSplitCount: 2},
			ExpectedShape: []testhelpers.SplitShape{
				{SplitCount: 2, PhraseGroups: 3},
			},
		},
		{
			Name:          "empty query",
			Query:         services.DecomposeQuery{Query: "   "},
			ExpectedError: internalErrors.ErrInvalidInput,
		},
		{
			Name:          "split cap above maximum",
			Query:         services.DecomposeQuery{Query: "median income", MaxSplitCount: 5},
			ExpectedError: internalErrors.ErrInvalidInput,
		},
		{
			Name:          "split cap below minimum",
			Query:         services.DecomposeQuery{Query: "median income", MaxSplitCount: 1},
			ExpectedError: internalErrors.ErrInvalidInput,
		},
		{
			Name:          "too many tokens",
			Query:         services.DecomposeQuery{Query: "a b c d e f g"},
			ExpectedError: internalErrors.ErrQueryTooLong,
		},
		{
			Name:  "stop words do not count towards the token limit",
			Query: services.DecomposeQuery{Query: "the a of b in c and d with e vs f"},
			ValidateFunc: func(t *testing.T, result services.DecomposeResult) {
				assert.Len(t, result.Tokens, 6)
			},
		},
	})
}

func TestService_Decompose_TooLongError(t *testing.T) {
	svc := testhelpers.CreateTestService(t, func(s *config.Settings) { s.MaxQueryTokens = 2 })

	_, err := svc.Decompose(context.Background(), services.DecomposeQuery{Query: "poverty rate median income"})
	var tooLong *internalErrors.QueryTooLongError
	require.ErrorAs(t, err, &tooLong)
	assert.Equal(t, 4, tooLong.Tokens)
	assert.Equal(t, 2, tooLong.Limit)
}

func TestService_Decompose_Caching(t *testing.T) {
	svc := testhelpers.CreateTestService(t, nil)
	ctx := context.Background()
	query := services.DecomposeQuery{Query: "median income, poverty rate"}

	first, err := svc.Decompose(ctx, query)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := svc.Decompose(ctx, query)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.NotEqual(t, first.QueryID, second.QueryID, "every request gets its own ID")
	assert.Equal(t, first.DecompositionResult, second.DecompositionResult)
	assert.Equal(t, first.Tokens, second.Tokens)

	capped, err := svc.Decompose(ctx, services.DecomposeQuery{Query: query.Query, MaxSplitCount: 2})
	require.NoError(t, err)
	assert.False(t, capped.Cached, "a different split cap is a different cache entry")
}

func TestService_Decompose_CacheDisabled(t *testing.T) {
	svc := testhelpers.CreateTestService(t, func(s *config.Settings) { s.CacheSize = -1 })
	ctx := context.Background()
	query := services.DecomposeQuery{Query: "median income, poverty rate"}

	for i := 0; i < 3; i++ {
		result, err := svc.Decompose(ctx, query)
		require.NoError(t, err)
		assert.False(t, result.Cached)
	}
}

func TestService_Decompose_ResultsAreIsolatedFromCache(t *testing.T) {
	svc := testhelpers.CreateTestService(t, nil)
	ctx := context.Background()
	query := services.DecomposeQuery{Query: "compare male population vs female population"}

	first, err := svc.Decompose(ctx, query)
	require.NoError(t, err)
	want := first.DecompositionResult.Clone()

	first.SplitGroups[0].PhraseGroups[0] = model.NewPhraseGroup("tampered")
	first.SplitGroups = first.SplitGroups[:1]
	first.Tokens[0] = "tampered"

	second, err := svc.Decompose(ctx, query)
	require.NoError(t, err)
	require.True(t, second.Cached)
	assert.Equal(t, want, second.DecompositionResult)
	assert.Equal(t, "male", second.Tokens[0])
}

func TestService_Decompose_Canceled(t *testing.T) {
	svc := testhelpers.CreateTestService(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Decompose(ctx, services.DecomposeQuery{Query: "median income"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestService_Decompose_TracksEvents(t *testing.T) {
	tracker := &testhelpers.RecordingTracker{}
	svc := testhelpers.CreateTestService(t, nil, decompose.WithEventTracker(tracker))
	ctx := context.Background()

	_, err := svc.Decompose(ctx, services.DecomposeQuery{Query: "compare male population vs female population"})
	require.NoError(t, err)
	_, err = svc.Decompose(ctx, services.DecomposeQuery{Query: "compare male population vs female population"})
	require.NoError(t, err)
	_, err = svc.Decompose(ctx, services.DecomposeQuery{Query: ""})
	require.Error(t, err)

	events := tracker.Events()
	require.Len(t, events, 2, "rejected requests are not tracked")

	first := events[0]
	assert.Equal(t, "compare male population vs female population", first.Query)
	assert.Equal(t, "male population female population", first.NormalizedQuery)
	assert.Equal(t, 4, first.TokenCount)
	assert.Equal(t, []int{2, 3}, first.SplitCounts)
	assert.True(t, first.DelimiterDerived)
	assert.Equal(t, 4, first.PhraseGroupCount)
	assert.False(t, first.Cached)
	assert.True(t, events[1].Cached)
}

func TestService_Decompose_TrackerErrorIsNotFatal(t *testing.T) {
	tracker := &testhelpers.RecordingTracker{Err: errors.New("disk full")}
	svc := testhelpers.CreateTestService(t, nil, decompose.WithEventTracker(tracker))

	_, err := svc.Decompose(context.Background(), services.DecomposeQuery{Query: "median income"})
	require.NoError(t, err)
	assert.Len(t, tracker.Events(), 1)
}

func TestService_Decompose_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	recorder, err := metrics.NewRecorder("test", reg)
	require.NoError(t, err)
	svc := testhelpers.CreateTestService(t, func(s *config.Settings) { s.MaxQueryTokens = 3 }, decompose.WithMetrics(recorder))
	ctx := context.Background()

	_, err = svc.Decompose(ctx, services.DecomposeQuery{Query: "median income"})
	require.NoError(t, err)
	_, err = svc.Decompose(ctx, services.DecomposeQuery{Query: "median income"})
	require.NoError(t, err)
	_, err = svc.Decompose(ctx, services.DecomposeQuery{Query: ""})
	require.Error(t, err)
	_, err = svc.Decompose(ctx, services.DecomposeQuery{Query: "a b c d"})
	require.Error(t, err)

	expected := `
# HELP test_cache_hits_total Decompositions served from the result cache.
# TYPE test_cache_hits_total counter
test_cache_hits_total 1
# HELP test_decompositions_total Decomposition requests by outcome.
# TYPE test_decompositions_total counter
test_decompositions_total{outcome="invalid"} 1
test_decompositions_total{outcome="ok"} 2
test_decompositions_total{outcome="too_long"} 1
# HELP test_split_groups_total Split groups produced, by split count and origin.
# TYPE test_split_groups_total counter
test_split_groups_total{delimiter_derived="false",split_count="2"} 1
`
	err = testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"test_cache_hits_total", "test_decompositions_total", "test_split_groups_total")
	assert.NoError(t, err)
}

func TestService_Decompose_Concurrent(t *testing.T) {
	svc := testhelpers.CreateTestService(t, nil)
	queries := []string{
		"compare male population vs female population",
		"median income, poverty rate",
		"unemployment rate in texas counties",
	}

	want := make(map[string]model.DecompositionResult)
	for _, q := range queries {
		want[q] = decompose.Decompose(q, testhelpers.TestStopWords())
	}

	var wg sync.WaitGroup
	errs := make(chan error, 60)
	for i := 0; i < 60; i++ {
		q := queries[i%len(queries)]
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := svc.Decompose(context.Background(), services.DecomposeQuery{Query: q})
			if err != nil {
				errs <- err
				return
			}
			if !assert.ObjectsAreEqual(want[q], result.DecompositionResult) {
				errs <- errors.New("unexpected decomposition for " + q)
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestService_DecomposeBatch(t *testing.T) {
	svc := testhelpers.CreateTestService(t, nil)

	result, err := svc.DecomposeBatch(context.Background(), services.BatchDecomposeQuery{
		Queries: []services.NamedDecomposeQuery{
			{Name: "versus", Query: "compare male population vs female population"},
			{Name: "capped", Query: "a1 b2 c3 d4", MaxSplitCount: 2},
			{Name: "empty", Query: "the of"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalQueries)
	require.Len(t, result.Results, 3)
	assert.Equal(t, []testhelpers.SplitShape{
		{SplitCount: 2, DelimiterDerived: true, PhraseGroups: 1},
		{SplitCount: 3, PhraseGroups: 3},
	}, testhelpers.Shape(result.Results["versus"].DecompositionResult))
	assert.Equal(t, []testhelpers.SplitShape{{SplitCount: 2, PhraseGroups: 3}},
		testhelpers.Shape(result.Results["capped"].DecompositionResult))
	assert.True(t, result.Results["empty"].IsEmpty())
	assert.GreaterOrEqual(t, result.ProcessingTimeMs, 0.0)
}

func TestService_DecomposeBatch_Errors(t *testing.T) {
	svc := testhelpers.CreateTestService(t, func(s *config.Settings) { s.MaxBatchQueries = 2 })
	ctx := context.Background()

	tests := []struct {
		name    string
		queries []services.NamedDecomposeQuery
		wantErr error
	}{
		{
			name:    "no queries",
			queries: nil,
			wantErr: internalErrors.ErrEmptyBatch,
		},
		{
			name: "too many queries",
			queries: []services.NamedDecomposeQuery{
				{Name: "a", Query: "a"}, {Name: "b", Query: "b"}, {Name: "c", Query: "c"},
			},
			wantErr: internalErrors.ErrInvalidInput,
		},
		{
			name:    "missing name",
			queries: []services.NamedDecomposeQuery{{Query: "median income"}},
			wantErr: internalErrors.ErrInvalidInput,
		},
		{
			name: "duplicate names",
			queries: []services.NamedDecomposeQuery{
				{Name: "a", Query: "median income"}, {Name: "a", Query: "poverty"},
			},
			wantErr: internalErrors.ErrInvalidInput,
		},
		{
			name: "failing query",
			queries: []services.NamedDecomposeQuery{
				{Name: "ok", Query: "median income"}, {Name: "broken", Query: ""},
			},
			wantErr: internalErrors.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.DecomposeBatch(ctx, services.BatchDecomposeQuery{Queries: tt.queries})
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, result)
		})
	}
}

func TestService_DecomposeBatch_NamesFailingQuery(t *testing.T) {
	svc := testhelpers.CreateTestService(t, nil)

	_, err := svc.DecomposeBatch(context.Background(), services.BatchDecomposeQuery{
		Queries: []services.NamedDecomposeQuery{{Name: "broken", Query: "x", MaxSplitCount: 9}},
	})
	var batchErr *internalErrors.BatchQueryError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, "broken", batchErr.Name)
	assert.Contains(t, err.Error(), "error executing query 'broken'")
}

func TestService_Normalize(t *testing.T) {
	svc := testhelpers.CreateTestService(t, nil)

	result := svc.Normalize("Compare the country's GDP vs. St. Louis, in 2.5 years!")
	assert.Equal(t, "Compare the country's GDP vs. St. Louis, in 2.5 years!", result.Text)
	assert.Equal(t, "Compare the country GDP vs St. Louis in 2.5 years", result.Stripped)
	assert.Equal(t, "country gdp st. louis 2.5 years", result.Normalized)
	assert.Equal(t, []string{"country", "gdp", "st.", "louis", "2.5", "years"}, result.Tokens)
}

func TestService_StopWords(t *testing.T) {
	svc := testhelpers.CreateTestService(t, nil)

	words := svc.StopWords()
	assert.Equal(t, testhelpers.TestStopWords().Entries(), words)
	assert.Equal(t, "counties", words[0], "longest entries come first")

	words[0] = "mutated"
	assert.Equal(t, "counties", svc.StopWords()[0])
}
