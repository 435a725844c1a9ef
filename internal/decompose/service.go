package decompose

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/gcbaptista/go-query-decomposer/config"
	internalErrors "github.com/gcbaptista/go-query-decomposer/internal/errors"
	"github.com/gcbaptista/go-query-decomposer/internal/metrics"
	"github.com/gcbaptista/go-query-decomposer/internal/stopwords"
	"github.com/gcbaptista/go-query-decomposer/internal/tokenizer"
	"github.com/gcbaptista/go-query-decomposer/model"
	"github.com/gcbaptista/go-query-decomposer/services"
)

// EventTracker receives one event per decomposition request.
type EventTracker interface {
	TrackEvent(event model.DecomposeEvent) error
}

type cacheKey struct {
	query         string
	maxSplitCount int
}

type cachedDecomposition struct {
	normalized    string
	tokens        []string
	decomposition model.DecompositionResult
}

// Service validates requests, caches results and reports metrics around the
// pure decomposition engine. It is safe for concurrent use.
type Service struct {
	settings  config.Settings
	stopWords *stopwords.Set
	cache     *lru.Cache[cacheKey, cachedDecomposition]
	metrics   *metrics.Recorder
	tracker   EventTracker
}

// Option configures optional Service collaborators.
type Option func(*Service)

// WithMetrics reports every request to r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(s *Service) { s.metrics = r }
}

// WithEventTracker records every request with t.
func WithEventTracker(t EventTracker) Option {
	return func(s *Service) { s.tracker = t }
}

// NewService creates a Service. settings are defaulted and validated; a nil
// stopWords uses the built-in corpus.
func NewService(settings config.Settings, stopWords *stopwords.Set, opts ...Option) (*Service, error) {
	settings.ApplyDefaults()
	if problems := settings.Validate(); len(problems) > 0 {
		return nil, fmt.Errorf("invalid settings: %s", strings.Join(problems, "; "))
	}
	if stopWords == nil {
		stopWords = stopwords.Default()
	}

	s := &Service{settings: settings, stopWords: stopWords}
	if settings.CacheEnabled() {
		cache, err := lru.New[cacheKey, cachedDecomposition](settings.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create result cache: %w", err)
		}
		s.cache = cache
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Settings returns the effective settings.
func (s *Service) Settings() config.Settings {
	return s.settings
}

// Decompose validates query and returns its candidate splits.
func (s *Service) Decompose(ctx context.Context, query services.DecomposeQuery) (services.DecomposeResult, error) {
	startTime := time.Now()

	if err := ctx.Err(); err != nil {
		s.metrics.RecordRejected(metrics.OutcomeCanceled)
		return services.DecomposeResult{}, fmt.Errorf("decomposition cancelled: %w", err)
	}

	maxSplitCount, err := s.validate(query)
	if err != nil {
		s.metrics.RecordRejected(metrics.OutcomeInvalid)
		return services.DecomposeResult{}, err
	}

	key := cacheKey{query: query.Query, maxSplitCount: maxSplitCount}
	entry, cached := s.lookup(key)
	if !cached {
		entry.normalized = tokenizer.Normalize(query.Query, s.stopWords)
		entry.tokens = tokenizer.Tokenize(entry.normalized)
		if len(entry.tokens) > s.settings.MaxQueryTokens {
			s.metrics.RecordRejected(metrics.OutcomeTooLong)
			return services.DecomposeResult{}, internalErrors.NewQueryTooLongError(len(entry.tokens), s.settings.MaxQueryTokens)
		}
		entry.decomposition = assemble(query.Query, entry.tokens, s.stopWords, maxSplitCount)
		if s.cache != nil {
			s.cache.Add(key, entry)
		}
	}

	decomposition := entry.decomposition.Clone()
	tokens := make([]string, len(entry.tokens))
	copy(tokens, entry.tokens)
	elapsed := time.Since(startTime)
	result := services.DecomposeResult{
		QueryID:             uuid.New().String(),
		Query:               query.Query,
		NormalizedQuery:     entry.normalized,
		Tokens:              tokens,
		DecompositionResult: decomposition,
		TotalPhraseGroups:   decomposition.TotalPhraseGroups(),
		Cached:              cached,
		TookMs:              float64(elapsed.Nanoseconds()) / 1e6,
	}

	s.metrics.RecordDecomposition(decomposition, elapsed, cached)
	s.track(result, elapsed)
	return result, nil
}

func (s *Service) validate(query services.DecomposeQuery) (int, error) {
	if strings.TrimSpace(query.Query) == "" {
		return 0, internalErrors.NewValidationError("query", "query is required")
	}

	maxSplitCount := s.settings.MaxSplitCount
	if query.MaxSplitCount != 0 {
		if query.MaxSplitCount < MinSplitCount || query.MaxSplitCount > MaxSplitCount {
			return 0, internalErrors.NewValidationError("max_split_count",
				fmt.Sprintf("must be between %d and %d", MinSplitCount, MaxSplitCount))
		}
		maxSplitCount = min(maxSplitCount, query.MaxSplitCount)
	}
	return maxSplitCount, nil
}

func (s *Service) lookup(key cacheKey) (cachedDecomposition, bool) {
	if s.cache == nil {
		return cachedDecomposition{}, false
	}
	return s.cache.Get(key)
}

func (s *Service) track(result services.DecomposeResult, elapsed time.Duration) {
	if s.tracker == nil {
		return
	}

	splitCounts := make([]int, len(result.SplitGroups))
	for i, g := range result.SplitGroups {
		splitCounts[i] = g.SplitCount
	}
	_, delimiterDerived := result.DelimiterGroup()

	event := model.DecomposeEvent{
		Query:            result.Query,
		NormalizedQuery:  result.NormalizedQuery,
		TokenCount:       len(result.Tokens),
		SplitCounts:      splitCounts,
		DelimiterDerived: delimiterDerived,
		PhraseGroupCount: result.TotalPhraseGroups,
		Cached:           result.Cached,
		ResponseTime:     elapsed,
	}
	if err := s.tracker.TrackEvent(event); err != nil {
		log.Printf("Warning: Failed to track decomposition event: %v", err)
	}
}

// DecomposeBatch decomposes every named query in parallel, at most
// BatchConcurrency at a time. The first failing query aborts the batch.
func (s *Service) DecomposeBatch(ctx context.Context, batch services.BatchDecomposeQuery) (*services.BatchDecomposeResult, error) {
	startTime := time.Now()

	if len(batch.Queries) == 0 {
		return nil, fmt.Errorf("%w: at least one query is required", internalErrors.ErrEmptyBatch)
	}
	if len(batch.Queries) > s.settings.MaxBatchQueries {
		return nil, internalErrors.NewValidationError("queries",
			fmt.Sprintf("at most %d queries are allowed per batch, got %d", s.settings.MaxBatchQueries, len(batch.Queries)))
	}
	seen := make(map[string]struct{}, len(batch.Queries))
	for i, nq := range batch.Queries {
		if nq.Name == "" {
			return nil, internalErrors.NewValidationError(fmt.Sprintf("queries[%d].name", i), "each query must have a non-empty name")
		}
		if _, dup := seen[nq.Name]; dup {
			return nil, internalErrors.NewValidationError(fmt.Sprintf("queries[%d].name", i), "duplicate query name '"+nq.Name+"'")
		}
		seen[nq.Name] = struct{}{}
	}

	results := make([]services.DecomposeResult, len(batch.Queries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.settings.BatchConcurrency)
	for i, nq := range batch.Queries {
		i, nq := i, nq
		g.Go(func() error {
			result, err := s.Decompose(gctx, services.DecomposeQuery{Query: nq.Query, MaxSplitCount: nq.MaxSplitCount})
			if err != nil {
				return internalErrors.NewBatchQueryError(nq.Name, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byName := make(map[string]services.DecomposeResult, len(results))
	for i, nq := range batch.Queries {
		byName[nq.Name] = results[i]
	}

	return &services.BatchDecomposeResult{
		Results:          byName,
		TotalQueries:     len(batch.Queries),
		ProcessingTimeMs: float64(time.Since(startTime).Nanoseconds()) / 1e6,
	}, nil
}

// Normalize runs the cleaning pipeline on text and returns every intermediate step.
func (s *Service) Normalize(text string) services.NormalizeResult {
	stripped := tokenizer.StripPunctuation(text)
	normalized := tokenizer.RemoveStopWords(stripped, s.stopWords)
	return services.NormalizeResult{
		Text:       text,
		Stripped:   stripped,
		Normalized: normalized,
		Tokens:     tokenizer.Tokenize(normalized),
	}
}

// StopWords returns the active stop-word entries, longest first.
func (s *Service) StopWords() []string {
	return s.stopWords.Entries()
}
