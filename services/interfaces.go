package services

import (
	"context"

	"github.com/gcbaptista/go-query-decomposer/model"
)

// DecomposeQuery is a single decomposition request.
type DecomposeQuery struct {
	Query         string `json:"query"`
	MaxSplitCount int    `json:"max_split_count,omitempty"` // Optional: lower the service's phrase cap for this query
}

// DecomposeResult is the decomposition of one query together with request metadata.
// The embedded DecompositionResult carries the split groups.
type DecomposeResult struct {
	QueryID         string   `json:"query_id"` // unique UUID for this request
	Query           string   `json:"query"`
	NormalizedQuery string   `json:"normalized_query"`
	Tokens          []string `json:"tokens"`
	model.DecompositionResult
	TotalPhraseGroups int     `json:"total_phrase_groups"`
	Cached            bool    `json:"cached"`
	TookMs            float64 `json:"took_ms"`
}

// BatchDecomposeQuery represents a request to decompose several named queries
type BatchDecomposeQuery struct {
	Queries []NamedDecomposeQuery `json:"queries"`
}

// NamedDecomposeQuery represents a single named query within a batch request
type NamedDecomposeQuery struct {
	Name          string `json:"name"`
	Query         string `json:"query"`
	MaxSplitCount int    `json:"max_split_count,omitempty"`
}

// BatchDecomposeResult represents the response from a batch decomposition
type BatchDecomposeResult struct {
	Results          map[string]DecomposeResult `json:"results"`
	TotalQueries     int                        `json:"total_queries"`
	ProcessingTimeMs float64                    `json:"processing_time_ms"`
}

// NormalizeResult shows each cleaning step applied to a piece of text
type NormalizeResult struct {
	Text       string   `json:"text"`
	Stripped   string   `json:"stripped"`
	Normalized string   `json:"normalized"`
	Tokens     []string `json:"tokens"`
}

// Decomposer splits a query into candidate phrase groups
type Decomposer interface {
	Decompose(ctx context.Context, query DecomposeQuery) (DecomposeResult, error)
}

// BatchDecomposer decomposes several queries in one request
type BatchDecomposer interface {
	DecomposeBatch(ctx context.Context, batch BatchDecomposeQuery) (*BatchDecomposeResult, error)
}

// TextNormalizer exposes the cleaning pipeline used before decomposition
type TextNormalizer interface {
	Normalize(text string) NormalizeResult
	StopWords() []string
}

// DecompositionService combines every operation the API needs
type DecompositionService interface {
	Decomposer
	BatchDecomposer
	TextNormalizer
}
