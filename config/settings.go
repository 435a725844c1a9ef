// Package config provides configuration structures for the query decomposer.
// It defines server, engine and cache settings with defaults and validation.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPort             = "8080"
	DefaultDataDir          = "./decomposer_data"
	DefaultMaxSplitCount    = 4
	DefaultMaxQueryTokens   = 32
	DefaultCacheSize        = 1024
	DefaultBatchConcurrency = 8
	DefaultMaxBatchQueries  = 50
	DefaultMaxRequestBytes  = 1 << 20
)

// Settings contains all configuration options for the decomposition service.
//
// The engine itself never reads Settings; the service layer uses them to
// bound the work done per request (MaxSplitCount, MaxQueryTokens) and to size
// the result cache and batch worker pool.
type Settings struct {
	Port             string `json:"port" yaml:"port"`                           // HTTP port to listen on
	DataDir          string `json:"data_dir" yaml:"data_dir"`                   // Directory for analytics snapshots
	StopWordsFile    string `json:"stop_words_file" yaml:"stop_words_file"`     // Optional YAML stop-word corpus; built-in corpus when empty
	MaxSplitCount    int    `json:"max_split_count" yaml:"max_split_count"`     // Upper bound on phrases per split, between 2 and 4
	MaxQueryTokens   int    `json:"max_query_tokens" yaml:"max_query_tokens"`   // Queries with more normalized tokens are rejected
	CacheSize        int    `json:"cache_size" yaml:"cache_size"`               // LRU entries; negative disables caching
	BatchConcurrency int    `json:"batch_concurrency" yaml:"batch_concurrency"` // Parallel decompositions per batch request
	MaxBatchQueries  int    `json:"max_batch_queries" yaml:"max_batch_queries"` // Maximum queries in one batch request
	MaxRequestBytes  int64  `json:"max_request_bytes" yaml:"max_request_bytes"` // Request body size limit
}

// Default returns settings with every default applied.
func Default() Settings {
	s := Settings{}
	s.ApplyDefaults()
	return s
}

// ApplyDefaults applies default values to unset fields
func (s *Settings) ApplyDefaults() {
	if s.Port == "" {
		s.Port = DefaultPort
	}
	if s.DataDir == "" {
		s.DataDir = DefaultDataDir
	}
	if s.MaxSplitCount == 0 {
		s.MaxSplitCount = DefaultMaxSplitCount
	}
	if s.MaxQueryTokens == 0 {
		s.MaxQueryTokens = DefaultMaxQueryTokens
	}
	if s.CacheSize == 0 {
		s.CacheSize = DefaultCacheSize
	}
	if s.BatchConcurrency == 0 {
		s.BatchConcurrency = DefaultBatchConcurrency
	}
	if s.MaxBatchQueries == 0 {
		s.MaxBatchQueries = DefaultMaxBatchQueries
	}
	if s.MaxRequestBytes == 0 {
		s.MaxRequestBytes = DefaultMaxRequestBytes
	}
}

// Validate returns one message per invalid setting; an empty slice means valid.
func (s *Settings) Validate() []string {
	var problems []string

	if strings.TrimSpace(s.Port) == "" {
		problems = append(problems, "port cannot be empty")
	}
	if s.MaxSplitCount < 2 || s.MaxSplitCount > DefaultMaxSplitCount {
		problems = append(problems, fmt.Sprintf("max_split_count must be between 2 and %d, got %d", DefaultMaxSplitCount, s.MaxSplitCount))
	}
	if s.MaxQueryTokens < 1 {
		problems = append(problems, fmt.Sprintf("max_query_tokens must be positive, got %d", s.MaxQueryTokens))
	}
	if s.BatchConcurrency < 1 {
		problems = append(problems, fmt.Sprintf("batch_concurrency must be positive, got %d", s.BatchConcurrency))
	}
	if s.MaxBatchQueries < 1 {
		problems = append(problems, fmt.Sprintf("max_batch_queries must be positive, got %d", s.MaxBatchQueries))
	}
	if s.MaxRequestBytes < 1 {
		problems = append(problems, fmt.Sprintf("max_request_bytes must be positive, got %d", s.MaxRequestBytes))
	}

	return problems
}

// CacheEnabled reports whether decomposition results should be cached.
func (s *Settings) CacheEnabled() bool {
	return s.CacheSize > 0
}

// Load reads settings from a YAML file, applies defaults and validates them.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is controlled by the operator, not user input
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML settings, applies defaults and validates them.
func Parse(data []byte) (Settings, error) {
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config: %w", err)
	}
	s.ApplyDefaults()
	if problems := s.Validate(); len(problems) > 0 {
		return Settings{}, fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return s, nil
}
