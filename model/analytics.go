package model

import "time"

// DecomposeEvent represents a single decomposition request for analytics tracking
type DecomposeEvent struct {
	Query            string        `json:"query"`
	NormalizedQuery  string        `json:"normalized_query"`
	TokenCount       int           `json:"token_count"`
	SplitCounts      []int         `json:"split_counts"`      // split_count of every SplitGroup, in result order
	DelimiterDerived bool          `json:"delimiter_derived"` // result contained a delimiter-derived SplitGroup
	PhraseGroupCount int           `json:"phrase_group_count"`
	Cached           bool          `json:"cached"`
	ResponseTime     time.Duration `json:"response_time"`
	Timestamp        time.Time     `json:"timestamp"`
}

// PopularQuery represents aggregated data for frequently decomposed queries
type PopularQuery struct {
	Query       string `json:"query"`
	QueryCount  int    `json:"query_count"`
	TrendChange string `json:"trend_change,omitempty"` // "up", "down", "stable"
}

// ResponseTimeDistribution represents response time distribution buckets
type ResponseTimeDistribution struct {
	Bucket0To100us       int     `json:"bucket_0_100us"`
	Bucket100usTo1ms     int     `json:"bucket_100us_1ms"`
	Bucket1To10ms        int     `json:"bucket_1_10ms"`
	Bucket10msPlus       int     `json:"bucket_10ms_plus"`
	Percentage0To100us   float64 `json:"percentage_0_100us"`
	Percentage100usTo1ms float64 `json:"percentage_100us_1ms"`
	Percentage1To10ms    float64 `json:"percentage_1_10ms"`
	Percentage10msPlus   float64 `json:"percentage_10ms_plus"`
}

// DecompositionShape summarizes what kind of results queries produced
type DecompositionShape struct {
	SplitCountDistribution  map[int]int `json:"split_count_distribution"` // split_count -> number of SplitGroups
	DelimiterDerivedPercent float64     `json:"delimiter_derived_percent"`
	EmptyResultPercent      float64     `json:"empty_result_percent"`
	AvgPhraseGroups         float64     `json:"avg_phrase_groups"`
	AvgTokenCount           float64     `json:"avg_token_count"`
}

// DecomposePerformanceHourly represents hourly decomposition performance data
type DecomposePerformanceHourly struct {
	Hour            int   `json:"hour"`
	QueryCount      int   `json:"query_count"`
	AvgResponseTime int64 `json:"avg_response_time_us"` // in microseconds
}

// SystemHealth represents system health metrics
type SystemHealth struct {
	MemoryUsage float64 `json:"memory_usage_percent"`
	Goroutines  int     `json:"goroutines"`
}

// AnalyticsDashboard represents the complete analytics dashboard data
type AnalyticsDashboard struct {
	// Summary metrics
	TotalQueries         int     `json:"total_queries"`
	QueriesChangePercent float64 `json:"queries_change_percent"`
	AvgResponseTime      int64   `json:"avg_response_time_us"` // in microseconds
	ResponseTimeChange   string  `json:"response_time_change"`
	CacheHitRate         float64 `json:"cache_hit_rate_percent"`

	// Detailed analytics
	Performance24h           []DecomposePerformanceHourly `json:"performance_24h"`
	PopularQueries           []PopularQuery               `json:"popular_queries"`
	Shape                    DecompositionShape           `json:"shape"`
	ResponseTimeDistribution ResponseTimeDistribution     `json:"response_time_distribution"`
	SystemHealth             SystemHealth                 `json:"system_health"`
}
