package analytics

import (
	"errors"
	"fmt"
	"log"
	"os"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/gcbaptista/go-query-decomposer/internal/persistence"
	"github.com/gcbaptista/go-query-decomposer/model"
)

const (
	// DataFileName is the snapshot file name inside the data directory.
	DataFileName    = "analytics.gob"
	maxEventsToKeep = 10000 // Keep last 10k events for performance
	popularLimit    = 5
)

// Service implements analytics tracking and reporting for decomposition requests
type Service struct {
	mutex        sync.RWMutex
	events       []model.DecomposeEvent
	dataFilePath string
	dirty        bool
}

// NewService creates a new analytics service. Events are persisted to
// dataFilePath on Save; an empty path keeps events in memory only.
func NewService(dataFilePath string) *Service {
	service := &Service{
		events:       make([]model.DecomposeEvent, 0),
		dataFilePath: dataFilePath,
	}

	if err := service.loadData(); err != nil {
		log.Printf("Warning: Failed to load analytics data: %v", err)
	}

	return service
}

// TrackEvent records a new decomposition event
func (s *Service) TrackEvent(event model.DecomposeEvent) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	s.events = append(s.events, event)

	// Keep only the latest events to prevent unbounded growth
	if len(s.events) > maxEventsToKeep {
		s.events = s.events[len(s.events)-maxEventsToKeep:]
	}
	s.dirty = true

	return nil
}

// EventCount returns the number of retained events
func (s *Service) EventCount() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.events)
}

// GetDashboardData returns complete analytics dashboard data
func (s *Service) GetDashboardData() (model.AnalyticsDashboard, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	now := time.Now()
	yesterday := now.Add(-24 * time.Hour)
	lastWeek := now.Add(-7 * 24 * time.Hour)

	last24hEvents := s.filterEventsByTimeRange(s.events, yesterday, now.Add(time.Second))
	prev24hEvents := s.filterEventsByTimeRange(s.events, yesterday.Add(-24*time.Hour), yesterday)
	lastWeekEvents := s.filterEventsByTimeRange(s.events, lastWeek, now.Add(time.Second))

	dashboard := model.AnalyticsDashboard{
		TotalQueries:             len(last24hEvents),
		QueriesChangePercent:     calculateChangePercent(len(last24hEvents), len(prev24hEvents)),
		AvgResponseTime:          calculateAvgResponseTime(last24hEvents),
		ResponseTimeChange:       calculateResponseTimeChange(last24hEvents, prev24hEvents),
		CacheHitRate:             calculateCacheHitRate(last24hEvents),
		Performance24h:           getHourlyPerformance(last24hEvents),
		PopularQueries:           getPopularQueries(lastWeekEvents),
		Shape:                    getShape(last24hEvents),
		ResponseTimeDistribution: getResponseTimeDistribution(last24hEvents),
		SystemHealth:             getSystemHealth(),
	}

	return dashboard, nil
}

// filterEventsByTimeRange returns events within the given time range
func (s *Service) filterEventsByTimeRange(events []model.DecomposeEvent, start, end time.Time) []model.DecomposeEvent {
	var filtered []model.DecomposeEvent
	for _, event := range events {
		if event.Timestamp.After(start) && event.Timestamp.Before(end) {
			filtered = append(filtered, event)
		}
	}
	return filtered
}

// calculateChangePercent calculates percentage change between current and previous values
func calculateChangePercent(current, previous int) float64 {
	if previous == 0 {
		if current > 0 {
			return 100.0
		}
		return 0.0
	}
	return float64(current-previous) / float64(previous) * 100.0
}

// calculateAvgResponseTime calculates average response time for events in microseconds
func calculateAvgResponseTime(events []model.DecomposeEvent) int64 {
	if len(events) == 0 {
		return 0
	}

	var total time.Duration
	for _, event := range events {
		total += event.ResponseTime
	}
	avgDuration := total / time.Duration(len(events))
	return avgDuration.Microseconds()
}

// calculateResponseTimeChange calculates response time change trend
func calculateResponseTimeChange(current, previous []model.DecomposeEvent) string {
	currentAvg := calculateAvgResponseTime(current)
	previousAvg := calculateAvgResponseTime(previous)

	if previousAvg == 0 {
		return "stable"
	}

	change := float64(currentAvg-previousAvg) / float64(previousAvg)
	if change > 0.1 {
		return "up"
	} else if change < -0.1 {
		return "down"
	}
	return "stable"
}

func calculateCacheHitRate(events []model.DecomposeEvent) float64 {
	if len(events) == 0 {
		return 0
	}
	hits := 0
	for _, event := range events {
		if event.Cached {
			hits++
		}
	}
	return float64(hits) / float64(len(events)) * 100
}

// getHourlyPerformance returns hourly performance for the last 24 hours
func getHourlyPerformance(events []model.DecomposeEvent) []model.DecomposePerformanceHourly {
	hourlyData := make(map[int][]model.DecomposeEvent)

	for _, event := range events {
		hour := event.Timestamp.Hour()
		hourlyData[hour] = append(hourlyData[hour], event)
	}

	performance := make([]model.DecomposePerformanceHourly, 0, 24)
	for hour := 0; hour < 24; hour++ {
		events := hourlyData[hour]
		performance = append(performance, model.DecomposePerformanceHourly{
			Hour:            hour,
			QueryCount:      len(events),
			AvgResponseTime: calculateAvgResponseTime(events),
		})
	}

	return performance
}

// getPopularQueries returns the most frequently decomposed queries
func getPopularQueries(events []model.DecomposeEvent) []model.PopularQuery {
	queryCounts := make(map[string]int)

	for _, event := range events {
		if event.Query != "" {
			queryCounts[event.Query]++
		}
	}

	type queryCount struct {
		query string
		count int
	}

	queries := make([]queryCount, 0, len(queryCounts))
	for query, count := range queryCounts {
		queries = append(queries, queryCount{query: query, count: count})
	}

	// Sort by count descending, then alphabetically for stable output
	sort.Slice(queries, func(i, j int) bool {
		if queries[i].count != queries[j].count {
			return queries[i].count > queries[j].count
		}
		return queries[i].query < queries[j].query
	})

	popular := make([]model.PopularQuery, 0, popularLimit)
	for i, qc := range queries {
		if i >= popularLimit {
			break
		}
		popular = append(popular, model.PopularQuery{
			Query:       qc.query,
			QueryCount:  qc.count,
			TrendChange: "stable",
		})
	}

	return popular
}

// getShape aggregates split counts and result sizes
func getShape(events []model.DecomposeEvent) model.DecompositionShape {
	shape := model.DecompositionShape{SplitCountDistribution: make(map[int]int)}
	total := len(events)
	if total == 0 {
		return shape
	}

	delimiter, empty, phraseGroups, tokens := 0, 0, 0, 0
	for _, event := range events {
		for _, k := range event.SplitCounts {
			shape.SplitCountDistribution[k]++
		}
		if event.DelimiterDerived {
			delimiter++
		}
		if len(event.SplitCounts) == 0 {
			empty++
		}
		phraseGroups += event.PhraseGroupCount
		tokens += event.TokenCount
	}

	shape.DelimiterDerivedPercent = float64(delimiter) / float64(total) * 100
	shape.EmptyResultPercent = float64(empty) / float64(total) * 100
	shape.AvgPhraseGroups = float64(phraseGroups) / float64(total)
	shape.AvgTokenCount = float64(tokens) / float64(total)
	return shape
}

// getResponseTimeDistribution returns response time distribution
func getResponseTimeDistribution(events []model.DecomposeEvent) model.ResponseTimeDistribution {
	dist := model.ResponseTimeDistribution{}
	total := len(events)

	if total == 0 {
		return dist
	}

	for _, event := range events {
		switch rt := event.ResponseTime; {
		case rt <= 100*time.Microsecond:
			dist.Bucket0To100us++
		case rt <= time.Millisecond:
			dist.Bucket100usTo1ms++
		case rt <= 10*time.Millisecond:
			dist.Bucket1To10ms++
		default:
			dist.Bucket10msPlus++
		}
	}

	// Calculate percentages
	dist.Percentage0To100us = float64(dist.Bucket0To100us) / float64(total) * 100
	dist.Percentage100usTo1ms = float64(dist.Bucket100usTo1ms) / float64(total) * 100
	dist.Percentage1To10ms = float64(dist.Bucket1To10ms) / float64(total) * 100
	dist.Percentage10msPlus = float64(dist.Bucket10msPlus) / float64(total) * 100

	return dist
}

// getSystemHealth returns current system health metrics
func getSystemHealth() model.SystemHealth {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return model.SystemHealth{
		MemoryUsage: float64(m.Alloc) / float64(m.Sys) * 100,
		Goroutines:  runtime.NumGoroutine(),
	}
}

// Save writes the retained events to the data file if anything changed since the last save.
func (s *Service) Save() error {
	if s.dataFilePath == "" {
		return nil
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.dirty {
		return nil
	}
	if err := persistence.SaveGob(s.dataFilePath, s.events); err != nil {
		return fmt.Errorf("failed to save analytics data: %w", err)
	}
	s.dirty = false
	return nil
}

// loadData loads analytics data from the data file
func (s *Service) loadData() error {
	if s.dataFilePath == "" {
		return nil
	}

	var events []model.DecomposeEvent
	if err := persistence.LoadGob(s.dataFilePath, &events); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil // File doesn't exist yet, that's okay
		}
		return err
	}
	if events != nil {
		s.events = events
	}
	return nil
}
