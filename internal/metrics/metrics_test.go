package metrics

import (
	"sync"
	"testing"
	"time"

	"openai2local/internal/core"
)

type captureStorage struct {
	mu    sync.Mutex
	saved *core.RequestStats
}

func (s *captureStorage) SaveStats(stats *core.RequestStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = stats
	return nil
}

func (s *captureStorage) LoadStats() (*core.RequestStats, error) {
	return &core.RequestStats{
		TotalRequests:      5,
		SuccessfulRequests: 4,
		FailedRequests:     1,
		RequestHistory:     []core.RequestRecord{{Model: "gpt-4"}},
	}, nil
}

func (s *captureStorage) Close() error { return nil }

func newTestService(storage core.StorageInterface) *MetricsService {
	return NewMetricsService(MetricsConfig{
		SaveInterval: time.Hour, // debounce everything except explicit Close
		HistorySize:  100,
		Storage:      storage,
		Logger:       &core.NopLogger{},
	})
}

func TestRecordRequestCounters(t *testing.T) {
	ms := newTestService(nil)
	defer func() { _ = ms.Close() }()

	ms.RecordRequest(true, 100, "gpt-4", "/v1/chat/completions")
	ms.RecordRequest(true, 50, "gpt-4", "/v1/chat/completions")
	ms.RecordRequest(false, 10, "gpt-3.5-turbo", "/v1/completions")

	stats := ms.GetRequestStats()
	if stats.TotalRequests != 3 || stats.SuccessfulRequests != 2 || stats.FailedRequests != 1 {
		t.Errorf("counters = %+v", stats)
	}
	if stats.TotalResponseTime != 160 {
		t.Errorf("TotalResponseTime = %d, want 160", stats.TotalResponseTime)
	}
	if len(stats.RequestHistory) != 3 {
		t.Fatalf("history length = %d", len(stats.RequestHistory))
	}
	if stats.RequestHistory[2].Endpoint != "/v1/completions" {
		t.Errorf("endpoint = %q", stats.RequestHistory[2].Endpoint)
	}
}

func TestHistoryBounded(t *testing.T) {
	ms := NewMetricsService(MetricsConfig{
		SaveInterval: time.Hour,
		HistorySize:  10,
		Logger:       &core.NopLogger{},
	})
	defer func() { _ = ms.Close() }()

	for i := 0; i < 25; i++ {
		ms.RecordRequest(true, 1, "m", "/e")
	}

	stats := ms.GetRequestStats()
	if len(stats.RequestHistory) > 10 {
		t.Errorf("history length = %d, want <= 10", len(stats.RequestHistory))
	}
}

func TestGetQPSCountsRecentRequests(t *testing.T) {
	ms := newTestService(nil)
	defer func() { _ = ms.Close() }()

	if qps := ms.GetQPS(); qps != 0 {
		t.Errorf("idle QPS = %f", qps)
	}

	for i := 0; i < 60; i++ {
		ms.RecordRequest(true, 1, "m", "/e")
	}

	if qps := ms.GetQPS(); qps != 1.0 {
		t.Errorf("QPS = %f, want 1.0 for 60 requests in the last minute", qps)
	}
}

func TestLoadStatsRestoresSnapshot(t *testing.T) {
	ms := newTestService(&captureStorage{})
	defer func() { _ = ms.Close() }()

	if err := ms.LoadStats(); err != nil {
		t.Fatalf("LoadStats: %v", err)
	}

	stats := ms.GetRequestStats()
	if stats.TotalRequests != 5 || stats.SuccessfulRequests != 4 {
		t.Errorf("restored counters = %+v", stats)
	}
	if len(stats.RequestHistory) != 1 || stats.RequestHistory[0].Model != "gpt-4" {
		t.Errorf("restored history = %v", stats.RequestHistory)
	}
}

func TestCloseFlushesAndSaves(t *testing.T) {
	storage := &captureStorage{}
	ms := newTestService(storage)

	ms.RecordRequest(true, 7, "gpt-4", "/v1/chat/completions")

	if err := ms.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	storage.mu.Lock()
	saved := storage.saved
	storage.mu.Unlock()

	if saved == nil {
		t.Fatalf("Close did not persist stats")
	}
	if saved.TotalRequests < 1 || len(saved.RequestHistory) < 1 {
		t.Errorf("saved = %+v", saved)
	}

	// Second Close must not panic.
	if err := ms.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestGetPeriodStats(t *testing.T) {
	now := time.Now()
	history := []core.RequestRecord{
		{Timestamp: now.Add(-1 * time.Hour), Success: true, ResponseTime: 100},
		{Timestamp: now.Add(-2 * time.Hour), Success: false, ResponseTime: 300},
		{Timestamp: now.Add(-48 * time.Hour), Success: true, ResponseTime: 500},
	}

	result := GetPeriodStats(history, 24, 24*7)

	day := result[24]
	if day.Requests != 2 {
		t.Errorf("24h requests = %d, want 2", day.Requests)
	}
	if day.SuccessRate != 50 {
		t.Errorf("24h success rate = %f, want 50", day.SuccessRate)
	}
	if day.AvgResponseTime != 200 {
		t.Errorf("24h avg = %d, want 200", day.AvgResponseTime)
	}

	week := result[24*7]
	if week.Requests != 3 {
		t.Errorf("7d requests = %d, want 3", week.Requests)
	}
}

func TestGetPeriodStatsEmpty(t *testing.T) {
	if got := GetPeriodStats(nil); got != nil {
		t.Errorf("GetPeriodStats() = %v, want nil", got)
	}

	result := GetPeriodStats(nil, 24)
	if result[24].Requests != 0 || result[24].SuccessRate != 0 {
		t.Errorf("empty history stats = %+v", result[24])
	}
}

// SaveStatsDebounced inside the interval must be a no-op.
func TestSaveStatsDebounce(t *testing.T) {
	storage := &captureStorage{}
	ms := newTestService(storage)
	defer func() { _ = ms.Close() }()

	ms.RecordRequest(true, 1, "m", "/e") // triggers first save
	ms.SaveStatsDebounced()
	ms.SaveStatsDebounced()

	storage.mu.Lock()
	first := storage.saved
	storage.mu.Unlock()

	if first == nil {
		t.Fatalf("initial save missing")
	}
	if first.TotalRequests != 1 {
		t.Errorf("saved TotalRequests = %d", first.TotalRequests)
	}
}
