package metrics

import (
	"testing"
	"time"
)

func TestLatencyTrackerStats(t *testing.T) {
	tracker := NewLatencyTracker(100)
	for i := 1; i <= 10; i++ {
		tracker.Record(time.Duration(i) * time.Millisecond)
	}

	stats := tracker.Stats()
	if stats.Count != 10 {
		t.Fatalf("count = %d, want 10", stats.Count)
	}
	if stats.Min != time.Millisecond {
		t.Errorf("min = %v, want 1ms", stats.Min)
	}
	if stats.Max != 10*time.Millisecond {
		t.Errorf("max = %v, want 10ms", stats.Max)
	}
	if stats.P50 < 4*time.Millisecond || stats.P50 > 6*time.Millisecond {
		t.Errorf("p50 = %v, want around 5ms", stats.P50)
	}
}

func TestLatencyTrackerEvictsOldestWhenFull(t *testing.T) {
	tracker := NewLatencyTracker(10)
	for i := 0; i < 25; i++ {
		tracker.Record(time.Millisecond)
	}

	stats := tracker.Stats()
	if stats.Samples > 10 {
		t.Fatalf("window holds %d samples, want at most 10", stats.Samples)
	}
}

func TestLatencyRegistryTracksPerOperation(t *testing.T) {
	reg := NewLatencyRegistry(100)
	reg.Record("http GET /api/v1/cases", 5*time.Millisecond)
	reg.Record("http GET /api/v1/cases", 7*time.Millisecond)
	reg.Record("llm classify", 200*time.Millisecond)

	all := reg.AllStats()
	if len(all) != 2 {
		t.Fatalf("tracked %d operations, want 2", len(all))
	}
	if all["http GET /api/v1/cases"].Count != 2 {
		t.Errorf("case route count = %d, want 2", all["http GET /api/v1/cases"].Count)
	}
	if all["llm classify"].Count != 1 {
		t.Errorf("llm count = %d, want 1", all["llm classify"].Count)
	}
}

func TestAssessDBPoolHealth(t *testing.T) {
	tests := []struct {
		name  string
		stats DBPoolStats
		want  PoolHealthStatus
	}{
		{"idle pool", DBPoolStats{InUse: 1, MaxOpenConnections: 25}, PoolHealthy},
		{"busy pool", DBPoolStats{InUse: 21, MaxOpenConnections: 25}, PoolDegraded},
		{"exhausted pool", DBPoolStats{InUse: 24, MaxOpenConnections: 25}, PoolUnhealthy},
		{"unlimited pool", DBPoolStats{InUse: 50}, PoolHealthy},
		{
			"long waits degrade a healthy pool",
			DBPoolStats{InUse: 2, MaxOpenConnections: 25, WaitCount: 10, WaitDuration: 10 * time.Second},
			PoolDegraded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AssessDBPoolHealth(tt.stats)
			if got.Status != tt.want {
				t.Fatalf("status = %s, want %s", got.Status, tt.want)
			}
		})
	}
}
