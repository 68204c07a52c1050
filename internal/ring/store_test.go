package ring

import (
	"testing"
	"time"

	"github.com/rx178nwj/SoilMonitorRev2/internal/clock"
	"github.com/rx178nwj/SoilMonitorRev2/internal/model"
)

func sampleAt(t time.Time, moisture float32) model.Sample {
	return model.Sample{
		Timestamp:    clock.FromTime(t),
		AirTemp:      20,
		AirHumidity:  50,
		AmbientLight: 100,
		SoilMoisture: moisture,
	}
}

func TestInsertAndGetLatestMinute(t *testing.T) {
	s := New()
	base := time.Date(2026, 7, 31, 10, 0, 0, 0, time.UTC)

	s.Insert(sampleAt(base, 1000))
	s.Insert(sampleAt(base.Add(time.Minute), 1100))

	latest, ok := s.GetLatestMinute()
	if !ok {
		t.Fatal("expected a latest sample")
	}
	if latest.SoilMoisture != 1100 {
		t.Fatalf("expected latest moisture 1100, got %v", latest.SoilMoisture)
	}
}

func TestInsertDedupSameMinute(t *testing.T) {
	s := New()
	base := time.Date(2026, 7, 31, 10, 0, 0, 0, time.UTC)

	s.Insert(sampleAt(base, 1000))
	s.Insert(sampleAt(base.Add(30*time.Second), 1050)) // same minute

	stats := s.GetStats()
	if stats.MinuteSlotsFilled != 1 {
		t.Fatalf("expected dedup to keep 1 slot filled, got %d", stats.MinuteSlotsFilled)
	}
	latest, _ := s.GetLatestMinute()
	if latest.SoilMoisture != 1050 {
		t.Fatalf("expected dedup to keep the newer reading, got %v", latest.SoilMoisture)
	}
}

func TestRingEviction(t *testing.T) {
	s := New()
	base := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)

	for i := 0; i < minuteSlots+10; i++ {
		s.Insert(sampleAt(base.Add(time.Duration(i)*time.Minute), float32(i)))
	}

	stats := s.GetStats()
	if stats.MinuteSlotsFilled != minuteSlots {
		t.Fatalf("expected ring to saturate at %d, got %d", minuteSlots, stats.MinuteSlotsFilled)
	}

	latest, _ := s.GetLatestMinute()
	if latest.SoilMoisture != float32(minuteSlots+9) {
		t.Fatalf("expected newest sample to survive eviction, got %v", latest.SoilMoisture)
	}
}

func TestDailySummaryRecompute(t *testing.T) {
	s := New()
	day := time.Date(2026, 7, 31, 8, 0, 0, 0, time.UTC)

	s.Insert(sampleAt(day, 1000))
	s.Insert(sampleAt(day.Add(time.Minute), 2000))
	s.Insert(sampleAt(day.Add(2*time.Minute), 3000))

	summary, ok := s.GetDailySummary(2026, 7, 31)
	if !ok {
		t.Fatal("expected a daily summary")
	}
	if summary.SampleCount != 3 {
		t.Fatalf("expected 3 samples, got %d", summary.SampleCount)
	}
	if summary.MinSoilMoisture != 1000 || summary.MaxSoilMoisture != 3000 {
		t.Fatalf("unexpected min/max: %+v", summary)
	}
	if summary.AvgSoilMoisture != 2000 {
		t.Fatalf("expected avg 2000, got %v", summary.AvgSoilMoisture)
	}
	if summary.Complete {
		t.Fatal("3 samples should not mark the day complete")
	}
}

func TestDailySummaryIncludesErrorFlaggedSamples(t *testing.T) {
	s := New()
	day := time.Date(2026, 7, 31, 8, 0, 0, 0, time.UTC)

	s.Insert(sampleAt(day, 1000))
	errored := sampleAt(day.Add(time.Minute), 0)
	errored.Error = true
	s.Insert(errored)

	summary, ok := s.GetDailySummary(2026, 7, 31)
	if !ok {
		t.Fatal("expected a daily summary")
	}
	if summary.SampleCount != 2 {
		t.Fatalf("expected an error-flagged sample to still count toward the daily total, got %d", summary.SampleCount)
	}
	if summary.MinSoilMoisture != 0 {
		t.Fatalf("expected the error-flagged sample's zero-filled moisture to count, got %v", summary.MinSoilMoisture)
	}
}

func TestDailyHashCollisionOverwritesWithNewerDate(t *testing.T) {
	s := New()
	// month*31+day mod 30: (1*31+1)%30 == 2, (1*31+31)%30 == 2 -> collide.
	d1 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 1, 31, 12, 0, 0, 0, time.UTC)
	if model.DailyHashSlot(1, 1) != model.DailyHashSlot(1, 31) {
		t.Fatal("expected these two dates to collide for this test to be meaningful")
	}

	s.Insert(sampleAt(d1, 1000))
	s.Insert(sampleAt(d2, 2000))

	if _, ok := s.GetDailySummary(2026, 1, 1); ok {
		t.Fatal("expected the older colliding date to be evicted from the slot")
	}
	summary, ok := s.GetDailySummary(2026, 1, 31)
	if !ok {
		t.Fatal("expected the newer colliding date to occupy the slot")
	}
	if summary.SampleCount != 1 {
		t.Fatalf("expected only the newer date's sample, got %d", summary.SampleCount)
	}
}

func TestClearAll(t *testing.T) {
	s := New()
	base := time.Date(2026, 7, 31, 10, 0, 0, 0, time.UTC)
	s.Insert(sampleAt(base, 1000))

	s.ClearAll()

	if _, ok := s.GetLatestMinute(); ok {
		t.Fatal("expected no samples after ClearAll")
	}
	stats := s.GetStats()
	if stats.MinuteSlotsFilled != 0 || stats.DailySlotsFilled != 0 {
		t.Fatalf("expected empty stats after ClearAll, got %+v", stats)
	}
}
