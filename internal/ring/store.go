// Package ring implements the time-indexed ring-buffer store (C4): a
// fixed-depth minute-granularity history plus a fixed-depth daily-summary
// rollup, both held in memory with no persistence across restarts (§3, §4.4).
package ring

import (
	"sort"
	"sync"

	"github.com/rx178nwj/SoilMonitorRev2/internal/model"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	minuteSlots = 1440
	dailySlots  = 30
)

// Store owns the minute and daily ring buffers. It is constructed once and
// shared by reference among the sampling, decision, and protocol
// components; there is no package-level singleton.
type Store struct {
	mu sync.RWMutex

	minute     [minuteSlots]model.MinuteSlot
	writeIdx   int
	minuteFill int // number of valid slots, saturates at minuteSlots

	daily [dailySlots]model.DailySummary
}

// New constructs an empty Store.
func New() *Store {
	return &Store{}
}

// Insert adds a sample to the minute ring and recomputes the daily summary
// for its calendar date. A sample whose timestamp falls in the same minute
// as the most recently written sample replaces it in place rather than
// advancing the write pointer, per the store's dedup-on-insert policy.
func (s *Store) Insert(sample model.Sample) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.minuteFill > 0 {
		lastIdx := s.prevIndex(s.writeIdx)
		if s.minute[lastIdx].Valid && s.minute[lastIdx].Sample.Timestamp.SameMinute(sample.Timestamp) {
			s.minute[lastIdx].Sample = sample
			s.recomputeDaily(sample.Timestamp.Year, sample.Timestamp.Month, sample.Timestamp.Day)
			return
		}
	}

	s.minute[s.writeIdx] = model.MinuteSlot{Sample: sample, Valid: true}
	s.writeIdx = (s.writeIdx + 1) % minuteSlots
	if s.minuteFill < minuteSlots {
		s.minuteFill++
	}

	s.recomputeDaily(sample.Timestamp.Year, sample.Timestamp.Month, sample.Timestamp.Day)
}

func (s *Store) prevIndex(idx int) int {
	if idx == 0 {
		return minuteSlots - 1
	}
	return idx - 1
}

// GetLatestMinute returns the most recently inserted sample, if any.
func (s *Store) GetLatestMinute() (model.Sample, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.minuteFill == 0 {
		return model.Sample{}, false
	}
	idx := s.prevIndex(s.writeIdx)
	return s.minute[idx].Sample, s.minute[idx].Valid
}

// GetRecentMinutes returns up to n of the most recently inserted samples,
// newest first.
func (s *Store) GetRecentMinutes(n int) []model.Sample {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n > s.minuteFill {
		n = s.minuteFill
	}
	out := make([]model.Sample, 0, n)
	idx := s.writeIdx
	for i := 0; i < n; i++ {
		idx = s.prevIndex(idx)
		if !s.minute[idx].Valid {
			break
		}
		out = append(out, s.minute[idx].Sample)
	}
	return out
}

// GetAtMinute returns the minute slot at the given ring index (0 is the
// oldest logical position within the currently filled range). GetTimeData
// looks samples up by timestamp through FindMinute, not through this.
func (s *Store) GetAtMinute(index int) (model.Sample, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= s.minuteFill {
		return model.Sample{}, false
	}
	start := s.writeIdx
	if s.minuteFill < minuteSlots {
		start = 0
	}
	idx := (start + index) % minuteSlots
	return s.minute[idx].Sample, s.minute[idx].Valid
}

// FindMinute searches the minute ring for a sample matching the given
// calendar minute, used by the protocol engine's GetTimeData command
// (§4.7) which addresses history by timestamp rather than ring index.
func (s *Store) FindMinute(year, month, day, hour, minute int) (model.Sample, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, slot := range s.minute {
		if !slot.Valid {
			continue
		}
		ts := slot.Sample.Timestamp
		if ts.Year == year && ts.Month == month && ts.Day == day && ts.Hour == hour && ts.Minute == minute {
			return slot.Sample, true
		}
	}
	return model.Sample{}, false
}

// GetDailySummary returns the summary slot covering the given calendar
// date, if the slot's recorded date still matches (it may have been
// overwritten by a colliding date, per §4.4's documented hash collision).
func (s *Store) GetDailySummary(year, month, day int) (model.DailySummary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slot := model.DailyHashSlot(month, day)
	d := s.daily[slot]
	if !d.SameDate(year, month, day) {
		return model.DailySummary{}, false
	}
	return d, true
}

// GetRecentDailySummaries returns up to n populated daily summaries sorted
// newest first by date.
func (s *Store) GetRecentDailySummaries(n int) []model.DailySummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var populated []model.DailySummary
	for _, d := range s.daily {
		if d.SampleCount > 0 {
			populated = append(populated, d)
		}
	}
	sort.Slice(populated, func(i, j int) bool {
		a, b := populated[i], populated[j]
		if a.Year != b.Year {
			return a.Year > b.Year
		}
		if a.Month != b.Month {
			return a.Month > b.Month
		}
		return a.Day > b.Day
	})
	if n < len(populated) {
		populated = populated[:n]
	}
	return populated
}

// Stats summarises occupancy of the store, used by the debug status surface.
type Stats struct {
	MinuteSlotsFilled int
	MinuteSlotsTotal  int
	DailySlotsFilled  int
	DailySlotsTotal   int
}

// GetStats returns the store's current occupancy.
func (s *Store) GetStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var dailyFilled int
	for _, d := range s.daily {
		if d.SampleCount > 0 {
			dailyFilled++
		}
	}
	return Stats{
		MinuteSlotsFilled: s.minuteFill,
		MinuteSlotsTotal:  minuteSlots,
		DailySlotsFilled:  dailyFilled,
		DailySlotsTotal:   dailySlots,
	}
}

// Cleanup is a no-op: the ring overwrites slots in place rather than
// accumulating unbounded entries, so there is nothing to prune. Kept as an
// explicit operation for symmetry with ClearAll and as a hook for a future
// eviction policy.
func (s *Store) Cleanup() {}

// ClearAll resets both rings to empty, discarding all history.
func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.minute = [minuteSlots]model.MinuteSlot{}
	s.daily = [dailySlots]model.DailySummary{}
	s.writeIdx = 0
	s.minuteFill = 0
}

// recomputeDaily rebuilds the daily summary slot for the given date from
// every currently stored minute sample matching that date. Must be called
// with s.mu held.
func (s *Store) recomputeDaily(year, month, day int) {
	slot := model.DailyHashSlot(month, day)

	var temps, hums, lights, moistures, soilTemps []float64
	for _, m := range s.minute {
		if !m.Valid {
			continue
		}
		ts := m.Sample.Timestamp
		if ts.Year != year || ts.Month != month || ts.Day != day {
			continue
		}
		temps = append(temps, float64(m.Sample.AirTemp))
		hums = append(hums, float64(m.Sample.AirHumidity))
		lights = append(lights, float64(m.Sample.AmbientLight))
		moistures = append(moistures, float64(m.Sample.SoilMoisture))
		for i := uint8(0); i < m.Sample.SoilTempCount && i < 4; i++ {
			soilTemps = append(soilTemps, float64(m.Sample.SoilTemps[i]))
		}
	}

	d := model.DailySummary{Year: year, Month: month, Day: day, SampleCount: len(temps)}
	if len(temps) > 0 {
		d.MinTemp = float32(floats.Min(temps))
		d.MaxTemp = float32(floats.Max(temps))
		d.AvgTemp = float32(stat.Mean(temps, nil))
		d.AvgHumidity = float32(stat.Mean(hums, nil))
		d.AvgLight = float32(stat.Mean(lights, nil))
		d.MinSoilMoisture = float32(floats.Min(moistures))
		d.MaxSoilMoisture = float32(floats.Max(moistures))
		d.AvgSoilMoisture = float32(stat.Mean(moistures, nil))
	}
	if len(soilTemps) > 0 {
		d.MinSoilTemp = float32(floats.Min(soilTemps))
		d.MaxSoilTemp = float32(floats.Max(soilTemps))
		d.AvgSoilTemp = float32(stat.Mean(soilTemps, nil))
	}
	d.Complete = d.SampleCount >= model.DailyCompleteThreshold

	s.daily[slot] = d
}
