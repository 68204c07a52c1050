// Package decision implements the plant-condition classifier (C5): a
// state-aware decision table combining the latest reading, a short sliding
// window for watering-event detection, and multi-day aggregates for
// prolonged-dryness detection (§4.5).
package decision

import (
	"sync"

	"github.com/rx178nwj/SoilMonitorRev2/internal/model"
)

// State is one plant-condition classification. Exactly one is active at a time.
type State uint8

const (
	SoilDry State = iota
	SoilWet
	NeedsWatering
	WateringCompleted
	TempTooHigh
	TempTooLow
	Error
)

// String returns the wire/log name of a state.
func (s State) String() string {
	switch s {
	case SoilDry:
		return "SOIL_DRY"
	case SoilWet:
		return "SOIL_WET"
	case NeedsWatering:
		return "NEEDS_WATERING"
	case WateringCompleted:
		return "WATERING_COMPLETED"
	case TempTooHigh:
		return "TEMP_TOO_HIGH"
	case TempTooLow:
		return "TEMP_TOO_LOW"
	case Error:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Engine holds the memoised previous state between classification calls.
// Per the documented boot behaviour, it starts in SoilWet rather than a
// neutral/unknown value (§9 REDESIGN FLAGS: preserved deliberately).
type Engine struct {
	mu   sync.Mutex
	prev State
}

// New constructs an Engine in its boot-default previous state.
func New() *Engine {
	return &Engine{prev: SoilWet}
}

// Classify runs the nine ordered rules against the given inputs and returns
// the resulting state, memoising it for the next call's rule 9.
//
// recentMinutes must be ordered newest-first, as returned by the ring
// store's GetRecentMinutes. recentDailies must be ordered newest-first and
// contain only complete daily summaries the caller wishes considered for
// rule 6.
func (e *Engine) Classify(profile model.Profile, latest model.Sample, recentMinutes []model.Sample, recentDailies []model.DailySummary) State {
	e.mu.Lock()
	defer e.mu.Unlock()

	state := e.classify(profile, latest, recentMinutes, recentDailies)
	e.prev = state
	return state
}

func (e *Engine) classify(profile model.Profile, latest model.Sample, recentMinutes []model.Sample, recentDailies []model.DailySummary) State {
	// Rule 1: latest sample invalid or missing.
	if !latest.Valid() {
		return Error
	}

	// Rule 2: temperature at or above the high limit.
	if latest.AirTemp >= profile.TempHigh {
		return TempTooHigh
	}

	// Rule 3: temperature at or below the low limit.
	if latest.AirTemp <= profile.TempLow {
		return TempTooLow
	}

	// Rule 4: watering-event detection over the last 3 minute samples.
	// recentMinutes[0] is the current/latest sample, recentMinutes[2] is
	// two steps earlier. Higher raw moisture means drier soil, so a drop
	// (two-steps-earlier minus current) of at least watering_threshold
	// indicates water was added.
	if len(recentMinutes) >= 3 {
		drop := recentMinutes[2].SoilMoisture - recentMinutes[0].SoilMoisture
		if drop >= profile.WateringDelta {
			return WateringCompleted
		}
	}

	// Rule 5: previous state was dry/needs-watering and moisture has
	// fallen to or below the wet threshold.
	if (e.prev == SoilDry || e.prev == NeedsWatering) && latest.SoilMoisture <= profile.WetThreshold {
		return WateringCompleted
	}

	// Rule 6: N consecutive recent complete daily summaries averaging at
	// or above the dry threshold, where N is the profile's dry-days trigger.
	if consecutiveDryDays(recentDailies, profile.DryThreshold) >= int(profile.DryDaysTrigger) {
		return NeedsWatering
	}

	// Rule 7: moisture at or above the dry threshold.
	if latest.SoilMoisture >= profile.DryThreshold {
		return SoilDry
	}

	// Rule 8: moisture at or below the wet threshold.
	if latest.SoilMoisture <= profile.WetThreshold {
		return SoilWet
	}

	// Rule 9: hysteresis — hold the previously emitted state.
	return e.prev
}

// consecutiveDryDays counts how many of the leading (most recent) entries
// in dailies are both complete and averaging at or above threshold. The
// count stops at the first day that fails either condition.
func consecutiveDryDays(dailies []model.DailySummary, threshold float32) int {
	var n int
	for _, d := range dailies {
		if !d.Complete || d.AvgSoilMoisture < threshold {
			break
		}
		n++
	}
	return n
}
