package model

// MinuteSlot is one entry in the 1440-deep ring buffer (§3 "Minute slot").
// It is overwritten in place by the ring store's write pointer.
type MinuteSlot struct {
	Sample Sample
	Valid  bool
}

// DailySummary is one entry in the 30-deep ring buffer (§3 "Daily summary"),
// recomputed from the minute slots matching its Date on every insert.
type DailySummary struct {
	Year, Month, Day int

	SampleCount int

	MinTemp, AvgTemp, MaxTemp float32
	AvgHumidity               float32
	AvgLight                  float32

	MinSoilMoisture, AvgSoilMoisture, MaxSoilMoisture float32
	MinSoilTemp, AvgSoilTemp, MaxSoilTemp             float32

	// Complete is true once SampleCount reaches DailyCompleteThreshold
	// (≈20 hours of minute-granularity samples).
	Complete bool
}

// SameDate reports whether the summary's date matches the given calendar date.
func (d DailySummary) SameDate(year, month, day int) bool {
	return d.Year == year && d.Month == month && d.Day == day
}

// DailyCompleteThreshold is the minimum sample count for a day to be
// considered "complete" (§3: "fixed at ≥1200 samples ≈ 20 hours").
const DailyCompleteThreshold = 1200

// DailyHashSlot computes the (possibly colliding) daily-summary slot index
// per §4.4: "(month*31 + day) mod 30". Collisions between different dates
// are resolved by overwriting with the newer date — documented, not fixed,
// per §9's REDESIGN FLAGS note.
func DailyHashSlot(month, day int) int {
	return (month*31 + day) % 30
}
