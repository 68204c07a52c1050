// Package clock provides the monitor's wall-clock abstraction (C1): a
// monotonically-advancing timestamp source that reports whether it has ever
// been synchronised against an external time source.
package clock

import (
	"context"
	"sync"
	"time"

	// Pulls the full IANA tzdata into the binary so SetTimezone works the
	// same on a stripped-down embedded root filesystem as it does on a dev
	// machine, DST transitions included.
	_ "time/tzdata"

	"github.com/rx178nwj/SoilMonitorRev2/internal/xerrors"
)

// Timestamp is a calendar-broken-down wall-clock reading plus a
// monotonically increasing sequence number, used by callers that need to
// detect a clock regression (§4.4 edge cases: "Clock regression ... not
// handled; implementers must make sorting queries robust to this").
type Timestamp struct {
	Year, Month, Day     int
	Hour, Minute, Second int
	Sequence             uint64
	time                 time.Time
}

// Time returns the underlying time.Time value.
func (t Timestamp) Time() time.Time { return t.time }

// FromTime builds a Timestamp from an arbitrary time.Time, used when
// reconstructing a calendar breakdown from a decoded wire epoch.
func FromTime(t time.Time) Timestamp {
	return Timestamp{
		Year: t.Year(), Month: int(t.Month()), Day: t.Day(),
		Hour: t.Hour(), Minute: t.Minute(), Second: t.Second(),
		time: t,
	}
}

// FromUnix builds a Timestamp from a Unix epoch (seconds, UTC), used when
// decoding a wire-format timestamp that carries no timezone information.
func FromUnix(epoch int64) Timestamp {
	return FromTime(time.Unix(epoch, 0).UTC())
}

// SameMinute reports whether two timestamps fall within the same calendar
// minute, the granularity the ring store keys on.
func (t Timestamp) SameMinute(o Timestamp) bool {
	return t.Year == o.Year && t.Month == o.Month && t.Day == o.Day &&
		t.Hour == o.Hour && t.Minute == o.Minute
}

// SameDay reports whether two timestamps fall on the same calendar date.
func (t Timestamp) SameDay(o Timestamp) bool {
	return t.Year == o.Year && t.Month == o.Month && t.Day == o.Day
}

// Clock is an owned value (no package-level singleton, per the "no hidden
// globals" guidance) constructed once at start-up and handed by reference to
// every long-running task that needs the time.
type Clock struct {
	mu       sync.RWMutex
	loc      *time.Location
	synced   bool
	sequence uint64
}

// New creates a Clock in the UTC, unsynchronised state, matching the
// firmware's behaviour before its first sync event.
func New() *Clock {
	return &Clock{loc: time.UTC}
}

// Now returns the current wall-clock timestamp. Before the first sync this
// still advances (it's epoch-relative, per the spec), it's just not
// meaningful for data freshness.
func (c *Clock) Now() Timestamp {
	c.mu.Lock()
	c.sequence++
	seq := c.sequence
	loc := c.loc
	c.mu.Unlock()

	now := time.Now().In(loc)
	return Timestamp{
		Year: now.Year(), Month: int(now.Month()), Day: now.Day(),
		Hour: now.Hour(), Minute: now.Minute(), Second: now.Second(),
		Sequence: seq,
		time:     now,
	}
}

// IsSynchronised reports whether an external time-sync event has occurred.
func (c *Clock) IsSynchronised() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.synced
}

// MarkSynchronised flips the synchronised flag. Called once SyncTime (0x11)
// completes against an external source.
func (c *Clock) MarkSynchronised() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.synced = true
}

// SetTimezone applies a POSIX/IANA timezone string to the clock.
func (c *Clock) SetTimezone(tz string) error {
	if tz == "" {
		return xerrors.ErrInvalidArgument
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return xerrors.ErrInvalidArgument
	}
	c.mu.Lock()
	c.loc = loc
	c.mu.Unlock()
	return nil
}

// Timezone returns the currently applied timezone name.
func (c *Clock) Timezone() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loc.String()
}

// SystemSyncer implements protocol.TimeSyncer against the host's own system
// clock. The firmware syncs against an external RTC/NTP source it doesn't
// otherwise have; on the portable host build the OS already keeps the
// system clock synchronised, so SyncTime is a no-op confirmation rather
// than a network round trip. No ecosystem NTP client appears anywhere in
// the reference pack, so there is nothing to wire here instead.
type SystemSyncer struct{}

// SyncTime always succeeds; the underlying Clock reads time.Now() already.
func (SystemSyncer) SyncTime(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return xerrors.ErrTimeout
	default:
		return nil
	}
}
