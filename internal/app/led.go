package app

import (
	"sync"

	"github.com/rx178nwj/SoilMonitorRev2/internal/indicator"
)

// ledSink is a minimal IndicatorSink: it holds the most recently resolved
// colour for inspection (debug surface, tests) in place of a real LED
// driver, which is out of scope (register-level hardware access, §1).
type ledSink struct {
	mu      sync.RWMutex
	current indicator.Color
}

func newLEDSink() *ledSink { return &ledSink{} }

func (l *ledSink) Set(c indicator.Color) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.current = c
}

func (l *ledSink) Current() indicator.Color {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}
