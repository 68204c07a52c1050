package sensors

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rx178nwj/SoilMonitorRev2/internal/clock"
	"github.com/rx178nwj/SoilMonitorRev2/internal/model"
	"go.uber.org/zap"
)

// Set bundles the adapters a board actually has fitted, per its hardware
// revision and configured moisture-sensor kind (§4.2, §9).
type Set struct {
	HardwareVersion uint8
	MoistureKind    model.MoistureKind

	Light         *LightAdapter
	Resistive     *ResistiveMoistureAdapter
	Capacitive    *CapacitiveMoistureAdapter
	SoilTemps     *SoilTemperatureAdapter
	Air           *AirAdapter
}

// Scheduler fires on a fixed period and hands off a composite sample to a
// Sink (the ring store, in production). Grounded on the teacher's
// airgradient.Station poll loop: a context-scoped goroutine on a
// time.Ticker, WaitGroup-tracked.
type Scheduler struct {
	clock  *clock.Clock
	set    *Set
	sink   Sink
	logger *zap.SugaredLogger
	period time.Duration

	ticking atomic.Bool // true while a tick's sensor reads are in flight

	notify func(model.Sample) // optional observer, fired after every insert

	cancel context.CancelFunc
}

// Sink receives each completed composite sample. Implemented by the ring store.
type Sink interface {
	Insert(s model.Sample)
}

// NewScheduler constructs a Scheduler. period is nominally 60s (§4.3).
func NewScheduler(clk *clock.Clock, set *Set, sink Sink, period time.Duration, logger *zap.SugaredLogger) *Scheduler {
	return &Scheduler{clock: clk, set: set, sink: sink, period: period, logger: logger}
}

// SetNotifier registers fn to be called with every sample immediately after
// it is inserted into the sink, used to fan a sample out to a subscribed
// link client (§4.7's "notifications emitted at each sampling tick")
// without coupling the scheduler's construction to the link package.
func (s *Scheduler) SetNotifier(fn func(model.Sample)) {
	s.notify = fn
}

// Start begins the periodic sampling loop on its own goroutine, tracked by wg.
func (s *Scheduler) Start(ctx context.Context, wg *sync.WaitGroup) {
	ctx, s.cancel = context.WithCancel(ctx)
	wg.Add(1)
	go s.loop(ctx, wg)
}

// Stop cancels the sampling loop. Safe to call even if Start was never called.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Scheduler) loop(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// A tick is never "caught up" after being late (§4.3): the
			// timer drives the next fire regardless of how long the
			// previous tick took. A tick already in progress is
			// coalesced (dropped) rather than re-entered.
			if !s.ticking.CompareAndSwap(false, true) {
				s.logger.Warn("sampling tick skipped: previous tick still in progress")
				continue
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.tick(ctx)
			}()
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	defer s.ticking.Store(false)

	sample := s.acquire(ctx)
	sample.Timestamp = s.clock.Now()
	s.sink.Insert(sample)
	if s.notify != nil {
		s.notify(sample)
	}
}

// acquire reads every configured adapter into one composite sample,
// folding any sub-sensor failure into the sample's Error flag rather than
// aborting the pass (§4.2, §7 propagation policy).
func (s *Scheduler) acquire(ctx context.Context) model.Sample {
	var sample model.Sample
	sample.HardwareVersion = s.set.HardwareVersion
	sample.DataStructureVersion = 1
	var failed bool

	if s.set.Light != nil {
		v, err := s.set.Light.Read(ctx)
		if err != nil {
			failed = true
		}
		sample.AmbientLight = v
	}

	switch s.set.MoistureKind {
	case model.MoistureCapacitive:
		if s.set.Capacitive != nil {
			chans, err := s.set.Capacitive.ReadChannels(ctx)
			if err != nil {
				failed = true
			}
			sample.SoilMoistureChannels = chans
			var sum float32
			for _, c := range chans {
				sum += c
			}
			sample.SoilMoisture = sum / float32(len(chans))
		}
	default:
		if s.set.Resistive != nil {
			v, err := s.set.Resistive.Read(ctx)
			if err != nil {
				failed = true
			}
			sample.SoilMoisture = v
		}
	}

	if s.set.SoilTemps != nil {
		sample.SoilTemps = s.set.SoilTemps.ReadAll(ctx)
		sample.SoilTempCount = uint8(len(s.set.SoilTemps.Probes))
	}

	if s.set.Air != nil {
		temp, hum, err := s.set.Air.Read(ctx)
		if err != nil {
			failed = true
		}
		sample.AirTemp = temp
		sample.AirHumidity = hum
	}

	sample.Error = failed
	return sample
}
