package app

import (
	"context"
	"sync"
	"time"

	"github.com/rx178nwj/SoilMonitorRev2/internal/decision"
	"github.com/rx178nwj/SoilMonitorRev2/internal/indicator"
	"github.com/rx178nwj/SoilMonitorRev2/internal/model"
	"github.com/rx178nwj/SoilMonitorRev2/internal/ring"
	"go.uber.org/zap"
)

// IndicatorSink receives the colour resolved for the current classification.
type IndicatorSink interface {
	Set(c indicator.Color)
}

// ProfileSource supplies the active plant profile to the analysis loop.
type ProfileSource interface {
	ActiveProfile() model.Profile
}

// AnalysisLoop is the analysis task (§5.2): a fixed 60s loop that queries
// the ring store, invokes the decision engine, and updates the indicator.
type AnalysisLoop struct {
	store    *ring.Store
	profiles ProfileSource
	engine   *decision.Engine
	driver   *indicator.Driver
	sink     IndicatorSink
	period   time.Duration
	logger   *zap.SugaredLogger

	cancel context.CancelFunc
}

// NewAnalysisLoop constructs an AnalysisLoop.
func NewAnalysisLoop(store *ring.Store, profiles ProfileSource, engine *decision.Engine, driver *indicator.Driver, sink IndicatorSink, period time.Duration, logger *zap.SugaredLogger) *AnalysisLoop {
	return &AnalysisLoop{store: store, profiles: profiles, engine: engine, driver: driver, sink: sink, period: period, logger: logger}
}

// Name implements managers.Component.
func (a *AnalysisLoop) Name() string { return "analysis" }

// Start implements managers.Component.
func (a *AnalysisLoop) Start(ctx context.Context, wg *sync.WaitGroup) error {
	ctx, a.cancel = context.WithCancel(ctx)
	wg.Add(1)
	go a.loop(ctx, wg)
	return nil
}

// Stop implements managers.Component.
func (a *AnalysisLoop) Stop() error {
	if a.cancel != nil {
		a.cancel()
	}
	return nil
}

func (a *AnalysisLoop) loop(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	ticker := time.NewTicker(a.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.tick()
		}
	}
}

func (a *AnalysisLoop) tick() {
	latest, ok := a.store.GetLatestMinute()
	if !ok {
		return
	}
	profile := a.profiles.ActiveProfile()
	recentMinutes := a.store.GetRecentMinutes(3)
	var recentDailies []model.DailySummary
	for _, d := range a.store.GetRecentDailySummaries(a.store.GetStats().DailySlotsTotal) {
		if d.Complete {
			recentDailies = append(recentDailies, d)
		}
	}

	state := a.engine.Classify(profile, latest, recentMinutes, recentDailies)
	color := a.driver.Resolve(state, profile, latest)
	a.sink.Set(color)

	a.logger.Debugw("analysis tick", "state", state.String())
}
