package app

import (
	"context"
	"sync"

	"github.com/rx178nwj/SoilMonitorRev2/internal/link"
	"github.com/rx178nwj/SoilMonitorRev2/internal/sensors"
	"go.uber.org/zap"
)

// schedulerComponent adapts *sensors.Scheduler to managers.Component.
type schedulerComponent struct {
	scheduler *sensors.Scheduler
}

func (s *schedulerComponent) Name() string { return "sampling" }

func (s *schedulerComponent) Start(ctx context.Context, wg *sync.WaitGroup) error {
	s.scheduler.Start(ctx, wg)
	return nil
}

func (s *schedulerComponent) Stop() error {
	s.scheduler.Stop()
	return nil
}

// linkHostComponent adapts *link.Adapter's gnet event loop to
// managers.Component, running ListenAndServe on its own goroutine.
type linkHostComponent struct {
	adapter    *link.Adapter
	listenAddr string
	logger     *zap.SugaredLogger
}

func (l *linkHostComponent) Name() string { return "link-host" }

func (l *linkHostComponent) Start(ctx context.Context, wg *sync.WaitGroup) error {
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := l.adapter.ListenAndServe(l.listenAddr); err != nil {
			l.logger.Errorw("link host exited", "error", err)
		}
	}()
	return nil
}

func (l *linkHostComponent) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return l.adapter.Shutdown(ctx)
}
