// Package app wires the monitor's components together into the three
// long-running tasks (§5) and drives start-up/shutdown, grounded on the
// teacher's context/signal/waitgroup Run shape.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rx178nwj/SoilMonitorRev2/internal/clock"
	"github.com/rx178nwj/SoilMonitorRev2/internal/debugapi"
	"github.com/rx178nwj/SoilMonitorRev2/internal/decision"
	"github.com/rx178nwj/SoilMonitorRev2/internal/indicator"
	"github.com/rx178nwj/SoilMonitorRev2/internal/link"
	"github.com/rx178nwj/SoilMonitorRev2/internal/managers"
	"github.com/rx178nwj/SoilMonitorRev2/internal/model"
	"github.com/rx178nwj/SoilMonitorRev2/internal/protocol"
	"github.com/rx178nwj/SoilMonitorRev2/internal/ring"
	"github.com/rx178nwj/SoilMonitorRev2/internal/sensors"
	"github.com/rx178nwj/SoilMonitorRev2/pkg/config"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// App is the owned, non-singleton value that wires every component
// together. Subsystem-init failures are logged but non-fatal where a
// useful subset of the system can still run (§7): a link-init failure
// leaves sensing and the indicator working.
type App struct {
	logger *zap.SugaredLogger

	clock    *clock.Clock
	store    *ring.Store
	cfgStore *config.SQLiteStore
	profiles *profileRegistry
	manager  *managers.TaskManager

	linkAdapter *link.Adapter

	capabilities sensors.Capabilities

	Version string
}

// New constructs an App from a loaded board configuration. Hardware
// register-level access is out of scope (§1); the sensor Set is wired
// against simulated adapters standing in for real chip drivers.
func New(board *config.BoardConfig, logger *zap.SugaredLogger, version string) (*App, error) {
	cfgStore, err := config.NewSQLiteStore(board.ConfigDBPath)
	if err != nil {
		return nil, fmt.Errorf("open config store: %w", err)
	}

	profiles, err := newProfileRegistry(cfgStore)
	if err != nil {
		return nil, fmt.Errorf("load plant profile: %w", err)
	}

	clk := clock.New()
	if tz, err := cfgStore.LoadTimezone(); err == nil {
		_ = clk.SetTimezone(tz)
	}

	store := ring.New()

	moistureKind := model.MoistureResistive
	if board.MoistureKind == "capacitive" {
		moistureKind = model.MoistureCapacitive
	}

	set := &sensors.Set{
		HardwareVersion: board.HardwareVersion,
		MoistureKind:    moistureKind,
		Light:           &sensors.LightAdapter{Raw: sensors.Simulated(1500, 50)},
		Resistive:       &sensors.ResistiveMoistureAdapter{Raw: sensors.Simulated(1800, 30)},
		Capacitive: &sensors.CapacitiveMoistureAdapter{Channels: [4]sensors.Adapter{
			sensors.Simulated(1800, 30), sensors.Simulated(1800, 30),
			sensors.Simulated(1800, 30), sensors.Simulated(1800, 30),
		}},
		SoilTemps: &sensors.SoilTemperatureAdapter{
			Probes: simulatedProbes(board.SoilTemperatureProbeCount),
		},
		Air: &sensors.AirAdapter{Temp: sensors.Simulated(22, 2), Humidity: sensors.Simulated(45, 5)},
	}

	scheduler := sensors.NewScheduler(clk, set, store, time.Duration(board.SamplingIntervalSeconds)*time.Second, logger)

	engine := decision.New()
	driver := indicator.New(moistureKind == model.MoistureCapacitive)
	led := newLEDSink()
	analysis := NewAnalysisLoop(store, profiles, engine, driver, led, time.Duration(board.AnalysisIntervalSeconds)*time.Second, logger)

	controller := link.NewController(cfgStore)

	macLast4 := "0000"
	deviceName := board.Link.DeviceName
	if deviceName == "" {
		deviceName = link.DeviceName(board.HardwareVersion, macLast4)
	}

	protoEngine := protocol.New(protocol.Deps{
		Clock:           clk,
		Samples:         store,
		Profiles:        profiles,
		Link:            controller,
		Sync:            clock.SystemSyncer{},
		TimezoneStore:   cfgStore,
		Counters:        &protocol.Counters{},
		Logger:          logger,
		DeviceName:      deviceName,
		FirmwareVersion: version,
		HardwareVersion: fmt.Sprintf("%d", board.HardwareVersion),
	})

	linkAdapter := link.New(protoEngine, store, controller, logger)
	scheduler.SetNotifier(linkAdapter.NotifySample)

	app := &App{
		logger:       logger,
		clock:        clk,
		store:        store,
		cfgStore:     cfgStore,
		profiles:     profiles,
		linkAdapter:  linkAdapter,
		capabilities: set.Capabilities(),
		Version:      version,
	}

	manager := managers.NewTaskManager(logger)
	manager.Register(&schedulerComponent{scheduler: scheduler})
	manager.Register(analysis)
	manager.Register(&linkHostComponent{adapter: linkAdapter, listenAddr: board.Link.ListenAddr, logger: logger})
	if board.Debug.ListenAddr != "" {
		manager.Register(debugapi.New(board.Debug.ListenAddr, app, logger))
	}
	app.manager = manager

	return app, nil
}

func simulatedProbes(count int) []sensors.Adapter {
	if count < 0 {
		count = 0
	}
	if count > 4 {
		count = 4
	}
	probes := make([]sensors.Adapter, count)
	for i := range probes {
		probes[i] = sensors.Simulated(20, 1)
	}
	return probes
}

// Store exposes the ring store for the debug status surface.
func (a *App) Store() *ring.Store { return a.store }

// TaskStatus exposes per-task running state for the debug status surface.
func (a *App) TaskStatus() map[string]bool { return a.manager.Status() }

// Capabilities exposes which measurement capabilities this board's sensor
// set has fitted, for the debug status surface.
func (a *App) Capabilities() sensors.Capabilities { return a.capabilities }

// Run starts every component and blocks until SIGINT/SIGTERM or ctx is
// cancelled, then shuts everything down.
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.manager.Start(ctx, &wg); err != nil {
		return err
	}

	a.logger.Info("application started")

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	select {
	case <-sigs:
		a.logger.Info("shutdown signal received, initiating graceful shutdown")
	case <-ctx.Done():
		a.logger.Info("context cancelled, shutting down")
	}

	cancel()
	a.manager.Stop()

	a.logger.Info("waiting for all tasks to terminate")
	wg.Wait()

	if err := a.cfgStore.Close(); err != nil {
		a.logger.Warnw("error closing config store", "error", err)
	}

	a.logger.Info("shutdown complete")
	return nil
}
