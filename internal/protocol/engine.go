package protocol

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rx178nwj/SoilMonitorRev2/internal/clock"
	"github.com/rx178nwj/SoilMonitorRev2/internal/model"
	"github.com/rx178nwj/SoilMonitorRev2/internal/xerrors"
	"go.uber.org/zap"
)

// SampleSource is the subset of the ring store the protocol engine reads from.
type SampleSource interface {
	GetLatestMinute() (model.Sample, bool)
	FindMinute(year, month, day, hour, minute int) (model.Sample, bool)
}

// ProfileAccess is the subset of the config store plus active-profile
// mutation the protocol engine needs for the plant-profile commands.
type ProfileAccess interface {
	ActiveProfile() model.Profile
	SetActiveProfile(model.Profile)
	SaveProfile(model.Profile) error
}

// LinkController is the subset of the link adapter the protocol engine
// drives for connect/disconnect/credentials commands (§4.7 0x0D-0x13).
type LinkController interface {
	CurrentCredentials() model.LinkCredentials
	ApplyCredentials(model.LinkCredentials)
	SaveCredentials(model.LinkCredentials) error
	IsConnected() bool
	Connect() error
	Disconnect() error
}

// TimeSyncer performs the external time-sync side effect of SyncTime (0x11).
type TimeSyncer interface {
	SyncTime(ctx context.Context) error
}

// Counters tracks the engine's side-effect counters, exposed to
// GetSensorData/GetDeviceInfo (§4.7).
type Counters struct {
	sensorReads atomic.Uint32
}

func (c *Counters) IncrementSensorReads() { c.sensorReads.Add(1) }
func (c *Counters) SensorReads() uint32   { return c.sensorReads.Load() }

// Engine is the protocol dispatch engine. It owns no goroutine of its own;
// Dispatch is called synchronously by the link-host task on every received
// command frame, matching the "single-threaded cooperative scheduler owns
// the engine" contract (§4.7).
type Engine struct {
	clock    *clock.Clock
	samples  SampleSource
	profiles ProfileAccess
	link     LinkController
	sync     TimeSyncer
	store    TimezoneStore
	counters *Counters
	logger   *zap.SugaredLogger

	startedAt time.Time

	busy atomic.Bool

	deviceName      string
	firmwareVersion string
	hardwareVersion string

	handlers map[CommandID]func(CommandFrame) ([]byte, StatusCode)
}

// TimezoneStore is the subset of the config store needed for the timezone commands.
type TimezoneStore interface {
	LoadTimezone() (string, error)
	SaveTimezone(string) error
}

// Deps bundles the Engine's collaborators, constructed once at start-up and
// passed by reference (no hidden globals).
type Deps struct {
	Clock           *clock.Clock
	Samples         SampleSource
	Profiles        ProfileAccess
	Link            LinkController
	Sync            TimeSyncer
	TimezoneStore   TimezoneStore
	Counters        *Counters
	Logger          *zap.SugaredLogger
	DeviceName      string
	FirmwareVersion string
	HardwareVersion string
}

// New constructs an Engine and registers its exhaustive command dispatch
// table, grounded on the teacher's explicit-registration pattern adapted to
// a plain map since there is no code generator here.
func New(d Deps) *Engine {
	e := &Engine{
		clock:           d.Clock,
		samples:         d.Samples,
		profiles:        d.Profiles,
		link:            d.Link,
		sync:            d.Sync,
		store:           d.TimezoneStore,
		counters:        d.Counters,
		logger:          d.Logger,
		startedAt:       time.Now(),
		deviceName:      d.DeviceName,
		firmwareVersion: d.FirmwareVersion,
		hardwareVersion: d.HardwareVersion,
	}

	e.handlers = map[CommandID]func(CommandFrame) ([]byte, StatusCode){
		CmdGetSensorData:    e.handleGetSensorData,
		CmdGetSystemStatus:  e.handleGetSystemStatus,
		CmdSetPlantProfile:  e.handleSetPlantProfile,
		CmdSystemReset:      e.handleSystemReset,
		CmdGetDeviceInfo:    e.handleGetDeviceInfo,
		CmdGetTimeData:      e.handleGetTimeData,
		CmdGetSwitchStatus:  e.handleGetSwitchStatus,
		CmdGetPlantProfile:  e.handleGetPlantProfile,
		CmdSetLinkConfig:    e.handleSetLinkConfig,
		CmdGetLinkConfig:    e.handleGetLinkConfig,
		CmdLinkConnect:      e.handleLinkConnect,
		CmdGetTimezone:      e.handleGetTimezone,
		CmdSyncTime:         e.handleSyncTime,
		CmdLinkDisconnect:   e.handleLinkDisconnect,
		CmdSaveLinkConfig:   e.handleSaveLinkConfig,
		CmdSavePlantProfile: e.handleSavePlantProfile,
		CmdSetTimezone:      e.handleSetTimezone,
		CmdSaveTimezone:     e.handleSaveTimezone,
	}
	return e
}

// Dispatch parses and handles one raw command frame, returning the encoded
// response frame to send back, or nil if the command was dropped because
// the engine was already busy. The source drops (rather than NACKing) a
// command that arrives mid-dispatch, and this is preserved deliberately
// (§4.7, §9 REDESIGN FLAGS).
func (e *Engine) Dispatch(raw []byte) []byte {
	if !e.busy.CompareAndSwap(false, true) {
		e.logger.Warn("command dropped: engine busy")
		return nil
	}
	defer e.busy.Store(false)

	frame, err := ParseCommandFrame(raw)
	if err != nil {
		// A malformed frame may not even carry a usable command_id/sequence_num;
		// best effort: try to recover them if the header fit.
		var cmdID CommandID
		var seq uint8
		if len(raw) >= 2 {
			cmdID, seq = CommandID(raw[0]), raw[1]
		}
		resp := ResponseFrame{ResponseID: cmdID, StatusCode: StatusInvalidParameter, SequenceNum: seq}
		out, _ := resp.MarshalBinary()
		return out
	}

	handler, ok := e.handlers[frame.CommandID]
	if !ok {
		resp := ResponseFrame{ResponseID: frame.CommandID, StatusCode: StatusInvalidCommand, SequenceNum: frame.SequenceNum}
		out, _ := resp.MarshalBinary()
		return out
	}

	data, status := handler(frame)
	resp := ResponseFrame{ResponseID: frame.CommandID, StatusCode: status, SequenceNum: frame.SequenceNum, Data: data}
	out, err := resp.MarshalBinary()
	if err != nil {
		e.logger.Errorw("failed to encode response", "command", frame.CommandID, "error", err)
		fallback := ResponseFrame{ResponseID: frame.CommandID, StatusCode: StatusError, SequenceNum: frame.SequenceNum}
		out, _ = fallback.MarshalBinary()
	}
	return out
}

func (e *Engine) handleGetSensorData(_ CommandFrame) ([]byte, StatusCode) {
	sample, ok := e.samples.GetLatestMinute()
	if !ok {
		return nil, StatusError
	}
	e.counters.IncrementSensorReads()
	data, err := sample.MarshalBinary()
	if err != nil {
		return nil, StatusError
	}
	return data, StatusSuccess
}

func (e *Engine) handleGetSystemStatus(_ CommandFrame) ([]byte, StatusCode) {
	status := model.SystemStatus{
		UptimeSeconds: uint32(time.Since(e.startedAt).Seconds()),
		HeapFree:      0, // not meaningful off-device; reported as 0
		HeapMin:       0,
		TaskCount:     3, // sampling, analysis, link-host
		CurrentTime:   uint32(e.clock.Now().Time().Unix()),
		Linked:        e.link.IsConnected(),
		Subscribed:    false,
	}
	data, err := status.MarshalBinary()
	if err != nil {
		return nil, StatusError
	}
	return data, StatusSuccess
}

func (e *Engine) handleSetPlantProfile(f CommandFrame) ([]byte, StatusCode) {
	if len(f.Data) != model.ProfileWireSize {
		return nil, StatusInvalidParameter
	}
	profile, err := model.UnmarshalProfile(f.Data)
	if err != nil {
		return nil, StatusInvalidParameter
	}
	if err := e.profiles.SaveProfile(profile); err != nil {
		return nil, StatusError
	}
	e.profiles.SetActiveProfile(profile)
	return nil, StatusSuccess
}

func (e *Engine) handleSystemReset(_ CommandFrame) ([]byte, StatusCode) {
	e.logger.Warn("system reset requested over link")
	go func() {
		time.Sleep(500 * time.Millisecond)
		e.logger.Warn("system reset deferred action: no process-level reset implemented for the portable host build")
	}()
	return nil, StatusSuccess
}

func (e *Engine) handleGetDeviceInfo(_ CommandFrame) ([]byte, StatusCode) {
	info := model.DeviceInfo{
		Name:            e.deviceName,
		FirmwareVersion: e.firmwareVersion,
		HardwareVersion: e.hardwareVersion,
		UptimeSeconds:   uint32(time.Since(e.startedAt).Seconds()),
		ReadingCount:    e.counters.SensorReads(),
	}
	data, err := info.MarshalBinary()
	if err != nil {
		return nil, StatusError
	}
	return data, StatusSuccess
}

func (e *Engine) handleGetTimeData(f CommandFrame) ([]byte, StatusCode) {
	if len(f.Data) != model.TimeRequestWireSize {
		return nil, StatusInvalidParameter
	}
	req, err := model.UnmarshalTimeRequest(f.Data)
	if err != nil {
		return nil, StatusInvalidParameter
	}
	sample, ok := e.samples.FindMinute(int(req.Year), int(req.Month), int(req.Day), int(req.Hour), int(req.Minute))
	if !ok {
		return nil, StatusError
	}
	resp := model.TimeResponse{
		Calendar:     req.Calendar,
		AirTemp:      sample.AirTemp,
		AirHumidity:  sample.AirHumidity,
		AmbientLight: sample.AmbientLight,
		SoilMoisture: sample.SoilMoisture,
	}
	data, err := resp.MarshalBinary()
	if err != nil {
		return nil, StatusError
	}
	return data, StatusSuccess
}

func (e *Engine) handleGetSwitchStatus(_ CommandFrame) ([]byte, StatusCode) {
	return []byte{0}, StatusSuccess
}

func (e *Engine) handleGetPlantProfile(_ CommandFrame) ([]byte, StatusCode) {
	data, err := e.profiles.ActiveProfile().MarshalBinary()
	if err != nil {
		return nil, StatusError
	}
	return data, StatusSuccess
}

func (e *Engine) handleSetLinkConfig(f CommandFrame) ([]byte, StatusCode) {
	if len(f.Data) != model.CredentialsWireSize {
		return nil, StatusInvalidParameter
	}
	creds, err := model.UnmarshalLinkCredentials(f.Data)
	if err != nil {
		return nil, StatusInvalidParameter
	}
	e.link.ApplyCredentials(creds)
	return nil, StatusSuccess
}

func (e *Engine) handleGetLinkConfig(_ CommandFrame) ([]byte, StatusCode) {
	masked := e.link.CurrentCredentials().Masked()
	data, err := masked.MarshalBinary()
	if err != nil {
		return nil, StatusError
	}
	return data, StatusSuccess
}

func (e *Engine) handleLinkConnect(_ CommandFrame) ([]byte, StatusCode) {
	if e.link.IsConnected() {
		return nil, StatusSuccess
	}
	if err := e.link.Connect(); err != nil {
		return nil, StatusError
	}
	return nil, StatusSuccess
}

func (e *Engine) handleGetTimezone(_ CommandFrame) ([]byte, StatusCode) {
	tz, err := e.store.LoadTimezone()
	if err != nil {
		return nil, StatusError
	}
	return []byte(tz), StatusSuccess
}

func (e *Engine) handleSyncTime(_ CommandFrame) ([]byte, StatusCode) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.sync.SyncTime(ctx); err != nil {
		if err == xerrors.ErrTimeout {
			return nil, StatusError
		}
		return nil, StatusError
	}
	e.clock.MarkSynchronised()
	return nil, StatusSuccess
}

func (e *Engine) handleLinkDisconnect(_ CommandFrame) ([]byte, StatusCode) {
	if err := e.link.Disconnect(); err != nil {
		return nil, StatusError
	}
	return nil, StatusSuccess
}

func (e *Engine) handleSaveLinkConfig(_ CommandFrame) ([]byte, StatusCode) {
	if err := e.link.SaveCredentials(e.link.CurrentCredentials()); err != nil {
		return nil, StatusError
	}
	return nil, StatusSuccess
}

func (e *Engine) handleSavePlantProfile(_ CommandFrame) ([]byte, StatusCode) {
	if err := e.profiles.SaveProfile(e.profiles.ActiveProfile()); err != nil {
		return nil, StatusError
	}
	return nil, StatusSuccess
}

func (e *Engine) handleSetTimezone(f CommandFrame) ([]byte, StatusCode) {
	if len(f.Data) < 1 || len(f.Data) > 64 {
		return nil, StatusInvalidParameter
	}
	tz := string(f.Data)
	if err := e.clock.SetTimezone(tz); err != nil {
		return nil, StatusInvalidParameter
	}
	return nil, StatusSuccess
}

func (e *Engine) handleSaveTimezone(_ CommandFrame) ([]byte, StatusCode) {
	if err := e.store.SaveTimezone(e.clock.Timezone()); err != nil {
		return nil, StatusError
	}
	return nil, StatusSuccess
}
