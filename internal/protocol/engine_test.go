package protocol

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/rx178nwj/SoilMonitorRev2/internal/clock"
	"github.com/rx178nwj/SoilMonitorRev2/internal/log"
	"github.com/rx178nwj/SoilMonitorRev2/internal/model"
)

type fakeSamples struct {
	latest model.Sample
	has    bool
}

func (f *fakeSamples) GetLatestMinute() (model.Sample, bool) { return f.latest, f.has }
func (f *fakeSamples) FindMinute(year, month, day, hour, minute int) (model.Sample, bool) {
	ts := f.latest.Timestamp
	if f.has && ts.Year == year && ts.Month == month && ts.Day == day && ts.Hour == hour && ts.Minute == minute {
		return f.latest, true
	}
	return model.Sample{}, false
}

type fakeProfiles struct {
	active model.Profile
	saved  model.Profile
}

func (f *fakeProfiles) ActiveProfile() model.Profile        { return f.active }
func (f *fakeProfiles) SetActiveProfile(p model.Profile)    { f.active = p }
func (f *fakeProfiles) SaveProfile(p model.Profile) error   { f.saved = p; return nil }

type fakeLink struct {
	creds     model.LinkCredentials
	connected bool
}

func (f *fakeLink) CurrentCredentials() model.LinkCredentials { return f.creds }
func (f *fakeLink) ApplyCredentials(c model.LinkCredentials)  { f.creds = c }
func (f *fakeLink) SaveCredentials(c model.LinkCredentials) error {
	f.creds = c
	return nil
}
func (f *fakeLink) IsConnected() bool  { return f.connected }
func (f *fakeLink) Connect() error     { f.connected = true; return nil }
func (f *fakeLink) Disconnect() error  { f.connected = false; return nil }

type fakeSync struct{ called bool }

func (f *fakeSync) SyncTime(ctx context.Context) error { f.called = true; return nil }

type fakeTZStore struct{ tz string }

func (f *fakeTZStore) LoadTimezone() (string, error)  { return f.tz, nil }
func (f *fakeTZStore) SaveTimezone(tz string) error   { f.tz = tz; return nil }

func newTestEngine(t *testing.T) (*Engine, *fakeSamples, *fakeProfiles, *fakeLink) {
	t.Helper()
	log.Init(false)
	samples := &fakeSamples{}
	profiles := &fakeProfiles{active: model.FactoryDefaultProfile()}
	link := &fakeLink{}
	e := New(Deps{
		Clock:           clock.New(),
		Samples:         samples,
		Profiles:        profiles,
		Link:            link,
		Sync:            &fakeSync{},
		TimezoneStore:   &fakeTZStore{tz: "UTC"},
		Counters:        &Counters{},
		Logger:          log.GetSugaredLogger(),
		DeviceName:      "PlantMonitor_03_AB12",
		FirmwareVersion: "1.4.0",
		HardwareVersion: "3",
	})
	return e, samples, profiles, link
}

func buildCommand(id CommandID, seq uint8, data []byte) []byte {
	buf := make([]byte, CommandHeaderSize+len(data))
	buf[0] = byte(id)
	buf[1] = seq
	binary.LittleEndian.PutUint16(buf[2:4], uint16(len(data)))
	copy(buf[4:], data)
	return buf
}

func TestUnknownCommandIsInvalidCommand(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	resp := e.Dispatch(buildCommand(0x99, 1, nil))
	if resp[1] != byte(StatusInvalidCommand) {
		t.Fatalf("expected INVALID_COMMAND, got status %d", resp[1])
	}
}

func TestShortFrameIsInvalidParameter(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	resp := e.Dispatch([]byte{0x01})
	if resp[1] != byte(StatusInvalidParameter) {
		t.Fatalf("expected INVALID_PARAMETER, got status %d", resp[1])
	}
}

func TestDataLengthMismatchIsInvalidParameter(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	raw := buildCommand(CmdSetPlantProfile, 1, make([]byte, 10))
	binary.LittleEndian.PutUint16(raw[2:4], 999) // lie about length
	resp := e.Dispatch(raw)
	if resp[1] != byte(StatusInvalidParameter) {
		t.Fatalf("expected INVALID_PARAMETER, got status %d", resp[1])
	}
}

func TestSequenceNumberIsEchoed(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	resp := e.Dispatch(buildCommand(CmdGetPlantProfile, 42, nil))
	if resp[2] != 42 {
		t.Fatalf("expected sequence 42 echoed, got %d", resp[2])
	}
}

func TestGetSensorDataErrorsWhenNoSample(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	resp := e.Dispatch(buildCommand(CmdGetSensorData, 1, nil))
	if resp[1] != byte(StatusError) {
		t.Fatalf("expected ERROR with no sample, got status %d", resp[1])
	}
}

func TestGetSensorDataSucceedsAndIncrementsCounter(t *testing.T) {
	e, samples, _, _ := newTestEngine(t)
	samples.has = true
	samples.latest = model.Sample{Timestamp: clock.FromUnix(1000), SoilMoisture: 1500}

	resp := e.Dispatch(buildCommand(CmdGetSensorData, 1, nil))
	if resp[1] != byte(StatusSuccess) {
		t.Fatalf("expected SUCCESS, got status %d", resp[1])
	}

	resp2 := e.Dispatch(buildCommand(CmdGetDeviceInfo, 2, nil))
	info, err := model.UnmarshalDeviceInfo(resp2[ResponseHeaderSize:])
	if err != nil {
		t.Fatalf("UnmarshalDeviceInfo: %v", err)
	}
	if info.ReadingCount != 1 {
		t.Fatalf("expected reading count 1, got %d", info.ReadingCount)
	}
}

func TestSetPlantProfileUpdatesActiveAndPersists(t *testing.T) {
	e, _, profiles, _ := newTestEngine(t)
	newProfile := model.Profile{Name: "Cactus", DryThreshold: 3000, WetThreshold: 500, DryDaysTrigger: 5, TempHigh: 40, TempLow: 5, WateringDelta: 300}
	raw, _ := newProfile.MarshalBinary()

	resp := e.Dispatch(buildCommand(CmdSetPlantProfile, 1, raw))
	if resp[1] != byte(StatusSuccess) {
		t.Fatalf("expected SUCCESS, got status %d", resp[1])
	}
	if profiles.active != newProfile {
		t.Fatalf("expected active profile updated, got %+v", profiles.active)
	}
	if profiles.saved != newProfile {
		t.Fatalf("expected profile persisted, got %+v", profiles.saved)
	}
}

func TestGetLinkConfigMasksSecret(t *testing.T) {
	e, _, _, link := newTestEngine(t)
	link.creds = model.LinkCredentials{SSID: "greenhouse", Password: "supersecret"}

	resp := e.Dispatch(buildCommand(CmdGetLinkConfig, 1, nil))
	creds, err := model.UnmarshalLinkCredentials(resp[ResponseHeaderSize:])
	if err != nil {
		t.Fatalf("UnmarshalLinkCredentials: %v", err)
	}
	if creds.Password != "sup***" {
		t.Fatalf("expected masked password, got %q", creds.Password)
	}
}

func TestBusyCommandIsDroppedNotNacked(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	e.busy.Store(true)
	resp := e.Dispatch(buildCommand(CmdGetPlantProfile, 1, nil))
	if resp != nil {
		t.Fatalf("expected dropped (nil) response while busy, got %v", resp)
	}
}
