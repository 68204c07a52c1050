package model

import (
	"testing"
	"time"

	"github.com/rx178nwj/SoilMonitorRev2/internal/clock"
)

func TestSampleRoundTrip(t *testing.T) {
	s := Sample{
		Timestamp:            clock.FromTime(time.Date(2026, 7, 31, 10, 30, 0, 0, time.UTC)),
		AmbientLight:         512.5,
		AirTemp:              23.4,
		AirHumidity:          55.1,
		SoilMoisture:         1800,
		SoilMoistureChannels: [4]float32{1700, 1800, 1900, 1750},
		SoilTemps:            [4]float32{21.1, 21.3, 0, 0},
		SoilTempCount:        2,
		HardwareVersion:      3,
		DataStructureVersion: 1,
	}
	raw, err := s.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	if len(raw) != SampleWireSize {
		t.Fatalf("expected %d bytes, got %d", SampleWireSize, len(raw))
	}
	got, err := UnmarshalSample(raw)
	if err != nil {
		t.Fatalf("UnmarshalSample: %v", err)
	}
	if got.Timestamp.Time().Unix() != s.Timestamp.Time().Unix() {
		t.Fatalf("timestamp did not round-trip: got %v want %v", got.Timestamp, s.Timestamp)
	}
	if got.AirTemp != s.AirTemp || got.SoilMoisture != s.SoilMoisture || got.SoilTempCount != s.SoilTempCount {
		t.Fatalf("sample did not round-trip: got %+v want %+v", got, s)
	}
}

func TestProfileRoundTrip(t *testing.T) {
	p := FactoryDefaultProfile()
	raw, err := p.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	if len(raw) != ProfileWireSize {
		t.Fatalf("expected %d bytes, got %d", ProfileWireSize, len(raw))
	}
	got, err := UnmarshalProfile(raw)
	if err != nil {
		t.Fatalf("UnmarshalProfile: %v", err)
	}
	if got != p {
		t.Fatalf("profile did not round-trip: got %+v want %+v", got, p)
	}
}

func TestLinkCredentialsMasking(t *testing.T) {
	c := LinkCredentials{SSID: "greenhouse", Password: "supersecret"}
	masked := c.Masked()
	if masked.Password != "sup***" {
		t.Fatalf("expected masked password 'sup***', got %q", masked.Password)
	}
	if masked.SSID != c.SSID {
		t.Fatalf("expected SSID preserved unmasked, got %q", masked.SSID)
	}

	empty := LinkCredentials{SSID: "x"}
	if empty.Masked().Password != "" {
		t.Fatalf("expected empty password to stay empty, got %q", empty.Masked().Password)
	}
}

func TestLinkCredentialsRoundTrip(t *testing.T) {
	c := LinkCredentials{SSID: "greenhouse", Password: "hunter2"}
	raw, err := c.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	if len(raw) != CredentialsWireSize {
		t.Fatalf("expected %d bytes, got %d", CredentialsWireSize, len(raw))
	}
	got, err := UnmarshalLinkCredentials(raw)
	if err != nil {
		t.Fatalf("UnmarshalLinkCredentials: %v", err)
	}
	if got != c {
		t.Fatalf("credentials did not round-trip: got %+v want %+v", got, c)
	}
}

func TestSystemStatusRoundTrip(t *testing.T) {
	s := SystemStatus{UptimeSeconds: 3600, HeapFree: 40000, HeapMin: 38000, TaskCount: 4, CurrentTime: 1753900000, Linked: true}
	raw, err := s.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	if len(raw) != SystemStatusWireSize {
		t.Fatalf("expected %d bytes, got %d", SystemStatusWireSize, len(raw))
	}
	got, err := UnmarshalSystemStatus(raw)
	if err != nil {
		t.Fatalf("UnmarshalSystemStatus: %v", err)
	}
	if got != s {
		t.Fatalf("system status did not round-trip: got %+v want %+v", got, s)
	}
}

func TestTimeRequestResponseRoundTrip(t *testing.T) {
	req := TimeRequest{Calendar{Year: 2026, Month: 7, Day: 31, Hour: 10, Minute: 30}}
	raw, err := req.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	if len(raw) != TimeRequestWireSize {
		t.Fatalf("expected %d bytes, got %d", TimeRequestWireSize, len(raw))
	}
	gotReq, err := UnmarshalTimeRequest(raw)
	if err != nil {
		t.Fatalf("UnmarshalTimeRequest: %v", err)
	}
	if gotReq != req {
		t.Fatalf("time request did not round-trip: got %+v want %+v", gotReq, req)
	}

	resp := TimeResponse{Calendar: req.Calendar, AirTemp: 22, AirHumidity: 50, AmbientLight: 300, SoilMoisture: 1500}
	rawResp, err := resp.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	if len(rawResp) != TimeResponseWireSize {
		t.Fatalf("expected %d bytes, got %d", TimeResponseWireSize, len(rawResp))
	}
	gotResp, err := UnmarshalTimeResponse(rawResp)
	if err != nil {
		t.Fatalf("UnmarshalTimeResponse: %v", err)
	}
	if gotResp != resp {
		t.Fatalf("time response did not round-trip: got %+v want %+v", gotResp, resp)
	}
}

func TestDeviceInfoRoundTrip(t *testing.T) {
	d := DeviceInfo{Name: "PlantMonitor_03_AB12", FirmwareVersion: "1.4.0", HardwareVersion: "rev3", UptimeSeconds: 120, ReadingCount: 42}
	raw, err := d.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	if len(raw) != DeviceInfoWireSize {
		t.Fatalf("expected %d bytes, got %d", DeviceInfoWireSize, len(raw))
	}
	got, err := UnmarshalDeviceInfo(raw)
	if err != nil {
		t.Fatalf("UnmarshalDeviceInfo: %v", err)
	}
	if got != d {
		t.Fatalf("device info did not round-trip: got %+v want %+v", got, d)
	}
}
