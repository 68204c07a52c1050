package config

import (
	"path/filepath"
	"testing"

	"github.com/rx178nwj/SoilMonitorRev2/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.db")
	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoadProfileDefaultsWhenMissing(t *testing.T) {
	s := newTestStore(t)
	p, err := s.LoadProfile()
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if p != model.FactoryDefaultProfile() {
		t.Fatalf("expected factory default profile, got %+v", p)
	}

	raw, ok, err := s.get(keyProfile)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatal("expected LoadProfile to persist the factory default when none was stored")
	}
	persisted, err := model.UnmarshalProfile(raw)
	if err != nil {
		t.Fatalf("UnmarshalProfile: %v", err)
	}
	if persisted != model.FactoryDefaultProfile() {
		t.Fatalf("expected persisted profile to match factory default, got %+v", persisted)
	}
}

func TestSaveAndLoadProfileRoundTrips(t *testing.T) {
	s := newTestStore(t)
	p := model.Profile{
		Name:           "Fern",
		DryThreshold:   2800,
		WetThreshold:   1200,
		DryDaysTrigger: 2,
		TempHigh:       30,
		TempLow:        15,
		WateringDelta:  350,
	}
	if err := s.SaveProfile(p); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}
	got, err := s.LoadProfile()
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if got != p {
		t.Fatalf("expected round-tripped profile %+v, got %+v", p, got)
	}
}

func TestLoadLinkCredentialsAbsentByDefault(t *testing.T) {
	s := newTestStore(t)
	_, ok, err := s.LoadLinkCredentials()
	if err != nil {
		t.Fatalf("LoadLinkCredentials: %v", err)
	}
	if ok {
		t.Fatal("expected no credentials configured")
	}
}

func TestSaveAndLoadLinkCredentialsRoundTrips(t *testing.T) {
	s := newTestStore(t)
	creds := model.LinkCredentials{SSID: "greenhouse", Password: "hunter2hunter2"}
	if err := s.SaveLinkCredentials(creds); err != nil {
		t.Fatalf("SaveLinkCredentials: %v", err)
	}
	got, ok, err := s.LoadLinkCredentials()
	if err != nil || !ok {
		t.Fatalf("LoadLinkCredentials: ok=%v err=%v", ok, err)
	}
	if got != creds {
		t.Fatalf("expected %+v, got %+v", creds, got)
	}
}

func TestTimezoneDefaultsToUTC(t *testing.T) {
	s := newTestStore(t)
	tz, err := s.LoadTimezone()
	if err != nil {
		t.Fatalf("LoadTimezone: %v", err)
	}
	if tz != "UTC" {
		t.Fatalf("expected UTC default, got %s", tz)
	}
}

func TestSaveAndLoadTimezone(t *testing.T) {
	s := newTestStore(t)
	if err := s.SaveTimezone("America/Denver"); err != nil {
		t.Fatalf("SaveTimezone: %v", err)
	}
	tz, err := s.LoadTimezone()
	if err != nil {
		t.Fatalf("LoadTimezone: %v", err)
	}
	if tz != "America/Denver" {
		t.Fatalf("expected America/Denver, got %s", tz)
	}
}
