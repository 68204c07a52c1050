package link

import (
	"testing"

	"github.com/rx178nwj/SoilMonitorRev2/internal/model"
)

type fakeCredentialStore struct {
	creds model.LinkCredentials
	ok    bool
}

func (f *fakeCredentialStore) LoadLinkCredentials() (model.LinkCredentials, bool, error) {
	return f.creds, f.ok, nil
}

func (f *fakeCredentialStore) SaveLinkCredentials(c model.LinkCredentials) error {
	f.creds = c
	f.ok = true
	return nil
}

func TestControllerLoadsPersistedCredentialsOnConstruction(t *testing.T) {
	store := &fakeCredentialStore{creds: model.LinkCredentials{SSID: "greenhouse"}, ok: true}
	c := NewController(store)
	if c.CurrentCredentials().SSID != "greenhouse" {
		t.Fatalf("expected loaded credentials, got %+v", c.CurrentCredentials())
	}
}

func TestControllerDefaultsToEmptyCredentialsWhenAbsent(t *testing.T) {
	store := &fakeCredentialStore{ok: false}
	c := NewController(store)
	if c.CurrentCredentials() != (model.LinkCredentials{}) {
		t.Fatalf("expected empty credentials, got %+v", c.CurrentCredentials())
	}
}

func TestApplyCredentialsDoesNotPersist(t *testing.T) {
	store := &fakeCredentialStore{}
	c := NewController(store)
	c.ApplyCredentials(model.LinkCredentials{SSID: "new"})
	if store.ok {
		t.Fatalf("expected ApplyCredentials not to persist")
	}
	if c.CurrentCredentials().SSID != "new" {
		t.Fatalf("expected in-memory credentials updated")
	}
}

func TestSaveCredentialsPersists(t *testing.T) {
	store := &fakeCredentialStore{}
	c := NewController(store)
	if err := c.SaveCredentials(model.LinkCredentials{SSID: "saved"}); err != nil {
		t.Fatalf("SaveCredentials: %v", err)
	}
	if store.creds.SSID != "saved" {
		t.Fatalf("expected persisted credentials, got %+v", store.creds)
	}
}

func TestConnectDisconnectTogglesEnabled(t *testing.T) {
	c := NewController(&fakeCredentialStore{})
	if !c.Enabled() {
		t.Fatalf("expected enabled by default")
	}
	if err := c.Disconnect(); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}
	if c.Enabled() {
		t.Fatalf("expected disabled after Disconnect")
	}
	if err := c.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if !c.Enabled() {
		t.Fatalf("expected enabled after Connect")
	}
}

func TestIsConnectedReflectsConnectionState(t *testing.T) {
	c := NewController(&fakeCredentialStore{})
	if c.IsConnected() {
		t.Fatalf("expected not connected initially")
	}
	c.setConnected(true)
	if !c.IsConnected() {
		t.Fatalf("expected connected after setConnected(true)")
	}
}
