package link

import (
	"sync/atomic"

	"github.com/rx178nwj/SoilMonitorRev2/internal/model"
)

// CredentialStore is the subset of the configuration store the link
// controller persists credentials through.
type CredentialStore interface {
	LoadLinkCredentials() (model.LinkCredentials, bool, error)
	SaveLinkCredentials(model.LinkCredentials) error
}

// Controller implements protocol.LinkController against the link adapter's
// connection state and the persisted credential store. There is no real
// radio to bring up or down in the portable build, so Connect/Disconnect
// govern whether the adapter accepts traffic on open connections rather
// than a physical association.
type Controller struct {
	store CredentialStore

	creds     atomic.Value // model.LinkCredentials
	connected atomic.Bool
	enabled   atomic.Bool
}

// NewController constructs a link Controller, loading any persisted
// credentials as the initial applied set.
func NewController(store CredentialStore) *Controller {
	c := &Controller{store: store}
	c.enabled.Store(true)
	if creds, ok, err := store.LoadLinkCredentials(); err == nil && ok {
		c.creds.Store(creds)
	} else {
		c.creds.Store(model.LinkCredentials{})
	}
	return c
}

// CurrentCredentials returns the credentials currently applied in memory.
func (c *Controller) CurrentCredentials() model.LinkCredentials {
	return c.creds.Load().(model.LinkCredentials)
}

// ApplyCredentials updates the in-memory credentials without persisting
// them (§4.7 0x0D SetLinkConfig applies without saving; 0x13 SaveLinkConfig
// persists separately).
func (c *Controller) ApplyCredentials(creds model.LinkCredentials) {
	c.creds.Store(creds)
}

// SaveCredentials persists the current in-memory credentials.
func (c *Controller) SaveCredentials(creds model.LinkCredentials) error {
	c.creds.Store(creds)
	return c.store.SaveLinkCredentials(creds)
}

// IsConnected reports whether any peer is currently attached.
func (c *Controller) IsConnected() bool {
	return c.connected.Load()
}

// Connect re-enables accepting traffic on open connections.
func (c *Controller) Connect() error {
	c.enabled.Store(true)
	return nil
}

// Disconnect stops accepting traffic on open connections without tearing
// down the listener itself.
func (c *Controller) Disconnect() error {
	c.enabled.Store(false)
	return nil
}

// Enabled reports whether the adapter should currently process traffic.
func (c *Controller) Enabled() bool {
	return c.enabled.Load()
}

// setConnected is called by the adapter's OnOpen/OnClose handlers.
func (c *Controller) setConnected(v bool) {
	c.connected.Store(v)
}
