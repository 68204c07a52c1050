package app

import (
	"sync"

	"github.com/rx178nwj/SoilMonitorRev2/internal/model"
	"github.com/rx178nwj/SoilMonitorRev2/pkg/config"
)

// profileRegistry caches the active plant profile in memory over the
// persisted store, implementing protocol.ProfileAccess and
// app.ProfileSource. SetActiveProfile only ever touches the cache;
// SaveProfile updates the cache and persists it, and both SetPlantProfile
// (0x03) and SavePlantProfile (0x14) go through SaveProfile (§4.6, §4.7).
type profileRegistry struct {
	mu     sync.RWMutex
	active model.Profile
	store  config.ProfileStore
}

func newProfileRegistry(store config.ProfileStore) (*profileRegistry, error) {
	p, err := store.LoadProfile()
	if err != nil {
		return nil, err
	}
	return &profileRegistry{active: p, store: store}, nil
}

func (r *profileRegistry) ActiveProfile() model.Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

func (r *profileRegistry) SetActiveProfile(p model.Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = p
}

func (r *profileRegistry) SaveProfile(p model.Profile) error {
	r.mu.Lock()
	r.active = p
	r.mu.Unlock()
	return r.store.SaveProfile(p)
}
