package config

import "github.com/rx178nwj/SoilMonitorRev2/internal/model"

// ProfileStore is the persistence interface for the monitor's mutable
// configuration namespace: the plant profile, the link credentials, and the
// timezone string (§4.6). A size mismatch on read is treated identically to
// an absent value for the profile (factory defaults are synthesised); the
// caller decides how to surface it for credentials, since there is no safe
// default secret.
type ProfileStore interface {
	LoadProfile() (model.Profile, error)
	SaveProfile(model.Profile) error

	LoadLinkCredentials() (model.LinkCredentials, bool, error)
	SaveLinkCredentials(model.LinkCredentials) error

	LoadTimezone() (string, error)
	SaveTimezone(string) error

	Close() error
}
