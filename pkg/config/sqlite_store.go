package config

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/rx178nwj/SoilMonitorRev2/internal/model"
	"github.com/rx178nwj/SoilMonitorRev2/internal/xerrors"
)

// SQLiteStore implements ProfileStore against a single-table SQLite
// database, grounded on the teacher's provider_sqlite.go connection and
// schema-bootstrap pattern but reduced to the one namespace this domain
// needs: a key/value table holding the two persisted blobs and one string
// described in §4.6.
type SQLiteStore struct {
	db *sql.DB
}

const (
	keyProfile     = "plant_profile"
	keyCredentials = "link_credentials"
	keyTimezone    = "timezone"
)

// NewSQLiteStore opens (creating if necessary) the SQLite database at path,
// applying the same WAL/busy-timeout/cache pragmas the teacher's provider
// uses for a single-writer embedded workload.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	connStr := fmt.Sprintf("%s?_busy_timeout=10000&_journal_mode=WAL&_synchronous=NORMAL", path)
	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open config database: %w", err)
	}

	db.SetMaxOpenConns(1) // single-writer embedded workload; avoid SQLITE_BUSY races
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping config database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchemaIfNeeded(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize config schema: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA temp_store = MEMORY",
		"PRAGMA cache_size = -8000",
		"PRAGMA optimize",
	} {
		db.Exec(pragma) // best-effort; a pragma failing here is not fatal
	}

	return s, nil
}

func (s *SQLiteStore) initSchemaIfNeeded() error {
	var name string
	err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='kv_config'").Scan(&name)
	if err == sql.ErrNoRows {
		_, err := s.db.Exec(`
CREATE TABLE kv_config (
	key   TEXT PRIMARY KEY,
	value BLOB NOT NULL
);`)
		return err
	}
	return err
}

// LoadProfile loads the persisted plant profile. A missing key, a decode
// error, or a size mismatch all resolve to the factory default profile,
// which is then persisted so the store reflects what the caller is told
// is active (§4.6).
func (s *SQLiteStore) LoadProfile() (model.Profile, error) {
	raw, ok, err := s.get(keyProfile)
	if err != nil {
		return model.Profile{}, err
	}
	if !ok || len(raw) != model.ProfileWireSize {
		return s.persistFactoryDefaultProfile()
	}
	profile, err := model.UnmarshalProfile(raw)
	if err != nil {
		return s.persistFactoryDefaultProfile()
	}
	return profile, nil
}

func (s *SQLiteStore) persistFactoryDefaultProfile() (model.Profile, error) {
	profile := model.FactoryDefaultProfile()
	if err := s.SaveProfile(profile); err != nil {
		return model.Profile{}, fmt.Errorf("persist factory default profile: %w", err)
	}
	return profile, nil
}

// SaveProfile persists the plant profile as a single atomic write.
func (s *SQLiteStore) SaveProfile(p model.Profile) error {
	raw, err := p.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	return s.put(keyProfile, raw)
}

// LoadLinkCredentials loads the persisted link credentials. The bool result
// is false with a nil error when the key is absent, distinguishing "no
// credentials configured" from a successfully decoded empty-password pair.
// A stored blob of the wrong size is reported as xerrors.ErrSizeMismatch.
func (s *SQLiteStore) LoadLinkCredentials() (model.LinkCredentials, bool, error) {
	raw, ok, err := s.get(keyCredentials)
	if err != nil {
		return model.LinkCredentials{}, false, err
	}
	if !ok {
		return model.LinkCredentials{}, false, nil
	}
	if len(raw) != model.CredentialsWireSize {
		return model.LinkCredentials{}, false, xerrors.ErrSizeMismatch
	}
	creds, err := model.UnmarshalLinkCredentials(raw)
	if err != nil {
		return model.LinkCredentials{}, false, nil
	}
	return creds, true, nil
}

// SaveLinkCredentials persists the link credentials as a single atomic write.
func (s *SQLiteStore) SaveLinkCredentials(c model.LinkCredentials) error {
	raw, err := c.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	return s.put(keyCredentials, raw)
}

// LoadTimezone loads the persisted timezone string, defaulting to UTC if unset.
func (s *SQLiteStore) LoadTimezone() (string, error) {
	raw, ok, err := s.get(keyTimezone)
	if err != nil {
		return "", err
	}
	if !ok {
		return "UTC", nil
	}
	return string(raw), nil
}

// SaveTimezone persists the timezone string.
func (s *SQLiteStore) SaveTimezone(tz string) error {
	return s.put(keyTimezone, []byte(tz))
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) get(key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRow("SELECT value FROM kv_config WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query %s: %w", key, err)
	}
	return value, true, nil
}

// put is a single INSERT OR REPLACE, which SQLite executes atomically; no
// caller can observe a partially written value.
func (s *SQLiteStore) put(key string, value []byte) error {
	_, err := s.db.Exec("INSERT OR REPLACE INTO kv_config (key, value) VALUES (?, ?)", key, value)
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
