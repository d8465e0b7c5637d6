package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// IdentityKey is the fixed namespace key the identity record lives under
const IdentityKey = "openup_user"

// IdentityRecordVersion is the current on-disk schema version
const IdentityRecordVersion = 1

// IdentityStore persists the current identity across restarts. Load never
// fails: a missing or corrupt record is reported as absent.
type IdentityStore interface {
	Load() (*Identity, bool)
	Save(identity *Identity) error
	Clear() error
}

// identityRecord is the versioned envelope written to storage
type identityRecord struct {
	Version  int       `json:"version"`
	Identity *Identity `json:"identity"`
}

// EncodeIdentity serializes an identity into a versioned record
func EncodeIdentity(identity *Identity) ([]byte, error) {
	if err := identity.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(identityRecord{Version: IdentityRecordVersion, Identity: identity})
}

// DecodeIdentity parses a stored record. Unversioned records in the legacy
// flat shape are accepted when every field validates.
func DecodeIdentity(data []byte) (*Identity, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("malformed identity record: %w", err)
	}

	var identity *Identity
	if _, versioned := probe["version"]; versioned {
		var rec identityRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("malformed identity record: %w", err)
		}
		if rec.Version != IdentityRecordVersion {
			return nil, fmt.Errorf("unsupported identity record version %d", rec.Version)
		}
		identity = rec.Identity
	} else {
		var legacy Identity
		if err := json.Unmarshal(data, &legacy); err != nil {
			return nil, fmt.Errorf("malformed legacy identity record: %w", err)
		}
		identity = &legacy
	}

	if err := identity.Validate(); err != nil {
		return nil, err
	}
	return identity, nil
}

// FileIdentityStore keeps the identity record in a JSON file
type FileIdentityStore struct {
	path string
}

// NewFileIdentityStore creates a store writing to dir/openup_user.json
func NewFileIdentityStore(dir string) *FileIdentityStore {
	return &FileIdentityStore{path: filepath.Join(dir, IdentityKey+".json")}
}

// Path returns the backing file path
func (s *FileIdentityStore) Path() string {
	return s.path
}

// Load reads the identity, treating any failure as "no saved identity"
func (s *FileIdentityStore) Load() (*Identity, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			LogWarn("%v", &PersistenceError{Path: s.path, Op: "read", Err: err})
		}
		return nil, false
	}

	identity, err := DecodeIdentity(data)
	if err != nil {
		LogWarn("Ignoring stored identity: %v", &PersistenceError{Path: s.path, Op: "parse", Err: err})
		return nil, false
	}
	return identity, true
}

// Save writes the identity atomically via a temp file and rename
func (s *FileIdentityStore) Save(identity *Identity) error {
	data, err := EncodeIdentity(identity)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return &PersistenceError{Path: s.path, Op: "write", Err: err}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return &PersistenceError{Path: tmp, Op: "write", Err: err}
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return &PersistenceError{Path: s.path, Op: "write", Err: err}
	}
	return nil
}

// Clear removes the identity record; clearing an empty store is not an error
func (s *FileIdentityStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &PersistenceError{Path: s.path, Op: "delete", Err: err}
	}
	return nil
}

// MemoryIdentityStore keeps the identity in process memory
type MemoryIdentityStore struct {
	mu       sync.Mutex
	identity *Identity
}

// NewMemoryIdentityStore creates an empty in-memory store
func NewMemoryIdentityStore() *MemoryIdentityStore {
	return &MemoryIdentityStore{}
}

// Load returns a copy of the stored identity
func (s *MemoryIdentityStore) Load() (*Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return nil, false
	}
	cp := *s.identity
	return &cp, true
}

// Save stores a copy of the identity
func (s *MemoryIdentityStore) Save(identity *Identity) error {
	if err := identity.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *identity
	s.identity = &cp
	return nil
}

// Clear forgets the stored identity
func (s *MemoryIdentityStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = nil
	return nil
}

// NewIdentityStore builds the store selected by cfg.StoreBackend. The returned
// closer releases any underlying resources.
func NewIdentityStore(cfg *Config) (IdentityStore, func() error, error) {
	noop := func() error { return nil }
	switch cfg.StoreBackend {
	case "", StoreFile:
		return NewFileIdentityStore(cfg.StateDir), noop, nil
	case StoreSQLite:
		store, err := OpenSQLiteIdentityStore(filepath.Join(cfg.StateDir, "openup.db"))
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case StoreMemory:
		return NewMemoryIdentityStore(), noop, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store backend: %s (supported: %s, %s, %s)", cfg.StoreBackend, StoreFile, StoreSQLite, StoreMemory)
	}
}
