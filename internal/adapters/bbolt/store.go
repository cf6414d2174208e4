// Package bbolt implements the ports.Storage interface using bbolt (embedded B+ tree).
// The "corpus" bucket holds the cached scheme snapshot; the "user" bucket holds
// the eligibility profile and settings as JSON. Writes are transactional, so a
// crash mid-write cannot corrupt previously committed data.
package bbolt

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/corey/sahayak/internal/ports"
	bolt "go.etcd.io/bbolt"
)

// DefaultTTL is how long a cached corpus snapshot stays fresh.
const DefaultTTL = 24 * time.Hour

// Bucket keys
var (
	bucketCorpus = []byte("corpus")
	bucketUser   = []byte("user")
	keySnapshot  = []byte("snapshot")
	keyProfile   = []byte("profile")
	keySettings  = []byte("settings")
)

// Store implements ports.Storage backed by bbolt.
type Store struct {
	db  *bolt.DB
	ttl time.Duration
	now func() time.Time
}

var _ ports.Storage = (*Store)(nil)

// NewStore opens (or creates) a bbolt database at the given path. Snapshots
// older than ttl are treated as absent; ttl <= 0 keeps them forever.
func NewStore(path string, ttl time.Duration) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	return &Store{db: db, ttl: ttl, now: time.Now}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveCorpus persists a corpus snapshot, replacing any prior one. A zero
// LoadedAt is stamped with the current time.
func (s *Store) SaveCorpus(snap *ports.CorpusSnapshot) error {
	if snap == nil {
		return fmt.Errorf("nil corpus snapshot")
	}
	if snap.LoadedAt == 0 {
		stamped := *snap
		stamped.LoadedAt = s.now().Unix()
		snap = &stamped
	}

	data, err := encodeSnapshot(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketCorpus)
		if err != nil {
			return err
		}
		return b.Put(keySnapshot, data)
	})
}

// LoadCorpus retrieves the cached snapshot. Returns nil, nil if none exists.
// An expired snapshot is deleted and reported as absent.
func (s *Store) LoadCorpus() (*ports.CorpusSnapshot, error) {
	data, err := s.get(bucketCorpus, keySnapshot)
	if err != nil || data == nil {
		return nil, err
	}

	loadedAt, err := decodeSnapshotTime(data)
	if err != nil {
		return nil, err
	}
	if s.expired(loadedAt) {
		if err := s.delete(bucketCorpus, keySnapshot); err != nil {
			return nil, fmt.Errorf("drop expired snapshot: %w", err)
		}
		return nil, nil
	}
	return decodeSnapshot(data)
}

func (s *Store) expired(loadedAt int64) bool {
	if s.ttl <= 0 {
		return false
	}
	return s.now().Sub(time.Unix(loadedAt, 0)) > s.ttl
}

// SaveProfile stores the eligibility profile after normalizing it.
func (s *Store) SaveProfile(p *ports.UserProfile) error {
	if p == nil {
		return ports.ErrInvalidProfile
	}
	n := p.Normalized()
	if !n.Valid() {
		return ports.ErrInvalidProfile
	}
	return s.putJSON(bucketUser, keyProfile, &n)
}

// LoadProfile returns the stored profile, or nil, nil when unset.
func (s *Store) LoadProfile() (*ports.UserProfile, error) {
	var p ports.UserProfile
	found, err := s.getJSON(bucketUser, keyProfile, &p)
	if err != nil || !found {
		return nil, err
	}
	return &p, nil
}

// ClearProfile removes the stored profile. Idempotent.
func (s *Store) ClearProfile() error {
	return s.delete(bucketUser, keyProfile)
}

// SaveSettings stores the selected state, eligibility mode and language.
func (s *Store) SaveSettings(st *ports.Settings) error {
	if st == nil {
		return fmt.Errorf("nil settings")
	}
	return s.putJSON(bucketUser, keySettings, st)
}

// LoadSettings returns stored settings, or a zero Settings when unset.
func (s *Store) LoadSettings() (*ports.Settings, error) {
	var st ports.Settings
	if _, err := s.getJSON(bucketUser, keySettings, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Wipe removes the corpus cache and all user data. Idempotent.
func (s *Store) Wipe() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketCorpus, bucketUser} {
			if err := tx.DeleteBucket(name); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
				return err
			}
		}
		return nil
	})
}

func (s *Store) putJSON(bucket, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucket)
		if err != nil {
			return err
		}
		return b.Put(key, data)
	})
}

func (s *Store) getJSON(bucket, key []byte, v any) (bool, error) {
	data, err := s.get(bucket, key)
	if err != nil || data == nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return true, nil
}

// get copies a value out of a read transaction (bbolt slices are only valid
// within the tx). Returns nil when the bucket or key is missing.
func (s *Store) get(bucket, key []byte) ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get(key); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	return data, err
}

func (s *Store) delete(bucket, key []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		return b.Delete(key)
	})
}
