package store

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"switchboard/internal/types"
)

var (
	bucketProfiles    = []byte("profiles")
	bucketProfileMeta = []byte("profile_meta")
	bucketRateLimits  = []byte("rate_limits")
	bucketSettings    = []byte("settings")

	keyActiveProfile = []byte("active_profile")
	keyAutoSwitch    = []byte("auto_switch")
)

const rateLimitKeySep = "\x00"

type bboltRepository struct {
	db         *bolt.DB
	profiles   ProfileStore
	rateLimits RateLimitStore
	settings   SettingsStore
}

func NewBboltRepository(path string) (Repository, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("repository db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	profiles := &bboltProfileStore{db: db}
	if err := profiles.ensureDefault(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &bboltRepository{
		db:         db,
		profiles:   profiles,
		rateLimits: &bboltRateLimitStore{db: db},
		settings:   &bboltSettingsStore{db: db},
	}, nil
}

func (r *bboltRepository) Profiles() ProfileStore     { return r.profiles }
func (r *bboltRepository) RateLimits() RateLimitStore { return r.rateLimits }
func (r *bboltRepository) Settings() SettingsStore    { return r.settings }

func (r *bboltRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func initSchema(db *bolt.DB) error {
	return db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketProfiles, bucketProfileMeta, bucketRateLimits, bucketSettings} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
}

type bboltProfileStore struct {
	db *bolt.DB
	mu sync.Mutex
}

func (s *bboltProfileStore) ensureDefault() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketProfiles)
		if b == nil {
			return errors.New("profiles bucket missing")
		}
		key := []byte(types.DefaultProfileID)
		if b.Get(key) != nil {
			return nil
		}
		def := &types.Profile{
			ID:        types.DefaultProfileID,
			Name:      "Default",
			IsDefault: true,
			CreatedAt: time.Now().UTC(),
		}
		raw, err := json.Marshal(def)
		if err != nil {
			return err
		}
		return b.Put(key, raw)
	})
}

func (s *bboltProfileStore) List(ctx context.Context) ([]*types.Profile, error) {
	out := make([]*types.Profile, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketProfiles)
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			var p types.Profile
			if err := json.Unmarshal(v, &p); err != nil {
				return err
			}
			out = append(out, types.CloneProfile(&p))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sortProfiles(out)
	return out, nil
}

// sortProfiles puts the default first, then by creation time.
func sortProfiles(profiles []*types.Profile) {
	sort.SliceStable(profiles, func(i, j int) bool {
		a, b := profiles[i], profiles[j]
		if a.IsDefault != b.IsDefault {
			return a.IsDefault
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

func (s *bboltProfileStore) Get(ctx context.Context, id string) (*types.Profile, bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, false, nil
	}
	var out *types.Profile
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketProfiles)
		if b == nil {
			return nil
		}
		raw := b.Get([]byte(id))
		if len(raw) == 0 {
			return nil
		}
		var p types.Profile
		if err := json.Unmarshal(raw, &p); err != nil {
			return err
		}
		out = types.CloneProfile(&p)
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, out != nil, nil
}

func (s *bboltProfileStore) Add(ctx context.Context, profile *types.Profile) (*types.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if profile == nil {
		return nil, errors.New("profile is required")
	}
	in := types.CloneProfile(profile)
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now().UTC()
	}
	var stored *types.Profile
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketProfiles)
		if b == nil {
			return errors.New("profiles bucket missing")
		}
		if strings.TrimSpace(in.ID) == "" {
			id, err := nextProfileID(b)
			if err != nil {
				return err
			}
			in.ID = id
		}
		p, err := types.NormalizeProfile(in)
		if err != nil {
			return err
		}
		key := []byte(p.ID)
		if b.Get(key) != nil {
			return fmt.Errorf("%w: %s", ErrProfileExists, p.ID)
		}
		raw, err := json.Marshal(p)
		if err != nil {
			return err
		}
		if err := b.Put(key, raw); err != nil {
			return err
		}
		stored = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return types.CloneProfile(stored), nil
}

func nextProfileID(b *bolt.Bucket) (string, error) {
	for i := 0; i < 1000; i++ {
		seq, err := b.NextSequence()
		if err != nil {
			return "", err
		}
		id := fmt.Sprintf("profile-%d", seq)
		if b.Get([]byte(id)) == nil {
			return id, nil
		}
	}
	return "", errors.New("unable to allocate profile id")
}

func (s *bboltProfileStore) Update(ctx context.Context, profile *types.Profile) (*types.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := types.NormalizeProfile(profile)
	if err != nil {
		return nil, err
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketProfiles)
		if b == nil {
			return errors.New("profiles bucket missing")
		}
		key := []byte(p.ID)
		existing := b.Get(key)
		if existing == nil {
			return ErrProfileNotFound
		}
		var prev types.Profile
		if err := json.Unmarshal(existing, &prev); err != nil {
			return err
		}
		if prev.IsDefault != p.IsDefault {
			return fmt.Errorf("%w: default flag cannot be changed", ErrDefaultImmutable)
		}
		p.CreatedAt = prev.CreatedAt
		raw, err := json.Marshal(p)
		if err != nil {
			return err
		}
		return b.Put(key, raw)
	})
	if err != nil {
		return nil, err
	}
	return types.CloneProfile(p), nil
}

func (s *bboltProfileStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id = strings.TrimSpace(id)
	if id == "" {
		return ErrProfileNotFound
	}
	if id == types.DefaultProfileID {
		return fmt.Errorf("%w: the default profile cannot be deleted", ErrDefaultImmutable)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketProfiles)
		if b == nil {
			return errors.New("profiles bucket missing")
		}
		key := []byte(id)
		if b.Get(key) == nil {
			return ErrProfileNotFound
		}
		if err := b.Delete(key); err != nil {
			return err
		}
		meta := tx.Bucket(bucketProfileMeta)
		if meta != nil && string(meta.Get(keyActiveProfile)) == id {
			return meta.Delete(keyActiveProfile)
		}
		return nil
	})
}

// GetActive returns the profile marked current, falling back to the default
// when unset or since deleted.
func (s *bboltProfileStore) GetActive(ctx context.Context) (*types.Profile, error) {
	var out *types.Profile
	err := s.db.View(func(tx *bolt.Tx) error {
		profiles := tx.Bucket(bucketProfiles)
		if profiles == nil {
			return errors.New("profiles bucket missing")
		}
		id := types.DefaultProfileID
		if meta := tx.Bucket(bucketProfileMeta); meta != nil {
			if active := meta.Get(keyActiveProfile); len(active) > 0 {
				id = string(active)
			}
		}
		raw := profiles.Get([]byte(id))
		if len(raw) == 0 {
			raw = profiles.Get([]byte(types.DefaultProfileID))
		}
		if len(raw) == 0 {
			return errors.New("default profile missing")
		}
		var p types.Profile
		if err := json.Unmarshal(raw, &p); err != nil {
			return err
		}
		out = types.CloneProfile(&p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *bboltProfileStore) SetActive(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id = strings.TrimSpace(id)
	if id == "" {
		return ErrProfileNotFound
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		profiles := tx.Bucket(bucketProfiles)
		if profiles == nil || profiles.Get([]byte(id)) == nil {
			return ErrProfileNotFound
		}
		meta := tx.Bucket(bucketProfileMeta)
		if meta == nil {
			return errors.New("profile meta bucket missing")
		}
		return meta.Put(keyActiveProfile, []byte(id))
	})
}

// SetToken stores a captured token. Unknown ids report false rather than an
// error so detection handlers can treat the result as advisory.
func (s *bboltProfileStore) SetToken(ctx context.Context, id, token, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id = strings.TrimSpace(id)
	token = strings.TrimSpace(token)
	if id == "" || token == "" {
		return false, nil
	}
	if id == types.DefaultProfileID {
		return false, fmt.Errorf("%w: the default profile reads ambient credentials", ErrDefaultImmutable)
	}
	updated := false
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketProfiles)
		if b == nil {
			return errors.New("profiles bucket missing")
		}
		key := []byte(id)
		raw := b.Get(key)
		if len(raw) == 0 {
			return nil
		}
		var p types.Profile
		if err := json.Unmarshal(raw, &p); err != nil {
			return err
		}
		now := time.Now().UTC()
		p.OAuthToken = token
		if strings.TrimSpace(email) != "" {
			p.Email = strings.TrimSpace(email)
		}
		p.LastUsedAt = &now
		next, err := json.Marshal(&p)
		if err != nil {
			return err
		}
		if err := b.Put(key, next); err != nil {
			return err
		}
		updated = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return updated, nil
}

func (s *bboltProfileStore) GetToken(ctx context.Context, id string) (string, bool, error) {
	p, ok, err := s.Get(ctx, id)
	if err != nil || !ok {
		return "", false, err
	}
	token := strings.TrimSpace(p.OAuthToken)
	return token, token != "", nil
}

func (s *bboltProfileStore) MarkUsed(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketProfiles)
		if b == nil {
			return errors.New("profiles bucket missing")
		}
		key := []byte(id)
		raw := b.Get(key)
		if len(raw) == 0 {
			return nil
		}
		var p types.Profile
		if err := json.Unmarshal(raw, &p); err != nil {
			return err
		}
		now := time.Now().UTC()
		p.LastUsedAt = &now
		next, err := json.Marshal(&p)
		if err != nil {
			return err
		}
		return b.Put(key, next)
	})
}

type bboltRateLimitStore struct {
	db *bolt.DB
	mu sync.Mutex
}

// Record appends a rate-limit observation. It succeeds for any well-formed
// profile id, whether or not such a profile exists.
func (s *bboltRateLimitStore) Record(ctx context.Context, profileID, resetTime string) (*types.RateLimitRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profileID = strings.TrimSpace(profileID)
	if profileID == "" || strings.Contains(profileID, rateLimitKeySep) {
		return nil, errors.New("profile id is required")
	}
	record := &types.RateLimitRecord{
		ProfileID:  profileID,
		ResetTime:  strings.TrimSpace(resetTime),
		RecordedAt: time.Now().UTC(),
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRateLimits)
		if b == nil {
			return errors.New("rate limits bucket missing")
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		raw, err := json.Marshal(record)
		if err != nil {
			return err
		}
		return b.Put(rateLimitKey(profileID, seq), raw)
	})
	if err != nil {
		return nil, err
	}
	return types.CloneRateLimitRecord(record), nil
}

func rateLimitKey(profileID string, seq uint64) []byte {
	key := make([]byte, 0, len(profileID)+1+8)
	key = append(key, profileID...)
	key = append(key, rateLimitKeySep...)
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], seq)
	return append(key, buf[:]...)
}

func (s *bboltRateLimitStore) ListForProfile(ctx context.Context, profileID string) ([]*types.RateLimitRecord, error) {
	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		return []*types.RateLimitRecord{}, nil
	}
	prefix := []byte(profileID + rateLimitKeySep)
	out := make([]*types.RateLimitRecord, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRateLimits)
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var record types.RateLimitRecord
			if err := json.Unmarshal(v, &record); err != nil {
				return err
			}
			out = append(out, &record)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *bboltRateLimitStore) LatestForProfile(ctx context.Context, profileID string) (*types.RateLimitRecord, bool, error) {
	records, err := s.ListForProfile(ctx, profileID)
	if err != nil {
		return nil, false, err
	}
	if len(records) == 0 {
		return nil, false, nil
	}
	return records[len(records)-1], true, nil
}

type bboltSettingsStore struct {
	db *bolt.DB
	mu sync.Mutex
}

func (s *bboltSettingsStore) AutoSwitch(ctx context.Context) (types.AutoSwitchSettings, error) {
	settings := types.DefaultAutoSwitchSettings()
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSettings)
		if b == nil {
			return nil
		}
		raw := b.Get(keyAutoSwitch)
		if len(raw) == 0 {
			return nil
		}
		return json.Unmarshal(raw, &settings)
	})
	if err != nil {
		return types.DefaultAutoSwitchSettings(), err
	}
	return settings, nil
}

func (s *bboltSettingsStore) SetAutoSwitch(ctx context.Context, settings types.AutoSwitchSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSettings)
		if b == nil {
			return errors.New("settings bucket missing")
		}
		return b.Put(keyAutoSwitch, raw)
	})
}
