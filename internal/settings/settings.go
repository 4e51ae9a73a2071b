// Package settings stores the user-facing key/value settings the UI reads
// with settings:get and writes with settings:set.
package settings

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"

	pebblestore "github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/storage/pebble"
)

// ErrEmptyKey is returned by Set for an empty key.
var ErrEmptyKey = errors.New("settings: empty key")

var keyPrefix = []byte("settings/")

// Store overlays persisted values on a set of defaults.
type Store struct {
	db       *pebblestore.DB
	defaults map[string]string

	mu sync.Mutex
}

// New returns a Store. defaults is copied.
func New(db *pebblestore.DB, defaults map[string]string) *Store {
	d := make(map[string]string, len(defaults))
	for k, v := range defaults {
		d[k] = v
	}
	return &Store{db: db, defaults: d}
}

func key(k string) []byte { return append(append([]byte(nil), keyPrefix...), k...) }

// Get returns the effective value of k.
func (s *Store) Get(k string) (string, bool) {
	v, err := s.db.Get(key(k))
	if err == nil {
		return string(v), true
	}
	d, ok := s.defaults[k]
	return d, ok
}

// Set persists k=v.
func (s *Store) Set(ctx context.Context, k, v string) error {
	if k == "" {
		return ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.db.NewBatch()
	defer b.Close()
	if err := b.Set(key(k), []byte(v), nil); err != nil {
		return err
	}
	return s.db.CommitBatch(ctx, b)
}

// ResetToDefault drops every persisted value.
func (s *Store) ResetToDefault(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.DeletePrefix(ctx, keyPrefix)
}

// All returns the effective settings as strings.
func (s *Store) All() (map[string]string, error) {
	out := make(map[string]string, len(s.defaults))
	for k, v := range s.defaults {
		out[k] = v
	}
	err := s.db.ScanPrefix(keyPrefix, func(k, v []byte) bool {
		out[string(k[len(keyPrefix):])] = string(v)
		return true
	})
	return out, err
}

// Snapshot returns the effective settings for the UI, with "true"/"false"
// rendered as booleans.
func (s *Store) Snapshot() (map[string]any, error) {
	all, err := s.All()
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(all))
	for k, v := range all {
		if b, err := strconv.ParseBool(v); err == nil && (v == "true" || v == "false") {
			out[k] = b
			continue
		}
		out[k] = v
	}
	return out, nil
}

// Keys lists effective setting names, sorted.
func (s *Store) Keys() ([]string, error) {
	all, err := s.All()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
