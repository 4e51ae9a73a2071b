// Package frontier persists, per feed, the next sequence number that has not
// yet been delivered to the UI in order.
//
// Values live under frontier/<fid-hex> as an 8-byte big-endian integer and
// are written with a WAL sync on every Set. Reads are lazy and cached; an
// unseen feed starts at 1.
package frontier

import (
	"context"
	"encoding/binary"
	"errors"
	"sync"

	"github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/feedstore"
	pebblestore "github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/storage/pebble"
)

var keyPrefix = []byte("frontier/")

func key(fid feedstore.FeedID) []byte {
	return append(append([]byte(nil), keyPrefix...), fid.Hex()...)
}

// Store is the sole writer of frontier entries.
type Store struct {
	db *pebblestore.DB

	// gate is held shared by every feed lock and exclusively by ResetAll.
	gate  sync.RWMutex
	mu    sync.Mutex
	cache map[feedstore.FeedID]uint64
	locks map[feedstore.FeedID]*sync.Mutex
}

// New returns a Store backed by db.
func New(db *pebblestore.DB) *Store {
	return &Store{
		db:    db,
		cache: map[feedstore.FeedID]uint64{},
		locks: map[feedstore.FeedID]*sync.Mutex{},
	}
}

// Lock serializes read-modify-persist cycles for one feed. The returned
// func releases the lock. Lock is not reentrant.
func (s *Store) Lock(fid feedstore.FeedID) func() {
	s.gate.RLock()
	s.mu.Lock()
	l, ok := s.locks[fid]
	if !ok {
		l = &sync.Mutex{}
		s.locks[fid] = l
	}
	s.mu.Unlock()
	l.Lock()
	return func() {
		l.Unlock()
		s.gate.RUnlock()
	}
}

// Get returns the next undelivered sequence for fid.
func (s *Store) Get(fid feedstore.FeedID) (uint64, error) {
	s.mu.Lock()
	if n, ok := s.cache[fid]; ok {
		s.mu.Unlock()
		return n, nil
	}
	s.mu.Unlock()

	v, err := s.db.Get(key(fid))
	n := uint64(1)
	switch {
	case errors.Is(err, pebblestore.ErrNotFound):
	case err != nil:
		return 0, err
	case len(v) == 8:
		n = binary.BigEndian.Uint64(v)
	}
	s.mu.Lock()
	if cached, ok := s.cache[fid]; ok {
		n = cached
	} else {
		s.cache[fid] = n
	}
	s.mu.Unlock()
	return n, nil
}

// Set persists next for fid before updating the cache.
func (s *Store) Set(ctx context.Context, fid feedstore.FeedID, next uint64) error {
	b := s.db.NewBatch()
	defer b.Close()
	if err := b.Set(key(fid), binary.BigEndian.AppendUint64(nil, next), nil); err != nil {
		return err
	}
	if err := s.db.CommitBatchSync(ctx, b); err != nil {
		return err
	}
	s.mu.Lock()
	s.cache[fid] = next
	s.mu.Unlock()
	return nil
}

// Reset forgets fid so that in-order delivery restarts at 1. It waits for
// any in-flight advance of fid.
func (s *Store) Reset(ctx context.Context, fid feedstore.FeedID) error {
	unlock := s.Lock(fid)
	defer unlock()
	b := s.db.NewBatch()
	defer b.Close()
	if err := b.Delete(key(fid), nil); err != nil {
		return err
	}
	if err := s.db.CommitBatchSync(ctx, b); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.cache, fid)
	s.mu.Unlock()
	return nil
}

// ResetAll forgets every feed. It waits until no feed lock is held and
// blocks new ones until the delete is durable.
func (s *Store) ResetAll(ctx context.Context) error {
	s.gate.Lock()
	defer s.gate.Unlock()
	if err := s.db.DeletePrefix(ctx, keyPrefix); err != nil {
		return err
	}
	s.mu.Lock()
	s.cache = map[feedstore.FeedID]uint64{}
	s.mu.Unlock()
	return nil
}

// List returns every persisted frontier keyed by feed hex.
func (s *Store) List() (map[string]uint64, error) {
	out := map[string]uint64{}
	err := s.db.ScanPrefix(keyPrefix, func(k, v []byte) bool {
		if len(v) == 8 {
			out[string(k[len(keyPrefix):])] = binary.BigEndian.Uint64(v)
		}
		return true
	})
	return out, err
}
