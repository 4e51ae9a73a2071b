// Package identity keeps the local ed25519 key pair whose public key is the
// bridge's own feed id.
package identity

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/feedstore"
	pebblestore "github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/storage/pebble"
)

// ErrBadSecret is returned when an imported secret is not an ed25519 seed or private key.
var ErrBadSecret = errors.New("identity: bad secret")

var secretKey = []byte("identity/seed")

// Store owns the current key pair.
type Store struct {
	db   *pebblestore.DB
	rand io.Reader

	mu   sync.RWMutex
	priv ed25519.PrivateKey
}

// Open loads the persisted identity or creates one.
func Open(ctx context.Context, db *pebblestore.DB) (*Store, error) {
	s := &Store{db: db, rand: rand.Reader}
	seed, err := db.Get(secretKey)
	switch {
	case err == nil && len(seed) == ed25519.SeedSize:
		s.priv = ed25519.NewKeyFromSeed(seed)
		return s, nil
	case err != nil && !errors.Is(err, pebblestore.ErrNotFound):
		return nil, err
	}
	if err := s.Renew(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// FeedID returns the public key as a feed id.
func (s *Store) FeedID() feedstore.FeedID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var f feedstore.FeedID
	copy(f[:], s.priv.Public().(ed25519.PublicKey))
	return f
}

// Ref renders the identity as "@<base64>.ed25519".
func (s *Store) Ref() string { return s.FeedID().String() }

// Sign signs msg with the current key.
func (s *Store) Sign(msg []byte) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ed25519.Sign(s.priv, msg)
}

// Renew replaces the identity with a freshly generated one.
func (s *Store) Renew(ctx context.Context) error {
	seed := make([]byte, ed25519.SeedSize)
	if _, err := io.ReadFull(s.rand, seed); err != nil {
		return err
	}
	return s.store(ctx, seed)
}

// Import replaces the identity with secret, which is either a 32-byte seed
// or a 64-byte private key.
func (s *Store) Import(ctx context.Context, secret []byte) error {
	switch len(secret) {
	case ed25519.SeedSize:
		return s.store(ctx, secret)
	case ed25519.PrivateKeySize:
		priv := ed25519.PrivateKey(secret)
		seed := priv.Seed()
		if !ed25519.NewKeyFromSeed(seed).Equal(priv) {
			return fmt.Errorf("%w: public half does not match seed", ErrBadSecret)
		}
		return s.store(ctx, seed)
	default:
		return fmt.Errorf("%w: %d bytes", ErrBadSecret, len(secret))
	}
}

func (s *Store) store(ctx context.Context, seed []byte) error {
	b := s.db.NewBatch()
	defer b.Close()
	if err := b.Set(secretKey, seed, nil); err != nil {
		return err
	}
	if err := s.db.CommitBatchSync(ctx, b); err != nil {
		return err
	}
	s.mu.Lock()
	s.priv = ed25519.NewKeyFromSeed(seed)
	s.mu.Unlock()
	return nil
}

// Export is the JSON document shown to the user by exportSecret.
type Export struct {
	Curve  string `json:"curve"`
	ID     string `json:"id"`
	Secret string `json:"secret"`
}

// ExportString returns the identity as an Export JSON document.
func (s *Store) ExportString() (string, error) {
	s.mu.RLock()
	seed := s.priv.Seed()
	s.mu.RUnlock()
	b, err := json.Marshal(Export{
		Curve:  "ed25519",
		ID:     s.Ref(),
		Secret: base64.StdEncoding.EncodeToString(seed),
	})
	return string(b), err
}
