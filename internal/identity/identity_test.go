package identity

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"

	pebblestore "github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/storage/pebble"
)

func openDB(t *testing.T, dir string) *pebblestore.DB {
	t.Helper()
	db, err := pebblestore.Open(pebblestore.Options{DataDir: dir, Fsync: pebblestore.FsyncModeNever})
	if err != nil {
		t.Fatalf("open pebble: %v", err)
	}
	return db
}

func TestIdentityPersists(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	db := openDB(t, dir)
	s, err := Open(ctx, db)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	id := s.FeedID()
	_ = db.Close()

	db2 := openDB(t, dir)
	defer db2.Close()
	s2, err := Open(ctx, db2)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if s2.FeedID() != id {
		t.Fatalf("identity changed across restart")
	}
}

func TestImportExportRoundTrip(t *testing.T) {
	db := openDB(t, t.TempDir())
	defer db.Close()
	ctx := context.Background()
	s, _ := Open(ctx, db)

	seed := bytes.Repeat([]byte{7}, ed25519.SeedSize)
	if err := s.Import(ctx, seed); err != nil {
		t.Fatalf("import seed: %v", err)
	}
	want := ed25519.NewKeyFromSeed(seed).Public().(ed25519.PublicKey)
	if got := s.FeedID(); !bytes.Equal(got[:], want) {
		t.Fatalf("feed id does not match imported key")
	}
	out, err := s.ExportString()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	var exp Export
	if err := json.Unmarshal([]byte(out), &exp); err != nil {
		t.Fatalf("export json: %v", err)
	}
	if exp.Secret != base64.StdEncoding.EncodeToString(seed) || exp.ID != s.Ref() {
		t.Fatalf("export: %+v", exp)
	}
	sig := s.Sign([]byte("msg"))
	if !ed25519.Verify(want, []byte("msg"), sig) {
		t.Fatalf("signature does not verify")
	}

	priv := ed25519.NewKeyFromSeed(bytes.Repeat([]byte{9}, ed25519.SeedSize))
	if err := s.Import(ctx, priv); err != nil {
		t.Fatalf("import private key: %v", err)
	}
}

func TestImportRejectsBadSecret(t *testing.T) {
	db := openDB(t, t.TempDir())
	defer db.Close()
	ctx := context.Background()
	s, _ := Open(ctx, db)
	before := s.FeedID()
	if err := s.Import(ctx, []byte("short")); !errors.Is(err, ErrBadSecret) {
		t.Fatalf("expected ErrBadSecret, got %v", err)
	}
	bad := append(bytes.Repeat([]byte{1}, 32), bytes.Repeat([]byte{2}, 32)...)
	if err := s.Import(ctx, bad); !errors.Is(err, ErrBadSecret) {
		t.Fatalf("expected mismatch error, got %v", err)
	}
	if s.FeedID() != before {
		t.Fatalf("failed import replaced identity")
	}
}
