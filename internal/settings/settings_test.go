package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/assert/v2"

	pebblestore "github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/storage/pebble"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := pebblestore.Open(pebblestore.Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeNever})
	if err != nil {
		t.Fatalf("open pebble: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return New(db, map[string]string{"ble_enabled": "true", "websocket_url": ""})
}

func TestDefaultsAndOverrides(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	v, ok := s.Get("ble_enabled")
	assert.Equal(t, ok, true)
	assert.Equal(t, v, "true")

	assert.Equal(t, s.Set(ctx, "ble_enabled", "false"), nil)
	assert.Equal(t, s.Set(ctx, "websocket_url", "ws://relay:8080"), nil)
	snap, err := s.Snapshot()
	assert.Equal(t, err, nil)
	assert.Equal(t, snap["ble_enabled"], false)
	assert.Equal(t, snap["websocket_url"], "ws://relay:8080")

	keys, _ := s.Keys()
	assert.Equal(t, keys, []string{"ble_enabled", "websocket_url"})

	assert.Equal(t, s.ResetToDefault(ctx), nil)
	v, _ = s.Get("ble_enabled")
	assert.Equal(t, v, "true")
}

func TestSetRejectsEmptyKey(t *testing.T) {
	s := newTestStore(t)
	if err := s.Set(context.Background(), "", "x"); !errors.Is(err, ErrEmptyKey) {
		t.Fatalf("expected ErrEmptyKey, got %v", err)
	}
}
