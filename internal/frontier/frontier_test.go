package frontier

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/feedstore"
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

func fid(b byte) feedstore.FeedID {
	var f feedstore.FeedID
	f[0] = b
	return f
}

func TestDefaultIsOne(t *testing.T) {
	db := openDB(t, t.TempDir())
	defer db.Close()
	s := New(db)
	if n, err := s.Get(fid(1)); err != nil || n != 1 {
		t.Fatalf("default: %d %v", n, err)
	}
}

func TestSetSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	db := openDB(t, dir)
	s := New(db)
	if err := s.Set(ctx, fid(1), 4); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, fid(2), 2); err != nil {
		t.Fatalf("set: %v", err)
	}
	_ = db.Close()

	db2 := openDB(t, dir)
	defer db2.Close()
	s2 := New(db2)
	if n, _ := s2.Get(fid(1)); n != 4 {
		t.Fatalf("after restart: %d", n)
	}
	all, err := s2.List()
	if err != nil || len(all) != 2 || all[fid(2).Hex()] != 2 {
		t.Fatalf("list: %v %v", all, err)
	}
}

func TestResetAndResetAll(t *testing.T) {
	db := openDB(t, t.TempDir())
	defer db.Close()
	ctx := context.Background()
	s := New(db)
	_ = s.Set(ctx, fid(1), 5)
	_ = s.Set(ctx, fid(2), 6)
	if err := s.Reset(ctx, fid(1)); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if n, _ := s.Get(fid(1)); n != 1 {
		t.Fatalf("reset feed: %d", n)
	}
	if err := s.ResetAll(ctx); err != nil {
		t.Fatalf("reset all: %v", err)
	}
	if n, _ := s.Get(fid(2)); n != 1 {
		t.Fatalf("reset all: %d", n)
	}
}

func TestLockSerializesPerFeed(t *testing.T) {
	db := openDB(t, t.TempDir())
	defer db.Close()
	ctx := context.Background()
	s := New(db)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := s.Lock(fid(9))
			defer unlock()
			n, _ := s.Get(fid(9))
			_ = s.Set(ctx, fid(9), n+1)
		}()
	}
	wg.Wait()
	if n, _ := s.Get(fid(9)); n != 21 {
		t.Fatalf("lost update: %d", n)
	}
}

// resetDuringAdvance holds the feed lock like an in-flight advance, starts
// reset, writes the advance's Set and releases. The reset must land last.
func resetDuringAdvance(t *testing.T, reset func(*Store) error) {
	t.Helper()
	dir := t.TempDir()
	db := openDB(t, dir)
	ctx := context.Background()
	s := New(db)
	f := fid(3)

	unlock := s.Lock(f)
	done := make(chan error, 1)
	go func() { done <- reset(s) }()
	select {
	case err := <-done:
		t.Fatalf("reset finished while the feed was locked: %v", err)
	case <-time.After(50 * time.Millisecond):
	}
	if err := s.Set(ctx, f, 2); err != nil {
		t.Fatalf("set: %v", err)
	}
	unlock()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("reset: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("reset did not complete")
	}
	if n, _ := s.Get(f); n != 1 {
		t.Fatalf("frontier after reset: %d", n)
	}
	_ = db.Close()

	db2 := openDB(t, dir)
	defer db2.Close()
	if n, _ := New(db2).Get(f); n != 1 {
		t.Fatalf("persisted frontier after reset: %d", n)
	}
}

func TestResetWaitsForAdvance(t *testing.T) {
	resetDuringAdvance(t, func(s *Store) error { return s.Reset(context.Background(), fid(3)) })
}

func TestResetAllWaitsForAdvance(t *testing.T) {
	resetDuringAdvance(t, func(s *Store) error { return s.ResetAll(context.Background()) })
}
