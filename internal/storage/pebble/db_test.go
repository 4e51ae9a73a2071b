package pebblestore

import (
	"context"
	"errors"
	"testing"
	"time"
)

type testMetrics struct {
	read         int
	batchCommits int
	batchBytes   int
}

func (m *testMetrics) ObserveRead(d time.Duration, bytes int) { m.read += bytes }
func (m *testMetrics) ObserveBatchCommit(d time.Duration, bytes int) {
	m.batchCommits++
	m.batchBytes += bytes
}

func newTestDB(t *testing.T) (*DB, *testMetrics) {
	t.Helper()
	metrics := &testMetrics{}
	db, err := Open(Options{
		DataDir:       t.TempDir(),
		Fsync:         FsyncModeInterval,
		FsyncInterval: 2 * time.Millisecond,
		Metrics:       metrics,
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, metrics
}

func TestCRUD(t *testing.T) {
	db, metrics := newTestDB(t)
	if err := db.Set([]byte("k1"), []byte("v1")); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := db.Get([]byte("k1"))
	if err != nil || string(got) != "v1" {
		t.Fatalf("get: %q %v", got, err)
	}
	if metrics.read == 0 {
		t.Fatalf("expected read metrics to record bytes")
	}
	if ok, _ := db.Has([]byte("k1")); !ok {
		t.Fatalf("expected has")
	}
	if err := db.Delete([]byte("k1")); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := db.Get([]byte("k1")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestBatchCommitSync(t *testing.T) {
	db, metrics := newTestDB(t)
	b := db.NewBatch()
	_ = b.Set([]byte("a"), []byte("1"), nil)
	_ = b.Set([]byte("b"), []byte("2"), nil)
	if err := db.CommitBatchSync(context.Background(), b); err != nil {
		t.Fatalf("commit: %v", err)
	}
	b.Close()
	if metrics.batchCommits != 1 || metrics.batchBytes <= 0 {
		t.Fatalf("metrics: %+v", metrics)
	}
}

func TestScanAndDeletePrefix(t *testing.T) {
	db, _ := newTestDB(t)
	for _, k := range []string{"f/1", "f/2", "f/3", "g/1"} {
		if err := db.Set([]byte(k), []byte(k)); err != nil {
			t.Fatalf("set: %v", err)
		}
	}
	var seen []string
	if err := db.ScanPrefix([]byte("f/"), func(k, _ []byte) bool {
		seen = append(seen, string(k))
		return true
	}); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(seen) != 3 || seen[0] != "f/1" || seen[2] != "f/3" {
		t.Fatalf("scan order: %v", seen)
	}
	if err := db.DeletePrefix(context.Background(), []byte("f/")); err != nil {
		t.Fatalf("delete prefix: %v", err)
	}
	n := 0
	_ = db.ScanPrefix([]byte("f/"), func(_, _ []byte) bool { n++; return true })
	if n != 0 {
		t.Fatalf("expected empty prefix, got %d", n)
	}
	if ok, _ := db.Has([]byte("g/1")); !ok {
		t.Fatalf("sibling prefix removed")
	}
}

func TestSnapshotConsistency(t *testing.T) {
	db, _ := newTestDB(t)
	key := []byte("k2")
	if err := db.Set(key, []byte("old")); err != nil {
		t.Fatalf("set: %v", err)
	}
	snap := db.NewSnapshot()
	defer snap.Close()
	if err := db.Set(key, []byte("new")); err != nil {
		t.Fatalf("set: %v", err)
	}
	valOld, closer, err := snap.Get(key)
	if err != nil {
		t.Fatalf("snap get: %v", err)
	}
	if string(valOld) != "old" {
		t.Fatalf("snapshot saw %q want %q", valOld, "old")
	}
	closer.Close()
}

func TestParseFsync(t *testing.T) {
	for in, want := range map[string]FsyncMode{"": FsyncModeAlways, "Interval": FsyncModeInterval, "never": FsyncModeNever} {
		got, err := ParseFsync(in)
		if err != nil || got != want {
			t.Fatalf("%q: got %v %v", in, got, err)
		}
	}
	if _, err := ParseFsync("sometimes"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestPrefixEnd(t *testing.T) {
	if string(PrefixEnd([]byte("ab"))) != "ac" {
		t.Fatalf("prefix end")
	}
	if PrefixEnd([]byte{0xff, 0xff}) != nil {
		t.Fatalf("all-ff prefix has no end")
	}
}
