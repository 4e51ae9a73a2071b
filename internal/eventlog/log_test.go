package eventlog

import (
	"context"
	"errors"
	"testing"

	pebblestore "github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/storage/pebble"
)

func openTestDB(t *testing.T, dir string) *pebblestore.DB {
	t.Helper()
	db, err := pebblestore.Open(pebblestore.Options{DataDir: dir, Fsync: pebblestore.FsyncModeAlways})
	if err != nil {
		t.Fatalf("open pebble: %v", err)
	}
	return db
}

func newTestLog(t *testing.T) *Log {
	t.Helper()
	db := openTestDB(t, t.TempDir())
	t.Cleanup(func() { _ = db.Close() })
	l, err := OpenLog(db, "ui")
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	return l
}

func appendN(t *testing.T, l *Log, payloads ...string) []uint64 {
	t.Helper()
	recs := make([]AppendRecord, len(payloads))
	for i, p := range payloads {
		recs[i] = AppendRecord{Header: []byte("h"), Payload: []byte(p)}
	}
	seqs, err := l.Append(context.Background(), recs)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	return seqs
}

func TestAppendAssignsSequential(t *testing.T) {
	l := newTestLog(t)
	seqs := appendN(t, l, "p1", "p2")
	if len(seqs) != 2 || seqs[0] != 1 || seqs[1] != 2 {
		t.Fatalf("unexpected seqs: %v", seqs)
	}
	if l.LastSeq() != 2 {
		t.Fatalf("last seq: %d", l.LastSeq())
	}
	it, err := l.Get(2)
	if err != nil || string(it.Payload) != "p2" {
		t.Fatalf("get: %+v %v", it, err)
	}
	if _, err := l.Get(9); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAppendDurableAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	db := openTestDB(t, dir)
	l, err := OpenLog(db, "ui")
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	seqs := appendN(t, l, "x")
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	db2 := openTestDB(t, dir)
	t.Cleanup(func() { _ = db2.Close() })
	l2, err := OpenLog(db2, "ui")
	if err != nil {
		t.Fatalf("open log2: %v", err)
	}
	seqs2 := appendN(t, l2, "y")
	if seqs2[0] != seqs[0]+1 {
		t.Fatalf("expected next seq after previous: prev=%d next=%d", seqs[0], seqs2[0])
	}
}

func TestLogsAreIsolatedByName(t *testing.T) {
	db := openTestDB(t, t.TempDir())
	t.Cleanup(func() { _ = db.Close() })
	a, _ := OpenLog(db, "a")
	b, _ := OpenLog(db, "b")
	appendN(t, a, "1", "2")
	appendN(t, b, "3")
	items, _ := b.Read(ReadOptions{})
	if len(items) != 1 || string(items[0].Payload) != "3" {
		t.Fatalf("cross-log read: %+v", items)
	}
}
