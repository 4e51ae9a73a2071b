package eventlog

import (
	"context"
	"encoding/binary"
	"errors"
	"sync"

	pebblestore "github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/storage/pebble"
)

// ErrNotFound is returned when a requested entry is absent or trimmed.
var ErrNotFound = errors.New("eventlog: entry not found")

// AppendRecord represents a single appendable record.
type AppendRecord struct {
	Header  []byte
	Payload []byte
}

// Log is a named append-only log.
type Log struct {
	db   *pebblestore.DB
	name string

	mu       sync.Mutex
	lastSeq  uint64
	notifyCh chan struct{}
	onTrim   TrimHook
}

// OpenLog initializes a Log and loads the last sequence from metadata (if any).
func OpenLog(db *pebblestore.DB, name string) (*Log, error) {
	l := &Log{db: db, name: name, notifyCh: make(chan struct{}), onTrim: func(uint64, uint64) {}}
	meta, err := db.Get(KeyLogMeta(name))
	switch {
	case err == nil && len(meta) >= 8:
		l.lastSeq = binary.BigEndian.Uint64(meta[:8])
	case err != nil && !errors.Is(err, pebblestore.ErrNotFound):
		return nil, err
	}
	return l, nil
}

// Name returns the log name.
func (l *Log) Name() string { return l.name }

// LastSeq returns the highest assigned sequence, 0 for an empty log.
func (l *Log) LastSeq() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastSeq
}

// Append appends the provided records as a single atomic batch. Returns assigned seq numbers.
func (l *Log) Append(ctx context.Context, recs []AppendRecord) ([]uint64, error) {
	if len(recs) == 0 {
		return nil, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.db.NewBatch()
	defer b.Close()

	seqs := make([]uint64, len(recs))
	next := l.lastSeq
	for i, r := range recs {
		next++
		if err := b.Set(KeyLogEntry(l.name, next), EncodeRecord(r.Header, r.Payload), nil); err != nil {
			return nil, err
		}
		seqs[i] = next
	}
	var meta [8]byte
	binary.BigEndian.PutUint64(meta[:], next)
	if err := b.Set(KeyLogMeta(l.name), meta[:], nil); err != nil {
		return nil, err
	}
	if err := l.db.CommitBatch(ctx, b); err != nil {
		return nil, err
	}
	l.lastSeq = next
	close(l.notifyCh)
	l.notifyCh = make(chan struct{})
	return seqs, nil
}

// Get returns a single entry.
func (l *Log) Get(seq uint64) (Item, error) {
	raw, err := l.db.Get(KeyLogEntry(l.name, seq))
	if errors.Is(err, pebblestore.ErrNotFound) {
		return Item{}, ErrNotFound
	}
	if err != nil {
		return Item{}, err
	}
	dec, ok := DecodeRecord(raw)
	if !ok {
		return Item{}, ErrNotFound
	}
	return Item{Seq: seq, Header: dec.Header, Payload: dec.Payload}, nil
}
