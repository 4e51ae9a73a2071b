package eventlog

import (
	"context"
	"time"

	"github.com/cockroachdb/pebble"
)

// TrimHook observes each committed trim batch as an inclusive seq range.
type TrimHook func(minSeq, maxSeq uint64)

// SetTrimHook installs h; nil restores the no-op hook.
func (l *Log) SetTrimHook(h TrimHook) {
	if h == nil {
		h = func(uint64, uint64) {}
	}
	l.mu.Lock()
	l.onTrim = h
	l.mu.Unlock()
}

// HeaderTimestampExtractor extracts a write timestamp (ms) from a record header.
type HeaderTimestampExtractor func(header []byte) (int64, bool)

// TrimOlderThan deletes leading entries whose header timestamp is below cutoffMs.
// It stops at the first entry that is newer or carries no timestamp.
func (l *Log) TrimOlderThan(ctx context.Context, cutoffMs int64, batchLimit int, throttle time.Duration, tsx HeaderTimestampExtractor) (int, error) {
	return l.trimLeading(ctx, batchLimit, throttle, func(_ []byte, v []byte) bool {
		dec, ok := DecodeRecord(v)
		if !ok {
			return false
		}
		ms, ok := tsx(dec.Header)
		return ok && ms < cutoffMs
	})
}

// TrimToMaxBytes deletes the oldest entries until the total value bytes fit
// maxBytes. Values are counted as stored, so the budget is approximate.
func (l *Log) TrimToMaxBytes(ctx context.Context, maxBytes int64, batchLimit int, throttle time.Duration) (int, error) {
	if maxBytes < 0 {
		return 0, nil
	}
	total, err := l.totalBytes()
	if err != nil || total <= maxBytes {
		return 0, err
	}
	return l.trimLeading(ctx, batchLimit, throttle, func(_ []byte, v []byte) bool {
		if total <= maxBytes {
			return false
		}
		total -= int64(len(v))
		return true
	})
}

func (l *Log) totalBytes() (int64, error) {
	low, high := entryBounds(l.name)
	iter, err := l.db.NewIter(&pebble.IterOptions{LowerBound: low, UpperBound: high})
	if err != nil {
		return 0, err
	}
	defer iter.Close()
	var total int64
	for ok := iter.First(); ok; ok = iter.Next() {
		total += int64(len(iter.Value()))
	}
	return total, iter.Error()
}

// trimLeading deletes entries from the head of the log while pred holds,
// committing every batchLimit deletes.
func (l *Log) trimLeading(ctx context.Context, batchLimit int, throttle time.Duration, pred func(k, v []byte) bool) (int, error) {
	if batchLimit <= 0 {
		batchLimit = 1024
	}
	low, high := entryBounds(l.name)
	iter, err := l.db.NewIter(&pebble.IterOptions{LowerBound: low, UpperBound: high})
	if err != nil {
		return 0, err
	}
	defer iter.Close()

	l.mu.Lock()
	hook := l.onTrim
	l.mu.Unlock()

	deleted := 0
	ok := iter.First()
	for ok {
		b := l.db.NewBatch()
		n := 0
		var minSeq, maxSeq uint64
		for ok && n < batchLimit && pred(iter.Key(), iter.Value()) {
			seq := seqFromKey(iter.Key())
			if err := b.Delete(iter.Key(), nil); err != nil {
				b.Close()
				return deleted, err
			}
			if n == 0 {
				minSeq = seq
			}
			maxSeq = seq
			n++
			ok = iter.Next()
		}
		if n == 0 {
			b.Close()
			break
		}
		if err := l.db.CommitBatch(ctx, b); err != nil {
			b.Close()
			return deleted, err
		}
		b.Close()
		deleted += n
		hook(minSeq, maxSeq)
		if n < batchLimit {
			break
		}
		if throttle > 0 {
			time.Sleep(throttle)
		}
	}
	return deleted, nil
}
