package eventlog

import (
	"encoding/binary"

	"github.com/cockroachdb/pebble"
)

// Token encodes a position as seq (8 bytes big-endian).
type Token [8]byte

// TokenFromSeq builds a token for seq.
func TokenFromSeq(seq uint64) Token { var t Token; binary.BigEndian.PutUint64(t[:], seq); return t }
func (t Token) Seq() uint64         { return binary.BigEndian.Uint64(t[:]) }

type ReadOptions struct {
	Start   Token // if zero, begin from the first entry
	Limit   int
	Reverse bool
}

type Item struct {
	Seq     uint64
	Header  []byte
	Payload []byte
}

// Read returns up to Limit items starting at Start (inclusive) and the token
// of the next unread item (zero when the scan reached the end). Iterator
// errors end the read early; use Scan to see them.
func (l *Log) Read(opts ReadOptions) ([]Item, Token) {
	items, next, _ := l.Scan(opts)
	return items, next
}

// Scan is Read with iterator errors reported. On error the items read so far
// are returned with a zero token.
func (l *Log) Scan(opts ReadOptions) ([]Item, Token, error) {
	items := make([]Item, 0, max(1, opts.Limit))
	var next Token

	low, high := entryBounds(l.name)
	iter, err := l.db.NewIter(&pebble.IterOptions{LowerBound: low, UpperBound: high})
	if err != nil {
		return items, next, err
	}
	defer iter.Close()

	startSeq := opts.Start.Seq()
	startKey := KeyLogEntry(l.name, startSeq)
	var ok bool
	switch {
	case opts.Reverse && startSeq == 0:
		ok = iter.Last()
	case opts.Reverse:
		// inclusive start: seek to the first key past it, then step back
		ok = iter.SeekLT(KeyLogEntry(l.name, startSeq+1))
	case startSeq == 0:
		ok = iter.First()
	default:
		ok = iter.SeekGE(startKey)
	}
	for ok && (opts.Limit == 0 || len(items) < opts.Limit) {
		if dec, good := DecodeRecord(iter.Value()); good {
			items = append(items, Item{Seq: seqFromKey(iter.Key()), Header: dec.Header, Payload: dec.Payload})
		}
		if opts.Reverse {
			ok = iter.Prev()
		} else {
			ok = iter.Next()
		}
	}
	if err := iter.Error(); err != nil {
		return items, Token{}, err
	}
	if ok {
		next = TokenFromSeq(seqFromKey(iter.Key()))
	}
	return items, next, nil
}
