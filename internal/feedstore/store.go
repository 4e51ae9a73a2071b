package feedstore

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/cockroachdb/pebble"

	"github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/eventlog"
	pebblestore "github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/storage/pebble"
)

var (
	// ErrNotFound reports an unknown feed or sequence.
	ErrNotFound = errors.New("feedstore: not found")
	// ErrIncomplete reports an entry whose side-chain is still missing chunks.
	ErrIncomplete = errors.New("feedstore: side-chain incomplete")
	// ErrBadChunk reports a chunk index outside the entry's side-chain.
	ErrBadChunk = errors.New("feedstore: chunk index out of range")
)

// ArrivalHook is told about every entry that became locally available, and
// again when a pending side-chain completes.
type ArrivalHook func(ctx context.Context, e Entry)

// Options configures a Store.
type Options struct {
	// ChunkSize is the inline head size; larger content is split into chunks.
	ChunkSize int
}

// Store keeps feeds in Pebble.
type Store struct {
	db        *pebblestore.DB
	chunkSize int

	mu     sync.Mutex
	hooks  []ArrivalHook
	writes sync.Mutex
}

// Open returns a Store over db.
func Open(db *pebblestore.DB, opts Options) *Store {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 100
	}
	return &Store{db: db, chunkSize: opts.ChunkSize}
}

// OnArrival registers h. Hooks run synchronously on the writer's goroutine.
func (s *Store) OnArrival(h ArrivalHook) {
	s.mu.Lock()
	s.hooks = append(s.hooks, h)
	s.mu.Unlock()
}

func (s *Store) fire(ctx context.Context, e Entry) {
	s.mu.Lock()
	hooks := append([]ArrivalHook(nil), s.hooks...)
	s.mu.Unlock()
	for _, h := range hooks {
		h(ctx, e)
	}
}

// Follow makes fid known to the store so that it is listed even without entries.
func (s *Store) Follow(ctx context.Context, fid FeedID) error {
	s.writes.Lock()
	defer s.writes.Unlock()
	ok, err := s.db.Has(keyMeta(fid))
	if err != nil || ok {
		return err
	}
	return s.db.Set(keyMeta(fid), make([]byte, 8))
}

// ListFeeds returns every known feed in key order.
func (s *Store) ListFeeds() ([]FeedID, error) {
	var out []FeedID
	err := s.db.ScanPrefix(feedPrefix, func(k, _ []byte) bool {
		if bytes.HasSuffix(k, metaSuffix) {
			if f, ok := feedFromMetaKey(k); ok {
				out = append(out, f)
			}
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i][:], out[j][:]) < 0 })
	return out, err
}

// MaxSeq returns the highest stored sequence for fid, 0 if none.
func (s *Store) MaxSeq(fid FeedID) (uint64, error) {
	v, err := s.db.Get(keyMeta(fid))
	if errors.Is(err, pebblestore.ErrNotFound) {
		return 0, nil
	}
	if err != nil || len(v) < 8 {
		return 0, err
	}
	return binary.BigEndian.Uint64(v[:8]), nil
}

type storedEntry struct {
	chunks uint32
	ref    []byte
	head   []byte
}

func encodeHeader(chunks uint32, ref []byte) []byte {
	h := binary.AppendUvarint(nil, uint64(chunks))
	return append(h, ref...)
}

func (s *Store) load(fid FeedID, seq uint64) (storedEntry, error) {
	raw, err := s.db.Get(keyEntry(fid, seq))
	if errors.Is(err, pebblestore.ErrNotFound) {
		return storedEntry{}, ErrNotFound
	}
	if err != nil {
		return storedEntry{}, err
	}
	dec, ok := eventlog.DecodeRecord(raw)
	if !ok {
		return storedEntry{}, fmt.Errorf("feedstore: corrupt entry %s:%d", fid.Hex(), seq)
	}
	n, w := binary.Uvarint(dec.Header)
	if w <= 0 {
		return storedEntry{}, fmt.Errorf("feedstore: corrupt entry header %s:%d", fid.Hex(), seq)
	}
	return storedEntry{chunks: uint32(n), ref: dec.Header[w:], head: dec.Payload}, nil
}

// MessageID returns the ref of entry (fid, seq).
func (s *Store) MessageID(fid FeedID, seq uint64) ([]byte, error) {
	e, err := s.load(fid, seq)
	if err != nil {
		return nil, err
	}
	return e.ref, nil
}

// IsSidechainComplete reports whether every chunk of (fid, seq) is present.
// An absent entry is not complete.
func (s *Store) IsSidechainComplete(fid FeedID, seq uint64) bool {
	e, err := s.load(fid, seq)
	if err != nil {
		return false
	}
	return s.missingChunks(fid, seq, e.chunks) == 0
}

func (s *Store) missingChunks(fid FeedID, seq uint64, count uint32) int {
	if count == 0 {
		return 0
	}
	present := 0
	err := s.db.ScanPrefix(keyChunkPrefix(fid, seq), func(k, _ []byte) bool {
		present++
		return true
	})
	if err != nil {
		// An unreadable side-chain counts as incomplete.
		return int(count)
	}
	return int(count) - present
}

// ReadContent returns the full content of (fid, seq). It fails with
// ErrNotFound for an absent entry and ErrIncomplete while chunks are missing.
func (s *Store) ReadContent(fid FeedID, seq uint64) ([]byte, error) {
	e, err := s.load(fid, seq)
	if err != nil {
		return nil, err
	}
	if e.chunks == 0 {
		return e.head, nil
	}
	out := append([]byte(nil), e.head...)
	n := uint32(0)
	err = s.db.ScanPrefix(keyChunkPrefix(fid, seq), func(k, v []byte) bool {
		if binary.BigEndian.Uint32(k[len(k)-4:]) != n {
			return false
		}
		out = append(out, v...)
		n++
		return true
	})
	if err != nil {
		return nil, err
	}
	if n != e.chunks {
		return nil, ErrIncomplete
	}
	return out, nil
}

// Head returns the inline part of (fid, seq) regardless of side-chain state.
func (s *Store) Head(fid FeedID, seq uint64) ([]byte, error) {
	e, err := s.load(fid, seq)
	if err != nil {
		return nil, err
	}
	return e.head, nil
}

// Publish appends content to fid as the next sequence, computing its ref and
// splitting it into head and chunks. The arrival hooks see the full content.
func (s *Store) Publish(ctx context.Context, fid FeedID, content []byte) (Entry, error) {
	s.writes.Lock()
	last, err := s.MaxSeq(fid)
	if err != nil {
		s.writes.Unlock()
		return Entry{}, err
	}
	seq := last + 1
	ref, err := ComputeRef(fid, seq, content)
	if err != nil {
		s.writes.Unlock()
		return Entry{}, err
	}
	head, chunks := s.split(content)

	kvs := [][]byte{keyEntry(fid, seq), eventlog.EncodeRecord(encodeHeader(uint32(len(chunks)), ref), head)}
	for i, c := range chunks {
		kvs = append(kvs, keyChunk(fid, seq, uint32(i)), c)
	}
	kvs = append(kvs, keyMeta(fid), binary.BigEndian.AppendUint64(nil, seq))
	b := s.db.NewBatch()
	if err = stage(b, kvs...); err == nil {
		err = s.db.CommitBatch(ctx, b)
	}
	b.Close()
	s.writes.Unlock()
	if err != nil {
		return Entry{}, err
	}
	e := Entry{Feed: fid, Seq: seq, Ref: ref, Payload: append([]byte(nil), content...)}
	s.fire(ctx, e)
	return e, nil
}

func (s *Store) split(content []byte) ([]byte, [][]byte) {
	if len(content) <= s.chunkSize {
		return content, nil
	}
	head := content[:s.chunkSize]
	var chunks [][]byte
	for rest := content[s.chunkSize:]; len(rest) > 0; {
		n := min(len(rest), s.chunkSize)
		chunks = append(chunks, rest[:n])
		rest = rest[n:]
	}
	return head, chunks
}

// Ingest stores an entry received from elsewhere. e.Payload is its inline
// head and chunkCount the number of side-chain chunks still to come. A
// duplicate (same fid and seq) is ignored and reported as stored=false.
func (s *Store) Ingest(ctx context.Context, e Entry, chunkCount uint32) (stored bool, err error) {
	if e.Seq == 0 {
		return false, fmt.Errorf("feedstore: sequence must be positive")
	}
	s.writes.Lock()
	exists, err := s.db.Has(keyEntry(e.Feed, e.Seq))
	if err != nil || exists {
		s.writes.Unlock()
		return false, err
	}
	last, err := s.MaxSeq(e.Feed)
	if err != nil {
		s.writes.Unlock()
		return false, err
	}
	if e.Seq > last {
		last = e.Seq
	}
	b := s.db.NewBatch()
	err = stage(b,
		keyEntry(e.Feed, e.Seq), eventlog.EncodeRecord(encodeHeader(chunkCount, e.Ref), e.Payload),
		keyMeta(e.Feed), binary.BigEndian.AppendUint64(nil, last),
	)
	if err == nil {
		err = s.db.CommitBatch(ctx, b)
	}
	b.Close()
	s.writes.Unlock()
	if err != nil {
		return false, err
	}
	s.fire(ctx, e)
	return true, nil
}

// AddChunk stores side-chain chunk idx of (fid, seq). When it completes the
// side-chain the arrival hooks run again with the full content.
func (s *Store) AddChunk(ctx context.Context, fid FeedID, seq uint64, idx uint32, data []byte) error {
	s.writes.Lock()
	e, err := s.load(fid, seq)
	if err != nil {
		s.writes.Unlock()
		return err
	}
	if idx >= e.chunks {
		s.writes.Unlock()
		return fmt.Errorf("%w: %d of %d", ErrBadChunk, idx, e.chunks)
	}
	before := s.missingChunks(fid, seq, e.chunks)
	err = s.db.Set(keyChunk(fid, seq, idx), data)
	after := s.missingChunks(fid, seq, e.chunks)
	s.writes.Unlock()
	if err != nil {
		return err
	}
	if before > 0 && after == 0 {
		content, err := s.ReadContent(fid, seq)
		if err != nil {
			return err
		}
		s.fire(ctx, Entry{Feed: fid, Seq: seq, Ref: e.ref, Payload: content})
	}
	return nil
}

type batchWriter interface {
	Set(key, value []byte, opts *pebble.WriteOptions) error
}

// stage writes alternating key, value pairs into b and stops at the first
// failure.
func stage(b batchWriter, kvs ...[]byte) error {
	if len(kvs)%2 != 0 {
		return fmt.Errorf("feedstore: odd key/value count %d", len(kvs))
	}
	for i := 0; i < len(kvs); i += 2 {
		if err := b.Set(kvs[i], kvs[i+1], nil); err != nil {
			return fmt.Errorf("feedstore: staging %q: %w", kvs[i], err)
		}
	}
	return nil
}

// DeleteFeed removes a feed and all its entries.
func (s *Store) DeleteFeed(ctx context.Context, fid FeedID) error {
	s.writes.Lock()
	defer s.writes.Unlock()
	return s.db.DeletePrefix(ctx, append(keyFeed(fid), '/'))
}

// Reset removes every feed.
func (s *Store) Reset(ctx context.Context) error {
	s.writes.Lock()
	defer s.writes.Unlock()
	return s.db.DeletePrefix(ctx, feedPrefix)
}
