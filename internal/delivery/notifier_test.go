package delivery

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/bipf"
	"github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/feedstore"
	"github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/frontier"
	pebblestore "github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/storage/pebble"
	"github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/ui"
)

type recorded struct {
	fn   string
	args []any
}

type recorder struct {
	mu    sync.Mutex
	calls []recorded
}

func (r *recorder) Eval(_ context.Context, fn string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, recorded{fn, args})
}

func (r *recorder) seqs(fn string) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []uint64{}
	for _, c := range r.calls {
		if c.fn == fn {
			out = append(out, c.args[0].(ui.EntryObject).Header.Seq)
		}
	}
	return out
}

func (r *recorder) bodies(fn string) []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []any
	for _, c := range r.calls {
		if c.fn == fn {
			out = append(out, c.args[0].(ui.EntryObject).Body)
		}
	}
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	r.calls = nil
	r.mu.Unlock()
}

type harness struct {
	db    *pebblestore.DB
	store *feedstore.Store
	rec   *recorder
	n     *Notifier
}

func openHarness(t *testing.T, dir string) *harness {
	t.Helper()
	db, err := pebblestore.Open(pebblestore.Options{DataDir: dir, Fsync: pebblestore.FsyncModeAlways})
	if err != nil {
		t.Fatalf("open pebble: %v", err)
	}
	store := feedstore.Open(db, feedstore.Options{ChunkSize: 1024})
	rec := &recorder{}
	n := New(store, frontier.New(db), rec, nil)
	store.OnArrival(n.OnArrival)
	return &harness{db: db, store: store, rec: rec, n: n}
}

func newHarness(t *testing.T) *harness {
	h := openHarness(t, t.TempDir())
	t.Cleanup(func() { _ = h.db.Close() })
	return h
}

var feedA = feedstore.FeedID{0xaa}

func record(seq uint64) []byte {
	return bipf.MustEncode(bipf.List(bipf.String("TAV"), bipf.String(fmt.Sprintf("m%d", seq)), bipf.None(), bipf.Int(int64(seq))))
}

func (h *harness) ingest(t *testing.T, fid feedstore.FeedID, seq uint64, payload []byte, chunks uint32) {
	t.Helper()
	ref := []byte(fmt.Sprintf("ref-%d", seq))
	if _, err := h.store.Ingest(context.Background(), feedstore.Entry{Feed: fid, Seq: seq, Ref: ref, Payload: payload}, chunks); err != nil {
		t.Fatalf("ingest %d: %v", seq, err)
	}
}

func TestInOrderDespiteOutOfOrderArrival(t *testing.T) {
	h := newHarness(t)
	h.ingest(t, feedA, 1, record(1), 0)
	h.ingest(t, feedA, 3, record(3), 0)
	if got := h.rec.seqs(FuncNewInOrderEvent); !reflect.DeepEqual(got, []uint64{1}) {
		t.Fatalf("entry 3 must wait for 2, got %v", got)
	}
	if got := h.rec.seqs(FuncNewEvent); !reflect.DeepEqual(got, []uint64{1, 3}) {
		t.Fatalf("best-effort: %v", got)
	}
	h.ingest(t, feedA, 2, record(2), 0)
	if got := h.rec.seqs(FuncNewInOrderEvent); !reflect.DeepEqual(got, []uint64{1, 2, 3}) {
		t.Fatalf("in-order: %v", got)
	}
}

func TestDuplicateArrivalDoesNotAdvanceTwice(t *testing.T) {
	h := newHarness(t)
	h.ingest(t, feedA, 1, record(1), 0)
	e := feedstore.Entry{Feed: feedA, Seq: 1, Ref: []byte("ref-1"), Payload: record(1)}
	h.n.OnArrival(context.Background(), e)
	h.n.OnArrival(context.Background(), e)
	if got := h.rec.seqs(FuncNewInOrderEvent); !reflect.DeepEqual(got, []uint64{1}) {
		t.Fatalf("duplicate in-order: %v", got)
	}
	if next, _ := frontier.New(h.db).Get(feedA); next != 2 {
		t.Fatalf("frontier: %d", next)
	}
}

func TestFrontierSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	h := openHarness(t, dir)
	h.ingest(t, feedA, 1, record(1), 0)
	h.ingest(t, feedA, 2, record(2), 0)
	_ = h.db.Close()

	h2 := openHarness(t, dir)
	defer h2.db.Close()
	// a stale redelivery of 2 must not reach the UI in order again
	h2.n.OnArrival(context.Background(), feedstore.Entry{Feed: feedA, Seq: 2, Ref: []byte("ref-2"), Payload: record(2)})
	h2.ingest(t, feedA, 3, record(3), 0)
	if got := h2.rec.seqs(FuncNewInOrderEvent); !reflect.DeepEqual(got, []uint64{3}) {
		t.Fatalf("after restart: %v", got)
	}
}

func TestRestreamMatchesLiveArrivals(t *testing.T) {
	h := newHarness(t)
	feedB := feedstore.FeedID{0xbb}
	for seq := uint64(1); seq <= 3; seq++ {
		h.ingest(t, feedA, seq, record(seq), 0)
		h.ingest(t, feedB, seq, record(seq+10), 0)
	}
	liveA := h.rec.bodies(FuncNewEvent)
	h.rec.reset()

	before, _ := frontier.New(h.db).Get(feedA)
	if err := h.n.Restream(context.Background()); err != nil {
		t.Fatalf("restream: %v", err)
	}
	h.rec.mu.Lock()
	first, last := h.rec.calls[0], h.rec.calls[len(h.rec.calls)-1]
	h.rec.mu.Unlock()
	if first.fn != FuncRestreamState || first.args[0] != true || last.fn != FuncRestreamState || last.args[0] != false {
		t.Fatalf("restream must be bracketed: %+v .. %+v", first, last)
	}
	if got := h.rec.seqs(FuncNewEvent); !reflect.DeepEqual(got, []uint64{1, 2, 3, 1, 2, 3}) {
		t.Fatalf("restream order: %v", got)
	}
	// live arrivals interleaved A and B; compare per feed
	replay := h.rec.bodies(FuncNewEvent)
	for i := 0; i < 3; i++ {
		if !reflect.DeepEqual(replay[i], liveA[2*i]) || !reflect.DeepEqual(replay[3+i], liveA[2*i+1]) {
			t.Fatalf("payload mismatch at %d", i)
		}
	}
	if len(h.rec.seqs(FuncNewInOrderEvent)) != 0 {
		t.Fatalf("restream must not emit in-order events")
	}
	if after, _ := frontier.New(h.db).Get(feedA); after != before {
		t.Fatalf("restream touched frontier: %d -> %d", before, after)
	}
}

func TestIncompleteSidechainDefersDelivery(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	content := record(1)
	h.ingest(t, feedA, 1, content[:4], 1)
	if len(h.rec.calls) != 0 {
		t.Fatalf("undecodable head must stay silent: %+v", h.rec.calls)
	}
	if err := h.store.AddChunk(ctx, feedA, 1, 0, content[4:]); err != nil {
		t.Fatalf("chunk: %v", err)
	}
	if got := h.rec.seqs(FuncNewInOrderEvent); !reflect.DeepEqual(got, []uint64{1}) {
		t.Fatalf("in-order after completion: %v", got)
	}
	if got := h.rec.seqs(FuncNewEvent); !reflect.DeepEqual(got, []uint64{1}) {
		t.Fatalf("best-effort after completion: %v", got)
	}
}

func TestIncompleteNotificationForDecodableHead(t *testing.T) {
	h := newHarness(t)
	h.ingest(t, feedA, 1, record(1), 0)
	h.ingest(t, feedA, 2, record(2), 2)
	h.ingest(t, feedA, 3, record(3), 0)
	if got := h.rec.seqs(FuncNewIncompleteEvent); !reflect.DeepEqual(got, []uint64{2}) {
		t.Fatalf("incomplete: %v", got)
	}
	if got := h.rec.seqs(FuncNewEvent); !reflect.DeepEqual(got, []uint64{1, 3}) {
		t.Fatalf("best-effort must skip incomplete entry: %v", got)
	}
	if got := h.rec.seqs(FuncNewInOrderEvent); !reflect.DeepEqual(got, []uint64{1}) {
		t.Fatalf("cursor must stall at 2: %v", got)
	}
}

func TestUndecodableEntryStallsCursor(t *testing.T) {
	h := newHarness(t)
	h.ingest(t, feedA, 1, record(1), 0)
	h.ingest(t, feedA, 2, []byte{0xff, 0xff}, 0)
	h.ingest(t, feedA, 3, bipf.MustEncode(bipf.String("not a list")), 0)
	if got := h.rec.seqs(FuncNewEvent); !reflect.DeepEqual(got, []uint64{1}) {
		t.Fatalf("best-effort: %v", got)
	}
	if got := h.rec.seqs(FuncNewInOrderEvent); !reflect.DeepEqual(got, []uint64{1}) {
		t.Fatalf("in-order: %v", got)
	}
	if next, _ := frontier.New(h.db).Get(feedA); next != 2 {
		t.Fatalf("frontier: %d", next)
	}
}

func TestConcurrentArrivalsKeepOrder(t *testing.T) {
	h := newHarness(t)
	var wg sync.WaitGroup
	for seq := uint64(1); seq <= 20; seq++ {
		wg.Add(1)
		go func(seq uint64) {
			defer wg.Done()
			e := feedstore.Entry{Feed: feedA, Seq: seq, Ref: []byte{byte(seq)}, Payload: record(seq)}
			if _, err := h.store.Ingest(context.Background(), e, 0); err != nil {
				t.Errorf("ingest %d: %v", seq, err)
			}
		}(seq)
	}
	wg.Wait()
	got := h.rec.seqs(FuncNewInOrderEvent)
	if len(got) != 20 {
		t.Fatalf("want 20 in-order events, got %d", len(got))
	}
	for i, s := range got {
		if s != uint64(i+1) {
			t.Fatalf("out of order at %d: %v", i, got)
		}
	}
}

type resettingEvaluator struct {
	fr   *frontier.Store
	once sync.Once
	done chan error
}

func (e *resettingEvaluator) Eval(ctx context.Context, fn string, _ ...any) {
	if fn != FuncNewInOrderEvent {
		return
	}
	e.once.Do(func() {
		go func() { e.done <- e.fr.Reset(ctx, feedA) }()
		time.Sleep(20 * time.Millisecond)
	})
}

func TestResetDuringAdvanceIsNotOverwritten(t *testing.T) {
	db, err := pebblestore.Open(pebblestore.Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeNever})
	if err != nil {
		t.Fatalf("open pebble: %v", err)
	}
	defer db.Close()
	store := feedstore.Open(db, feedstore.Options{ChunkSize: 1024})
	fr := frontier.New(db)
	ev := &resettingEvaluator{fr: fr, done: make(chan error, 1)}
	store.OnArrival(New(store, fr, ev, nil).OnArrival)

	if _, err := store.Ingest(context.Background(), feedstore.Entry{Feed: feedA, Seq: 1, Ref: []byte("r1"), Payload: record(1)}, 0); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	select {
	case err := <-ev.done:
		if err != nil {
			t.Fatalf("reset: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("reset did not complete")
	}
	if n, _ := fr.Get(feedA); n != 1 {
		t.Fatalf("frontier after reset: %d, want 1", n)
	}
}
