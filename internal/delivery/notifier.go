package delivery

import (
	"context"
	"errors"
	"fmt"

	"github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/bipf"
	"github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/feedstore"
	"github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/ui"
	logpkg "github.com/AndreVRibeiro/tinySSB-miniAppBundles/pkg/log"
)

// ErrIncomplete marks an entry whose side-chain is not fully retrieved.
var ErrIncomplete = errors.New("delivery: side-chain incomplete")

// ErrNotRecord marks content that decodes but is not a list.
var ErrNotRecord = errors.New("delivery: payload is not a record")

// UI call names.
const (
	FuncNewEvent           = "new_event"
	FuncNewIncompleteEvent = "new_incomplete_event"
	FuncNewInOrderEvent    = "new_in_order_event"
	FuncRestreamState      = "restream_state"
)

// Store is the read side of the log store.
type Store interface {
	ListFeeds() ([]feedstore.FeedID, error)
	ReadContent(fid feedstore.FeedID, seq uint64) ([]byte, error)
	MessageID(fid feedstore.FeedID, seq uint64) ([]byte, error)
	IsSidechainComplete(fid feedstore.FeedID, seq uint64) bool
}

// Frontier is the per-feed cursor table.
type Frontier interface {
	Lock(fid feedstore.FeedID) func()
	Get(fid feedstore.FeedID) (uint64, error)
	Set(ctx context.Context, fid feedstore.FeedID, next uint64) error
}

// Notifier turns arrivals into UI calls.
type Notifier struct {
	store    Store
	frontier Frontier
	ui       ui.Evaluator
	logger   logpkg.Logger
}

// New builds a Notifier.
func New(store Store, frontier Frontier, ev ui.Evaluator, logger logpkg.Logger) *Notifier {
	if logger == nil {
		logger = logpkg.NewNopLogger()
	}
	return &Notifier{store: store, frontier: frontier, ui: ev, logger: logger.With(logpkg.Component("delivery"))}
}

// decodeRecord decodes payload and requires a list.
func decodeRecord(payload []byte) (bipf.Value, error) {
	v, err := bipf.Decode(payload)
	if err != nil {
		return bipf.Value{}, err
	}
	if !v.IsList() {
		return bipf.Value{}, fmt.Errorf("%w: %s", ErrNotRecord, v.Kind())
	}
	return v, nil
}

// OnArrival handles one entry that became locally available. Calling it again
// for the same entry never advances the frontier twice.
func (n *Notifier) OnArrival(ctx context.Context, e feedstore.Entry) {
	log := n.logger.With(logpkg.Str("fid", e.Feed.Hex()), logpkg.Uint64("seq", e.Seq))
	body, decErr := decodeRecord(e.Payload)

	if !n.store.IsSidechainComplete(e.Feed, e.Seq) {
		log.Debug("deferring entry", logpkg.Err(ErrIncomplete))
		if decErr == nil {
			n.ui.Eval(ctx, FuncNewIncompleteEvent, ui.NewEntryObject(e.Feed, e.Seq, e.Ref, body))
		}
		return
	}
	if decErr != nil {
		log.Debug("no best-effort notification", logpkg.Err(decErr))
	} else {
		n.ui.Eval(ctx, FuncNewEvent, ui.NewEntryObject(e.Feed, e.Seq, e.Ref, body))
	}
	n.advance(ctx, e.Feed, e.Seq)
}

// advance runs the in-order loop for fid if seq is at or past its frontier.
func (n *Notifier) advance(ctx context.Context, fid feedstore.FeedID, seq uint64) {
	unlock := n.frontier.Lock(fid)
	defer unlock()

	next, err := n.frontier.Get(fid)
	if err != nil {
		n.logger.Error("reading frontier", logpkg.Str("fid", fid.Hex()), logpkg.Err(err))
		return
	}
	if seq < next {
		return
	}
	for i := next; ; i++ {
		body, ref, err := n.deliverable(fid, i)
		if err != nil {
			n.logger.Debug("frontier stalled", logpkg.Str("fid", fid.Hex()), logpkg.Uint64("at", i), logpkg.Err(err))
			return
		}
		n.ui.Eval(ctx, FuncNewInOrderEvent, ui.NewEntryObject(fid, i, ref, body))
		if err := n.frontier.Set(ctx, fid, i+1); err != nil {
			// The call above may be repeated after a restart; at-least-once holds.
			n.logger.Error("persisting frontier", logpkg.Str("fid", fid.Hex()), logpkg.Uint64("next", i+1), logpkg.Err(err))
			return
		}
	}
}

// deliverable returns the decoded record and ref of (fid, seq) if it can be
// delivered in order now.
func (n *Notifier) deliverable(fid feedstore.FeedID, seq uint64) (bipf.Value, []byte, error) {
	content, err := n.store.ReadContent(fid, seq)
	if errors.Is(err, feedstore.ErrIncomplete) {
		return bipf.Value{}, nil, ErrIncomplete
	}
	if err != nil {
		return bipf.Value{}, nil, err
	}
	ref, err := n.store.MessageID(fid, seq)
	if err != nil {
		return bipf.Value{}, nil, err
	}
	if !n.store.IsSidechainComplete(fid, seq) {
		return bipf.Value{}, nil, ErrIncomplete
	}
	body, err := decodeRecord(content)
	if err != nil {
		return bipf.Value{}, nil, err
	}
	return body, ref, nil
}

// Restream re-emits new_event for every stored entry, feed by feed from
// sequence 1, stopping per feed at the first entry that is unavailable. The
// frontier is not touched. The replay is bracketed by restream_state calls.
func (n *Notifier) Restream(ctx context.Context) error {
	feeds, err := n.store.ListFeeds()
	if err != nil {
		return err
	}
	n.ui.Eval(ctx, FuncRestreamState, true)
	defer n.ui.Eval(context.WithoutCancel(ctx), FuncRestreamState, false)

	total := 0
	for _, fid := range feeds {
		for i := uint64(1); ; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			content, err := n.store.ReadContent(fid, i)
			if err != nil {
				break
			}
			ref, err := n.store.MessageID(fid, i)
			if err != nil {
				break
			}
			body, err := decodeRecord(content)
			if err != nil {
				n.logger.Debug("restream skipped entry", logpkg.Str("fid", fid.Hex()), logpkg.Uint64("seq", i), logpkg.Err(err))
				continue
			}
			n.ui.Eval(ctx, FuncNewEvent, ui.NewEntryObject(fid, i, ref, body))
			total++
		}
	}
	n.logger.Info("restream done", logpkg.Int("feeds", len(feeds)), logpkg.Int("entries", total))
	return nil
}
