package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/eventlog"
	logpkg "github.com/AndreVRibeiro/tinySSB-miniAppBundles/pkg/log"
)

// Outbox is the persisted, at-least-once queue of UI calls. Producers append
// and return immediately; readers resume from their group's acknowledged
// cursor.
type Outbox struct {
	log    *eventlog.Log
	scan   func(eventlog.ReadOptions) ([]eventlog.Item, eventlog.Token, error)
	logger logpkg.Logger
	now    func() time.Time
}

// NewOutbox wraps l.
func NewOutbox(l *eventlog.Log, logger logpkg.Logger) *Outbox {
	if logger == nil {
		logger = logpkg.NewNopLogger()
	}
	o := &Outbox{log: l, scan: l.Scan, logger: logger.With(logpkg.Component("ui.outbox")), now: time.Now}
	l.SetTrimHook(func(lo, hi uint64) {
		o.logger.Debug("trimmed calls", logpkg.Uint64("from", lo), logpkg.Uint64("to", hi))
	})
	return o
}

// Eval appends a call. Failures are logged; the caller never waits on the UI.
func (o *Outbox) Eval(ctx context.Context, fn string, args ...any) {
	if _, err := o.Append(ctx, fn, args...); err != nil {
		o.logger.Error("dropping ui call", logpkg.Str("func", fn), logpkg.Err(err))
	}
}

// Append persists a call and returns its sequence.
func (o *Outbox) Append(ctx context.Context, fn string, args ...any) (uint64, error) {
	if args == nil {
		args = []any{}
	}
	payload, err := json.Marshal(args)
	if err != nil {
		return 0, err
	}
	seqs, err := o.log.Append(ctx, []eventlog.AppendRecord{{
		Header:  encodeHeader(o.now().UnixMilli(), fn),
		Payload: payload,
	}})
	if err != nil {
		return 0, err
	}
	o.logger.Debug("ui call", logpkg.Str("func", fn), logpkg.Uint64("seq", seqs[0]))
	return seqs[0], nil
}

// Read returns up to limit calls with seq > after.
func (o *Outbox) Read(after uint64, limit int) ([]Call, error) {
	items, _, err := o.scan(eventlog.ReadOptions{Start: eventlog.TokenFromSeq(after + 1), Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("ui outbox: read after %d: %w", after, err)
	}
	out := make([]Call, 0, len(items))
	for _, it := range items {
		ts, fn, ok := decodeHeader(it.Header)
		if !ok {
			o.logger.Warn("skipping malformed call", logpkg.Uint64("seq", it.Seq))
			continue
		}
		out = append(out, Call{Seq: it.Seq, Func: fn, Args: json.RawMessage(it.Payload), TsMs: ts})
	}
	return out, nil
}

// LastSeq returns the newest call sequence.
func (o *Outbox) LastSeq() uint64 { return o.log.LastSeq() }

// Ack records that group has handled every call up to seq. Lower acks are ignored.
func (o *Outbox) Ack(group string, seq uint64) error {
	return o.log.CommitCursor(group, eventlog.TokenFromSeq(seq))
}

// Acked returns the highest acknowledged seq of group and whether it has one.
func (o *Outbox) Acked(group string) (uint64, bool) {
	tok, ok := o.log.GetCursor(group)
	return tok.Seq(), ok
}

// Groups lists acknowledged positions per group.
func (o *Outbox) Groups() (map[string]uint64, error) { return o.log.Groups() }

// Appended returns a channel closed by the next append.
func (o *Outbox) Appended() <-chan struct{} { return o.log.Appended() }

// TrimToMaxBytes drops the oldest calls beyond the byte budget.
func (o *Outbox) TrimToMaxBytes(ctx context.Context, maxBytes int64) (int, error) {
	return o.log.TrimToMaxBytes(ctx, maxBytes, 1024, 0)
}

// TrimOlderThan drops calls appended before cutoff.
func (o *Outbox) TrimOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	return o.log.TrimOlderThan(ctx, cutoff.UnixMilli(), 1024, 0, headerTimestamp)
}
