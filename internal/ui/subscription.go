package ui

import "context"

// Subscription walks the outbox for one reader. It starts after the group's
// acknowledged cursor so unacknowledged calls are delivered again.
type Subscription struct {
	outbox *Outbox
	group  string
	filter Filter
	next   uint64
}

// Subscribe opens a reader for group. A group without an acknowledged cursor
// starts at fromSeq (0 means the oldest retained call).
func (o *Outbox) Subscribe(group string, filter Filter, fromSeq uint64) *Subscription {
	start := fromSeq
	if acked, ok := o.Acked(group); ok {
		start = acked + 1
	}
	if start == 0 {
		start = 1
	}
	return &Subscription{outbox: o, group: group, filter: filter, next: start}
}

// Group returns the cursor group of the subscription.
func (s *Subscription) Group() string { return s.group }

// Next blocks until at least one call passes the filter, or ctx is done.
// Calls skipped by the filter still move the read position.
func (s *Subscription) Next(ctx context.Context, limit int) ([]Call, error) {
	if limit <= 0 {
		limit = 128
	}
	for {
		wake := s.outbox.Appended()
		calls, err := s.outbox.Read(s.next-1, limit)
		if err != nil {
			return nil, err
		}
		if len(calls) > 0 {
			s.next = calls[len(calls)-1].Seq + 1
			out := calls[:0]
			for _, c := range calls {
				if s.filter.Match(c) {
					out = append(out, c)
				}
			}
			if len(out) > 0 {
				return out, nil
			}
			continue
		}
		select {
		case <-wake:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Ack commits the group cursor.
func (s *Subscription) Ack(seq uint64) error { return s.outbox.Ack(s.group, seq) }
