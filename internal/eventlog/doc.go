// Package eventlog implements the append-only log that backs the bridge's
// outbound UI channel.
//
// # Overview
//
// Every UI call is appended to a named log persisted in Pebble and assigned a
// strictly increasing sequence number. Readers keep a durable cursor per
// group and commit it once a call was handed to the UI, which gives the
// channel at-least-once semantics across restarts and reconnects. Producers
// never wait for readers.
//
// Keys are lexicographically ordered for efficient range scans:
//   - log/{name}/m                (metadata: lastSeq)
//   - log/{name}/e/{seq_be8}      (entries)
//   - log/{name}/c/{group}        (durable group cursors)
//
// Records are stored as: uvarint headerLen | header | payload | crc32c(header|payload).
//
// API surface (internal)
//
//	l, _ := OpenLog(db, "ui")
//	seqs, _ := l.Append(ctx, []AppendRecord{{Header: h, Payload: p}})
//	items, next := l.Read(ReadOptions{Start: TokenFromSeq(seqs[0]), Limit: 100})
//	_ = l.Wait(ctx)                               // blocks until the next append
//	_ = l.CommitCursor("ui", TokenFromSeq(items[len(items)-1].Seq))
//	_, _ = l.TrimToMaxBytes(ctx, 8<<20, 1024, 0)
package eventlog
