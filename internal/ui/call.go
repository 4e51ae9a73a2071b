package ui

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
)

// Evaluator sends a named call to the UI. It never blocks on the UI and has
// no return path.
type Evaluator interface {
	Eval(ctx context.Context, fn string, args ...any)
}

// Call is one queued UI invocation.
type Call struct {
	Seq  uint64          `json:"seq"`
	Func string          `json:"func"`
	Args json.RawMessage `json:"args"`
	// TsMs is the append time in unix milliseconds.
	TsMs int64 `json:"ts"`
}

// DecodeArgs unmarshals Args into generic JSON values.
func (c Call) DecodeArgs() ([]any, error) {
	var out []any
	if len(c.Args) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(c.Args, &out); err != nil {
		return nil, fmt.Errorf("ui: call %d args: %w", c.Seq, err)
	}
	return out, nil
}

// header layout: ts_ms_be8 | func
func encodeHeader(tsMs int64, fn string) []byte {
	h := binary.BigEndian.AppendUint64(make([]byte, 0, 8+len(fn)), uint64(tsMs))
	return append(h, fn...)
}

func decodeHeader(h []byte) (int64, string, bool) {
	if len(h) < 8 {
		return 0, "", false
	}
	return int64(binary.BigEndian.Uint64(h[:8])), string(h[8:]), true
}

func headerTimestamp(h []byte) (int64, bool) {
	ts, _, ok := decodeHeader(h)
	return ts, ok
}
