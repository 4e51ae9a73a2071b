package eventlog

import (
	"encoding/binary"
)

// CommitCursor stores the last processed token for a group idempotently.
// If the provided token is not above the stored one, the commit is ignored.
func (l *Log) CommitCursor(group string, tok Token) error {
	key := KeyCursor(l.name, group)
	cur, err := l.db.Get(key)
	if err == nil && len(cur) >= 8 {
		if tok.Seq() <= binary.BigEndian.Uint64(cur[:8]) {
			return nil
		}
	}
	return l.db.Set(key, tok[:])
}

// GetCursor loads the current cursor token for a group.
func (l *Log) GetCursor(group string) (Token, bool) {
	cur, err := l.db.Get(KeyCursor(l.name, group))
	if err != nil || len(cur) < 8 {
		return Token{}, false
	}
	var t Token
	copy(t[:], cur[:8])
	return t, true
}

// Groups lists the groups that have committed a cursor with their positions.
func (l *Log) Groups() (map[string]uint64, error) {
	prefix := KeyCursorPrefix(l.name)
	out := map[string]uint64{}
	err := l.db.ScanPrefix(prefix, func(k, v []byte) bool {
		if len(v) >= 8 {
			out[string(k[len(prefix):])] = binary.BigEndian.Uint64(v[:8])
		}
		return true
	})
	return out, err
}
