package feedstore

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

// FeedIDSize is the length of an ed25519 public key.
const FeedIDSize = 32

// FeedID identifies an append-only feed.
type FeedID [FeedIDSize]byte

// FeedIDFromBytes copies b into a FeedID.
func FeedIDFromBytes(b []byte) (FeedID, error) {
	var f FeedID
	if len(b) != FeedIDSize {
		return f, fmt.Errorf("feedstore: feed id must be %d bytes, got %d", FeedIDSize, len(b))
	}
	copy(f[:], b)
	return f, nil
}

// ParseFeedID accepts "@<base64>.ed25519", bare base64 or hex.
func ParseFeedID(s string) (FeedID, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "@") {
		s = strings.TrimSuffix(strings.TrimPrefix(s, "@"), ".ed25519")
	}
	if len(s) == 2*FeedIDSize {
		if b, err := hex.DecodeString(s); err == nil {
			return FeedIDFromBytes(b)
		}
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return FeedID{}, fmt.Errorf("feedstore: bad feed id %q: %w", s, err)
	}
	return FeedIDFromBytes(b)
}

// Hex is the key encoding used by persisted tables.
func (f FeedID) Hex() string { return hex.EncodeToString(f[:]) }

// String renders the UI form "@<base64>.ed25519".
func (f FeedID) String() string {
	return "@" + base64.StdEncoding.EncodeToString(f[:]) + ".ed25519"
}

// Bytes returns a copy of the key bytes.
func (f FeedID) Bytes() []byte { return append([]byte(nil), f[:]...) }

// Entry is one numbered record of a feed. Payload is the full content when
// the side-chain is complete and the inline head otherwise.
type Entry struct {
	Feed    FeedID
	Seq     uint64
	Ref     []byte
	Payload []byte
}
