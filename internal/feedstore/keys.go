package feedstore

import "encoding/binary"

var (
	feedPrefix = []byte("feed/")
	metaSuffix = []byte("/m")
	entrySeg   = []byte("/e/")
	chunkSeg   = []byte("/c/")
)

func keyFeed(fid FeedID) []byte {
	k := make([]byte, 0, len(feedPrefix)+FeedIDSize+16)
	k = append(k, feedPrefix...)
	return append(k, fid[:]...)
}

func keyMeta(fid FeedID) []byte {
	return append(keyFeed(fid), metaSuffix...)
}

func keyEntry(fid FeedID, seq uint64) []byte {
	k := append(keyFeed(fid), entrySeg...)
	return binary.BigEndian.AppendUint64(k, seq)
}

func keyChunkPrefix(fid FeedID, seq uint64) []byte {
	k := append(keyFeed(fid), chunkSeg...)
	return binary.BigEndian.AppendUint64(k, seq)
}

func keyChunk(fid FeedID, seq uint64, idx uint32) []byte {
	return binary.BigEndian.AppendUint32(keyChunkPrefix(fid, seq), idx)
}

// feedFromMetaKey extracts the feed id from a feed/{fid}/m key.
func feedFromMetaKey(k []byte) (FeedID, bool) {
	if len(k) != len(feedPrefix)+FeedIDSize+len(metaSuffix) {
		return FeedID{}, false
	}
	var f FeedID
	copy(f[:], k[len(feedPrefix):])
	return f, true
}
