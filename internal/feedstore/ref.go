package feedstore

import (
	"encoding/binary"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// ComputeRef derives the message id of a locally published entry: a CIDv1
// (raw codec) over the sha2-256 multihash of fid || seq_be8 || content.
func ComputeRef(fid FeedID, seq uint64, content []byte) ([]byte, error) {
	buf := make([]byte, 0, FeedIDSize+8+len(content))
	buf = append(buf, fid[:]...)
	buf = binary.BigEndian.AppendUint64(buf, seq)
	buf = append(buf, content...)
	sum, err := multihash.Sum(buf, multihash.SHA2_256, -1)
	if err != nil {
		return nil, err
	}
	return cid.NewCidV1(cid.Raw, sum).Bytes(), nil
}

// RefString renders a ref produced by ComputeRef in its CID text form.
// Refs from other sources are returned as an empty string.
func RefString(ref []byte) string {
	c, err := cid.Cast(ref)
	if err != nil {
		return ""
	}
	return c.String()
}
