package ui

import (
	"encoding/base64"

	"github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/bipf"
	"github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/feedstore"
)

// EntryHeader identifies an entry in UI calls.
type EntryHeader struct {
	FID string `json:"fid"`
	Ref string `json:"ref"`
	Seq uint64 `json:"seq"`
}

// EntryObject is the {header, body} argument of the entry notifications.
type EntryObject struct {
	Header EntryHeader `json:"header"`
	Body   any         `json:"body"`
}

// NewEntryObject renders a decoded entry for the UI.
func NewEntryObject(fid feedstore.FeedID, seq uint64, ref []byte, body bipf.Value) EntryObject {
	return EntryObject{
		Header: EntryHeader{
			FID: fid.String(),
			Ref: base64.StdEncoding.EncodeToString(ref),
			Seq: seq,
		},
		Body: bipf.ToStructured(body),
	}
}
