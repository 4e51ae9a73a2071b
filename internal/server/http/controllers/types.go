package controllers

import "github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/ui"

// ackReq acknowledges every call up to Seq for Group.
type ackReq struct {
	Group string `json:"group"`
	Seq   uint64 `json:"seq"`
}

// callsResp is a page of UI calls.
type callsResp struct {
	Calls   []ui.Call `json:"calls"`
	LastSeq uint64    `json:"last_seq"`
}

// statusResp summarizes the bridge state.
type statusResp struct {
	Identity      string            `json:"identity"`
	Ready         bool              `json:"ready"`
	Frontier      map[string]uint64 `json:"frontier"`
	OutboxLastSeq uint64            `json:"outbox_last_seq"`
	Groups        map[string]uint64 `json:"groups"`
	Plugins       []string          `json:"plugins"`
}

// wsFrame is a client frame on the WebSocket: a JSON ack, or a command line
// sent as plain text.
type wsFrame struct {
	Ack *uint64 `json:"ack"`
}

// helloEvent is the first message on a call stream.
type helloEvent struct {
	Group string `json:"group"`
}
