package transports

import "context"

// Call is one UI call received from the bridge.
type Call struct {
	Seq  uint64 `json:"seq"`
	Func string `json:"func"`
	Args []any  `json:"args"`
	TsMs int64  `json:"ts"`
}

// SubscribeRequest describes a UI call subscription.
type SubscribeRequest struct {
	// Group names the cursor. Empty lets the server pick an anonymous one.
	Group string
	// Filter is a CEL expression over func, seq, app, fid and args.
	Filter string
	// From is earliest or latest; it applies only to groups without a cursor.
	From string
	// AutoAck makes the server commit the cursor after each batch.
	AutoAck bool
}

// FrontendTransport abstracts the transport used by the CLI.
type FrontendTransport interface {
	Dispatch(ctx context.Context, line string) error
	// Subscribe streams calls until ctx is done, the server closes the
	// stream or onCall returns an error. group is the server-confirmed group.
	Subscribe(ctx context.Context, req SubscribeRequest, onCall func(group string, c Call) error) error
	Ack(ctx context.Context, group string, seq uint64) error
	Registry(ctx context.Context) (map[string]any, error)
	Decode(ctx context.Context, blob []byte) (any, error)
	Health(ctx context.Context) (string, error)
}
