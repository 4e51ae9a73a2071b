// Package runtime wires storage, config and the bridge components into a
// single-node instance. It exposes Open/Close, a health check and accessors
// used by the transports.
//
// Example:
//
//	cfg := config.Default()
//	rt, _ := runtime.Open(runtime.Options{DataDir: "./data", Fsync: pebblestore.FsyncModeAlways, Config: cfg})
//	defer rt.Close()
//	rt.Router().Dispatch(ctx, "ready")
//	calls, err := rt.Outbox().Read(0, 100)
package runtime
