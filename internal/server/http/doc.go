// Package httpserver exposes the bridge to a browser frontend: command lines
// in over POST or WebSocket, UI calls out over Server-Sent Events or
// WebSocket, plus the embedded plugin assets.
//
// Example:
//
//	rt, _ := runtime.Open(runtime.Options{DataDir: "./data", Fsync: pebblestore.FsyncModeAlways, Config: config.Default()})
//	s := httpserver.New(rt, logger)
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = s.ListenAndServe(ctx, ":8080")
package httpserver
