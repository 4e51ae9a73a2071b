// Package grpcserver hosts the gRPC Frontend service: command dispatch, a
// server stream of UI calls with acknowledgements, the UI registry and a
// BIPF decoding helper. Messages are protobuf well-known types.
//
// Example:
//
//	rt, _ := runtime.Open(runtime.Options{DataDir: "./data", Fsync: pebblestore.FsyncModeAlways, Config: config.Default()})
//	s := grpcserver.New(rt, logger)
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = s.ListenAndServe(ctx, ":50051")
package grpcserver
