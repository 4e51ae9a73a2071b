// Package client provides the `bridge` command-line client.
//
// The CLI talks to the bridge gRPC Frontend service to send command lines
// and watch the UI calls they produce. It is meant for developers driving
// mini-apps from a terminal.
//
// # Address configuration
//
// The gRPC address is read from BRIDGE_GRPC_ADDR (default 127.0.0.1:50051).
// The HTTP base URL used by `status` comes from the embedding binary via a
// BaseURLFunc (default http://127.0.0.1:8080).
//
// Usage
//
//	bridge send ready
//	bridge send kanban null null board/new null
//	printf 'ready\nrestream\n' | bridge send --stdin
//
//	# Follow UI calls; acknowledges each call when a group is set
//	bridge tail --group term --filter 'app == "KAN"'
//	bridge tail --from latest --limit 5
//
//	bridge ack term 42
//	bridge registry
//	bridge decode <hex>
//	bridge health
//	bridge status
package client
