// Package transports provides pluggable transport implementations for the CLI.
package transports

import (
	"context"
	"errors"
	"io"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	grpcserver "github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/server/grpc"
)

// GrpcTransport implements FrontendTransport over gRPC.
type GrpcTransport struct {
	dial func(ctx context.Context) (*grpc.ClientConn, error)
}

// NewGrpcTransport constructs a new GrpcTransport using the provided dialer.
func NewGrpcTransport(dial func(ctx context.Context) (*grpc.ClientConn, error)) *GrpcTransport {
	return &GrpcTransport{dial: dial}
}

func (t *GrpcTransport) withClient(ctx context.Context, fn func(cli grpcserver.FrontendClient) error) error {
	conn, err := t.dial(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()
	return fn(grpcserver.NewFrontendClient(conn))
}

// Dispatch sends one command line.
func (t *GrpcTransport) Dispatch(ctx context.Context, line string) error {
	return t.withClient(ctx, func(cli grpcserver.FrontendClient) error {
		_, err := cli.Dispatch(ctx, wrapperspb.String(line))
		return err
	})
}

// Subscribe streams UI calls and invokes onCall for each item.
func (t *GrpcTransport) Subscribe(ctx context.Context, req SubscribeRequest, onCall func(group string, c Call) error) error {
	return t.withClient(ctx, func(cli grpcserver.FrontendClient) error {
		fields := map[string]any{"group": req.Group, "filter": req.Filter, "from": req.From}
		if req.AutoAck {
			fields["ack"] = "auto"
		}
		in, err := structpb.NewStruct(fields)
		if err != nil {
			return err
		}
		stream, err := cli.Subscribe(ctx, in)
		if err != nil {
			return err
		}
		hello, err := stream.Recv()
		if err != nil {
			return err
		}
		group := hello.GetFields()["group"].GetStringValue()
		for {
			m, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
			if err := onCall(group, structToCall(m)); err != nil {
				return err
			}
		}
	})
}

// Ack commits the group cursor at seq.
func (t *GrpcTransport) Ack(ctx context.Context, group string, seq uint64) error {
	return t.withClient(ctx, func(cli grpcserver.FrontendClient) error {
		in, err := structpb.NewStruct(map[string]any{"group": group, "seq": seq})
		if err != nil {
			return err
		}
		_, err = cli.Ack(ctx, in)
		return err
	})
}

// Registry fetches the UI registry snapshot.
func (t *GrpcTransport) Registry(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := t.withClient(ctx, func(cli grpcserver.FrontendClient) error {
		res, err := cli.Registry(ctx, &emptypb.Empty{})
		if err != nil {
			return err
		}
		out = res.AsMap()
		return nil
	})
	return out, err
}

// Decode asks the server to render a BIPF blob.
func (t *GrpcTransport) Decode(ctx context.Context, blob []byte) (any, error) {
	var out any
	err := t.withClient(ctx, func(cli grpcserver.FrontendClient) error {
		res, err := cli.Decode(ctx, wrapperspb.Bytes(blob))
		if err != nil {
			return err
		}
		out = res.AsInterface()
		return nil
	})
	return out, err
}

// Health returns the server health status.
func (t *GrpcTransport) Health(ctx context.Context) (string, error) {
	var out string
	err := t.withClient(ctx, func(cli grpcserver.FrontendClient) error {
		res, err := cli.Health(ctx, &emptypb.Empty{})
		if err != nil {
			return err
		}
		out = res.GetValue()
		return nil
	})
	return out, err
}

func structToCall(m *structpb.Struct) Call {
	f := m.GetFields()
	c := Call{
		Seq:  uint64(f["seq"].GetNumberValue()),
		Func: f["func"].GetStringValue(),
		TsMs: int64(f["ts"].GetNumberValue()),
	}
	for _, v := range f["args"].GetListValue().GetValues() {
		c.Args = append(c.Args, v.AsInterface())
	}
	return c
}
