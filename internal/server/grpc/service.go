package grpcserver

import (
	"context"
	"encoding/json"
	"errors"
	"math"

	"github.com/oklog/ulid/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/bipf"
	"github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/runtime"
	"github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/ui"
	logpkg "github.com/AndreVRibeiro/tinySSB-miniAppBundles/pkg/log"
)

const maxFilterLen = 2048

type frontendSvc struct {
	UnimplementedFrontendServer
	rt     *runtime.Runtime
	logger logpkg.Logger
}

func (f *frontendSvc) Dispatch(ctx context.Context, in *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if in.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "empty command")
	}
	f.rt.Router().Dispatch(ctx, in.GetValue())
	return &emptypb.Empty{}, nil
}

// Subscribe streams UI calls. The request carries optional "group",
// "filter", "from" ("earliest"|"latest") and "ack" ("auto") fields. The
// first message is {"group": ...}; every following message is a call.
func (f *frontendSvc) Subscribe(in *structpb.Struct, stream Frontend_SubscribeServer) error {
	fields := in.GetFields()
	group := fields["group"].GetStringValue()
	if group == "" {
		group = "anon-" + ulid.Make().String()
	}
	expr := fields["filter"].GetStringValue()
	if len(expr) > maxFilterLen {
		return status.Error(codes.InvalidArgument, "filter too long")
	}
	filter, err := ui.NewFilter(expr)
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "invalid filter: %v", err)
	}
	var from uint64
	switch fields["from"].GetStringValue() {
	case "", "earliest":
	case "latest":
		from = f.rt.Outbox().LastSeq() + 1
	default:
		return status.Error(codes.InvalidArgument, "invalid from")
	}
	autoAck := fields["ack"].GetStringValue() == "auto"

	hello, _ := structpb.NewStruct(map[string]any{"group": group})
	if err := stream.Send(hello); err != nil {
		return err
	}
	ctx := stream.Context()
	sub := f.rt.Outbox().Subscribe(group, filter, from)
	for {
		calls, err := sub.Next(ctx, 0)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return status.Error(codes.Internal, err.Error())
		}
		for _, c := range calls {
			m, err := callToStruct(c)
			if err != nil {
				f.logger.Warn("skipping call", logpkg.Uint64("seq", c.Seq), logpkg.Err(err))
				continue
			}
			if err := stream.Send(m); err != nil {
				return err
			}
		}
		if autoAck {
			if err := sub.Ack(calls[len(calls)-1].Seq); err != nil {
				return status.Error(codes.Internal, err.Error())
			}
		}
	}
}

func (f *frontendSvc) Ack(_ context.Context, in *structpb.Struct) (*emptypb.Empty, error) {
	fields := in.GetFields()
	group := fields["group"].GetStringValue()
	seq := fields["seq"].GetNumberValue()
	if group == "" {
		return nil, status.Error(codes.InvalidArgument, "missing group")
	}
	if seq < 0 || seq > math.MaxUint64 || seq != math.Trunc(seq) {
		return nil, status.Error(codes.InvalidArgument, "invalid seq")
	}
	if err := f.rt.Outbox().Ack(group, uint64(seq)); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return &emptypb.Empty{}, nil
}

func (f *frontendSvc) Registry(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	m, err := toMap(f.rt.Registry().Snapshot())
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return s, nil
}

// Decode renders a BIPF blob as a structured value.
func (f *frontendSvc) Decode(_ context.Context, in *wrapperspb.BytesValue) (*structpb.Value, error) {
	v, err := bipf.Decode(in.GetValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	out, err := bipf.ToProto(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func callToStruct(c ui.Call) (*structpb.Struct, error) {
	args, err := c.DecodeArgs()
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(map[string]any{
		"seq":  c.Seq,
		"func": c.Func,
		"args": args,
		"ts":   c.TsMs,
	})
}

func toMap(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	err = json.Unmarshal(b, &m)
	return m, err
}
