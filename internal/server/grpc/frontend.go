package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// FrontendServer is the server API for the Frontend service.
//
// Messages are protobuf well-known types, so no generated code is needed:
//
//	service Frontend {
//	  rpc Dispatch(google.protobuf.StringValue) returns (google.protobuf.Empty);
//	  rpc Subscribe(google.protobuf.Struct) returns (stream google.protobuf.Struct);
//	  rpc Ack(google.protobuf.Struct) returns (google.protobuf.Empty);
//	  rpc Registry(google.protobuf.Empty) returns (google.protobuf.Struct);
//	  rpc Decode(google.protobuf.BytesValue) returns (google.protobuf.Value);
//	  rpc Health(google.protobuf.Empty) returns (google.protobuf.StringValue);
//	}
type FrontendServer interface {
	Dispatch(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	Subscribe(*structpb.Struct, Frontend_SubscribeServer) error
	Ack(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	Registry(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Decode(context.Context, *wrapperspb.BytesValue) (*structpb.Value, error)
	Health(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error)
}

// UnimplementedFrontendServer can be embedded to have forward compatible implementations.
type UnimplementedFrontendServer struct{}

func (UnimplementedFrontendServer) Dispatch(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method Dispatch not implemented")
}
func (UnimplementedFrontendServer) Subscribe(*structpb.Struct, Frontend_SubscribeServer) error {
	return status.Error(codes.Unimplemented, "method Subscribe not implemented")
}
func (UnimplementedFrontendServer) Ack(context.Context, *structpb.Struct) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method Ack not implemented")
}
func (UnimplementedFrontendServer) Registry(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Registry not implemented")
}
func (UnimplementedFrontendServer) Decode(context.Context, *wrapperspb.BytesValue) (*structpb.Value, error) {
	return nil, status.Error(codes.Unimplemented, "method Decode not implemented")
}
func (UnimplementedFrontendServer) Health(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Health not implemented")
}

// RegisterFrontendServer registers the Frontend service on a gRPC server.
func RegisterFrontendServer(s grpc.ServiceRegistrar, srv FrontendServer) {
	s.RegisterService(&Frontend_ServiceDesc, srv)
}

const frontendService = "tinyssb.bridge.v1.Frontend"

// Frontend_SubscribeServer is the server side of the Subscribe stream.
type Frontend_SubscribeServer interface {
	Send(*structpb.Struct) error
	grpc.ServerStream
}

type frontendSubscribeServer struct{ grpc.ServerStream }

func (x *frontendSubscribeServer) Send(m *structpb.Struct) error { return x.ServerStream.SendMsg(m) }

// FrontendClient is the client API for the Frontend service.
type FrontendClient interface {
	Dispatch(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error)
	Subscribe(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (Frontend_SubscribeClient, error)
	Ack(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error)
	Registry(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	Decode(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*structpb.Value, error)
	Health(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
}

// Frontend_SubscribeClient is the client side of the Subscribe stream.
type Frontend_SubscribeClient interface {
	Recv() (*structpb.Struct, error)
	grpc.ClientStream
}

type frontendClient struct{ cc grpc.ClientConnInterface }

func NewFrontendClient(cc grpc.ClientConnInterface) FrontendClient { return &frontendClient{cc: cc} }

func (c *frontendClient) Dispatch(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, "/"+frontendService+"/Dispatch", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *frontendClient) Subscribe(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (Frontend_SubscribeClient, error) {
	stream, err := c.cc.NewStream(ctx, &Frontend_ServiceDesc.Streams[0], "/"+frontendService+"/Subscribe", opts...)
	if err != nil {
		return nil, err
	}
	x := &frontendSubscribeClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

type frontendSubscribeClient struct{ grpc.ClientStream }

func (x *frontendSubscribeClient) Recv() (*structpb.Struct, error) {
	m := new(structpb.Struct)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *frontendClient) Ack(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, "/"+frontendService+"/Ack", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *frontendClient) Registry(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+frontendService+"/Registry", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *frontendClient) Decode(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*structpb.Value, error) {
	out := new(structpb.Value)
	if err := c.cc.Invoke(ctx, "/"+frontendService+"/Decode", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *frontendClient) Health(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, "/"+frontendService+"/Health", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func _Frontend_Dispatch_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FrontendServer).Dispatch(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + frontendService + "/Dispatch"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(FrontendServer).Dispatch(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _Frontend_Subscribe_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := new(structpb.Struct)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(FrontendServer).Subscribe(m, &frontendSubscribeServer{stream})
}

func _Frontend_Ack_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FrontendServer).Ack(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + frontendService + "/Ack"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(FrontendServer).Ack(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _Frontend_Registry_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FrontendServer).Registry(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + frontendService + "/Registry"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(FrontendServer).Registry(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _Frontend_Decode_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FrontendServer).Decode(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + frontendService + "/Decode"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(FrontendServer).Decode(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _Frontend_Health_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FrontendServer).Health(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + frontendService + "/Health"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(FrontendServer).Health(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// Frontend_ServiceDesc is the grpc.ServiceDesc for the Frontend service.
var Frontend_ServiceDesc = grpc.ServiceDesc{
	ServiceName: frontendService,
	HandlerType: (*FrontendServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Dispatch", Handler: _Frontend_Dispatch_Handler},
		{MethodName: "Ack", Handler: _Frontend_Ack_Handler},
		{MethodName: "Registry", Handler: _Frontend_Registry_Handler},
		{MethodName: "Decode", Handler: _Frontend_Decode_Handler},
		{MethodName: "Health", Handler: _Frontend_Health_Handler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Subscribe", Handler: _Frontend_Subscribe_Handler, ServerStreams: true},
	},
	Metadata: "tinyssb/bridge/v1/frontend.proto",
}
