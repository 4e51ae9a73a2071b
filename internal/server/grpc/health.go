package grpcserver

import (
	"context"

	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func (f *frontendSvc) Health(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.StringValue, error) {
	if err := f.rt.CheckHealth(ctx); err != nil {
		return wrapperspb.String("not_serving"), nil
	}
	return wrapperspb.String("ok"), nil
}
