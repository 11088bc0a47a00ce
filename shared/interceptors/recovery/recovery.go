package recovery

import (
	"context"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	zapLogger "github.com/nastyazhadan/order-gateway/shared/interceptors/logger/zap"
)

// Unary converts a handler panic into codes.Internal.
func Unary(
	ctx context.Context,
	request interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (response interface{}, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}

		zapLogger.Error(ctx, "panic recovered in gRPC handler",
			zap.String("method", info.FullMethod),
			zap.Any("panic", r),
			zap.Stack("stack"),
		)

		response, err = nil, status.Error(codes.Internal, "internal error")
	}()

	return handler(ctx, request)
}
