package logger

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	zapLogger "github.com/nastyazhadan/order-gateway/shared/interceptors/logger/zap"
)

// LoggerInterceptor writes one line per unary call. Failures the caller can
// fix are logged at info, server faults at warn.
func LoggerInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		request interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		startTime := time.Now()
		response, err := handler(ctx, request)

		code := status.Code(err)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", code.String()),
			zap.Duration("duration", time.Since(startTime)),
		}

		switch code {
		case codes.OK:
			zapLogger.Debug(ctx, "gRPC call finished", fields...)
		case codes.InvalidArgument, codes.NotFound, codes.AlreadyExists,
			codes.PermissionDenied, codes.Unauthenticated, codes.Canceled:
			zapLogger.Info(ctx, "gRPC call rejected", append(fields, zap.Error(err))...)
		default:
			zapLogger.Warn(ctx, "gRPC call failed", append(fields, zap.Error(err))...)
		}

		return response, err
	}
}
