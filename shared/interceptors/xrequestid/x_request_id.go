package xrequestid

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	zapLogger "github.com/nastyazhadan/order-gateway/shared/interceptors/logger/zap"
)

// HeaderKey names the request id in gRPC metadata and kafka headers.
const HeaderKey = "x-request-id"

// Ensure stores requestID in ctx, generating a fresh one when it is empty.
func Ensure(ctx context.Context, requestID string) (context.Context, string) {
	if requestID == "" {
		requestID = uuid.New().String()
	}

	return zapLogger.ContextWithTraceID(ctx, requestID), requestID
}

func Server(
	ctx context.Context,
	request interface{},
	_ *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (interface{}, error) {
	requestID := ""

	if meta, found := metadata.FromIncomingContext(ctx); found {
		if values := meta.Get(HeaderKey); len(values) > 0 {
			requestID = values[0]
		}
	}

	ctx, requestID = Ensure(ctx, requestID)

	// Fails outside a live server stream.
	_ = grpc.SetHeader(ctx, metadata.Pairs(HeaderKey, requestID))

	return handler(ctx, request)
}
