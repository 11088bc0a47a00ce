package recovery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	zapLogger "github.com/nastyazhadan/order-gateway/shared/interceptors/logger/zap"
)

func TestUnary(t *testing.T) {
	zapLogger.SetNopLogger()
	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

	response, err := Unary(context.Background(), "req", info, func(ctx context.Context, request interface{}) (interface{}, error) {
		return "ok", nil
	})
	assert.NoError(t, err)
	assert.Equal(t, "ok", response)

	_, err = Unary(context.Background(), "req", info, func(ctx context.Context, request interface{}) (interface{}, error) {
		panic("boom")
	})
	assert.Equal(t, codes.Internal, status.Code(err))
}
