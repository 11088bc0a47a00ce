package health

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"

	zapLogger "github.com/nastyazhadan/order-gateway/shared/interceptors/logger/zap"
)

const watchInterval = 5 * time.Second

// Check reports a dependency failure, nil when it is healthy.
type Check func(ctx context.Context) error

type Server struct {
	grpc_health_v1.UnimplementedHealthServer

	checks map[string]Check
}

func NewServer(checks map[string]Check) *Server {
	return &Server{checks: checks}
}

func (s *Server) Check(
	ctx context.Context,
	request *grpc_health_v1.HealthCheckRequest,
) (*grpc_health_v1.HealthCheckResponse, error) {
	return &grpc_health_v1.HealthCheckResponse{
		Status: s.status(ctx),
	}, nil
}

// Watch streams the status every watchInterval until the client goes away.
func (s *Server) Watch(
	request *grpc_health_v1.HealthCheckRequest,
	stream grpc_health_v1.Health_WatchServer) error {
	ctx := stream.Context()
	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for {
		if err := stream.Send(&grpc_health_v1.HealthCheckResponse{Status: s.status(ctx)}); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// status pings every dependency concurrently; any failure means NOT_SERVING.
func (s *Server) status(ctx context.Context) grpc_health_v1.HealthCheckResponse_ServingStatus {
	group, groupCtx := errgroup.WithContext(ctx)

	for name, check := range s.checks {
		group.Go(func() error {
			if err := check(groupCtx); err != nil {
				zapLogger.Warn(ctx, "health check failed",
					zap.String("dependency", name),
					zap.Error(err),
				)
				return err
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}

	return grpc_health_v1.HealthCheckResponse_SERVING
}

func RegisterService(server *grpc.Server, checks map[string]Check) {
	grpc_health_v1.RegisterHealthServer(server, NewServer(checks))
}
