package server

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-ordering-service/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const serviceName = "omnipos.ordering"

// NewProbeServer returns a gRPC server exposing grpc.health.v1 and
// reflection. The serving status follows the database.
func NewProbeServer(ctx context.Context, log logger.ZapLogger, db Pinger, interval time.Duration) *grpc.Server {
	srv := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	go watchHealth(ctx, log, db, hs, interval)
	return srv
}

func watchHealth(ctx context.Context, log logger.ZapLogger, db Pinger, hs *health.Server, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := healthpb.HealthCheckResponse_UNKNOWN
	for {
		status := healthpb.HealthCheckResponse_SERVING
		pingCtx, cancel := context.WithTimeout(ctx, interval)
		if err := db.PingContext(pingCtx); err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
			if last != status {
				log.Warn("database unreachable, reporting NOT_SERVING", zap.Error(err))
			}
		}
		cancel()

		if status != last {
			hs.SetServingStatus("", status)
			hs.SetServingStatus(serviceName, status)
			last = status
		}

		select {
		case <-ctx.Done():
			hs.Shutdown()
			return
		case <-ticker.C:
		}
	}
}
