package health

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"insafe-lab/pkg/logger"
)

// ServiceName is the fully-qualified name reported alongside the overall status
const ServiceName = "insafe.v1.ScanService"

// Pinger is a dependency whose reachability gates the serving status
type Pinger interface {
	Ping(ctx context.Context) error
}

// Checker keeps the gRPC health status in sync with the backing stores
type Checker struct {
	server   *health.Server
	deps     map[string]Pinger
	interval time.Duration
	logger   *logger.Logger
}

// RegisterHealthServer registers the gRPC health check service. Nil
// dependencies are skipped; the service degrades to in-memory storage without them.
func RegisterHealthServer(grpcServer *grpc.Server, deps map[string]Pinger, log *logger.Logger) *Checker {
	c := &Checker{
		server:   health.NewServer(),
		deps:     make(map[string]Pinger, len(deps)),
		interval: 10 * time.Second,
		logger:   log.WithComponent("grpc-health"),
	}
	for name, dep := range deps {
		if dep != nil {
			c.deps[name] = dep
		}
	}

	c.set(grpc_health_v1.HealthCheckResponse_SERVING)
	grpc_health_v1.RegisterHealthServer(grpcServer, c.server)
	return c
}

// Run re-checks dependencies until ctx is cancelled
func (c *Checker) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		c.Check(ctx)
		select {
		case <-ctx.Done():
			c.server.Shutdown()
			return
		case <-ticker.C:
		}
	}
}

// Check pings every dependency once and updates the serving status
func (c *Checker) Check(ctx context.Context) bool {
	healthy := true
	for name, dep := range c.deps {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := dep.Ping(pingCtx)
		cancel()
		if err != nil {
			healthy = false
			c.logger.Warn().Err(err).Str("dependency", name).Msg("health check failed")
		}
	}

	if healthy {
		c.set(grpc_health_v1.HealthCheckResponse_SERVING)
	} else {
		c.set(grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	}
	return healthy
}

func (c *Checker) set(status grpc_health_v1.HealthCheckResponse_ServingStatus) {
	c.server.SetServingStatus("", status)
	c.server.SetServingStatus(ServiceName, status)
}
