package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"

	"insafe-lab/pkg/logger"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestChecker_TracksDependencies(t *testing.T) {
	var failing bool
	dep := pingFunc(func(context.Context) error {
		if failing {
			return errors.New("connection refused")
		}
		return nil
	})

	srv := grpc.NewServer()
	c := RegisterHealthServer(srv, map[string]Pinger{"postgres": dep, "redis": nil}, logger.NewNop())
	ctx := context.Background()

	assert.True(t, c.Check(ctx))
	resp, err := c.server.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.Status)

	failing = true
	assert.False(t, c.Check(ctx))
	resp, err = c.server.Check(ctx, &grpc_health_v1.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, resp.Status)
}
