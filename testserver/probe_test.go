package testserver_test

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oastrace/oastrace/apierrors"
	"github.com/oastrace/oastrace/testserver"
)

// neverHealthyServer implements HealthChecker but always reports Unhealthy,
// so Probe is forced to exhaust its retry budget.
type neverHealthyServer struct {
	attempts int
}

func (s *neverHealthyServer) Launch(_ net.Listener) error { return nil }

func (s *neverHealthyServer) Health(_ context.Context, _ *http.Client) (testserver.HealthStatus, error) {
	s.attempts++
	return testserver.Unhealthy, nil
}

func (s *neverHealthyServer) Config() testserver.Config {
	return testserver.Config{
		MinBackoffDelay:  time.Millisecond,
		MaxBackoffDelay:  5 * time.Millisecond,
		Jitter:           false,
		MaxRetryAttempts: 3,
	}
}

// healthyAfterServer implements Configurer/HealthChecker using a custom,
// fast retry budget and reports Healthy starting from its third probe.
type healthyAfterServer struct {
	attempts int
}

func (s *healthyAfterServer) Launch(_ net.Listener) error { return nil }

func (s *healthyAfterServer) Health(_ context.Context, _ *http.Client) (testserver.HealthStatus, error) {
	s.attempts++
	if s.attempts >= 3 {
		return testserver.Healthy, nil
	}
	return testserver.Unhealthy, nil
}

func (s *healthyAfterServer) Config() testserver.Config {
	return testserver.Config{
		MinBackoffDelay:  time.Millisecond,
		MaxBackoffDelay:  2 * time.Millisecond,
		Jitter:           true,
		MaxRetryAttempts: 10,
	}
}

func TestProbeExhaustsRetryBudget(t *testing.T) {
	srv := &neverHealthyServer{}
	err := testserver.Probe(context.Background(), "127.0.0.1:0", srv, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apierrors.ErrHealthCheck)

	var hcErr *apierrors.HealthCheckError
	require.ErrorAs(t, err, &hcErr)
	assert.Equal(t, 3, hcErr.Attempts)
	assert.Equal(t, 3, srv.attempts)
}

func TestProbeSucceedsOnceHealthy(t *testing.T) {
	srv := &healthyAfterServer{}
	err := testserver.Probe(context.Background(), "127.0.0.1:0", srv, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, srv.attempts)
}

func TestProbeRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	srv := &neverHealthyServer{}
	err := testserver.Probe(ctx, "127.0.0.1:0", srv, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
