package testserver

import (
	"context"
	"math/rand/v2"
	"net"
	"net/http"
	"time"

	"github.com/oastrace/oastrace/apierrors"
)

// Config controls Probe's exponential-backoff retry loop while it waits
// for a launched TestServer to report healthy.
type Config struct {
	// MinBackoffDelay is the delay before the first retry.
	MinBackoffDelay time.Duration
	// MaxBackoffDelay caps how large the delay is allowed to grow.
	MaxBackoffDelay time.Duration
	// Jitter randomizes each delay to avoid every caller in a test suite
	// retrying in lockstep.
	Jitter bool
	// MaxRetryAttempts bounds the total number of probes before Probe
	// gives up and returns a HealthCheckError.
	MaxRetryAttempts int
}

// DefaultConfig is the retry budget assumed for a TestServer that does
// not implement Configurer.
func DefaultConfig() Config {
	return Config{
		MinBackoffDelay:  10 * time.Millisecond,
		MaxBackoffDelay:  time.Second,
		Jitter:           true,
		MaxRetryAttempts: 10,
	}
}

// Probe waits for srv to become healthy at addr: it calls srv's Health
// method if srv implements HealthChecker, or else does a bare TCP
// connection test, retrying with exponential backoff up to srv's
// configured retry budget (DefaultConfig unless srv implements
// Configurer). It returns nil as soon as a probe reports Healthy or
// Uncheckable-but-reachable, or a HealthCheckError once the retry budget
// is exhausted without either.
func Probe(ctx context.Context, addr string, srv TestServer, client *http.Client) error {
	cfg := DefaultConfig()
	if c, ok := srv.(Configurer); ok {
		cfg = c.Config()
	}
	if client == nil {
		client = http.DefaultClient
	}
	if cfg.MaxRetryAttempts <= 0 {
		cfg.MaxRetryAttempts = 1
	}

	start := time.Now()
	delay := cfg.MinBackoffDelay
	var lastErr error
	for attempt := 1; attempt <= cfg.MaxRetryAttempts; attempt++ {
		status, err := probeOnce(ctx, addr, srv, client)
		switch {
		case err != nil:
			lastErr = err
		case status == Healthy || status == Uncheckable:
			return nil
		}

		if attempt == cfg.MaxRetryAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(withJitter(delay, cfg.Jitter)):
		}
		delay *= 2
		if delay > cfg.MaxBackoffDelay {
			delay = cfg.MaxBackoffDelay
		}
	}

	return &apierrors.HealthCheckError{
		Attempts: cfg.MaxRetryAttempts,
		Elapsed:  time.Since(start).String(),
		Cause:    lastErr,
	}
}

func probeOnce(ctx context.Context, addr string, srv TestServer, client *http.Client) (HealthStatus, error) {
	if checker, ok := srv.(HealthChecker); ok {
		status, err := checker.Health(ctx, client)
		if err != nil || status != Uncheckable {
			return status, err
		}
	}
	return dialProbe(ctx, addr)
}

func dialProbe(ctx context.Context, addr string) (HealthStatus, error) {
	conn, err := (&net.Dialer{}).DialContext(ctx, "tcp", addr)
	if err != nil {
		return Unhealthy, err
	}
	conn.Close()
	return Healthy, nil
}

// withJitter randomizes d to somewhere in [d/2, 3d/2), which keeps the
// expected delay at d while avoiding every retrying caller waking on
// the same tick.
func withJitter(d time.Duration, jitter bool) time.Duration {
	if !jitter || d <= 0 {
		return d
	}
	return d/2 + time.Duration(rand.Int64N(int64(d)))
}
