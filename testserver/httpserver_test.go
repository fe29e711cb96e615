package testserver_test

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oastrace/oastrace/testserver"
)

func listen(t *testing.T) net.Listener {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	return ln
}

func TestHTTPHandlerServerHealthyViaHealthPath(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := testserver.NewHTTPHandlerServer(mux, "/health")
	ln := listen(t)

	done := make(chan error, 1)
	go func() { done <- srv.Launch(ln) }()
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
		<-done
	})

	err := testserver.Probe(context.Background(), ln.Addr().String(), srv, nil)
	require.NoError(t, err)
}

func TestHTTPHandlerServerUncheckableWithoutHealthPath(t *testing.T) {
	mux := http.NewServeMux()
	srv := testserver.NewHTTPHandlerServer(mux, "")
	ln := listen(t)

	done := make(chan error, 1)
	go func() { done <- srv.Launch(ln) }()
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
		<-done
	})

	status, err := srv.Health(context.Background(), http.DefaultClient)
	require.NoError(t, err)
	require.Equal(t, testserver.Uncheckable, status)

	err = testserver.Probe(context.Background(), ln.Addr().String(), srv, nil)
	require.NoError(t, err)
}

func TestHTTPHandlerServerUnhealthyUntilReady(t *testing.T) {
	ready := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		select {
		case <-ready:
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	})

	srv := testserver.NewHTTPHandlerServer(mux, "/health")
	ln := listen(t)

	done := make(chan error, 1)
	go func() { done <- srv.Launch(ln) }()
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
		<-done
	})

	time.AfterFunc(20*time.Millisecond, func() { close(ready) })

	err := testserver.Probe(context.Background(), ln.Addr().String(), srv, nil)
	require.NoError(t, err)
}
