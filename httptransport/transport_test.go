package httptransport_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oastrace/oastrace/apierrors"
	"github.com/oastrace/oastrace/httptransport"
)

func TestSendRoundTripsMethodHeadersAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "v1", r.Header.Get("X-Test"))
		body := make([]byte, r.ContentLength)
		_, _ = r.Body.Read(body)
		assert.Equal(t, `{"ok":true}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":1}`))
	}))
	defer srv.Close()

	transport := httptransport.NewStdlibTransport(nil)
	resp, err := transport.Send(context.Background(), httptransport.Request{
		Method:  "POST",
		URL:     srv.URL,
		Headers: http.Header{"X-Test": []string{"v1"}},
		Body:    []byte(`{"ok":true}`),
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Headers.Get("Content-Type"))
	assert.Equal(t, `{"id":1}`, string(resp.Body))
}

func TestSendWrapsDialFailureAsTransportError(t *testing.T) {
	transport := httptransport.NewStdlibTransport(nil)
	_, err := transport.Send(context.Background(), httptransport.Request{
		Method: "GET",
		URL:    "http://127.0.0.1:0/unreachable",
	})
	require.Error(t, err)

	var transportErr *apierrors.TransportError
	require.ErrorAs(t, err, &transportErr)
}

func TestSendWrapsMalformedRequest(t *testing.T) {
	transport := httptransport.NewStdlibTransport(nil)
	_, err := transport.Send(context.Background(), httptransport.Request{
		Method: "BAD METHOD",
		URL:    "http://example.com",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apierrors.ErrTransport)
}
