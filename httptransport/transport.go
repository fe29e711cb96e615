// Package httptransport defines the Transport interface ApiCall consumes
// to perform the actual HTTP exchange, plus a default net/http-backed
// implementation. The stdlib client is the idiomatic, ecosystem-standard
// choice here; no third-party HTTP client replaces it.
package httptransport

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/oastrace/oastrace/apierrors"
)

// Request is everything ApiCall has resolved about one HTTP exchange by
// the time it reaches the transport: method, absolute URL, headers
// (including cookies, already folded into the Cookie header by params),
// and the request body bytes.
type Request struct {
	Method  string
	URL     string
	Headers http.Header
	Body    []byte
}

// Response is the transport's raw reply: status code, headers, and the
// fully-read body bytes. Streaming responses are not supported — spec §6
// explicitly does not require it.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Transport is the consumed collaborator spec §6 names: "send(method,
// url, headers, body_bytes) -> (status, headers, body_bytes)".
type Transport interface {
	Send(ctx context.Context, req Request) (*Response, error)
}

// StdlibTransport is the default Transport, backed directly by
// net/http.Client, grounded on the teacher's own direct use of net/http
// for its router/server plumbing (builder/server_router_stdlib.go).
type StdlibTransport struct {
	Client *http.Client
}

// NewStdlibTransport builds a StdlibTransport. If client is nil,
// http.DefaultClient is used.
func NewStdlibTransport(client *http.Client) *StdlibTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &StdlibTransport{Client: client}
}

// Send implements Transport.
func (t *StdlibTransport) Send(ctx context.Context, req Request) (*Response, error) {
	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, &apierrors.TransportError{Method: req.Method, URL: req.URL, Cause: err}
	}
	for key, values := range req.Headers {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	resp, err := t.Client.Do(httpReq)
	if err != nil {
		return nil, &apierrors.TransportError{Method: req.Method, URL: req.URL, Cause: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apierrors.TransportError{Method: req.Method, URL: req.URL, Cause: err}
	}

	return &Response{StatusCode: resp.StatusCode, Headers: resp.Header, Body: data}, nil
}
