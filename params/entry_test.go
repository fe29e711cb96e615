package params_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oastrace/oastrace/params"
)

func TestQueryParamsPreservesInsertionOrder(t *testing.T) {
	q := params.NewQueryParams()
	q.Put(params.Entry{Name: "b", WireValue: "2"})
	q.Put(params.Entry{Name: "a", WireValue: "1"})

	assert.Equal(t, []string{"b", "a"}, q.Names())
}

func TestContainerPutReplacesNotAppends(t *testing.T) {
	q := params.NewQueryParams()
	q.Put(params.Entry{Name: "status", WireValue: "open"})
	q.Put(params.Entry{Name: "status", WireValue: "closed"})

	assert.Equal(t, 1, q.Len())
	e, ok := q.Get("status")
	require.True(t, ok)
	assert.Equal(t, "closed", e.WireValue)
}

func TestHeaderParamsRejectsInvalidToken(t *testing.T) {
	h := params.NewHeaderParams()
	err := h.Put(params.Entry{Name: "X Invalid Header", WireValue: "v"})
	require.Error(t, err)
}

func TestHeaderParamsRejectsCRLFInValue(t *testing.T) {
	h := params.NewHeaderParams()
	err := h.Put(params.Entry{Name: "X-Trace", WireValue: "a\r\nb"})
	require.Error(t, err)
}

func TestHeaderParamsApplyToHTTPHeaderSortedAndCanonical(t *testing.T) {
	h := params.NewHeaderParams()
	require.NoError(t, h.Put(params.Entry{Name: "x-trace", WireValue: "abc"}))
	require.NoError(t, h.Put(params.Entry{Name: "authorization", WireValue: "Bearer xyz"}))

	hdr := http.Header{}
	h.ApplyToHTTPHeader(hdr)

	assert.Equal(t, "abc", hdr.Get("X-Trace"))
	assert.Equal(t, "Bearer xyz", hdr.Get("Authorization"))
}

func TestCookieParamsHeaderJoinsAndEncodes(t *testing.T) {
	c := params.NewCookieParams()
	c.Put(params.Entry{Name: "session", WireValue: "abc 123"})
	c.Put(params.Entry{Name: "theme", WireValue: "dark"})

	assert.Equal(t, "session=abc%20123; theme=dark", c.Header())
}

func TestPathParamsBasicPut(t *testing.T) {
	p := params.NewPathParams()
	p.Put(params.Entry{Name: "petId", WireValue: "42", Required: true})

	e, ok := p.Get("petId")
	require.True(t, ok)
	assert.True(t, e.Required)
	assert.Equal(t, "42", e.WireValue)
}
