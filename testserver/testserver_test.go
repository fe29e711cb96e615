package testserver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oastrace/oastrace/testserver"
)

func TestHealthStatusString(t *testing.T) {
	assert.Equal(t, "healthy", testserver.Healthy.String())
	assert.Equal(t, "unhealthy", testserver.Unhealthy.String())
	assert.Equal(t, "uncheckable", testserver.Uncheckable.String())
}
