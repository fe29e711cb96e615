package redact_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oastrace/oastrace/redact"
)

func TestApplyRedactsMatchedField(t *testing.T) {
	pattern, err := redact.Compile("$.password")
	require.NoError(t, err)
	list := redact.NewWashList(pattern)

	doc := map[string]any{"username": "fido", "password": "hunter2"}
	out := list.Apply(doc)

	m, ok := out.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "***REDACTED***", m["password"])
	assert.Equal(t, "fido", m["username"])
}

func TestApplyNilWashListIsNoop(t *testing.T) {
	var list *redact.WashList
	doc := map[string]any{"password": "hunter2"}
	out := list.Apply(doc)
	assert.Equal(t, "hunter2", out.(map[string]any)["password"])
}

func TestMustCompilePanicsOnInvalidExpression(t *testing.T) {
	assert.Panics(t, func() {
		redact.MustCompile("[[[not valid")
	})
}

func TestLenReportsPatternCount(t *testing.T) {
	p1, _ := redact.Compile("$.password")
	p2, _ := redact.Compile("$.token")
	list := redact.NewWashList(p1, p2)
	assert.Equal(t, 2, list.Len())

	var nilList *redact.WashList
	assert.Equal(t, 0, nilList.Len())
}
