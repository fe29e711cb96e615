package statuscodes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oastrace/oastrace/statuscodes"
)

func TestDefaultIsExclusive200To500(t *testing.T) {
	e := statuscodes.Default()
	assert.True(t, e.Contains(200))
	assert.True(t, e.Contains(404))
	assert.True(t, e.Contains(499))
	assert.False(t, e.Contains(500))
	assert.False(t, e.Contains(199))
}

func TestAddSingleAndRanges(t *testing.T) {
	e := statuscodes.New().AddSingle(201).AddInclusiveRange(400, 404)

	assert.True(t, e.Contains(201))
	assert.True(t, e.Contains(400))
	assert.True(t, e.Contains(404))
	assert.False(t, e.Contains(405))
	assert.False(t, e.Contains(200))
}

func TestAddExclusiveRange(t *testing.T) {
	e := statuscodes.New().AddExclusiveRange(500, 600)
	assert.True(t, e.Contains(500))
	assert.True(t, e.Contains(599))
	assert.False(t, e.Contains(600))
}

func TestMustValidCodePanicsOutsideRange(t *testing.T) {
	assert.Panics(t, func() {
		statuscodes.New().AddSingle(99)
	})
	assert.Panics(t, func() {
		statuscodes.New().AddSingle(600)
	})
}

func TestStringRendersRanges(t *testing.T) {
	e := statuscodes.New().AddSingle(404).AddInclusiveRange(200, 299)
	s := e.String()
	assert.Contains(t, s, "404")
	assert.Contains(t, s, "200..=299")
}
