package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIDUniqueness(t *testing.T) {
	seen := make(map[ID]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		assert.False(t, id.IsEmpty())
		assert.False(t, seen[id], "duplicate ID generated")
		seen[id] = true
	}
}

func TestParseRunID(t *testing.T) {
	id, err := ParseRunID("run-123")
	assert.NoError(t, err)
	assert.Equal(t, "run-123", id.String())

	_, err = ParseRunID("   ")
	assert.Error(t, err)
}

func TestTimestamp(t *testing.T) {
	var zero Timestamp
	assert.True(t, zero.IsZero())

	earlier := Now()
	later := Now()
	assert.False(t, later.Before(earlier))
	assert.False(t, earlier.IsZero())
}
