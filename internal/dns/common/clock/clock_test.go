package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRealClock(t *testing.T) {
	before := time.Now()
	now := RealClock{}.Now()
	after := time.Now()
	assert.False(t, now.Before(before))
	assert.False(t, now.After(after))
}

func TestMockClock(t *testing.T) {
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c := NewMockClock(fixed)
	assert.Equal(t, fixed, c.Now())

	c.Advance(90 * time.Second)
	assert.Equal(t, fixed.Add(90*time.Second), c.Now())

	c.Advance(-time.Hour)
	assert.Equal(t, fixed.Add(90*time.Second-time.Hour), c.Now())
}
