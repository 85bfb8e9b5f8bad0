package clock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gantryci/gantry/internal/clock"
)

func TestRealClock_Now(t *testing.T) {
	c := clock.RealClock{}
	before := time.Now()
	got := c.Now()
	after := time.Now()

	assert.False(t, got.Before(before), "Now should not be before the call")
	assert.False(t, got.After(after), "Now should not be after the return")
}

func TestFixed_Now(t *testing.T) {
	instant := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := clock.Fixed{T: instant}

	assert.Equal(t, instant, c.Now())
	assert.Equal(t, instant, c.Now(), "fixed clock never advances")
}
