package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedClock_Advances(t *testing.T) {
	c := NewFixedClock(Epoch, time.Minute)

	assert.Equal(t, Epoch, c.Now())
	assert.Equal(t, Epoch.Add(time.Minute), c.Now())
	assert.Equal(t, Epoch.Add(2*time.Minute), c.Now())
}

func TestFixedClock_ZeroStepFreezes(t *testing.T) {
	c := NewFixedClock(Epoch, 0)

	assert.Equal(t, Epoch, c.Now())
	assert.Equal(t, Epoch, c.Now())
}

func TestFixedClock_Set(t *testing.T) {
	c := NewEpochClock()
	later := Epoch.Add(time.Hour)

	c.Set(later)
	assert.Equal(t, later, c.Now())
}

func TestFixedClock_UTC(t *testing.T) {
	loc := time.FixedZone("PST", -8*3600)
	c := NewFixedClock(time.Date(2024, 1, 1, 0, 0, 0, 0, loc), time.Second)

	assert.Equal(t, time.UTC, c.Now().Location())
}

func TestNewEpochClock(t *testing.T) {
	c := NewEpochClock()

	first := c.Now()
	second := c.Now()

	assert.Equal(t, Epoch, first)
	assert.Equal(t, time.Second, second.Sub(first))
}
