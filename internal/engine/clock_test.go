package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSystemClock_UTC(t *testing.T) {
	now := SystemClock{}.Now()
	assert.Equal(t, time.UTC, now.Location())
}

func TestSystemClock_Monotonicish(t *testing.T) {
	c := SystemClock{}
	a := c.Now()
	b := c.Now()
	assert.False(t, b.Before(a))
}
