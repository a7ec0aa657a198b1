package ratelimiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedWindowLimiter(t *testing.T) {
	rl := NewFixedWindowLimiter(3, 50*time.Millisecond)

	for i := 0; i < 3; i++ {
		ok, _ := rl.Allow("1.2.3.4")
		assert.True(t, ok)
	}

	ok, retry := rl.Allow("1.2.3.4")
	assert.False(t, ok)
	assert.Greater(t, retry, time.Duration(0))

	// other keys have their own budget
	ok, _ = rl.Allow("5.6.7.8")
	assert.True(t, ok)

	time.Sleep(60 * time.Millisecond)
	ok, _ = rl.Allow("1.2.3.4")
	assert.True(t, ok, "window reset should clear the count")
}
