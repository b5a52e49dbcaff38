package middlewarectx

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_EvictsIdleClients(t *testing.T) {
	clock := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	l := NewLimiter(0.2, 5)
	l.now = func() time.Time { return clock }
	require.Equal(t, time.Minute, l.idleTTL)

	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow(fmt.Sprintf("10.0.0.%d", i)))
	}
	assert.Len(t, l.visitors, 100)

	clock = clock.Add(30 * time.Second)
	assert.True(t, l.Allow("10.0.0.1"))

	clock = clock.Add(45 * time.Second)
	assert.True(t, l.Allow("192.168.1.1"))
	assert.Len(t, l.visitors, 2, "only clients seen within the idle window remain")
	assert.Contains(t, l.visitors, "10.0.0.1")
}

func TestLimiter_ExhaustedClientKeptWhileActive(t *testing.T) {
	clock := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	l := NewLimiter(0.2, 2)
	l.now = func() time.Time { return clock }

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))

	clock = clock.Add(2 * time.Second)
	assert.False(t, l.Allow("10.0.0.1"), "bucket state survives between calls")

	clock = clock.Add(5 * time.Second)
	assert.True(t, l.Allow("10.0.0.1"))
}

func TestIdleTTL(t *testing.T) {
	assert.Equal(t, time.Minute, idleTTL(10, 5))
	assert.Equal(t, 2000*time.Second, idleTTL(0.001, 2))
	assert.Equal(t, time.Hour, idleTTL(0, 5))
}
