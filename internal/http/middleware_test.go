package http

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPLimiter_EvictsIdleClients(t *testing.T) {
	clock := time.Date(2025, 2, 10, 9, 0, 0, 0, time.UTC)

	l := newIPLimiter(60)
	l.now = func() time.Time { return clock }
	l.lastSweep = clock

	for i := range limiterSweepSize {
		l.get(fmt.Sprintf("10.0.%d.%d", i/256, i%256))
	}

	require.Len(t, l.visitors, limiterSweepSize)

	// A client seen recently survives the sweep.
	clock = clock.Add(30 * time.Second)
	l.get("10.0.0.1")

	clock = clock.Add(45 * time.Second)
	l.get("192.168.1.1")

	assert.Len(t, l.visitors, 2)
	assert.Contains(t, l.visitors, "10.0.0.1")
	assert.Contains(t, l.visitors, "192.168.1.1")
}

func TestIPLimiter_NoSweepBelowThreshold(t *testing.T) {
	clock := time.Date(2025, 2, 10, 9, 0, 0, 0, time.UTC)

	l := newIPLimiter(60)
	l.now = func() time.Time { return clock }

	l.get("10.0.0.1")

	clock = clock.Add(time.Hour)
	l.get("10.0.0.2")

	assert.Len(t, l.visitors, 2)
}

func TestIPLimiter_KeepsBucketState(t *testing.T) {
	l := newIPLimiter(2)

	assert.True(t, l.get("10.0.0.1").Allow())
	assert.True(t, l.get("10.0.0.1").Allow())
	assert.False(t, l.get("10.0.0.1").Allow())
	assert.True(t, l.get("10.0.0.2").Allow())
}
