package retry

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/oluwaseun-ajayi/postsync/internal/fetch"
)

func testPolicy() *Policy {
	return New(5, 60*time.Second, 2*time.Second, time.Second, 3*time.Second, rand.New(rand.NewSource(1)))
}

func TestNextTerminalKindsNeverRetry(t *testing.T) {
	p := testPolicy()
	for _, kind := range []fetch.FailureKind{fetch.KindNotFound, fetch.KindAccessDenied} {
		d := p.Next(1, kind)
		assert.False(t, d.Retry, "kind %s", kind)
	}
}

func TestNextCeilingStopsRetries(t *testing.T) {
	p := testPolicy()

	d := p.Next(4, fetch.KindTransient)
	assert.True(t, d.Retry)

	d = p.Next(5, fetch.KindTransient)
	assert.False(t, d.Retry)

	// The ceiling applies to rate limiting as well.
	d = p.Next(5, fetch.KindRateLimited)
	assert.False(t, d.Retry)
}

func TestNextRateLimitedUsesFixedCooldown(t *testing.T) {
	p := testPolicy()
	for attempt := 1; attempt < 5; attempt++ {
		d := p.Next(attempt, fetch.KindRateLimited)
		assert.True(t, d.Retry)
		assert.True(t, d.RotateIdentity)
		assert.Equal(t, 60*time.Second, d.Delay)
	}
}

func TestNextTransientDelayGrowsWithAttempt(t *testing.T) {
	p := testPolicy()
	var prev time.Duration
	for attempt := 1; attempt < 5; attempt++ {
		d := p.Next(attempt, fetch.KindTransient)
		assert.True(t, d.Retry)
		assert.True(t, d.RotateIdentity)

		base := 2 * time.Second * time.Duration(attempt+1)
		assert.GreaterOrEqual(t, d.Delay, base+time.Second)
		assert.Less(t, d.Delay, base+3*time.Second)
		assert.Greater(t, d.Delay, prev-3*time.Second)
		prev = d.Delay
	}
}

func TestJitterDegeneratesToFixedValue(t *testing.T) {
	p := New(5, time.Minute, 2*time.Second, time.Second, time.Second, rand.New(rand.NewSource(1)))
	d := p.Next(1, fetch.KindTransient)
	assert.Equal(t, 4*time.Second+time.Second, d.Delay)
}
