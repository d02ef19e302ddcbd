// Package retry decides what happens after a failed fetch attempt: whether
// to try again, how long to wait, and whether to rotate the fetch identity.
package retry

import (
	"math/rand"
	"time"

	"github.com/oluwaseun-ajayi/postsync/internal/fetch"
)

// Decision is the policy's verdict for one failed attempt.
type Decision struct {
	Retry          bool
	Delay          time.Duration
	RotateIdentity bool
}

// Policy is a pure function of (attempt, failure kind) apart from jitter,
// which comes from an injected rng so tests stay deterministic.
type Policy struct {
	MaxAttempts       int           // per-job attempt ceiling
	RateLimitCooldown time.Duration // fixed wait on RATE_LIMITED
	BaseDelay         time.Duration // transient delay grows with the attempt
	JitterMin         time.Duration
	JitterMax         time.Duration

	rng *rand.Rand
}

// New builds a policy. A nil rng means time-seeded jitter.
func New(maxAttempts int, cooldown, baseDelay, jitterMin, jitterMax time.Duration, rng *rand.Rand) *Policy {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Policy{
		MaxAttempts:       maxAttempts,
		RateLimitCooldown: cooldown,
		BaseDelay:         baseDelay,
		JitterMin:         jitterMin,
		JitterMax:         jitterMax,
		rng:               rng,
	}
}

// Next decides what to do after attempt (1-indexed within the current job's
// fetch loop) failed with the given kind. Terminal kinds and an exhausted
// ceiling both stop the loop; every retry after the first attempt rotates
// the fetch identity.
func (p *Policy) Next(attempt int, kind fetch.FailureKind) Decision {
	if kind.Terminal() {
		return Decision{}
	}
	if attempt >= p.MaxAttempts {
		return Decision{}
	}
	if kind == fetch.KindRateLimited {
		return Decision{Retry: true, Delay: p.RateLimitCooldown, RotateIdentity: true}
	}
	return Decision{
		Retry:          true,
		Delay:          p.BaseDelay*time.Duration(attempt+1) + p.jitter(),
		RotateIdentity: true,
	}
}

// jitter spreads retries so periodic invocations do not synchronize against
// the remote source.
func (p *Policy) jitter() time.Duration {
	if p.JitterMax <= p.JitterMin {
		return p.JitterMin
	}
	return p.JitterMin + time.Duration(p.rng.Int63n(int64(p.JitterMax-p.JitterMin)))
}
