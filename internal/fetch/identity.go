package fetch

import (
	"math/rand"

	"github.com/google/uuid"
)

// Identity is one fetch-session configuration. The remote source throttles
// per identity, so rotating it between retries reduces the chance of hitting
// the same throttle window twice.
type Identity struct {
	UserAgent  string
	SessionTag string
}

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36",
}

// DefaultIdentity is the session used for every first attempt.
func DefaultIdentity() Identity {
	return Identity{UserAgent: userAgents[0], SessionTag: "default"}
}

// RandomIdentity builds a fresh identity for a retry attempt. The rng is
// injected so rotation is reproducible in tests.
func RandomIdentity(rng *rand.Rand) Identity {
	return Identity{
		UserAgent:  userAgents[rng.Intn(len(userAgents))],
		SessionTag: uuid.NewString(),
	}
}
