// Package fetch defines the remote content fetch contracts: failure
// classification, session identities and the Fetcher/Factory interfaces the
// reconciliation engine consumes.
package fetch

import (
	"context"

	"github.com/oluwaseun-ajayi/postsync/internal/entity"
)

// Fetcher performs one fetch attempt for a canonical shortcode. Attempts are
// read-only against the remote source, so re-fetching is always safe.
type Fetcher interface {
	Fetch(ctx context.Context, shortcode string) (*entity.RawAttributes, error)
}

// Factory builds a Fetcher bound to an identity. Identity is a construction
// parameter rather than a fetch argument because it affects connection-level
// behavior.
type Factory interface {
	New(identity Identity) (Fetcher, error)
}
