package entity

import (
	"time"

	"github.com/oluwaseun-ajayi/postsync/constants"
)

// Job represents one row of the job sheet for data transfer between layers.
// The row itself is owned by the store; the engine only ever transitions
// Status and refreshes Attributes, AttemptCount and LastUpdated.
type Job struct {
	RawReference string              `json:"raw_reference"`
	CanonicalID  *string             `json:"canonical_id,omitempty"`
	Attributes   *AttributeSet       `json:"attributes,omitempty"`
	Status       constants.JobStatus `json:"status"`
	AttemptCount int                 `json:"attempt_count"`
	LastUpdated  time.Time           `json:"last_updated"`
}

// ClearResult drops any previously recorded outcome so a failed or partial
// update can never masquerade as fresh data.
func (j *Job) ClearResult() {
	j.CanonicalID = nil
	j.Attributes = nil
}
