package constants

// JobStatus is the canonical processing status for rows in the job sheet.
type JobStatus string

// Stable values (store these exact strings in the sheet/DB).
const (
	JobStatusPending     JobStatus = "PENDING"            // not yet processed
	JobStatusInProgress  JobStatus = "IN_PROGRESS"        // fetch underway
	JobStatusSuccess     JobStatus = "SUCCESS"            // attributes populated
	JobStatusInvalid     JobStatus = "FAILED_INVALID"     // reference could not be parsed
	JobStatusUnavailable JobStatus = "FAILED_UNAVAILABLE" // remote says gone or forbidden
	JobStatusExhausted   JobStatus = "FAILED_EXHAUSTED"   // retry budget consumed
)

// NeedsProcessing reports whether a row with this status should be picked up
// on the next engine pass. Everything short of SUCCESS is retried.
func (s JobStatus) NeedsProcessing() bool {
	return s != JobStatusSuccess
}

// CanonicalizeStatus maps a raw status cell to a known JobStatus. Unknown or
// empty values (including rows written by older sheet layouts) count as
// PENDING so they are picked up rather than silently skipped.
func CanonicalizeStatus(raw string) JobStatus {
	switch JobStatus(raw) {
	case JobStatusPending, JobStatusInProgress, JobStatusSuccess,
		JobStatusInvalid, JobStatusUnavailable, JobStatusExhausted:
		return JobStatus(raw)
	default:
		return JobStatusPending
	}
}
