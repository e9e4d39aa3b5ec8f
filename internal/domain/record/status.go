package record

import "time"

// IndexState tracks embedding progress for a record. Metadata writes are
// acknowledged before embedding completes, so readers can observe a record
// that is searchable lexically but not yet (or never) semantically.
type IndexState string

const (
	// StateQueued means the record awaits embedding.
	StateQueued IndexState = "queued"
	// StateProcessing means embedding is in flight.
	StateProcessing IndexState = "processing"
	// StateIndexed means the vector is stored.
	StateIndexed IndexState = "indexed"
	// StateFailed means embedding or vector storage failed.
	StateFailed IndexState = "failed"
)

// IndexStatus is the per-record indexing state row.
type IndexStatus struct {
	Tenant    string
	Name      string
	State     IndexState
	Error     string
	Retries   int
	UpdatedAt time.Time
}
