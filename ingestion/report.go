package ingestion

import "github.com/poiesic/recallit/core"

// UnitFailure records one retrieval unit that could not be written.
type UnitFailure struct {
	ChunkID string
	Err     error
}

// Report summarizes the ingestion of a single transcript. Per-unit
// failures are collected here rather than aborting the batch, so a
// transcript is never half-lost to one bad embedding call.
type Report struct {
	ChatID       string
	Label        core.AccessibilityLabel
	Confidence   float64
	TurnCount    int
	UnitsTotal   int
	UnitsWritten int
	UnitsSkipped int
	Failures     []UnitFailure
}

// Failed reports whether any unit was lost.
func (r *Report) Failed() bool {
	return len(r.Failures) > 0
}
