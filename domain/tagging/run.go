package tagging

import (
	"flavortag/domain/core"
)

// EvaluationRun records one complete tagging evaluation: the bootstrap
// performance distributions plus their reduced report, for later
// comparison across taggers and datasets.
type EvaluationRun struct {
	ID        core.RunID
	Name      string
	CreatedAt core.Timestamp

	Events int // distinct events evaluated
	Tracks int // contributing tracks

	D2Samples  []float64 // per-trial bootstrap D2
	AUCSamples []float64 // per-trial bootstrap AUC

	Report TaggingReport
}
