package tagging

import (
	"math"

	"flavortag/internal/errors"
)

// TaggingData is the canonical labeled, weighted sample set fed to
// calibration. Slices are parallel: element i describes one scored item
// (a track or an event). GroupID is optional; when present, samples
// sharing a group id must stay together across fold splits.
type TaggingData struct {
	Scores  []float64 // raw classifier output in [0,1]
	Labels  []float64 // ground truth; binarized by a threshold downstream
	Weights []float64 // non-negative sWeights
	GroupID []float64 // optional event membership, empty = ungrouped
}

// Len returns the number of samples
func (d *TaggingData) Len() int {
	return len(d.Scores)
}

// Grouped reports whether group-aware splitting applies
func (d *TaggingData) Grouped() bool {
	return len(d.GroupID) > 0
}

// Validate fails fast on shape and domain violations before any computation
func (d *TaggingData) Validate() error {
	n := len(d.Scores)
	if n == 0 {
		return errors.InvalidInput("empty sample set")
	}
	if len(d.Labels) != n {
		return errors.ShapeMismatch("labels", n, len(d.Labels))
	}
	if len(d.Weights) != n {
		return errors.ShapeMismatch("weights", n, len(d.Weights))
	}
	if len(d.GroupID) != 0 && len(d.GroupID) != n {
		return errors.ShapeMismatch("group ids", n, len(d.GroupID))
	}
	for i := 0; i < n; i++ {
		if math.IsNaN(d.Scores[i]) {
			return errors.InvalidInput("score contains NaN")
		}
		if d.Weights[i] < 0 || math.IsNaN(d.Weights[i]) {
			return errors.InvalidInput("weights must be non-negative")
		}
	}
	return nil
}

// BinarizeLabels maps raw labels to {0,1} using a threshold: 1 iff label > threshold
func (d *TaggingData) BinarizeLabels(threshold float64) []float64 {
	out := make([]float64, len(d.Labels))
	for i, v := range d.Labels {
		if v > threshold {
			out[i] = 1
		}
	}
	return out
}

// CalibrationResult is the fixed-shape outcome of a two-fold
// cross-calibration. Probs is aligned to the input sample order.
type CalibrationResult struct {
	Probs []float64 // out-of-sample calibrated probabilities in [0,1]
	D2    float64   // weighted mean of (1-2p)^2 over all samples

	// The two fold-local calibrators, retained for inspection.
	// FoldA scored fold B's samples and vice versa.
	FoldA Transformer
	FoldB Transformer
}

// Transformer maps raw scores to calibrated probabilities.
// Implementations are fold-local and immutable after fitting.
type Transformer interface {
	Transform(scores []float64) []float64
}

// EventCollapse holds per-event aggregates derived from per-track
// probabilities. Slices are parallel and ordered by ascending event id.
type EventCollapse struct {
	Signs    []float64 // reconstructed B sign (weighted mean of per-track signB)
	Weights  []float64 // mean per-track sWeight within the event
	Probs    []float64 // p(B+) from the signed log-odds sum, clamped finite
	EventIDs []float64
}

// Len returns the number of events
func (e *EventCollapse) Len() int {
	return len(e.EventIDs)
}

// PerformanceEstimate is one bootstrap trial's (D2, AUC) pair
type PerformanceEstimate struct {
	D2  float64
	AUC float64
}

// BootstrapResult collects per-trial performance estimates as parallel
// arrays, reduced to mean/std by reporting code.
type BootstrapResult struct {
	D2  []float64
	AUC []float64
}

// Trials returns the number of completed calibration trials
func (b *BootstrapResult) Trials() int {
	return len(b.D2)
}

// TaggingReport is the numeric summary of a tagging evaluation:
// efficiency, dilution and effective efficiency with uncertainties.
type TaggingReport struct {
	Name string

	EfficiencyPct      float64 // epsilon_tag, percent
	EfficiencyDeltaPct float64

	D2      float64 // mean over bootstrap trials
	D2Delta float64 // std over bootstrap trials

	EffectivePct      float64 // epsilon = epsilon_tag * D2, percent
	EffectiveDeltaPct float64 // combined relative error

	AUCPct      float64 // full AUC including untagged events, percent
	AUCDeltaPct float64
}
