package calibration

import (
	"math"
)

// Default clipping keeps scores strictly inside (0,1) so the log-odds
// transform stays finite.
const (
	DefaultClipEps = 1e-5
	defaultC       = 100.0 // inverse regularization, mildly regularized
)

// LogisticRegression recalibrates scores by fitting a single-feature
// logistic model on the log-odds of the raw score, i.e. a smooth sigmoid
// recalibration p = sigmoid(b0 + b1*logit(score)). Weighted fit with a
// mild L2 penalty on the slope.
type LogisticRegression struct {
	C float64 // inverse regularization strength

	// Clipping bounds applied before the logit, at fit and at transform
	ClipLo float64
	ClipHi float64

	intercept float64
	slope     float64
}

// NewLogisticRegression creates a logistic calibrator with standard
// mild regularization and full-range clipping.
func NewLogisticRegression() *LogisticRegression {
	return &LogisticRegression{
		C:      defaultC,
		ClipLo: DefaultClipEps,
		ClipHi: 1 - DefaultClipEps,
	}
}

// Coefficients returns the fitted (intercept, slope) pair
func (lr *LogisticRegression) Coefficients() (float64, float64) {
	return lr.intercept, lr.slope
}

// Fit estimates the sigmoid recalibration from scores, binary labels
// and per-sample weights via iteratively reweighted least squares.
// Degenerate folds (single-class labels) converge to a near-constant
// mapping rather than erroring.
func (lr *LogisticRegression) Fit(scores, labels, weights []float64) {
	n := len(scores)
	z := make([]float64, n)
	for i, s := range scores {
		z[i] = logit(clip(s, lr.ClipLo, lr.ClipHi))
	}

	lambda := 1.0 / lr.C
	b0, b1 := 0.0, 0.0

	for iter := 0; iter < 100; iter++ {
		var g0, g1 float64
		var h00, h01, h11 float64
		for i := 0; i < n; i++ {
			w := 1.0
			if weights != nil {
				w = weights[i]
			}
			p := sigmoid(b0 + b1*z[i])
			r := w * (labels[i] - p)
			s := w * p * (1 - p)
			g0 += r
			g1 += r * z[i]
			h00 += s
			h01 += s * z[i]
			h11 += s * z[i] * z[i]
		}
		// Penalize the slope only
		g1 -= lambda * b1
		h11 += lambda

		det := h00*h11 - h01*h01
		if math.Abs(det) < 1e-12 {
			break
		}
		d0 := (h11*g0 - h01*g1) / det
		d1 := (h00*g1 - h01*g0) / det
		b0 += d0
		b1 += d1

		if math.Abs(d0) < 1e-10 && math.Abs(d1) < 1e-10 {
			break
		}
	}

	lr.intercept = b0
	lr.slope = b1
}

// Transform applies the fitted sigmoid recalibration, using the same
// clipping bounds as the fit.
func (lr *LogisticRegression) Transform(scores []float64) []float64 {
	out := make([]float64, len(scores))
	for i, s := range scores {
		z := logit(clip(s, lr.ClipLo, lr.ClipHi))
		out[i] = sigmoid(lr.intercept + lr.slope*z)
	}
	return out
}

func logit(p float64) float64 {
	return math.Log(p) - math.Log(1-p)
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
