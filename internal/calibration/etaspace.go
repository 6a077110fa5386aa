package calibration

import "math"

// Space selects the representation calibration operates in.
type Space int

const (
	// SpaceFull calibrates p(class 1) directly on [0,1].
	SpaceFull Space = iota
	// SpaceEta calibrates the mistag rate eta = 0.5*(1-|2p-1|) on
	// [0, 0.5], with the label recast as "was the tag wrong". Preferred
	// when symmetry around the correct tag is physically expected.
	SpaceEta
)

// halfRangeEps keeps eta strictly inside (0, 0.5)
const halfRangeEps = 1e-5

// SpaceInputs is the structured fit record for one representation:
// the calibration feature X, target Y and weight W, plus the per-sample
// tag signs needed to invert the eta transform.
type SpaceInputs struct {
	Space Space
	X     []float64
	Y     []float64
	W     []float64
	Tags  []float64 // eta space only
}

// ToFitSpace transforms (probs, binary labels, weights) into the fit
// representation. The identity transform passes data through; the eta
// transform decomposes each probability into a tag sign and a mistag
// rate and relabels each sample by tag correctness.
func ToFitSpace(space Space, probs, labels, weights []float64) SpaceInputs {
	if space == SpaceFull {
		return SpaceInputs{Space: SpaceFull, X: probs, Y: labels, W: weights}
	}

	n := len(probs)
	eta := make([]float64, n)
	wrong := make([]float64, n)
	tags := make([]float64, n)
	for i := 0; i < n; i++ {
		d := 2*probs[i] - 1
		tag := sign(d)
		tags[i] = tag
		eta[i] = clip(0.5*(1-math.Abs(d)), halfRangeEps, 0.5-halfRangeEps)

		truth := 2*labels[i] - 1
		if tag != truth {
			wrong[i] = 1
		}
	}
	return SpaceInputs{Space: SpaceEta, X: eta, Y: wrong, W: weights, Tags: tags}
}

// Reconstruct maps calibrated fit-space outputs back to full-range
// probabilities: identity for the full space, p = 0.5*(1+(1-2*eta)*tag)
// for the eta space.
func (si SpaceInputs) Reconstruct(calibrated []float64) []float64 {
	if si.Space == SpaceFull {
		return calibrated
	}
	out := make([]float64, len(calibrated))
	for i, eta := range calibrated {
		out[i] = 0.5 * (1 + (1-2*eta)*si.Tags[i])
	}
	return out
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
