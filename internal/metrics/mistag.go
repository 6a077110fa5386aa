package metrics

import (
	"math"

	"flavortag/internal/errors"

	"github.com/montanaflynn/stats"
)

// MistagCurve is the binned observed-vs-predicted mistag diagnostic:
// for each bin of predicted mistag rate, the weighted mean prediction
// and the weighted fraction of tags that were actually wrong.
type MistagCurve struct {
	Edges        []float64 // len = bins+1, ascending over [0, 0.5]
	PredictedEta []float64 // weighted mean predicted mistag per bin
	ObservedEta  []float64 // weighted wrong-tag fraction per bin
	Counts       []float64 // weighted sample count per bin
}

// Bins returns the number of non-empty diagnostic bins
func (m *MistagCurve) Bins() int {
	return len(m.PredictedEta)
}

// ComputeMistag bins calibrated probabilities by predicted mistag rate
// and measures the observed mistag fraction in each bin. With uniform
// binning the edges divide [0, 0.5] evenly; otherwise edges are
// percentiles of the predicted mistag distribution. When too few unique
// values exist for the requested bin count, the count is decremented
// until binning succeeds.
func ComputeMistag(probs, trueSigns, weights []float64, bins int, uniform bool) (*MistagCurve, error) {
	n := len(probs)
	if len(trueSigns) != n {
		return nil, errors.ShapeMismatch("true signs", n, len(trueSigns))
	}
	if len(weights) != n {
		return nil, errors.ShapeMismatch("weights", n, len(weights))
	}
	if n == 0 {
		return nil, errors.InvalidInput("empty sample set")
	}
	if bins < 1 {
		return nil, errors.InvalidInput("bin count must be at least 1")
	}

	eta := make([]float64, n)
	wrong := make([]float64, n)
	for i, p := range probs {
		d := 2*p - 1
		eta[i] = 0.5 * (1 - math.Abs(d))
		tag := 1.0
		if d < 0 {
			tag = -1
		}
		truth := 1.0
		if trueSigns[i] <= 0 {
			truth = -1
		}
		if tag != truth {
			wrong[i] = 1
		}
	}

	var edges []float64
	if uniform {
		edges = make([]float64, bins+1)
		for i := range edges {
			edges[i] = 0.5 * float64(i) / float64(bins)
		}
	} else {
		var err error
		edges, err = percentileEdges(eta, bins)
		if err != nil {
			return nil, err
		}
		bins = len(edges) - 1
	}

	curve := &MistagCurve{
		Edges:        edges,
		PredictedEta: make([]float64, bins),
		ObservedEta:  make([]float64, bins),
		Counts:       make([]float64, bins),
	}
	sumEta := make([]float64, bins)
	sumWrong := make([]float64, bins)

	for i := 0; i < n; i++ {
		b := locateBin(edges, eta[i])
		w := weights[i]
		curve.Counts[b] += w
		sumEta[b] += w * eta[i]
		sumWrong[b] += w * wrong[i]
	}
	for b := 0; b < bins; b++ {
		if curve.Counts[b] > 0 {
			curve.PredictedEta[b] = sumEta[b] / curve.Counts[b]
			curve.ObservedEta[b] = sumWrong[b] / curve.Counts[b]
		}
	}
	return curve, nil
}

// percentileEdges computes percentile bin edges, decrementing the bin
// count on duplicate edges until binning succeeds.
func percentileEdges(values []float64, bins int) ([]float64, error) {
	for ; bins >= 1; bins-- {
		edges := make([]float64, 0, bins+1)
		ok := true
		for i := 0; i <= bins; i++ {
			q := 100 * float64(i) / float64(bins)
			var edge float64
			var err error
			switch i {
			case 0:
				edge, err = stats.Min(values)
			case bins:
				edge, err = stats.Max(values)
			default:
				edge, err = stats.Percentile(values, q)
			}
			if err != nil {
				return nil, errors.Wrap(err, "percentile edge computation failed")
			}
			if len(edges) > 0 && edge <= edges[len(edges)-1] {
				ok = false
				break
			}
			edges = append(edges, edge)
		}
		if ok && len(edges) == bins+1 {
			return edges, nil
		}
	}
	return nil, errors.InvalidInput("cannot build any percentile binning: all values identical")
}

// locateBin returns the bin index for a value given ascending edges;
// values outside the edge range clamp to the first or last bin.
func locateBin(edges []float64, v float64) int {
	last := len(edges) - 2
	for b := 0; b < last; b++ {
		if v < edges[b+1] {
			return b
		}
	}
	return last
}
