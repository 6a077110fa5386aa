package events

import (
	"math"

	"flavortag/domain/dataset"
	"flavortag/domain/tagging"
	"flavortag/internal/errors"
)

// CollapseOptions configures the track-to-event probability combination.
type CollapseOptions struct {
	WeightColumn    string
	EventIDColumn   string
	SignBColumn     string
	SignTrackColumn string

	// NormedSigns balances the same-sign and opposite-sign track
	// populations within each true B-sign class before summing, a
	// correction for a known asymmetry in the labeling process.
	NormedSigns bool
}

// DefaultCollapseOptions uses the canonical tagging column names
func DefaultCollapseOptions() CollapseOptions {
	return CollapseOptions{
		WeightColumn:    dataset.ColWeight,
		EventIDColumn:   dataset.ColEventID,
		SignBColumn:     dataset.ColSignB,
		SignTrackColumn: dataset.ColSignTrack,
	}
}

// CollapseToEvents combines per-track calibrated probabilities into one
// probability per event under a naive-Bayes log-odds-sum model:
// logit(P_event) = sum_i sign_i * logit(p_i). Per event it also returns
// the reconstructed B sign (mean of the per-track signB column, which
// must be group-homogeneous), the mean track weight, and the event id.
// A zero-information sum yields a non-finite probability, clamped to
// 0.5: the event is untagged, not an error.
func CollapseToEvents(tbl *dataset.Table, probs []float64, opts CollapseOptions) (*tagging.EventCollapse, error) {
	if len(probs) != tbl.RowCount() {
		return nil, errors.ShapeMismatch("probabilities", tbl.RowCount(), len(probs))
	}

	eventIDs, err := tbl.Column(opts.EventIDColumn)
	if err != nil {
		return nil, err
	}
	weights, err := tbl.Column(opts.WeightColumn)
	if err != nil {
		return nil, err
	}
	signB, err := tbl.Column(opts.SignBColumn)
	if err != nil {
		return nil, err
	}
	signTrack, err := tbl.Column(opts.SignTrackColumn)
	if err != nil {
		return nil, err
	}

	idx := dataset.BuildGroupIndex(eventIDs)
	groups := idx.Groups()

	factors := make([]float64, tbl.RowCount())
	for i := range factors {
		factors[i] = 1
	}
	if opts.NormedSigns {
		factors = signBalanceFactors(signB, signTrack)
	}

	logOdds := make([]float64, groups)
	signSum := make([]float64, groups)
	weightSum := make([]float64, groups)
	counts := make([]float64, groups)

	for row, g := range idx.Inverse {
		lp := math.Log(probs[row]) - math.Log(1-probs[row])
		logOdds[g] += lp * signTrack[row] * factors[row]
		signSum[g] += signB[row]
		weightSum[g] += weights[row]
		counts[g]++
	}

	out := &tagging.EventCollapse{
		Signs:    make([]float64, groups),
		Weights:  make([]float64, groups),
		Probs:    make([]float64, groups),
		EventIDs: idx.Unique,
	}
	for g := 0; g < groups; g++ {
		out.Signs[g] = signSum[g] / counts[g]
		out.Weights[g] = weightSum[g] / counts[g]

		p := expit(logOdds[g])
		if math.IsNaN(p) || math.IsInf(p, 0) {
			p = 0.5 // untagged: no usable information in this event
		}
		out.Probs[g] = p
	}
	return out, nil
}

// signBalanceFactors computes a per-track reweighting that balances
// same-sign and opposite-sign track counts within each true B-sign
// class. When either population is empty for a class the correction is
// undefined; the factor stays 1 and the class is left unweighted.
func signBalanceFactors(signB, signTrack []float64) []float64 {
	countSame := map[float64]float64{}
	countOpp := map[float64]float64{}
	for i := range signB {
		if signTrack[i] == signB[i] {
			countSame[signB[i]]++
		} else {
			countOpp[signB[i]]++
		}
	}

	factors := make([]float64, len(signB))
	for i := range signB {
		factors[i] = 1
		if signTrack[i] == signB[i] {
			same, opp := countSame[signB[i]], countOpp[signB[i]]
			if same > 0 && opp > 0 {
				factors[i] = opp / same
			}
		}
	}
	return factors
}

func expit(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
