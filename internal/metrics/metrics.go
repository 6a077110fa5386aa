package metrics

import (
	"math"
	"sort"

	"flavortag/internal/errors"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// WeightedAUC computes the weighted area under the ROC curve. Labels
// are positive iff > 0, which covers both {0,1} and {-1,+1} encodings.
func WeightedAUC(labels, scores, weights []float64) (float64, error) {
	n := len(scores)
	if len(labels) != n {
		return 0, errors.ShapeMismatch("labels", n, len(labels))
	}
	if weights != nil && len(weights) != n {
		return 0, errors.ShapeMismatch("weights", n, len(weights))
	}
	if n == 0 {
		return 0, errors.InvalidInput("empty sample set")
	}

	// ROC wants scores ascending with classes/weights aligned
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		return scores[order[i]] < scores[order[j]]
	})

	y := make([]float64, n)
	classes := make([]bool, n)
	var w []float64
	if weights != nil {
		w = make([]float64, n)
	}
	for i, idx := range order {
		y[i] = scores[idx]
		classes[i] = labels[idx] > 0
		if w != nil {
			w[i] = weights[idx]
		}
	}

	tpr, fpr, _ := stat.ROC(nil, y, classes, w)
	return integrate.Trapezoidal(fpr, tpr), nil
}

// DilutionSquared is the weighted mean of (1-2p)^2, the tagging power
// D^2 in [0,1]: 0 for uninformative probabilities, 1 for certainty.
func DilutionSquared(probs, weights []float64) float64 {
	alpha := make([]float64, len(probs))
	for i, p := range probs {
		d := 1 - 2*p
		alpha[i] = d * d
	}
	return stat.Mean(alpha, weights)
}

// AUCWithAndWithoutUntagged computes the tagged-only AUC and a
// full-sample AUC that accounts for events the tagger declined to tag.
// The untagged remainder of totalEvents is represented by two
// pseudo-samples of either sign at probability 0.5, each carrying half
// the remaining weight; scored at chance they can only dilute the AUC
// toward 0.5.
func AUCWithAndWithoutUntagged(signs, probs, weights []float64, totalEvents float64) (auc, aucFull float64, err error) {
	auc, err = WeightedAUC(signs, probs, weights)
	if err != nil {
		return 0, 0, err
	}

	tagged := 0.0
	for _, w := range weights {
		tagged += w
	}
	remainder := totalEvents - tagged
	if remainder < 0 {
		remainder = 0
	}

	n := len(signs)
	fullSigns := append(append(make([]float64, 0, n+2), signs...), -1, 1)
	fullProbs := append(append(make([]float64, 0, n+2), probs...), 0.5, 0.5)
	fullWeights := append(append(make([]float64, 0, n+2), weights...), remainder/2, remainder/2)

	aucFull, err = WeightedAUC(fullSigns, fullProbs, fullWeights)
	if err != nil {
		return 0, 0, err
	}
	return auc, aucFull, nil
}

// TaggingEfficiency is the weighted fraction of the total population
// that received a tag, with a binomial-style uncertainty computed from
// the effective event count.
func TaggingEfficiency(weights []float64, totalEvents, effectiveEvents float64) (eff, delta float64) {
	tagged := 0.0
	for _, w := range weights {
		tagged += w
	}
	eff = tagged / totalEvents
	delta = math.Sqrt(eff * (1 - eff) / effectiveEvents)
	return eff, delta
}
