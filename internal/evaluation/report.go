package evaluation

import (
	"math"

	"flavortag/domain/tagging"
	"flavortag/internal/errors"

	"github.com/montanaflynn/stats"
)

// BuildReport reduces bootstrap D2 and full-AUC distributions to a
// tagging performance summary. The effective efficiency is
// epsilon = epsilon_tag * D2, with its relative error combined in
// quadrature from the D2 and efficiency errors.
func BuildReport(name string, efficiency, efficiencyDelta float64, d2, auc []float64) (*tagging.TaggingReport, error) {
	if len(d2) == 0 || len(auc) == 0 {
		return nil, errors.InvalidInput("empty performance distribution")
	}

	d2Mean, err := stats.Mean(d2)
	if err != nil {
		return nil, errors.Wrap(err, "D2 mean")
	}
	d2Std, err := stats.StandardDeviation(d2)
	if err != nil {
		return nil, errors.Wrap(err, "D2 std")
	}
	aucMean, err := stats.Mean(auc)
	if err != nil {
		return nil, errors.Wrap(err, "AUC mean")
	}
	aucStd, err := stats.StandardDeviation(auc)
	if err != nil {
		return nil, errors.Wrap(err, "AUC std")
	}

	epsilon := d2Mean * efficiency * 100

	relD2 := 0.0
	if d2Mean != 0 {
		relD2 = d2Std / d2Mean
	}
	relEff := 0.0
	if efficiency != 0 {
		relEff = efficiencyDelta / efficiency
	}
	relEpsilon := math.Sqrt(relD2*relD2 + relEff*relEff)

	return &tagging.TaggingReport{
		Name:               name,
		EfficiencyPct:      efficiency * 100,
		EfficiencyDeltaPct: efficiencyDelta * 100,
		D2:                 d2Mean,
		D2Delta:            d2Std,
		EffectivePct:       epsilon,
		EffectiveDeltaPct:  relEpsilon * epsilon,
		AUCPct:             aucMean * 100,
		AUCDeltaPct:        aucStd * 100,
	}, nil
}
