package calibration

import (
	"flavortag/domain/tagging"

	"gonum.org/v1/gonum/stat"
)

// Options controls a two-fold cross-calibration run.
type Options struct {
	Logistic   bool    // sigmoid recalibration instead of isotonic
	Symmetrize bool    // mirror-augment each fold's fit data
	InEtaSpace bool    // calibrate the mistag rate instead of p(class 1)
	Seed       int64   // fold split seed
	Threshold  float64 // label binarization: 1 iff raw label > Threshold
}

// DefaultSeed is the fixed fold-split seed used for reproducible
// calibration of a full dataset.
const DefaultSeed = 11

// DefaultOptions returns isotonic, full-range, unsymmetrized settings
// with the fixed reproducibility seed.
func DefaultOptions() Options {
	return Options{Seed: DefaultSeed}
}

// Fitter is a calibrator that can be fit on weighted labeled scores.
type Fitter interface {
	tagging.Transformer
	Fit(x, y, w []float64)
}

// NewFitter builds a fresh calibrator instance for the given options.
// Half-range mode narrows the logistic clipping to (0, 0.5).
func NewFitter(opts Options) Fitter {
	if !opts.Logistic {
		return NewIsotonicRegression()
	}
	lr := NewLogisticRegression()
	if opts.InEtaSpace {
		lr.ClipHi = 0.5 - DefaultClipEps
	}
	return lr
}

// CalibrateProbs produces out-of-sample calibrated probabilities for the
// whole input: the data is split into two folds, one calibrator is fit
// per fold, and each fold is scored by the other fold's calibrator so
// no sample is ever scored by a mapping it helped fit.
func CalibrateProbs(data *tagging.TaggingData, opts Options) (*tagging.CalibrationResult, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	labels := data.BinarizeLabels(opts.Threshold)

	splitter := NewSplitter(opts.Seed)
	foldA, foldB := splitter.SplitData(data.Len(), data.GroupID)

	space := SpaceFull
	if opts.InEtaSpace {
		space = SpaceEta
	}

	calA, inputsA := fitFold(data, labels, foldA, space, opts)
	calB, inputsB := fitFold(data, labels, foldB, space, opts)

	// Cross-application: fold A scored by fold B's calibrator and
	// vice versa, then mapped back to full-range probabilities.
	probsA := inputsA.Reconstruct(calB.Transform(inputsA.X))
	probsB := inputsB.Reconstruct(calA.Transform(inputsB.X))

	calibrated := make([]float64, data.Len())
	for i, row := range foldA {
		calibrated[row] = probsA[i]
	}
	for i, row := range foldB {
		calibrated[row] = probsB[i]
	}

	return &tagging.CalibrationResult{
		Probs: calibrated,
		D2:    dilutionSquared(calibrated, data.Weights),
		FoldA: calA,
		FoldB: calB,
	}, nil
}

// fitFold fits one fold's calibrator on its own (optionally mirrored)
// samples and returns the fold's unaugmented fit-space inputs for
// scoring by the opposite calibrator.
func fitFold(data *tagging.TaggingData, labels []float64, rows []int, space Space, opts Options) (Fitter, SpaceInputs) {
	probs := gather(data.Scores, rows)
	lab := gather(labels, rows)
	weights := gather(data.Weights, rows)

	fitProbs, fitLab, fitW := probs, lab, weights
	if opts.Symmetrize {
		// Mirroring happens in probability space; in the eta
		// representation a mirrored pair collapses onto the same
		// (eta, wrongness) point, which is exactly the symmetry the
		// half-range encodes.
		fitProbs, fitLab, fitW = Symmetrize(probs, lab, weights)
	}
	fit := ToFitSpace(space, fitProbs, fitLab, fitW)

	cal := NewFitter(opts)
	cal.Fit(fit.X, fit.Y, fit.W)

	return cal, ToFitSpace(space, probs, lab, weights)
}

func gather(src []float64, rows []int) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = src[r]
	}
	return out
}

// dilutionSquared is the weighted mean of (1-2p)^2
func dilutionSquared(probs, weights []float64) float64 {
	alpha := make([]float64, len(probs))
	for i, p := range probs {
		d := 1 - 2*p
		alpha[i] = d * d
	}
	return stat.Mean(alpha, weights)
}
