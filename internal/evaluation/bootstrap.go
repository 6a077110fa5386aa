package evaluation

import (
	"context"
	"sync"

	"flavortag/domain/tagging"
	"flavortag/internal/calibration"
	"flavortag/internal/errors"
	"flavortag/internal/metrics"

	"golang.org/x/sync/semaphore"
)

// BootstrapOptions controls the repeated calibrate-and-score procedure.
type BootstrapOptions struct {
	Calibrations int     // number of independent trials (default 30)
	Seed         int64   // base seed; trial k uses Seed+k
	Threshold    float64 // label binarization threshold
	Symmetrize   bool    // mirror-augment the train fold before fitting
	MaxWorkers   int     // concurrent trials; <=1 runs serially
}

// DefaultBootstrapOptions matches the standard evaluation protocol:
// 30 isotonic calibrations over fresh 50/50 splits.
func DefaultBootstrapOptions() BootstrapOptions {
	return BootstrapOptions{
		Calibrations: 30,
		Seed:         calibration.DefaultSeed,
		MaxWorkers:   4,
	}
}

// BootstrapCalibrate estimates the sampling distribution of D2 and AUC
// under isotonic calibration. Each trial independently re-splits the
// data 50/50 (group-aware when group ids are present), fits an isotonic
// calibrator on the train fold, and scores the test fold: AUC on the
// raw uncalibrated scores, D2 on the calibrated probabilities. Trials
// share only read-only inputs and run concurrently under a weighted
// semaphore.
func BootstrapCalibrate(ctx context.Context, data *tagging.TaggingData, opts BootstrapOptions) (*tagging.BootstrapResult, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	if opts.Calibrations < 1 {
		return nil, errors.InvalidInput("calibration count must be at least 1")
	}

	labels := data.BinarizeLabels(opts.Threshold)
	result := &tagging.BootstrapResult{
		D2:  make([]float64, opts.Calibrations),
		AUC: make([]float64, opts.Calibrations),
	}

	workers := opts.MaxWorkers
	if workers < 1 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for trial := 0; trial < opts.Calibrations; trial++ {
		if err := sem.Acquire(ctx, 1); err != nil {
			mu.Lock()
			if firstErr == nil {
				firstErr = errors.Wrap(err, "bootstrap trial scheduling interrupted")
			}
			mu.Unlock()
			break
		}

		wg.Add(1)
		go func(trial int) {
			defer wg.Done()
			defer sem.Release(1)

			d2, auc, err := runTrial(data, labels, opts, trial)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			result.D2[trial] = d2
			result.AUC[trial] = auc
		}(trial)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return result, nil
}

// runTrial performs one fresh split, calibrate, score cycle
func runTrial(data *tagging.TaggingData, labels []float64, opts BootstrapOptions, trial int) (d2, auc float64, err error) {
	splitter := calibration.NewSplitter(opts.Seed + int64(trial))
	trainIdx, testIdx := splitter.SplitData(data.Len(), data.GroupID)

	trainProbs := gather(data.Scores, trainIdx)
	trainLabels := gather(labels, trainIdx)
	trainWeights := gather(data.Weights, trainIdx)
	if opts.Symmetrize {
		trainProbs, trainLabels, trainWeights = calibration.Symmetrize(trainProbs, trainLabels, trainWeights)
	}

	iso := calibration.NewIsotonicRegression()
	iso.Fit(trainProbs, trainLabels, trainWeights)

	testProbs := gather(data.Scores, testIdx)
	testLabels := gather(labels, testIdx)
	testWeights := gather(data.Weights, testIdx)

	calibrated := iso.Transform(testProbs)
	d2 = metrics.DilutionSquared(calibrated, testWeights)

	// AUC uses the raw, uncalibrated test scores; calibration is
	// monotone and cannot improve ranking.
	auc, err = metrics.WeightedAUC(testLabels, testProbs, testWeights)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "AUC computation failed in trial %d", trial)
	}
	return d2, auc, nil
}

func gather(src []float64, rows []int) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = src[r]
	}
	return out
}
