package calibration

import (
	"flavortag/domain/dataset"
	"flavortag/internal/errors"
	"flavortag/ports"
)

// FoldingClassifier trains one base classifier per fold and predicts
// each fold with the model trained on its complement, so predictions on
// the training dataset are out-of-sample. When a group column is set,
// all rows sharing a group value stay in one fold.
type FoldingClassifier struct {
	factory     ports.ClassifierFactory
	seed        int64
	groupColumn string

	estimators  [2]ports.Classifier
	trainLength int
}

// NewFoldingClassifier creates a two-fold classifier wrapper
func NewFoldingClassifier(factory ports.ClassifierFactory, seed int64, groupColumn string) *FoldingClassifier {
	return &FoldingClassifier{
		factory:     factory,
		seed:        seed,
		groupColumn: groupColumn,
	}
}

// Fit trains one base classifier per fold, each on the opposite fold's
// rows.
func (fc *FoldingClassifier) Fit(tbl *dataset.Table, labels, weights []float64) error {
	if len(labels) != tbl.RowCount() {
		return errors.ShapeMismatch("labels", tbl.RowCount(), len(labels))
	}
	if len(weights) != tbl.RowCount() {
		return errors.ShapeMismatch("weights", tbl.RowCount(), len(weights))
	}

	foldA, foldB := fc.foldRows(tbl)
	fc.trainLength = tbl.RowCount()

	// Estimator for fold k trains on the complement of fold k
	for k, trainRows := range [][]int{foldB, foldA} {
		est := fc.factory()
		sub := tbl.Select(trainRows)
		if err := est.Fit(sub, gather(labels, trainRows), gather(weights, trainRows)); err != nil {
			return errors.Wrapf(err, "training fold %d estimator", k)
		}
		fc.estimators[k] = est
	}
	return nil
}

// PredictProba predicts p(class 1) per row. A table of the training
// length is scored via the folding scheme (each fold by its withheld
// estimator); any other table is scored by averaging both estimators.
func (fc *FoldingClassifier) PredictProba(tbl *dataset.Table) ([]float64, error) {
	if fc.estimators[0] == nil {
		return nil, errors.InvalidInput("folding classifier not fitted")
	}

	if tbl.RowCount() != fc.trainLength {
		return fc.votePredict(tbl)
	}

	foldA, foldB := fc.foldRows(tbl)
	out := make([]float64, tbl.RowCount())
	for k, rows := range [][]int{foldA, foldB} {
		probs, err := fc.estimators[k].PredictProba(tbl.Select(rows))
		if err != nil {
			return nil, errors.Wrapf(err, "fold %d prediction", k)
		}
		for i, row := range rows {
			out[row] = probs[i]
		}
	}
	return out, nil
}

// votePredict averages both estimators' predictions
func (fc *FoldingClassifier) votePredict(tbl *dataset.Table) ([]float64, error) {
	out := make([]float64, tbl.RowCount())
	for k := range fc.estimators {
		probs, err := fc.estimators[k].PredictProba(tbl)
		if err != nil {
			return nil, errors.Wrapf(err, "fold %d prediction", k)
		}
		for i, p := range probs {
			out[i] += p / float64(len(fc.estimators))
		}
	}
	return out, nil
}

// foldRows computes the deterministic fold assignment for a table
func (fc *FoldingClassifier) foldRows(tbl *dataset.Table) (foldA, foldB []int) {
	splitter := NewSplitter(fc.seed)
	if fc.groupColumn != "" {
		if groups, err := tbl.Column(fc.groupColumn); err == nil {
			return splitter.SplitGrouped(groups)
		}
	}
	return splitter.Split(tbl.RowCount())
}

// PredictByClassifier concatenates several tables and predicts each
// separately, preserving the folding scheme on any table that is a
// classifier's own training data.
func PredictByClassifier(est ports.Classifier, tables ...*dataset.Table) (*dataset.Table, []float64, error) {
	combined, err := dataset.Concat(tables...)
	if err != nil {
		return nil, nil, err
	}
	probs := make([]float64, 0, combined.RowCount())
	for _, tbl := range tables {
		p, err := est.PredictProba(tbl)
		if err != nil {
			return nil, nil, err
		}
		probs = append(probs, p...)
	}
	return combined, probs, nil
}
