package ports

import (
	"flavortag/domain/dataset"
)

// Classifier is the trained-model collaborator the toolkit consumes.
// Only the class-1 probability column is ever used.
type Classifier interface {
	// Fit trains the model on a labeled, weighted table.
	Fit(tbl *dataset.Table, labels, weights []float64) error

	// PredictProba returns p(class 1) per row.
	PredictProba(tbl *dataset.Table) ([]float64, error)
}

// ClassifierFactory builds fresh, untrained classifier instances, one
// per fold.
type ClassifierFactory func() Classifier
