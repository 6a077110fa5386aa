package ports

import (
	"flavortag/domain/dataset"
)

// DatasetReader loads a tagging dataset from an external source into
// the canonical columnar table.
type DatasetReader interface {
	Read() (*dataset.Table, error)
}
