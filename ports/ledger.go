package ports

import (
	"context"

	"flavortag/domain/core"
	"flavortag/domain/tagging"
)

// RunLedger persists evaluation runs. The core never touches it; the
// application service records results through this port.
type RunLedger interface {
	SaveRun(ctx context.Context, run *tagging.EvaluationRun) error
	GetRun(ctx context.Context, id core.RunID) (*tagging.EvaluationRun, error)
	ListRuns(ctx context.Context) ([]*tagging.EvaluationRun, error)
}
