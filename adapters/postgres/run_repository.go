package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"flavortag/domain/core"
	"flavortag/domain/tagging"
	"flavortag/internal/errors"
	"flavortag/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// RunRepository implements the run ledger for PostgreSQL
type RunRepository struct {
	db *sqlx.DB
}

// NewRunRepository creates a PostgreSQL-backed run ledger
func NewRunRepository(db *sqlx.DB) ports.RunLedger {
	return &RunRepository{db: db}
}

// Connect opens and pings a PostgreSQL connection
func Connect(url string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to run ledger database")
	}
	return db, nil
}

// SaveRun stores an evaluation run, upserting by run ID
func (r *RunRepository) SaveRun(ctx context.Context, run *tagging.EvaluationRun) error {
	d2JSON, err := json.Marshal(run.D2Samples)
	if err != nil {
		return errors.Wrap(err, "encoding D2 samples")
	}
	aucJSON, err := json.Marshal(run.AUCSamples)
	if err != nil {
		return errors.Wrap(err, "encoding AUC samples")
	}
	reportJSON, err := json.Marshal(run.Report)
	if err != nil {
		return errors.Wrap(err, "encoding report")
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO evaluation_runs (
			id, name, created_at, events, tracks,
			d2_samples, auc_samples, report
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			events = EXCLUDED.events,
			tracks = EXCLUDED.tracks,
			d2_samples = EXCLUDED.d2_samples,
			auc_samples = EXCLUDED.auc_samples,
			report = EXCLUDED.report`,
		run.ID.String(), run.Name, run.CreatedAt.Time(), run.Events, run.Tracks,
		d2JSON, aucJSON, reportJSON)
	if err != nil {
		return errors.Wrap(err, "saving evaluation run")
	}
	return nil
}

// GetRun retrieves an evaluation run by ID
func (r *RunRepository) GetRun(ctx context.Context, id core.RunID) (*tagging.EvaluationRun, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, created_at, events, tracks,
			   d2_samples, auc_samples, report
		FROM evaluation_runs WHERE id = $1`, id.String())

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.CodeDatabaseError, "evaluation run not found: "+id.String())
	}
	if err != nil {
		return nil, errors.Wrap(err, "loading evaluation run")
	}
	return run, nil
}

// ListRuns returns all evaluation runs, newest first
func (r *RunRepository) ListRuns(ctx context.Context) ([]*tagging.EvaluationRun, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, created_at, events, tracks,
			   d2_samples, auc_samples, report
		FROM evaluation_runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "listing evaluation runs")
	}
	defer rows.Close()

	var runs []*tagging.EvaluationRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning evaluation run")
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*tagging.EvaluationRun, error) {
	var (
		run        tagging.EvaluationRun
		id         string
		createdAt  time.Time
		d2JSON     []byte
		aucJSON    []byte
		reportJSON []byte
	)
	if err := row.Scan(&id, &run.Name, &createdAt, &run.Events, &run.Tracks,
		&d2JSON, &aucJSON, &reportJSON); err != nil {
		return nil, err
	}
	run.ID = core.RunID(id)
	run.CreatedAt = core.NewTimestamp(createdAt)

	if err := json.Unmarshal(d2JSON, &run.D2Samples); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(aucJSON, &run.AUCSamples); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(reportJSON, &run.Report); err != nil {
		return nil, err
	}
	return &run, nil
}
