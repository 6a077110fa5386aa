package testkit

import (
	"context"
	"math"
	"math/rand"
	"sync"

	"flavortag/domain/core"
	"flavortag/domain/dataset"
	"flavortag/domain/tagging"
	"flavortag/internal/errors"
)

// SeparableData generates a noise-free separable sample: scores drawn
// uniform on [0,1], label 1 iff score > 0.5, unit weights.
func SeparableData(n int, seed int64) *tagging.TaggingData {
	rng := rand.New(rand.NewSource(seed))
	d := &tagging.TaggingData{
		Scores:  make([]float64, n),
		Labels:  make([]float64, n),
		Weights: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		s := rng.Float64()
		d.Scores[i] = s
		if s > 0.5 {
			d.Labels[i] = 1
		}
		d.Weights[i] = 1
	}
	return d
}

// NoiseData generates scores and labels that are independent: pure
// noise, no discriminative information.
func NoiseData(n int, seed int64) *tagging.TaggingData {
	rng := rand.New(rand.NewSource(seed))
	d := &tagging.TaggingData{
		Scores:  make([]float64, n),
		Labels:  make([]float64, n),
		Weights: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		d.Scores[i] = rng.Float64()
		if rng.Float64() > 0.5 {
			d.Labels[i] = 1
		}
		d.Weights[i] = 1
	}
	return d
}

// MirroredData generates exact mirror pairs: for every (s, 1) sample
// there is a (1-s, 0) sample of equal weight, so the population is
// symmetric around 0.5 by construction.
func MirroredData(pairs int, seed int64) *tagging.TaggingData {
	rng := rand.New(rand.NewSource(seed))
	d := &tagging.TaggingData{
		Scores:  make([]float64, 0, 2*pairs),
		Labels:  make([]float64, 0, 2*pairs),
		Weights: make([]float64, 0, 2*pairs),
	}
	for i := 0; i < pairs; i++ {
		s := 0.5 + 0.5*rng.Float64() // [0.5, 1)
		d.Scores = append(d.Scores, s, 1-s)
		d.Labels = append(d.Labels, 1, 0)
		d.Weights = append(d.Weights, 1, 1)
	}
	return d
}

// EventTable generates a grouped tagging table: nEvents events of
// tracksPerEvent tracks each, with homogeneous per-event signB and
// weight, random track signs, and per-track probabilities correlated
// with the product signB*signTrack.
func EventTable(nEvents, tracksPerEvent int, seed int64) (*dataset.Table, []float64) {
	rng := rand.New(rand.NewSource(seed))
	rows := nEvents * tracksPerEvent

	eventID := make([]float64, 0, rows)
	weight := make([]float64, 0, rows)
	signB := make([]float64, 0, rows)
	signTrack := make([]float64, 0, rows)
	label := make([]float64, 0, rows)
	probs := make([]float64, 0, rows)

	for e := 0; e < nEvents; e++ {
		bSign := 1.0
		if rng.Float64() < 0.5 {
			bSign = -1
		}
		evWeight := 0.5 + rng.Float64()

		for t := 0; t < tracksPerEvent; t++ {
			tSign := 1.0
			if rng.Float64() < 0.5 {
				tSign = -1
			}
			// Informative track: probability leans toward agreement
			// with the true sign.
			lean := 0.15 * bSign * tSign
			p := clamp(0.5+lean+0.2*(rng.Float64()-0.5), 0.05, 0.95)

			eventID = append(eventID, float64(e))
			weight = append(weight, evWeight)
			signB = append(signB, bSign)
			signTrack = append(signTrack, tSign)
			if bSign > 0 {
				label = append(label, 1)
			} else {
				label = append(label, 0)
			}
			probs = append(probs, p)
		}
	}

	tbl := dataset.NewTable()
	mustAdd(tbl, dataset.ColEventID, eventID)
	mustAdd(tbl, dataset.ColWeight, weight)
	mustAdd(tbl, dataset.ColSignB, signB)
	mustAdd(tbl, dataset.ColSignTrack, signTrack)
	mustAdd(tbl, dataset.ColLabel, label)
	return tbl, probs
}

func mustAdd(tbl *dataset.Table, name string, values []float64) {
	if err := tbl.AddColumn(name, values); err != nil {
		panic(err)
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

// PassthroughClassifier scores rows by a single column, treating it as
// an already-formed probability. Stands in for a trained model in
// wiring tests.
type PassthroughClassifier struct {
	ScoreColumn string
}

// Fit is a no-op: the passthrough model has nothing to learn
func (c *PassthroughClassifier) Fit(tbl *dataset.Table, labels, weights []float64) error {
	if !tbl.HasColumn(c.ScoreColumn) {
		return errors.ColumnMissing(c.ScoreColumn)
	}
	return nil
}

// PredictProba returns the score column clamped to [0,1]
func (c *PassthroughClassifier) PredictProba(tbl *dataset.Table) ([]float64, error) {
	col, err := tbl.Column(c.ScoreColumn)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(col))
	for i, v := range col {
		out[i] = clamp(v, 0, 1)
	}
	return out, nil
}

// InMemoryLedger is a run ledger backed by a map, for tests and local
// analysis sessions.
type InMemoryLedger struct {
	mu   sync.RWMutex
	runs map[core.RunID]*tagging.EvaluationRun
}

// NewInMemoryLedger creates an empty in-memory ledger
func NewInMemoryLedger() *InMemoryLedger {
	return &InMemoryLedger{runs: make(map[core.RunID]*tagging.EvaluationRun)}
}

// SaveRun stores a run, replacing any run with the same ID
func (l *InMemoryLedger) SaveRun(_ context.Context, run *tagging.EvaluationRun) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.runs[run.ID] = run
	return nil
}

// GetRun retrieves a run by ID
func (l *InMemoryLedger) GetRun(_ context.Context, id core.RunID) (*tagging.EvaluationRun, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	run, ok := l.runs[id]
	if !ok {
		return nil, errors.InvalidInput("run not found: " + id.String())
	}
	return run, nil
}

// ListRuns returns all stored runs in unspecified order
func (l *InMemoryLedger) ListRuns(_ context.Context) ([]*tagging.EvaluationRun, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*tagging.EvaluationRun, 0, len(l.runs))
	for _, run := range l.runs {
		out = append(out, run)
	}
	return out, nil
}
