package calibration

import (
	"math"
	"testing"

	"flavortag/domain/dataset"
	"flavortag/ports"

	"gonum.org/v1/gonum/stat"
)

// meanClassifier predicts the weighted mean training label for every row
type meanClassifier struct {
	mean float64
}

func (m *meanClassifier) Fit(tbl *dataset.Table, labels, weights []float64) error {
	m.mean = stat.Mean(labels, weights)
	return nil
}

func (m *meanClassifier) PredictProba(tbl *dataset.Table) ([]float64, error) {
	out := make([]float64, tbl.RowCount())
	for i := range out {
		out[i] = m.mean
	}
	return out, nil
}

// recordingClassifier captures the event ids it was trained on
type recordingClassifier struct {
	trainedOn map[float64]bool
}

func (r *recordingClassifier) Fit(tbl *dataset.Table, labels, weights []float64) error {
	ids, err := tbl.Column(dataset.ColEventID)
	if err != nil {
		return err
	}
	r.trainedOn = make(map[float64]bool)
	for _, id := range ids {
		r.trainedOn[id] = true
	}
	return nil
}

func (r *recordingClassifier) PredictProba(tbl *dataset.Table) ([]float64, error) {
	return make([]float64, tbl.RowCount()), nil
}

func gradedTable(n int) (*dataset.Table, []float64, []float64) {
	scores := make([]float64, n)
	labels := make([]float64, n)
	weights := make([]float64, n)
	for i := 0; i < n; i++ {
		scores[i] = float64(i) / float64(n)
		labels[i] = float64(i) / float64(n)
		weights[i] = 1
	}
	tbl := dataset.NewTable()
	if err := tbl.AddColumn("score", scores); err != nil {
		panic(err)
	}
	return tbl, labels, weights
}

func TestFoldingPredictsEachFoldOutOfSample(t *testing.T) {
	n := 100
	tbl, labels, weights := gradedTable(n)

	fc := NewFoldingClassifier(func() ports.Classifier { return &meanClassifier{} }, 11, "")
	if err := fc.Fit(tbl, labels, weights); err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	probs, err := fc.PredictProba(tbl)
	if err != nil {
		t.Fatalf("predict failed: %v", err)
	}

	// Each fold's constant must be the mean label of the opposite fold
	foldA, foldB := NewSplitter(11).Split(n)
	meanA := mean(gather(labels, foldA))
	meanB := mean(gather(labels, foldB))

	for _, row := range foldA {
		if math.Abs(probs[row]-meanB) > 1e-12 {
			t.Fatalf("fold A row %d predicted %v, want opposite-fold mean %v", row, probs[row], meanB)
		}
	}
	for _, row := range foldB {
		if math.Abs(probs[row]-meanA) > 1e-12 {
			t.Fatalf("fold B row %d predicted %v, want opposite-fold mean %v", row, probs[row], meanA)
		}
	}
}

func TestFoldingVotePredictOnForeignTable(t *testing.T) {
	tbl, labels, weights := gradedTable(100)

	fc := NewFoldingClassifier(func() ports.Classifier { return &meanClassifier{} }, 11, "")
	if err := fc.Fit(tbl, labels, weights); err != nil {
		t.Fatal(err)
	}

	other, _, _ := gradedTable(40) // different length: voting path
	probs, err := fc.PredictProba(other)
	if err != nil {
		t.Fatal(err)
	}

	foldA, foldB := NewSplitter(11).Split(100)
	want := (mean(gather(labels, foldA)) + mean(gather(labels, foldB))) / 2
	for i, p := range probs {
		if math.Abs(p-want) > 1e-12 {
			t.Fatalf("vote prediction %d = %v, want averaged %v", i, p, want)
		}
	}
}

func TestFoldingGroupColumnKeepsEventsTogether(t *testing.T) {
	// 30 events of 4 tracks
	ids := make([]float64, 0, 120)
	for e := 0; e < 30; e++ {
		for k := 0; k < 4; k++ {
			ids = append(ids, float64(e))
		}
	}
	tbl := dataset.NewTable()
	if err := tbl.AddColumn(dataset.ColEventID, ids); err != nil {
		t.Fatal(err)
	}
	labels := make([]float64, 120)
	weights := make([]float64, 120)
	for i := range weights {
		weights[i] = 1
	}

	recorders := make([]*recordingClassifier, 0, 2)
	fc := NewFoldingClassifier(func() ports.Classifier {
		r := &recordingClassifier{}
		recorders = append(recorders, r)
		return r
	}, 5, dataset.ColEventID)
	if err := fc.Fit(tbl, labels, weights); err != nil {
		t.Fatal(err)
	}
	if len(recorders) != 2 {
		t.Fatalf("expected 2 trained estimators, got %d", len(recorders))
	}

	// The two training sets partition the events
	for id := range recorders[0].trainedOn {
		if recorders[1].trainedOn[id] {
			t.Fatalf("event %v trained both estimators", id)
		}
	}
	if len(recorders[0].trainedOn)+len(recorders[1].trainedOn) != 30 {
		t.Errorf("training sets cover %d events, want 30",
			len(recorders[0].trainedOn)+len(recorders[1].trainedOn))
	}
}

func TestFoldingPredictBeforeFit(t *testing.T) {
	tbl, _, _ := gradedTable(10)
	fc := NewFoldingClassifier(func() ports.Classifier { return &meanClassifier{} }, 1, "")
	if _, err := fc.PredictProba(tbl); err == nil {
		t.Error("unfitted classifier predicted without error")
	}
}

func TestFoldingShapeValidation(t *testing.T) {
	tbl, labels, weights := gradedTable(10)
	fc := NewFoldingClassifier(func() ports.Classifier { return &meanClassifier{} }, 1, "")
	if err := fc.Fit(tbl, labels[:5], weights); err == nil {
		t.Error("short label slice accepted")
	}
	if err := fc.Fit(tbl, labels, weights[:5]); err == nil {
		t.Error("short weight slice accepted")
	}
}

func TestPredictByClassifierConcatenates(t *testing.T) {
	t1, l1, w1 := gradedTable(20)
	t2, _, _ := gradedTable(10)

	fc := NewFoldingClassifier(func() ports.Classifier { return &meanClassifier{} }, 2, "")
	if err := fc.Fit(t1, l1, w1); err != nil {
		t.Fatal(err)
	}

	combined, probs, err := PredictByClassifier(fc, t1, t2)
	if err != nil {
		t.Fatal(err)
	}
	if combined.RowCount() != 30 {
		t.Errorf("combined table has %d rows, want 30", combined.RowCount())
	}
	if len(probs) != 30 {
		t.Errorf("got %d predictions, want 30", len(probs))
	}

	// The training table keeps its folding-scheme predictions
	direct, err := fc.PredictProba(t1)
	if err != nil {
		t.Fatal(err)
	}
	for i := range direct {
		if probs[i] != direct[i] {
			t.Fatalf("prediction %d changed under concatenation", i)
		}
	}
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
