package calibration

import (
	"math"
	"reflect"
	"testing"

	"flavortag/domain/tagging"
	"flavortag/internal/testkit"
)

func TestCalibrateProbsSeparable(t *testing.T) {
	data := testkit.SeparableData(2000, 1)

	res, err := CalibrateProbs(data, DefaultOptions())
	if err != nil {
		t.Fatalf("calibration failed: %v", err)
	}
	if len(res.Probs) != data.Len() {
		t.Fatalf("expected %d probabilities, got %d", data.Len(), len(res.Probs))
	}
	for i, p := range res.Probs {
		if p < 0 || p > 1 || math.IsNaN(p) {
			t.Fatalf("probability %d = %v outside [0,1]", i, p)
		}
	}
	// Perfectly separable data is nearly certain after calibration
	if res.D2 < 0.85 {
		t.Errorf("D2 = %v on separable data, want > 0.85", res.D2)
	}
	if res.FoldA == nil || res.FoldB == nil {
		t.Error("fold calibrators not retained")
	}
}

func TestCalibrateProbsNoise(t *testing.T) {
	data := testkit.NoiseData(2000, 2)

	res, err := CalibrateProbs(data, DefaultOptions())
	if err != nil {
		t.Fatalf("calibration failed: %v", err)
	}
	// Uninformative scores calibrate toward 0.5
	if res.D2 > 0.2 {
		t.Errorf("D2 = %v on pure noise, want near 0", res.D2)
	}
}

func TestCalibrateProbsDeterministic(t *testing.T) {
	data := testkit.SeparableData(500, 3)

	r1, err := CalibrateProbs(data, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	r2, err := CalibrateProbs(data, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(r1.Probs, r2.Probs) {
		t.Error("identical inputs and options produced different calibrations")
	}
}

func TestCalibrateProbsSymmetrized(t *testing.T) {
	data := testkit.MirroredData(1000, 4)

	res, err := CalibrateProbs(data, Options{Symmetrize: true, Seed: DefaultSeed})
	if err != nil {
		t.Fatalf("calibration failed: %v", err)
	}

	// A symmetrized fold calibrator satisfies f(s) + f(1-s) = 1
	for _, cal := range []tagging.Transformer{res.FoldA, res.FoldB} {
		probe := []float64{0.1, 0.3, 0.45}
		mirror := []float64{0.9, 0.7, 0.55}
		lo := cal.Transform(probe)
		hi := cal.Transform(mirror)
		for i := range probe {
			if sum := lo[i] + hi[i]; math.Abs(sum-1) > 1e-6 {
				t.Errorf("f(%v) + f(%v) = %v, want 1", probe[i], mirror[i], sum)
			}
		}
	}
}

func TestCalibrateProbsEtaSpace(t *testing.T) {
	data := testkit.SeparableData(2000, 6)

	res, err := CalibrateProbs(data, Options{InEtaSpace: true, Seed: DefaultSeed})
	if err != nil {
		t.Fatalf("calibration failed: %v", err)
	}
	for i, p := range res.Probs {
		if p < 0 || p > 1 || math.IsNaN(p) {
			t.Fatalf("probability %d = %v outside [0,1]", i, p)
		}
	}
	// The half-range path must preserve each sample's tag side
	for i, p := range res.Probs {
		raw := data.Scores[i]
		if raw > 0.5 && p < 0.5-1e-9 {
			t.Fatalf("sample %d flipped sides: raw %v, calibrated %v", i, raw, p)
		}
		if raw < 0.5 && p > 0.5+1e-9 {
			t.Fatalf("sample %d flipped sides: raw %v, calibrated %v", i, raw, p)
		}
	}
	if res.D2 < 0.8 {
		t.Errorf("D2 = %v in half-range calibration of separable data", res.D2)
	}
}

func TestCalibrateProbsLogistic(t *testing.T) {
	data := testkit.SeparableData(2000, 7)

	res, err := CalibrateProbs(data, Options{Logistic: true, Seed: DefaultSeed})
	if err != nil {
		t.Fatalf("calibration failed: %v", err)
	}
	for _, p := range res.Probs {
		if p < 0 || p > 1 || math.IsNaN(p) {
			t.Fatalf("sigmoid recalibration left [0,1]: %v", p)
		}
	}
	if res.D2 < 0.5 {
		t.Errorf("D2 = %v under sigmoid recalibration of separable data", res.D2)
	}
}

func TestCalibrateProbsGroupedSplit(t *testing.T) {
	data := testkit.SeparableData(300, 8)
	data.GroupID = make([]float64, data.Len())
	for i := range data.GroupID {
		data.GroupID[i] = float64(i / 3) // 100 groups of 3
	}

	res, err := CalibrateProbs(data, DefaultOptions())
	if err != nil {
		t.Fatalf("grouped calibration failed: %v", err)
	}
	if len(res.Probs) != data.Len() {
		t.Fatalf("expected %d probabilities, got %d", data.Len(), len(res.Probs))
	}
}

func TestCalibrateProbsRejectsBadShapes(t *testing.T) {
	bad := &tagging.TaggingData{
		Scores:  []float64{0.1, 0.9},
		Labels:  []float64{1},
		Weights: []float64{1, 1},
	}
	if _, err := CalibrateProbs(bad, DefaultOptions()); err == nil {
		t.Error("mismatched shapes accepted")
	}

	empty := &tagging.TaggingData{}
	if _, err := CalibrateProbs(empty, DefaultOptions()); err == nil {
		t.Error("empty sample set accepted")
	}
}
