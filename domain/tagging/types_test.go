package tagging

import (
	"math"
	"reflect"
	"testing"
)

func TestTaggingDataValidate(t *testing.T) {
	good := &TaggingData{
		Scores:  []float64{0.2, 0.8},
		Labels:  []float64{0, 1},
		Weights: []float64{1, 1},
	}
	if err := good.Validate(); err != nil {
		t.Errorf("valid data rejected: %v", err)
	}

	cases := []struct {
		name string
		data *TaggingData
	}{
		{"empty", &TaggingData{}},
		{"label length", &TaggingData{
			Scores: []float64{0.5, 0.5}, Labels: []float64{1}, Weights: []float64{1, 1},
		}},
		{"weight length", &TaggingData{
			Scores: []float64{0.5, 0.5}, Labels: []float64{1, 0}, Weights: []float64{1},
		}},
		{"group length", &TaggingData{
			Scores: []float64{0.5, 0.5}, Labels: []float64{1, 0},
			Weights: []float64{1, 1}, GroupID: []float64{1},
		}},
		{"NaN score", &TaggingData{
			Scores: []float64{math.NaN(), 0.5}, Labels: []float64{1, 0}, Weights: []float64{1, 1},
		}},
		{"negative weight", &TaggingData{
			Scores: []float64{0.5, 0.5}, Labels: []float64{1, 0}, Weights: []float64{-1, 1},
		}},
	}
	for _, tc := range cases {
		if err := tc.data.Validate(); err == nil {
			t.Errorf("%s accepted", tc.name)
		}
	}
}

func TestBinarizeLabels(t *testing.T) {
	d := &TaggingData{Labels: []float64{-1, 0, 0.5, 1}}

	if got := d.BinarizeLabels(0); !reflect.DeepEqual(got, []float64{0, 0, 1, 1}) {
		t.Errorf("threshold 0: %v", got)
	}
	if got := d.BinarizeLabels(0.5); !reflect.DeepEqual(got, []float64{0, 0, 0, 1}) {
		t.Errorf("threshold 0.5: %v", got)
	}
}

func TestGrouped(t *testing.T) {
	d := &TaggingData{Scores: []float64{0.5}}
	if d.Grouped() {
		t.Error("ungrouped data reports grouping")
	}
	d.GroupID = []float64{7}
	if !d.Grouped() {
		t.Error("grouped data not detected")
	}
}
