package dataset

import (
	"math"
	"reflect"
	"testing"
)

func TestTableAddAndRetrieveColumns(t *testing.T) {
	tbl := NewTable()
	if err := tbl.AddColumn("a", []float64{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	if err := tbl.AddColumn("b", []float64{4, 5, 6}); err != nil {
		t.Fatal(err)
	}

	if tbl.RowCount() != 3 {
		t.Errorf("row count = %d, want 3", tbl.RowCount())
	}
	col, err := tbl.Column("b")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(col, []float64{4, 5, 6}) {
		t.Errorf("column b = %v", col)
	}
	if !reflect.DeepEqual(tbl.ColumnNames(), []string{"a", "b"}) {
		t.Errorf("column order = %v", tbl.ColumnNames())
	}
}

func TestTableRejectsBadColumns(t *testing.T) {
	tbl := NewTable()
	if err := tbl.AddColumn("a", []float64{1, 2}); err != nil {
		t.Fatal(err)
	}
	if err := tbl.AddColumn("a", []float64{3, 4}); err == nil {
		t.Error("duplicate column name accepted")
	}
	if err := tbl.AddColumn("c", []float64{1}); err == nil {
		t.Error("length mismatch accepted")
	}
	if _, err := tbl.Column("missing"); err == nil {
		t.Error("missing column returned without error")
	}
}

func TestBuildGroupIndex(t *testing.T) {
	idx := BuildGroupIndex([]float64{30, 10, 30, 20, 10})

	if !reflect.DeepEqual(idx.Unique, []float64{10, 20, 30}) {
		t.Errorf("unique keys = %v", idx.Unique)
	}
	if !reflect.DeepEqual(idx.Inverse, []int{2, 0, 2, 1, 0}) {
		t.Errorf("inverse = %v", idx.Inverse)
	}
	if idx.Groups() != 3 {
		t.Errorf("groups = %d, want 3", idx.Groups())
	}
}

func TestTableStatistics(t *testing.T) {
	tbl := NewTable()
	if err := tbl.AddColumn(ColEventID, []float64{1, 1, 2, 2, 3}); err != nil {
		t.Fatal(err)
	}

	stats, err := tbl.Statistics()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Events != 3 || stats.Tracks != 5 {
		t.Errorf("statistics = %+v, want 3 events, 5 tracks", stats)
	}
}

func TestWeightedEventCount(t *testing.T) {
	tbl := NewTable()
	if err := tbl.AddColumn(ColEventID, []float64{1, 1, 2}); err != nil {
		t.Fatal(err)
	}
	// Per-event mean weights: (2+4)/2 = 3 and 5
	if err := tbl.AddColumn(ColWeight, []float64{2, 4, 5}); err != nil {
		t.Fatal(err)
	}

	total, err := tbl.WeightedEventCount()
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(total-8) > 1e-12 {
		t.Errorf("weighted event count = %v, want 8", total)
	}
}

func TestTableSelect(t *testing.T) {
	tbl := NewTable()
	if err := tbl.AddColumn("a", []float64{10, 20, 30, 40}); err != nil {
		t.Fatal(err)
	}
	if err := tbl.AddColumn("b", []float64{1, 2, 3, 4}); err != nil {
		t.Fatal(err)
	}

	sub := tbl.Select([]int{3, 1})
	if sub.RowCount() != 2 {
		t.Fatalf("selected row count = %d, want 2", sub.RowCount())
	}
	a, _ := sub.Column("a")
	if !reflect.DeepEqual(a, []float64{40, 20}) {
		t.Errorf("selected column a = %v", a)
	}
	if !reflect.DeepEqual(sub.ColumnNames(), tbl.ColumnNames()) {
		t.Errorf("selection reordered columns: %v", sub.ColumnNames())
	}
}

func TestConcat(t *testing.T) {
	t1 := NewTable()
	if err := t1.AddColumn("a", []float64{1, 2}); err != nil {
		t.Fatal(err)
	}
	t2 := NewTable()
	if err := t2.AddColumn("a", []float64{3}); err != nil {
		t.Fatal(err)
	}

	combined, err := Concat(t1, t2)
	if err != nil {
		t.Fatal(err)
	}
	col, _ := combined.Column("a")
	if !reflect.DeepEqual(col, []float64{1, 2, 3}) {
		t.Errorf("concatenated column = %v", col)
	}

	t3 := NewTable()
	if err := t3.AddColumn("other", []float64{9}); err != nil {
		t.Fatal(err)
	}
	if _, err := Concat(t1, t3); err == nil {
		t.Error("schema mismatch accepted")
	}
	if _, err := Concat(); err == nil {
		t.Error("empty concatenation accepted")
	}
}
