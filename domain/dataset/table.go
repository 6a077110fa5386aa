package dataset

import (
	"sort"

	"flavortag/domain/core"
	"flavortag/internal/errors"
)

// Canonical column names used by the tagging pipeline
const (
	ColEventID   = "event_id"
	ColWeight    = "N_sig_sw"
	ColSignB     = "signB"
	ColSignTrack = "signTrack"
	ColLabel     = "label"
)

// Table is the canonical columnar data object for tagging computation:
// dense numeric columns addressed by name, one row per scored item.
type Table struct {
	ID      core.DatasetID
	columns map[string][]float64
	names   []string // insertion order, for stable iteration
	rows    int
}

// NewTable creates an empty table
func NewTable() *Table {
	return &Table{
		ID:      core.DatasetID(core.NewID()),
		columns: make(map[string][]float64),
	}
}

// AddColumn attaches a named column. The first column fixes the row count.
func (t *Table) AddColumn(name string, values []float64) error {
	if _, exists := t.columns[name]; exists {
		return errors.InvalidInput("duplicate column " + name)
	}
	if len(t.names) == 0 {
		t.rows = len(values)
	} else if len(values) != t.rows {
		return errors.ShapeMismatch("column "+name, t.rows, len(values))
	}
	t.columns[name] = values
	t.names = append(t.names, name)
	return nil
}

// Column returns a named column. The slice is shared, not copied; callers
// treat it as read-only.
func (t *Table) Column(name string) ([]float64, error) {
	col, ok := t.columns[name]
	if !ok {
		return nil, errors.ColumnMissing(name)
	}
	return col, nil
}

// HasColumn reports whether a named column exists
func (t *Table) HasColumn(name string) bool {
	_, ok := t.columns[name]
	return ok
}

// ColumnNames returns column names in insertion order
func (t *Table) ColumnNames() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// RowCount returns the number of rows
func (t *Table) RowCount() int {
	return t.rows
}

// GroupIndex maps each row to the position of its key value among the
// sorted unique keys, mirroring a unique-with-inverse decomposition.
type GroupIndex struct {
	Unique  []float64 // sorted unique key values
	Inverse []int     // per row: index into Unique
}

// Groups returns the number of distinct keys
func (g *GroupIndex) Groups() int {
	return len(g.Unique)
}

// BuildGroupIndex decomposes a key column into sorted unique values plus
// a per-row inverse index.
func BuildGroupIndex(keys []float64) *GroupIndex {
	uniq := make([]float64, 0)
	seen := make(map[float64]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			uniq = append(uniq, k)
		}
	}
	sort.Float64s(uniq)

	pos := make(map[float64]int, len(uniq))
	for i, k := range uniq {
		pos[k] = i
	}
	inv := make([]int, len(keys))
	for i, k := range keys {
		inv[i] = pos[k]
	}
	return &GroupIndex{Unique: uniq, Inverse: inv}
}

// EventIndex builds a group index over the event id column
func (t *Table) EventIndex() (*GroupIndex, error) {
	ids, err := t.Column(ColEventID)
	if err != nil {
		return nil, err
	}
	return BuildGroupIndex(ids), nil
}

// EventStatistics summarizes a tagging dataset: distinct events and
// total tracks.
type EventStatistics struct {
	Events int
	Tracks int
}

// Statistics returns event/track counts for the table
func (t *Table) Statistics() (EventStatistics, error) {
	idx, err := t.EventIndex()
	if err != nil {
		return EventStatistics{}, err
	}
	return EventStatistics{Events: idx.Groups(), Tracks: t.RowCount()}, nil
}

// WeightedEventCount sums the per-event mean sWeight over all events,
// the effective number of B decays represented by the table.
func (t *Table) WeightedEventCount() (float64, error) {
	idx, err := t.EventIndex()
	if err != nil {
		return 0, err
	}
	weights, err := t.Column(ColWeight)
	if err != nil {
		return 0, err
	}

	sums := make([]float64, idx.Groups())
	counts := make([]float64, idx.Groups())
	for row, g := range idx.Inverse {
		sums[g] += weights[row]
		counts[g]++
	}
	total := 0.0
	for g := range sums {
		total += sums[g] / counts[g]
	}
	return total, nil
}

// Select returns a new table holding only the given rows, preserving
// column order. Row indices must be in range.
func (t *Table) Select(rows []int) *Table {
	out := NewTable()
	for _, name := range t.names {
		src := t.columns[name]
		col := make([]float64, len(rows))
		for i, r := range rows {
			col[i] = src[r]
		}
		// AddColumn cannot fail here: names are unique and lengths agree
		_ = out.AddColumn(name, col)
	}
	return out
}

// Concat appends the rows of other tables sharing this table's schema
func Concat(tables ...*Table) (*Table, error) {
	if len(tables) == 0 {
		return nil, errors.InvalidInput("no tables to concatenate")
	}
	out := NewTable()
	for _, name := range tables[0].names {
		total := 0
		for _, tbl := range tables {
			if !tbl.HasColumn(name) {
				return nil, errors.ColumnMissing(name)
			}
			total += tbl.rows
		}
		col := make([]float64, 0, total)
		for _, tbl := range tables {
			col = append(col, tbl.columns[name]...)
		}
		if err := out.AddColumn(name, col); err != nil {
			return nil, err
		}
	}
	return out, nil
}
