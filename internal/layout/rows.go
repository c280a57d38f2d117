package layout

import (
	"sort"

	"golang-statement-extractor/internal/models"
)

// Row holds the labeled fragments observed at one vertical key. Each label
// appears at most once; entries keep first-insertion order.
type Row struct {
	Key     float64
	Entries []models.LabeledFragment
}

// Get returns the entry with the given label
func (r *Row) Get(label models.Label) (models.LabeledFragment, bool) {
	for _, e := range r.Entries {
		if e.Label == label {
			return e, true
		}
	}
	return models.LabeledFragment{}, false
}

// Has reports whether the row holds an entry with the given label
func (r *Row) Has(label models.Label) bool {
	_, ok := r.Get(label)
	return ok
}

// Len returns the number of entries
func (r *Row) Len() int {
	return len(r.Entries)
}

// Labels returns the row's labels sorted lexically
func (r *Row) Labels() []models.Label {
	labels := make([]models.Label, len(r.Entries))
	for i, e := range r.Entries {
		labels[i] = e.Label
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })
	return labels
}

// HasExactly reports whether the row's labels are exactly the given set
func (r *Row) HasExactly(labels ...models.Label) bool {
	if len(labels) != len(r.Entries) {
		return false
	}
	for _, l := range labels {
		if !r.Has(l) {
			return false
		}
	}
	return true
}

// RowSet clusters labeled fragments into rows by exact vertical key. It is
// scoped to one page.
type RowSet struct {
	rows map[float64]*Row
}

// NewRowSet creates an empty row set
func NewRowSet() *RowSet {
	return &RowSet{rows: make(map[float64]*Row)}
}

// Insert adds a fragment at key. A second fragment with the same label at
// the same key replaces the first in place.
func (s *RowSet) Insert(key float64, fragment models.LabeledFragment) {
	row, ok := s.rows[key]
	if !ok {
		row = &Row{Key: key}
		s.rows[key] = row
	}
	for i, e := range row.Entries {
		if e.Label == fragment.Label {
			row.Entries[i] = fragment
			return
		}
	}
	row.Entries = append(row.Entries, fragment)
}

// Rows returns all rows in ascending key order
func (s *RowSet) Rows() []*Row {
	rows := make([]*Row, 0, len(s.rows))
	for _, r := range s.rows {
		rows = append(rows, r)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })
	return rows
}

// Len returns the number of rows
func (s *RowSet) Len() int {
	return len(s.rows)
}

// Reset discards all rows
func (s *RowSet) Reset() {
	s.rows = make(map[float64]*Row)
}
