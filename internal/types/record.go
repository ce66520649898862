// Package types holds the parcel data model shared by the parsers, the
// joiner and the writers.
package types

import "strings"

// Source identifies which input a record or parcel came from.
type Source int

const (
	SourceUnknown Source = iota
	SourceMBL
	SourceKML
)

func (s Source) String() string {
	switch s {
	case SourceMBL:
		return "mbl"
	case SourceKML:
		return "kml"
	}
	return "unknown"
}

// Record is one parsed line: an ordered tuple of text cells. Cell 0 is the
// field name for tract-description records; the placemark layout is
// described by the KML* constants.
type Record struct {
	Cells []string
	// Geometry marks the record as a course or vertex contribution.
	Geometry bool
	Source   Source
}

// NewRecord returns a record holding cells.
func NewRecord(src Source, geometry bool, cells ...string) *Record {
	return &Record{Cells: cells, Geometry: geometry, Source: src}
}

// Cell returns cell i, or "" when the record is shorter.
func (r *Record) Cell(i int) string {
	if i < 0 || i >= len(r.Cells) {
		return ""
	}
	return r.Cells[i]
}

// Set writes cell i, growing the record with blanks if needed.
func (r *Record) Set(i int, v string) {
	for len(r.Cells) <= i {
		r.Cells = append(r.Cells, "")
	}
	r.Cells[i] = v
}

// Name returns cell 0.
func (r *Record) Name() string {
	return r.Cell(0)
}

// Len returns the cell count.
func (r *Record) Len() int {
	return len(r.Cells)
}

// Append adds cells to the end.
func (r *Record) Append(cells ...string) {
	r.Cells = append(r.Cells, cells...)
}

// Clone returns a deep copy.
func (r *Record) Clone() *Record {
	c := *r
	c.Cells = append([]string(nil), r.Cells...)
	return &c
}

func (r *Record) String() string {
	return strings.Join(r.Cells, "\t")
}
