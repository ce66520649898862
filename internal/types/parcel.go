package types

import (
	"fmt"
	"strings"
)

// Status is the join classification of a parcel.
type Status int

const (
	StatusUnjoined Status = iota
	StatusCombined
	StatusFailed
	StatusNoMatchKML
	StatusNoMatchMBL
)

func (s Status) String() string {
	switch s {
	case StatusCombined:
		return "combined"
	case StatusFailed:
		return "failed"
	case StatusNoMatchKML:
		return "noMatchKML"
	case StatusNoMatchMBL:
		return "noMatchMBL"
	}
	return "unjoined"
}

// Parcel is the record group for one land unit. Two parcels are equal when
// their keys are equal, regardless of content.
type Parcel struct {
	// Key is the comparator value, normally the surveyed parcel id.
	Key string
	// Name is the placemark display name, copied onto MBL parcels when combined.
	Name   string
	Source Source

	Combined   bool
	Failed     bool
	NoMatchKML bool
	NoMatchMBL bool
	Joined     bool

	records  []*Record
	geometry int
}

// NewParcel returns an empty parcel from src.
func NewParcel(src Source) *Parcel {
	return &Parcel{Source: src}
}

// Add appends r, counting it toward the geometry count when it is a
// geometry record.
func (p *Parcel) Add(r *Record) {
	if r.Geometry {
		p.geometry++
	}
	p.records = append(p.records, r)
}

// Absorb appends copies of all of other's records without changing this
// parcel's geometry count, which keeps describing its own courses.
func (p *Parcel) Absorb(other *Parcel) {
	for _, r := range other.records {
		p.records = append(p.records, r.Clone())
	}
}

// PopFront removes and returns the first record, or nil.
func (p *Parcel) PopFront() *Record {
	if len(p.records) == 0 {
		return nil
	}
	r := p.records[0]
	p.records[0] = nil
	p.records = p.records[1:]
	if r.Geometry {
		p.geometry--
	}
	return r
}

// RemoveAt removes and returns the record at i, or nil when i is out of range.
func (p *Parcel) RemoveAt(i int) *Record {
	if i < 0 || i >= len(p.records) {
		return nil
	}
	r := p.records[i]
	p.records = append(p.records[:i], p.records[i+1:]...)
	if r.Geometry {
		p.geometry--
	}
	return r
}

// Front returns the first record without removing it, or nil.
func (p *Parcel) Front() *Record {
	if len(p.records) == 0 {
		return nil
	}
	return p.records[0]
}

// At returns record i.
func (p *Parcel) At(i int) *Record {
	return p.records[i]
}

// Records returns the records in order. The slice must not be modified.
func (p *Parcel) Records() []*Record {
	return p.records
}

// Find returns the first record whose name is name.
func (p *Parcel) Find(name string) (*Record, bool) {
	for _, r := range p.records {
		if r.Name() == name {
			return r, true
		}
	}
	return nil, false
}

// Len returns the number of records.
func (p *Parcel) Len() int {
	return len(p.records)
}

// GeometryCount returns the number of geometry contributions added.
func (p *Parcel) GeometryCount() int {
	return p.geometry
}

// Equal compares keys only.
func (p *Parcel) Equal(o *Parcel) bool {
	return o != nil && p.Key == o.Key
}

// Status returns the classification from the flags.
func (p *Parcel) Status() Status {
	switch {
	case p.Combined:
		return StatusCombined
	case p.Failed:
		return StatusFailed
	case p.NoMatchKML:
		return StatusNoMatchKML
	case p.NoMatchMBL:
		return StatusNoMatchMBL
	}
	return StatusUnjoined
}

// Clone returns a deep copy including flags and geometry count.
func (p *Parcel) Clone() *Parcel {
	c := *p
	c.records = make([]*Record, len(p.records))
	for i, r := range p.records {
		c.records[i] = r.Clone()
	}
	return &c
}

func (p *Parcel) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "parcel %q (%s, %s, %d courses)\n", p.Key, p.Source, p.Status(), p.geometry)
	for _, r := range p.records {
		b.WriteString(r.String())
		b.WriteByte('\n')
	}
	return b.String()
}
