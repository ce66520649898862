package types

import (
	"sort"

	"deedjoin/internal/diag"
	"deedjoin/internal/tally"
)

// Table is an ordered set of parcels plus the field-name and course-comment
// frequencies gathered while parsing. A table owns its parcels.
type Table struct {
	Parcels []*Parcel
	// Fields counts every non-geometry field name seen.
	Fields *tally.Multiset
	// Comments counts every course comment seen.
	Comments *tally.Multiset
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{Fields: tally.New(), Comments: tally.New()}
}

// Add appends p.
func (t *Table) Add(p *Parcel) {
	t.Parcels = append(t.Parcels, p)
}

// Len returns the number of parcels.
func (t *Table) Len() int {
	return len(t.Parcels)
}

// Clone deep-copies every parcel and both multisets.
func (t *Table) Clone() *Table {
	c := &Table{
		Parcels:  make([]*Parcel, len(t.Parcels)),
		Fields:   t.Fields.Clone(),
		Comments: t.Comments.Clone(),
	}
	for i, p := range t.Parcels {
		c.Parcels[i] = p.Clone()
	}
	return c
}

// Sort orders the parcels by key, keeping input order among equal keys.
func (t *Table) Sort() {
	sort.SliceStable(t.Parcels, func(i, j int) bool {
		return t.Parcels[i].Key < t.Parcels[j].Key
	})
}

// Index maps each key to the positions of the parcels carrying it.
type Index map[string][]int

// Index builds a key index over the current parcels.
func (t *Table) Index() Index {
	idx := make(Index, len(t.Parcels))
	for i, p := range t.Parcels {
		idx[p.Key] = append(idx[p.Key], i)
	}
	return idx
}

// Lookup returns the single position holding key. It fails with
// diag.ErrNotFound when no parcel has the key and diag.ErrDuplicateKey when
// more than one does; in the latter case the first position is still
// returned.
func (idx Index) Lookup(key string) (int, error) {
	pos := idx[key]
	switch len(pos) {
	case 0:
		return -1, diag.NotFound(key)
	case 1:
		return pos[0], nil
	default:
		return pos[0], diag.DuplicateKey(key, len(pos))
	}
}

// Lookup finds the parcel with key. See Index.Lookup for the error contract.
func (t *Table) Lookup(key string) (*Parcel, int, error) {
	pos, err := t.Index().Lookup(key)
	if pos < 0 {
		return nil, pos, err
	}
	return t.Parcels[pos], pos, err
}
