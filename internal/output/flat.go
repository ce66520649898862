package output

import (
	"io"
	"strconv"

	"deedjoin/internal/tally"
	"deedjoin/internal/types"
)

// flatExcluded are field names with no column in the flat table: courses
// and the split location, whose width varies.
var flatExcluded = map[string]bool{
	types.FieldLocSplit:    true,
	types.FieldLineCurve:   true,
	types.FieldLineMeander: true,
	types.FieldLine:        true,
	types.FieldPoint:       true,
}

// FlatColumns returns the flat table header for the given field names.
func FlatColumns(fields *tally.Multiset) []string {
	cols := []string{"PID"}
	for _, name := range fields.Keys() {
		if !flatExcluded[name] {
			cols = append(cols, name)
		}
	}
	return append(cols, "PointCount")
}

// WriteFlat writes one row per tract parcel: its ordinal, the value of
// each field (the first occurrence when a field repeats) and its course
// count.
func WriteFlat(w io.Writer, t *types.Table) error {
	cols := FlatColumns(t.Fields)
	out := newTSV(w)
	out.row(cols...)

	for _, p := range t.Parcels {
		row := make([]string, len(cols))
		if front := p.Front(); front != nil {
			row[0] = front.Cell(types.MBLParcel)
		}
		for i, name := range cols[1 : len(cols)-1] {
			if r, ok := p.Find(name); ok {
				row[i+1] = r.Cell(types.MBLValue)
			}
		}
		row[len(row)-1] = strconv.Itoa(p.GeometryCount())
		out.row(row...)
	}
	return out.Flush()
}

// WriteFlatFile writes the flat table to path.
func WriteFlatFile(path string, t *types.Table) error {
	return writeFile(path, func(w io.Writer) error { return WriteFlat(w, t) })
}

// WriteKMLFlat writes one row per placemark with its ordinal, display
// name, id and vertex count.
func WriteKMLFlat(w io.Writer, t *types.Table) error {
	out := newTSV(w)
	out.row("pid", "name", "id", "PointCount")

	for _, p := range t.Parcels {
		var pid, name, id string
		for _, r := range p.Records() {
			if pid == "" {
				pid = r.Cell(types.KMLPID)
			}
			switch r.Cell(types.KMLGType) {
			case types.GTypeName:
				name = r.Cell(types.KMLName)
			case types.GTypeID:
				id = r.Cell(types.KMLID)
			}
		}
		out.row(pid, name, id, strconv.Itoa(p.GeometryCount()))
	}
	return out.Flush()
}

// WriteKMLFlatFile writes the placemark flat table to path.
func WriteKMLFlatFile(path string, t *types.Table) error {
	return writeFile(path, func(w io.Writer) error { return WriteKMLFlat(w, t) })
}
