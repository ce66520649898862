package output

import (
	"io"
	"strconv"
	"strings"

	"deedjoin/internal/types"
)

// GeoHeader is the header of the joined course table.
var GeoHeader = []string{
	"UID", "PID", "GID", "id", "GType", "Dir", "Dist", "GCmnt", "FoundTerms",
	"KML_pid", "KML_gid", "KML_gtype", "KML_name", "KML_id", "KML_x", "KML_y",
}

// geoCells maps the columns after FoundTerms to joined row cells.
var geoCells = []int{
	types.JoinedKMLOffset + types.KMLPID,
	types.JoinedKMLOffset + types.KMLGID,
	types.JoinedKMLOffset + types.KMLGType,
	types.JoinedKMLName,
	types.JoinedKMLOffset + types.KMLID,
	types.JoinedKMLOffset + types.KMLX,
	types.JoinedKMLOffset + types.KMLY,
}

// FoundTerms returns the terms occurring in comment, ignoring case, joined
// by ", " in the order given.
func FoundTerms(comment string, terms []string) string {
	lower := strings.ToLower(comment)
	var found []string
	for _, term := range terms {
		if term != "" && strings.Contains(lower, strings.ToLower(term)) {
			found = append(found, term)
		}
	}
	return strings.Join(found, ", ")
}

// GeoRows renders the course rows of a joined table, numbering them from 1.
func GeoRows(t *types.Table, terms []string) [][]string {
	var rows [][]string
	for _, p := range t.Parcels {
		for _, r := range p.Records() {
			comment := r.Cell(types.MBLCourseComment)
			row := []string{
				strconv.Itoa(len(rows) + 1),
				r.Cell(types.MBLParcel),
				r.Cell(types.MBLCourses),
				r.Cell(types.MBLCompositeID),
				r.Cell(types.MBLFieldName),
				r.Cell(types.MBLDirection),
				r.Cell(types.MBLDistance),
				comment,
				FoundTerms(comment, terms),
			}
			for _, i := range geoCells {
				row = append(row, r.Cell(i))
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// WriteGeo writes the joined course table.
func WriteGeo(w io.Writer, t *types.Table, terms []string) error {
	out := newTSV(w)
	out.row(GeoHeader...)
	for _, row := range GeoRows(t, terms) {
		out.row(row...)
	}
	return out.Flush()
}

// WriteGeoFile writes the joined course table to path.
func WriteGeoFile(path string, t *types.Table, terms []string) error {
	return writeFile(path, func(w io.Writer) error { return WriteGeo(w, t, terms) })
}
