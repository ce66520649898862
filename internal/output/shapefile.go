package output

import (
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	shp "github.com/jonas-p/go-shp"

	"deedjoin/internal/diag"
	"deedjoin/internal/types"
)

// shapeField is one DBF attribute and the geo row column it is filled from.
type shapeField struct {
	field  shp.Field
	column int
	number bool
}

// DBF field names are limited to ten characters.
var shapeFields = []shapeField{
	{shp.NumberField("UID", 10), 0, true},
	{shp.StringField("PID", 10), 1, false},
	{shp.StringField("GID", 10), 2, false},
	{shp.StringField("ID", 80), 3, false},
	{shp.StringField("GTYPE", 4), 4, false},
	{shp.StringField("DIR", 50), 5, false},
	{shp.StringField("DIST", 30), 6, false},
	{shp.StringField("GCMNT", 254), 7, false},
	{shp.StringField("TERMS", 254), 8, false},
	{shp.StringField("KML_PID", 10), 9, false},
	{shp.StringField("KML_GID", 10), 10, false},
	{shp.StringField("KML_NAME", 254), 12, false},
}

// Column positions of the vertex coordinates in a geo row.
const (
	geoColX = 14
	geoColY = 15
)

// WriteShapefile writes the joined courses that carry placemark
// coordinates as a point shapefile (.shp, .shx and .dbf next to base). It
// returns the number of points written. Rows without parseable coordinates
// are skipped.
func WriteShapefile(base string, t *types.Table, terms []string) (int, error) {
	w, err := shp.Create(base+".shp", shp.POINT)
	if err != nil {
		return 0, diag.IO(base+".shp", err)
	}

	fields := make([]shp.Field, len(shapeFields))
	for i, f := range shapeFields {
		fields[i] = f.field
	}
	if err := w.SetFields(fields); err != nil {
		w.Close()
		return 0, diag.IO(base+".dbf", err)
	}

	n := 0
	for _, row := range GeoRows(t, terms) {
		x, errX := strconv.ParseFloat(strings.TrimSpace(row[geoColX]), 64)
		y, errY := strconv.ParseFloat(strings.TrimSpace(row[geoColY]), 64)
		if errX != nil || errY != nil {
			continue
		}

		idx := int(w.Write(&shp.Point{X: x, Y: y}))
		for i, f := range shapeFields {
			var value interface{} = truncate(row[f.column], int(f.field.Size))
			if f.number {
				v, _ := strconv.Atoi(row[f.column])
				value = v
			}
			if err := w.WriteAttribute(idx, i, value); err != nil {
				w.Close()
				return n, diag.IO(base+".dbf", err)
			}
		}
		n++
	}
	w.Close()

	// go-shp names the attribute table base+"dbf", without the dot.
	if err := os.Rename(base+"dbf", base+".dbf"); err != nil {
		return n, diag.IO(base+".dbf", err)
	}
	return n, nil
}

// truncate shortens s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	s = s[:max]
	for len(s) > 0 && !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}
