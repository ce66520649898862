// Package kml parses placemark files exported by deed-mapping tools. Only
// the line-per-tag subset those tools write is recognized.
package kml

import (
	"regexp"
	"strconv"
	"strings"

	"deedjoin/internal/diag"
	"deedjoin/internal/source"
	"deedjoin/internal/types"
)

// SourceName tags diagnostics produced by this package.
const SourceName = "kml"

// gidNone marks name and id records, which carry no geometry.
const gidNone = "-1"

const (
	tagPlacemark      = "<Placemark"
	tagPlacemarkClose = "</Placemark>"
	tagKMLClose       = "</kml>"
	tagName           = "<name>"
	tagNameClose      = "</name>"
	tagSimpleData     = "<SimpleData"
	tagSimpleClose    = "</SimpleData>"
	tagPoint          = "<Point>"
	tagLineString     = "<LineString>"
	tagCoords         = "<coordinates>"
	tagCoordsClose    = "</coordinates>"
)

var idAttr = regexp.MustCompile(`(?i)name\s*=\s*"id"`)

// Parse reads lines into a table with one parcel per placemark. Parsing
// stops at the closing kml tag.
//
// A placemark whose geometry cannot be read is discarded and reported as a
// FormatFailure; parsing resumes at the next placemark.
func Parse(lines []string) (*types.Table, diag.Diagnostics) {
	p := &parser{cur: source.NewCursor(lines), table: types.NewTable()}
	p.run()
	return p.table, p.diags
}

type parser struct {
	cur   *source.Cursor
	table *types.Table
	diags diag.Diagnostics
	ended bool
}

// next returns the next trimmed, entity-decoded line.
func (p *parser) next() (string, bool) {
	line, ok := p.cur.Next()
	if !ok {
		return "", false
	}
	return source.DecodeEntities(strings.TrimSpace(line)), true
}

func isKMLClose(line string) bool {
	return strings.EqualFold(line, tagKMLClose)
}

func (p *parser) run() {
	for !p.ended {
		line, ok := p.next()
		if !ok {
			return
		}
		switch {
		case isKMLClose(line):
			return
		case strings.HasPrefix(line, tagPlacemark):
			p.placemark()
		}
	}
}

// placemarkState is the placemark under construction.
type placemarkState struct {
	parcel *types.Parcel
	pid    string
	gid    int
}

// placemark reads one placemark body up to its closing tag.
func (p *parser) placemark() {
	st := &placemarkState{
		parcel: types.NewParcel(types.SourceKML),
		pid:    strconv.Itoa(p.table.Len() + 1),
	}
	start := p.cur.Line()

	for {
		line, ok := p.next()
		if !ok {
			p.diags.Warnf(diag.FormatFailure, SourceName, p.cur.Line(), st.parcel.Key,
				"input ended inside placemark starting at line %d; kept", start)
			p.commit(st)
			p.ended = true
			return
		}

		switch {
		case strings.HasPrefix(line, tagPlacemarkClose):
			p.commit(st)
			return
		case isKMLClose(line):
			p.diags.Warnf(diag.FormatFailure, SourceName, p.cur.Line(), st.parcel.Key,
				"document closed inside placemark starting at line %d; kept", start)
			p.commit(st)
			p.ended = true
			return
		case strings.HasPrefix(line, tagName) && strings.Contains(line, tagNameClose):
			name := between(line, tagName, tagNameClose)
			st.parcel.Name = name
			st.parcel.Add(types.NewRecord(types.SourceKML, false,
				st.pid, gidNone, types.GTypeName, name, "", ""))
		case strings.HasPrefix(line, tagSimpleData) && strings.Contains(line, tagSimpleClose):
			if !idAttr.MatchString(line) {
				continue
			}
			id := strings.TrimSpace(simpleDataValue(line))
			st.parcel.Key = id
			st.parcel.Add(types.NewRecord(types.SourceKML, false,
				st.pid, gidNone, types.GTypeID, id, "", ""))
		case strings.HasPrefix(line, tagPoint) || strings.HasPrefix(line, tagLineString):
			if err := p.geometry(st, line); err != nil {
				p.diags.Errorf(diag.FormatFailure, SourceName, diag.LineOf(err), st.parcel.Key,
					"%s; placemark starting at line %d discarded", diag.Reason(err), start)
				p.skipPlacemark()
				return
			}
		}
	}
}

// geometry reads the coordinates of a Point or LineString whose opening
// tag is on line. The coordinates may follow on the same line or span
// several lines.
func (p *parser) geometry(st *placemarkState, line string) error {
	gtype := types.GTypeLineString
	if strings.HasPrefix(line, tagPoint) {
		gtype = types.GTypePoint
	}
	opened := p.cur.Line()

	var coords strings.Builder
	inside := false
	for {
		if !inside {
			if i := strings.Index(line, tagCoords); i >= 0 {
				inside = true
				line = line[i+len(tagCoords):]
			}
		}
		if inside {
			if i := strings.Index(line, tagCoordsClose); i >= 0 {
				coords.WriteString(line[:i])
				break
			}
			coords.WriteString(line)
			coords.WriteByte(' ')
		}

		var ok bool
		line, ok = p.next()
		if !ok || strings.HasPrefix(line, tagPlacemarkClose) || isKMLClose(line) {
			if !ok {
				p.ended = true
			} else {
				p.cur.Seek(p.cur.Pos() - 1)
			}
			if inside {
				return diag.Format(opened, "unterminated %s in %s", tagCoords, gtype)
			}
			return diag.Format(opened, "%s has no %s", gtype, tagCoords)
		}
	}

	vertices := strings.Fields(coords.String())
	if len(vertices) == 0 {
		return diag.Format(opened, "%s has no coordinates", gtype)
	}
	if gtype == types.GTypePoint {
		vertices = vertices[:1]
	}

	for _, v := range vertices {
		xyz := strings.Split(v, ",")
		if len(xyz) < 2 {
			return diag.Format(p.cur.Line(), "coordinate %q needs at least x and y", v)
		}
		gid := 0
		if gtype == types.GTypeLineString {
			st.gid++
			gid = st.gid
		}
		st.parcel.Add(types.NewRecord(types.SourceKML, true,
			st.pid, strconv.Itoa(gid), gtype, "", xyz[0], xyz[1]))
	}
	return nil
}

// commit stamps composite ids on geometry records and adds the placemark.
func (p *parser) commit(st *placemarkState) {
	if st.parcel.Len() == 0 {
		return
	}
	for _, r := range st.parcel.Records() {
		if !r.Geometry {
			continue
		}
		gid, _ := strconv.Atoi(r.Cell(types.KMLGID))
		r.Set(types.KMLID, types.CompositeID(st.parcel.Key, gid))
	}
	p.table.Add(st.parcel)
}

// skipPlacemark advances past the current placemark's closing tag.
func (p *parser) skipPlacemark() {
	for !p.ended {
		line, ok := p.next()
		switch {
		case !ok, isKMLClose(line):
			p.ended = true
		case strings.HasPrefix(line, tagPlacemarkClose):
			return
		}
	}
}

// between returns the text between open and the following close tag.
func between(line, open, close string) string {
	i := strings.Index(line, open)
	if i < 0 {
		return ""
	}
	rest := line[i+len(open):]
	if j := strings.Index(rest, close); j >= 0 {
		return rest[:j]
	}
	return rest
}

// simpleDataValue returns the element text of a SimpleData line.
func simpleDataValue(line string) string {
	i := strings.Index(line, ">")
	j := strings.LastIndex(line, tagSimpleClose)
	if i < 0 || j <= i {
		return ""
	}
	return line[i+1 : j]
}
