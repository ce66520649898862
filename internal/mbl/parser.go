// Package mbl parses tract-description files: one "<name> <value>" field
// per line, "!" comment blocks, and an "end" line after each parcel.
package mbl

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"deedjoin/internal/diag"
	"deedjoin/internal/source"
	"deedjoin/internal/types"
)

// SourceName tags diagnostics produced by this package.
const SourceName = "mbl"

const (
	commentMarker = "!"
	terminator    = "end"
)

// Prefixes configures the comment lines that carry field data.
type Prefixes struct {
	// SingleLine prefixes turn one comment line into an ordinary field.
	SingleLine []string
	// MultiLine prefixes open a labeled block that continues over the
	// following comment lines.
	MultiLine []string
}

// DefaultPrefixes returns the prefixes used by common deed-mapping exports.
func DefaultPrefixes() Prefixes {
	return Prefixes{
		SingleLine: []string{"! NOTE=", "! ANNR=", "! ANNS=", "! ASG=", "! resurvey", "! improvements"},
		MultiLine:  []string{"! RR:"},
	}
}

type lineKind int

const (
	kindField lineKind = iota
	kindSingle
	kindMulti
	kindComment
)

// classify returns the kind of line and, for multi-line blocks, the prefix
// that matched.
func (p Prefixes) classify(line string) (lineKind, string) {
	for _, pre := range p.SingleLine {
		if strings.HasPrefix(line, pre) {
			return kindSingle, pre
		}
	}
	for _, pre := range p.MultiLine {
		if strings.HasPrefix(line, pre) {
			return kindMulti, pre
		}
	}
	if strings.HasPrefix(line, commentMarker) {
		return kindComment, ""
	}
	return kindField, ""
}

// label names a multi-line block after its prefix, without the marker.
func label(prefix string) string {
	return strings.TrimSpace(strings.TrimPrefix(prefix, commentMarker))
}

func isTerminator(line string) bool {
	f := strings.Fields(line)
	return len(f) > 0 && f[0] == terminator
}

// Parse reads lines into a table with one parcel per terminated block.
//
// A malformed line discards the parcel being built and parsing resumes
// after the next terminator; each such event is reported as a
// FormatFailure. A final parcel cut off by the end of input is kept and
// reported as a warning.
func Parse(lines []string, prefixes Prefixes) (*types.Table, diag.Diagnostics) {
	p := &parser{
		cur:      source.NewCursor(lines),
		prefixes: prefixes,
		table:    types.NewTable(),
	}
	p.run()
	return p.table, p.diags
}

type parser struct {
	cur      *source.Cursor
	prefixes Prefixes
	table    *types.Table
	diags    diag.Diagnostics
}

// parcelState holds the counters and pending tallies of the parcel under
// construction. Tallies reach the table only when the parcel is committed.
type parcelState struct {
	parcel   *types.Parcel
	ord      string
	hasID    bool
	comments int
	fields   int
	courses  int

	fieldNames     []string
	courseComments []string
}

func (st *parcelState) all() string {
	return strconv.Itoa(st.comments + st.fields + st.courses)
}

func (p *parser) run() {
	for !p.cur.Done() {
		st := &parcelState{
			parcel: types.NewParcel(types.SourceMBL),
			ord:    strconv.Itoa(p.table.Len() + 1),
		}
		start := p.cur.Line() + 1

		terminated, err := p.readParcel(st)
		if err != nil {
			p.diags.Errorf(diag.FormatFailure, SourceName, diag.LineOf(err), st.parcel.Key,
				"%s; parcel starting at line %d discarded", diag.Reason(err), start)
			p.skipParcel()
			continue
		}
		if st.parcel.Len() == 0 {
			continue
		}
		if !terminated {
			p.diags.Warnf(diag.FormatFailure, SourceName, p.cur.Line(), st.parcel.Key,
				"input ended before %q; parcel starting at line %d kept", terminator, start)
		}
		p.commit(st)
	}
}

// readParcel consumes lines up to and including the terminator. It reports
// whether a terminator was seen before the input ran out.
func (p *parser) readParcel(st *parcelState) (bool, error) {
	for {
		line, ok := p.cur.Next()
		if !ok {
			return false, nil
		}
		if !utf8.ValidString(line) {
			return false, diag.Format(p.cur.Line(), "line is not valid UTF-8")
		}
		if isTerminator(line) {
			return true, nil
		}

		kind, prefix := p.prefixes.classify(line)
		switch kind {
		case kindSingle:
			err := p.field(st, strings.TrimSpace(strings.TrimPrefix(line, commentMarker)))
			if err != nil {
				return false, err
			}
		case kindMulti:
			p.comment(st, label(prefix), strings.TrimPrefix(line, prefix))
		case kindComment:
			p.comment(st, "", strings.TrimPrefix(line, commentMarker))
		default:
			if err := p.field(st, line); err != nil {
				return false, err
			}
		}
	}
}

// comment accumulates a comment block starting with text and continuing
// over plain comment lines. An empty label numbers the block.
func (p *parser) comment(st *parcelState, name, text string) {
	// Only free-text blocks are numbered; labeled blocks keep the count.
	anonymous := name == ""
	if anonymous {
		st.comments++
		name = types.CommentPrefix + strconv.Itoa(st.comments)
	}

	var b strings.Builder
	b.WriteString(normalize(text))
	for {
		next, ok := p.cur.Peek()
		if !ok || !utf8.ValidString(next) {
			break
		}
		if kind, _ := p.prefixes.classify(next); kind != kindComment {
			break
		}
		p.cur.Next()
		b.WriteString(normalize(strings.TrimPrefix(next, commentMarker)))
	}

	body := b.String()
	if strings.TrimSpace(body) == "" {
		if anonymous {
			st.comments--
		}
		return
	}
	st.parcel.Add(types.NewRecord(types.SourceMBL, false,
		name, st.ord, st.all(), strconv.Itoa(st.comments), "0", "0", body))
	st.fieldNames = append(st.fieldNames, name)
}

func normalize(text string) string {
	return strings.ReplaceAll(text, "\t", " ")
}

// field interprets a "<name> <value>" line. Lines without a name or a
// value are ignored.
func (p *parser) field(st *parcelState, line string) error {
	name, value, ok := strings.Cut(line, " ")
	if !ok || name == "" || strings.TrimSpace(value) == "" {
		return nil
	}

	switch {
	case types.IsGeometryField(name):
		p.course(st, name, value)
		return nil
	case name == types.FieldID:
		key := strings.TrimSpace(value)
		if st.hasID && key != st.parcel.Key {
			return diag.Format(p.cur.Line(), "second id %q conflicts with %q", key, st.parcel.Key)
		}
		st.parcel.Key = key
		st.hasID = true
	}

	st.fields++
	st.parcel.Add(types.NewRecord(types.SourceMBL, false,
		name, st.ord, st.all(), "0", strconv.Itoa(st.fields), "0", value))
	st.fieldNames = append(st.fieldNames, name)

	if name == types.FieldLoc {
		st.fields++
		cells := []string{types.FieldLocSplit, st.ord, st.all(), "0", strconv.Itoa(st.fields), "0"}
		cells = append(cells, strings.Fields(value)...)
		st.parcel.Add(types.NewRecord(types.SourceMBL, false, cells...))
	}
	return nil
}

// course adds a geometry record. The value has the shape
// direction[;distance[;comment]].
func (p *parser) course(st *parcelState, name, value string) {
	parts := strings.SplitN(value, ";", 3)
	for len(parts) < 3 {
		parts = append(parts, "")
	}

	st.courses++
	st.parcel.Add(types.NewRecord(types.SourceMBL, true,
		name, st.ord, st.all(), "0", "0", strconv.Itoa(st.courses),
		parts[0], parts[1], parts[2], ""))
	st.courseComments = append(st.courseComments, parts[2])
}

// commit stamps composite ids with the final key, then adds the parcel and
// its tallies to the table.
func (p *parser) commit(st *parcelState) {
	for _, r := range st.parcel.Records() {
		if !r.Geometry {
			continue
		}
		n, _ := strconv.Atoi(r.Cell(types.MBLCourses))
		r.Set(types.MBLCompositeID, types.CompositeID(st.parcel.Key, n))
	}

	p.table.Add(st.parcel)
	for _, name := range st.fieldNames {
		p.table.Fields.Add(name)
	}
	for _, c := range st.courseComments {
		p.table.Comments.Add(c)
	}
}

// skipParcel advances past the next terminator, or to the end of input.
func (p *parser) skipParcel() {
	for {
		line, ok := p.cur.Next()
		if !ok || isTerminator(line) {
			return
		}
	}
}
