package mbl

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deedjoin/internal/diag"
	"deedjoin/internal/types"
)

func cells(p *types.Parcel) [][]string {
	var out [][]string
	for _, r := range p.Records() {
		out = append(out, r.Cells)
	}
	return out
}

func TestParseCourses(t *testing.T) {
	lines := []string{"id 101", "lm N45E;120;old oak", "end", "id 102", "lm N10W;80;", "end"}

	tbl, diags := Parse(lines, DefaultPrefixes())
	require.Zero(t, diags.Len())
	require.Equal(t, 2, tbl.Len())

	want := [][]string{
		{"id", "1", "1", "0", "1", "0", "101"},
		{"lm", "1", "2", "0", "0", "1", "N45E", "120", "old oak", "101    [1]"},
	}
	assert.Empty(t, cmp.Diff(want, cells(tbl.Parcels[0])))
	assert.Equal(t, "101", tbl.Parcels[0].Key)
	assert.Equal(t, 1, tbl.Parcels[0].GeometryCount())

	second := tbl.Parcels[1]
	assert.Equal(t, "102", second.Key)
	assert.Equal(t, "2", second.At(0).Cell(types.MBLParcel))
	assert.Equal(t, "102    [1]", second.At(1).Cell(types.MBLCompositeID))

	assert.Equal(t, 2, tbl.Fields.Count("id"))
	assert.False(t, tbl.Fields.Contains("lm"))
	assert.Equal(t, 1, tbl.Comments.Count("old oak"))
	assert.Equal(t, 1, tbl.Comments.Count(""))
}

func TestParseCommentsAndCustomFields(t *testing.T) {
	lines := []string{
		"id 7",
		"! hello\tworld",
		"!  more",
		"! RR: road along",
		"! creek",
		"loc 12 34 56",
		"! NOTE= big tree",
		"end",
	}

	tbl, diags := Parse(lines, DefaultPrefixes())
	require.Zero(t, diags.Len())
	require.Equal(t, 1, tbl.Len())

	want := [][]string{
		{"id", "1", "1", "0", "1", "0", "7"},
		{"z_cmnt1", "1", "2", "1", "0", "0", " hello world  more"},
		{"RR:", "1", "2", "1", "0", "0", " road along creek"},
		{"loc", "1", "3", "0", "2", "0", "12 34 56"},
		{"loc_tay", "1", "4", "0", "3", "0", "12", "34", "56"},
		{"NOTE=", "1", "5", "0", "4", "0", "big tree"},
	}
	assert.Empty(t, cmp.Diff(want, cells(tbl.Parcels[0])))
	assert.Equal(t, 0, tbl.Parcels[0].GeometryCount())

	assert.Equal(t, []string{"NOTE=", "RR:", "id", "loc", "z_cmnt1"}, tbl.Fields.Keys())
}

func TestParseLabeledBlockKeepsCommentNumbering(t *testing.T) {
	lines := []string{"id 1", "! RR: road", "lm N;1;", "! free note", "end"}

	tbl, diags := Parse(lines, DefaultPrefixes())
	require.Zero(t, diags.Len())
	require.Equal(t, 1, tbl.Len())

	recs := tbl.Parcels[0].Records()
	require.Len(t, recs, 4)
	assert.Equal(t, "RR:", recs[1].Name())
	assert.Equal(t, "0", recs[1].Cell(types.MBLComments))
	assert.Equal(t, "z_cmnt1", recs[3].Name())
	assert.Equal(t, "1", recs[3].Cell(types.MBLComments))
	assert.True(t, tbl.Fields.Contains("z_cmnt1"))
	assert.False(t, tbl.Fields.Contains("z_cmnt2"))

	tbl, _ = Parse([]string{"id 2", "! RR:", "!  ", "lm N;1;", "! free", "end"}, DefaultPrefixes())
	recs = tbl.Parcels[0].Records()
	require.Len(t, recs, 3)
	assert.Equal(t, "lm", recs[1].Name())
	assert.Equal(t, "z_cmnt1", recs[2].Name())
	assert.Equal(t, "1", recs[2].Cell(types.MBLComments))
}

func TestParseWhitespaceBlockDiscarded(t *testing.T) {
	prefixes := Prefixes{MultiLine: []string{"! NOTE="}}
	lines := []string{"id 5", "! NOTE=", "!   ", "! real", "lm N;1;", "end"}

	tbl, diags := Parse(lines, prefixes)
	require.Zero(t, diags.Len())
	require.Equal(t, 1, tbl.Len())

	recs := tbl.Parcels[0].Records()
	require.Len(t, recs, 3)
	assert.Equal(t, "NOTE=", recs[1].Name())
	assert.Equal(t, "    real", recs[1].Cell(types.MBLValue))

	tbl, _ = Parse([]string{"id 5", "! NOTE=", "!   ", "lm N;1;", "end"}, prefixes)
	recs = tbl.Parcels[0].Records()
	require.Len(t, recs, 2)
	assert.Equal(t, "id", recs[0].Name())
	assert.Equal(t, "lm", recs[1].Name())
	assert.Equal(t, "2", recs[1].Cell(types.MBLAllFields))
	assert.False(t, tbl.Fields.Contains("NOTE="))

	tbl, _ = Parse([]string{"id 6", "!\t", "! kept", "end"}, prefixes)
	recs = tbl.Parcels[0].Records()
	require.Len(t, recs, 2)
	assert.Equal(t, "z_cmnt1", recs[1].Name())
	assert.Equal(t, "  kept", recs[1].Cell(types.MBLValue))
}

func TestParseGeometryShapes(t *testing.T) {
	lines := []string{"pt 1000,2000", "ln S10W;45", "lc N;10;curve;extra", "id 9", "end"}

	tbl, _ := Parse(lines, DefaultPrefixes())
	require.Equal(t, 1, tbl.Len())
	p := tbl.Parcels[0]

	assert.Equal(t, "1000,2000", p.At(0).Cell(types.MBLDirection))
	assert.Equal(t, "", p.At(0).Cell(types.MBLDistance))
	assert.Equal(t, "45", p.At(1).Cell(types.MBLDistance))
	assert.Equal(t, "curve;extra", p.At(2).Cell(types.MBLCourseComment))
	assert.Equal(t, "9    [1]", p.At(0).Cell(types.MBLCompositeID))
	assert.Equal(t, "9    [3]", p.At(2).Cell(types.MBLCompositeID))
}

func TestParseGeometryCountMatchesRecords(t *testing.T) {
	lines := []string{
		"id 1", "pt 0,0", "lm N;1;", "! c", "ln S;2;", "loc a b", "lc E;3;", "end",
		"id 2", "end",
		"id 3", "lm W;4;", "end",
	}
	tbl, _ := Parse(lines, DefaultPrefixes())
	require.Equal(t, 3, tbl.Len())

	for _, p := range tbl.Parcels {
		n := 0
		for _, r := range p.Records() {
			if r.Geometry {
				n++
			}
		}
		assert.Equal(t, n, p.GeometryCount(), p.Key)
	}
	assert.Equal(t, 4, tbl.Parcels[0].GeometryCount())
}

func TestParseUnterminated(t *testing.T) {
	tbl, diags := Parse([]string{"id 1", "end", "id 2", "lm N;1;x"}, DefaultPrefixes())
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, "2", tbl.Parcels[1].Key)
	assert.Equal(t, 1, tbl.Parcels[1].GeometryCount())

	require.Equal(t, 1, diags.Len())
	d := diags.Items[0]
	assert.Equal(t, diag.FormatFailure, d.Kind)
	assert.Equal(t, diag.Warning, d.Severity)
	assert.Equal(t, "2", d.Key)
	assert.False(t, diags.HasErrors())
}

func TestParseTrailingBlankLines(t *testing.T) {
	tbl, diags := Parse([]string{"id 1", "end", "", "  "}, DefaultPrefixes())
	assert.Equal(t, 1, tbl.Len())
	assert.Zero(t, diags.Len())
}

func TestParseRecoversFromConflictingID(t *testing.T) {
	lines := []string{"id 1", "id 2", "lm a;b;c", "end", "id 3", "lm N;1;oak", "end"}

	tbl, diags := Parse(lines, DefaultPrefixes())
	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, "3", tbl.Parcels[0].Key)
	assert.Equal(t, "1", tbl.Parcels[0].At(0).Cell(types.MBLParcel))

	require.Equal(t, 1, diags.Len())
	assert.Equal(t, diag.FormatFailure, diags.Items[0].Kind)
	assert.Equal(t, 2, diags.Items[0].Line)
	assert.True(t, diags.HasErrors())

	// tallies of the discarded parcel are not kept
	assert.Equal(t, 1, tbl.Fields.Count("id"))
	assert.False(t, tbl.Comments.Contains("c"))
	assert.True(t, tbl.Comments.Contains("oak"))
}

func TestParseInvalidUTF8(t *testing.T) {
	lines := []string{"id 1", "note \xff\xfe", "end", "id 2", "end"}

	tbl, diags := Parse(lines, DefaultPrefixes())
	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, "2", tbl.Parcels[0].Key)
	assert.Equal(t, 1, diags.Count(diag.FormatFailure))
}

func TestParseTerminatorToken(t *testing.T) {
	tbl, _ := Parse([]string{"id 1", "endpoint here", "end of parcel", "id 2", "end"}, DefaultPrefixes())
	require.Equal(t, 2, tbl.Len())
	_, ok := tbl.Parcels[0].Find("endpoint")
	assert.True(t, ok)
}
