package main

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deedjoin/internal/diag"
	"deedjoin/internal/output"
	"deedjoin/internal/types"
)

const tractFile = `id 5
lm N10E;100;large oak on the fence
ln S20W;50;
end
id 6
lm E;1;
end
`

const placemarkFile = `<?xml version="1.0" encoding="UTF-8"?>
<kml>
<Placemark>
<name>Tract five</name>
<SimpleData name="id">5</SimpleData>
<Point><coordinates>-77.5,38.5,0</coordinates></Point>
<LineString><coordinates>-77.1,38.1,0 -77.2,38.2,0</coordinates></LineString>
</Placemark>
</kml>
`

func TestMain(m *testing.M) {
	// Keep the prompts and the browse list off the developer's terminal.
	if devNull, err := os.Open(os.DevNull); err == nil {
		stdin = devNull
	}
	os.Exit(m.Run())
}

// fixture writes the sample inputs and returns their paths.
func fixture(t *testing.T) (dir, mblPath, kmlPath string) {
	t.Helper()
	dir = t.TempDir()
	mblPath = filepath.Join(dir, "survey.mbl")
	kmlPath = filepath.Join(dir, "survey.kml")
	require.NoError(t, os.WriteFile(mblPath, []byte(tractFile), 0o644))
	require.NoError(t, os.WriteFile(kmlPath, []byte(placemarkFile), 0o644))
	return dir, mblPath, kmlPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("DEEDJOIN_DUPLICATE_POLICY", "")

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--log-output", "discard"}, args...))
	err := root.Execute()
	return out.String(), err
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func TestConvert(t *testing.T) {
	dir, mblPath, kmlPath := fixture(t)
	report := filepath.Join(dir, "run.yaml")

	out, err := run(t, "convert", "--mbl", mblPath, "--kml", kmlPath, "--terms", "oak,fence", "--report", report)
	require.NoError(t, err)
	assert.Contains(t, out, "KML & MBL combined")
	assert.Contains(t, out, filepath.Join(dir, "survey_geo.txt"))

	geo := readLines(t, filepath.Join(dir, "survey_geo.txt"))
	require.Len(t, geo, 4)
	first := strings.Split(geo[1], "\t")
	assert.Equal(t, "oak, fence", first[8])
	assert.Equal(t, "-77.1", first[14])

	flat := readLines(t, filepath.Join(dir, "survey_flat.txt"))
	assert.Equal(t, "PID\tid\tPointCount", flat[0])
	assert.Len(t, flat, 3)

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.Contains(t, string(data), "combined: 1")
	assert.Contains(t, string(data), "no_match_mbl: 1")
	assert.Contains(t, string(data), "joined: 2")
}

func TestConvertRefusesToOverwrite(t *testing.T) {
	dir, mblPath, kmlPath := fixture(t)
	geo := filepath.Join(dir, "survey_geo.txt")
	require.NoError(t, os.WriteFile(geo, []byte("keep"), 0o644))

	_, err := run(t, "convert", "--mbl", mblPath, "--kml", kmlPath)
	require.Error(t, err)
	assert.True(t, errors.Is(err, output.ErrExists))

	data, err := os.ReadFile(geo)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(data))

	_, err = run(t, "convert", "--mbl", mblPath, "--kml", kmlPath, "--force")
	require.NoError(t, err)
	assert.Len(t, readLines(t, geo), 4)
}

func TestConvertShapefile(t *testing.T) {
	dir, mblPath, kmlPath := fixture(t)
	outBase := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(outBase, 0o755))

	_, err := run(t, "convert", "--mbl", mblPath, "--kml", kmlPath, "--out", outBase, "--shapefile", "--ext", "tsv")
	require.NoError(t, err)

	for _, name := range []string{"_geo.tsv", "_flat.tsv", "_geo.shp", "_geo.shx", "_geo.dbf"} {
		_, err := os.Stat(filepath.Join(outBase, name))
		assert.NoError(t, err, name)
	}
	assert.NoFileExists(t, filepath.Join(outBase, "_geodbf"))
}

func TestConvertShapefileOverwrite(t *testing.T) {
	dir, mblPath, kmlPath := fixture(t)
	outBase := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(outBase, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(outBase, "_geo.dbf"), []byte("old"), 0o644))

	_, err := run(t, "convert", "--mbl", mblPath, "--kml", kmlPath, "--out", outBase, "--shapefile", "--ext", "tsv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "_geo.dbf")
}

func TestConvertMissingInput(t *testing.T) {
	dir, mblPath, _ := fixture(t)
	_, err := run(t, "convert", "--mbl", mblPath, "--kml", filepath.Join(dir, "missing.kml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.kml")
}

func TestReadFailureRecorded(t *testing.T) {
	a := &app{log: zerolog.Nop()}
	path := filepath.Join(t.TempDir(), "missing.kml")

	_, err := a.readKML(path)
	require.Error(t, err)
	require.Equal(t, 1, a.issues.Count(diag.IOFailure))
	assert.True(t, a.issues.HasErrors())
	assert.Equal(t, "kml", a.issues.Items[0].Source)
	assert.Contains(t, a.issues.Items[0].Message, "missing.kml")
	assert.Equal(t, "1 diagnostics (with errors): 1 IOFailure, 0 FormatFailure, 0 KeyCollision", a.tally())
}

func TestConvertPrintsDiagnosticTally(t *testing.T) {
	dir, mblPath, kmlPath := fixture(t)
	require.NoError(t, os.WriteFile(mblPath, []byte(tractFile+"id 7\nlm N;1;\n"), 0o644))

	out, err := run(t, "convert", "--mbl", mblPath, "--kml", kmlPath, "--out", filepath.Join(dir, "run"))
	require.NoError(t, err)
	assert.Contains(t, out, "1 diagnostics (warnings only): 0 IOFailure, 1 FormatFailure, 0 KeyCollision")

	_, mblPath, kmlPath = fixture(t)
	out, err = run(t, "convert", "--mbl", mblPath, "--kml", kmlPath, "--out", filepath.Join(filepath.Dir(mblPath), "run"))
	require.NoError(t, err)
	assert.NotContains(t, out, "diagnostics")
}

func TestConvertBadPolicy(t *testing.T) {
	_, mblPath, kmlPath := fixture(t)
	_, err := run(t, "convert", "--mbl", mblPath, "--kml", kmlPath, "--policy", "merge")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "merge")
}

func TestDuplicates(t *testing.T) {
	dir := t.TempDir()
	mblPath := filepath.Join(dir, "dups.mbl")
	require.NoError(t, os.WriteFile(mblPath, []byte("id 7\nlm N;1;\nend\nid 8\nend\nid 7\nlm S;2;\nend\n"), 0o644))

	out, err := run(t, "duplicates", "--mbl", mblPath)
	require.NoError(t, err)
	assert.Contains(t, out, "MBL: 2 of 3 parcels")

	rows := readLines(t, filepath.Join(dir, "dups_mblDup.txt"))
	require.Len(t, rows, 3)
	assert.True(t, strings.HasPrefix(rows[1], "1\t7\t"))
	assert.True(t, strings.HasPrefix(rows[2], "3\t7\t"))
}

func TestDuplicatesNeedsInput(t *testing.T) {
	_, err := run(t, "duplicates")
	assert.Error(t, err)
}

func TestStats(t *testing.T) {
	_, mblPath, _ := fixture(t)
	out, err := run(t, "stats", "--mbl", mblPath)
	require.NoError(t, err)
	assert.Contains(t, out, "2 parcels")
	assert.Contains(t, out, "large oak on the fence")
}

func TestBrowseWithoutTerminal(t *testing.T) {
	_, mblPath, kmlPath := fixture(t)
	out, err := run(t, "browse", "--mbl", mblPath, "--kml", kmlPath)
	require.NoError(t, err)
	assert.Contains(t, out, "combined")
	assert.Contains(t, out, "1 combined, 0 failed, 0 KML not matching, 1 MBL not matching")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "deedjoin dev\n", out)
}

func TestBrowseLine(t *testing.T) {
	p := types.NewParcel(types.SourceMBL)
	p.Key = "5"
	p.Combined = true
	assert.Contains(t, browseLine(p), colorGreen)

	p.Combined, p.NoMatchMBL = false, true
	line := browseLine(p)
	assert.NotContains(t, line, colorGreen)
	assert.Contains(t, line, "noMatchMBL")
}

func TestAskOverwrite(t *testing.T) {
	var out bytes.Buffer
	assert.True(t, askOverwrite(strings.NewReader("y\n"), &out, []string{"a_geo.txt"}))
	assert.Contains(t, out.String(), "a_geo.txt")
	assert.False(t, askOverwrite(strings.NewReader("\n"), &out, nil))
	assert.False(t, askOverwrite(strings.NewReader(""), &out, nil))
}

func TestReadKey(t *testing.T) {
	tests := []struct {
		in   string
		want []key
	}{
		{"\x1b[A\x1b[B\x1b[C\x1b[D", []key{keyUp, keyDown, keyRight, keyLeft}},
		{"\x00H\xe0P\x00K\x00M", []key{keyUp, keyDown, keyLeft, keyRight}},
		{"\r\n", []key{keyEnter, keyEnter}},
		{"x\x03", []key{keyNone, keyQuit}},
		{"\x1b", []key{keyQuit}},
	}
	for _, tt := range tests {
		r := bufio.NewReader(strings.NewReader(tt.in))
		var got []key
		for {
			k, err := readKey(r)
			if err != nil {
				break
			}
			got = append(got, k)
		}
		assert.Equal(t, tt.want, got, "%q", tt.in)
	}
}

func TestPager(t *testing.T) {
	p := &pager{n: 5, size: 2}
	assert.Equal(t, 3, p.pages())

	assert.False(t, p.move(keyUp))
	assert.True(t, p.move(keyDown))
	assert.False(t, p.move(keyDown))
	assert.Equal(t, 1, p.index())

	assert.True(t, p.move(keyRight))
	assert.Equal(t, 2, p.index())
	assert.True(t, p.move(keyRight))
	start, end := p.bounds()
	assert.Equal(t, 4, start)
	assert.Equal(t, 5, end)
	assert.False(t, p.move(keyDown))
	assert.False(t, p.move(keyRight))

	assert.True(t, p.move(keyLeft))
	assert.Equal(t, 2, p.index())
}
