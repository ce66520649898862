package output

import (
	"io"
	"sort"
	"strconv"

	"github.com/goccy/go-yaml"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"deedjoin/internal/diag"
	"deedjoin/internal/join"
	"deedjoin/internal/tally"
)

// Summary describes one run for the YAML report.
type Summary struct {
	MBLPath    string            `yaml:"mbl"`
	KMLPath    string            `yaml:"kml"`
	MBLParcels int               `yaml:"mbl_parcels"`
	KMLParcels int               `yaml:"kml_parcels"`
	Policy     string            `yaml:"duplicate_policy"`
	Parcels    join.Counts       `yaml:"parcels"`
	Courses    join.CourseCounts `yaml:"courses"`
	Duplicates Duplicates        `yaml:"duplicates"`
	Outputs    []string          `yaml:"outputs,omitempty"`
	Issues     []diag.Diagnostic `yaml:"diagnostics,omitempty"`
}

// Duplicates lists repeated keys per input.
type Duplicates struct {
	MBL []join.KeyCount `yaml:"mbl,omitempty"`
	KML []join.KeyCount `yaml:"kml,omitempty"`
}

// WriteReport writes s as YAML.
func WriteReport(w io.Writer, s *Summary) error {
	data, err := yaml.MarshalWithOptions(s,
		yaml.Indent(2),
		yaml.IndentSequence(false),
	)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// WriteReportFile writes the YAML report to path.
func WriteReportFile(path string, s *Summary) error {
	return writeFile(path, func(w io.Writer) error { return WriteReport(w, s) })
}

// renderTable draws headers and rows with the count column right-aligned.
func renderTable(w io.Writer, headers []string, rows [][]string) error {
	align := make([]tw.Align, len(headers))
	for i := range align {
		align[i] = tw.AlignLeft
	}
	align[len(align)-1] = tw.AlignRight

	config := tablewriter.Config{}
	config.Row.Alignment = tw.CellAlignment{PerColumn: align}
	table := tablewriter.NewTable(w, tablewriter.WithConfig(config))

	h := make([]any, len(headers))
	for i, v := range headers {
		h[i] = v
	}
	table.Header(h...)

	for _, row := range rows {
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = v
		}
		if err := table.Append(cells...); err != nil {
			return err
		}
	}
	return table.Render()
}

// WriteResults prints the parcel and course classification tables.
func WriteResults(w io.Writer, parcels join.Counts, courses join.CourseCounts) error {
	itoa := strconv.Itoa
	err := renderTable(w, []string{"Parcels", "Count"}, [][]string{
		{"KML & MBL combined", itoa(parcels.Combined)},
		{"KML failed", itoa(parcels.Failed)},
		{"KML not matching", itoa(parcels.NoMatchKML)},
		{"MBL not matching", itoa(parcels.NoMatchMBL)},
		{"Total", itoa(parcels.Total())},
	})
	if err != nil {
		return err
	}
	return renderTable(w, []string{"Courses", "Count"}, [][]string{
		{"Joined", itoa(courses.Joined)},
		{"KML failed", itoa(courses.KMLFailed)},
		{"KML not matching", itoa(courses.KMLNoMatch)},
		{"MBL failed", itoa(courses.MBLFailed)},
		{"MBL not matching", itoa(courses.MBLNoMatch)},
		{"Total", itoa(courses.Total())},
	})
}

// WriteDuplicates prints the repeated keys of one input.
func WriteDuplicates(w io.Writer, source string, keys []join.KeyCount) error {
	rows := make([][]string, len(keys))
	for i, k := range keys {
		rows[i] = []string{k.Key, strconv.Itoa(k.Count)}
	}
	return renderTable(w, []string{source + " id", "Parcels"}, rows)
}

// WriteFrequency prints the keys of m with their counts, most frequent
// first. Ties keep key order.
func WriteFrequency(w io.Writer, title string, m *tally.Multiset) error {
	type entry struct {
		key string
		n   int
	}
	var entries []entry
	m.Each(func(key string, n int) bool {
		entries = append(entries, entry{key, n})
		return true
	})
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].n > entries[j].n })

	rows := make([][]string, len(entries))
	for i, e := range entries {
		key := e.key
		if key == "" {
			key = "(blank)"
		}
		rows[i] = []string{key, strconv.Itoa(e.n)}
	}
	return renderTable(w, []string{title, "Count"}, rows)
}
