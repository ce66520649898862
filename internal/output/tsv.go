// Package output writes joined and parsed tables as tab-delimited files,
// point shapefiles, summary tables and YAML run reports.
package output

import (
	"bufio"
	"io"
	"os"
	"strings"

	"deedjoin/internal/diag"
)

// tsvWriter writes tab-delimited rows. The first write error sticks and is
// returned by Flush.
type tsvWriter struct {
	w   *bufio.Writer
	err error
}

func newTSV(w io.Writer) *tsvWriter {
	return &tsvWriter{w: bufio.NewWriter(w)}
}

func (t *tsvWriter) row(cells ...string) {
	if t.err != nil {
		return
	}
	if _, err := t.w.WriteString(strings.Join(cells, "\t")); err != nil {
		t.err = err
		return
	}
	t.err = t.w.WriteByte('\n')
}

func (t *tsvWriter) Flush() error {
	if t.err != nil {
		return t.err
	}
	return t.w.Flush()
}

// writeFile creates path and runs write against it. Failures are reported
// as diag.ErrIO errors carrying the path.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return diag.IO(path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return diag.IO(path, err)
	}
	if err := f.Close(); err != nil {
		return diag.IO(path, err)
	}
	return nil
}
