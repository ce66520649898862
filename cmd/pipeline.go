package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"deedjoin/internal/diag"
	"deedjoin/internal/kml"
	"deedjoin/internal/mbl"
	"deedjoin/internal/source"
	"deedjoin/internal/types"
)

// readMBL loads and parses the tract file at path.
func (a *app) readMBL(path string) (*types.Table, error) {
	start := time.Now()
	lines, err := source.ReadLines(path)
	if err != nil {
		a.readFailed(mbl.SourceName, err)
		return nil, err
	}

	t, ds := mbl.Parse(lines, mbl.Prefixes{
		SingleLine: a.cfg.SingleLinePrefixes,
		MultiLine:  a.cfg.MultiLinePrefixes,
	})
	a.report(ds)
	a.log.Info().
		Str("file", path).
		Int("lines", len(lines)).
		Int("parcels", t.Len()).
		Dur("elapsed", time.Since(start).Truncate(time.Millisecond)).
		Msg("tract file parsed")
	return t, nil
}

// readKML loads and parses the placemark file at path.
func (a *app) readKML(path string) (*types.Table, error) {
	start := time.Now()
	lines, err := source.ReadLines(path)
	if err != nil {
		a.readFailed(kml.SourceName, err)
		return nil, err
	}

	t, ds := kml.Parse(lines)
	a.report(ds)
	a.log.Info().
		Str("file", path).
		Int("lines", len(lines)).
		Int("placemarks", t.Len()).
		Dur("elapsed", time.Since(start).Truncate(time.Millisecond)).
		Msg("placemark file parsed")
	return t, nil
}

// report logs ds and keeps it for the run report.
func (a *app) report(ds diag.Diagnostics) {
	for _, d := range ds.Items {
		var ev *zerolog.Event
		if d.Severity == diag.Error {
			ev = a.log.Error()
		} else {
			ev = a.log.Warn()
		}
		ev = ev.Str("kind", d.Kind.String()).Str("source", d.Source)
		if d.Line > 0 {
			ev = ev.Int("line", d.Line)
		}
		if d.Key != "" {
			ev = ev.Str("key", d.Key)
		}
		ev.Msg(d.Message)
	}
	a.issues.Merge(ds)
}

// readFailed records an input that could not be read.
func (a *app) readFailed(source string, err error) {
	var ds diag.Diagnostics
	ds.Errorf(diag.IOFailure, source, 0, "", "%v", err)
	a.report(ds)
}

// tally summarizes the diagnostics of the run, or returns "" when there
// were none.
func (a *app) tally() string {
	if a.issues.Len() == 0 {
		return ""
	}
	severity := "warnings only"
	if a.issues.HasErrors() {
		severity = "with errors"
	}
	return fmt.Sprintf("%d diagnostics (%s): %d IOFailure, %d FormatFailure, %d KeyCollision",
		a.issues.Len(), severity,
		a.issues.Count(diag.IOFailure), a.issues.Count(diag.FormatFailure), a.issues.Count(diag.KeyCollision))
}

// confirmOverwrite returns a y/N prompt on the terminal, or nil when stdin
// is not a terminal.
func confirmOverwrite(w io.Writer) func([]string) bool {
	if !term.IsTerminal(int(stdin.Fd())) {
		return nil
	}
	return func(files []string) bool {
		return askOverwrite(stdin, w, files)
	}
}

func askOverwrite(in io.Reader, w io.Writer, files []string) bool {
	fmt.Fprintln(w, "These output files already exist:")
	for _, f := range files {
		fmt.Fprintf(w, "  %s\n", f)
	}
	fmt.Fprint(w, "Overwrite? (y/N): ")

	answer, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
