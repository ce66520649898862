// Package diag holds the structured diagnostics and error values produced
// while reading, parsing and joining survey files.
//
// Only I/O failures are returned to callers as errors. Malformed lines and
// key collisions are collected as Diagnostics so an operation can complete
// with partial results.
package diag

import (
	"fmt"
	"strings"
)

// Kind classifies a diagnostic.
type Kind int

const (
	// IOFailure means an input could not be read or an output not written.
	IOFailure Kind = iota + 1
	// FormatFailure means a line or block did not match the expected grammar.
	FormatFailure
	// KeyCollision means two parcels share a key that a join depends on.
	KeyCollision
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case IOFailure:
		return "IOFailure"
	case FormatFailure:
		return "FormatFailure"
	case KeyCollision:
		return "KeyCollision"
	default:
		return "Unknown"
	}
}

// MarshalYAML writes the kind name.
func (k Kind) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}

// Severity of a diagnostic.
type Severity int

const (
	Warning Severity = iota
	Error
)

// String returns a human-readable severity name.
func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// MarshalYAML writes the severity name.
func (s Severity) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// Diagnostic is a single reported problem.
type Diagnostic struct {
	Kind     Kind     `yaml:"kind"`
	Severity Severity `yaml:"severity"`
	// Source names the input, e.g. "mbl" or "kml".
	Source string `yaml:"source"`
	// Line is the 1-based input line, 0 when not tied to a line.
	Line int `yaml:"line,omitempty"`
	// Key is the parcel key involved, if known.
	Key     string `yaml:"key,omitempty"`
	Message string `yaml:"message"`
}

// String returns a formatted diagnostic.
func (d Diagnostic) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", d.Kind, d.Source)
	if d.Line > 0 {
		fmt.Fprintf(&b, ":%d", d.Line)
	}
	if d.Key != "" {
		fmt.Fprintf(&b, " (key %q)", d.Key)
	}
	b.WriteString(": ")
	b.WriteString(d.Message)
	return b.String()
}

// Diagnostics is an ordered list of diagnostics.
type Diagnostics struct {
	Items []Diagnostic
}

// Add appends d.
func (ds *Diagnostics) Add(d Diagnostic) {
	ds.Items = append(ds.Items, d)
}

// Errorf appends an error-severity diagnostic.
func (ds *Diagnostics) Errorf(kind Kind, source string, line int, key, format string, args ...interface{}) {
	ds.Add(Diagnostic{
		Kind:     kind,
		Severity: Error,
		Source:   source,
		Line:     line,
		Key:      key,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Warnf appends a warning-severity diagnostic.
func (ds *Diagnostics) Warnf(kind Kind, source string, line int, key, format string, args ...interface{}) {
	ds.Add(Diagnostic{
		Kind:     kind,
		Severity: Warning,
		Source:   source,
		Line:     line,
		Key:      key,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Merge appends all of other's items.
func (ds *Diagnostics) Merge(other Diagnostics) {
	ds.Items = append(ds.Items, other.Items...)
}

// Len returns the number of diagnostics.
func (ds Diagnostics) Len() int {
	return len(ds.Items)
}

// Count returns the number of diagnostics of the given kind.
func (ds Diagnostics) Count(kind Kind) int {
	n := 0
	for _, d := range ds.Items {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

// HasErrors reports whether any error-severity diagnostic is present.
func (ds Diagnostics) HasErrors() bool {
	for _, d := range ds.Items {
		if d.Severity == Error {
			return true
		}
	}
	return false
}
