package output

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// File name suffixes appended to the output stub.
const (
	SuffixGeo    = "_geo"
	SuffixFlat   = "_flat"
	SuffixKMLDup = "_kmlDup"
	SuffixMBLDup = "_mblDup"

	DefaultExt = ".txt"
)

// ErrExists is returned by CheckOverwrite when output files exist and
// overwriting was not allowed.
var ErrExists = errors.New("output files already exist")

// Paths are the output files derived from one base path.
type Paths struct {
	Geo    string
	Flat   string
	KMLDup string
	MBLDup string
	// Shapefile is the base name handed to the shapefile writer.
	Shapefile string
}

// NewPaths derives output paths from base. The extension of base is
// replaced by the suffix and ext; a directory base yields files named only
// by their suffix inside it.
func NewPaths(base, ext string) Paths {
	switch {
	case ext == "":
		ext = DefaultExt
	case !strings.HasPrefix(ext, "."):
		ext = "." + ext
	}

	dir, stub := filepath.Split(base)
	if info, err := os.Stat(base); err == nil && info.IsDir() {
		dir, stub = base, ""
	} else if i := strings.LastIndex(stub, "."); i > 0 {
		stub = stub[:i]
	}

	name := func(suffix, ext string) string {
		return filepath.Join(dir, stub+suffix+ext)
	}
	return Paths{
		Geo:       name(SuffixGeo, ext),
		Flat:      name(SuffixFlat, ext),
		KMLDup:    name(SuffixKMLDup, ext),
		MBLDup:    name(SuffixMBLDup, ext),
		Shapefile: name(SuffixGeo, ""),
	}
}

// Existing returns the paths among candidates that already exist.
func Existing(candidates ...string) []string {
	var found []string
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			found = append(found, p)
		}
	}
	return found
}

// CheckOverwrite fails with ErrExists when any candidate exists, unless
// force is set or confirm approves the listed files. A nil confirm never
// approves.
func CheckOverwrite(force bool, confirm func(existing []string) bool, candidates ...string) error {
	existing := Existing(candidates...)
	if len(existing) == 0 || force {
		return nil
	}
	if confirm != nil && confirm(existing) {
		return nil
	}
	return errors.Wrapf(ErrExists, "%s (use --force to overwrite)", strings.Join(existing, ", "))
}
