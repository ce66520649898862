package main

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"deedjoin/internal/join"
	"deedjoin/internal/output"
	"deedjoin/internal/types"
)

type duplicatesOptions struct {
	mblPath string
	kmlPath string
	out     string
	force   bool
}

func newDuplicatesCmd(a *app) *cobra.Command {
	var opts duplicatesOptions
	cmd := &cobra.Command{
		Use:   "duplicates",
		Short: "List parcels and placemarks that share an id",
		Long: `duplicates finds ids held by more than one parcel. Joining such ids loses
data, so fix them before trusting a conversion. Repeated tract parcels are
written as a flat table (_mblDup) and repeated placemarks as a placemark
table (_kmlDup).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.mblPath == "" && opts.kmlPath == "" {
				return errors.New("at least one of --mbl or --kml is required")
			}
			return a.duplicates(cmd.OutOrStdout(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.mblPath, "mbl", "", "tract description (MBL) file")
	f.StringVar(&opts.kmlPath, "kml", "", "placemark (KML) file")
	f.StringVarP(&opts.out, "out", "o", "", "output base path or directory (default: the input file)")
	f.String("ext", "", "output file extension (default .txt)")
	f.BoolVarP(&opts.force, "force", "f", false, "overwrite existing output files")
	return cmd
}

func (a *app) duplicates(w io.Writer, opts duplicatesOptions) error {
	base := opts.out
	if base == "" {
		base = opts.mblPath
		if base == "" {
			base = opts.kmlPath
		}
	}
	paths := output.NewPaths(base, a.cfg.OutputExt)

	var targets []string
	if opts.mblPath != "" {
		targets = append(targets, paths.MBLDup)
	}
	if opts.kmlPath != "" {
		targets = append(targets, paths.KMLDup)
	}
	if err := output.CheckOverwrite(opts.force, confirmOverwrite(w), targets...); err != nil {
		return err
	}

	if opts.mblPath != "" {
		t, err := a.readMBL(opts.mblPath)
		if err != nil {
			return err
		}
		if err := a.writeDuplicates(w, "MBL", t, paths.MBLDup, output.WriteFlatFile); err != nil {
			return err
		}
	}
	if opts.kmlPath != "" {
		t, err := a.readKML(opts.kmlPath)
		if err != nil {
			return err
		}
		if err := a.writeDuplicates(w, "KML", t, paths.KMLDup, output.WriteKMLFlatFile); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) writeDuplicates(w io.Writer, source string, t *types.Table, path string, write func(string, *types.Table) error) error {
	dups := join.Partition(t, true)
	if err := write(path, dups); err != nil {
		return err
	}

	keys := join.DuplicateKeys(t)
	if len(keys) > 0 {
		a.log.Warn().
			Str("source", source).
			Int("ids", len(keys)).
			Int("parcels", dups.Len()).
			Msg("duplicate ids lose data when joined")
	}
	fmt.Fprintf(w, "%s: %d of %d parcels share an id with another parcel (%s)\n", source, dups.Len(), t.Len(), path)
	if len(keys) == 0 {
		return nil
	}
	return output.WriteDuplicates(w, source, keys)
}
