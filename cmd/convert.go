package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"deedjoin/internal/join"
	"deedjoin/internal/output"
)

type convertOptions struct {
	mblPath   string
	kmlPath   string
	out       string
	force     bool
	shapefile bool
	report    string
}

func newConvertCmd(a *app) *cobra.Command {
	var opts convertOptions
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Join a tract file with its placemarks and write the geo and flat tables",
		Example: `  deedjoin convert --mbl county.mbl --kml county.kml
  deedjoin convert --mbl county.mbl --kml county.kml --out out/ --shapefile --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.convert(cmd.OutOrStdout(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.mblPath, "mbl", "", "tract description (MBL) file")
	f.StringVar(&opts.kmlPath, "kml", "", "placemark (KML) file")
	f.StringVarP(&opts.out, "out", "o", "", "output base path or directory (default: the MBL file)")
	f.String("ext", "", "output file extension (default .txt)")
	f.String("policy", "", "duplicate id policy: reject or first (default reject)")
	f.Bool("centroid", true, "placemarks carry a centroid point that has no course")
	f.StringSlice("terms", nil, "comment search terms for the FoundTerms column")
	f.BoolVarP(&opts.force, "force", "f", false, "overwrite existing output files")
	f.BoolVar(&opts.shapefile, "shapefile", false, "also write the joined courses as a point shapefile")
	f.StringVar(&opts.report, "report", "", "write a YAML run report to this path")
	_ = cmd.MarkFlagRequired("mbl")
	_ = cmd.MarkFlagRequired("kml")
	return cmd
}

func (a *app) convert(w io.Writer, opts convertOptions) error {
	policy, err := join.ParseDuplicatePolicy(a.cfg.DuplicatePolicy)
	if err != nil {
		return err
	}

	base := opts.out
	if base == "" {
		base = opts.mblPath
	}
	paths := output.NewPaths(base, a.cfg.OutputExt)
	targets := []string{paths.Geo, paths.Flat}
	if opts.shapefile {
		targets = append(targets, paths.Shapefile+".shp", paths.Shapefile+".shx", paths.Shapefile+".dbf")
	}
	if opts.report != "" {
		targets = append(targets, opts.report)
	}
	if err := output.CheckOverwrite(opts.force, confirmOverwrite(w), targets...); err != nil {
		return err
	}

	mblTable, err := a.readMBL(opts.mblPath)
	if err != nil {
		return err
	}
	kmlTable, err := a.readKML(opts.kmlPath)
	if err != nil {
		return err
	}

	joiner := join.NewJoiner(policy)
	joiner.Logger = a.log
	res, err := joiner.Join(mblTable, kmlTable, a.cfg.KMLHasCentroid)
	if err != nil {
		return err
	}
	a.report(res.Diagnostics)

	if err := output.WriteGeoFile(paths.Geo, res.Table, a.cfg.SearchTerms); err != nil {
		return err
	}
	a.log.Info().Str("file", paths.Geo).Int("rows", res.Courses.Total()).Msg("geo table written")

	if err := output.WriteFlatFile(paths.Flat, mblTable); err != nil {
		return err
	}
	a.log.Info().Str("file", paths.Flat).Int("rows", mblTable.Len()).Msg("flat table written")

	written := []string{paths.Geo, paths.Flat}
	if opts.shapefile {
		n, err := output.WriteShapefile(paths.Shapefile, res.Table, a.cfg.SearchTerms)
		if err != nil {
			return err
		}
		a.log.Info().Str("file", paths.Shapefile+".shp").Int("points", n).Msg("shapefile written")
		written = append(written, paths.Shapefile+".shp")
	}

	if err := output.WriteResults(w, res.Parcels, res.Courses); err != nil {
		return err
	}

	if opts.report != "" {
		summary := &output.Summary{
			MBLPath:    opts.mblPath,
			KMLPath:    opts.kmlPath,
			MBLParcels: mblTable.Len(),
			KMLParcels: kmlTable.Len(),
			Policy:     policy.String(),
			Parcels:    res.Parcels,
			Courses:    res.Courses,
			Duplicates: output.Duplicates{
				MBL: join.DuplicateKeys(mblTable),
				KML: join.DuplicateKeys(kmlTable),
			},
			Outputs: written,
			Issues:  a.issues.Items,
		}
		if err := output.WriteReportFile(opts.report, summary); err != nil {
			return err
		}
		written = append(written, opts.report)
	}

	for _, p := range written {
		fmt.Fprintf(w, "%swrote%s %s\n", colorGreen, colorReset, p)
	}
	if s := a.tally(); s != "" {
		fmt.Fprintln(w, s)
	}
	return nil
}
