package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"deedjoin/internal/join"
	"deedjoin/internal/types"
)

const browsePageSize = 20

func newBrowseCmd(a *app) *cobra.Command {
	var mblPath, kmlPath string
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Page through the classified parcels and inspect their records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.browse(cmd.OutOrStdout(), mblPath, kmlPath)
		},
	}

	f := cmd.Flags()
	f.StringVar(&mblPath, "mbl", "", "tract description (MBL) file")
	f.StringVar(&kmlPath, "kml", "", "placemark (KML) file")
	f.String("policy", "", "duplicate id policy: reject or first (default reject)")
	f.Bool("centroid", true, "placemarks carry a centroid point that has no course")
	_ = cmd.MarkFlagRequired("mbl")
	_ = cmd.MarkFlagRequired("kml")
	return cmd
}

func (a *app) browse(w io.Writer, mblPath, kmlPath string) error {
	policy, err := join.ParseDuplicatePolicy(a.cfg.DuplicatePolicy)
	if err != nil {
		return err
	}
	mblTable, err := a.readMBL(mblPath)
	if err != nil {
		return err
	}
	kmlTable, err := a.readKML(kmlPath)
	if err != nil {
		return err
	}

	joiner := join.NewJoiner(policy)
	joiner.Logger = a.log
	counts, ds := joiner.Combine(mblTable, kmlTable, a.cfg.KMLHasCentroid)
	a.report(ds)

	parcels := mblTable.Parcels
	lines := make([]string, len(parcels))
	for i, p := range parcels {
		lines[i] = browseLine(p)
	}
	interactiveSelect(w, lines, browsePageSize, func(i int) {
		fmt.Fprint(w, parcels[i].String())
	})

	fmt.Fprintf(w, "%d combined, %d failed, %d KML not matching, %d MBL not matching\n",
		counts.Combined, counts.Failed, counts.NoMatchKML, counts.NoMatchMBL)
	return nil
}

// browseLine summarizes a classified parcel on one line.
func browseLine(p *types.Parcel) string {
	status := fmt.Sprintf("%-10s", p.Status())
	switch p.Status() {
	case types.StatusCombined:
		status = colorGreen + status + colorReset
	case types.StatusFailed:
		status = colorRed + status + colorReset
	}
	return fmt.Sprintf("%-12s %s %s %3d courses  %s", p.Key, status, p.Source, p.GeometryCount(), p.Name)
}
