package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"deedjoin/internal/output"
)

func newStatsCmd(a *app) *cobra.Command {
	var mblPath string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show field name and course comment frequencies of a tract file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.stats(cmd.OutOrStdout(), mblPath)
		},
	}
	cmd.Flags().StringVar(&mblPath, "mbl", "", "tract description (MBL) file")
	_ = cmd.MarkFlagRequired("mbl")
	return cmd
}

func (a *app) stats(w io.Writer, mblPath string) error {
	t, err := a.readMBL(mblPath)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%d parcels, %d field names, %d distinct course comments\n", t.Len(), t.Fields.Len(), t.Comments.Len())
	if err := output.WriteFrequency(w, "Field", t.Fields); err != nil {
		return err
	}
	return output.WriteFrequency(w, "Comment", t.Comments)
}
