package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dataloom/internal/render"
)

var (
	introRows     int
	introDescribe bool
	introFormat   string
)

var introCmd = &cobra.Command{
	Use:   "intro",
	Short: "Preview the dataset: head rows, missing values and summary statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := render.ParseFormat(introFormat)
		if err != nil {
			return err
		}
		d, err := newDashboard()
		if err != nil {
			return err
		}
		v, err := d.Intro(introRows, introDescribe)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, render.Render(render.FrameTable(v.Head), format))
		fmt.Fprintln(out, render.Render(render.MissingTable(v.Missing), format))
		if v.Missing.HasMissing() {
			fmt.Fprintf(out, "⚠ %s\n", v.Status)
		} else {
			fmt.Fprintf(out, "✓ %s\n", v.Status)
		}
		if v.Describe != nil {
			fmt.Fprintln(out, render.Render(render.DescribeTable(*v.Describe), format))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(introCmd)
	introCmd.Flags().IntVarP(&introRows, "rows", "n", 0, "number of rows to preview (default rows_default, within rows_min..rows_max)")
	introCmd.Flags().BoolVar(&introDescribe, "describe", false, "include the describe table")
	introCmd.Flags().StringVar(&introFormat, "format", "table", "output format: table | markdown | html | csv")
}
