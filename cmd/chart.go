package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dataloom/internal/render"
	"github.com/KaramelBytes/dataloom/internal/utils"
)

var (
	chartX      string
	chartY      string
	chartOutput string
)

var chartCmd = &cobra.Command{
	Use:       "chart <scatter|line|bar|heatmap>",
	Short:     "Render a chart of the dataset as PNG",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"scatter", "line", "bar", "heatmap"},
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := strings.ToLower(args[0])
		d, err := newDashboard()
		if err != nil {
			return err
		}
		p, err := d.Chart(kind, chartX, chartY)
		if err != nil {
			return err
		}
		out := chartOutput
		if out == "" {
			out = utils.Slug(kind+" "+p.Title.Text) + ".png"
		}
		out = utils.OutputPath(cfg.OutputDir, out)
		w, h := d.ChartSize()
		if err := render.SavePNG(p, w, h, out); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s chart to %s\n", kind, out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chartCmd)
	chartCmd.Flags().StringVar(&chartX, "x", "", "X-axis column (default first numeric column)")
	chartCmd.Flags().StringVar(&chartY, "y", "", "Y-axis column (default second numeric column)")
	chartCmd.Flags().StringVarP(&chartOutput, "output", "o", "", "output PNG path (default <kind>-<title>.png in output_dir)")
}
