package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dataloom/internal/analysis"
	"github.com/KaramelBytes/dataloom/internal/render"
	"github.com/KaramelBytes/dataloom/internal/utils"
)

var (
	corrFormat string
	corrTop    int
	corrJSON   bool
)

var corrCmd = &cobra.Command{
	Use:   "corr",
	Short: "Print the Pearson correlation matrix of the numeric columns",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDashboard()
		if err != nil {
			return err
		}
		m, err := d.Correlation()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if corrJSON {
			b, err := utils.PrettyJSON(struct {
				Columns []string            `json:"columns"`
				Values  [][]float64         `json:"values"`
				Top     []analysis.PairCorr `json:"top"`
			}{m.Columns, m.Values, m.TopPairs(corrTop)})
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		format, err := render.ParseFormat(corrFormat)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, render.Render(render.CorrTable(m), format))
		if corrTop != 0 {
			fmt.Fprintln(out, render.Render(render.PairsTable(m.TopPairs(corrTop)), format))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(corrCmd)
	corrCmd.Flags().StringVar(&corrFormat, "format", "table", "output format: table | markdown | html | csv")
	corrCmd.Flags().IntVar(&corrTop, "top", 5, "also list the N strongest pairs (0 = none, -1 = all)")
	corrCmd.Flags().BoolVar(&corrJSON, "json", false, "print the matrix as JSON")
}
