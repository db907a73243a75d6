package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dataloom/internal/utils"
)

var (
	reportFormat string
	reportOutput string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate the automated profiling report (HTML or Markdown)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var ext string
		switch strings.ToLower(reportFormat) {
		case "html":
			ext = "html"
		case "md", "markdown":
			ext = "md"
		default:
			return fmt.Errorf("unsupported --format: %s (use html | md)", reportFormat)
		}
		d, err := newDashboard()
		if err != nil {
			return err
		}
		v := d.Report()
		if v.Err != nil {
			return v.Err
		}
		var body []byte
		if ext == "html" {
			if body, err = v.Profile.HTML(); err != nil {
				return err
			}
		} else {
			body = []byte(v.Profile.Markdown())
		}
		if reportOutput == "-" {
			_, err := cmd.OutOrStdout().Write(body)
			return err
		}
		out := reportOutput
		if out == "" {
			out = v.Profile.Filename(ext)
		}
		out = utils.OutputPath(cfg.OutputDir, out)
		if err := utils.SafeWriteFile(out, body); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s\n✓ Wrote report to %s\n", v.Message(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVar(&reportFormat, "format", "html", "report format: html | md")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "output path ('-' for stdout; default <dataset>_report.<ext> in output_dir)")
}
