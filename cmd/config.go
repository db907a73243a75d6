package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/dataloom/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set DataLoom configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		fmt.Fprintf(out, "data_path: %s\n", cfg.DataPath)
		if cfg.Delimiter != "" {
			fmt.Fprintf(out, "delimiter: %q\n", cfg.Delimiter)
		}
		fmt.Fprintf(out, "decimal: %s\n", cfg.Decimal)
		fmt.Fprintf(out, "hue_column: %s\n", cfg.HueColumn)
		fmt.Fprintf(out, "rows_default: %d\n", cfg.RowsDefault)
		fmt.Fprintf(out, "rows_min: %d\n", cfg.RowsMin)
		fmt.Fprintf(out, "rows_max: %d\n", cfg.RowsMax)
		fmt.Fprintf(out, "chart_width_in: %.1f\n", cfg.ChartWidthIn)
		fmt.Fprintf(out, "chart_height_in: %.1f\n", cfg.ChartHeightIn)
		fmt.Fprintf(out, "listen_addr: %s\n", cfg.ListenAddr)
		fmt.Fprintf(out, "output_dir: %s\n", cfg.OutputDir)
		fmt.Fprintf(out, "page_title: %s\n", cfg.PageTitle)
		if cfg.HeaderImage != "" {
			fmt.Fprintf(out, "header_image: %s\n", cfg.HeaderImage)
		}
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", cfg.LogFormat)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		next := *cfg
		switch key {
		case "data_path":
			next.DataPath = val
		case "delimiter":
			next.Delimiter = val
		case "decimal":
			next.Decimal = val
		case "hue_column":
			next.HueColumn = val
		case "page_title":
			next.PageTitle = val
		case "header_image":
			next.HeaderImage = val
		case "rows_default", "rows_min", "rows_max":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for %s: %w", key, err)
			}
			switch key {
			case "rows_default":
				next.RowsDefault = i
			case "rows_min":
				next.RowsMin = i
			default:
				next.RowsMax = i
			}
		case "chart_width_in", "chart_height_in":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("invalid float for %s: %w", key, err)
			}
			if key == "chart_width_in" {
				next.ChartWidthIn = f
			} else {
				next.ChartHeightIn = f
			}
		case "listen_addr":
			next.ListenAddr = val
		case "output_dir":
			next.OutputDir = val
		case "log_level":
			next.LogLevel = val
		case "log_format":
			switch val {
			case "console", "pretty", "json":
				next.LogFormat = val
			default:
				return fmt.Errorf("invalid log_format: %s (use console or json)", val)
			}
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := next.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(&next, cfgFile); err != nil {
			return err
		}
		cfg = &next
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
