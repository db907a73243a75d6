package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/dataloom/internal/config"
	"github.com/KaramelBytes/dataloom/internal/dashboard"
	"github.com/KaramelBytes/dataloom/internal/dataset"
	"github.com/KaramelBytes/dataloom/internal/logger"
)

var (
	// Global flags
	cfgFile  string
	debug    bool
	dataPath string

	// Loaded configuration
	cfg *cfgpkg.Global
	log = logger.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "dataloom",
	Short: "DataLoom: explore a CSV dataset from the terminal or a small web dashboard",
	Long: `DataLoom loads one tabular dataset (CSV) and renders previews, missing-value and
summary statistics, scatter/line/bar charts, a correlation heatmap and an automated
profiling report, either as CLI output or through a local web dashboard.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.dataloom/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "", "dataset path (overrides data_path)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: config commands can still repair the file
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg = nil
		return
	}
	cfg = c
	if rootCmd.PersistentFlags().Changed("data") && dataPath != "" {
		cfg.DataPath = dataPath
	}
	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	log = logger.New(level, cfg.LogFormat, os.Stderr)
}

func requireConfig() (*cfgpkg.Global, error) {
	if cfg == nil {
		return nil, fmt.Errorf("no configuration loaded (see 'dataloom config show')")
	}
	return cfg, nil
}

// newLoader builds the dataset loader from the effective configuration.
func newLoader(c *cfgpkg.Global) (*dataset.Loader, error) {
	delim, err := c.DelimiterRune()
	if err != nil {
		return nil, err
	}
	dec, err := c.DecimalRune()
	if err != nil {
		return nil, err
	}
	var opts []dataset.Option
	if delim != 0 {
		opts = append(opts, dataset.WithDelimiter(delim))
	}
	if dec == ',' {
		opts = append(opts, dataset.WithDecimal(',', '.'))
	}
	return dataset.NewLoader(c.DataPath, dataset.WithParseOptions(opts...)), nil
}

func newDashboard() (*dashboard.Dashboard, error) {
	c, err := requireConfig()
	if err != nil {
		return nil, err
	}
	l, err := newLoader(c)
	if err != nil {
		return nil, err
	}
	return dashboard.New(l, c, log), nil
}
