package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/dataloom/internal/utils"
)

// Global configuration structure.
type Global struct {
	DataPath    string `mapstructure:"data_path" yaml:"data_path"`
	Delimiter   string `mapstructure:"delimiter" yaml:"delimiter"`
	Decimal     string `mapstructure:"decimal" yaml:"decimal"`
	HueColumn   string `mapstructure:"hue_column" yaml:"hue_column"`
	PageTitle   string `mapstructure:"page_title" yaml:"page_title"`
	HeaderImage string `mapstructure:"header_image" yaml:"header_image"`

	// Introduction page row slider
	RowsDefault int `mapstructure:"rows_default" yaml:"rows_default"`
	RowsMin     int `mapstructure:"rows_min" yaml:"rows_min"`
	RowsMax     int `mapstructure:"rows_max" yaml:"rows_max"`

	// Chart size in inches
	ChartWidthIn  float64 `mapstructure:"chart_width_in" yaml:"chart_width_in"`
	ChartHeightIn float64 `mapstructure:"chart_height_in" yaml:"chart_height_in"`

	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
	OutputDir  string `mapstructure:"output_dir" yaml:"output_dir"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.dataloom/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := configDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file (cfgFile or ~/.dataloom/config.yaml) > defaults.
// A .env file in the working directory is loaded into the environment first.
func Load(cfgFile string) (*Global, error) {
	loadEnvFile()

	v := viper.New()
	v.SetEnvPrefix("DATALOOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("data_path", "diabetes.csv")
	v.SetDefault("delimiter", "")
	v.SetDefault("decimal", ".")
	v.SetDefault("hue_column", "Outcome")
	v.SetDefault("page_title", "Diabetes Data Dashboard")
	v.SetDefault("header_image", "doc.png")
	v.SetDefault("rows_default", 10)
	v.SetDefault("rows_min", 5)
	v.SetDefault("rows_max", 50)
	v.SetDefault("chart_width_in", 10.0)
	v.SetDefault("chart_height_in", 6.0)
	v.SetDefault("listen_addr", ":8501")
	v.SetDefault("output_dir", ".")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		if dir, err := configDir(); err == nil {
			v.AddConfigPath(dir)
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

// Validate checks value ranges that the dashboard depends on.
func (c *Global) Validate() error {
	if strings.TrimSpace(c.DataPath) == "" {
		return fmt.Errorf("data_path is required")
	}
	if c.RowsMin < 1 {
		return fmt.Errorf("rows_min must be >= 1, got %d", c.RowsMin)
	}
	if c.RowsMax < c.RowsMin {
		return fmt.Errorf("rows_max (%d) must be >= rows_min (%d)", c.RowsMax, c.RowsMin)
	}
	if c.RowsDefault < c.RowsMin || c.RowsDefault > c.RowsMax {
		return fmt.Errorf("rows_default (%d) must be within [%d, %d]", c.RowsDefault, c.RowsMin, c.RowsMax)
	}
	if c.ChartWidthIn <= 0 || c.ChartHeightIn <= 0 {
		return fmt.Errorf("chart size must be positive, got %.1fx%.1f", c.ChartWidthIn, c.ChartHeightIn)
	}
	delim, err := c.DelimiterRune()
	if err != nil {
		return err
	}
	dec, err := c.DecimalRune()
	if err != nil {
		return err
	}
	if delim == 0 && !strings.HasSuffix(strings.ToLower(c.DataPath), ".tsv") {
		delim = ','
	}
	if dec == delim {
		return fmt.Errorf("decimal %q conflicts with delimiter %q (use delimiter ';' or 'tab')", c.Decimal, string(delim))
	}
	return nil
}

// DelimiterRune resolves the delimiter setting; 0 means "choose from the file extension".
func (c *Global) DelimiterRune() (rune, error) {
	switch strings.ToLower(c.Delimiter) {
	case "":
		return 0, nil
	case ",", "comma":
		return ',', nil
	case ";", "semicolon":
		return ';', nil
	case "\t", "tab":
		return '\t', nil
	default:
		return 0, fmt.Errorf("unsupported delimiter: %q (use ',' | ';' | 'tab')", c.Delimiter)
	}
}

// DecimalRune resolves the decimal separator setting.
func (c *Global) DecimalRune() (rune, error) {
	switch strings.ToLower(strings.TrimSpace(c.Decimal)) {
	case "", ".", "dot":
		return '.', nil
	case ",", "comma":
		return ',', nil
	default:
		return 0, fmt.Errorf("unsupported decimal: %q (use '.'|'comma')", c.Decimal)
	}
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".dataloom"), nil
}

// loadEnvFile loads the first .env found next to the working directory or the executable.
func loadEnvFile() {
	paths := []string{".env"}
	if exe, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(exe), ".env"))
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}
