package dataset

import (
	"strconv"
	"strings"
)

// Options controls how the CSV source is parsed.
type Options struct {
	// Delimiter for CSV. If 0, chosen from the file extension (',' or '\t' for .tsv).
	Delimiter rune
	// DecimalSeparator for numeric cells; '.' when 0.
	DecimalSeparator rune
	// ThousandsSeparator is stripped from numeric cells when set.
	ThousandsSeparator rune
	// NAValues are cell texts treated as missing in addition to the empty string.
	NAValues []string
}

// Option mutates Options.
type Option func(*Options)

// WithDelimiter overrides the field delimiter.
func WithDelimiter(r rune) Option { return func(o *Options) { o.Delimiter = r } }

// WithDecimal sets the decimal and thousands separators used for numeric inference.
func WithDecimal(decimal, thousands rune) Option {
	return func(o *Options) {
		o.DecimalSeparator = decimal
		o.ThousandsSeparator = thousands
	}
}

// WithNAValues replaces the set of missing-value tokens.
func WithNAValues(vals ...string) Option {
	return func(o *Options) { o.NAValues = append([]string(nil), vals...) }
}

// DefaultNAValues mirrors the tokens most CSV tooling reads as missing.
var DefaultNAValues = []string{
	"#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan", "1.#IND", "1.#QNAN",
	"<NA>", "N/A", "NA", "NULL", "NaN", "None", "n/a", "nan", "null",
}

func defaultOptions() Options {
	return Options{NAValues: DefaultNAValues}
}

func (o Options) isMissing(v string) bool {
	if v == "" {
		return true
	}
	for _, na := range o.NAValues {
		if v == na {
			return true
		}
	}
	return false
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

// parseNumeric parses a cell with explicit separators. Booleans are not numbers.
func parseNumeric(s string, o Options) (float64, bool) {
	raw := strings.TrimSpace(s)
	raw = strings.ReplaceAll(raw, "\u00a0", "")
	if o.ThousandsSeparator != 0 && o.ThousandsSeparator != o.DecimalSeparator {
		raw = strings.ReplaceAll(raw, string(o.ThousandsSeparator), "")
	}
	if o.DecimalSeparator != 0 && o.DecimalSeparator != '.' {
		if strings.Contains(raw, ".") {
			return 0, false
		}
		raw = strings.ReplaceAll(raw, string(o.DecimalSeparator), ".")
	}
	// strconv accepts "Inf"/"infinity"; keep those but reject hex and underscores.
	if strings.ContainsAny(raw, "_xXpP") {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
