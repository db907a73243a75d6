package dataset

import (
	"fmt"
	"math"
	"strings"
)

// Kind is the column type tag assigned once at load time.
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindCategorical Kind = "categorical"
)

// Column is a single named, typed column. It is read-only after construction.
type Column struct {
	name    string
	kind    Kind
	raw     []string
	nums    []float64 // NaN where missing; nil for categorical columns
	missing []bool
	nMiss   int
}

// Name returns the column name.
func (c *Column) Name() string { return c.name }

// Kind returns the type tag stored at load time.
func (c *Column) Kind() Kind { return c.kind }

// IsNumeric reports whether the column is tagged numeric.
func (c *Column) IsNumeric() bool { return c.kind == KindNumeric }

// Len returns the number of rows.
func (c *Column) Len() int { return len(c.raw) }

// Value returns the raw cell text of row i ("" when missing).
func (c *Column) Value(i int) string {
	if c.missing[i] {
		return ""
	}
	return c.raw[i]
}

// Float returns the parsed value of row i. ok is false for missing cells and categorical columns.
func (c *Column) Float(i int) (v float64, ok bool) {
	if c.nums == nil || c.missing[i] {
		return math.NaN(), false
	}
	return c.nums[i], true
}

// IsMissing reports whether row i holds an absent value.
func (c *Column) IsMissing(i int) bool { return c.missing[i] }

// MissingCount returns the number of absent cells.
func (c *Column) MissingCount() int { return c.nMiss }

// Floats returns a copy of the parsed values, NaN where missing. Nil for categorical columns.
func (c *Column) Floats() []float64 {
	if c.nums == nil {
		return nil
	}
	out := make([]float64, len(c.nums))
	copy(out, c.nums)
	return out
}

// Present returns a copy of the non-missing parsed values in row order. Nil for categorical columns.
func (c *Column) Present() []float64 {
	if c.nums == nil {
		return nil
	}
	out := make([]float64, 0, len(c.nums)-c.nMiss)
	for i, v := range c.nums {
		if !c.missing[i] {
			out = append(out, v)
		}
	}
	return out
}

// Dataset is an immutable in-memory table of equal-length named columns.
type Dataset struct {
	name    string
	columns []*Column
	index   map[string]int
	rows    int
}

// New builds a Dataset from a header and string records using the given parse options.
// Records must all have len(header) fields.
func New(name string, header []string, records [][]string, opts ...Option) (*Dataset, error) {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	return build(name, header, records, o)
}

func build(name string, header []string, records [][]string, o Options) (*Dataset, error) {
	if len(header) == 0 {
		return nil, fmt.Errorf("no columns in header")
	}
	names := uniqueNames(header)
	ncol := len(names)
	for i, rec := range records {
		if len(rec) != ncol {
			return nil, fmt.Errorf("row %d: expected %d fields, got %d", i+1, ncol, len(rec))
		}
	}

	ds := &Dataset{
		name:    name,
		columns: make([]*Column, ncol),
		index:   make(map[string]int, ncol),
		rows:    len(records),
	}
	for j, n := range names {
		c := &Column{
			name:    n,
			raw:     make([]string, len(records)),
			missing: make([]bool, len(records)),
		}
		nums := make([]float64, len(records))
		numeric := true
		for i, rec := range records {
			v := strings.TrimSpace(rec[j])
			c.raw[i] = v
			if o.isMissing(v) {
				c.missing[i] = true
				c.nMiss++
				nums[i] = math.NaN()
				continue
			}
			if !numeric {
				continue
			}
			x, ok := parseNumeric(v, o)
			if !ok {
				numeric = false
				continue
			}
			nums[i] = x
		}
		if numeric {
			c.kind = KindNumeric
			c.nums = nums
		} else {
			c.kind = KindCategorical
		}
		ds.columns[j] = c
		ds.index[n] = j
	}
	return ds, nil
}

// Name returns the dataset's display name (usually the file base name).
func (d *Dataset) Name() string { return d.name }

// NumRows returns the constant row count.
func (d *Dataset) NumRows() int { return d.rows }

// NumCols returns the number of columns.
func (d *Dataset) NumCols() int { return len(d.columns) }

// Columns returns the column names in dataset order.
func (d *Dataset) Columns() []string {
	out := make([]string, len(d.columns))
	for i, c := range d.columns {
		out[i] = c.name
	}
	return out
}

// ColumnAt returns the column at position i.
func (d *Dataset) ColumnAt(i int) *Column { return d.columns[i] }

// Column resolves a column reference.
func (d *Dataset) Column(name string) (*Column, error) {
	i, ok := d.index[name]
	if !ok {
		return nil, &ColumnNotFoundError{Column: name, Available: d.Columns()}
	}
	return d.columns[i], nil
}

// Has reports whether a column with the given name exists.
func (d *Dataset) Has(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Kinds returns the kind tag of every column in dataset order.
func (d *Dataset) Kinds() []Kind {
	out := make([]Kind, len(d.columns))
	for i, c := range d.columns {
		out[i] = c.kind
	}
	return out
}

// Row returns a copy of row i as raw cell text.
func (d *Dataset) Row(i int) []string {
	out := make([]string, len(d.columns))
	for j, c := range d.columns {
		out[j] = c.Value(i)
	}
	return out
}

// uniqueNames trims header names and renames duplicates to name.1, name.2, ...
func uniqueNames(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	taken := make(map[string]bool, len(header))
	for i, h := range header {
		n := strings.TrimSpace(h)
		if n == "" {
			n = fmt.Sprintf("Unnamed: %d", i)
		}
		if taken[n] {
			base := n
			for {
				seen[base]++
				n = fmt.Sprintf("%s.%d", base, seen[base])
				if !taken[n] {
					break
				}
			}
		}
		taken[n] = true
		out[i] = n
	}
	return out
}
