package analysis

import "github.com/KaramelBytes/dataloom/internal/dataset"

// NumericProjection is the dataset restricted to numeric columns, in dataset order.
type NumericProjection struct {
	Dataset string
	Rows    int
	Columns []*dataset.Column
}

// Names returns the projected column names.
func (p NumericProjection) Names() []string {
	out := make([]string, len(p.Columns))
	for i, c := range p.Columns {
		out[i] = c.Name()
	}
	return out
}

// Len returns the number of projected columns.
func (p NumericProjection) Len() int { return len(p.Columns) }

// Column looks up a projected column by name.
func (p NumericProjection) Column(name string) (*dataset.Column, bool) {
	for _, c := range p.Columns {
		if c.Name() == name {
			return c, true
		}
	}
	return nil, false
}

// ProjectNumeric filters the dataset to its numeric-tagged columns.
func ProjectNumeric(ds *dataset.Dataset) (NumericProjection, error) {
	p := NumericProjection{Dataset: ds.Name(), Rows: ds.NumRows()}
	for i := 0; i < ds.NumCols(); i++ {
		if c := ds.ColumnAt(i); c.IsNumeric() {
			p.Columns = append(p.Columns, c)
		}
	}
	if len(p.Columns) == 0 {
		return NumericProjection{}, &dataset.NoNumericColumnsError{Dataset: ds.Name()}
	}
	return p, nil
}
