package dataset

import (
	"fmt"
	"strings"
)

// DataSourceError indicates the dataset file is missing, unreadable or not valid CSV.
type DataSourceError struct {
	Path string
	Err  error
}

func (e *DataSourceError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("data source %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("data source: %v", e.Err)
}

func (e *DataSourceError) Unwrap() error { return e.Err }

// InvalidParameterError indicates a user-supplied parameter is out of range.
type InvalidParameterError struct {
	Param  string
	Value  any
	Reason string
}

func (e *InvalidParameterError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("invalid %s %v: %s", e.Param, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Param, e.Reason)
}

// ColumnNotFoundError indicates a column reference that is not part of the dataset.
type ColumnNotFoundError struct {
	Column    string
	Available []string
}

func (e *ColumnNotFoundError) Error() string {
	if len(e.Available) > 0 {
		return fmt.Sprintf("column %q not found (available: %s)", e.Column, strings.Join(e.Available, ", "))
	}
	return fmt.Sprintf("column %q not found", e.Column)
}

// TypeMismatchError indicates a column whose kind cannot serve the requested operation.
type TypeMismatchError struct {
	Column string
	Kind   Kind
	Want   Kind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("column %q is %s, want %s", e.Column, e.Kind, e.Want)
}

// NoNumericColumnsError indicates the dataset has no numeric columns at all.
type NoNumericColumnsError struct {
	Dataset string
}

func (e *NoNumericColumnsError) Error() string {
	if e.Dataset != "" {
		return fmt.Sprintf("dataset %s has no numeric columns", e.Dataset)
	}
	return "dataset has no numeric columns"
}

// InsufficientDataError indicates the dataset shape precludes the requested analysis.
type InsufficientDataError struct {
	Column string
	Reason string
}

func (e *InsufficientDataError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("insufficient data in column %q: %s", e.Column, e.Reason)
	}
	return fmt.Sprintf("insufficient data: %s", e.Reason)
}
