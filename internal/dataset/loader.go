package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync/atomic"
	"unicode/utf8"

	"github.com/spf13/afero"
	"golang.org/x/sync/singleflight"
)

// Loader is the handle that owns the process-wide cached Dataset for one CSV path.
// The first successful Load reads and parses the file; every later Load returns the
// same *Dataset without touching the file. Concurrent first calls share one read.
// Failed loads are not cached.
type Loader struct {
	path string
	fs   afero.Fs
	opts Options

	group singleflight.Group
	ds    atomic.Pointer[Dataset]
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithFs sets the filesystem the Loader reads from (defaults to the OS filesystem).
func WithFs(fs afero.Fs) LoaderOption { return func(l *Loader) { l.fs = fs } }

// WithParseOptions applies dataset parse options.
func WithParseOptions(opts ...Option) LoaderOption {
	return func(l *Loader) {
		for _, fn := range opts {
			fn(&l.opts)
		}
	}
}

// NewLoader returns a Loader bound to a fixed CSV path.
func NewLoader(path string, opts ...LoaderOption) *Loader {
	l := &Loader{path: path, fs: afero.NewOsFs(), opts: defaultOptions()}
	for _, fn := range opts {
		fn(l)
	}
	return l
}

// Path returns the CSV path this Loader reads.
func (l *Loader) Path() string { return l.path }

// Loaded reports whether the Dataset is already cached.
func (l *Loader) Loaded() bool { return l.ds.Load() != nil }

// Load returns the cached Dataset, reading it on first use.
func (l *Loader) Load() (*Dataset, error) {
	if ds := l.ds.Load(); ds != nil {
		return ds, nil
	}
	v, err, _ := l.group.Do(l.path, func() (any, error) {
		// A flight that finished just before this one started has already stored the result.
		if ds := l.ds.Load(); ds != nil {
			return ds, nil
		}
		ds, err := l.read()
		if err != nil {
			return nil, err
		}
		l.ds.Store(ds)
		return ds, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Dataset), nil
}

func (l *Loader) read() (*Dataset, error) {
	f, err := l.fs.Open(l.path)
	if err != nil {
		return nil, &DataSourceError{Path: l.path, Err: fmt.Errorf("open csv: %w", err)}
	}
	defer f.Close()

	ds, err := Read(f, filepath.Base(l.path), l.delimiter(), l.opts)
	if err != nil {
		var dse *DataSourceError
		if errors.As(err, &dse) {
			dse.Path = l.path
			return nil, dse
		}
		return nil, &DataSourceError{Path: l.path, Err: err}
	}
	return ds, nil
}

func (l *Loader) delimiter() rune {
	if l.opts.Delimiter != 0 {
		return l.opts.Delimiter
	}
	return sniffDelimiter(l.path)
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Read parses a complete CSV stream into a Dataset. Every record must have the
// header's field count and be valid UTF-8; there is no partial result.
func Read(r io.Reader, name string, delim rune, o Options) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &DataSourceError{Err: fmt.Errorf("read csv: %w", err)}
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, &DataSourceError{Err: errors.New("csv is not valid UTF-8")}
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = delim
	cr.FieldsPerRecord = 0
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &DataSourceError{Err: errors.New("no columns to parse from file")}
		}
		return nil, &DataSourceError{Err: fmt.Errorf("read header: %w", err)}
	}
	var records [][]string
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &DataSourceError{Err: fmt.Errorf("read row %d: %w", len(records)+1, err)}
		}
		records = append(records, rec)
	}
	ds, err := build(name, header, records, o)
	if err != nil {
		return nil, &DataSourceError{Err: err}
	}
	return ds, nil
}
