package input

import (
	"compress/gzip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// csvReader reads interval rows from CSV streams.
type csvReader struct {
	csvReader *csv.Reader
	groupCol  int // -1 if the input has no group column
	startCol  int
	endCol    int
	closers   []io.Closer
}

// NewCSVReader creates a CSV interval reader over an io.Reader. The data
// must already be decompressed; use OpenCSV for files with automatic gzip
// handling.
func NewCSVReader(r io.Reader, cols Columns) Reader {
	csvr := csv.NewReader(r)
	csvr.ReuseRecord = true
	csvr.FieldsPerRecord = -1 // Variable field count
	csvr.LazyQuotes = true

	return &csvReader{
		csvReader: csvr,
		groupCol:  cols.GroupCol,
		startCol:  cols.StartCol,
		endCol:    cols.EndCol,
	}
}

// OpenCSV opens a local CSV file, decompressing when the name ends in ".gz".
func OpenCSV(path string, cols Columns) (Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	closers := []io.Closer{f}

	var reader io.Reader = f
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		gzr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		closers = append(closers, gzr)
		reader = gzr
	}

	csvr := csv.NewReader(reader)
	csvr.ReuseRecord = true
	csvr.FieldsPerRecord = -1
	csvr.LazyQuotes = true

	return &csvReader{
		csvReader: csvr,
		groupCol:  cols.GroupCol,
		startCol:  cols.StartCol,
		endCol:    cols.EndCol,
		closers:   closers,
	}, nil
}

// Next returns the next interval row. Blank cells become nulls; any other
// non-integer cell is a parse error.
func (r *csvReader) Next() (Row, error) {
	for {
		fields, err := r.csvReader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return Row{}, io.EOF
			}
			return Row{}, fmt.Errorf("read CSV row: %w", err)
		}

		// Skip rows with too few columns to carry an interval.
		if len(fields) <= r.startCol || len(fields) <= r.endCol {
			continue
		}

		row := Row{}
		if r.groupCol >= 0 && len(fields) > r.groupCol {
			row.Group = fields[r.groupCol]
		}

		row.Start, row.StartNull, err = parseBound(fields[r.startCol])
		if err != nil {
			return Row{}, fmt.Errorf("parse start column: %w", err)
		}
		row.End, row.EndNull, err = parseBound(fields[r.endCol])
		if err != nil {
			return Row{}, fmt.Errorf("parse end column: %w", err)
		}
		return row, nil
	}
}

// parseBound parses one interval bound cell. Blank means null.
func parseBound(field string) (value int64, null bool, err error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return 0, true, nil
	}
	v, err := strconv.ParseInt(field, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid integer %q", field)
	}
	return v, false, nil
}

// Close releases resources.
func (r *csvReader) Close() error {
	var firstErr error
	// Close in reverse order (gzip reader before underlying stream).
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
