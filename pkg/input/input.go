// Package input provides streaming readers for interval data files.
//
// Readers exist for CSV (optionally gzip-compressed) and Parquet. Both
// produce the same Row representation: an optional group key plus a
// (start, end) interval where either side may be null. Null filtering and
// interval validation are left to the aggregation layer.
package input

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Row is a single interval record read from an input file.
type Row struct {
	// Group is the aggregation group key. Empty when the input has no
	// group column (ungrouped aggregation).
	Group string

	// Start and End are the interval bounds. Their values are meaningless
	// when the corresponding null flag is set.
	Start int64
	End   int64

	// StartNull and EndNull mark null input cells.
	StartNull bool
	EndNull   bool
}

// Reader is the streaming interface for reading interval rows.
type Reader interface {
	// Next returns the next row. Returns io.EOF when all rows have
	// been read.
	Next() (Row, error)

	// Close releases resources associated with the reader.
	Close() error
}

// Columns configures which input columns hold the group key and interval
// bounds. For CSV these are column indices; Parquet readers resolve columns
// by name instead and ignore this.
type Columns struct {
	// GroupCol is the column index of the group key, or -1 when the
	// input has no group column.
	GroupCol int

	// StartCol is the column index of the interval start (required).
	StartCol int

	// EndCol is the column index of the interval end (required).
	EndCol int
}

// Open opens a local interval file, choosing the reader by file extension:
// ".parquet" for Parquet, anything else for CSV with optional ".gz"
// compression.
func Open(path string, cols Columns) (Reader, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".parquet" {
		return OpenParquet(path)
	}
	r, err := OpenCSV(path, cols)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return r, nil
}
