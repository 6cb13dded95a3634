package input

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"
)

// parquetReader reads interval rows from Parquet files by iterating
// through row groups.
type parquetReader struct {
	file     *parquet.File
	osFile   *os.File // underlying file, closed with the reader
	groupCol int      // -1 if the schema has no group column
	startCol int
	endCol   int

	// Row group iteration state
	rowGroups    []parquet.RowGroup
	currentRGIdx int
	currentRows  parquet.Rows
	rowBuf       []parquet.Row
	bufIdx       int
	bufLen       int
}

// OpenParquet opens a local Parquet interval file. The schema must contain
// "start" and "end" integer columns; a "group" string column is optional.
func OpenParquet(path string) (Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	file, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open parquet file %s: %w", path, err)
	}

	groupCol, startCol, endCol, err := detectSchema(file.Schema())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &parquetReader{
		file:         file,
		osFile:       f,
		groupCol:     groupCol,
		startCol:     startCol,
		endCol:       endCol,
		rowGroups:    file.RowGroups(),
		currentRGIdx: -1,
		rowBuf:       make([]parquet.Row, 1024), // Buffer 1024 rows at a time
	}, nil
}

// detectSchema resolves column indices from the Parquet schema by name.
func detectSchema(schema *parquet.Schema) (groupCol, startCol, endCol int, err error) {
	groupCol, startCol, endCol = -1, -1, -1
	for i, field := range schema.Fields() {
		switch field.Name() {
		case "group":
			groupCol = i
		case "start":
			startCol = i
		case "end":
			endCol = i
		}
	}
	if startCol < 0 {
		return 0, 0, 0, errors.New("parquet schema missing 'start' column")
	}
	if endCol < 0 {
		return 0, 0, 0, errors.New("parquet schema missing 'end' column")
	}
	return groupCol, startCol, endCol, nil
}

// Next returns the next interval row.
func (r *parquetReader) Next() (Row, error) {
	for {
		// Check if we have buffered rows
		if r.bufIdx < r.bufLen {
			row := r.rowBuf[r.bufIdx]
			r.bufIdx++
			return r.convertRow(row), nil
		}

		// Need to read more rows
		if r.currentRows != nil {
			n, err := r.currentRows.ReadRows(r.rowBuf)
			if n > 0 {
				r.bufIdx = 0
				r.bufLen = n
				continue
			}
			if err != nil && !errors.Is(err, io.EOF) {
				return Row{}, fmt.Errorf("read parquet rows: %w", err)
			}
			// Current row group exhausted
			r.currentRows.Close()
			r.currentRows = nil
		}

		// Move to next row group
		r.currentRGIdx++
		if r.currentRGIdx >= len(r.rowGroups) {
			return Row{}, io.EOF
		}
		r.currentRows = r.rowGroups[r.currentRGIdx].Rows()
	}
}

// convertRow maps a parquet.Row onto an interval Row. Missing or null
// interval cells become nulls.
func (r *parquetReader) convertRow(row parquet.Row) Row {
	out := Row{StartNull: true, EndNull: true}

	for _, val := range row {
		colIdx := val.Column()
		if val.IsNull() {
			continue
		}

		switch colIdx {
		case r.groupCol:
			out.Group = val.String()
		case r.startCol:
			out.Start = val.Int64()
			out.StartNull = false
		case r.endCol:
			out.End = val.Int64()
			out.EndNull = false
		}
	}

	return out
}

// Close releases resources.
func (r *parquetReader) Close() error {
	if r.currentRows != nil {
		r.currentRows.Close()
	}
	if r.osFile != nil {
		return r.osFile.Close()
	}
	return nil
}
