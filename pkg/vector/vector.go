// Package vector provides minimal columnar vectors for the function surface.
//
// A Vector is a single typed column. All values are carried as int64 payloads;
// the logical type determines their interpretation (INTEGER and DATE payloads
// are int32-ranged, TIMESTAMP and TIME are microsecond counts). Vectors are
// either flat (one payload per row) or constant (one payload for every row in
// the owning chunk). A validity mask marks null rows; a nil mask means every
// row is valid.
package vector

import "github.com/eunmann/overlap-db/pkg/sqltypes"

// Vector is a typed column of values.
type Vector struct {
	typ      sqltypes.Type
	constant bool

	// data holds one payload per row for flat vectors, or a single payload
	// for constant vectors.
	data []int64

	// valid marks non-null rows. nil means all rows are valid.
	// For constant vectors, valid[0] covers every row.
	valid []bool
}

// NewFlat creates a flat vector over the given payloads. valid may be nil
// when no row is null; otherwise it must have the same length as data.
func NewFlat(typ sqltypes.Type, data []int64, valid []bool) *Vector {
	return &Vector{typ: typ, data: data, valid: valid}
}

// NewConst creates a constant vector holding a single non-null payload.
func NewConst(typ sqltypes.Type, value int64) *Vector {
	return &Vector{typ: typ, constant: true, data: []int64{value}}
}

// NewConstNull creates a constant vector that is null for every row.
func NewConstNull(typ sqltypes.Type) *Vector {
	return &Vector{typ: typ, constant: true, data: []int64{0}, valid: []bool{false}}
}

// Type returns the logical type of the vector.
func (v *Vector) Type() sqltypes.Type { return v.typ }

// Constant reports whether the vector holds a single value for all rows.
func (v *Vector) Constant() bool { return v.constant }

// Valid reports whether the value at row i is non-null.
func (v *Vector) Valid(i int) bool {
	if v.valid == nil {
		return true
	}
	if v.constant {
		return v.valid[0]
	}
	return v.valid[i]
}

// Value returns the payload at row i. The result is meaningless for null rows;
// callers must check Valid first.
func (v *Vector) Value(i int) int64 {
	if v.constant {
		return v.data[0]
	}
	return v.data[i]
}

// Chunk is a batch of vectors sharing a row count.
type Chunk struct {
	Cols []*Vector
	N    int
}

// NewChunk creates a chunk over the given columns with n rows.
func NewChunk(n int, cols ...*Vector) *Chunk {
	return &Chunk{Cols: cols, N: n}
}

// Builder accumulates payloads row by row and produces a flat vector.
// It is used to materialize scalar function results.
type Builder struct {
	typ     sqltypes.Type
	data    []int64
	valid   []bool
	anyNull bool
}

// NewBuilder creates a builder for a flat vector of the given type,
// pre-sized for n rows.
func NewBuilder(typ sqltypes.Type, n int) *Builder {
	return &Builder{
		typ:   typ,
		data:  make([]int64, 0, n),
		valid: make([]bool, 0, n),
	}
}

// Append adds a non-null payload.
func (b *Builder) Append(value int64) {
	b.data = append(b.data, value)
	b.valid = append(b.valid, true)
}

// AppendNull adds a null row.
func (b *Builder) AppendNull() {
	b.data = append(b.data, 0)
	b.valid = append(b.valid, false)
	b.anyNull = true
}

// Build returns the accumulated flat vector. The validity mask is dropped
// when no null was appended.
func (b *Builder) Build() *Vector {
	valid := b.valid
	if !b.anyNull {
		valid = nil
	}
	return &Vector{typ: b.typ, data: b.data, valid: valid}
}
