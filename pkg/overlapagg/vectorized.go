package overlapagg

import (
	"fmt"

	"github.com/eunmann/overlap-db/pkg/funcreg"
	"github.com/eunmann/overlap-db/pkg/sqltypes"
	"github.com/eunmann/overlap-db/pkg/vector"
)

// Name is the SQL surface name of the aggregate.
const Name = "max_intersections"

// UpdateChunk accumulates a chunk of (start, end) columns into the state.
// Rows where either column is null are excluded, per the aggregate's special
// null handling. Implements funcreg.AggregateState.
func (s *State) UpdateChunk(args []*vector.Vector, n int) error {
	if len(args) != 2 {
		return fmt.Errorf("%s: expected 2 arguments, got %d", Name, len(args))
	}
	start, end := args[0], args[1]

	// Constant fast path: one append loop instead of per-row dispatch.
	if start.Constant() && end.Constant() {
		if !start.Valid(0) || !end.Valid(0) {
			return nil
		}
		s.AddRepeated(start.Value(0), end.Value(0), n)
		return nil
	}

	for i := range n {
		if !start.Valid(i) || !end.Valid(i) {
			continue
		}
		s.Add(start.Value(i), end.Value(i))
	}
	return nil
}

// Combine folds src into s. Implements funcreg.AggregateState.
func (s *State) Combine(src funcreg.AggregateState) error {
	other, ok := src.(*State)
	if !ok {
		return fmt.Errorf("%s: cannot combine state of type %T", Name, src)
	}
	s.MergeFrom(other)
	return nil
}

// Func returns the registration descriptor for max_intersections:
// (BIGINT, BIGINT) -> BIGINT, order-independent, special null handling.
func Func() *funcreg.AggregateFunc {
	return &funcreg.AggregateFunc{
		Name:           Name,
		Args:           []sqltypes.Type{sqltypes.BigInt, sqltypes.BigInt},
		Return:         sqltypes.BigInt,
		OrderDependent: false,
		NullHandling:   funcreg.NullHandlingSpecial,
		NewState:       func() funcreg.AggregateState { return NewState() },
	}
}

// Register adds max_intersections to the registry.
func Register(r *funcreg.Registry) error {
	return r.RegisterAggregate(Func())
}
