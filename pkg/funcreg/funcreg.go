// Package funcreg provides a registry of vectorized scalar and aggregate
// functions with exact-type overload resolution.
//
// The registry only declares functions; execution is driven by the caller
// (see pkg/groupexec for the grouped aggregation driver). Function names are
// case-sensitive and conventionally lower_snake_case, matching their SQL
// surface names.
package funcreg

import (
	"fmt"
	"slices"
	"strings"

	"github.com/eunmann/overlap-db/pkg/sqltypes"
	"github.com/eunmann/overlap-db/pkg/vector"
)

// NullHandling describes how the execution engine must treat null inputs
// before invoking an aggregate.
type NullHandling uint8

const (
	// NullHandlingDefault lets rows with null arguments reach the function.
	NullHandlingDefault NullHandling = iota

	// NullHandlingSpecial requires the engine to exclude rows where any
	// argument is null before the aggregate sees them.
	NullHandlingSpecial
)

// ScalarFunc describes one overload of a vectorized scalar function.
type ScalarFunc struct {
	// Name is the SQL surface name (e.g. "days_in_month").
	Name string

	// Args are the exact argument types of this overload.
	Args []sqltypes.Type

	// Return is the result type.
	Return sqltypes.Type

	// Exec evaluates the function over a chunk whose columns are the
	// arguments in order, producing one result vector of Return type.
	// Exec may fail for the whole chunk (e.g. an overload that rejects
	// its input type at evaluation time).
	Exec func(in *vector.Chunk) (*vector.Vector, error)
}

// AggregateState is the per-group accumulation state of an aggregate
// function. Implementations are not safe for concurrent use; the execution
// engine gives each worker its own states and folds them with Combine.
type AggregateState interface {
	// UpdateChunk accumulates a chunk of argument columns.
	UpdateChunk(args []*vector.Vector, n int) error

	// Combine folds another state of the same aggregate into this one.
	// The source must not be finalized afterward.
	Combine(src AggregateState) error

	// Finalize produces the aggregate result. All registered aggregates
	// currently return BIGINT. Finalize is terminal and single-shot.
	Finalize() int64
}

// AggregateFunc describes one overload of an aggregate function.
type AggregateFunc struct {
	Name   string
	Args   []sqltypes.Type
	Return sqltypes.Type

	// OrderDependent declares whether the result can change under input
	// row permutation. Order-independent aggregates may be parallelized
	// and merged in any order.
	OrderDependent bool

	// NullHandling declares the engine's null-filtering obligation.
	NullHandling NullHandling

	// NewState creates an empty accumulation state.
	NewState func() AggregateState
}

// Registry holds scalar and aggregate function overloads by name.
type Registry struct {
	scalars    map[string][]*ScalarFunc
	aggregates map[string][]*AggregateFunc
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		scalars:    make(map[string][]*ScalarFunc),
		aggregates: make(map[string][]*AggregateFunc),
	}
}

// RegisterScalar adds a scalar overload. Registering a duplicate signature
// for the same name is an error.
func (r *Registry) RegisterScalar(f *ScalarFunc) error {
	if f.Name == "" {
		return fmt.Errorf("register scalar: empty function name")
	}
	if f.Exec == nil {
		return fmt.Errorf("register scalar %s: nil Exec", f.Name)
	}
	for _, existing := range r.scalars[f.Name] {
		if slices.Equal(existing.Args, f.Args) {
			return fmt.Errorf("register scalar %s(%s): duplicate signature",
				f.Name, typeList(f.Args))
		}
	}
	r.scalars[f.Name] = append(r.scalars[f.Name], f)
	return nil
}

// RegisterAggregate adds an aggregate overload. Registering a duplicate
// signature for the same name is an error.
func (r *Registry) RegisterAggregate(f *AggregateFunc) error {
	if f.Name == "" {
		return fmt.Errorf("register aggregate: empty function name")
	}
	if f.NewState == nil {
		return fmt.Errorf("register aggregate %s: nil NewState", f.Name)
	}
	for _, existing := range r.aggregates[f.Name] {
		if slices.Equal(existing.Args, f.Args) {
			return fmt.Errorf("register aggregate %s(%s): duplicate signature",
				f.Name, typeList(f.Args))
		}
	}
	r.aggregates[f.Name] = append(r.aggregates[f.Name], f)
	return nil
}

// LookupScalar resolves a scalar overload by exact argument types.
func (r *Registry) LookupScalar(name string, args []sqltypes.Type) (*ScalarFunc, error) {
	overloads, ok := r.scalars[name]
	if !ok {
		return nil, fmt.Errorf("scalar function %s does not exist", name)
	}
	for _, f := range overloads {
		if slices.Equal(f.Args, args) {
			return f, nil
		}
	}
	return nil, fmt.Errorf("no overload of %s matches (%s)", name, typeList(args))
}

// LookupAggregate resolves an aggregate overload by exact argument types.
func (r *Registry) LookupAggregate(name string, args []sqltypes.Type) (*AggregateFunc, error) {
	overloads, ok := r.aggregates[name]
	if !ok {
		return nil, fmt.Errorf("aggregate function %s does not exist", name)
	}
	for _, f := range overloads {
		if slices.Equal(f.Args, args) {
			return f, nil
		}
	}
	return nil, fmt.Errorf("no overload of %s matches (%s)", name, typeList(args))
}

// typeList formats argument types as "INTEGER, INTEGER" for error messages.
func typeList(args []sqltypes.Type) string {
	parts := make([]string, len(args))
	for i, t := range args {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}
