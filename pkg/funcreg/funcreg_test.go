package funcreg

import (
	"strings"
	"testing"

	"github.com/eunmann/overlap-db/pkg/sqltypes"
	"github.com/eunmann/overlap-db/pkg/vector"
)

func noopExec(in *vector.Chunk) (*vector.Vector, error) {
	return vector.NewConst(sqltypes.Integer, 0), nil
}

type noopState struct{}

func (noopState) UpdateChunk(args []*vector.Vector, n int) error { return nil }
func (noopState) Combine(src AggregateState) error               { return nil }
func (noopState) Finalize() int64                                { return 0 }

func TestScalarRegistration(t *testing.T) {
	r := New()

	f := &ScalarFunc{
		Name:   "f",
		Args:   []sqltypes.Type{sqltypes.Integer},
		Return: sqltypes.Integer,
		Exec:   noopExec,
	}
	if err := r.RegisterScalar(f); err != nil {
		t.Fatalf("RegisterScalar failed: %v", err)
	}

	// A second overload with different argument types is fine.
	g := &ScalarFunc{
		Name:   "f",
		Args:   []sqltypes.Type{sqltypes.Date},
		Return: sqltypes.Integer,
		Exec:   noopExec,
	}
	if err := r.RegisterScalar(g); err != nil {
		t.Fatalf("RegisterScalar overload failed: %v", err)
	}

	// Duplicate signature is rejected.
	if err := r.RegisterScalar(f); err == nil {
		t.Error("duplicate signature should fail")
	}

	got, err := r.LookupScalar("f", []sqltypes.Type{sqltypes.Date})
	if err != nil {
		t.Fatalf("LookupScalar failed: %v", err)
	}
	if got != g {
		t.Error("LookupScalar resolved the wrong overload")
	}
}

func TestScalarLookupErrors(t *testing.T) {
	r := New()
	if err := r.RegisterScalar(&ScalarFunc{
		Name: "f",
		Args: []sqltypes.Type{sqltypes.Integer},
		Exec: noopExec,
	}); err != nil {
		t.Fatalf("RegisterScalar failed: %v", err)
	}

	if _, err := r.LookupScalar("missing", nil); err == nil {
		t.Error("unknown name should fail")
	}

	_, err := r.LookupScalar("f", []sqltypes.Type{sqltypes.Time})
	if err == nil {
		t.Fatal("mismatched signature should fail")
	}
	if !strings.Contains(err.Error(), "TIME") {
		t.Errorf("error should name the offending types, got: %v", err)
	}
}

func TestAggregateRegistration(t *testing.T) {
	r := New()

	f := &AggregateFunc{
		Name:         "agg",
		Args:         []sqltypes.Type{sqltypes.BigInt, sqltypes.BigInt},
		Return:       sqltypes.BigInt,
		NullHandling: NullHandlingSpecial,
		NewState:     func() AggregateState { return noopState{} },
	}
	if err := r.RegisterAggregate(f); err != nil {
		t.Fatalf("RegisterAggregate failed: %v", err)
	}
	if err := r.RegisterAggregate(f); err == nil {
		t.Error("duplicate aggregate signature should fail")
	}

	got, err := r.LookupAggregate("agg", []sqltypes.Type{sqltypes.BigInt, sqltypes.BigInt})
	if err != nil {
		t.Fatalf("LookupAggregate failed: %v", err)
	}
	if got.NullHandling != NullHandlingSpecial {
		t.Error("NullHandling not preserved")
	}
}

func TestRegisterValidation(t *testing.T) {
	r := New()

	if err := r.RegisterScalar(&ScalarFunc{Name: "", Exec: noopExec}); err == nil {
		t.Error("empty scalar name should fail")
	}
	if err := r.RegisterScalar(&ScalarFunc{Name: "f"}); err == nil {
		t.Error("nil Exec should fail")
	}
	if err := r.RegisterAggregate(&AggregateFunc{Name: "a"}); err == nil {
		t.Error("nil NewState should fail")
	}
}
