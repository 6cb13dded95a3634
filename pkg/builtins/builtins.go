// Package builtins assembles the default function registry.
package builtins

import (
	"fmt"

	"github.com/eunmann/overlap-db/pkg/datefuncs"
	"github.com/eunmann/overlap-db/pkg/funcreg"
	"github.com/eunmann/overlap-db/pkg/overlapagg"
)

// Registry returns a registry with all built-in functions registered:
// the max_intersections aggregate and the four days_in_month overloads.
func Registry() (*funcreg.Registry, error) {
	r := funcreg.New()
	if err := overlapagg.Register(r); err != nil {
		return nil, fmt.Errorf("register %s: %w", overlapagg.Name, err)
	}
	if err := datefuncs.Register(r); err != nil {
		return nil, fmt.Errorf("register %s: %w", datefuncs.Name, err)
	}
	return r, nil
}

// MustRegistry is Registry but panics on registration conflicts, which can
// only happen from a programming error in the built-in definitions.
func MustRegistry() *funcreg.Registry {
	r, err := Registry()
	if err != nil {
		panic(err)
	}
	return r
}
