// Package overlapagg implements the max_intersections aggregate: the maximum
// number of integer intervals that simultaneously overlap at any single point.
//
// Accumulation is a three-phase protocol: ingest intervals into per-group
// states, optionally fold parallel partial states together, then finalize
// once with a sweep-line scan over interval boundary events. A State is not
// safe for concurrent use; parallel execution gives each worker private
// states and folds them with MergeFrom (see pkg/groupexec).
package overlapagg

import "slices"

// Interval is an inclusive integer interval with Start <= End.
type Interval struct {
	Start int64
	End   int64
}

// State accumulates the intervals of one aggregation group.
type State struct {
	intervals []Interval
}

// NewState creates an empty accumulation state.
func NewState() *State {
	return &State{intervals: make([]Interval, 0, 64)}
}

// Add appends the interval (start, end) to the state. Intervals with
// start > end are silently dropped; they are treated as degenerate input,
// not an error. Null inputs must be filtered by the caller before Add
// (the aggregate is registered with special null handling).
func (s *State) Add(start, end int64) {
	if start <= end {
		s.intervals = append(s.intervals, Interval{Start: start, End: end})
	}
}

// AddRepeated appends count copies of the interval, the fast path for a
// constant input column. An invalid interval contributes zero copies.
func (s *State) AddRepeated(start, end int64, count int) {
	if start > end || count <= 0 {
		return
	}
	s.intervals = slices.Grow(s.intervals, count)
	iv := Interval{Start: start, End: end}
	for range count {
		s.intervals = append(s.intervals, iv)
	}
}

// MergeFrom appends all of src's intervals into s and drains src.
// Merging an empty source is a no-op. Merge order across parallel partial
// states never changes the finalized result.
func (s *State) MergeFrom(src *State) {
	if src == nil || len(src.intervals) == 0 {
		return
	}
	if len(s.intervals) == 0 {
		s.intervals, src.intervals = src.intervals, nil
		return
	}
	s.intervals = append(s.intervals, src.intervals...)
	src.intervals = nil
}

// Len returns the number of accumulated intervals.
func (s *State) Len() int {
	return len(s.intervals)
}

// event marks an interval boundary during the finalize sweep.
// delta is +1 at an interval's start and -1 one past its end, so an
// inclusive interval [start, end] covers the half-open range [start, end+1).
type event struct {
	pos   int64
	delta int32
}

// Finalize computes the maximum number of simultaneously open intervals.
// An empty state finalizes to 0. Finalize consumes the state; it must not
// be updated or merged afterward.
func (s *State) Finalize() int64 {
	n := len(s.intervals)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return 1
	}

	events := make([]event, 0, 2*n)
	for _, iv := range s.intervals {
		events = append(events, event{pos: iv.Start, delta: 1})
		events = append(events, event{pos: iv.End + 1, delta: -1})
	}

	// Closes sort before opens at the same position so that touching
	// intervals like [1,5] and [6,10] do not count as overlapping, while
	// intervals sharing an inclusive endpoint like [1,5] and [5,10] do.
	slices.SortFunc(events, func(a, b event) int {
		if a.pos != b.pos {
			if a.pos < b.pos {
				return -1
			}
			return 1
		}
		return int(a.delta - b.delta)
	})

	var current, max int64
	for _, e := range events {
		current += int64(e.delta)
		if current > max {
			max = current
		}
	}

	s.intervals = nil
	return max
}
