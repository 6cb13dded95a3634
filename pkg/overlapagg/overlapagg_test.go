package overlapagg

import (
	"math/rand"
	"testing"
)

func finalizeOf(intervals ...[2]int64) int64 {
	s := NewState()
	for _, iv := range intervals {
		s.Add(iv[0], iv[1])
	}
	return s.Finalize()
}

// bruteForceMaxOverlap counts, for every interval start point, how many
// intervals cover it. The maximum overlap of inclusive intervals is always
// attained at some interval's start, so this is exact.
func bruteForceMaxOverlap(intervals [][2]int64) int64 {
	var max int64
	for _, p := range intervals {
		point := p[0]
		var count int64
		for _, iv := range intervals {
			if iv[0] <= point && point <= iv[1] {
				count++
			}
		}
		if count > max {
			max = count
		}
	}
	return max
}

func TestFinalize(t *testing.T) {
	tests := []struct {
		name      string
		intervals [][2]int64
		want      int64
	}{
		{"empty", nil, 0},
		{"single point interval", [][2]int64{{5, 5}}, 1},
		{"single interval", [][2]int64{{1, 10}}, 1},
		{"touching does not overlap", [][2]int64{{1, 5}, {6, 10}}, 1},
		{"shared endpoint overlaps", [][2]int64{{1, 5}, {5, 10}}, 2},
		{"triple stack", [][2]int64{{1, 10}, {2, 9}, {5, 20}}, 3},
		{"disjoint", [][2]int64{{1, 2}, {10, 20}, {30, 40}}, 1},
		{"nested", [][2]int64{{1, 100}, {10, 90}, {20, 80}, {30, 70}}, 4},
		{"identical intervals", [][2]int64{{3, 7}, {3, 7}, {3, 7}}, 3},
		{"negative positions", [][2]int64{{-10, -5}, {-7, -2}, {-6, 0}}, 3},
		{"adjacent chain", [][2]int64{{1, 1}, {2, 2}, {3, 3}}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := finalizeOf(tt.intervals...); got != tt.want {
				t.Errorf("finalize = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestInvalidIntervalsSilentlyDropped(t *testing.T) {
	s := NewState()
	s.Add(10, 5) // start > end: dropped, not an error
	s.Add(1, 3)
	s.Add(100, -100)

	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1 (invalid intervals must not be stored)", s.Len())
	}
	if got := s.Finalize(); got != 1 {
		t.Errorf("finalize = %d, want 1", got)
	}

	// Result must match input that omits the invalid intervals entirely.
	if got, want := finalizeOf([2]int64{2, 4}, [2]int64{9, 3}, [2]int64{3, 6}),
		finalizeOf([2]int64{2, 4}, [2]int64{3, 6}); got != want {
		t.Errorf("dropping invalid interval changed result: %d vs %d", got, want)
	}
}

func TestAddRepeated(t *testing.T) {
	t.Run("materializes all copies", func(t *testing.T) {
		s := NewState()
		s.AddRepeated(10, 20, 1000)
		s.Add(100, 200) // does not overlap the repeated interval

		if s.Len() != 1001 {
			t.Fatalf("Len = %d, want 1001", s.Len())
		}
		if got := s.Finalize(); got != 1000 {
			t.Errorf("finalize = %d, want 1000", got)
		}
	})

	t.Run("invalid interval adds nothing", func(t *testing.T) {
		s := NewState()
		s.AddRepeated(20, 10, 1000)
		if s.Len() != 0 {
			t.Errorf("Len = %d, want 0", s.Len())
		}
	})

	t.Run("zero count adds nothing", func(t *testing.T) {
		s := NewState()
		s.AddRepeated(1, 2, 0)
		if s.Len() != 0 {
			t.Errorf("Len = %d, want 0", s.Len())
		}
	})
}

func TestMergeFrom(t *testing.T) {
	t.Run("drains source", func(t *testing.T) {
		a := NewState()
		a.Add(1, 5)
		b := NewState()
		b.Add(4, 10)
		b.Add(6, 8)

		a.MergeFrom(b)
		if a.Len() != 3 {
			t.Errorf("target Len = %d, want 3", a.Len())
		}
		if b.Len() != 0 {
			t.Errorf("source Len = %d, want 0 after merge", b.Len())
		}
	})

	t.Run("empty source is a no-op", func(t *testing.T) {
		a := NewState()
		a.Add(1, 5)
		a.MergeFrom(NewState())
		a.MergeFrom(nil)
		if a.Len() != 1 {
			t.Errorf("Len = %d, want 1", a.Len())
		}
	})

	t.Run("into empty target", func(t *testing.T) {
		a := NewState()
		b := NewState()
		b.Add(4, 10)
		a.MergeFrom(b)
		if a.Len() != 1 || b.Len() != 0 {
			t.Errorf("Len = (%d, %d), want (1, 0)", a.Len(), b.Len())
		}
	})
}

func TestMergeOrderInvariance(t *testing.T) {
	intervals := [][2]int64{
		{1, 10}, {2, 9}, {5, 20}, {15, 30}, {25, 25}, {-5, 3}, {8, 8},
	}

	// Single buffer holding everything.
	want := finalizeOf(intervals...)

	// Partition into three buffers and try several merge orders.
	build := func(ivs ...[2]int64) *State {
		s := NewState()
		for _, iv := range ivs {
			s.Add(iv[0], iv[1])
		}
		return s
	}
	orders := [][3]int{{0, 1, 2}, {2, 1, 0}, {1, 0, 2}, {2, 0, 1}}
	for _, order := range orders {
		parts := []*State{
			build(intervals[0], intervals[1]),
			build(intervals[2], intervals[3], intervals[4]),
			build(intervals[5], intervals[6]),
		}
		target := parts[order[0]]
		target.MergeFrom(parts[order[1]])
		target.MergeFrom(parts[order[2]])
		if got := target.Finalize(); got != want {
			t.Errorf("merge order %v: finalize = %d, want %d", order, got, want)
		}
	}
}

func TestInsertionOrderInvariance(t *testing.T) {
	intervals := [][2]int64{{1, 10}, {2, 9}, {5, 20}, {15, 30}, {7, 7}}
	want := finalizeOf(intervals...)

	rng := rand.New(rand.NewSource(7))
	for range 20 {
		shuffled := make([][2]int64, len(intervals))
		copy(shuffled, intervals)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		if got := finalizeOf(shuffled...); got != want {
			t.Errorf("shuffled input: finalize = %d, want %d", got, want)
		}
	}
}

func TestBruteForceCrossCheck(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := range 200 {
		n := rng.Intn(30)
		intervals := make([][2]int64, 0, n)
		s := NewState()
		for range n {
			start := int64(rng.Intn(100) - 50)
			end := start + int64(rng.Intn(20))
			intervals = append(intervals, [2]int64{start, end})
			s.Add(start, end)
		}

		want := bruteForceMaxOverlap(intervals)
		if got := s.Finalize(); got != want {
			t.Fatalf("trial %d: sweep = %d, brute force = %d, intervals = %v",
				trial, got, want, intervals)
		}
	}
}

func BenchmarkFinalize(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	intervals := make([]Interval, 100000)
	for i := range intervals {
		start := int64(rng.Intn(1_000_000))
		intervals[i] = Interval{Start: start, End: start + int64(rng.Intn(1000))}
	}

	b.ResetTimer()
	for range b.N {
		s := NewState()
		for _, iv := range intervals {
			s.Add(iv.Start, iv.End)
		}
		_ = s.Finalize()
	}
}
