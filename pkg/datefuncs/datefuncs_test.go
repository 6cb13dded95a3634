package datefuncs

import (
	"errors"
	"testing"

	"github.com/eunmann/overlap-db/pkg/funcreg"
	"github.com/eunmann/overlap-db/pkg/sqltypes"
	"github.com/eunmann/overlap-db/pkg/vector"
)

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		year  int32
		month int32
		want  int32
	}{
		{2024, 1, 31},
		{2024, 2, 29},  // leap year
		{2023, 2, 28},  // ordinary year
		{2000, 2, 29},  // divisible by 400: leap
		{1900, 2, 28},  // divisible by 100 but not 400: not leap
		{2100, 2, 28},
		{2024, 4, 30},
		{2024, 12, 31},
		{1, 2, 28},
	}

	for _, tt := range tests {
		got, err := DaysInMonth(tt.year, tt.month)
		if err != nil {
			t.Errorf("DaysInMonth(%d, %d) failed: %v", tt.year, tt.month, err)
			continue
		}
		if got != tt.want {
			t.Errorf("DaysInMonth(%d, %d) = %d, want %d", tt.year, tt.month, got, tt.want)
		}
	}
}

func TestDaysInMonthOutOfRange(t *testing.T) {
	for _, month := range []int32{0, 13, -1, 100} {
		if _, err := DaysInMonth(2024, month); err == nil {
			t.Errorf("DaysInMonth(2024, %d) should fail", month)
		}
	}
}

func TestDaysInMonthDate(t *testing.T) {
	// 2024-02-15 is day 19768 since epoch.
	d := sqltypes.MakeDate(2024, 2, 15)
	if got := DaysInMonthDate(d); got != 29 {
		t.Errorf("DaysInMonthDate(2024-02-15) = %d, want 29", got)
	}

	d = sqltypes.MakeDate(1900, 2, 1)
	if got := DaysInMonthDate(d); got != 28 {
		t.Errorf("DaysInMonthDate(1900-02-01) = %d, want 28", got)
	}
}

func TestDaysInMonthTimestamp(t *testing.T) {
	// Midnight 2024-02-01 in epoch microseconds.
	ts := sqltypes.TimestampValue(int64(sqltypes.MakeDate(2024, 2, 1)) * sqltypes.MicrosPerDay)
	if got := DaysInMonthTimestamp(ts); got != 29 {
		t.Errorf("DaysInMonthTimestamp(2024-02-01) = %d, want 29", got)
	}

	// One microsecond before that midnight falls in January.
	if got := DaysInMonthTimestamp(ts - 1); got != 31 {
		t.Errorf("DaysInMonthTimestamp(2024-01-31 23:59:59.999999) = %d, want 31", got)
	}
}

func TestVectorizedOverloads(t *testing.T) {
	r := funcreg.New()
	if err := Register(r); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	t.Run("year month with nulls", func(t *testing.T) {
		f, err := r.LookupScalar(Name, []sqltypes.Type{sqltypes.Integer, sqltypes.Integer})
		if err != nil {
			t.Fatalf("LookupScalar failed: %v", err)
		}

		years := vector.NewFlat(sqltypes.Integer, []int64{2024, 2023, 0}, []bool{true, true, false})
		months := vector.NewFlat(sqltypes.Integer, []int64{2, 2, 2}, nil)

		out, err := f.Exec(vector.NewChunk(3, years, months))
		if err != nil {
			t.Fatalf("Exec failed: %v", err)
		}
		if out.Value(0) != 29 || out.Value(1) != 28 {
			t.Errorf("got (%d, %d), want (29, 28)", out.Value(0), out.Value(1))
		}
		if out.Valid(2) {
			t.Error("null year must produce null result")
		}
	})

	t.Run("date overload", func(t *testing.T) {
		f, err := r.LookupScalar(Name, []sqltypes.Type{sqltypes.Date})
		if err != nil {
			t.Fatalf("LookupScalar failed: %v", err)
		}

		dates := vector.NewFlat(sqltypes.Date,
			[]int64{int64(sqltypes.MakeDate(2000, 2, 29)), int64(sqltypes.MakeDate(1970, 1, 1))}, nil)
		out, err := f.Exec(vector.NewChunk(2, dates))
		if err != nil {
			t.Fatalf("Exec failed: %v", err)
		}
		if out.Value(0) != 29 || out.Value(1) != 31 {
			t.Errorf("got (%d, %d), want (29, 31)", out.Value(0), out.Value(1))
		}
	})

	t.Run("time overload always fails", func(t *testing.T) {
		f, err := r.LookupScalar(Name, []sqltypes.Type{sqltypes.Time})
		if err != nil {
			t.Fatalf("LookupScalar failed: %v", err)
		}

		times := vector.NewFlat(sqltypes.Time, []int64{0}, nil)
		_, err = f.Exec(vector.NewChunk(1, times))
		if !errors.Is(err, ErrTimeNoDate) {
			t.Errorf("expected ErrTimeNoDate, got %v", err)
		}
	})

	t.Run("all four overloads registered", func(t *testing.T) {
		signatures := [][]sqltypes.Type{
			{sqltypes.Integer, sqltypes.Integer},
			{sqltypes.Date},
			{sqltypes.Timestamp},
			{sqltypes.Time},
		}
		for _, sig := range signatures {
			if _, err := r.LookupScalar(Name, sig); err != nil {
				t.Errorf("overload %v not registered: %v", sig, err)
			}
		}
	})
}
