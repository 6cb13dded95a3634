// Package datefuncs implements the days_in_month scalar function and its
// four overloads: (INTEGER, INTEGER), (DATE), (TIMESTAMP), and (TIME).
//
// The TIME overload is registered but always fails at evaluation time:
// a time of day carries no date information, so the month cannot be
// determined. That failure is the only error path of the function set
// and is intentional.
package datefuncs

import (
	"errors"
	"fmt"

	"github.com/eunmann/overlap-db/pkg/funcreg"
	"github.com/eunmann/overlap-db/pkg/sqltypes"
	"github.com/eunmann/overlap-db/pkg/vector"
)

// Name is the SQL surface name of the function set.
const Name = "days_in_month"

// ErrTimeNoDate is returned when days_in_month is evaluated over a TIME
// column. It is fixed and non-retryable.
var ErrTimeNoDate = errors.New(
	"days_in_month cannot be used with TIME type: TIME does not contain date information")

// monthDays holds the day count of each month in a non-leap year.
var monthDays = [12]int32{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// DaysInMonth returns the number of days in the given month of the given
// proleptic Gregorian year. Month must be 1-12.
func DaysInMonth(year, month int32) (int32, error) {
	if month < 1 || month > 12 {
		return 0, fmt.Errorf("%s: month out of range: %d", Name, month)
	}
	days := monthDays[month-1]
	if month == 2 && sqltypes.IsLeapYear(year) {
		days = 29
	}
	return days, nil
}

// DaysInMonthDate returns the day count of the calendar month containing d.
func DaysInMonthDate(d sqltypes.DateValue) int32 {
	year, month, _ := d.Civil()
	days, _ := DaysInMonth(year, month) // month from Civil is always 1-12
	return days
}

// DaysInMonthTimestamp returns the day count of the calendar month
// containing the timestamp.
func DaysInMonthTimestamp(ts sqltypes.TimestampValue) int32 {
	return DaysInMonthDate(ts.Date())
}

// execYearMonth evaluates the (INTEGER year, INTEGER month) overload.
// Null in either argument produces a null result row.
func execYearMonth(in *vector.Chunk) (*vector.Vector, error) {
	year, month := in.Cols[0], in.Cols[1]
	out := vector.NewBuilder(sqltypes.Integer, in.N)
	for i := 0; i < in.N; i++ {
		if !year.Valid(i) || !month.Valid(i) {
			out.AppendNull()
			continue
		}
		days, err := DaysInMonth(int32(year.Value(i)), int32(month.Value(i)))
		if err != nil {
			return nil, err
		}
		out.Append(int64(days))
	}
	return out.Build(), nil
}

// execDate evaluates the (DATE) overload.
func execDate(in *vector.Chunk) (*vector.Vector, error) {
	dates := in.Cols[0]
	out := vector.NewBuilder(sqltypes.Integer, in.N)
	for i := 0; i < in.N; i++ {
		if !dates.Valid(i) {
			out.AppendNull()
			continue
		}
		out.Append(int64(DaysInMonthDate(sqltypes.DateValue(dates.Value(i)))))
	}
	return out.Build(), nil
}

// execTimestamp evaluates the (TIMESTAMP) overload.
func execTimestamp(in *vector.Chunk) (*vector.Vector, error) {
	timestamps := in.Cols[0]
	out := vector.NewBuilder(sqltypes.Integer, in.N)
	for i := 0; i < in.N; i++ {
		if !timestamps.Valid(i) {
			out.AppendNull()
			continue
		}
		out.Append(int64(DaysInMonthTimestamp(sqltypes.TimestampValue(timestamps.Value(i)))))
	}
	return out.Build(), nil
}

// execTime evaluates the (TIME) overload, which always fails before looking
// at any row.
func execTime(in *vector.Chunk) (*vector.Vector, error) {
	return nil, ErrTimeNoDate
}

// Register adds all four days_in_month overloads to the registry.
func Register(r *funcreg.Registry) error {
	overloads := []*funcreg.ScalarFunc{
		{
			Name:   Name,
			Args:   []sqltypes.Type{sqltypes.Integer, sqltypes.Integer},
			Return: sqltypes.Integer,
			Exec:   execYearMonth,
		},
		{
			Name:   Name,
			Args:   []sqltypes.Type{sqltypes.Date},
			Return: sqltypes.Integer,
			Exec:   execDate,
		},
		{
			Name:   Name,
			Args:   []sqltypes.Type{sqltypes.Timestamp},
			Return: sqltypes.Integer,
			Exec:   execTimestamp,
		},
		{
			Name:   Name,
			Args:   []sqltypes.Type{sqltypes.Time},
			Return: sqltypes.Integer,
			Exec:   execTime,
		},
	}
	for _, f := range overloads {
		if err := r.RegisterScalar(f); err != nil {
			return err
		}
	}
	return nil
}
