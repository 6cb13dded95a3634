// Package sqltypes defines the logical SQL types and temporal value encodings
// used by the function surface.
package sqltypes

import "fmt"

// Type is a logical SQL type identifier.
type Type uint8

// Logical types supported by the function surface.
const (
	Integer Type = iota // 32-bit signed integer
	BigInt              // 64-bit signed integer
	Date                // days since 1970-01-01
	Timestamp           // microseconds since 1970-01-01 00:00:00
	Time                // microseconds since midnight, no date component
	NumTypes            // Sentinel value for array sizing
)

var typeNames = [NumTypes]string{
	Integer:   "INTEGER",
	BigInt:    "BIGINT",
	Date:      "DATE",
	Timestamp: "TIMESTAMP",
	Time:      "TIME",
}

// String returns the SQL name of the type.
func (t Type) String() string {
	if t >= NumTypes {
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
	return typeNames[t]
}

// MicrosPerDay is the number of microseconds in a day, used to convert
// timestamps to dates.
const MicrosPerDay = 86_400_000_000

// DateValue is a calendar date encoded as days since the Unix epoch.
// Negative values are dates before 1970-01-01 (proleptic Gregorian).
type DateValue int32

// TimestampValue is an instant encoded as microseconds since the Unix epoch.
type TimestampValue int64

// TimeValue is a time of day encoded as microseconds since midnight.
// It carries no date component.
type TimeValue int64

// Civil returns the proleptic Gregorian year, month, and day for the date.
// Month is 1-12 and day is 1-31.
func (d DateValue) Civil() (year, month, day int32) {
	// Shift epoch from 1970-01-01 to 0000-03-01 so leap days land at the
	// end of the year, then decompose into 400-year eras.
	z := int64(d) + 719468
	era := floorDiv(z, 146097)
	doe := z - era*146097
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365
	y := yoe + era*400
	doy := doe - (365*yoe + yoe/4 - yoe/100)
	mp := (5*doy + 2) / 153
	day = int32(doy - (153*mp+2)/5 + 1)
	if mp < 10 {
		month = int32(mp + 3)
	} else {
		month = int32(mp - 9)
	}
	if month <= 2 {
		y++
	}
	return int32(y), month, day
}

// MakeDate builds a DateValue from a proleptic Gregorian civil date.
// The inverse of Civil.
func MakeDate(year, month, day int32) DateValue {
	y := int64(year)
	if month <= 2 {
		y--
	}
	era := floorDiv(y, 400)
	yoe := y - era*400
	var mp int64
	if month > 2 {
		mp = int64(month) - 3
	} else {
		mp = int64(month) + 9
	}
	doy := (153*mp+2)/5 + int64(day) - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return DateValue(era*146097 + doe - 719468)
}

// Date returns the calendar date containing the timestamp.
// Instants before the epoch floor toward the earlier date.
func (ts TimestampValue) Date() DateValue {
	return DateValue(floorDiv(int64(ts), MicrosPerDay))
}

// IsLeapYear reports whether the given proleptic Gregorian year is a leap year.
func IsLeapYear(year int32) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// floorDiv divides a by b rounding toward negative infinity.
// b must be positive.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b < 0 {
		q--
	}
	return q
}
