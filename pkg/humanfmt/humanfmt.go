// Package humanfmt provides human-readable formatting for bytes, counts,
// and durations in log output.
package humanfmt

import (
	"fmt"
	"strconv"
	"time"
)

// Binary (IEC) units for bytes.
const (
	KiB = 1024
	MiB = 1024 * KiB
	GiB = 1024 * MiB
	TiB = 1024 * GiB
)

var byteUnits = []struct {
	factor int64
	suffix string
}{
	{TiB, "TiB"},
	{GiB, "GiB"},
	{MiB, "MiB"},
	{KiB, "KiB"},
}

// Bytes formats a byte count using IEC binary units, like "1.23 GiB".
// Values below 1 KiB (including negatives) are printed in raw bytes.
func Bytes(b int64) string {
	for _, u := range byteUnits {
		if b >= u.factor {
			return fmt.Sprintf("%.2f %s", float64(b)/float64(u.factor), u.suffix)
		}
	}
	return fmt.Sprintf("%d B", b)
}

// Duration formats a duration at a precision that reads well in logs:
// "789ns", "45.0µs", "300.0ms", "1.23s", "1m30s", "2h15m".
func Duration(d time.Duration) string {
	if d < 0 {
		return d.String()
	}
	if d >= time.Minute {
		return clockFormat(d)
	}
	switch {
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.1fms", float64(d)/float64(time.Millisecond))
	case d >= time.Microsecond:
		return fmt.Sprintf("%.1fµs", float64(d)/float64(time.Microsecond))
	}
	return fmt.Sprintf("%dns", d.Nanoseconds())
}

// clockFormat renders minute-or-longer durations in whole units, dropping
// a zero remainder: "2m", "1m30s", "2h", "2h15m".
func clockFormat(d time.Duration) string {
	major, minor := time.Minute, time.Second
	majorUnit, minorUnit := "m", "s"
	if d >= time.Hour {
		major, minor = time.Hour, time.Minute
		majorUnit, minorUnit = "h", "m"
	}

	rem := (d % major) / minor
	if rem == 0 {
		return fmt.Sprintf("%d%s", d/major, majorUnit)
	}
	return fmt.Sprintf("%d%s%d%s", d/major, majorUnit, rem, minorUnit)
}

var countUnits = []struct {
	factor int64
	suffix string
}{
	{1_000_000_000, "B"},
	{1_000_000, "M"},
	{1_000, "K"},
}

// Count formats a row or item count with a short magnitude suffix, like
// "1.50K" or "2.34M". Values below 1000 (including negatives) print as-is.
func Count(n int64) string {
	for _, u := range countUnits {
		if n >= u.factor {
			return fmt.Sprintf("%.2f%s", float64(n)/float64(u.factor), u.suffix)
		}
	}
	return strconv.FormatInt(n, 10)
}
