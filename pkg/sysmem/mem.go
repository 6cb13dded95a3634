// Package sysmem provides cross-platform detection of total system memory,
// used to size aggregation memory budgets.
package sysmem

// FallbackBytes is the value (4 GB) reported when platform-specific
// detection fails or is unsupported.
const FallbackBytes uint64 = 4 * 1024 * 1024 * 1024

// Total returns the total system memory in bytes. reliable is false when
// the value is the fallback rather than a platform measurement.
func Total() (bytes uint64, reliable bool) {
	bytes, ok := totalSystemMemory()
	if !ok || bytes == 0 {
		return FallbackBytes, false
	}
	return bytes, true
}

// TotalOrDefault returns just the memory value. Use Total when the caller
// needs to know whether the value is a real measurement.
func TotalOrDefault() uint64 {
	bytes, _ := Total()
	return bytes
}
