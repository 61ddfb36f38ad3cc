package numberutil

import "math"

// SaturatingAdd returns a+b clamped to the int64 range.
func SaturatingAdd(a, b int64) int64 {
	if b > 0 && a > math.MaxInt64-b {
		return math.MaxInt64
	}

	if b < 0 && a < math.MinInt64-b {
		return math.MinInt64
	}

	return a + b
}

// SaturatingSum adds all values, clamping at the int64 bounds instead of
// wrapping.
func SaturatingSum(values ...int64) int64 {
	var total int64
	for _, v := range values {
		total = SaturatingAdd(total, v)
	}

	return total
}

// SubFloorZero returns a-b, never going below zero.
func SubFloorZero(a, b int64) int64 {
	if b >= a {
		return 0
	}

	return a - b
}
