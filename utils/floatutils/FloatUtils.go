// Package floatutils provides helpers for float64 values bounded by
// r1.Intervals
package floatutils

import (
	"math"

	"gonum.org/v1/gonum/spatial/r1"
)

// Symmetric returns the interval [-bound, bound]
func Symmetric(bound float64) r1.Interval {
	bound = math.Abs(bound)
	return r1.Interval{Min: -bound, Max: bound}
}

// In returns whether value lies in the closed interval
func In(value float64, interval r1.Interval) bool {
	return value >= interval.Min && value <= interval.Max
}

// ClipInterval returns value clipped to the closed interval
func ClipInterval(value float64, interval r1.Interval) float64 {
	return math.Max(interval.Min, math.Min(value, interval.Max))
}
