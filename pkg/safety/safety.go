// Package safety holds the pure filter functions applied to operator input
// before it reaches the vehicle.
package safety

import (
	"math"
	"time"
)

// Deadzone suppresses input noise near zero: values with magnitude below
// threshold become exactly 0.0, everything else passes unchanged.
func Deadzone(value, threshold float64) float64 {
	if math.Abs(value) < threshold {
		return 0.0
	}
	return value
}

// Clamp bounds each axis independently into [-max, max].
func Clamp(linear, angular, maxLinear, maxAngular float64) (float64, float64) {
	lin := math.Max(-maxLinear, math.Min(maxLinear, linear))
	ang := math.Max(-maxAngular, math.Min(maxAngular, angular))
	return lin, ang
}

// MinIntervalGate reports whether a command may be sent now: true if no
// send has been recorded yet, or if at least 1/maxRateHz has elapsed since
// lastSent.
func MinIntervalGate(lastSent time.Time, maxRateHz float64) bool {
	if lastSent.IsZero() {
		return true
	}
	minInterval := time.Duration(float64(time.Second) / maxRateHz)
	return time.Since(lastSent) >= minInterval
}
