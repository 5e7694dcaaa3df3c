// Package units formats raw metric quantities (meters, square meters,
// seconds, degrees) into display strings for a unit system. It is the only
// place unit conversion happens; the measurement engine passes metric values
// straight through.
package units

import "fmt"

// System selects a display unit system.
type System string

const (
	Metric   System = "metric"
	Imperial System = "imperial"
)

// Conversion constants.
const (
	feetPerMeter  = 3.28084
	metersPerMile = 1609.344
	sqFeetPerSqM  = 10.7639
	sqMPerSqMile  = 2589988.11
)

// Length formats a distance in meters.
func Length(meters float64, sys System) string {
	if sys == Imperial {
		if meters < metersPerMile {
			return fmt.Sprintf("%.0f ft", meters*feetPerMeter)
		}
		return fmt.Sprintf("%.2f mi", meters/metersPerMile)
	}
	if meters < 1000 {
		return fmt.Sprintf("%.0f m", meters)
	}
	return fmt.Sprintf("%.2f km", meters/1000)
}

// Area formats an area in square meters.
func Area(sqMeters float64, sys System) string {
	if sys == Imperial {
		if sqMeters < sqMPerSqMile/10 {
			return fmt.Sprintf("%.0f ft²", sqMeters*sqFeetPerSqM)
		}
		return fmt.Sprintf("%.2f mi²", sqMeters/sqMPerSqMile)
	}
	if sqMeters < 100000 {
		return fmt.Sprintf("%.0f m²", sqMeters)
	}
	return fmt.Sprintf("%.2f km²", sqMeters/1e6)
}

// Duration formats a travel time in seconds.
func Duration(seconds float64) string {
	mins := int(seconds/60 + 0.5)
	if mins < 1 {
		return "< 1 min"
	}
	if mins < 60 {
		return fmt.Sprintf("%d min", mins)
	}
	return fmt.Sprintf("%d h %d min", mins/60, mins%60)
}

// Bearing formats an azimuth in degrees.
func Bearing(deg float64) string {
	return fmt.Sprintf("%.1f°", deg)
}
