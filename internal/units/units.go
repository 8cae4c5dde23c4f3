// Package units provides shared constants and validation for distance and
// time display units
package units

import "strings"

// Distance unit constants
const (
	Meters     = "m"
	Kilometers = "km"
	AU         = "au"
)

// Time unit constants
const (
	Seconds = "s"
	Hours   = "h"
	Days    = "d"
)

// MetersPerAU is the astronomical unit in meters.
const MetersPerAU = 149597870700.0

// ValidDistanceUnits contains all valid distance unit values
var ValidDistanceUnits = []string{Meters, Kilometers, AU}

// ValidTimeUnits contains all valid time unit values
var ValidTimeUnits = []string{Seconds, Hours, Days}

// IsValidDistance checks if the given unit is a known distance unit
func IsValidDistance(unit string) bool {
	return contains(ValidDistanceUnits, unit)
}

// IsValidTime checks if the given unit is a known time unit
func IsValidTime(unit string) bool {
	return contains(ValidTimeUnits, unit)
}

// GetValidDistanceUnitsString returns a comma-separated list for error messages
func GetValidDistanceUnitsString() string {
	return strings.Join(ValidDistanceUnits, ", ")
}

// GetValidTimeUnitsString returns a comma-separated list for error messages
func GetValidTimeUnitsString() string {
	return strings.Join(ValidTimeUnits, ", ")
}

// ConvertDistance converts a distance in meters to the target units.
// Trajectories are stored in meters.
func ConvertDistance(meters float64, target string) float64 {
	switch target {
	case Kilometers:
		return meters / 1000
	case AU:
		return meters / MetersPerAU
	default:
		return meters
	}
}

// ConvertTime converts an elapsed time in seconds to the target units.
func ConvertTime(seconds float64, target string) float64 {
	switch target {
	case Hours:
		return seconds / 3600
	case Days:
		return seconds / 86400
	default:
		return seconds
	}
}

// DistanceLabel returns an axis label such as "x-distance (km)".
func DistanceLabel(axis, unit string) string {
	if !IsValidDistance(unit) {
		unit = Meters
	}
	return axis + "-distance (" + unit + ")"
}

// TimeLabel returns the time axis label such as "time (d)".
func TimeLabel(unit string) string {
	if !IsValidTime(unit) {
		unit = Seconds
	}
	return "time (" + unit + ")"
}

func contains(list []string, unit string) bool {
	for _, u := range list {
		if u == unit {
			return true
		}
	}
	return false
}
