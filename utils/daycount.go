// Package utils holds date and rounding helpers used to map dated market
// quotes onto year-fraction curve time.
package utils

import "time"

// YearFraction computes the year fraction between two dates using the
// specified day count convention. Supported: ACT/360, ACT/365F.
func YearFraction(start, end time.Time, convention string) float64 {
	days := end.Sub(start).Hours() / 24
	switch convention {
	case "ACT/360":
		return days / 360.0
	default: // ACT/365F, the curve time axis convention
		return days / 365.0
	}
}
