package core

import (
	"math"
	"time"
)

// Clock returns the current time. Tests pin it to a fixed hour.
type Clock func() time.Time

// timeOfDayFactor weights congestion by the local hour: morning and evening
// peaks, a busy midday, quiet nights.
func timeOfDayFactor(hour int) float64 {
	switch {
	case (hour >= 8 && hour <= 10) || (hour >= 17 && hour <= 20):
		return 0.9
	case hour >= 11 && hour <= 16:
		return 0.6
	default:
		return 0.3
	}
}

// ComputeTrafficScore estimates congestion in [0.3, 0.9] from the hour of
// day and a per-location offset.
func ComputeTrafficScore(lat, lon float64, at time.Time) float64 {
	x := lat * lon * 10000
	locSeed := x - math.Floor(x)
	return roundTo(0.3+timeOfDayFactor(at.Hour())*0.4+locSeed*0.2, 2)
}

// ComputeCrimeIndex is the analytic crime estimate in [0.2, 0.6].
func ComputeCrimeIndex(lat, lon float64) float64 {
	val := (math.Sin(lat*100) + math.Cos(lon*100)) / 2
	norm := (val + 1) / 2
	return roundTo(0.2+norm*0.4, 2)
}

// AccessibilityFromDistances scores how close the nearest amenities are.
// No distances at all means an isolated location.
func AccessibilityFromDistances(distancesKm []float64) float64 {
	if len(distancesKm) == 0 {
		return 0.2
	}
	var sum float64
	for _, d := range distancesKm {
		sum += d
	}
	avg := sum / float64(len(distancesKm))
	return roundTo(clamp(1/(avg+0.5), 0.1, 1.0), 2)
}
