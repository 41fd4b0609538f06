package core

import (
	"math"

	"valuation_service/internal/domain/model"
)

const fallbackNote = "Estimated using city-level averages (OSM data sparse)"

// distanceRange is the nearest-distance band of one amenity category.
type distanceRange struct {
	baseKm   float64
	spreadKm float64
}

var (
	schoolDistances    = distanceRange{baseKm: 0.5, spreadKm: 2.0}
	hospitalDistances  = distanceRange{baseKm: 1.0, spreadKm: 3.0}
	transportDistances = distanceRange{baseKm: 0.2, spreadKm: 1.0}
)

// distance is shorter for higher seeds, so a well-served area gets both more
// and closer amenities.
func (r distanceRange) distance(seed float64) float64 {
	return roundTo(r.baseKm+(1-seed)*r.spreadKm, 2)
}

// FallbackInsights builds a complete insights bundle from the coordinate
// alone. It touches neither the network nor the store.
func FallbackInsights(lat, lon float64) model.Insights {
	seed := CoordinateSeed(lat, lon)
	return model.Insights{
		CrimeRatePercent: roundTo(5+seed*15, 2),
		Schools: model.AmenityStat{
			Count:             4 + int(math.Round(seed*6)),
			NearestDistanceKm: schoolDistances.distance(seed),
		},
		Hospitals: model.AmenityStat{
			Count:             2 + int(math.Round(seed*4)),
			NearestDistanceKm: hospitalDistances.distance(seed),
		},
		PublicTransport: model.AmenityStat{
			Count:             5 + int(math.Round(seed*10)),
			NearestDistanceKm: transportDistances.distance(seed),
		},
		Note:   fallbackNote,
		Source: model.SourceFallback,
	}
}
