package core

import (
	"math"

	"valuation_service/internal/domain/model"
)

const earthRadiusKm = 6371

// Haversine returns the great-circle distance in kilometres.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// CoordinateSeed maps a coordinate to a stable value in [0, 1]. The large
// factors make the seed move noticeably between points a few hundred metres
// apart.
func CoordinateSeed(lat, lon float64) float64 {
	seed := (math.Sin(lat*127) + math.Cos(lon*311) + 2) / 4
	return clamp(seed, 0, 1)
}

// NearestAndCount reduces raw geodata elements to the distance of the
// nearest tagged element and the number of tagged elements. Untagged
// elements are way geometry, not amenities.
func NearestAndCount(lat, lon float64, elements []model.OSMElement) model.AmenityResult {
	var res model.AmenityResult
	for _, el := range elements {
		if len(el.Tags) == 0 {
			continue
		}
		res.Count++
		d := Haversine(lat, lon, el.Lat, el.Lon)
		if res.NearestKm == nil || d < *res.NearestKm {
			res.NearestKm = &d
		}
	}
	if res.NearestKm != nil {
		rounded := roundTo(*res.NearestKm, 2)
		res.NearestKm = &rounded
	}
	return res
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
