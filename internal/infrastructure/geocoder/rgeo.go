// Package geocoder resolves coordinates to ISO country codes.
package geocoder

import (
	"strings"

	"github.com/sams96/rgeo"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// Natural Earth leaves ISO_A2 as "-99" for a few countries whose official
// code is disputed or split from overseas territories.
var missingISOCodes = map[string]string{
	"France":          "FR",
	"Norway":          "NO",
	"Kosovo":          "XK",
	"Northern Cyprus": "CY",
	"Somaliland":      "SO",
}

// OfflineResolver reverse-geocodes against the embedded Natural Earth country
// polygons. It needs no network access.
type OfflineResolver struct {
	r *rgeo.Rgeo
}

// NewOfflineResolver loads the country dataset. On failure the resolver is
// returned unavailable rather than as an error, so economics resolution skips
// the country step.
func NewOfflineResolver() *OfflineResolver {
	r, err := rgeo.New(rgeo.Countries110)
	if err != nil {
		zap.L().Warn("reverse geocoder unavailable", zap.Error(err))
		return &OfflineResolver{}
	}
	return &OfflineResolver{r: r}
}

func (o *OfflineResolver) Available() bool {
	return o != nil && o.r != nil
}

// Resolve returns the alpha-2 code of the country containing the point.
func (o *OfflineResolver) Resolve(lat, lon float64) (string, bool) {
	if !o.Available() {
		return "", false
	}
	loc, err := o.r.ReverseGeocode(geom.Coord{lon, lat})
	if err != nil {
		return "", false
	}
	return countryCode(loc)
}

func countryCode(loc rgeo.Location) (string, bool) {
	code := strings.ToUpper(strings.TrimSpace(loc.CountryCode2))
	if code != "" && code != "-99" {
		return code, true
	}
	code, ok := missingISOCodes[loc.Country]
	return code, ok
}
