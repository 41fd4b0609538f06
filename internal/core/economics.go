package core

import (
	"math"

	"go.uber.org/zap"

	"valuation_service/internal/domain/model"
)

// CountryResolver reverse-geocodes a coordinate to an ISO alpha-2 country
// code. Available reports whether the resolver can be used at all.
type CountryResolver interface {
	Available() bool
	Resolve(lat, lon float64) (string, bool)
}

// EconomicsResolver maps a coordinate to its currency, price multiplier and
// growth rate. Resolution order: market hub, country, region box, USD.
type EconomicsResolver struct {
	countries     CountryResolver
	microVariance bool
}

// EconomicsOption configures an EconomicsResolver.
type EconomicsOption func(*EconomicsResolver)

// WithMicroVariance spreads the multiplier by up to ±10% per location so that
// neighbouring points inside one market do not price identically.
func WithMicroVariance(enabled bool) EconomicsOption {
	return func(r *EconomicsResolver) { r.microVariance = enabled }
}

func NewEconomicsResolver(countries CountryResolver, opts ...EconomicsOption) *EconomicsResolver {
	r := &EconomicsResolver{countries: countries}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve never fails. A panic anywhere in the chain yields the USD default.
func (r *EconomicsResolver) Resolve(lat, lon float64) (p model.EconomicsProfile) {
	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error("economics resolution panicked", zap.Any("panic", rec))
			p = usdDefault
			p.Source = model.EconomicsFromDefault
		}
		economicsResolutions.WithLabelValues(p.Source).Inc()
	}()

	p = r.resolve(lat, lon)
	if r.microVariance {
		p.Multiplier *= 0.9 + 0.2*CoordinateSeed(lat, lon)
	}
	return p
}

func (r *EconomicsResolver) resolve(lat, lon float64) model.EconomicsProfile {
	if hub, ok := nearestHub(lat, lon); ok {
		p := hub.profile
		p.Source = model.EconomicsFromHub
		p.Region = hub.name
		return p
	}

	if r.countries != nil && r.countries.Available() {
		if code, ok := r.countries.Resolve(lat, lon); ok {
			if p, ok := countryProfiles[code]; ok {
				p.Source = model.EconomicsFromCountry
				p.Region = code
				return p
			}
			zap.L().Debug("country has no economics profile", zap.String("country", code))
		}
	}

	for _, box := range regionBoxes {
		if box.contains(lat, lon) {
			p := box.profile
			p.Source = model.EconomicsFromRegion
			p.Region = box.name
			return p
		}
	}

	p := usdDefault
	p.Source = model.EconomicsFromDefault
	return p
}

// nearestHub returns the closest hub within hubRadiusKm.
func nearestHub(lat, lon float64) (marketHub, bool) {
	best := -1
	bestDist := math.Inf(1)
	for i, hub := range marketHubs {
		d := Haversine(lat, lon, hub.lat, hub.lon)
		if d < hubRadiusKm && d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return marketHub{}, false
	}
	return marketHubs[best], true
}
