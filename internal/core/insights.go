package core

import (
	"context"
	"time"

	"go.uber.org/zap"

	"valuation_service/internal/domain/model"
)

// FuzzyTolerance is the half-width in degrees of the box a cached record
// must fall in to answer a lookup, roughly 1.6 km.
const FuzzyTolerance = 0.015

// placeholderScore fills metrics a live fetch did not compute.
const placeholderScore = 0.5

// accessibilityRadiusM is wider than the amenity radius so that rural points
// still find something to measure against.
const accessibilityRadiusM = 6000

// MetricRepository is the storage behind the geo-fingerprint cache.
type MetricRepository interface {
	FindNear(ctx context.Context, lat, lon, tolerance float64) (*model.AreaMetric, error)
	Upsert(ctx context.Context, metric model.AreaMetric, fields ...string) (*model.AreaMetric, error)
}

// InsightsService answers area questions from the cache, the fallback
// generator or live geodata, in that order of preference.
type InsightsService struct {
	store   MetricRepository
	fetcher *LiveFetcher
	now     Clock
}

func NewInsightsService(store MetricRepository, fetcher *LiveFetcher, now Clock) *InsightsService {
	if now == nil {
		now = time.Now
	}
	return &InsightsService{store: store, fetcher: fetcher, now: now}
}

// lookup treats store errors as a miss.
func (s *InsightsService) lookup(ctx context.Context, lat, lon float64) *model.AreaMetric {
	metric, err := s.store.FindNear(ctx, lat, lon, FuzzyTolerance)
	if err != nil {
		cacheLookups.WithLabelValues("error").Inc()
		zap.L().Warn("area cache lookup failed", zap.Float64("lat", lat), zap.Float64("lon", lon), zap.Error(err))
		return nil
	}
	return metric
}

// keyFor is the coordinate a write should land on: the record that answered
// the lookup if there was one, otherwise the query point itself.
func keyFor(found *model.AreaMetric, lat, lon float64) (float64, float64) {
	if found != nil {
		return found.Latitude, found.Longitude
	}
	return lat, lon
}

func (s *InsightsService) save(ctx context.Context, metric model.AreaMetric, fields ...string) {
	if _, err := s.store.Upsert(ctx, metric, fields...); err != nil {
		zap.L().Warn("area cache write failed",
			zap.Float64("lat", metric.Latitude),
			zap.Float64("lon", metric.Longitude),
			zap.Strings("fields", fields),
			zap.Error(err),
		)
	}
}

// AreaInsights returns the insights bundle for a location. A cached bundle
// wins. On a miss, live=false answers from the fallback generator without
// storing anything, and live=true runs the live fetcher and stores a
// successful result. Collaborator failures never surface as errors.
func (s *InsightsService) AreaInsights(ctx context.Context, lat, lon float64, live bool) (model.Insights, error) {
	found := s.lookup(ctx, lat, lon)
	if found != nil && !found.Meta.IsEmpty() {
		cacheLookups.WithLabelValues("hit").Inc()
		zap.L().Debug("area cache hit", zap.Float64("lat", lat), zap.Float64("lon", lon), zap.Int64("id", found.ID))
		return found.Meta, nil
	}
	cacheLookups.WithLabelValues("miss").Inc()

	if !live || s.fetcher == nil {
		return FallbackInsights(lat, lon), ctx.Err()
	}

	ins, ok := s.fetcher.Fetch(ctx, lat, lon)
	if !ok {
		return ins, ctx.Err()
	}

	keyLat, keyLon := keyFor(found, lat, lon)
	s.save(ctx, model.AreaMetric{
		Latitude:           keyLat,
		Longitude:          keyLon,
		CrimeIndex:         roundTo(ins.CrimeRatePercent/100, 4),
		TrafficScore:       placeholderScore,
		AccessibilityScore: placeholderScore,
		Meta:               ins,
	}, model.FieldMeta, model.FieldCrimeIndex)

	return ins, nil
}

// CrimeIndex returns the cached crime index or computes and stores it. A
// stored value at or below 0.01 is an unset default.
func (s *InsightsService) CrimeIndex(ctx context.Context, lat, lon float64) float64 {
	found := s.lookup(ctx, lat, lon)
	if found != nil && found.CrimeIndex > 0.01 {
		return found.CrimeIndex
	}

	score := ComputeCrimeIndex(lat, lon)
	keyLat, keyLon := keyFor(found, lat, lon)
	s.save(ctx, model.AreaMetric{Latitude: keyLat, Longitude: keyLon, CrimeIndex: score}, model.FieldCrimeIndex)
	return score
}

// TrafficScore returns the cached traffic score or computes it for the
// current hour and stores it.
func (s *InsightsService) TrafficScore(ctx context.Context, lat, lon float64) float64 {
	found := s.lookup(ctx, lat, lon)
	if found != nil && found.TrafficScore > 0 {
		return found.TrafficScore
	}

	score := ComputeTrafficScore(lat, lon, s.now())
	keyLat, keyLon := keyFor(found, lat, lon)
	s.save(ctx, model.AreaMetric{Latitude: keyLat, Longitude: keyLon, TrafficScore: score}, model.FieldTrafficScore)
	return score
}

// AccessibilityScore returns the cached accessibility score. On a miss it is
// measured from live geodata when live is set and stored; otherwise it is
// derived from the fallback bundle and not stored.
func (s *InsightsService) AccessibilityScore(ctx context.Context, lat, lon float64, live bool) float64 {
	found := s.lookup(ctx, lat, lon)
	if found != nil && found.AccessibilityScore > 0 {
		return found.AccessibilityScore
	}

	if !live || s.fetcher == nil {
		fb := FallbackInsights(lat, lon)
		return AccessibilityFromDistances([]float64{
			fb.Schools.NearestDistanceKm,
			fb.Hospitals.NearestDistanceKm,
			fb.PublicTransport.NearestDistanceKm,
		})
	}

	score := AccessibilityFromDistances(s.fetcher.NearestDistances(ctx, lat, lon, accessibilityRadiusM))
	keyLat, keyLon := keyFor(found, lat, lon)
	s.save(ctx, model.AreaMetric{Latitude: keyLat, Longitude: keyLon, AccessibilityScore: score}, model.FieldAccessibilityScore)
	return score
}

// BuildFeatures assembles the base model input for a property at year.
func (s *InsightsService) BuildFeatures(ctx context.Context, p model.Property, year int, live bool) model.FeatureVector {
	return model.FeatureVector{
		AreaSqft:      p.AreaSqft,
		Bedrooms:      float64(p.Bedrooms),
		Bathrooms:     float64(p.Bathrooms),
		Crime:         s.CrimeIndex(ctx, p.Latitude, p.Longitude),
		Traffic:       s.TrafficScore(ctx, p.Latitude, p.Longitude),
		Accessibility: s.AccessibilityScore(ctx, p.Latitude, p.Longitude, live),
		Year:          float64(year),
	}
}
