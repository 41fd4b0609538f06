package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"valuation_service/internal/domain/model"
)

const (
	// farDistanceKm stands in for a category with no match in the search radius.
	farDistanceKm = 5.0

	defaultLiveTimeout = 25 * time.Second
	defaultRadiusM     = 2000
)

var errNoAmenities = errors.New("no amenities found in search radius")

// AmenitySource finds OSM elements of one amenity category around a point.
type AmenitySource interface {
	FindAmenities(ctx context.Context, lat, lon float64, category model.AmenityCategory, radiusM int) ([]model.OSMElement, error)
}

// LiveFetcher computes insights from live geodata. It never fails: any error
// is logged and replaced by the fallback bundle.
type LiveFetcher struct {
	source  AmenitySource
	breaker *gobreaker.CircuitBreaker[model.Insights]
	limiter *rate.Limiter
	group   singleflight.Group
	timeout time.Duration
	radiusM int
}

// FetcherOption configures a LiveFetcher.
type FetcherOption func(*LiveFetcher)

// WithFetchTimeout bounds one whole live fetch.
func WithFetchTimeout(d time.Duration) FetcherOption {
	return func(f *LiveFetcher) { f.timeout = d }
}

// WithSearchRadius sets the amenity search radius in metres.
func WithSearchRadius(m int) FetcherOption {
	return func(f *LiveFetcher) { f.radiusM = m }
}

// WithRateLimit caps geodata queries per second.
func WithRateLimit(rps float64) FetcherOption {
	return func(f *LiveFetcher) { f.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

// WithBreaker replaces the default circuit breaker.
func WithBreaker(cb *gobreaker.CircuitBreaker[model.Insights]) FetcherOption {
	return func(f *LiveFetcher) { f.breaker = cb }
}

func NewLiveFetcher(source AmenitySource, opts ...FetcherOption) *LiveFetcher {
	f := &LiveFetcher{
		source:  source,
		limiter: rate.NewLimiter(rate.Inf, 1),
		timeout: defaultLiveTimeout,
		radiusM: defaultRadiusM,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.breaker == nil {
		f.breaker = NewGeodataBreaker("overpass")
	}
	return f
}

// NewGeodataBreaker opens after five consecutive failed live fetches and
// probes again after thirty seconds.
func NewGeodataBreaker(name string) *gobreaker.CircuitBreaker[model.Insights] {
	return gobreaker.NewCircuitBreaker[model.Insights](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// A sparse area is an answer, not an outage.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errNoAmenities)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			zap.L().Warn("geodata breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

// Fetch returns live insights for (lat, lon) and true, or the fallback bundle
// and false when live data could not be obtained. Concurrent fetches for the
// same rounded coordinate share one query. The shared query is detached from
// the caller's cancellation and bounded by the fetch timeout only, so one
// caller giving up does not fail the others.
func (f *LiveFetcher) Fetch(ctx context.Context, lat, lon float64) (model.Insights, bool) {
	start := time.Now()
	key := fmt.Sprintf("%.4f,%.4f", lat, lon)

	ch := f.group.DoChan(key, func() (any, error) {
		return f.breaker.Execute(func() (model.Insights, error) {
			return f.fetch(context.WithoutCancel(ctx), lat, lon)
		})
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		res.Err = eris.Wrap(ctx.Err(), "fetcher: caller gave up")
	}
	liveFetchDuration.Observe(time.Since(start).Seconds())

	if res.Err != nil {
		liveFetches.WithLabelValues("fallback").Inc()
		zap.L().Warn("live fetch failed, using fallback",
			zap.Float64("lat", lat),
			zap.Float64("lon", lon),
			zap.Error(res.Err),
		)
		return FallbackInsights(lat, lon), false
	}

	liveFetches.WithLabelValues("success").Inc()
	return res.Val.(model.Insights), true
}

func (f *LiveFetcher) fetch(ctx context.Context, lat, lon float64) (ins model.Insights, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = eris.Errorf("fetcher: geodata source panicked: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	stats := make(map[model.AmenityCategory]model.AmenityStat, len(model.AmenityCategories))
	found := 0
	for _, category := range model.AmenityCategories {
		if err := f.limiter.Wait(ctx); err != nil {
			return model.Insights{}, eris.Wrap(err, "fetcher: rate limit wait")
		}
		elements, err := f.source.FindAmenities(ctx, lat, lon, category, f.radiusM)
		if err != nil {
			return model.Insights{}, eris.Wrapf(err, "fetcher: find %s", category)
		}
		res := NearestAndCount(lat, lon, elements)
		stat := model.AmenityStat{Count: res.Count, NearestDistanceKm: farDistanceKm}
		if res.NearestKm != nil {
			stat.NearestDistanceKm = *res.NearestKm
			found++
		}
		stats[category] = stat
	}
	if found == 0 {
		return model.Insights{}, errNoAmenities
	}

	return model.Insights{
		CrimeRatePercent: roundTo(ComputeCrimeIndex(lat, lon)*100, 2),
		Schools:          stats[model.CategorySchools],
		Hospitals:        stats[model.CategoryHospitals],
		PublicTransport:  stats[model.CategoryPublicTransport],
		Note:             "Live OpenStreetMap data",
		Source:           model.SourceLive,
	}, nil
}

// NearestDistances queries every category and returns the nearest distance
// of those that matched. Errors on a single category are skipped.
func (f *LiveFetcher) NearestDistances(ctx context.Context, lat, lon float64, radiusM int) (distances []float64) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Warn("accessibility query panicked", zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	for _, category := range model.AmenityCategories {
		if err := f.limiter.Wait(ctx); err != nil {
			break
		}
		elements, err := f.source.FindAmenities(ctx, lat, lon, category, radiusM)
		if err != nil {
			zap.L().Debug("accessibility query failed",
				zap.String("category", string(category)),
				zap.Error(err),
			)
			continue
		}
		if res := NearestAndCount(lat, lon, elements); res.NearestKm != nil {
			distances = append(distances, *res.NearestKm)
		}
	}
	return distances
}
