package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"valuation_service/internal/domain/model"
)

func fixedClock(hour int) Clock {
	return func() time.Time { return time.Date(2025, 6, 2, hour, 0, 0, 0, time.UTC) }
}

func liveSource() *mockAmenitySource {
	source := new(mockAmenitySource)
	source.On("FindAmenities", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]model.OSMElement{tagged(51.5080, -0.1280)}, nil)
	return source
}

func failingSource() *mockAmenitySource {
	source := new(mockAmenitySource)
	source.On("FindAmenities", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("overpass unreachable"))
	return source
}

func TestAreaInsights_MissNotLiveUsesFallbackWithoutStoring(t *testing.T) {
	store := newTestStore(t)
	source := liveSource()
	svc := NewInsightsService(store, NewLiveFetcher(source), fixedClock(9))
	ctx := context.Background()

	ins, err := svc.AreaInsights(ctx, londonLat, londonLon, false)
	require.NoError(t, err)
	assert.Equal(t, FallbackInsights(londonLat, londonLon), ins)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	source.AssertNotCalled(t, "FindAmenities", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAreaInsights_LiveMissStoresAndThenHits(t *testing.T) {
	store := newTestStore(t)
	source := liveSource()
	svc := NewInsightsService(store, NewLiveFetcher(source), fixedClock(9))
	ctx := context.Background()

	first, err := svc.AreaInsights(ctx, londonLat, londonLon, true)
	require.NoError(t, err)
	assert.Equal(t, model.SourceLive, first.Source)

	stored, err := store.FindNear(ctx, londonLat, londonLon, FuzzyTolerance)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, first, stored.Meta)
	assert.Equal(t, placeholderScore, stored.TrafficScore)
	assert.Equal(t, placeholderScore, stored.AccessibilityScore)
	assert.InDelta(t, first.CrimeRatePercent/100, stored.CrimeIndex, 1e-4)

	// A nearby point inside the tolerance box is answered from the cache.
	second, err := svc.AreaInsights(ctx, londonLat+0.01, londonLon-0.01, true)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	source.AssertNumberOfCalls(t, "FindAmenities", 3)
}

func TestAreaInsights_LiveFailureDegrades(t *testing.T) {
	store := newTestStore(t)
	svc := NewInsightsService(store, NewLiveFetcher(failingSource()), fixedClock(9))
	ctx := context.Background()

	ins, err := svc.AreaInsights(ctx, londonLat, londonLon, true)
	require.NoError(t, err)
	assert.False(t, ins.IsEmpty())
	assert.Equal(t, model.SourceFallback, ins.Source)
	assert.Positive(t, ins.Schools.Count)
	assert.Positive(t, ins.Hospitals.Count)
	assert.Positive(t, ins.PublicTransport.Count)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAreaInsights_StoreFailureDegrades(t *testing.T) {
	svc := NewInsightsService(failingStore{}, NewLiveFetcher(liveSource()), fixedClock(9))

	ins, err := svc.AreaInsights(context.Background(), londonLat, londonLon, true)
	require.NoError(t, err)
	assert.Equal(t, model.SourceLive, ins.Source)

	ins, err = svc.AreaInsights(context.Background(), londonLat, londonLon, false)
	require.NoError(t, err)
	assert.Equal(t, model.SourceFallback, ins.Source)
}

func TestAreaInsights_EmptyMetaIsMissAndIsFilledInPlace(t *testing.T) {
	store := newTestStore(t)
	svc := NewInsightsService(store, NewLiveFetcher(liveSource()), fixedClock(9))
	ctx := context.Background()

	seeded, err := store.Upsert(ctx, model.AreaMetric{Latitude: 51.51, Longitude: -0.13, TrafficScore: 0.7}, model.FieldTrafficScore)
	require.NoError(t, err)

	ins, err := svc.AreaInsights(ctx, londonLat, londonLon, true)
	require.NoError(t, err)
	assert.Equal(t, model.SourceLive, ins.Source)

	got, err := store.FindNear(ctx, londonLat, londonLon, FuzzyTolerance)
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, got.ID)
	assert.Equal(t, ins, got.Meta)
	assert.Equal(t, 0.7, got.TrafficScore)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCrimeIndex_ComputesStoresAndReuses(t *testing.T) {
	store := newTestStore(t)
	svc := NewInsightsService(store, nil, fixedClock(9))
	ctx := context.Background()

	want := ComputeCrimeIndex(londonLat, londonLon)
	assert.Equal(t, want, svc.CrimeIndex(ctx, londonLat, londonLon))

	got, err := store.FindNear(ctx, londonLat, londonLon, FuzzyTolerance)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, got.CrimeIndex)

	// Inside the box, the stored value wins over a fresh computation.
	assert.Equal(t, want, svc.CrimeIndex(ctx, londonLat+0.012, londonLon))
}

func TestCrimeIndex_RecomputesUnsetValue(t *testing.T) {
	store := newTestStore(t)
	svc := NewInsightsService(store, nil, fixedClock(9))
	ctx := context.Background()

	_, err := store.Upsert(ctx, model.AreaMetric{Latitude: londonLat, Longitude: londonLon, CrimeIndex: 0.005})
	require.NoError(t, err)

	assert.Equal(t, ComputeCrimeIndex(londonLat, londonLon), svc.CrimeIndex(ctx, londonLat, londonLon))
}

func TestTrafficScore_UsesClockAndCaches(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	peak := NewInsightsService(store, nil, fixedClock(9))
	score := peak.TrafficScore(ctx, londonLat, londonLon)
	assert.Equal(t, ComputeTrafficScore(londonLat, londonLon, fixedClock(9)()), score)

	// A later call at night still sees the cached peak score.
	night := NewInsightsService(store, nil, fixedClock(2))
	assert.Equal(t, score, night.TrafficScore(ctx, londonLat, londonLon))
}

func TestAccessibilityScore_NotLiveDerivesFromFallback(t *testing.T) {
	store := newTestStore(t)
	svc := NewInsightsService(store, NewLiveFetcher(liveSource()), fixedClock(9))
	ctx := context.Background()

	fb := FallbackInsights(londonLat, londonLon)
	want := AccessibilityFromDistances([]float64{
		fb.Schools.NearestDistanceKm, fb.Hospitals.NearestDistanceKm, fb.PublicTransport.NearestDistanceKm,
	})
	assert.Equal(t, want, svc.AccessibilityScore(ctx, londonLat, londonLon, false))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAccessibilityScore_LiveMeasuresAndStores(t *testing.T) {
	store := newTestStore(t)
	svc := NewInsightsService(store, NewLiveFetcher(liveSource()), fixedClock(9))
	ctx := context.Background()

	score := svc.AccessibilityScore(ctx, londonLat, londonLon, true)
	assert.Equal(t, 1.0, score)

	got, err := store.FindNear(ctx, londonLat, londonLon, FuzzyTolerance)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1.0, got.AccessibilityScore)
}

func TestBuildFeatures(t *testing.T) {
	svc := NewInsightsService(newTestStore(t), nil, fixedClock(12))
	p := model.Property{Latitude: londonLat, Longitude: londonLon, Year: 2026, AreaSqft: 1000, Bedrooms: 2, Bathrooms: 1}

	f := svc.BuildFeatures(context.Background(), p, 2026, false)
	assert.Equal(t, []float64{
		1000, 2, 1,
		ComputeCrimeIndex(londonLat, londonLon),
		ComputeTrafficScore(londonLat, londonLon, fixedClock(12)()),
		f.Accessibility,
		2026,
	}, f.Slice())
	assert.Equal(t, float64(2025), f.WithYear(2025).Year)
}
