package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"valuation_service/internal/domain/model"
	"valuation_service/internal/domain/repository"
)

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) RecordPrediction(ctx context.Context, p model.Property, f model.FeatureVector, r *model.PredictionResult) error {
	return m.Called(ctx, p, f, r).Error(0)
}

var londonProperty = model.Property{
	Latitude: londonLat, Longitude: londonLon, Year: 2026, AreaSqft: 1000, Bedrooms: 2, Bathrooms: 1,
}

func newTestPredictionService(t *testing.T, store MetricRepository, source AmenitySource, predictor model.Predictor, recorder repository.PredictionRecorder) *PredictionService {
	t.Helper()
	var fetcher *LiveFetcher
	if source != nil {
		fetcher = NewLiveFetcher(source)
	}
	insights := NewInsightsService(store, fetcher, fixedClock(9))
	economics := NewEconomicsResolver(stubResolver{available: false})
	return NewPredictionService(insights, economics, predictor, recorder, recorder != nil, 2025)
}

func TestPredict_LondonEndToEnd(t *testing.T) {
	predictor := &stubPredictor{}
	svc := newTestPredictionService(t, newTestStore(t), nil, predictor, nil)

	res, err := svc.Predict(context.Background(), londonProperty, false)
	require.NoError(t, err)

	assert.Equal(t, "GBP", res.Currency.Code)
	assert.Equal(t, "£", res.Currency.Symbol)
	assert.Positive(t, res.CurrentPrice)
	assert.Positive(t, res.PredictedPrice)
	assert.Equal(t, 2026, res.Year)
	assert.Equal(t, model.SourceFallback, res.AreaInsights.Source)

	require.Len(t, res.PriceTrend, 9)
	assert.Equal(t, 2021, res.PriceTrend[0].Year)
	assert.Equal(t, 2029, res.PriceTrend[8].Year)
	for _, pt := range res.PriceTrend {
		if pt.Year == 2025 {
			assert.Equal(t, res.CurrentPrice, pt.Price)
		}
	}
	assert.Equal(t, res.PriceTrend[5].Price, res.PredictedPrice)

	// Target year first, then the reference year.
	require.Len(t, predictor.calls, 2)
	assert.Equal(t, float64(2026), predictor.calls[0].Year)
	assert.Equal(t, float64(2025), predictor.calls[1].Year)
	assert.Equal(t, 1000.0, predictor.calls[0].AreaSqft)
	assert.InDelta(t, 50_000_000+1000*10_000+1_000_000, res.BaseModel, 0.01)
}

func TestPredict_Idempotent(t *testing.T) {
	store := newTestStore(t)
	svc := newTestPredictionService(t, store, liveSource(), &stubPredictor{}, nil)
	ctx := context.Background()

	first, err := svc.Predict(ctx, londonProperty, true)
	require.NoError(t, err)
	before, err := store.FindNear(ctx, londonLat, londonLon, FuzzyTolerance)
	require.NoError(t, err)

	second, err := svc.Predict(ctx, londonProperty, true)
	require.NoError(t, err)
	after, err := store.FindNear(ctx, londonLat, londonLon, FuzzyTolerance)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, before.ID, after.ID)
	assert.Equal(t, before.Meta, after.Meta)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPredict_LiveModeWithFailingGeodata(t *testing.T) {
	svc := newTestPredictionService(t, newTestStore(t), failingSource(), &stubPredictor{}, nil)

	res, err := svc.Predict(context.Background(), londonProperty, true)
	require.NoError(t, err)
	assert.Equal(t, model.SourceFallback, res.AreaInsights.Source)
	assert.Positive(t, res.PredictedPrice)
}

func TestPredict_PredictorFailureIsInternalError(t *testing.T) {
	svc := newTestPredictionService(t, newTestStore(t), nil, &stubPredictor{err: errors.New("model file missing")}, nil)

	_, err := svc.Predict(context.Background(), londonProperty, false)
	require.Error(t, err)

	var appErr *model.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, model.ErrCodeInternalPrediction, appErr.Code)
	assert.Equal(t, 500, appErr.HTTPStatus())
	assert.Equal(t, "model file missing", appErr.Message)
}

func TestPredict_RecordsWhenEnabled(t *testing.T) {
	recorder := new(mockRecorder)
	recorder.On("RecordPrediction", mock.Anything, londonProperty, mock.Anything, mock.Anything).Return(nil).Once()

	svc := newTestPredictionService(t, newTestStore(t), nil, &stubPredictor{}, recorder)
	_, err := svc.Predict(context.Background(), londonProperty, false)
	require.NoError(t, err)
	recorder.AssertExpectations(t)
}

func TestPredict_RecorderFailureIsIgnored(t *testing.T) {
	recorder := new(mockRecorder)
	recorder.On("RecordPrediction", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("disk full"))

	svc := newTestPredictionService(t, newTestStore(t), nil, &stubPredictor{}, recorder)
	_, err := svc.Predict(context.Background(), londonProperty, false)
	assert.NoError(t, err)
}

func TestWarm_PopulatesCache(t *testing.T) {
	store := newTestStore(t)
	svc := newTestPredictionService(t, store, liveSource(), &stubPredictor{}, nil)
	ctx := context.Background()

	ins, err := svc.Warm(ctx, londonLat, londonLon)
	require.NoError(t, err)
	assert.Equal(t, model.SourceLive, ins.Source)

	got, err := store.FindNear(ctx, londonLat, londonLon, FuzzyTolerance)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, ins, got.Meta)
	assert.Greater(t, got.CrimeIndex, 0.01)

	// The following prediction is served from the warmed cache.
	res, err := svc.Predict(ctx, londonProperty, false)
	require.NoError(t, err)
	assert.Equal(t, model.SourceLive, res.AreaInsights.Source)
}

func TestEconomicsPassthrough(t *testing.T) {
	svc := newTestPredictionService(t, newTestStore(t), nil, &stubPredictor{}, nil)
	assert.Equal(t, "INR", svc.Economics(19.076, 72.8777).Currency.Code)
	assert.Equal(t, 2025, svc.ReferenceYear())
}
