package core

import (
	"context"

	"go.uber.org/zap"

	"valuation_service/internal/domain/model"
	"valuation_service/internal/domain/repository"
)

// DefaultReferenceYear is the year current prices are quoted for.
const DefaultReferenceYear = 2025

type PredictionService struct {
	insights      *InsightsService
	economics     *EconomicsResolver
	predictor     model.Predictor
	recorder      repository.PredictionRecorder
	saveData      bool
	referenceYear int
}

func NewPredictionService(
	insights *InsightsService,
	economics *EconomicsResolver,
	predictor model.Predictor,
	recorder repository.PredictionRecorder,
	saveData bool,
	referenceYear int,
) *PredictionService {
	if referenceYear == 0 {
		referenceYear = DefaultReferenceYear
	}
	return &PredictionService{
		insights:      insights,
		economics:     economics,
		predictor:     predictor,
		recorder:      recorder,
		saveData:      saveData,
		referenceYear: referenceYear,
	}
}

func (s *PredictionService) ReferenceYear() int {
	return s.referenceYear
}

// Predict prices a property in the local currency of its location. live
// allows the slow geodata path on a cache miss.
func (s *PredictionService) Predict(ctx context.Context, p model.Property, live bool) (*model.PredictionResult, error) {
	ins, err := s.insights.AreaInsights(ctx, p.Latitude, p.Longitude, live)
	if err != nil {
		return nil, model.NewAppError(model.ErrCodeInternalUnexpected, err.Error(), err)
	}

	profile := s.economics.Resolve(p.Latitude, p.Longitude)
	features := s.insights.BuildFeatures(ctx, p, p.Year, live)

	rawTarget, err := s.predictor.Predict(ctx, features)
	if err != nil {
		return nil, model.NewAppError(model.ErrCodeInternalPrediction, err.Error(), err)
	}
	rawReference, err := s.predictor.Predict(ctx, features.WithYear(s.referenceYear))
	if err != nil {
		return nil, model.NewAppError(model.ErrCodeInternalPrediction, err.Error(), err)
	}

	adj := AdjustPrice(PriceInputs{
		RawReference:  rawReference,
		RawTarget:     rawTarget,
		ReferenceYear: s.referenceYear,
		TargetYear:    p.Year,
		Profile:       profile,
		Insights:      ins,
	})

	result := &model.PredictionResult{
		PredictedPrice: adj.FuturePrice,
		CurrentPrice:   adj.CurrentPrice,
		Currency:       profile.Currency,
		AreaInsights:   ins,
		Year:           p.Year,
		PriceTrend:     adj.Trend,
		BaseModel:      roundTo(rawTarget, 2),
	}
	predictionsServed.WithLabelValues(profile.Currency.Code).Inc()

	zap.L().Info("prediction served",
		zap.Float64("lat", p.Latitude),
		zap.Float64("lon", p.Longitude),
		zap.Int("year", p.Year),
		zap.String("currency", profile.Currency.Code),
		zap.String("economics_source", profile.Source),
		zap.String("insights_source", ins.Source),
		zap.Float64("quality", adj.QualityMultiplier),
		zap.Float64("growth", adj.Growth),
		zap.Float64("predicted_price", result.PredictedPrice),
	)

	if s.saveData && s.recorder != nil {
		if err := s.recorder.RecordPrediction(ctx, p, features, result); err != nil {
			zap.L().Warn("failed to record prediction", zap.Error(err))
		}
	}

	return result, nil
}

// Warm runs every enrichment step in live mode so that a following
// prediction for a nearby point is answered from the cache.
func (s *PredictionService) Warm(ctx context.Context, lat, lon float64) (model.Insights, error) {
	ins, err := s.insights.AreaInsights(ctx, lat, lon, true)
	if err != nil {
		return ins, model.NewAppError(model.ErrCodeInternalUnexpected, err.Error(), err)
	}
	s.insights.CrimeIndex(ctx, lat, lon)
	s.insights.TrafficScore(ctx, lat, lon)
	s.insights.AccessibilityScore(ctx, lat, lon, true)
	return ins, nil
}

// Economics exposes the resolved profile of a coordinate.
func (s *PredictionService) Economics(lat, lon float64) model.EconomicsProfile {
	return s.economics.Resolve(lat, lon)
}
