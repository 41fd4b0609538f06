package main

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"valuation_service/internal/api"
	"valuation_service/internal/config"
	"valuation_service/internal/core"
	"valuation_service/internal/domain/model"
	"valuation_service/internal/domain/repository"
	"valuation_service/internal/infrastructure/geocoder"
	"valuation_service/internal/infrastructure/mlclient"
)

// appEnv holds the wired service and the resources it owns.
type appEnv struct {
	DB           *sqlx.DB
	Store        *repository.MetricStore
	Service      *core.PredictionService
	ModelVersion func() string

	redis *redis.Client
}

func (e *appEnv) Close() {
	if e.redis != nil {
		_ = e.redis.Close()
	}
	if e.DB != nil {
		_ = e.DB.Close()
	}
}

func initStore(ctx context.Context, c *config.Config) (*sqlx.DB, error) {
	db, err := repository.Open(ctx, c.StoreDriver, c.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := repository.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return db, nil
}

func initCountryResolver(c *config.Config) core.CountryResolver {
	if !c.GeocoderEnabled {
		zap.L().Debug("GEOCODER_ENABLED=false, skipping country lookup")
		return geocoder.StaticResolver{}
	}
	return geocoder.NewOfflineResolver()
}

// initPredictor builds the base model and the version reported to clients.
func initPredictor(ctx context.Context, c *config.Config) (model.Predictor, func() string, *redis.Client) {
	var base model.Predictor
	version := func() string { return api.DefaultModelVersion }
	switch c.Predictor {
	case "http":
		base = mlclient.NewHTTPPredictor(c.MLServiceURL)
		zap.L().Info("using remote model service", zap.String("url", c.MLServiceURL))
	default:
		linear := mlclient.NewLinearModel(c.ModelPath)
		base = linear
		version = linear.Version
		zap.L().Info("using linear model", zap.String("path", c.ModelPath))
	}

	client := mlclient.NewRedisClient(ctx, c.RedisURL)
	if client != nil {
		zap.L().Info("prediction cache enabled", zap.Duration("ttl", c.PredictionCacheTTL))
	}
	return mlclient.NewCachedPredictor(base, client, c.PredictionCacheTTL, c.Predictor), version, client
}

func initApp(ctx context.Context, c *config.Config) (*appEnv, error) {
	db, err := initStore(ctx, c)
	if err != nil {
		return nil, err
	}

	store := repository.NewMetricStore(db)
	overpassRepo := repository.NewOverpassRepository(c.OverpassURL, c.LiveFetchTimeout)
	fetcher := core.NewLiveFetcher(overpassRepo,
		core.WithFetchTimeout(c.LiveFetchTimeout),
		core.WithSearchRadius(c.LiveSearchRadiusM),
		core.WithRateLimit(c.OverpassRPS),
		core.WithBreaker(core.NewGeodataBreaker("overpass")),
	)
	insights := core.NewInsightsService(store, fetcher, nil)
	economics := core.NewEconomicsResolver(initCountryResolver(c),
		core.WithMicroVariance(c.EconomicsMicroVariance),
	)
	predictor, version, redisClient := initPredictor(ctx, c)

	var recorder repository.PredictionRecorder
	if c.RecordPredictions {
		recorder = repository.NewSQLPredictionRecorder(db)
	}

	svc := core.NewPredictionService(insights, economics, predictor, recorder, c.RecordPredictions, c.ReferenceYear)

	return &appEnv{
		DB:           db,
		Store:        store,
		Service:      svc,
		ModelVersion: version,
		redis:        redisClient,
	}, nil
}
