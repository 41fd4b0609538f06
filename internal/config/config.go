// Package config loads process configuration from the environment.
package config

import "time"

// Config holds the full application configuration. Every field is read from
// the environment variable named in its envconfig tag.
type Config struct {
	AppEnv string `envconfig:"APP_ENV" default:"local" validate:"oneof=local dev prod"`
	Port   int    `envconfig:"PORT" default:"8080" validate:"gt=0,lte=65535"`

	Log LogConfig `envconfig:"LOG"`

	StoreDriver string `envconfig:"STORE_DRIVER" default:"sqlite" validate:"oneof=postgres sqlite"`
	DatabaseURL string `envconfig:"DATABASE_URL" default:"file:valuation.db?_pragma=busy_timeout(5000)" validate:"required"`

	OverpassURL       string        `envconfig:"OVERPASS_URL" default:"https://overpass-api.de/api/interpreter" validate:"required,url"`
	LiveFetchTimeout  time.Duration `envconfig:"LIVE_FETCH_TIMEOUT" default:"25s" validate:"gt=0"`
	LiveSearchRadiusM int           `envconfig:"LIVE_SEARCH_RADIUS_M" default:"2000" validate:"gt=0"`
	OverpassRPS       float64       `envconfig:"OVERPASS_RPS" default:"1" validate:"gt=0"`
	PredictLiveMode   bool          `envconfig:"PREDICT_LIVE_MODE" default:"false"`

	ReferenceYear int `envconfig:"REFERENCE_YEAR" default:"2025" validate:"gte=1900,lte=2200"`

	Predictor          string        `envconfig:"PREDICTOR" default:"linear" validate:"oneof=linear http"`
	ModelPath          string        `envconfig:"MODEL_PATH" default:"model/price_model.json"`
	MLServiceURL       string        `envconfig:"ML_SERVICE_URL" validate:"required_if=Predictor http"`
	RedisURL           string        `envconfig:"REDIS_URL"`
	PredictionCacheTTL time.Duration `envconfig:"PREDICTION_CACHE_TTL" default:"24h"`

	GeocoderEnabled        bool `envconfig:"GEOCODER_ENABLED" default:"true"`
	EconomicsMicroVariance bool `envconfig:"ECONOMICS_MICRO_VARIANCE" default:"false"`
	RecordPredictions      bool `envconfig:"RECORD_PREDICTIONS" default:"false"`

	CORSAllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	RequestTimeout     time.Duration `envconfig:"REQUEST_TIMEOUT" default:"60s" validate:"gt=0"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `envconfig:"LEVEL" default:"info"`
	Format string `envconfig:"FORMAT" default:"json" validate:"oneof=json console"`
}

// ConfigErrorType categorizes configuration errors for diagnostic purposes.
type ConfigErrorType string

const (
	// ErrMissingEnv indicates a required environment variable was not found.
	ErrMissingEnv ConfigErrorType = "MISSING_ENV"
	// ErrValidation indicates the configuration failed struct validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates an environment value could not be parsed into its
	// target type.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)
