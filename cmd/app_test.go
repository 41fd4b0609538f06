package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valuation_service/internal/config"
	"valuation_service/internal/domain/model"
	"valuation_service/internal/domain/repository"
)

func writeModelFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "price_model.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"version": "linear-test",
		"coefficients": [10000, 0, 0, 0, 0, 0, 0],
		"intercept": 50000000
	}`), 0o644))
	return path
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	return &config.Config{
		AppEnv:             "local",
		StoreDriver:        repository.DriverSQLite,
		DatabaseURL:        "file:" + filepath.Join(dir, "valuation.db"),
		OverpassURL:        "http://127.0.0.1:1/api/interpreter",
		LiveFetchTimeout:   time.Second,
		LiveSearchRadiusM:  2000,
		OverpassRPS:        1,
		ReferenceYear:      2025,
		Predictor:          "linear",
		ModelPath:          writeModelFile(t),
		PredictionCacheTTL: time.Hour,
		RecordPredictions:  true,
	}
}

func TestInitApp_PredictsInLocalCurrency(t *testing.T) {
	ctx := context.Background()
	env, err := initApp(ctx, testConfig(t))
	require.NoError(t, err)
	defer env.Close()

	p := model.Property{Latitude: 51.5074, Longitude: -0.1278, Year: 2030, AreaSqft: 1000, Bedrooms: 2, Bathrooms: 1}
	result, err := env.Service.Predict(ctx, p, false)
	require.NoError(t, err)

	assert.Equal(t, "GBP", result.Currency.Code)
	assert.Equal(t, 2030, result.Year)
	assert.Len(t, result.PriceTrend, 9)
	assert.Equal(t, 60000000.0, result.BaseModel)
	assert.Greater(t, result.PredictedPrice, result.CurrentPrice)
	assert.Equal(t, "linear-test", env.ModelVersion())

	metrics, err := env.Store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, metrics)

	logged, err := repository.NewSQLPredictionRecorder(env.DB).CountPredictions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, logged)
}

func TestInitApp_UnsupportedDriver(t *testing.T) {
	c := testConfig(t)
	c.StoreDriver = "mysql"
	_, err := initApp(context.Background(), c)
	assert.Error(t, err)
}

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("GEOCODER_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("DATABASE_URL", "file:"+filepath.Join(t.TempDir(), "cli.db"))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestEconomicsCommand(t *testing.T) {
	out := runCLI(t, "economics", "--lat", "51.5074", "--lon", "-0.1278")

	var profile model.EconomicsProfile
	require.NoError(t, json.Unmarshal([]byte(out), &profile))
	assert.Equal(t, "GBP", profile.Currency.Code)
	assert.Equal(t, model.EconomicsFromHub, profile.Source)
	assert.Equal(t, 0.014, profile.Multiplier)
}

func TestMigrateCommand(t *testing.T) {
	runCLI(t, "migrate")
}

func TestEstimateCommand(t *testing.T) {
	t.Setenv("MODEL_PATH", writeModelFile(t))
	out := runCLI(t, "estimate", "--lat", "19.076", "--lon", "72.8777", "--area", "800", "--bedrooms", "2", "--bathrooms", "2")

	var result model.PredictionResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "INR", result.Currency.Code)
	assert.Equal(t, 2025, result.Year)
	assert.Equal(t, result.CurrentPrice, result.PredictedPrice)
}
