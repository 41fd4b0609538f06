package core

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"valuation_service/internal/domain/model"
	"valuation_service/internal/domain/repository"
)

func newTestStore(t *testing.T) *repository.MetricStore {
	t.Helper()
	ctx := context.Background()
	db, err := repository.Open(ctx, repository.DriverSQLite, filepath.Join(t.TempDir(), "core.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() }) //nolint:errcheck
	require.NoError(t, repository.EnsureSchema(ctx, db))
	return repository.NewMetricStore(db)
}

// --- Mock AmenitySource ---

type mockAmenitySource struct {
	mock.Mock
}

func (m *mockAmenitySource) FindAmenities(ctx context.Context, lat, lon float64, category model.AmenityCategory, radiusM int) ([]model.OSMElement, error) {
	args := m.Called(ctx, lat, lon, category, radiusM)
	if els := args.Get(0); els != nil {
		return els.([]model.OSMElement), args.Error(1)
	}
	return nil, args.Error(1)
}

// --- Stubs ---

type failingStore struct{}

func (failingStore) FindNear(context.Context, float64, float64, float64) (*model.AreaMetric, error) {
	return nil, errors.New("connection refused")
}

func (failingStore) Upsert(context.Context, model.AreaMetric, ...string) (*model.AreaMetric, error) {
	return nil, errors.New("connection refused")
}

type panickingSource struct{}

func (panickingSource) FindAmenities(context.Context, float64, float64, model.AmenityCategory, int) ([]model.OSMElement, error) {
	panic("geodata client exploded")
}

type stubResolver struct {
	available bool
	code      string
	ok        bool
}

func (r stubResolver) Available() bool { return r.available }

func (r stubResolver) Resolve(float64, float64) (string, bool) { return r.code, r.ok }

type panickingResolver struct{}

func (panickingResolver) Available() bool { return true }

func (panickingResolver) Resolve(float64, float64) (string, bool) { panic("index corrupted") }

// stubPredictor returns a linear function of the features.
type stubPredictor struct {
	err   error
	calls []model.FeatureVector
}

func (p *stubPredictor) Predict(_ context.Context, f model.FeatureVector) (float64, error) {
	p.calls = append(p.calls, f)
	if p.err != nil {
		return 0, p.err
	}
	return 50_000_000 + f.AreaSqft*10_000 + (f.Year-2025)*1_000_000, nil
}

func tagged(lat, lon float64) model.OSMElement {
	return model.OSMElement{Lat: lat, Lon: lon, Tags: map[string]string{"amenity": "school"}}
}
