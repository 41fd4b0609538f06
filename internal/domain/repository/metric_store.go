package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rotisserie/eris"

	"valuation_service/internal/domain/model"
)

// boxEpsilon absorbs float error so that points exactly on the tolerance
// boundary still match.
const boxEpsilon = 1e-9

// CoordinatePrecision is the number of decimals a stored key is rounded to.
const CoordinatePrecision = 4

var updatableFields = map[string]bool{
	model.FieldCrimeIndex:         true,
	model.FieldTrafficScore:       true,
	model.FieldAccessibilityScore: true,
	model.FieldMeta:               true,
}

// MetricStore persists AreaMetric rows and answers fuzzy location lookups.
type MetricStore struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewMetricStore(db *sqlx.DB) *MetricStore {
	return &MetricStore{db: db, now: time.Now}
}

// FindNear returns the first record whose coordinates lie within tolerance
// degrees of (lat, lon) on both axes. It returns nil, nil on a miss.
func (s *MetricStore) FindNear(ctx context.Context, lat, lon, tolerance float64) (*model.AreaMetric, error) {
	tol := tolerance + boxEpsilon
	query := s.db.Rebind(`
		SELECT id, latitude, longitude, crime_index, traffic_score, accessibility_score, meta, updated_at
		FROM area_metrics
		WHERE latitude BETWEEN ? AND ?
		AND longitude BETWEEN ? AND ?
		ORDER BY id
		LIMIT 1`)

	var metric model.AreaMetric
	err := s.db.GetContext(ctx, &metric, query, lat-tol, lat+tol, lon-tol, lon+tol)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "store: find near")
	}
	return &metric, nil
}

// Upsert stores metric at its coordinates rounded to CoordinatePrecision.
// A new row takes every column from metric. An existing row at the same key
// is updated in place, and only the named fields change.
func (s *MetricStore) Upsert(ctx context.Context, metric model.AreaMetric, fields ...string) (*model.AreaMetric, error) {
	if len(fields) == 0 {
		fields = []string{model.FieldCrimeIndex, model.FieldTrafficScore, model.FieldAccessibilityScore, model.FieldMeta}
	}
	sets := make([]string, 0, len(fields)+1)
	for _, f := range fields {
		if !updatableFields[f] {
			return nil, eris.Errorf("store: field %q cannot be updated", f)
		}
		sets = append(sets, fmt.Sprintf("%s = excluded.%s", f, f))
	}
	sets = append(sets, "updated_at = excluded.updated_at")

	metric.Latitude = RoundCoordinate(metric.Latitude)
	metric.Longitude = RoundCoordinate(metric.Longitude)
	metric.UpdatedAt = s.now().UTC()

	query := s.db.Rebind(`
		INSERT INTO area_metrics (latitude, longitude, crime_index, traffic_score, accessibility_score, meta, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (latitude, longitude) DO UPDATE SET ` + strings.Join(sets, ", ") + `
		RETURNING id, latitude, longitude, crime_index, traffic_score, accessibility_score, meta, updated_at`)

	var stored model.AreaMetric
	err := s.db.GetContext(ctx, &stored, query,
		metric.Latitude, metric.Longitude,
		metric.CrimeIndex, metric.TrafficScore, metric.AccessibilityScore,
		metric.Meta, metric.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "store: upsert area metric")
	}
	return &stored, nil
}

// Count returns the number of stored records.
func (s *MetricStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM area_metrics`); err != nil {
		return 0, eris.Wrap(err, "store: count area metrics")
	}
	return n, nil
}

func (s *MetricStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *MetricStore) Close() error {
	return s.db.Close()
}

// RoundCoordinate rounds a coordinate to the stored key precision.
func RoundCoordinate(v float64) float64 {
	p := math.Pow(10, CoordinatePrecision)
	return math.Round(v*p) / p
}
