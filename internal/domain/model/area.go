package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Insight sources.
const (
	SourceLive     = "live"
	SourceFallback = "fallback"
)

// AmenityStat holds the count of matching amenities around a point and the
// distance to the nearest one.
type AmenityStat struct {
	Count             int     `json:"count"`
	NearestDistanceKm float64 `json:"nearest_distance_km"`
}

// Insights is the meta bundle attached to an AreaMetric and returned to
// callers as area_insights.
type Insights struct {
	CrimeRatePercent float64     `json:"crime_rate_percent"`
	Schools          AmenityStat `json:"schools"`
	Hospitals        AmenityStat `json:"hospitals"`
	PublicTransport  AmenityStat `json:"public_transport"`
	Note             string      `json:"note,omitempty"`
	Source           string      `json:"source,omitempty"`
}

// IsEmpty reports whether the bundle was never computed.
func (i Insights) IsEmpty() bool {
	return i == Insights{}
}

// Value stores the bundle as JSON text. Text rather than bytes keeps lib/pq
// from encoding it as bytea.
func (i Insights) Value() (driver.Value, error) {
	if i.IsEmpty() {
		return "{}", nil
	}
	b, err := json.Marshal(i)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal insights: %w", err)
	}
	return string(b), nil
}

// Scan reads a JSON column written by Value.
func (i *Insights) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*i = Insights{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported meta type %T", src)
	}
	if len(raw) == 0 {
		*i = Insights{}
		return nil
	}
	var out Insights
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("failed to unmarshal insights: %w", err)
	}
	*i = out
	return nil
}

// AreaMetric is one cached location record.
type AreaMetric struct {
	ID                 int64     `db:"id" json:"id"`
	Latitude           float64   `db:"latitude" json:"latitude"`
	Longitude          float64   `db:"longitude" json:"longitude"`
	CrimeIndex         float64   `db:"crime_index" json:"crime_index"`
	TrafficScore       float64   `db:"traffic_score" json:"traffic_score"`
	AccessibilityScore float64   `db:"accessibility_score" json:"accessibility_score"`
	Meta               Insights  `db:"meta" json:"meta"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// Columns that Upsert may update on an existing row.
const (
	FieldCrimeIndex         = "crime_index"
	FieldTrafficScore       = "traffic_score"
	FieldAccessibilityScore = "accessibility_score"
	FieldMeta               = "meta"
)
