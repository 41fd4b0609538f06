package model

import "context"

// FeatureColumns is the column order the base model was trained with.
var FeatureColumns = []string{
	"area_sqft", "bedrooms", "bathrooms", "crime", "traffic", "accessibility", "year",
}

// FeatureVector is one row of base model input.
type FeatureVector struct {
	AreaSqft      float64 `json:"area_sqft"`
	Bedrooms      float64 `json:"bedrooms"`
	Bathrooms     float64 `json:"bathrooms"`
	Crime         float64 `json:"crime"`
	Traffic       float64 `json:"traffic"`
	Accessibility float64 `json:"accessibility"`
	Year          float64 `json:"year"`
}

// Slice returns the vector in FeatureColumns order.
func (f FeatureVector) Slice() []float64 {
	return []float64{f.AreaSqft, f.Bedrooms, f.Bathrooms, f.Crime, f.Traffic, f.Accessibility, f.Year}
}

// WithYear returns a copy of the vector for another year.
func (f FeatureVector) WithYear(year int) FeatureVector {
	f.Year = float64(year)
	return f
}

// Predictor is the base numeric price model.
type Predictor interface {
	Predict(ctx context.Context, features FeatureVector) (float64, error)
}
