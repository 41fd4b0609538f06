package model

// PredictionRequest is the body of a price prediction. Fields are pointers so
// that a missing field can be told apart from a zero value.
type PredictionRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,latitude"`
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
	Year      *int     `json:"year" validate:"required,gte=1900,lte=2200"`
	AreaSqft  *float64 `json:"area_sqft" validate:"required,gt=0"`
	Bedrooms  *int     `json:"bedrooms" validate:"required,gte=0"`
	Bathrooms *int     `json:"bathrooms" validate:"required,gte=0"`
}

// Property is a validated PredictionRequest.
type Property struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Year      int     `json:"year"`
	AreaSqft  float64 `json:"area_sqft"`
	Bedrooms  int     `json:"bedrooms"`
	Bathrooms int     `json:"bathrooms"`
}

// Property dereferences the request. Call only after validation.
func (r PredictionRequest) Property() Property {
	return Property{
		Latitude:  *r.Latitude,
		Longitude: *r.Longitude,
		Year:      *r.Year,
		AreaSqft:  *r.AreaSqft,
		Bedrooms:  *r.Bedrooms,
		Bathrooms: *r.Bathrooms,
	}
}

type TrendPoint struct {
	Year  int     `json:"year"`
	Price float64 `json:"price"`
}

// PriceAdjustment is the output of the price adjustment pipeline.
type PriceAdjustment struct {
	CurrentPrice      float64      `json:"current_price"`
	FuturePrice       float64      `json:"future_price"`
	Trend             []TrendPoint `json:"price_trend"`
	Growth            float64      `json:"growth"`
	QualityMultiplier float64      `json:"quality_multiplier"`
}

type PredictionResult struct {
	PredictedPrice float64      `json:"predicted_price"`
	CurrentPrice   float64      `json:"current_price"`
	Currency       Currency     `json:"currency"`
	AreaInsights   Insights     `json:"area_insights"`
	Year           int          `json:"year"`
	PriceTrend     []TrendPoint `json:"price_trend"`
	BaseModel      float64      `json:"base_model"`
}
