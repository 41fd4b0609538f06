package core

import (
	"math"

	"valuation_service/internal/domain/model"
)

const (
	maxGrowth = 1.12

	// trendHalfWindow years either side of the reference year.
	trendHalfWindow = 4
)

// PriceInputs is everything the price adjustment needs. RawReference and
// RawTarget are base model outputs for the reference and target years. The
// future price compounds from the reference figure, so RawTarget is only
// reported, never priced.
type PriceInputs struct {
	RawReference  float64
	RawTarget     float64
	ReferenceYear int
	TargetYear    int
	Profile       model.EconomicsProfile
	Insights      model.Insights
}

func infrastructureBonus(ins model.Insights) float64 {
	return float64(ins.Schools.Count)*0.005 + float64(ins.Hospitals.Count)*0.01
}

func crimePenalty(ins model.Insights) float64 {
	return ins.CrimeRatePercent / 100 * 1.5
}

// QualityMultiplier scales price by local infrastructure against crime.
func QualityMultiplier(ins model.Insights) float64 {
	return clamp(1+infrastructureBonus(ins)-crimePenalty(ins), 0.5, 1.5)
}

// GrowthModifier nudges the market growth rate by at most ±5%.
func GrowthModifier(ins model.Insights) float64 {
	return clamp(1+0.1*infrastructureBonus(ins)-0.1*crimePenalty(ins), 0.95, 1.05)
}

// FinalGrowth is the yearly growth applied to a location, capped at 12%.
func FinalGrowth(p model.EconomicsProfile, ins model.Insights) float64 {
	return math.Min(p.Growth*GrowthModifier(ins), maxGrowth)
}

// AdjustPrice turns raw model output into local currency prices and a trend
// over the nine years centred on the reference year. Years after the
// reference compound forward; earlier years hold the current price.
func AdjustPrice(in PriceInputs) model.PriceAdjustment {
	quality := QualityMultiplier(in.Insights)
	growth := FinalGrowth(in.Profile, in.Insights)

	current := in.RawReference * in.Profile.Multiplier * quality
	years := in.TargetYear - in.ReferenceYear
	if years < 0 {
		years = 0
	}
	future := current * math.Pow(growth, float64(years))

	trend := make([]model.TrendPoint, 0, 2*trendHalfWindow+1)
	for y := in.ReferenceYear - trendHalfWindow; y <= in.ReferenceYear+trendHalfWindow; y++ {
		price := current
		if diff := y - in.ReferenceYear; diff > 0 {
			price = current * math.Pow(growth, float64(diff))
		}
		trend = append(trend, model.TrendPoint{Year: y, Price: roundTo(price, 2)})
	}

	return model.PriceAdjustment{
		CurrentPrice:      roundTo(current, 2),
		FuturePrice:       roundTo(future, 2),
		Trend:             trend,
		Growth:            growth,
		QualityMultiplier: quality,
	}
}
