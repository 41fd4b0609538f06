package core

import "valuation_service/internal/domain/model"

// hubRadiusKm is how close a point must be to a hub to take its profile.
const hubRadiusKm = 50.0

type marketHub struct {
	name    string
	lat     float64
	lon     float64
	profile model.EconomicsProfile
}

type regionBox struct {
	name           string
	minLat, maxLat float64
	minLon, maxLon float64
	profile        model.EconomicsProfile
}

func profile(symbol, code string, mult, growth float64) model.EconomicsProfile {
	return model.EconomicsProfile{
		Currency:   model.Currency{Symbol: symbol, Code: code},
		Multiplier: mult,
		Growth:     growth,
	}
}

var (
	usdDefault = profile("$", "USD", 0.013, 1.04)
	eurDefault = profile("€", "EUR", 0.012, 1.03)
)

// Metro areas whose prices diverge from their country average.
var marketHubs = []marketHub{
	{name: "Mumbai", lat: 19.0760, lon: 72.8777, profile: profile("₹", "INR", 0.45, 1.08)},
	{name: "Bangalore", lat: 12.9716, lon: 77.5946, profile: profile("₹", "INR", 0.30, 1.09)},
	{name: "Delhi", lat: 28.6139, lon: 77.2090, profile: profile("₹", "INR", 0.35, 1.07)},
	{name: "Hyderabad", lat: 17.3850, lon: 78.4867, profile: profile("₹", "INR", 0.28, 1.08)},
	{name: "London", lat: 51.5074, lon: -0.1278, profile: profile("£", "GBP", 0.014, 1.03)},
	{name: "New York", lat: 40.7128, lon: -74.0060, profile: profile("$", "USD", 0.022, 1.04)},
	{name: "San Francisco", lat: 37.7749, lon: -122.4194, profile: profile("$", "USD", 0.020, 1.04)},
	{name: "Dubai", lat: 25.2048, lon: 55.2708, profile: profile("dh", "AED", 0.07, 1.06)},
	{name: "Singapore", lat: 1.3521, lon: 103.8198, profile: profile("S$", "SGD", 0.022, 1.03)},
}

// countryProfiles is keyed by ISO 3166-1 alpha-2 code.
var countryProfiles = map[string]model.EconomicsProfile{
	// North America
	"US": usdDefault,
	"CA": profile("C$", "CAD", 0.018, 1.04),
	"MX": profile("$", "MXN", 0.25, 1.06),

	// Europe
	"GB": profile("£", "GBP", 0.010, 1.03),
	"CH": profile("CHF", "CHF", 0.012, 1.02),
	"NO": profile("kr", "NOK", 0.12, 1.03),
	"SE": profile("kr", "SEK", 0.12, 1.03),
	"DK": profile("kr", "DKK", 0.09, 1.03),
	"RU": profile("₽", "RUB", 1.0, 1.05),
	"DE": profile("€", "EUR", 0.011, 1.03),
	"FR": profile("€", "EUR", 0.011, 1.03),
	"IT": profile("€", "EUR", 0.012, 1.02),
	"ES": profile("€", "EUR", 0.013, 1.03),
	"NL": profile("€", "EUR", 0.011, 1.03),
	"IE": profile("€", "EUR", 0.011, 1.04),

	// Asia Pacific
	"IN": profile("₹", "INR", 0.25, 1.06),
	"JP": profile("¥", "JPY", 1.50, 1.01),
	"CN": profile("¥", "CNY", 0.10, 1.05),
	"KR": profile("₩", "KRW", 15.0, 1.03),
	"SG": profile("S$", "SGD", 0.018, 1.03),
	"HK": profile("HK$", "HKD", 0.10, 1.02),
	"AU": profile("A$", "AUD", 0.016, 1.05),
	"NZ": profile("NZ$", "NZD", 0.017, 1.04),
	"ID": profile("Rp", "IDR", 200.0, 1.06),
	"TH": profile("฿", "THB", 0.45, 1.05),
	"VN": profile("₫", "VND", 300.0, 1.07),

	// Middle East
	"AE": profile("dh", "AED", 0.05, 1.05),
	"SA": profile("﷼", "SAR", 0.05, 1.05),
	"TR": profile("₺", "TRY", 0.40, 1.08),
	"IL": profile("₪", "ILS", 0.05, 1.04),

	// Africa
	"ZA": profile("R", "ZAR", 0.20, 1.05),
	"EG": profile("E£", "EGP", 0.40, 1.07),
	"NG": profile("₦", "NGN", 10.0, 1.08),
	"KE": profile("KSh", "KES", 1.50, 1.06),

	// South America
	"BR": profile("R$", "BRL", 0.07, 1.05),
	"AR": profile("$", "ARS", 10.0, 1.10),
	"CO": profile("$", "COP", 50.0, 1.05),
	"CL": profile("$", "CLP", 12.0, 1.04),
}

// regionBoxes are checked in order; the UK box sits inside the Europe box
// and must come first.
var regionBoxes = []regionBox{
	{name: "United Kingdom", minLat: 49, maxLat: 61, minLon: -8, maxLon: 2, profile: countryProfiles["GB"]},
	{name: "Europe", minLat: 35, maxLat: 72, minLon: -12, maxLon: 45, profile: eurDefault},
	{name: "India", minLat: 6, maxLat: 37, minLon: 68, maxLon: 97, profile: countryProfiles["IN"]},
	{name: "Australia", minLat: -45, maxLat: -10, minLon: 110, maxLon: 155, profile: countryProfiles["AU"]},
	{name: "New Zealand", minLat: -48, maxLat: -33, minLon: 165, maxLon: 180, profile: countryProfiles["NZ"]},
	{name: "Canada", minLat: 49, maxLat: 83, minLon: -141, maxLon: -52, profile: countryProfiles["CA"]},
}

func (b regionBox) contains(lat, lon float64) bool {
	return lat >= b.minLat && lat <= b.maxLat && lon >= b.minLon && lon <= b.maxLon
}
