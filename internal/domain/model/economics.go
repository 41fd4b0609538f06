package model

// Economics profile sources.
const (
	EconomicsFromHub     = "hub"
	EconomicsFromCountry = "country"
	EconomicsFromRegion  = "region"
	EconomicsFromDefault = "default"
)

type Currency struct {
	Symbol string `json:"symbol"`
	Code   string `json:"code"`
}

// EconomicsProfile converts raw model output into a local currency price and
// carries the yearly growth rate of the market.
type EconomicsProfile struct {
	Currency   Currency `json:"currency"`
	Multiplier float64  `json:"mult"`
	Growth     float64  `json:"growth"`
	Source     string   `json:"source,omitempty"`
	Region     string   `json:"region,omitempty"`
}
