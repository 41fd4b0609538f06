package geocoder

import (
	"testing"

	"github.com/sams96/rgeo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valuation_service/internal/core"
	"valuation_service/internal/domain/model"
)

func TestOfflineResolver_Resolve(t *testing.T) {
	r := NewOfflineResolver()
	require.True(t, r.Available())

	tests := []struct {
		name     string
		lat, lon float64
		want     string
		ok       bool
	}{
		{"paris", 48.8566, 2.3522, "FR", true},
		{"oslo", 59.9139, 10.7522, "NO", true},
		{"berlin", 52.52, 13.405, "DE", true},
		{"madrid", 40.4168, -3.7038, "ES", true},
		{"central india", 23.2599, 77.4126, "IN", true},
		{"mid atlantic", 30.0, -40.0, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := r.Resolve(tt.lat, tt.lon)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestOfflineResolver_ZeroValueUnavailable(t *testing.T) {
	var r *OfflineResolver
	assert.False(t, r.Available())
	code, ok := r.Resolve(48.8566, 2.3522)
	assert.False(t, ok)
	assert.Empty(t, code)

	assert.False(t, (&OfflineResolver{}).Available())
}

func TestStaticResolver(t *testing.T) {
	assert.False(t, StaticResolver{}.Available())
	_, ok := StaticResolver{}.Resolve(0, 0)
	assert.False(t, ok)

	code, ok := StaticResolver{Code: "DE"}.Resolve(52.52, 13.405)
	assert.True(t, ok)
	assert.Equal(t, "DE", code)
}

func TestCountryCode_DatasetPlaceholder(t *testing.T) {
	tests := []struct {
		name string
		loc  rgeo.Location
		want string
		ok   bool
	}{
		{"iso code present", rgeo.Location{Country: "Germany", CountryCode2: "DE"}, "DE", true},
		{"france placeholder", rgeo.Location{Country: "France", CountryCode2: "-99"}, "FR", true},
		{"norway placeholder", rgeo.Location{Country: "Norway", CountryCode2: "-99"}, "NO", true},
		{"unknown placeholder", rgeo.Location{Country: "Atlantis", CountryCode2: "-99"}, "", false},
		{"empty", rgeo.Location{}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := countryCode(tt.loc)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestOfflineResolver_CountryEconomics(t *testing.T) {
	economics := core.NewEconomicsResolver(NewOfflineResolver())

	oslo := economics.Resolve(59.9139, 10.7522)
	assert.Equal(t, "NOK", oslo.Currency.Code)
	assert.Equal(t, 0.12, oslo.Multiplier)
	assert.Equal(t, model.EconomicsFromCountry, oslo.Source)

	paris := economics.Resolve(48.8566, 2.3522)
	assert.Equal(t, "EUR", paris.Currency.Code)
	assert.Equal(t, 0.011, paris.Multiplier)
	assert.Equal(t, "FR", paris.Region)
}
