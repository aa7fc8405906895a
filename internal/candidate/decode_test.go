package candidate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/underwriting/internal/model"
)

func TestDecode(t *testing.T) {
	raw := `{
		"property": {"address": "450 Maple Court", "city": "Tulsa", "state": "OK", "zip": 74103, "units": "20"},
		"pricing_financing": {"price": "$1,000,000", "price_per_unit": 50000},
		"pnl": {"noi": 285000, "gross_potential_rent": "500,000", "vacancy_amount": "(25,000)"},
		"expenses": {"taxes": "$40,000"},
		"unit_mix": [
			{"type": "1BR/1BA", "units": 8, "unit_sf": 650, "rent_current": "$850", "rent_market": 900},
			{"type": "2BR/1BA", "units": 12, "unit_sf": 900, "rent_current": 1100}
		]
	}`

	rec, err := Decode(raw)
	require.NoError(t, err)

	assert.Equal(t, "450 Maple Court", rec.Property.Address)
	assert.Equal(t, "74103", rec.Property.Zip)
	assert.Equal(t, 20.0, model.Val(rec.Property.Units))
	assert.Equal(t, 1_000_000.0, model.Val(rec.Pricing.Price))
	assert.Equal(t, 285_000.0, model.Val(rec.PnL.NOI))
	assert.Equal(t, -25_000.0, model.Val(rec.PnL.VacancyAmount))
	assert.Equal(t, 40_000.0, model.Val(rec.Expenses.Taxes))

	require.Len(t, rec.UnitMix, 2)
	assert.Equal(t, 900.0, model.Val(rec.UnitMix[0].RentMarket))
	// Market rent falls back to current rent.
	assert.Equal(t, 1_100.0, model.Val(rec.UnitMix[1].RentMarket))
}

func TestDecodeRepairsMalformedPayloads(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "markdown fences",
			raw:  "```json\n{\"pricing_financing\": {\"price\": 750000}}\n```",
		},
		{
			name: "trailing comma",
			raw:  `{"pricing_financing": {"price": 750000,},}`,
		},
		{
			name: "single quotes",
			raw:  `{'pricing_financing': {'price': 750000}}`,
		},
		{
			name: "truncated object",
			raw:  `{"pricing_financing": {"price": 750000`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := Decode(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, 750_000.0, model.Val(rec.Pricing.Price))
		})
	}
}

func TestDecodeEmptyPayload(t *testing.T) {
	_, err := Decode("")
	require.Error(t, err)

	_, err = Decode("   \n ")
	require.Error(t, err)
}

func TestDecodeUnparsableNumbersBecomeAbsent(t *testing.T) {
	rec, err := Decode(`{"pricing_financing": {"price": "N/A"}, "pnl": {"noi": null}}`)
	require.NoError(t, err)
	assert.False(t, model.Has(rec.Pricing.Price))
	assert.False(t, model.Has(rec.PnL.NOI))
}
