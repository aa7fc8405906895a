package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/underwriting/internal/model"
)

const sampleOM = `CONFIDENTIAL OFFERING MEMORANDUM

450 Maple Court
Tulsa, OK 74103

PRICING DETAIL
List Price: $1,000,000
Price Per Unit: $50,000
Price / SF: $125.00
No. of Units: 20
Rentable Building Area: 8,000
Lot Size: 87,120 SF

OPERATING SUMMARY
Gross Potential Rent     $500,000
Vacancy                 ($25,000)
Other Income             $10,000
Effective Gross Income   $485,000
Real Estate Taxes        $40,000
Insurance                $15,000
Utilities                $30,000
Total Operating Expenses $200,000
Net Operating Income     $285,000

UNIT MIX
Type       Units   SF     Rent     Market
1BR/1BA    8       650    $850     $900
2BR/1BA    12      900    $1,100
`

func TestAll(t *testing.T) {
	rec := All(sampleOM)

	assert.Equal(t, "450 Maple Court", rec.Property.Address)
	assert.Equal(t, "Tulsa", rec.Property.City)
	assert.Equal(t, "OK", rec.Property.State)
	assert.Equal(t, "74103", rec.Property.Zip)

	assert.Equal(t, 1_000_000.0, model.Val(rec.Pricing.Price))
	assert.Equal(t, 50_000.0, model.Val(rec.Pricing.PricePerUnit))
	assert.Equal(t, 125.0, model.Val(rec.Pricing.PricePerSF))
	assert.Equal(t, 20.0, model.Val(rec.Property.Units))
	assert.Equal(t, 8_000.0, model.Val(rec.Property.RBASqft))
	assert.InDelta(t, 2.0, model.Val(rec.Property.LandAreaAcres), 1e-9)

	assert.Equal(t, 500_000.0, model.Val(rec.PnL.GrossPotentialRent))
	assert.Equal(t, -25_000.0, model.Val(rec.PnL.VacancyAmount))
	assert.Equal(t, 10_000.0, model.Val(rec.PnL.OtherIncome))
	assert.Equal(t, 485_000.0, model.Val(rec.PnL.EffectiveGrossIncome))
	assert.Equal(t, 200_000.0, model.Val(rec.PnL.OperatingExpenses))
	assert.Equal(t, 285_000.0, model.Val(rec.PnL.NOI))
	assert.Equal(t, 40_000.0, model.Val(rec.Expenses.Taxes))

	require.Len(t, rec.UnitMix, 2)
	assert.Equal(t, "1BR/1BA", rec.UnitMix[0].Type)
	assert.Equal(t, 900.0, model.Val(rec.UnitMix[0].RentMarket))
}

func TestAllEmptyText(t *testing.T) {
	rec := All("")
	assert.Equal(t, "", rec.Property.Address)
	assert.False(t, model.Has(rec.Pricing.Price))
	assert.Empty(t, rec.UnitMix)
}

func TestAddress(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		street  string
		city    string
		state   string
		zip     string
	}{
		{
			name:   "street directly above",
			text:   "1200 W 5th Ave\nColumbus, OH 43212",
			street: "1200 W 5th Ave",
			city:   "Columbus", state: "OH", zip: "43212",
		},
		{
			name:   "blank and label lines between",
			text:   "88 Elm Street\n\nFor Sale\nSt. Louis, MO 63101-2501",
			street: "88 Elm Street",
			city:   "St. Louis", state: "MO", zip: "63101",
		},
		{
			name:  "no street line with digits",
			text:  "Property Overview\nAustin, TX 78701",
			city:  "Austin", state: "TX", zip: "78701",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &model.DealRecord{}
			Address(strings.Split(tt.text, "\n"), rec)
			assert.Equal(t, tt.street, rec.Property.Address)
			assert.Equal(t, tt.city, rec.Property.City)
			assert.Equal(t, tt.state, rec.Property.State)
			assert.Equal(t, tt.zip, rec.Property.Zip)
		})
	}
}

func TestAddressFillOnly(t *testing.T) {
	rec := &model.DealRecord{}
	rec.Property.Address = "Original Address 1"
	Address(strings.Split("999 New Rd\nDallas, TX 75201", "\n"), rec)
	assert.Equal(t, "Original Address 1", rec.Property.Address)
	assert.Equal(t, "Dallas", rec.Property.City)
}

func TestPricingDetailLotSizeAcres(t *testing.T) {
	text := "PRICING\nAsking Price: $750,000\nLand Area: 2.5 acres"
	rec := &model.DealRecord{}
	PricingDetail(strings.Split(text, "\n"), rec)

	assert.Equal(t, 750_000.0, model.Val(rec.Pricing.Price))
	assert.InDelta(t, 2.5, model.Val(rec.Property.LandAreaAcres), 1e-9)
}

func TestPricingDetailNoSection(t *testing.T) {
	rec := &model.DealRecord{}
	PricingDetail(strings.Split("nothing relevant here", "\n"), rec)
	assert.False(t, model.Has(rec.Pricing.Price))
}

func TestOperatingSummaryRollupAndVacancyRate(t *testing.T) {
	// No explicit total: the subcategories roll up. Vacancy rate derives
	// from GPR and the vacancy amount.
	text := `OPERATING SUMMARY
Gross Potential Rent  $400,000
Vacancy              ($20,000)
Property Taxes        $30,000
Insurance             $12,000
Management            $18,000
`
	rec := &model.DealRecord{}
	OperatingSummary(strings.Split(text, "\n"), rec)

	assert.Equal(t, 60_000.0, model.Val(rec.PnL.OperatingExpenses))
	assert.InDelta(t, 0.05, model.Val(rec.PnL.VacancyRate), 1e-9)
}

func TestOperatingSummaryLabelPrecedence(t *testing.T) {
	// "Vacancy Rate" must not be captured as a vacancy amount, and
	// "Other Income" must not land in the catch-all expense bucket.
	text := `INCOME STATEMENT
Vacancy Rate    5.0%
Other Income    $9,000
NOI             $120,000
`
	rec := &model.DealRecord{}
	OperatingSummary(strings.Split(text, "\n"), rec)

	assert.Equal(t, 5.0, model.Val(rec.PnL.VacancyRate))
	assert.False(t, model.Has(rec.PnL.VacancyAmount))
	assert.Equal(t, 9_000.0, model.Val(rec.PnL.OtherIncome))
	assert.False(t, model.Has(rec.Expenses.Other))
	assert.Equal(t, 120_000.0, model.Val(rec.PnL.NOI))
}

func TestUnitMix(t *testing.T) {
	t.Run("market rent defaults to current", func(t *testing.T) {
		text := `UNIT MIX
Studio   4   450   $700
2BR/2BA  6   950   $1,200   $1,250
`
		rows := UnitMix(strings.Split(text, "\n"))
		require.Len(t, rows, 2)
		assert.Equal(t, 700.0, model.Val(rows[0].RentMarket))
		assert.Equal(t, 1_250.0, model.Val(rows[1].RentMarket))
	})

	t.Run("stops at blank line after rows", func(t *testing.T) {
		text := `RENT ROLL
1BR/1BA  10  600  $800

2BR/1BA  5   850  $1,000
`
		rows := UnitMix(strings.Split(text, "\n"))
		require.Len(t, rows, 1)
		assert.Equal(t, "1BR/1BA", rows[0].Type)
	})

	t.Run("skips header and narrow rows", func(t *testing.T) {
		text := `UNIT MIX
Type  Units  SF  Rent
Total 20
3BR/2BA  2  1,100  $1,400
`
		rows := UnitMix(strings.Split(text, "\n"))
		require.Len(t, rows, 1)
		assert.Equal(t, "3BR/2BA", rows[0].Type)
	})

	t.Run("no section", func(t *testing.T) {
		assert.Nil(t, UnitMix([]string{"no table here"}))
	})
}
