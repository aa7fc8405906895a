package pipeline

import (
	"math"

	"github.com/sells-group/underwriting/internal/model"
)

// runCascade fills still-missing pricing, P&L, and underwriting fields
// from the fields that are present, in dependency order. Each step only
// writes an absent target, so the cascade never overrides an extracted
// value and a second run is a no-op. Returns the names of the
// calculations that fired.
func runCascade(rec *model.DealRecord) []string {
	var performed []string
	pr := &rec.Pricing
	pnl := &rec.PnL

	// 1. Price per unit.
	if !model.Has(pr.PricePerUnit) && model.Has(pr.Price) && model.Has(rec.Property.Units) {
		pr.PricePerUnit = model.F(*pr.Price / *rec.Property.Units)
		performed = append(performed, "price_per_unit")
	}

	// 2. Effective gross income. Vacancy may be recorded as a negative
	// line item; the magnitude is what reduces GPR.
	if !model.Has(pnl.EffectiveGrossIncome) && model.Has(pnl.GrossPotentialRent) {
		egi := *pnl.GrossPotentialRent - math.Abs(model.Val(pnl.VacancyAmount)) + model.Val(pnl.OtherIncome)
		pnl.EffectiveGrossIncome = model.F(egi)
		performed = append(performed, "effective_gross_income")
	}

	// 3. Operating expenses from category subtotals.
	if !model.Has(pnl.OperatingExpenses) {
		sum := 0.0
		found := false
		for _, c := range rec.Expenses.Categories() {
			if model.Has(c) {
				sum += *c
				found = true
			}
		}
		if found {
			pnl.OperatingExpenses = model.F(sum)
			performed = append(performed, "operating_expenses")
		}
	}

	// Keep the expense rollup consistent with the categories.
	if !model.Has(rec.Expenses.Total) && model.Has(pnl.OperatingExpenses) {
		rec.Expenses.Total = model.F(*pnl.OperatingExpenses)
	}

	// 4. NOI.
	if !model.Has(pnl.NOI) && model.Has(pnl.EffectiveGrossIncome) && model.Has(pnl.OperatingExpenses) {
		pnl.NOI = model.F(*pnl.EffectiveGrossIncome - *pnl.OperatingExpenses)
		performed = append(performed, "noi")
	}

	// 5. Expense ratio.
	if !model.Has(pnl.ExpenseRatio) && model.Has(pnl.OperatingExpenses) && model.Has(pnl.EffectiveGrossIncome) {
		pnl.ExpenseRatio = model.F(*pnl.OperatingExpenses / *pnl.EffectiveGrossIncome)
		performed = append(performed, "expense_ratio")
	}

	// 6. Cap rate.
	if !model.Has(pnl.CapRate) && model.Has(pnl.NOI) && model.Has(pr.Price) {
		pnl.CapRate = model.F(*pnl.NOI / *pr.Price)
		performed = append(performed, "cap_rate")
	}
	if !model.Has(rec.Underwriting.CapRate) && model.Has(pnl.CapRate) {
		rec.Underwriting.CapRate = model.F(*pnl.CapRate)
	}

	// 7. DSCR.
	if !model.Has(rec.Underwriting.DSCR) && model.Has(pnl.NOI) && model.Has(pr.AnnualDebtService) {
		rec.Underwriting.DSCR = model.F(*pnl.NOI / *pr.AnnualDebtService)
		performed = append(performed, "dscr")
	}

	return performed
}

// validate reports which critical inputs are still missing after the
// cascade. Warnings annotate the record; they never fail the request.
func validate(rec *model.DealRecord) []string {
	var warnings []string
	if !model.Has(rec.Pricing.Price) {
		warnings = append(warnings, "no purchase price found")
	}
	if !model.Has(rec.Property.Units) {
		warnings = append(warnings, "no unit count found")
	}
	if !model.Has(rec.PnL.NOI) {
		warnings = append(warnings, "no NOI found or derivable")
	}
	if !model.Has(rec.PnL.EffectiveGrossIncome) {
		warnings = append(warnings, "no effective gross income found or derivable")
	}
	return warnings
}
