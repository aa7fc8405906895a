// Package analysis derives the investment-metrics panel from a fully
// reconciled record: cash flow, return ratios, a 5-year IRR solved by
// Newton-Raphson, and a 0-100 heuristic deal score. Every metric
// defaults to 0 when its inputs are missing or non-positive; nothing
// here returns an error.
package analysis

import (
	"math"

	"go.uber.org/zap"

	"github.com/sells-group/underwriting/internal/model"
)

// Projection assumptions baked into the 5-year hold model. The exit
// loan balance uses a flat 85% of the original loan rather than the
// amortized balance.
const (
	rentGrowth         = 0.03
	expenseGrowth      = 0.02
	appreciation       = 0.03
	exitLoanFactor     = 0.85
	holdYears          = 5
	irrInitialGuess    = 0.10
	irrMaxIterations   = 20
	irrDerivativeFloor = 1e-4
)

// Compute builds the full metrics panel for a record.
func Compute(rec *model.DealRecord) *model.DealAnalysis {
	price := model.Val(rec.Pricing.Price)
	noi := model.Val(rec.PnL.NOI)
	debtService := model.Val(rec.Pricing.AnnualDebtService)
	downPayment := model.Val(rec.Pricing.DownPayment)
	loan := model.Val(rec.Pricing.LoanAmount)
	gpr := model.Val(rec.PnL.GrossPotentialRent)
	egi := model.Val(rec.PnL.EffectiveGrossIncome)
	opex := model.Val(rec.PnL.OperatingExpenses)
	units := model.Val(rec.Property.Units)
	sqft := model.Val(rec.Property.RBASqft)

	a := &model.DealAnalysis{}

	if noi != 0 {
		a.AnnualCashFlow = noi - debtService
		a.MonthlyCashFlow = a.AnnualCashFlow / 12
	}
	if downPayment > 0 {
		a.CashOnCashPct = a.AnnualCashFlow / downPayment * 100
	}
	if price > 0 {
		a.ROIYear1Pct = a.AnnualCashFlow / price * 100
	}
	if price > 0 && noi > 0 {
		a.CapRatePct = noi / price * 100
	}
	if debtService > 0 && noi > 0 {
		a.DSCR = noi / debtService
	}
	if gpr > 0 && price > 0 {
		a.GRM = price / gpr
		a.OnePercentRule = gpr / 12 / price * 100
		a.RentToPricePct = gpr / price * 100
	}
	if units > 0 && price > 0 {
		a.PricePerUnit = price / units
	}
	if sqft > 0 && price > 0 {
		a.PricePerSF = price / sqft
	}
	if egi > 0 {
		a.ExpenseRatioPct = opex / egi * 100
		a.BreakEvenPct = (opex + debtService) / egi * 100
		if noi > 0 {
			a.OperatingMargin = noi / egi * 100
		}
	}
	if price > 0 && loan > 0 {
		a.LTVPct = loan / price * 100
	}
	if loan > 0 && noi > 0 {
		a.DebtYieldPct = noi / loan * 100
	}
	if a.AnnualCashFlow > 0 && downPayment > 0 {
		a.PaybackYears = downPayment / a.AnnualCashFlow
	}
	if units > 0 && a.AnnualCashFlow != 0 {
		a.CashFlowPerUnit = a.AnnualCashFlow / units
	}

	a.IRR5YearPct = irr5Year(price, noi, opex, debtService, downPayment, loan)
	a.Score = heuristicScore(a)
	a.Verdict = verdict(a.Score)

	zap.L().Debug("analysis: panel computed",
		zap.Float64("cap_rate_pct", a.CapRatePct),
		zap.Float64("dscr", a.DSCR),
		zap.Float64("irr_5yr_pct", a.IRR5YearPct),
		zap.Float64("score", a.Score),
		zap.String("verdict", a.Verdict),
	)
	return a
}

// irr5Year models a 5-year hold: rent grows 3%/yr, expense drag 2%/yr,
// sale at 3%/yr appreciation with the exit loan balance approximated as
// 85% of the original loan. Returns the rate in percent, or 0 when the
// inputs are unusable or the root-finder fails.
func irr5Year(price, noi, opex, debtService, downPayment, loan float64) float64 {
	invested := downPayment
	if invested <= 0 {
		invested = price
	}
	if invested <= 0 || noi <= 0 {
		return 0
	}

	flows := make([]float64, holdYears+1)
	flows[0] = -invested
	for y := 1; y <= holdYears; y++ {
		flows[y] = noi*math.Pow(1+rentGrowth, float64(y)) - opex*expenseGrowth*float64(y) - debtService
	}
	saleProceeds := price*math.Pow(1+appreciation, holdYears) - exitLoanFactor*loan
	flows[holdYears] += saleProceeds

	rate := newtonRaphson(flows)
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= -1 {
		return 0
	}
	return rate * 100
}

// newtonRaphson solves NPV(rate) = 0 starting at 10%, bailing out when
// the derivative flattens below the guard threshold.
func newtonRaphson(flows []float64) float64 {
	rate := irrInitialGuess
	for i := 0; i < irrMaxIterations; i++ {
		var npv, dnpv float64
		for t, cf := range flows {
			ft := float64(t)
			npv += cf / math.Pow(1+rate, ft)
			dnpv -= ft * cf / math.Pow(1+rate, ft+1)
		}
		if math.Abs(dnpv) < irrDerivativeFloor {
			break
		}
		next := rate - npv/dnpv
		if math.IsNaN(next) || math.IsInf(next, 0) || next <= -1 {
			return 0
		}
		rate = next
	}
	return rate
}

// heuristicScore starts at 50 and awards stepped bonuses for each
// strong metric, clamped to [0, 100].
func heuristicScore(a *model.DealAnalysis) float64 {
	score := 50.0

	switch {
	case a.CapRatePct >= 7:
		score += 10
	case a.CapRatePct >= 5:
		score += 5
	}
	switch {
	case a.CashOnCashPct >= 10:
		score += 10
	case a.CashOnCashPct >= 7:
		score += 5
	}
	switch {
	case a.DSCR >= 1.5:
		score += 10
	case a.DSCR >= 1.25:
		score += 5
	}
	switch {
	case a.ExpenseRatioPct > 0 && a.ExpenseRatioPct <= 40:
		score += 10
	case a.ExpenseRatioPct > 0 && a.ExpenseRatioPct <= 50:
		score += 5
	}
	switch {
	case a.IRR5YearPct >= 15:
		score += 10
	case a.IRR5YearPct >= 10:
		score += 5
	}

	return math.Min(100, math.Max(0, score))
}

func verdict(score float64) string {
	switch {
	case score >= 80:
		return "Excellent"
	case score >= 65:
		return "Good"
	case score >= 50:
		return "Fair"
	default:
		return "Poor"
	}
}
