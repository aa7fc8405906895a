// Package finance computes mode-specific debt-service schedules for a
// deal: a traditional amortizing loan, a seller-financed note with
// optional interest-only period and balloon, or assumed subject-to
// debt. Apply overwrites the financing fields of the record for the
// chosen mode; everything else is pure closed-form mortgage math.
package finance

import (
	"math"

	"go.uber.org/zap"

	"github.com/sells-group/underwriting/internal/model"
)

// Mode selects the financing structure. An unrecognized or empty mode
// leaves the record's financing fields as reconciled.
type Mode string

const (
	ModeTraditional   Mode = "traditional"
	ModeSellerFinance Mode = "seller_finance"
	ModeSubjectTo     Mode = "subject_to"
)

// defaultAmortYears is used when neither an amortization nor a loan
// term was supplied.
const defaultAmortYears = 30.0

// Terms is the mode-specific parameter bag. Only the fields relevant
// to the chosen mode are read:
//
//	traditional:    DownPaymentPct, InterestRate, TermYears, AmortizationYears
//	seller_finance: DownPaymentAmount, InterestRate, AmortizationYears, BalloonYears, IOYears
//	subject_to:     ExistingBalance, InterestRate, RemainingTermYears, AmortizationYears
type Terms struct {
	DownPaymentPct     float64 `json:"down_payment_pct,omitempty"`
	DownPaymentAmount  float64 `json:"down_payment_amount,omitempty"`
	InterestRate       float64 `json:"interest_rate,omitempty"`
	TermYears          float64 `json:"term_years,omitempty"`
	AmortizationYears  float64 `json:"amortization_years,omitempty"`
	BalloonYears       float64 `json:"balloon_years,omitempty"`
	IOYears            float64 `json:"io_years,omitempty"`
	ExistingBalance    float64 `json:"existing_balance,omitempty"`
	RemainingTermYears float64 `json:"remaining_term_years,omitempty"`
}

// MonthlyPayment returns the amortizing payment for a principal at an
// annual rate (percent) over n months. A zero rate degenerates to
// straight-line principal.
func MonthlyPayment(principal, annualRate float64, months int) float64 {
	if principal <= 0 || months <= 0 {
		return 0
	}
	r := annualRate / 100 / 12
	if r == 0 {
		return principal / float64(months)
	}
	return principal * r / (1 - math.Pow(1+r, -float64(months)))
}

// RemainingBalance returns the principal outstanding after paid
// amortizing payments out of totalMonths.
func RemainingBalance(principal, annualRate float64, totalMonths, paid int) float64 {
	if principal <= 0 || totalMonths <= 0 {
		return 0
	}
	if paid <= 0 {
		return principal
	}
	if paid >= totalMonths {
		return 0
	}
	r := annualRate / 100 / 12
	if r == 0 {
		return principal * (1 - float64(paid)/float64(totalMonths))
	}
	growthN := math.Pow(1+r, float64(totalMonths))
	growthK := math.Pow(1+r, float64(paid))
	return principal * (growthN - growthK) / (growthN - 1)
}

// Apply computes the financing fields for the chosen mode and writes
// them onto the record, overwriting values from earlier stages (the
// mode is an explicit user decision). MonthlyPayment and
// AnnualDebtService are written only when the computed payment is
// positive.
func Apply(rec *model.DealRecord, mode Mode, t Terms) {
	if rec == nil {
		return
	}
	switch mode {
	case ModeTraditional:
		applyTraditional(rec, t)
	case ModeSellerFinance:
		applySellerFinance(rec, t)
	case ModeSubjectTo:
		applySubjectTo(rec, t)
	default:
		zap.L().Debug("finance: no financing mode selected, fields left as reconciled")
		return
	}

	p := &rec.Pricing
	zap.L().Info("finance: financing applied",
		zap.String("mode", string(mode)),
		zap.Float64("loan_amount", model.Val(p.LoanAmount)),
		zap.Float64("monthly_payment", model.Val(p.MonthlyPayment)),
		zap.Float64("balloon", model.Val(p.BalloonAmount)),
	)
}

func applyTraditional(rec *model.DealRecord, t Terms) {
	p := &rec.Pricing
	price := model.Val(p.Price)

	loan := price * (1 - t.DownPaymentPct/100)
	down := price - loan

	amortYears := t.AmortizationYears
	if amortYears == 0 {
		amortYears = t.TermYears
	}
	if amortYears == 0 {
		amortYears = defaultAmortYears
	}
	months := int(amortYears * 12)

	p.LoanAmount = model.F(loan)
	p.DownPayment = model.F(down)
	p.InterestRate = model.F(t.InterestRate)
	if t.TermYears > 0 {
		p.TermYears = model.F(t.TermYears)
	}
	p.AmortizationYears = model.F(amortYears)
	p.DebtType = "Traditional"
	writePayment(p, MonthlyPayment(loan, t.InterestRate, months))
}

func applySellerFinance(rec *model.DealRecord, t Terms) {
	p := &rec.Pricing
	price := model.Val(p.Price)

	loan := price - t.DownPaymentAmount

	amortYears := t.AmortizationYears
	if amortYears == 0 {
		amortYears = defaultAmortYears
	}
	amortMonths := int(amortYears * 12)
	ioMonths := int(t.IOYears * 12)
	balloonMonths := int(t.BalloonYears * 12)
	r := t.InterestRate / 100 / 12

	var monthly, balloon float64
	switch {
	case ioMonths > 0 && balloonMonths > 0 && balloonMonths <= ioMonths:
		// Balloon due within the interest-only window: no principal has
		// been paid, so the balloon is the full note.
		monthly = r * loan
		balloon = loan
	case ioMonths > 0:
		// IO payment during the window, then amortizing; the balloon
		// (when set) is the balance after the post-IO payments made.
		monthly = r * loan
		if balloonMonths > 0 {
			balloon = RemainingBalance(loan, t.InterestRate, amortMonths, balloonMonths-ioMonths)
		}
	default:
		monthly = MonthlyPayment(loan, t.InterestRate, amortMonths)
		if balloonMonths > 0 {
			balloon = RemainingBalance(loan, t.InterestRate, amortMonths, balloonMonths)
		}
	}

	p.LoanAmount = model.F(loan)
	p.DownPayment = model.F(t.DownPaymentAmount)
	p.InterestRate = model.F(t.InterestRate)
	p.AmortizationYears = model.F(amortYears)
	if t.IOYears > 0 {
		p.IOPeriodYears = model.F(t.IOYears)
	}
	p.BalloonAmount = model.F(balloon)
	p.DebtType = "Seller Finance"
	writePayment(p, monthly)
}

func applySubjectTo(rec *model.DealRecord, t Terms) {
	p := &rec.Pricing
	price := model.Val(p.Price)

	loan := t.ExistingBalance

	amortYears := t.RemainingTermYears
	if amortYears == 0 {
		amortYears = t.AmortizationYears
	}
	if amortYears == 0 {
		amortYears = defaultAmortYears
	}
	months := int(amortYears * 12)

	p.LoanAmount = model.F(loan)
	p.DownPayment = model.F(math.Max(0, price-loan))
	p.InterestRate = model.F(t.InterestRate)
	p.AmortizationYears = model.F(amortYears)
	p.DebtType = "Subject-To"
	writePayment(p, MonthlyPayment(loan, t.InterestRate, months))
}

// writePayment stores the payment fields only for a positive payment.
func writePayment(p *model.PricingFinancing, monthly float64) {
	if monthly <= 0 {
		return
	}
	p.MonthlyPayment = model.F(monthly)
	p.AnnualDebtService = model.F(monthly * 12)
}
