// Package candidate converts the JSON-shaped guess returned by the
// NL-extraction channel into a typed partial record. The guess may be
// incomplete or malformed (markdown fences, trailing commas, single
// quotes), so it is repaired before decoding, and every numeric leaf is
// run through the normalizer: numbers may arrive as strings with
// currency formatting.
package candidate

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	"github.com/rotisserie/eris"

	"github.com/sells-group/underwriting/internal/model"
	"github.com/sells-group/underwriting/internal/numeric"
)

// loose mirrors the DealRecord JSON shape with numerics left untyped.
type loose struct {
	Property struct {
		Address       string `json:"address"`
		City          string `json:"city"`
		State         string `json:"state"`
		Zip           any    `json:"zip"`
		Units         any    `json:"units"`
		YearBuilt     any    `json:"year_built"`
		RBASqft       any    `json:"rba_sqft"`
		LandAreaAcres any    `json:"land_area_acres"`
		PropertyType  string `json:"property_type"`
		PropertyClass string `json:"property_class"`
		ParkingSpaces any    `json:"parking_spaces"`
	} `json:"property"`
	Pricing struct {
		Price             any    `json:"price"`
		PricePerUnit      any    `json:"price_per_unit"`
		PricePerSF        any    `json:"price_per_sf"`
		LoanAmount        any    `json:"loan_amount"`
		DownPayment       any    `json:"down_payment"`
		InterestRate      any    `json:"interest_rate"`
		LTV               any    `json:"ltv"`
		TermYears         any    `json:"term_years"`
		AmortizationYears any    `json:"amortization_years"`
		IOPeriodYears     any    `json:"io_period_years"`
		MonthlyPayment    any    `json:"monthly_payment"`
		AnnualDebtService any    `json:"annual_debt_service"`
		DebtType          string `json:"debt_type"`
		BalloonAmount     any    `json:"balloon_amount"`
	} `json:"pricing_financing"`
	PnL struct {
		GrossPotentialRent   any `json:"gross_potential_rent"`
		OtherIncome          any `json:"other_income"`
		VacancyRate          any `json:"vacancy_rate"`
		VacancyAmount        any `json:"vacancy_amount"`
		EffectiveGrossIncome any `json:"effective_gross_income"`
		OperatingExpenses    any `json:"operating_expenses"`
		NOI                  any `json:"noi"`
		CapRate              any `json:"cap_rate"`
		ExpenseRatio         any `json:"expense_ratio"`
	} `json:"pnl"`
	Expenses struct {
		Taxes              any `json:"taxes"`
		Insurance          any `json:"insurance"`
		Utilities          any `json:"utilities"`
		RepairsMaintenance any `json:"repairs_maintenance"`
		Management         any `json:"management"`
		Payroll            any `json:"payroll"`
		Admin              any `json:"admin"`
		Marketing          any `json:"marketing"`
		Other              any `json:"other"`
		Total              any `json:"total"`
	} `json:"expenses"`
	UnitMix []struct {
		Type        string `json:"type"`
		Units       any    `json:"units"`
		UnitSF      any    `json:"unit_sf"`
		RentCurrent any    `json:"rent_current"`
		RentMarket  any    `json:"rent_market"`
	} `json:"unit_mix"`
}

// Decode repairs and decodes a raw NL-extraction payload. A payload
// that cannot be shaped into a record even after repair is an error:
// this is the one extraction failure surfaced to the caller.
func Decode(raw string) (*model.DealRecord, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, eris.New("candidate: empty extraction payload")
	}

	repaired, err := jsonrepair.RepairJSON(raw)
	if err != nil {
		return nil, eris.Wrap(err, "candidate: repair payload")
	}

	var l loose
	if err := json.Unmarshal([]byte(repaired), &l); err != nil {
		return nil, eris.Wrap(err, "candidate: decode payload")
	}

	rec := &model.DealRecord{}
	rec.Property.Address = strings.TrimSpace(l.Property.Address)
	rec.Property.City = strings.TrimSpace(l.Property.City)
	rec.Property.State = strings.TrimSpace(l.Property.State)
	rec.Property.Zip = asString(l.Property.Zip)
	rec.Property.Units = numeric.Parse(l.Property.Units)
	rec.Property.YearBuilt = numeric.Parse(l.Property.YearBuilt)
	rec.Property.RBASqft = numeric.Parse(l.Property.RBASqft)
	rec.Property.LandAreaAcres = numeric.Parse(l.Property.LandAreaAcres)
	rec.Property.PropertyType = strings.TrimSpace(l.Property.PropertyType)
	rec.Property.PropertyClass = strings.TrimSpace(l.Property.PropertyClass)
	rec.Property.ParkingSpaces = numeric.Parse(l.Property.ParkingSpaces)

	rec.Pricing.Price = numeric.Parse(l.Pricing.Price)
	rec.Pricing.PricePerUnit = numeric.Parse(l.Pricing.PricePerUnit)
	rec.Pricing.PricePerSF = numeric.Parse(l.Pricing.PricePerSF)
	rec.Pricing.LoanAmount = numeric.Parse(l.Pricing.LoanAmount)
	rec.Pricing.DownPayment = numeric.Parse(l.Pricing.DownPayment)
	rec.Pricing.InterestRate = numeric.Parse(l.Pricing.InterestRate)
	rec.Pricing.LTV = numeric.Parse(l.Pricing.LTV)
	rec.Pricing.TermYears = numeric.Parse(l.Pricing.TermYears)
	rec.Pricing.AmortizationYears = numeric.Parse(l.Pricing.AmortizationYears)
	rec.Pricing.IOPeriodYears = numeric.Parse(l.Pricing.IOPeriodYears)
	rec.Pricing.MonthlyPayment = numeric.Parse(l.Pricing.MonthlyPayment)
	rec.Pricing.AnnualDebtService = numeric.Parse(l.Pricing.AnnualDebtService)
	rec.Pricing.DebtType = strings.TrimSpace(l.Pricing.DebtType)
	rec.Pricing.BalloonAmount = numeric.Parse(l.Pricing.BalloonAmount)

	rec.PnL.GrossPotentialRent = numeric.Parse(l.PnL.GrossPotentialRent)
	rec.PnL.OtherIncome = numeric.Parse(l.PnL.OtherIncome)
	rec.PnL.VacancyRate = numeric.Parse(l.PnL.VacancyRate)
	rec.PnL.VacancyAmount = numeric.Parse(l.PnL.VacancyAmount)
	rec.PnL.EffectiveGrossIncome = numeric.Parse(l.PnL.EffectiveGrossIncome)
	rec.PnL.OperatingExpenses = numeric.Parse(l.PnL.OperatingExpenses)
	rec.PnL.NOI = numeric.Parse(l.PnL.NOI)
	rec.PnL.CapRate = numeric.Parse(l.PnL.CapRate)
	rec.PnL.ExpenseRatio = numeric.Parse(l.PnL.ExpenseRatio)

	rec.Expenses.Taxes = numeric.Parse(l.Expenses.Taxes)
	rec.Expenses.Insurance = numeric.Parse(l.Expenses.Insurance)
	rec.Expenses.Utilities = numeric.Parse(l.Expenses.Utilities)
	rec.Expenses.RepairsMaintenance = numeric.Parse(l.Expenses.RepairsMaintenance)
	rec.Expenses.Management = numeric.Parse(l.Expenses.Management)
	rec.Expenses.Payroll = numeric.Parse(l.Expenses.Payroll)
	rec.Expenses.Admin = numeric.Parse(l.Expenses.Admin)
	rec.Expenses.Marketing = numeric.Parse(l.Expenses.Marketing)
	rec.Expenses.Other = numeric.Parse(l.Expenses.Other)
	rec.Expenses.Total = numeric.Parse(l.Expenses.Total)

	for _, row := range l.UnitMix {
		mixRow := model.UnitMixRow{
			Type:        strings.TrimSpace(row.Type),
			Units:       numeric.Parse(row.Units),
			UnitSF:      numeric.Parse(row.UnitSF),
			RentCurrent: numeric.Parse(row.RentCurrent),
			RentMarket:  numeric.Parse(row.RentMarket),
		}
		if mixRow.RentMarket == nil && mixRow.RentCurrent != nil {
			market := *mixRow.RentCurrent
			mixRow.RentMarket = &market
		}
		rec.UnitMix = append(rec.UnitMix, mixRow)
	}

	return rec, nil
}

// asString renders a zip that may arrive as a JSON number.
func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case float64:
		return fmt.Sprintf("%05.0f", s)
	default:
		return ""
	}
}
