// Package model defines the deal record aggregate shared by every
// pipeline stage. Numeric leaves are *float64: nil means the value is
// absent, a non-nil pointer always holds a finite float.
package model

import (
	"math"
	"time"
)

// DealRecord is the root aggregate built per request. It is created
// fresh for each ingest call, mutated in place by the pipeline stages,
// and owned by the caller.
type DealRecord struct {
	Property     Property         `json:"property"`
	Pricing      PricingFinancing `json:"pricing_financing"`
	PnL          PnL              `json:"pnl"`
	Expenses     Expenses         `json:"expenses"`
	UnitMix      []UnitMixRow     `json:"unit_mix"`
	Underwriting Underwriting     `json:"underwriting"`
	DealAnalysis *DealAnalysis    `json:"deal_analysis,omitempty"`
	Metadata     Metadata         `json:"metadata"`
}

// Property holds the physical asset facts.
type Property struct {
	Address       string   `json:"address,omitempty"`
	City          string   `json:"city,omitempty"`
	State         string   `json:"state,omitempty"`
	Zip           string   `json:"zip,omitempty"`
	Units         *float64 `json:"units,omitempty"`
	YearBuilt     *float64 `json:"year_built,omitempty"`
	RBASqft       *float64 `json:"rba_sqft,omitempty"`
	LandAreaAcres *float64 `json:"land_area_acres,omitempty"`
	PropertyType  string   `json:"property_type,omitempty"`
	PropertyClass string   `json:"property_class,omitempty"`
	ParkingSpaces *float64 `json:"parking_spaces,omitempty"`
}

// PricingFinancing holds pricing and debt terms. DebtType is a free-text
// label of the financing mode that produced the debt figures.
type PricingFinancing struct {
	Price             *float64 `json:"price,omitempty"`
	PricePerUnit      *float64 `json:"price_per_unit,omitempty"`
	PricePerSF        *float64 `json:"price_per_sf,omitempty"`
	LoanAmount        *float64 `json:"loan_amount,omitempty"`
	DownPayment       *float64 `json:"down_payment,omitempty"`
	InterestRate      *float64 `json:"interest_rate,omitempty"`
	LTV               *float64 `json:"ltv,omitempty"`
	TermYears         *float64 `json:"term_years,omitempty"`
	AmortizationYears *float64 `json:"amortization_years,omitempty"`
	IOPeriodYears     *float64 `json:"io_period_years,omitempty"`
	MonthlyPayment    *float64 `json:"monthly_payment,omitempty"`
	AnnualDebtService *float64 `json:"annual_debt_service,omitempty"`
	DebtType          string   `json:"debt_type,omitempty"`
	BalloonAmount     *float64 `json:"balloon_amount,omitempty"`
}

// PnL holds the income statement figures. CapRate and ExpenseRatio are
// stored as ratios (0.07, not 7).
type PnL struct {
	GrossPotentialRent   *float64 `json:"gross_potential_rent,omitempty"`
	OtherIncome          *float64 `json:"other_income,omitempty"`
	VacancyRate          *float64 `json:"vacancy_rate,omitempty"`
	VacancyAmount        *float64 `json:"vacancy_amount,omitempty"`
	EffectiveGrossIncome *float64 `json:"effective_gross_income,omitempty"`
	OperatingExpenses    *float64 `json:"operating_expenses,omitempty"`
	NOI                  *float64 `json:"noi,omitempty"`
	CapRate              *float64 `json:"cap_rate,omitempty"`
	ExpenseRatio         *float64 `json:"expense_ratio,omitempty"`
}

// Expenses holds the named expense categories plus the rolled-up total.
type Expenses struct {
	Taxes              *float64 `json:"taxes,omitempty"`
	Insurance          *float64 `json:"insurance,omitempty"`
	Utilities          *float64 `json:"utilities,omitempty"`
	RepairsMaintenance *float64 `json:"repairs_maintenance,omitempty"`
	Management         *float64 `json:"management,omitempty"`
	Payroll            *float64 `json:"payroll,omitempty"`
	Admin              *float64 `json:"admin,omitempty"`
	Marketing          *float64 `json:"marketing,omitempty"`
	Other              *float64 `json:"other,omitempty"`
	Total              *float64 `json:"total,omitempty"`
}

// Categories returns the category values excluding Total, in a fixed order.
func (e *Expenses) Categories() []*float64 {
	return []*float64{
		e.Taxes, e.Insurance, e.Utilities, e.RepairsMaintenance,
		e.Management, e.Payroll, e.Admin, e.Marketing, e.Other,
	}
}

// UnitMixRow is one row of the unit-mix / rent-roll table.
type UnitMixRow struct {
	Type        string   `json:"type"`
	Units       *float64 `json:"units,omitempty"`
	UnitSF      *float64 `json:"unit_sf,omitempty"`
	RentCurrent *float64 `json:"rent_current,omitempty"`
	RentMarket  *float64 `json:"rent_market,omitempty"`
}

// Underwriting holds the headline underwriting ratios.
type Underwriting struct {
	DSCR       *float64 `json:"dscr,omitempty"`
	CapRate    *float64 `json:"cap_rate,omitempty"`
	CashOnCash *float64 `json:"cash_on_cash,omitempty"`
	IRR        *float64 `json:"irr,omitempty"`
}

// Metadata carries provenance and diagnostics for the record: which
// cascade calculations fired, what is still missing, and what the
// recovery pass did (if it ran).
type Metadata struct {
	RecordID              string    `json:"record_id"`
	ExtractedAt           time.Time `json:"extracted_at"`
	Warnings              []string  `json:"warnings,omitempty"`
	CalculationsPerformed []string  `json:"calculations_performed,omitempty"`
	RecoveryPagesUsed     []int     `json:"recovery_pages_used,omitempty"`
	RecoveryError         string    `json:"recovery_error,omitempty"`
}

// DealAnalysis is the investment-metrics panel. Ratio metrics suffixed
// Pct are expressed in percent (7.0 means 7%); a metric whose inputs
// were missing or non-positive is 0.
type DealAnalysis struct {
	AnnualCashFlow   float64 `json:"annual_cash_flow"`
	MonthlyCashFlow  float64 `json:"monthly_cash_flow"`
	CashOnCashPct    float64 `json:"cash_on_cash_pct"`
	ROIYear1Pct      float64 `json:"roi_year1_pct"`
	CapRatePct       float64 `json:"cap_rate_pct"`
	DSCR             float64 `json:"dscr"`
	GRM              float64 `json:"grm"`
	PricePerUnit     float64 `json:"price_per_unit"`
	PricePerSF       float64 `json:"price_per_sf"`
	ExpenseRatioPct  float64 `json:"expense_ratio_pct"`
	BreakEvenPct     float64 `json:"break_even_pct"`
	LTVPct           float64 `json:"ltv_pct"`
	DebtYieldPct     float64 `json:"debt_yield_pct"`
	OnePercentRule   float64 `json:"one_percent_rule"`
	IRR5YearPct      float64 `json:"irr_5yr_pct"`
	PaybackYears     float64 `json:"payback_years"`
	RentToPricePct   float64 `json:"rent_to_price_pct"`
	OperatingMargin  float64 `json:"operating_margin_pct"`
	CashFlowPerUnit  float64 `json:"cash_flow_per_unit"`
	Score            float64 `json:"score"`
	Verdict          string  `json:"verdict"`
}

// F returns a pointer to v. Shorthand for building records by hand.
func F(v float64) *float64 { return &v }

// Val returns the value of p, or 0 when p is absent.
func Val(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// Has reports whether p holds a truthy value: present, finite, non-zero.
// The merge and cascade invariants are both defined over this predicate.
func Has(p *float64) bool {
	if p == nil {
		return false
	}
	return *p != 0 && !math.IsNaN(*p) && !math.IsInf(*p, 0)
}
