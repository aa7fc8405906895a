package extract

import (
	"math"
	"regexp"
	"strings"

	"github.com/sells-group/underwriting/internal/model"
	"github.com/sells-group/underwriting/internal/numeric"
)

// numericTokenRe matches the trailing numeric token of a summary line:
// "$1,234,567", "(25,000)", "12.5%".
var numericTokenRe = regexp.MustCompile(`\(?\$?\s*-?\d[\d,]*(?:\.\d+)?\s*\)?%?`)

// operatingLabels maps uppercased line labels to record fields. The
// list is ordered: the first matching label wins, so more specific
// labels ("OTHER INCOME") come before their prefixes ("OTHER").
var operatingLabels = []struct {
	label string
	apply func(*model.DealRecord, *float64)
}{
	{"GROSS POTENTIAL RENT", func(r *model.DealRecord, v *float64) { fill(&r.PnL.GrossPotentialRent, v) }},
	{"GROSS SCHEDULED RENT", func(r *model.DealRecord, v *float64) { fill(&r.PnL.GrossPotentialRent, v) }},
	{"SCHEDULED GROSS INCOME", func(r *model.DealRecord, v *float64) { fill(&r.PnL.GrossPotentialRent, v) }},
	{"OTHER INCOME", func(r *model.DealRecord, v *float64) { fill(&r.PnL.OtherIncome, v) }},
	{"VACANCY RATE", func(r *model.DealRecord, v *float64) { fill(&r.PnL.VacancyRate, v) }},
	{"VACANCY", func(r *model.DealRecord, v *float64) { fill(&r.PnL.VacancyAmount, v) }},
	{"EFFECTIVE GROSS INCOME", func(r *model.DealRecord, v *float64) { fill(&r.PnL.EffectiveGrossIncome, v) }},
	{"NET OPERATING INCOME", func(r *model.DealRecord, v *float64) { fill(&r.PnL.NOI, v) }},
	{"NOI", func(r *model.DealRecord, v *float64) { fill(&r.PnL.NOI, v) }},
	{"TOTAL OPERATING EXPENSES", func(r *model.DealRecord, v *float64) { fill(&r.PnL.OperatingExpenses, v) }},
	{"TOTAL EXPENSES", func(r *model.DealRecord, v *float64) { fill(&r.PnL.OperatingExpenses, v) }},
	{"OPERATING EXPENSES", func(r *model.DealRecord, v *float64) { fill(&r.PnL.OperatingExpenses, v) }},
	{"REAL ESTATE TAXES", func(r *model.DealRecord, v *float64) { fill(&r.Expenses.Taxes, v) }},
	{"PROPERTY TAXES", func(r *model.DealRecord, v *float64) { fill(&r.Expenses.Taxes, v) }},
	{"TAXES", func(r *model.DealRecord, v *float64) { fill(&r.Expenses.Taxes, v) }},
	{"INSURANCE", func(r *model.DealRecord, v *float64) { fill(&r.Expenses.Insurance, v) }},
	{"UTILITIES", func(r *model.DealRecord, v *float64) { fill(&r.Expenses.Utilities, v) }},
	{"REPAIRS & MAINTENANCE", func(r *model.DealRecord, v *float64) { fill(&r.Expenses.RepairsMaintenance, v) }},
	{"REPAIRS AND MAINTENANCE", func(r *model.DealRecord, v *float64) { fill(&r.Expenses.RepairsMaintenance, v) }},
	{"REPAIRS", func(r *model.DealRecord, v *float64) { fill(&r.Expenses.RepairsMaintenance, v) }},
	{"MAINTENANCE", func(r *model.DealRecord, v *float64) { fill(&r.Expenses.RepairsMaintenance, v) }},
	{"MANAGEMENT", func(r *model.DealRecord, v *float64) { fill(&r.Expenses.Management, v) }},
	{"PAYROLL", func(r *model.DealRecord, v *float64) { fill(&r.Expenses.Payroll, v) }},
	{"GENERAL & ADMINISTRATIVE", func(r *model.DealRecord, v *float64) { fill(&r.Expenses.Admin, v) }},
	{"ADMINISTRATIVE", func(r *model.DealRecord, v *float64) { fill(&r.Expenses.Admin, v) }},
	{"ADMIN", func(r *model.DealRecord, v *float64) { fill(&r.Expenses.Admin, v) }},
	{"MARKETING", func(r *model.DealRecord, v *float64) { fill(&r.Expenses.Marketing, v) }},
	{"ADVERTISING", func(r *model.DealRecord, v *float64) { fill(&r.Expenses.Marketing, v) }},
	{"OTHER EXPENSES", func(r *model.DealRecord, v *float64) { fill(&r.Expenses.Other, v) }},
	{"MISCELLANEOUS", func(r *model.DealRecord, v *float64) { fill(&r.Expenses.Other, v) }},
}

// OperatingSummary locates the operating summary / income statement
// section and matches each labeled numeric line against the label
// table. Unmatched labels are ignored. When expense subcategories were
// found without an explicit total, the total is their sum; when GPR and
// a vacancy amount are both present, the vacancy rate is derived.
func OperatingSummary(lines []string, rec *model.DealRecord) {
	start, end := findSection(lines, "OPERATING SUMMARY", "INCOME STATEMENT", "OPERATING STATEMENT")
	if start < 0 {
		return
	}

	for _, line := range lines[start:end] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		token := lastNumericToken(line)
		if token == "" {
			continue
		}
		value := numeric.ParseString(token)
		if value == nil {
			continue
		}

		label := strings.ToUpper(strings.TrimSpace(strings.TrimRight(numericTokenRe.ReplaceAllString(line, " "), " .:\t")))
		if label == "" {
			continue
		}
		for _, entry := range operatingLabels {
			if strings.Contains(label, entry.label) {
				entry.apply(rec, value)
				break
			}
		}
	}

	// Subcategory rollup when no explicit operating-expenses total was found.
	if !model.Has(rec.PnL.OperatingExpenses) {
		sum := 0.0
		found := false
		for _, c := range rec.Expenses.Categories() {
			if model.Has(c) {
				sum += *c
				found = true
			}
		}
		if found {
			rec.PnL.OperatingExpenses = &sum
		}
	}

	if !model.Has(rec.PnL.VacancyRate) && model.Has(rec.PnL.GrossPotentialRent) && model.Has(rec.PnL.VacancyAmount) {
		rate := math.Abs(*rec.PnL.VacancyAmount) / *rec.PnL.GrossPotentialRent
		rec.PnL.VacancyRate = &rate
	}
}

// lastNumericToken returns the final numeric token of the line, which
// in a columnar statement is the amount.
func lastNumericToken(line string) string {
	all := numericTokenRe.FindAllString(line, -1)
	if len(all) == 0 {
		return ""
	}
	return all[len(all)-1]
}
