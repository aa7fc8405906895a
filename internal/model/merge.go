package model

// Merge copies fields from src into dst, filling gaps only: a field is
// copied when dst does not already hold a truthy value and src's value
// is truthy. The pipeline applies Merge repeatedly in source-priority
// order (NL candidate, then deterministic extraction, then the recovery
// candidate), so once a field is filled no later source replaces it.
func Merge(dst, src *DealRecord) {
	if dst == nil || src == nil {
		return
	}
	mergeProperty(&dst.Property, &src.Property)
	mergePricing(&dst.Pricing, &src.Pricing)
	mergePnL(&dst.PnL, &src.PnL)
	mergeExpenses(&dst.Expenses, &src.Expenses)
	if len(dst.UnitMix) == 0 && len(src.UnitMix) > 0 {
		dst.UnitMix = append(dst.UnitMix, src.UnitMix...)
	}
	mergeUnderwriting(&dst.Underwriting, &src.Underwriting)
}

func mergeProperty(dst, src *Property) {
	fillStr(&dst.Address, src.Address)
	fillStr(&dst.City, src.City)
	fillStr(&dst.State, src.State)
	fillStr(&dst.Zip, src.Zip)
	fillNum(&dst.Units, src.Units)
	fillNum(&dst.YearBuilt, src.YearBuilt)
	fillNum(&dst.RBASqft, src.RBASqft)
	fillNum(&dst.LandAreaAcres, src.LandAreaAcres)
	fillStr(&dst.PropertyType, src.PropertyType)
	fillStr(&dst.PropertyClass, src.PropertyClass)
	fillNum(&dst.ParkingSpaces, src.ParkingSpaces)
}

func mergePricing(dst, src *PricingFinancing) {
	fillNum(&dst.Price, src.Price)
	fillNum(&dst.PricePerUnit, src.PricePerUnit)
	fillNum(&dst.PricePerSF, src.PricePerSF)
	fillNum(&dst.LoanAmount, src.LoanAmount)
	fillNum(&dst.DownPayment, src.DownPayment)
	fillNum(&dst.InterestRate, src.InterestRate)
	fillNum(&dst.LTV, src.LTV)
	fillNum(&dst.TermYears, src.TermYears)
	fillNum(&dst.AmortizationYears, src.AmortizationYears)
	fillNum(&dst.IOPeriodYears, src.IOPeriodYears)
	fillNum(&dst.MonthlyPayment, src.MonthlyPayment)
	fillNum(&dst.AnnualDebtService, src.AnnualDebtService)
	fillStr(&dst.DebtType, src.DebtType)
	fillNum(&dst.BalloonAmount, src.BalloonAmount)
}

func mergePnL(dst, src *PnL) {
	fillNum(&dst.GrossPotentialRent, src.GrossPotentialRent)
	fillNum(&dst.OtherIncome, src.OtherIncome)
	fillNum(&dst.VacancyRate, src.VacancyRate)
	fillNum(&dst.VacancyAmount, src.VacancyAmount)
	fillNum(&dst.EffectiveGrossIncome, src.EffectiveGrossIncome)
	fillNum(&dst.OperatingExpenses, src.OperatingExpenses)
	fillNum(&dst.NOI, src.NOI)
	fillNum(&dst.CapRate, src.CapRate)
	fillNum(&dst.ExpenseRatio, src.ExpenseRatio)
}

func mergeExpenses(dst, src *Expenses) {
	fillNum(&dst.Taxes, src.Taxes)
	fillNum(&dst.Insurance, src.Insurance)
	fillNum(&dst.Utilities, src.Utilities)
	fillNum(&dst.RepairsMaintenance, src.RepairsMaintenance)
	fillNum(&dst.Management, src.Management)
	fillNum(&dst.Payroll, src.Payroll)
	fillNum(&dst.Admin, src.Admin)
	fillNum(&dst.Marketing, src.Marketing)
	fillNum(&dst.Other, src.Other)
	fillNum(&dst.Total, src.Total)
}

func mergeUnderwriting(dst, src *Underwriting) {
	fillNum(&dst.DSCR, src.DSCR)
	fillNum(&dst.CapRate, src.CapRate)
	fillNum(&dst.CashOnCash, src.CashOnCash)
	fillNum(&dst.IRR, src.IRR)
}

// fillNum writes src into dst only when dst is not already truthy.
// The value is copied so later mutation of src cannot alias into dst.
func fillNum(dst **float64, src *float64) {
	if Has(*dst) || !Has(src) {
		return
	}
	v := *src
	*dst = &v
}

func fillStr(dst *string, src string) {
	if *dst == "" && src != "" {
		*dst = src
	}
}
