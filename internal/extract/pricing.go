package extract

import (
	"regexp"
	"strings"

	"github.com/sells-group/underwriting/internal/model"
	"github.com/sells-group/underwriting/internal/numeric"
)

// sfPerAcre converts a lot size quoted in square feet to acres.
const sfPerAcre = 43560.0

var (
	listPriceRe    = regexp.MustCompile(`(?i)(?:list|asking|offer(?:ing)?|purchase)\s+price\s*:?\s*\$?\s*([\d,]+(?:\.\d+)?)`)
	pricePerUnitRe = regexp.MustCompile(`(?i)price\s*(?:per|/)\s*unit\s*:?\s*\$?\s*([\d,]+(?:\.\d+)?)`)
	pricePerSFRe   = regexp.MustCompile(`(?i)price\s*(?:per|/)\s*(?:sf|sq\.?\s*ft\.?|square\s+foot)\s*:?\s*\$?\s*([\d,]+(?:\.\d+)?)`)
	unitCountRe    = regexp.MustCompile(`(?im)^\s*(?:no\.?\s+of\s+units|number\s+of\s+units|total\s+units|units)\s*:?\s+([\d,]+)\s*$`)
	rbaRe          = regexp.MustCompile(`(?i)(?:rentable\s+(?:building\s+)?area|rba|rentable\s+s(?:f|q\.?\s*ft)|building\s+s(?:f|q\.?\s*ft))\s*:?\s*([\d,]+)`)
	lotSizeRe      = regexp.MustCompile(`(?i)(?:lot\s+size|land\s+area|site\s+size)\s*:?\s*([\d,]+(?:\.\d+)?)\s*(acres?|ac\b|sf|sq)`)
)

// PricingDetail locates the pricing section and regex-matches the
// pricing block fields into the record. Lot sizes quoted in square
// feet are converted to acres.
func PricingDetail(lines []string, rec *model.DealRecord) {
	start, end := findSection(lines, "PRICING DETAIL", "PRICING")
	if start < 0 {
		return
	}
	section := strings.Join(lines[start:end], "\n")

	p := &rec.Pricing
	fill(&p.Price, matchNum(listPriceRe, section))
	fill(&p.PricePerUnit, matchNum(pricePerUnitRe, section))
	fill(&p.PricePerSF, matchNum(pricePerSFRe, section))
	fill(&rec.Property.Units, matchNum(unitCountRe, section))
	fill(&rec.Property.RBASqft, matchNum(rbaRe, section))

	if m := lotSizeRe.FindStringSubmatch(section); m != nil {
		if v := numeric.ParseString(m[1]); v != nil {
			unit := strings.ToLower(m[2])
			if strings.HasPrefix(unit, "s") {
				acres := *v / sfPerAcre
				fill(&rec.Property.LandAreaAcres, &acres)
			} else {
				fill(&rec.Property.LandAreaAcres, v)
			}
		}
	}
}

// matchNum applies a single-group regex and normalizes the capture.
func matchNum(re *regexp.Regexp, text string) *float64 {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	return numeric.ParseString(m[1])
}

// fill writes src into dst only when dst is still absent.
func fill(dst **float64, src *float64) {
	if model.Has(*dst) || !model.Has(src) {
		return
	}
	v := *src
	*dst = &v
}
