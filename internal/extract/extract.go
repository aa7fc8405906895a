// Package extract pulls structured deal fields out of raw multi-page
// text with deterministic regex matching, independently of the
// NL-extraction channel. Every sub-extractor is best-effort: a missing
// section yields an empty result, never an error.
package extract

import (
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/underwriting/internal/model"
)

// All runs the four deterministic sub-extractors over the raw text and
// combines their output into one partial record.
func All(text string) *model.DealRecord {
	rec := &model.DealRecord{}
	if text == "" {
		return rec
	}

	lines := strings.Split(text, "\n")

	Address(lines, rec)
	PricingDetail(lines, rec)
	OperatingSummary(lines, rec)
	rec.UnitMix = UnitMix(lines)

	zap.L().Debug("extract: deterministic pass complete",
		zap.Bool("address", rec.Property.Address != ""),
		zap.Bool("price", model.Has(rec.Pricing.Price)),
		zap.Bool("noi", model.Has(rec.PnL.NOI)),
		zap.Int("unit_mix_rows", len(rec.UnitMix)),
	)
	return rec
}

// sectionHeaders are the markers that terminate a section window.
// Expense labels are deliberately not listed: expense lines live inside
// the operating summary.
var sectionHeaders = []string{
	"PRICING DETAIL", "PRICING", "OPERATING SUMMARY", "INCOME STATEMENT",
	"UNIT MIX", "RENT ROLL", "FINANCING",
}

// findSection returns the line range [start+1, end) of the first
// section whose header line contains any of the given markers
// (case-insensitive). Returns (-1, -1) when no marker matches.
func findSection(lines []string, markers ...string) (int, int) {
	start := -1
	for i, line := range lines {
		upper := strings.ToUpper(line)
		for _, m := range markers {
			if strings.Contains(upper, m) {
				start = i
				break
			}
		}
		if start >= 0 {
			break
		}
	}
	if start < 0 {
		return -1, -1
	}

	end := len(lines)
	for i := start + 1; i < len(lines); i++ {
		upper := strings.ToUpper(lines[i])
		for _, h := range sectionHeaders {
			if isOwnMarker(h, markers) {
				continue
			}
			if strings.Contains(upper, h) {
				return start + 1, i
			}
		}
	}
	return start + 1, end
}

func isOwnMarker(header string, markers []string) bool {
	for _, m := range markers {
		if header == m {
			return true
		}
	}
	return false
}

func containsDigit(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			return true
		}
	}
	return false
}
