package extract

import (
	"regexp"
	"strings"

	"github.com/sells-group/underwriting/internal/model"
	"github.com/sells-group/underwriting/internal/numeric"
)

// bedroomHintRe matches unit-type tokens like "2br" or "3BR".
var bedroomHintRe = regexp.MustCompile(`(?i)\dbr`)

// UnitMix parses the unit-mix / rent-roll table. A row needs at least
// four whitespace-separated columns and a first column that hints a
// bedroom count; columns map to type, count, SF, current rent, market
// rent. Market rent defaults to current rent when the column is absent.
// Parsing stops at the first blank line (or an operating/income header)
// once rows have begun.
func UnitMix(lines []string) []model.UnitMixRow {
	start := -1
	for i, line := range lines {
		lower := strings.ToLower(line)
		if strings.Contains(lower, "unit mix") || strings.Contains(lower, "rent roll") {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return nil
	}

	var rows []model.UnitMixRow
	for _, line := range lines[start:] {
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(trimmed)

		if len(rows) > 0 {
			if trimmed == "" || strings.HasPrefix(lower, "operating") || strings.HasPrefix(lower, "income") {
				break
			}
		}

		cols := strings.Fields(trimmed)
		if len(cols) < 4 {
			continue
		}
		if !isUnitType(cols[0]) {
			continue
		}

		row := model.UnitMixRow{
			Type:        cols[0],
			Units:       numeric.ParseString(cols[1]),
			UnitSF:      numeric.ParseString(cols[2]),
			RentCurrent: numeric.ParseString(cols[3]),
		}
		if len(cols) >= 5 {
			row.RentMarket = numeric.ParseString(cols[4])
		}
		if row.RentMarket == nil && row.RentCurrent != nil {
			market := *row.RentCurrent
			row.RentMarket = &market
		}
		rows = append(rows, row)
	}
	return rows
}

// isUnitType reports whether a column looks like a unit-type label:
// "Studio", "2Bed", "1BR".
func isUnitType(col string) bool {
	lower := strings.ToLower(col)
	return strings.Contains(lower, "bed") ||
		strings.Contains(lower, "studio") ||
		bedroomHintRe.MatchString(col)
}
