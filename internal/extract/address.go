package extract

import (
	"regexp"
	"strings"

	"github.com/sells-group/underwriting/internal/model"
)

// cityStateZipRe matches a "City, ST ZIP" line, e.g. "Austin, TX 78701"
// or "St. Louis, MO 63101-2501".
var cityStateZipRe = regexp.MustCompile(`([A-Za-z][A-Za-z .'\-]*),\s*([A-Z]{2})\s+(\d{5})(?:-\d{4})?`)

// Address scans the lines for a City/State/ZIP pattern and treats the
// nearest preceding line containing a digit (within 4 lines) as the
// street address. Fill-only: never overwrites fields already set.
func Address(lines []string, rec *model.DealRecord) {
	for i, line := range lines {
		m := cityStateZipRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		street := ""
		for back := i - 1; back >= 0 && back >= i-4; back-- {
			candidate := strings.TrimSpace(lines[back])
			if candidate != "" && containsDigit(candidate) {
				street = candidate
				break
			}
		}

		if rec.Property.Address == "" && street != "" {
			rec.Property.Address = street
		}
		if rec.Property.City == "" {
			rec.Property.City = strings.TrimSpace(m[1])
		}
		if rec.Property.State == "" {
			rec.Property.State = m[2]
		}
		if rec.Property.Zip == "" {
			rec.Property.Zip = m[3]
		}
		return
	}
}
