// Package numeric normalizes heterogeneous numeric inputs (currency
// strings, percentages, accounting negatives) into float-or-absent.
package numeric

import (
	"math"
	"strconv"
	"strings"
)

var cleaner = strings.NewReplacer("$", "", ",", "", "%", "", " ", "", " ", "")

// Parse converts a value of unknown shape into a float pointer.
// nil, empty strings, and unparseable text yield nil (absent), never
// an error. Strings may carry currency symbols, thousands separators,
// percent signs, and accounting-style parenthesized negatives:
// "(500)" parses to -500. Percent signs are stripped, not divided:
// "12%" parses to 12.
func Parse(v any) *float64 {
	switch n := v.(type) {
	case nil:
		return nil
	case float64:
		return finite(n)
	case float32:
		return finite(float64(n))
	case int:
		return finite(float64(n))
	case int32:
		return finite(float64(n))
	case int64:
		return finite(float64(n))
	case string:
		return ParseString(n)
	default:
		return nil
	}
}

// ParseString normalizes a textual number. Empty or unparseable input
// yields nil.
func ParseString(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") && len(s) > 2 {
		neg = true
		s = s[1 : len(s)-1]
	}

	s = strings.TrimSpace(cleaner.Replace(s))
	if s == "" {
		return nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	if neg {
		f = -f
	}
	return finite(f)
}

// finite rejects NaN and infinities so a record leaf is always a finite
// float or absent.
func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
