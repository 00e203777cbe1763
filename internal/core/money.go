package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Round2 rounds an amount to kopecks for display. Calculations keep the
// unrounded value.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// ParseAmount parses a spreadsheet amount. "1234.5", "1 234,50",
// "-1,234.50" and "1.234,50" are accepted; an empty cell is zero.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	norm, ok := normalizeAmount(s)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	d, err := decimal.NewFromString(norm)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d.InexactFloat64(), nil
}

// normalizeAmount rewrites a displayed amount with "." as the only decimal
// mark. The last "," or "." is the decimal mark unless it occurs more than
// once; the other mark separates thousands and must split the integer part
// into groups of three.
func normalizeAmount(s string) (string, bool) {
	s = strings.NewReplacer(" ", "", "\u00a0", "").Replace(s)
	at := strings.LastIndexAny(s, ",.")
	if at < 0 {
		return s, true
	}

	mark := s[at : at+1]
	intPart, frac := s[:at], s[at+1:]
	group := ","
	if mark == "," {
		group = "."
	}
	if strings.Count(s, mark) > 1 {
		intPart, frac, group = s, "", mark
	}

	if strings.Contains(intPart, group) {
		sign := ""
		if strings.HasPrefix(intPart, "-") || strings.HasPrefix(intPart, "+") {
			sign, intPart = intPart[:1], intPart[1:]
		}
		parts := strings.Split(intPart, group)
		if len(parts[0]) < 1 || len(parts[0]) > 3 {
			return "", false
		}
		for _, p := range parts[1:] {
			if len(p) != 3 {
				return "", false
			}
		}
		intPart = sign + strings.Join(parts, "")
	}

	if frac == "" {
		return intPart, true
	}
	return intPart + "." + frac, true
}
