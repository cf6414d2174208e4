package eligibility

import (
	"math"
	"strconv"
	"strings"
)

// Income units.
const (
	Lakh  = 100000
	Crore = 10000000
)

// parseAge reads a one- or two-digit capture.
func parseAge(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// ParseAmount converts a captured amount and optional unit into rupees.
// lakh/lac multiply by 1e5, crore by 1e7, and a bare number under 1000 is
// read as lakhs ("income below 2" means 2 lakh).
func ParseAmount(num, unit string) (int64, bool) {
	f, err := strconv.ParseFloat(num, 64)
	if err != nil || f <= 0 {
		return 0, false
	}
	switch strings.ToLower(unit) {
	case "lakh", "lac":
		f *= Lakh
	case "crore":
		f *= Crore
	case "":
		if f < 1000 {
			f *= Lakh
		}
	default:
		return 0, false
	}
	return int64(math.Round(f)), true
}

// stripDigitGrouping removes commas between digits so "2,50,000" reads as one
// number.
func stripDigitGrouping(s string) string {
	if !strings.Contains(s, ",") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == ',' && i > 0 && i+1 < len(s) && isDigit(s[i-1]) && isDigit(s[i+1]) {
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
