package textextract

import (
	"regexp"
	"strconv"
	"strings"
)

// numberPattern matches Swedish-formatted amounts: thousands separated by
// spaces (regular or non-breaking), decimal comma, optional sign or
// accounting-style parentheses.
var numberPattern = regexp.MustCompile(`\(?-?\d+(?:[ \x{00a0}.]\d{3})*(?:,\d+)?\)?`)

// ParseNumber parses a Swedish-formatted number string ("1 234 567",
// "120,5", "(45 000)"). Parentheses mean negative, accounting style.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	}

	// strip thousands separators, normalize decimal comma
	s = strings.NewReplacer(" ", "", "\u00a0", "", ".", "", ",", ".").Replace(s)

	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if negative {
		val = -val
	}
	return val, true
}

// firstNumber returns the first Swedish-formatted number found in s.
func firstNumber(s string) (float64, bool) {
	for _, match := range numberPattern.FindAllString(s, -1) {
		if val, ok := ParseNumber(match); ok {
			return val, true
		}
	}
	return 0, false
}
