package coerce

import (
	"regexp"
	"strconv"
	"strings"
)

// Fixed vocabularies shared by the parsers. Read-only after init.
var (
	currencyRe  = regexp.MustCompile(`[₩$€£, ]+`)
	parensNegRe = regexp.MustCompile(`^\((.*)\)$`)
	nonNumRe    = regexp.MustCompile(`[^0-9.\-+eE]`)

	sentinelTokens = map[string]bool{
		"":     true,
		"na":   true,
		"n/a":  true,
		"null": true,
		"none": true,
		"nan":  true,
		"-":    true,
	}
)

// isSentinel reports whether the trimmed token is a conventional
// missing-data placeholder.
func isSentinel(s string) bool {
	return sentinelTokens[strings.ToLower(strings.TrimSpace(s))]
}

// parseNumeric converts one raw token to a float64. It strips currency
// symbols, thousands separators and spaces, turns parenthesis notation
// into a negative sign ("(1,200)" -> -1200) and divides trailing-percent
// values by 100. ok is false for sentinels and unparsable tokens.
func parseNumeric(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if isSentinel(s) {
		return 0, false
	}

	if m := parensNegRe.FindStringSubmatch(s); m != nil {
		s = "-" + m[1]
	}

	s = currencyRe.ReplaceAllString(s, "")

	isPct := strings.HasSuffix(s, "%")
	if isPct {
		s = strings.TrimSuffix(s, "%")
	}

	s = nonNumRe.ReplaceAllString(s, "")

	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if isPct {
		val /= 100.0
	}
	return val, true
}
