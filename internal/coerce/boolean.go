package coerce

import (
	"strings"
)

// Truthy/falsy vocabularies. Read-only after init.
var (
	truthyTokens = map[string]bool{
		"true": true, "t": true, "yes": true, "y": true, "1": true, "on": true,
	}
	falsyTokens = map[string]bool{
		"false": true, "f": true, "no": true, "n": true, "0": true, "off": true,
	}
)

// parseBool converts one raw token to a bool using the fixed vocabulary,
// case-insensitive and trimmed. Anything outside the vocabulary is a
// parse failure.
func parseBool(raw string) (bool, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if isSentinel(s) {
		return false, false
	}
	if truthyTokens[s] {
		return true, true
	}
	if falsyTokens[s] {
		return false, true
	}
	return false, false
}
