package game

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
)

// ParseGuess reads an integer from the leading numeric prefix of raw.
//
// Leading whitespace is skipped, then an optional sign, then decimal digits;
// anything after the digits is ignored ("12abc" → 12, "1.9" → 1). It fails
// only when no digit follows the optional sign. Values outside the int range
// saturate to the nearest bound.
func ParseGuess(raw string) (int, bool) {
	s := strings.TrimLeftFunc(raw, unicode.IsSpace)

	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	start := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == start {
		return 0, false
	}

	// ParseInt returns the clamped bound alongside ErrRange on overflow.
	n, err := strconv.ParseInt(s[:i], 10, strconv.IntSize)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return int(n), true
}

