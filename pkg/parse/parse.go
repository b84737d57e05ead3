package parse

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"
)

var ErrNotANumber = errors.New("not a number")

// Int reads the leading integer of s. Leading whitespace and an optional sign
// are skipped, a 0x prefix switches to base 16, and anything after the first
// non-digit is ignored ("12abc" is 12, "3.7" is 3). When no digit is found the
// result is NaN along with ErrNotANumber.
func Int(s string) (float64, error) {
	str := strings.TrimLeftFunc(s, unicode.IsSpace)
	sign := 1.0
	if str != "" && (str[0] == '-' || str[0] == '+') {
		if str[0] == '-' {
			sign = -1.0
		}
		str = str[1:]
	}

	base := 10
	if len(str) > 1 && str[0] == '0' && (str[1] == 'x' || str[1] == 'X') {
		base = 16
		str = str[2:]
	}

	n := 0.0
	digits := 0
	for _, r := range str {
		d := digit(r)
		if d < 0 || d >= base {
			break
		}
		n = n*float64(base) + float64(d)
		digits++
	}
	if digits == 0 {
		return math.NaN(), fmt.Errorf("%q: %w", s, ErrNotANumber)
	}
	return sign * n, nil
}

// Value applies the same coercion to a number that Int applies to its string
// form: finite values are truncated, everything else is NaN.
func Value(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return math.NaN()
	}
	return math.Trunc(v)
}

// Split breaks a comma separated field into its raw values. An empty field
// yields a single empty value.
func Split(field string) []string {
	return strings.Split(field, ",")
}

func digit(r rune) int {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0')
	case r >= 'a' && r <= 'z':
		return int(r-'a') + 10
	case r >= 'A' && r <= 'Z':
		return int(r-'A') + 10
	}
	return -1
}
