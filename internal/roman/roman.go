// Package roman converts integers to Roman numerals.
//
// Only the classic range 1..3999 is supported. Larger values would need
// overline notation (a bar over a numeral multiplies it by 1000), which
// has no plain-ASCII spelling.
package roman

import (
	"errors"
	"fmt"
	"strings"
)

// Min and Max bound the values ToRoman accepts.
const (
	Min = 1
	Max = 3999
)

// ErrOutOfRange is returned for values outside Min..Max.
var ErrOutOfRange = errors.New("number out of range 1..3999")

// numerals is ordered from the largest value down. The subtractive pairs
// (CM, CD, XC, XL, IX, IV) sit next to their neighbours so a greedy walk
// never has to look ahead.
var numerals = []struct {
	value  int
	symbol string
}{
	{1000, "M"},
	{900, "CM"},
	{500, "D"},
	{400, "CD"},
	{100, "C"},
	{90, "XC"},
	{50, "L"},
	{40, "XL"},
	{10, "X"},
	{9, "IX"},
	{5, "V"},
	{4, "IV"},
	{1, "I"},
}

// ToRoman returns the Roman numeral spelling of n.
//
//	ToRoman(15)   // "XV"
//	ToRoman(3999) // "MMMCMXCIX"
func ToRoman(n int) (string, error) {
	if n < Min || n > Max {
		return "", fmt.Errorf("ToRoman(%d): %w", n, ErrOutOfRange)
	}

	var sb strings.Builder
	for _, num := range numerals {
		// keep taking the current symbol while it still fits
		for n >= num.value {
			sb.WriteString(num.symbol)
			n -= num.value
		}
	}

	return sb.String(), nil
}
