package chart

import (
	"math"
	"strconv"
	"strings"
)

var siPrefixes = []string{"y", "z", "a", "f", "p", "n", "µ", "m", "", "k", "M", "G", "T", "P", "E", "Z", "Y"}

// formatSI formats v with two significant digits and an SI prefix, e.g. 1500 as "1.5k"
// and 0 as "0.0".
func formatSI(v float64) string {
	const precision = 2

	if v == 0 {
		return "0." + strings.Repeat("0", precision-1)
	}

	sign := ""
	if v < 0 {
		sign = "−"
		v = -v
	}

	// 1.5e+03 -> digits "15", exponent 3
	exp := strconv.FormatFloat(v, 'e', precision-1, 64)
	mantissa, expText, _ := strings.Cut(exp, "e")
	digits := strings.Replace(mantissa, ".", "", 1)
	exponent, _ := strconv.Atoi(expText)

	prefixExp := int(math.Max(-8, math.Min(8, math.Floor(float64(exponent)/3)))) * 3
	i := exponent - prefixExp + 1
	n := len(digits)

	var coefficient string
	switch {
	case i == n:
		coefficient = digits
	case i > n:
		coefficient = digits + strings.Repeat("0", i-n)
	case i > 0:
		coefficient = digits[:i] + "." + digits[i:]
	default:
		coefficient = "0." + strings.Repeat("0", -i) + digits
	}

	return sign + coefficient + siPrefixes[8+prefixExp/3]
}

// formatRate rounds to two decimals and drops trailing zeros, e.g. 2.50 as "2.5"
func formatRate(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

// formatFixed2 always prints two decimals
func formatFixed2(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// formatNumber prints a pixel coordinate compactly for SVG output
func formatNumber(v float64) string {
	return strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
}
