package aggregator

import (
	"math"
	"strconv"
	"strings"
)

// round2 rounds half away from zero to 2 decimals. Rounding works on the
// shortest decimal form of x, so 1.005 becomes 1.01 even though its binary
// value sits just below the half.
func round2(x float64) float64 {
	if x == 0 || math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	s := strconv.FormatFloat(math.Abs(x), 'f', -1, 64)
	whole, frac, _ := strings.Cut(s, ".")
	if len(frac) <= 2 {
		return x
	}

	// Any float with a fractional part is below 2^52, so 2 extra digits fit.
	n, err := strconv.ParseUint(whole+frac[:2], 10, 64)
	if err != nil {
		return math.Round(x*100) / 100
	}
	if frac[2] >= '5' {
		n++
	}
	v, err := strconv.ParseFloat(strconv.FormatUint(n, 10)+"e-2", 64)
	if err != nil {
		return math.Round(x*100) / 100
	}
	if v == 0 {
		return 0
	}
	if x < 0 {
		return -v
	}
	return v
}
