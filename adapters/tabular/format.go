package tabular

import (
	"math"
	"strconv"
	"strings"

	"goetl/domain/dataset"
)

// FormatFloat renders a float the way pandas writes CSV: shortest
// round-trip digits, a trailing ".0" on integral values, and exponent form
// outside [1e-4, 1e16). NaN becomes an empty cell.
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return ""
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	case v == 0:
		if math.Signbit(v) {
			return "-0.0"
		}
		return "0.0"
	}

	abs := math.Abs(v)
	if abs >= 1e16 || abs < 1e-4 {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// cellText renders row i of a column for text output
func cellText(col *dataset.Column, i int) string {
	if col.IsMissing(i) {
		return ""
	}
	if col.IsNumeric() {
		return FormatFloat(col.Numbers[i])
	}
	return col.Strings[i]
}

// cellValue returns row i of a column as a spreadsheet value
func cellValue(col *dataset.Column, i int) interface{} {
	if col.IsMissing(i) {
		return nil
	}
	if col.IsNumeric() {
		return col.Numbers[i]
	}
	return col.Strings[i]
}
