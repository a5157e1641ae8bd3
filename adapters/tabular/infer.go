package tabular

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"goetl/domain/dataset"
)

// missingTokens are the cell spellings read as "no value"
var missingTokens = map[string]bool{
	"":         true,
	"#N/A":     true,
	"#N/A N/A": true,
	"#NA":      true,
	"-1.#IND":  true,
	"-1.#QNAN": true,
	"-NaN":     true,
	"-nan":     true,
	"1.#IND":   true,
	"1.#QNAN":  true,
	"<NA>":     true,
	"N/A":      true,
	"NA":       true,
	"NULL":     true,
	"NaN":      true,
	"None":     true,
	"n/a":      true,
	"nan":      true,
	"null":     true,
}

// IsMissingToken reports whether a trimmed cell denotes a missing value
func IsMissingToken(cell string) bool {
	return missingTokens[cell]
}

// ParseNumber parses a decimal or scientific literal. Out-of-range literals
// become ±Inf; hexadecimal forms are not accepted.
func ParseNumber(cell string) (float64, bool) {
	digits := strings.TrimLeft(cell, "+-")
	if len(digits) > 1 && digits[0] == '0' && (digits[1] == 'x' || digits[1] == 'X') {
		return 0, false
	}
	if strings.ContainsRune(cell, '_') {
		return 0, false
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return v, true
		}
		return 0, false
	}
	return v, true
}

// InferColumn types a column from its raw cells: numeric when every present
// cell parses as a number, string otherwise. Surrounding whitespace is ignored
// when detecting numbers and missing tokens, but string values keep it.
func InferColumn(name string, cells []string) *dataset.Column {
	missing := make([]bool, len(cells))
	numbers := make([]float64, len(cells))
	numeric := true

	for i, raw := range cells {
		cell := strings.TrimSpace(raw)
		if IsMissingToken(cell) {
			missing[i] = true
			numbers[i] = math.NaN()
			continue
		}
		if !numeric {
			continue
		}
		v, ok := ParseNumber(cell)
		if !ok {
			numeric = false
			continue
		}
		if math.IsNaN(v) {
			missing[i] = true
		}
		numbers[i] = v
	}

	if numeric {
		return &dataset.Column{Name: name, Type: dataset.ColumnNumeric, Numbers: numbers, Missing: missing}
	}

	strs := make([]string, len(cells))
	for i, raw := range cells {
		if !missing[i] {
			strs[i] = raw
		}
	}
	return dataset.NewStringColumn(name, strs, missing)
}
