package preprocess

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"goetl/domain/core"
	"goetl/domain/dataset"
)

// fitNumericFill computes the value used for missing numerical cells
func fitNumericFill(column string, strategy NumericStrategy, constant float64, observed []float64) (float64, error) {
	if strategy == NumericConstant {
		return constant, nil
	}
	if len(observed) == 0 {
		return 0, core.NewTransformError(column, core.ErrNothingToImpute, "cannot compute "+string(strategy))
	}

	var fill float64
	var err error
	switch strategy {
	case NumericMedian:
		fill, err = stats.Median(observed)
	default:
		fill, err = stats.Mean(observed)
	}
	if err != nil {
		return 0, core.NewTransformError(column, core.ErrTransform, err.Error())
	}
	if math.IsInf(fill, 0) || math.IsNaN(fill) {
		return 0, core.NewTransformError(column, core.ErrNonFiniteValue, "imputation statistic overflowed")
	}
	return fill, nil
}

// fitCategoricalFill picks the most frequent observed value. Ties go to the
// smallest value in byte order.
func fitCategoricalFill(strategy CategoricalStrategy, constant string, observed []string) string {
	if strategy == CategoricalConstant || len(observed) == 0 {
		return constant
	}

	counts := make(map[string]int)
	for _, v := range observed {
		counts[v]++
	}
	values := make([]string, 0, len(counts))
	for v := range counts {
		values = append(values, v)
	}
	sort.Strings(values)

	best := values[0]
	for _, v := range values[1:] {
		if counts[v] > counts[best] {
			best = v
		}
	}
	return best
}

// imputeNumbers returns a copy of the column's numbers with gaps filled
func imputeNumbers(col *dataset.Column, fill float64) []float64 {
	out := make([]float64, col.Len())
	for i := range out {
		if col.IsMissing(i) {
			out[i] = fill
		} else {
			out[i] = col.Numbers[i]
		}
	}
	return out
}

// imputeStrings returns a copy of the column's values with gaps filled
func imputeStrings(values []string, missing []bool, fill string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		if missing[i] {
			out[i] = fill
		} else {
			out[i] = v
		}
	}
	return out
}
