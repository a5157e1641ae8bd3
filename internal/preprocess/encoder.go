package preprocess

import (
	"fmt"
	"sort"

	"goetl/domain/core"
)

// OneHotEncoder expands a categorical column into one indicator per category.
// Categories are kept sorted so output columns are stable across runs.
type OneHotEncoder struct {
	Column     string   `json:"column"`
	Categories []string `json:"categories"`
}

// FitOneHotEncoder records the distinct values of a fully imputed column
func FitOneHotEncoder(column string, values []string) OneHotEncoder {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	categories := make([]string, 0, len(seen))
	for v := range seen {
		categories = append(categories, v)
	}
	sort.Strings(categories)
	return OneHotEncoder{Column: column, Categories: categories}
}

// FeatureNames returns <column>_<category> for each category
func (e OneHotEncoder) FeatureNames() []string {
	names := make([]string, len(e.Categories))
	for i, c := range e.Categories {
		names[i] = e.Column + "_" + c
	}
	return names
}

func (e OneHotEncoder) index(value string) (int, bool) {
	i := sort.SearchStrings(e.Categories, value)
	if i < len(e.Categories) && e.Categories[i] == value {
		return i, true
	}
	return 0, false
}

// Encode returns one indicator vector per category. A value outside the fitted
// categories yields an all-zero row under UnknownIgnore and an error under UnknownError.
func (e OneHotEncoder) Encode(values []string, policy UnknownPolicy) ([][]float64, error) {
	out := make([][]float64, len(e.Categories))
	for j := range out {
		out[j] = make([]float64, len(values))
	}

	for i, v := range values {
		j, ok := e.index(v)
		if !ok {
			if policy == UnknownError {
				return nil, core.NewTransformError(e.Column, core.ErrUnknownCategory, fmt.Sprintf("value %q in row %d", v, i))
			}
			continue
		}
		out[j][i] = 1
	}
	return out, nil
}
