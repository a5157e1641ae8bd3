package preprocess

import (
	"goetl/domain/core"
	"goetl/domain/dataset"
)

// Classification partitions the columns of a dataset. Every column lands in
// exactly one list, and each list keeps the dataset's column order.
type Classification struct {
	Numerical   []string `json:"numerical"`
	Categorical []string `json:"categorical"`
	Excluded    []string `json:"excluded"`
}

// Classify splits columns into numerical, encodable categorical and excluded.
// Excluded names win over the inferred type, so an identity-like column is
// dropped even when its values happen to parse as numbers.
func Classify(ds *dataset.Dataset, excluded []string) (Classification, error) {
	skip := Options{ExcludedColumns: excluded}.excludedSet()

	var c Classification
	for _, col := range ds.Columns {
		switch {
		case skip[col.Name]:
			c.Excluded = append(c.Excluded, col.Name)
		case col.IsNumeric():
			c.Numerical = append(c.Numerical, col.Name)
		default:
			c.Categorical = append(c.Categorical, col.Name)
		}
	}

	if len(c.Numerical) == 0 && len(c.Categorical) == 0 {
		return c, core.ErrNoUsableColumns
	}
	return c, nil
}
