package preprocess

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"goetl/domain/core"
)

// NumericStrategy selects how missing numerical cells are filled
type NumericStrategy string

const (
	NumericMean     NumericStrategy = "mean"
	NumericMedian   NumericStrategy = "median"
	NumericConstant NumericStrategy = "constant"
)

// CategoricalStrategy selects how missing categorical cells are filled
type CategoricalStrategy string

const (
	CategoricalMostFrequent CategoricalStrategy = "most_frequent"
	CategoricalConstant     CategoricalStrategy = "constant"
)

// UnknownPolicy decides what the encoder does with a category it was not fitted on
type UnknownPolicy string

const (
	UnknownIgnore UnknownPolicy = "ignore"
	UnknownError  UnknownPolicy = "error"
)

// DefaultExcludedColumns are the identity-like free-text fields of a listings export
var DefaultExcludedColumns = []string{"name", "host_name"}

// Options parameterizes the two-branch pipeline
type Options struct {
	ExcludedColumns     []string            `json:"excluded_columns"`
	NumericStrategy     NumericStrategy     `json:"numeric_impute_strategy"`
	NumericFill         float64             `json:"numeric_fill_value"`
	CategoricalStrategy CategoricalStrategy `json:"categorical_impute_strategy"`
	CategoricalFill     string              `json:"categorical_fill_value"`
	UnknownCategories   UnknownPolicy       `json:"unknown_category_policy"`
}

// DefaultOptions is the listings preprocessing setup:
// mean / most-frequent imputation, unknown categories ignored.
func DefaultOptions() Options {
	return Options{
		ExcludedColumns:     append([]string(nil), DefaultExcludedColumns...),
		NumericStrategy:     NumericMean,
		NumericFill:         0,
		CategoricalStrategy: CategoricalMostFrequent,
		CategoricalFill:     "missing_value",
		UnknownCategories:   UnknownIgnore,
	}
}

// Validate rejects unsupported strategies and policies
func (o Options) Validate() error {
	switch o.NumericStrategy {
	case NumericMean, NumericMedian, NumericConstant:
	default:
		return core.NewConfigError("numeric_impute_strategy", fmt.Sprintf("unsupported value %q (want mean|median|constant)", o.NumericStrategy))
	}
	switch o.CategoricalStrategy {
	case CategoricalMostFrequent, CategoricalConstant:
	default:
		return core.NewConfigError("categorical_impute_strategy", fmt.Sprintf("unsupported value %q (want most_frequent|constant)", o.CategoricalStrategy))
	}
	switch o.UnknownCategories {
	case UnknownIgnore, UnknownError:
	default:
		return core.NewConfigError("unknown_category_policy", fmt.Sprintf("unsupported value %q (want ignore|error)", o.UnknownCategories))
	}
	if o.NumericStrategy == NumericConstant && (math.IsNaN(o.NumericFill) || math.IsInf(o.NumericFill, 0)) {
		return core.NewConfigError("numeric_fill_value", "must be finite")
	}
	return nil
}

// Settings flattens the options for fingerprinting
func (o Options) Settings() map[string]string {
	excluded := append([]string(nil), o.ExcludedColumns...)
	sort.Strings(excluded)
	return map[string]string{
		"excluded_columns":            strings.Join(excluded, ","),
		"numeric_impute_strategy":     string(o.NumericStrategy),
		"numeric_fill_value":          strconv.FormatFloat(o.NumericFill, 'g', -1, 64),
		"categorical_impute_strategy": string(o.CategoricalStrategy),
		"categorical_fill_value":      o.CategoricalFill,
		"unknown_category_policy":     string(o.UnknownCategories),
	}
}

func (o Options) excludedSet() map[string]bool {
	set := make(map[string]bool, len(o.ExcludedColumns))
	for _, name := range o.ExcludedColumns {
		set[name] = true
	}
	return set
}
