package preprocess

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"

	"goetl/domain/core"
)

// StandardScaler centers a column on its mean and divides by its population
// standard deviation. A constant column keeps Scale = 1.
type StandardScaler struct {
	Mean  float64 `json:"mean"`
	Scale float64 `json:"scale"`
}

// zeroScaleTolerance treats near-zero deviations as constant columns
const zeroScaleTolerance = 10 * 2.220446049250313e-16

// FitStandardScaler learns mean and scale from fully imputed values
func FitStandardScaler(column string, values []float64) (StandardScaler, error) {
	mean, err := stats.Mean(values)
	if err != nil {
		return StandardScaler{}, core.NewTransformError(column, core.ErrTransform, err.Error())
	}
	std, err := stats.StandardDeviationPopulation(values)
	if err != nil {
		return StandardScaler{}, core.NewTransformError(column, core.ErrTransform, err.Error())
	}
	if math.IsInf(mean, 0) || math.IsNaN(mean) || math.IsInf(std, 0) || math.IsNaN(std) {
		return StandardScaler{}, core.NewTransformError(column, core.ErrNonFiniteValue, "scaling statistics overflowed")
	}

	scale := std
	if scale < zeroScaleTolerance {
		scale = 1
	}
	return StandardScaler{Mean: mean, Scale: scale}, nil
}

// Apply scales values in place
func (s StandardScaler) Apply(values []float64) {
	floats.AddConst(-s.Mean, values)
	floats.Scale(1/s.Scale, values)
}
