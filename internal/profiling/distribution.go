package profiling

import (
	"math"

	"github.com/montanaflynn/stats"
)

// Summary holds the descriptive statistics of a numerical column
type Summary struct {
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Median   float64 `json:"median"`
	Q25      float64 `json:"q25"`
	Q75      float64 `json:"q75"`
	Skewness float64 `json:"skewness"`
}

// DistributionAnalyzer handles distribution shape analysis
type DistributionAnalyzer struct{}

// NewDistributionAnalyzer creates a new distribution analyzer
func NewDistributionAnalyzer() *DistributionAnalyzer {
	return &DistributionAnalyzer{}
}

// Summarize computes summary statistics over observed values
func (da *DistributionAnalyzer) Summarize(data []float64) (Summary, error) {
	var s Summary
	var err error

	if s.Mean, err = stats.Mean(data); err != nil {
		return s, err
	}
	if s.StdDev, err = stats.StandardDeviationSample(data); err != nil {
		return s, err
	}
	if s.Min, err = stats.Min(data); err != nil {
		return s, err
	}
	if s.Max, err = stats.Max(data); err != nil {
		return s, err
	}
	if s.Median, err = stats.Median(data); err != nil {
		return s, err
	}
	s.Q25, s.Q75 = quartiles(data, s.Median)
	if math.IsNaN(s.StdDev) {
		s.StdDev = 0
	}

	s.Skewness = calculateSkewness(data, s.Mean, s.StdDev)
	return s, nil
}

// quartiles returns the first and third quartiles as medians of the lower and
// upper halves; a single observation is its own quartile
func quartiles(data []float64, median float64) (float64, float64) {
	if len(data) < 2 {
		return median, median
	}
	q, err := stats.Quartile(data)
	if err != nil {
		return median, median
	}
	return q.Q1, q.Q3
}

// calculateSkewness computes sample skewness using the adjusted Fisher-Pearson coefficient
func calculateSkewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	sumCubedDeviations := 0.0

	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumCubedDeviations += deviation * deviation * deviation
	}

	skewness := sumCubedDeviations / n

	// Bias correction for sample skewness
	correction := math.Sqrt(n*(n-1)) / (n - 2)
	return skewness * correction
}
