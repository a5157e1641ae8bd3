package profiling

import (
	"sort"

	"goetl/domain/dataset"
	"goetl/internal/preprocess"
)

// Role is how the preprocessing pipeline will treat a column
type Role string

const (
	RoleNumerical   Role = "numerical"
	RoleCategorical Role = "categorical"
	RoleExcluded    Role = "excluded"
)

// ValueCount is one category and how often it occurs
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// ColumnProfile describes one input column
type ColumnProfile struct {
	Name      string             `json:"name"`
	Type      dataset.ColumnType `json:"type"`
	Role      Role               `json:"role"`
	Count     int                `json:"count"`
	Missing   int                `json:"missing"`
	Distinct  int                `json:"distinct"`
	Summary   *Summary           `json:"summary,omitempty"`
	TopValues []ValueCount       `json:"top_values,omitempty"`
}

// DataProfiler profiles the columns of a dataset
type DataProfiler struct {
	analyzer *DistributionAnalyzer
	topN     int
}

// NewDataProfiler creates a profiler reporting the topN most frequent categories
func NewDataProfiler(topN int) *DataProfiler {
	return &DataProfiler{analyzer: NewDistributionAnalyzer(), topN: topN}
}

// ProfileDataset profiles every column in order, with the role the
// preprocessing pipeline assigns it for the given exclusions. A dataset with
// no usable columns is still profiled.
func (dp *DataProfiler) ProfileDataset(ds *dataset.Dataset, excluded []string) []ColumnProfile {
	classes, _ := preprocess.Classify(ds, excluded)
	roles := make(map[string]Role, ds.Cols())
	for _, name := range classes.Numerical {
		roles[name] = RoleNumerical
	}
	for _, name := range classes.Categorical {
		roles[name] = RoleCategorical
	}
	for _, name := range classes.Excluded {
		roles[name] = RoleExcluded
	}

	profiles := make([]ColumnProfile, 0, ds.Cols())
	for _, col := range ds.Columns {
		profile := dp.ProfileColumn(col)
		if role, ok := roles[col.Name]; ok {
			profile.Role = role
		}
		profiles = append(profiles, profile)
	}
	return profiles
}

// ProfileColumn computes counts and, for numerical columns, summary statistics
func (dp *DataProfiler) ProfileColumn(col *dataset.Column) ColumnProfile {
	profile := ColumnProfile{
		Name:     col.Name,
		Type:     col.Type,
		Role:     RoleCategorical,
		Count:    col.Len(),
		Missing:  col.MissingCount(),
		Distinct: col.Distinct(),
	}

	if col.IsNumeric() {
		profile.Role = RoleNumerical
		if observed := col.ObservedNumbers(); len(observed) > 0 {
			if summary, err := dp.analyzer.Summarize(observed); err == nil {
				profile.Summary = &summary
			}
		}
		return profile
	}

	profile.TopValues = topValues(col.ObservedStrings(), dp.topN)
	return profile
}

// topValues returns the n most frequent values, ties broken by value
func topValues(values []string, n int) []ValueCount {
	counts := make(map[string]int)
	for _, v := range values {
		counts[v]++
	}
	out := make([]ValueCount, 0, len(counts))
	for v, c := range counts {
		out = append(out, ValueCount{Value: v, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
