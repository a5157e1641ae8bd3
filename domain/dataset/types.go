package dataset

import (
	"fmt"
	"math"
)

// ColumnType is the inferred storage type of a column
type ColumnType string

const (
	ColumnNumeric ColumnType = "numeric"
	ColumnString  ColumnType = "string"
)

// Column is one named, typed column of a Dataset.
// Numeric columns keep their values in Numbers, string columns in Strings.
// Missing marks absent cells for both kinds.
type Column struct {
	Name    string     `json:"name"`
	Type    ColumnType `json:"type"`
	Numbers []float64  `json:"numbers,omitempty"`
	Strings []string   `json:"strings,omitempty"`
	Missing []bool     `json:"missing"`
}

// NewNumericColumn builds a numeric column; NaN entries are recorded as missing
func NewNumericColumn(name string, values []float64) *Column {
	missing := make([]bool, len(values))
	for i, v := range values {
		missing[i] = math.IsNaN(v)
	}
	return &Column{Name: name, Type: ColumnNumeric, Numbers: values, Missing: missing}
}

// NewStringColumn builds a string column. A nil missing slice means fully observed.
func NewStringColumn(name string, values []string, missing []bool) *Column {
	if missing == nil {
		missing = make([]bool, len(values))
	}
	return &Column{Name: name, Type: ColumnString, Strings: values, Missing: missing}
}

// Len returns the number of cells in the column
func (c *Column) Len() int {
	return len(c.Missing)
}

// IsNumeric reports whether the column holds numbers
func (c *Column) IsNumeric() bool {
	return c.Type == ColumnNumeric
}

// IsMissing reports whether row i has no value
func (c *Column) IsMissing(i int) bool {
	return c.Missing[i]
}

// MissingCount counts the absent cells
func (c *Column) MissingCount() int {
	n := 0
	for _, m := range c.Missing {
		if m {
			n++
		}
	}
	return n
}

// ObservedNumbers returns the non-missing values of a numeric column
func (c *Column) ObservedNumbers() []float64 {
	out := make([]float64, 0, len(c.Numbers))
	for i, v := range c.Numbers {
		if !c.Missing[i] {
			out = append(out, v)
		}
	}
	return out
}

// ObservedStrings returns the non-missing values of a string column
func (c *Column) ObservedStrings() []string {
	out := make([]string, 0, len(c.Strings))
	for i, v := range c.Strings {
		if !c.Missing[i] {
			out = append(out, v)
		}
	}
	return out
}

// Distinct returns the number of distinct observed values
func (c *Column) Distinct() int {
	seen := make(map[string]struct{})
	for i := 0; i < c.Len(); i++ {
		if c.Missing[i] {
			continue
		}
		if c.IsNumeric() {
			seen[fmt.Sprint(c.Numbers[i])] = struct{}{}
		} else {
			seen[c.Strings[i]] = struct{}{}
		}
	}
	return len(seen)
}

func (c *Column) validate() error {
	switch c.Type {
	case ColumnNumeric:
		if len(c.Numbers) != len(c.Missing) {
			return fmt.Errorf("column %q: %d values but %d missing flags", c.Name, len(c.Numbers), len(c.Missing))
		}
	case ColumnString:
		if len(c.Strings) != len(c.Missing) {
			return fmt.Errorf("column %q: %d values but %d missing flags", c.Name, len(c.Strings), len(c.Missing))
		}
	default:
		return fmt.Errorf("column %q: unknown type %q", c.Name, c.Type)
	}
	return nil
}

// Shape is the (rows, columns) size of a Dataset
type Shape struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

func (s Shape) String() string {
	return fmt.Sprintf("(%d, %d)", s.Rows, s.Cols)
}

// Dataset is an ordered sequence of equally long named columns
type Dataset struct {
	Columns []*Column `json:"columns"`
}

// New assembles a Dataset and checks its invariants
func New(columns ...*Column) (*Dataset, error) {
	ds := &Dataset{Columns: columns}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

// Validate checks that names are unique and all columns have the same length
func (d *Dataset) Validate() error {
	names := make(map[string]bool, len(d.Columns))
	for _, col := range d.Columns {
		if err := col.validate(); err != nil {
			return err
		}
		if names[col.Name] {
			return fmt.Errorf("duplicate column name %q", col.Name)
		}
		names[col.Name] = true
		if col.Len() != d.Rows() {
			return fmt.Errorf("column %q has %d rows, expected %d", col.Name, col.Len(), d.Rows())
		}
	}
	return nil
}

// Rows returns the row count
func (d *Dataset) Rows() int {
	if len(d.Columns) == 0 {
		return 0
	}
	return d.Columns[0].Len()
}

// Cols returns the column count
func (d *Dataset) Cols() int {
	return len(d.Columns)
}

// Shape returns rows and columns together
func (d *Dataset) Shape() Shape {
	return Shape{Rows: d.Rows(), Cols: d.Cols()}
}

// IsEmpty reports whether there is not at least one row and one column
func (d *Dataset) IsEmpty() bool {
	return d == nil || d.Rows() == 0 || d.Cols() == 0
}

// Names returns the column names in order
func (d *Dataset) Names() []string {
	names := make([]string, len(d.Columns))
	for i, col := range d.Columns {
		names[i] = col.Name
	}
	return names
}

// Column looks up a column by name
func (d *Dataset) Column(name string) (*Column, bool) {
	for _, col := range d.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return nil, false
}
