package dataset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNumericColumnMarksNaNMissing(t *testing.T) {
	col := NewNumericColumn("price", []float64{100, 200, math.NaN()})

	assert.Equal(t, 3, col.Len())
	assert.True(t, col.IsNumeric())
	assert.True(t, col.IsMissing(2))
	assert.Equal(t, 1, col.MissingCount())
	assert.Equal(t, []float64{100, 200}, col.ObservedNumbers())
}

func TestStringColumnObservedAndDistinct(t *testing.T) {
	col := NewStringColumn("room_type",
		[]string{"private", "shared", "", "private"},
		[]bool{false, false, true, false})

	assert.Equal(t, []string{"private", "shared", "private"}, col.ObservedStrings())
	assert.Equal(t, 2, col.Distinct())
}

func TestNewValidatesShape(t *testing.T) {
	_, err := New(
		NewNumericColumn("a", []float64{1, 2}),
		NewNumericColumn("b", []float64{1}),
	)
	assert.Error(t, err)

	_, err = New(
		NewNumericColumn("a", []float64{1}),
		NewStringColumn("a", []string{"x"}, nil),
	)
	assert.ErrorContains(t, err, "duplicate")

	ds, err := New(
		NewNumericColumn("a", []float64{1, 2}),
		NewStringColumn("b", []string{"x", "y"}, nil),
	)
	require.NoError(t, err)
	assert.Equal(t, Shape{Rows: 2, Cols: 2}, ds.Shape())
	assert.Equal(t, "(2, 2)", ds.Shape().String())
	assert.Equal(t, []string{"a", "b"}, ds.Names())

	col, ok := ds.Column("b")
	require.True(t, ok)
	assert.False(t, col.IsNumeric())
}

func TestIsEmpty(t *testing.T) {
	var nilDS *Dataset
	assert.True(t, nilDS.IsEmpty())

	noCols, err := New()
	require.NoError(t, err)
	assert.True(t, noCols.IsEmpty())

	noRows, err := New(NewStringColumn("name", []string{}, nil))
	require.NoError(t, err)
	assert.True(t, noRows.IsEmpty())
	assert.Equal(t, 1, noRows.Cols())
}
