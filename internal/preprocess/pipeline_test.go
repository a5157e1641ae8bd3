package preprocess

import (
	"bytes"
	"fmt"
	"math"
	"runtime"
	"testing"

	"github.com/montanaflynn/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goetl/domain/core"
	"goetl/domain/dataset"
	"goetl/internal"
)

func quietPipeline(opts Options) (*Pipeline, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewPipeline(opts, internal.NewLoggerTo(&buf, internal.LogLevelInfo)), &buf
}

func listingsExample(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New(
		dataset.NewNumericColumn("price", []float64{100, 200, math.NaN()}),
		dataset.NewStringColumn("room_type", []string{"private", "shared", "private"}, nil),
		dataset.NewStringColumn("name", []string{"A", "B", "C"}, nil),
	)
	require.NoError(t, err)
	return ds
}

func TestTransform_ListingsExample(t *testing.T) {
	p, logs := quietPipeline(DefaultOptions())

	out, fitted, err := p.FitTransform(listingsExample(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"price", "room_type_private", "room_type_shared"}, out.Names())
	assert.Equal(t, 3, out.Rows())
	assert.InDelta(t, 150.0, fitted.Numerical[0].Fill, 1e-12)

	price, _ := out.Column("price")
	want := 50 / math.Sqrt(5000.0/3.0)
	assert.InDelta(t, -want, price.Numbers[0], 1e-9)
	assert.InDelta(t, want, price.Numbers[1], 1e-9)
	assert.InDelta(t, 0.0, price.Numbers[2], 1e-9)

	private, _ := out.Column("room_type_private")
	shared, _ := out.Column("room_type_shared")
	assert.Equal(t, []float64{1, 0, 1}, private.Numbers)
	assert.Equal(t, []float64{0, 1, 0}, shared.Numbers)

	assert.Contains(t, logs.String(), "Numerical Features: [price]")
	assert.Contains(t, logs.String(), "Categorical Features (Processed): [room_type]")
	assert.Contains(t, logs.String(), "Output shape: (3, 3)")
}

func TestTransform_EmptyInput(t *testing.T) {
	p, _ := quietPipeline(DefaultOptions())

	headerOnly, err := dataset.New(
		dataset.NewNumericColumn("price", []float64{}),
		dataset.NewStringColumn("room_type", []string{}, nil),
	)
	require.NoError(t, err)

	_, err = p.Transform(headerOnly)
	assert.ErrorIs(t, err, core.ErrEmptyInput)

	_, err = p.Transform(&dataset.Dataset{})
	assert.ErrorIs(t, err, core.ErrEmptyInput)
}

func TestTransform_OnlyExcludedColumns(t *testing.T) {
	p, _ := quietPipeline(DefaultOptions())
	ds, err := dataset.New(
		dataset.NewStringColumn("name", []string{"Cozy loft"}, nil),
		dataset.NewStringColumn("host_name", []string{"Ana"}, nil),
	)
	require.NoError(t, err)

	_, err = p.Transform(ds)
	assert.ErrorIs(t, err, core.ErrNoUsableColumns)
}

func TestTransform_ExcludedNumericColumnNeverAppears(t *testing.T) {
	p, _ := quietPipeline(DefaultOptions())
	ds, err := dataset.New(
		dataset.NewNumericColumn("name", []float64{1, 2, 3}),
		dataset.NewStringColumn("host_name", []string{"x", "y", "x"}, nil),
		dataset.NewNumericColumn("minimum_nights", []float64{1, 3, 30}),
	)
	require.NoError(t, err)

	out, err := p.Transform(ds)
	require.NoError(t, err)
	for _, name := range out.Names() {
		assert.NotContains(t, name, "name")
	}
	assert.Equal(t, []string{"minimum_nights"}, out.Names())
}

func TestTransform_ScaledColumnsHaveZeroMeanUnitStd(t *testing.T) {
	p, _ := quietPipeline(DefaultOptions())
	ds, err := dataset.New(
		dataset.NewNumericColumn("price", []float64{149, 225, math.NaN(), 89, 80, 200, 60, math.NaN(), 79, 150}),
		dataset.NewNumericColumn("reviews_per_month", []float64{0.21, 0.38, math.NaN(), 4.64, 0.1, 0.59, 0.4, 3.47, 0.99, 1.33}),
	)
	require.NoError(t, err)

	out, err := p.Transform(ds)
	require.NoError(t, err)

	for _, col := range out.Columns {
		mean, err := stats.Mean(col.Numbers)
		require.NoError(t, err)
		std, err := stats.StandardDeviationPopulation(col.Numbers)
		require.NoError(t, err)
		assert.InDelta(t, 0.0, mean, 1e-9, col.Name)
		assert.InDelta(t, 1.0, std, 1e-9, col.Name)
	}
}

func TestTransform_ShapeLaw(t *testing.T) {
	p, _ := quietPipeline(DefaultOptions())
	ds, err := dataset.New(
		dataset.NewNumericColumn("latitude", []float64{40.64, 40.75, 40.80, 40.68}),
		dataset.NewStringColumn("neighbourhood_group", []string{"Brooklyn", "Manhattan", "Manhattan", ""}, []bool{false, false, false, true}),
		dataset.NewStringColumn("room_type", []string{"Private room", "Entire home/apt", "Shared room", "Private room"}, nil),
		dataset.NewStringColumn("name", []string{"a", "b", "c", "d"}, nil),
	)
	require.NoError(t, err)

	out, fitted, err := p.FitTransform(ds)
	require.NoError(t, err)

	group, _ := ds.Column("neighbourhood_group")
	roomType, _ := ds.Column("room_type")
	expectedCols := 1 + group.Distinct() + roomType.Distinct()

	assert.Equal(t, expectedCols, out.Cols())
	assert.Equal(t, ds.Rows(), out.Rows())
	assert.Equal(t, []string{"Brooklyn", "Manhattan"}, fitted.Categorical[0].Encoder.Categories)
	assert.Equal(t, "Manhattan", fitted.Categorical[0].Fill)

	// every row sets exactly one indicator per source column
	for i := 0; i < out.Rows(); i++ {
		sum := 0.0
		for _, name := range []string{"room_type_Entire home/apt", "room_type_Private room", "room_type_Shared room"} {
			col, ok := out.Column(name)
			require.True(t, ok, name)
			sum += col.Numbers[i]
		}
		assert.Equal(t, 1.0, sum)
	}
}

func TestTransform_IsDeterministic(t *testing.T) {
	p, _ := quietPipeline(DefaultOptions())

	first, err := p.Transform(listingsExample(t))
	require.NoError(t, err)
	second, err := p.Transform(listingsExample(t))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestTransform_Failures(t *testing.T) {
	tests := []struct {
		name string
		ds   func(t *testing.T) *dataset.Dataset
		kind error
	}{
		{
			name: "infinite value",
			ds: func(t *testing.T) *dataset.Dataset {
				ds, err := dataset.New(dataset.NewNumericColumn("price", []float64{1, math.Inf(1)}))
				require.NoError(t, err)
				return ds
			},
			kind: core.ErrNonFiniteValue,
		},
		{
			name: "nothing to impute",
			ds: func(t *testing.T) *dataset.Dataset {
				ds, err := dataset.New(dataset.NewNumericColumn("last_review", []float64{math.NaN(), math.NaN()}))
				require.NoError(t, err)
				return ds
			},
			kind: core.ErrNothingToImpute,
		},
		{
			name: "overflowing statistics",
			ds: func(t *testing.T) *dataset.Dataset {
				ds, err := dataset.New(dataset.NewNumericColumn("price", []float64{math.MaxFloat64, math.MaxFloat64}))
				require.NoError(t, err)
				return ds
			},
			kind: core.ErrNonFiniteValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, logs := quietPipeline(DefaultOptions())
			_, err := p.Transform(tt.ds(t))
			assert.ErrorIs(t, err, tt.kind)
			assert.ErrorIs(t, err, core.ErrTransform)
			assert.Contains(t, logs.String(), "Error during transformation")
		})
	}
}

func TestFittedApply_UnknownCategory(t *testing.T) {
	p, _ := quietPipeline(DefaultOptions())
	_, fitted, err := p.FitTransform(listingsExample(t))
	require.NoError(t, err)

	fresh, err := dataset.New(
		dataset.NewNumericColumn("price", []float64{150}),
		dataset.NewStringColumn("room_type", []string{"hotel"}, nil),
	)
	require.NoError(t, err)

	out, err := fitted.ApplyWith(fresh, internal.NewLoggerTo(&bytes.Buffer{}, internal.LogLevelError))
	require.NoError(t, err)
	private, _ := out.Column("room_type_private")
	shared, _ := out.Column("room_type_shared")
	assert.Equal(t, []float64{0}, private.Numbers)
	assert.Equal(t, []float64{0}, shared.Numbers)

	fitted.Options.UnknownCategories = UnknownError
	_, err = fitted.ApplyWith(fresh, internal.NewLoggerTo(&bytes.Buffer{}, internal.LogLevelError))
	assert.ErrorIs(t, err, core.ErrUnknownCategory)
}

func TestFittedApply_SchemaMismatch(t *testing.T) {
	p, _ := quietPipeline(DefaultOptions())
	_, fitted, err := p.FitTransform(listingsExample(t))
	require.NoError(t, err)
	quiet := internal.NewLoggerTo(&bytes.Buffer{}, internal.LogLevelError)

	noPrice, err := dataset.New(dataset.NewStringColumn("room_type", []string{"private"}, nil))
	require.NoError(t, err)
	_, err = fitted.ApplyWith(noPrice, quiet)
	assert.ErrorIs(t, err, core.ErrMissingColumn)

	textPrice, err := dataset.New(
		dataset.NewStringColumn("price", []string{"cheap"}, nil),
		dataset.NewStringColumn("room_type", []string{"private"}, nil),
	)
	require.NoError(t, err)
	_, err = fitted.ApplyWith(textPrice, quiet)
	assert.ErrorIs(t, err, core.ErrIncompatibleType)
}

func TestFit_RejectsInvalidOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.NumericStrategy = "mode"
	p, _ := quietPipeline(opts)

	_, err := p.Fit(listingsExample(t))
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}

func TestFittedApply_BuildsOutputColumnsOnce(t *testing.T) {
	const rows, categories = 2000, 200
	values := make([]string, rows)
	for i := range values {
		values[i] = fmt.Sprintf("2019-%03d", i%categories)
	}
	ds, err := dataset.New(dataset.NewStringColumn("last_review", values, nil))
	require.NoError(t, err)

	p, _ := quietPipeline(DefaultOptions())
	fitted, err := p.Fit(ds)
	require.NoError(t, err)

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	out, err := fitted.ApplyWith(ds, p.logger)
	runtime.ReadMemStats(&after)
	require.NoError(t, err)
	require.Equal(t, dataset.Shape{Rows: rows, Cols: categories}, out.Shape())

	outputBytes := uint64(rows * categories * 8)
	allocated := after.TotalAlloc - before.TotalAlloc
	assert.Less(t, allocated, outputBytes*8/5, "apply allocated %d bytes for %d bytes of output", allocated, outputBytes)
}
