package tabular

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goetl/domain/core"
	"goetl/domain/dataset"
)

func sampleOutput(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New(
		dataset.NewNumericColumn("price", []float64{-1.224744871391589, 1.224744871391589, 0}),
		dataset.NewNumericColumn("room_type_private", []float64{1, 0, 1}),
		dataset.NewNumericColumn("room_type_shared", []float64{0, 1, 0}),
	)
	require.NoError(t, err)
	return ds
}

func TestWrite_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed_data.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale content that is longer than the output will be, padding padding padding padding"), 0o644))

	require.NoError(t, NewDataWriter(quietLogger()).Write(context.Background(), sampleOutput(t), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"price,room_type_private,room_type_shared\n"+
			"-1.224744871391589,1.0,0.0\n"+
			"1.224744871391589,0.0,1.0\n"+
			"0.0,1.0,0.0\n",
		string(data))
}

func TestWrite_RoundTripsThroughReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	ds, err := dataset.New(
		dataset.NewNumericColumn("n", []float64{1.5, math.NaN()}),
		dataset.NewStringColumn("s", []string{"a, b", ""}, []bool{false, true}),
	)
	require.NoError(t, err)

	require.NoError(t, NewDataWriter(quietLogger()).Write(context.Background(), ds, path))
	back, err := NewDataReader(quietLogger()).Read(context.Background(), path)
	require.NoError(t, err)

	n, _ := back.Column("n")
	s, _ := back.Column("s")
	assert.Equal(t, 1.5, n.Numbers[0])
	assert.True(t, n.IsMissing(1))
	assert.Equal(t, "a, b", s.Strings[0])
	assert.True(t, s.IsMissing(1))
}

func TestWrite_Excel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed_data.xlsx")
	require.NoError(t, NewDataWriter(quietLogger()).Write(context.Background(), sampleOutput(t), path))

	back, err := NewDataReader(quietLogger()).Read(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"price", "room_type_private", "room_type_shared"}, back.Names())
	private, _ := back.Column("room_type_private")
	assert.Equal(t, []float64{1, 0, 1}, private.Numbers)
}

func TestWrite_Failure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no-such-dir", "out.csv")
	err := NewDataWriter(quietLogger()).Write(context.Background(), sampleOutput(t), path)
	assert.ErrorIs(t, err, core.ErrSave)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1, "1.0"},
		{0, "0.0"},
		{math.Copysign(0, -1), "-0.0"},
		{150, "150.0"},
		{-1.224744871391589, "-1.224744871391589"},
		{0.0001, "0.0001"},
		{0.00001, "1e-05"},
		{1e16, "1e+16"},
		{123456789012345.6, "123456789012345.6"},
		{math.Inf(1), "inf"},
		{math.NaN(), ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatFloat(tt.in), "%v", tt.in)
	}
}
