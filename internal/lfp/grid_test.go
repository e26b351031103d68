package lfp

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floodlink-io/floodlink/pkg/bmi"
)

func TestGridBeforeConfig(t *testing.T) {
	m, _ := newTestAdapter(t)
	_, err := m.Grid()
	assert.ErrorIs(t, err, bmi.ErrNotConfigured)
}

func TestGrid(t *testing.T) {
	m, _ := newConfiguredAdapter(t)

	g, err := m.Grid()
	require.NoError(t, err)
	assert.Equal(t, 3, g.Height)
	assert.Equal(t, 4, g.Width)

	// mask from DEM nodata
	assert.True(t, g.Mask[0])
	assert.False(t, g.Mask[1*4+3])
	assert.False(t, g.Mask[2*4+3])

	// channel nodes from positive SGCwidth samples, in row-major order
	require.True(t, g.Has1D())
	require.Len(t, g.Nodes(), 3)
	assert.Equal(t, [2]float64{125, 325}, g.Nodes()[0])
	assert.Equal(t, [2]float64{175, 275}, g.Nodes()[1])
	assert.Equal(t, [2]float64{225, 225}, g.Nodes()[2])
	assert.Equal(t, []int{0, 5, 10}, g.NodeIndices())
}

func TestGridCached(t *testing.T) {
	m, _ := newConfiguredAdapter(t)

	g1, err := m.Grid()
	require.NoError(t, err)
	g2, err := m.Grid()
	require.NoError(t, err)
	assert.Same(t, g1, g2)

	m.InvalidateGrid()
	g3, err := m.Grid()
	require.NoError(t, err)
	assert.NotSame(t, g1, g3)
}

func TestGridMissingDEM(t *testing.T) {
	m, _ := newTestAdapter(t)
	par := writeTestModel(t)
	require.NoError(t, os.Remove(filepath.Join(filepath.Dir(par), "dem.asc")))

	// config loads fine; only grid resolution needs the raster
	require.NoError(t, m.InitializeConfig(par, nil))
	_, err := m.Grid()
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestGridMissingWidthRaster(t *testing.T) {
	m, _ := newTestAdapter(t)
	par := writeTestModel(t)
	require.NoError(t, os.Remove(filepath.Join(filepath.Dir(par), "width.asc")))

	require.NoError(t, m.InitializeConfig(par, nil))
	_, err := m.Grid()
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
