package lfp

import (
	"path/filepath"

	"github.com/floodlink-io/floodlink/internal/raster"
	"github.com/floodlink-io/floodlink/pkg/rgrid"
)

// Grid returns the model grid, building it on first use and caching it
// for the adapter's lifetime. The DEM raster defines the rectangular grid
// and its cell validity mask (sample ≠ nodata); the SGCwidth raster
// defines the embedded 1-D channel network, one node per cell with a
// positive channel width. The DEM path resolves relative to the par-file
// directory and the SGCwidth path relative to the map directory the DEM
// lives in, never the caller's working directory.
func (m *LFP) Grid() (*rgrid.RGrid, error) {
	if m.grid != nil {
		return m.grid, nil
	}

	demFn, err := m.AttributeValue("DEMfile")
	if err != nil {
		return nil, err
	}
	demPath := resolve(demFn, m.root)
	m.logger.Info("building rgrid", "dem", filepath.Base(demPath))
	dem, err := raster.Open(demPath)
	if err != nil {
		return nil, err
	}

	sample := dem.Read()
	mask := make([]bool, len(sample.Elements))
	for i, v := range sample.Elements {
		mask[i] = v != dem.Nodata
	}
	g, err := rgrid.New(dem.Transform, dem.Height, dem.Width, dem.CRS, mask)
	if err != nil {
		return nil, err
	}

	widthFn, err := m.AttributeValue("SGCwidth")
	if err != nil {
		return nil, err
	}
	width, err := raster.Open(resolve(widthFn, m.mapDir))
	if err != nil {
		return nil, err
	}
	wArr := width.Read()
	var rows, cols []int
	for i := 0; i < width.Height; i++ {
		for j := 0; j < width.Width; j++ {
			if wArr.Get(i, j) > 0 {
				rows = append(rows, i)
				cols = append(cols, j)
			}
		}
	}
	nodes := make([][2]float64, len(rows))
	for i := range rows {
		x, y := g.XY(rows[i], cols[i])
		nodes[i] = [2]float64{x, y}
	}
	g.Set1D(nodes, nil, g.RavelMultiIndexN(rows, cols))

	m.grid = g
	return m.grid, nil
}

// InvalidateGrid discards the cached grid; the next Grid call rebuilds it
// from the raster files.
func (m *LFP) InvalidateGrid() { m.grid = nil }
