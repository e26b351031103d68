// Package rgrid provides the rectangular raster grid a model adapter
// exchanges variables on, with an optional 1-D sub-grid network overlay
// (for example channel centerlines embedded in the floodplain raster).
package rgrid

import "fmt"

// Affine maps raster (col, row) coordinates to world coordinates:
//
//	x = A*col + B*row + C
//	y = D*col + E*row + F
//
// For a north-up grid B and D are zero, C and F are the upper-left corner
// and E is negative.
type Affine struct {
	A, B, C, D, E, F float64
}

// Apply maps fractional (col, row) to world (x, y).
func (t Affine) Apply(col, row float64) (x, y float64) {
	return t.A*col + t.B*row + t.C, t.D*col + t.E*row + t.F
}

// RGrid is a rectangular raster descriptor. It is immutable after
// construction apart from the one-time Set1D overlay; an adapter builds
// it once and caches it.
type RGrid struct {
	Transform Affine
	Height    int
	Width     int
	CRS       string

	// Mask marks valid cells, row-major, length Height*Width.
	Mask []bool

	nodes [][2]float64
	links [][2]int
	inds  []int
	has1D bool
}

// New constructs a grid. mask may be nil for an all-valid grid; otherwise
// its length must be height*width.
func New(transform Affine, height, width int, crs string, mask []bool) (*RGrid, error) {
	if height <= 0 || width <= 0 {
		return nil, fmt.Errorf("invalid grid dimensions %dx%d", height, width)
	}
	if mask == nil {
		mask = make([]bool, height*width)
		for i := range mask {
			mask[i] = true
		}
	} else if len(mask) != height*width {
		return nil, fmt.Errorf("mask length %d does not match grid %dx%d", len(mask), height, width)
	}
	return &RGrid{Transform: transform, Height: height, Width: width, CRS: crs, Mask: mask}, nil
}

// XY returns the world coordinate of the center of cell (row, col).
func (g *RGrid) XY(row, col int) (x, y float64) {
	return g.Transform.Apply(float64(col)+0.5, float64(row)+0.5)
}

// RavelMultiIndex returns the row-major linear index of cell (row, col).
func (g *RGrid) RavelMultiIndex(row, col int) int {
	return row*g.Width + col
}

// RavelMultiIndexN is the slice form of RavelMultiIndex; rows and cols
// must have equal length.
func (g *RGrid) RavelMultiIndexN(rows, cols []int) []int {
	inds := make([]int, len(rows))
	for i := range rows {
		inds[i] = g.RavelMultiIndex(rows[i], cols[i])
	}
	return inds
}

// Set1D attaches the derived sub-grid network: node world coordinates,
// optional links between nodes, and each node's linear cell index.
func (g *RGrid) Set1D(nodes [][2]float64, links [][2]int, inds []int) {
	g.nodes = nodes
	g.links = links
	g.inds = inds
	g.has1D = true
}

// Has1D reports whether a sub-grid network has been attached.
func (g *RGrid) Has1D() bool { return g.has1D }

// Nodes returns the sub-grid node coordinates, nil before Set1D.
func (g *RGrid) Nodes() [][2]float64 { return g.nodes }

// Links returns the sub-grid links, nil if none were supplied.
func (g *RGrid) Links() [][2]int { return g.links }

// NodeIndices returns each node's linear index into the raster grid.
func (g *RGrid) NodeIndices() []int { return g.inds }
