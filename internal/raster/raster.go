// Package raster reads ESRI ASCII grid files, the raster format the
// LISFlood-FP test cases ship their DEM and channel-width layers in.
// A dataset exposes the affine transform, dimensions, nodata value and
// coordinate reference system needed to build the model grid.
package raster

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ctessum/sparse"
	"github.com/maseology/mmio"

	"github.com/floodlink-io/floodlink/pkg/rgrid"
)

// Dataset is an opened raster grid.
type Dataset struct {
	Width     int
	Height    int
	Transform rgrid.Affine
	Nodata    float64
	// CRS holds the sidecar .prj contents, empty if no sidecar exists.
	CRS string

	data *sparse.DenseArray
}

// Read returns the sample array, shape (Height, Width).
func (d *Dataset) Read() *sparse.DenseArray { return d.data }

// Open reads the ESRI ASCII grid at path. A missing file is reported as a
// wrapped os.ErrNotExist.
func Open(path string) (*Dataset, error) {
	if _, ok := mmio.FileExists(path); !ok {
		return nil, fmt.Errorf("raster %s: %w", path, os.ErrNotExist)
	}
	lines, err := mmio.ReadTextLines(path)
	if err != nil {
		return nil, fmt.Errorf("raster %s: %w", path, err)
	}

	d := &Dataset{Nodata: -9999}
	var (
		xll, yll   float64
		center     bool
		cellsize   float64
		haveHeader int
		body       []string
	)
	for i, ln := range lines {
		tok := strings.Fields(ln)
		if len(tok) == 0 {
			continue
		}
		key := strings.ToLower(tok[0])
		if _, err := strconv.ParseFloat(tok[0], 64); err == nil {
			// first data row reached
			body = lines[i:]
			break
		}
		if len(tok) < 2 {
			return nil, fmt.Errorf("raster %s: malformed header line %q", path, ln)
		}
		val, err := strconv.ParseFloat(tok[1], 64)
		if err != nil {
			return nil, fmt.Errorf("raster %s: bad header value %q: %w", path, ln, err)
		}
		switch key {
		case "ncols":
			d.Width = int(val)
			haveHeader++
		case "nrows":
			d.Height = int(val)
			haveHeader++
		case "xllcorner":
			xll = val
			haveHeader++
		case "xllcenter":
			xll, center = val, true
			haveHeader++
		case "yllcorner":
			yll = val
			haveHeader++
		case "yllcenter":
			yll, center = val, true
			haveHeader++
		case "cellsize":
			cellsize = val
			haveHeader++
		case "nodata_value":
			d.Nodata = val
		default:
			return nil, fmt.Errorf("raster %s: unknown header key %q", path, key)
		}
	}
	if haveHeader < 5 || d.Width <= 0 || d.Height <= 0 || cellsize <= 0 {
		return nil, fmt.Errorf("raster %s: incomplete header", path)
	}
	if center {
		xll -= cellsize / 2
		yll -= cellsize / 2
	}
	d.Transform = rgrid.Affine{
		A: cellsize, C: xll,
		E: -cellsize, F: yll + float64(d.Height)*cellsize,
	}

	arr := sparse.ZerosDense(d.Height, d.Width)
	n := 0
	for _, ln := range body {
		for _, tok := range strings.Fields(ln) {
			if n >= len(arr.Elements) {
				return nil, fmt.Errorf("raster %s: more than %d samples", path, len(arr.Elements))
			}
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, fmt.Errorf("raster %s: bad sample %q: %w", path, tok, err)
			}
			arr.Elements[n] = v
			n++
		}
	}
	if n != len(arr.Elements) {
		return nil, fmt.Errorf("raster %s: expected %d samples, got %d", path, len(arr.Elements), n)
	}
	d.data = arr

	if prj := sidecarPrj(path); prj != "" {
		if _, ok := mmio.FileExists(prj); ok {
			b, err := os.ReadFile(prj)
			if err != nil {
				return nil, fmt.Errorf("raster %s: failed to read projection sidecar: %w", path, err)
			}
			d.CRS = strings.TrimSpace(string(b))
		}
	}
	return d, nil
}

func sidecarPrj(path string) string {
	i := strings.LastIndex(path, ".")
	if i < 0 {
		return path + ".prj"
	}
	return path[:i] + ".prj"
}
