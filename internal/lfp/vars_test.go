package lfp

import (
	"math"
	"testing"

	"github.com/ctessum/sparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floodlink-io/floodlink/pkg/bmi"
)

func TestVarTable(t *testing.T) {
	assert.Equal(t, "m3/s", VarUnits("SGCQin"))
	assert.Equal(t, "m", VarUnits("H"))
	assert.Equal(t, []string{"SGCQin", "dA"}, InputVarNames())
	assert.Equal(t, []string{"SGCQin", "H"}, OutputVarNames())
	assert.Equal(t, "dA", AreaVarName())

	assert.Equal(t, bmi.EdgeRows, varInfo("Qx").Staggering)
	assert.Equal(t, bmi.EdgeRows, varInfo("QxSGold").Staggering)
	assert.Equal(t, bmi.EdgeCols, varInfo("Qy").Staggering)
	assert.Equal(t, bmi.EdgeCols, varInfo("QySGold").Staggering)
	assert.Equal(t, bmi.Center, varInfo("H").Staggering)
	// unlisted names fall back to cell-centered
	assert.Equal(t, bmi.Center, varInfo("FArrows").Staggering)
}

func TestMaskCenter(t *testing.T) {
	m, _ := newConfiguredAdapter(t)

	mask, nr, nc, err := m.mask("H")
	require.NoError(t, err)
	assert.Equal(t, 3, nr)
	assert.Equal(t, 4, nc)

	g, err := m.Grid()
	require.NoError(t, err)
	assert.Equal(t, g.Mask, mask)
	// nodata cells at (1,3) and (2,3)
	assert.False(t, mask[1*4+3])
	assert.False(t, mask[2*4+3])
	assert.True(t, mask[0*4+3])
}

func TestMaskEdgeRows(t *testing.T) {
	m, _ := newConfiguredAdapter(t)

	mask, nr, nc, err := m.mask("Qx")
	require.NoError(t, err)
	require.Equal(t, 4, nr)
	require.Equal(t, 4, nc)

	g, err := m.Grid()
	require.NoError(t, err)
	// an edge is valid iff either adjacent in-bounds center cell is
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			want := false
			if i > 0 && g.Mask[(i-1)*4+j] {
				want = true
			}
			if i < 3 && g.Mask[i*4+j] {
				want = true
			}
			assert.Equal(t, want, mask[i*nc+j], "edge (%d,%d)", i, j)
		}
	}
	// below two stacked nodata cells the edge is invalid
	assert.False(t, mask[2*4+3])
	// boundary edges adjacent to a valid cell stay valid
	assert.True(t, mask[0*4+0])
	assert.True(t, mask[3*4+0])
}

func TestMaskEdgeCols(t *testing.T) {
	m, _ := newConfiguredAdapter(t)

	mask, nr, nc, err := m.mask("Qy")
	require.NoError(t, err)
	require.Equal(t, 3, nr)
	require.Equal(t, 5, nc)

	// rightmost edge of row 1 touches only the nodata cell (1,3)
	assert.False(t, mask[1*5+4])
	// edge between (1,2) valid and (1,3) nodata is valid
	assert.True(t, mask[1*5+3])
}

func TestValueMasksAndCopies(t *testing.T) {
	m, eng := newConfiguredAdapter(t)

	v, err := m.Value("H")
	require.NoError(t, err)
	require.Equal(t, []int{3, 4}, v.Shape)

	assert.Equal(t, 1.0, v.Get(0, 0))
	assert.True(t, math.IsNaN(v.Get(1, 3)))
	assert.True(t, math.IsNaN(v.Get(2, 3)))

	// inside the mask no NaN may appear
	mask, _, nc, err := m.mask("H")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		for j := 0; j < nc; j++ {
			if mask[i*nc+j] {
				assert.False(t, math.IsNaN(v.Get(i, j)))
			}
		}
	}

	// mutating the returned copy must not touch the engine buffer
	v.Set(999, 0, 0)
	assert.Equal(t, 1.0, eng.vars["H"].Get(0, 0))
}

func TestValueUnknownVariable(t *testing.T) {
	m, _ := newConfiguredAdapter(t)
	_, err := m.Value("bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")
}

func TestValueAt(t *testing.T) {
	m, _ := newConfiguredAdapter(t)

	got, err := m.ValueAt("H", []int{0, 5, 7})
	require.NoError(t, err)
	assert.Equal(t, 1.0, got[0])
	assert.Equal(t, 6.0, got[1])
	assert.True(t, math.IsNaN(got[2])) // flat index 7 = cell (1,3), nodata

	_, err = m.ValueAt("H", []int{12})
	require.Error(t, err)
}

func TestSetValueSanitizes(t *testing.T) {
	m, eng := newConfiguredAdapter(t)

	src := sparse.ZerosDense(3, 4)
	for i := range src.Elements {
		src.Elements[i] = float64(10 + i)
	}
	src.Set(math.NaN(), 0, 0) // NaN inside the active domain
	src.Set(math.NaN(), 1, 3) // NaN outside the mask

	require.NoError(t, m.SetValue("SGCQin", src, -1))

	buf := eng.vars["SGCQin"]
	assert.Equal(t, 0.0, buf.Get(0, 0), "in-domain NaN coerced to zero")
	assert.Equal(t, -1.0, buf.Get(1, 3), "out-of-domain NaN coerced to fill")
	assert.Equal(t, 11.0, buf.Get(0, 1))
}

func TestSetValueWritesLiveBuffer(t *testing.T) {
	m, eng := newConfiguredAdapter(t)
	before := eng.vars["SGCQin"]

	src := sparse.ZerosDense(3, 4)
	src.Set(42, 2, 2)
	require.NoError(t, m.SetValue("SGCQin", src, 0))

	// same backing buffer, mutated in place
	assert.Same(t, before, eng.vars["SGCQin"])
	assert.Equal(t, 42.0, before.Get(2, 2))
}

func TestSetThenValueRoundTrip(t *testing.T) {
	m, _ := newConfiguredAdapter(t)

	src := sparse.ZerosDense(3, 4)
	for i := range src.Elements {
		src.Elements[i] = float64(i) * 1.5
	}
	require.NoError(t, m.SetValue("SGCQin", src, 0))

	got, err := m.Value("SGCQin")
	require.NoError(t, err)
	mask, _, nc, err := m.mask("SGCQin")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		for j := 0; j < nc; j++ {
			if mask[i*nc+j] {
				assert.Equal(t, src.Get(i, j), got.Get(i, j))
			}
		}
	}
}

func TestSetValueShapeMismatch(t *testing.T) {
	m, _ := newConfiguredAdapter(t)
	err := m.SetValue("SGCQin", sparse.ZerosDense(2, 2), 0)
	require.Error(t, err)
}

func TestSetValueAt(t *testing.T) {
	m, eng := newConfiguredAdapter(t)

	require.NoError(t, m.SetValueAt("SGCQin", []int{0, 5}, []float64{3.5, 4.5}))
	assert.Equal(t, 3.5, eng.vars["SGCQin"].Get(0, 0))
	assert.Equal(t, 4.5, eng.vars["SGCQin"].Get(1, 1))

	err := m.SetValueAt("SGCQin", []int{0}, []float64{1, 2})
	require.Error(t, err)
}

func TestEdgeVariableExchange(t *testing.T) {
	m, eng := newConfiguredAdapter(t)
	for i := range eng.vars["Qx"].Elements {
		eng.vars["Qx"].Elements[i] = 2.5
	}

	v, err := m.Value("Qx")
	require.NoError(t, err)
	require.Equal(t, []int{4, 4}, v.Shape)
	assert.Equal(t, 2.5, v.Get(0, 0))
	assert.True(t, math.IsNaN(v.Get(2, 3))) // between two nodata cells
}

func TestCastFor(t *testing.T) {
	v := 1.000000059604644775390625 // not representable in float32
	assert.Equal(t, v, castFor(bmi.Float64)(v))
	assert.Equal(t, float64(float32(v)), castFor(bmi.Float32)(v))
	assert.NotEqual(t, v, castFor(bmi.Float32)(v))
}
