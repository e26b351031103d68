package lfp

import (
	"fmt"
	"math"

	"github.com/ctessum/sparse"

	"github.com/floodlink-io/floodlink/pkg/bmi"
)

// varTable is the adapter's fixed variable table. The staggering column
// must stay total and explicit: LISFlood-FP's native arrays silently
// carry one extra element along the staggered axis, and inferring the
// layout from the name would mishandle any newly added variable.
var varTable = map[string]bmi.VarInfo{
	"SGCQin":  {Name: "SGCQin", Units: "m3/s", Role: bmi.RoleBoth, Staggering: bmi.Center, Type: bmi.Float64},
	"dA":      {Name: "dA", Units: "m2", Role: bmi.RoleInput, Staggering: bmi.Center, Type: bmi.Float64},
	"H":       {Name: "H", Units: "m", Role: bmi.RoleOutput, Staggering: bmi.Center, Type: bmi.Float64},
	"Qx":      {Name: "Qx", Units: "m3/s", Role: bmi.RoleNone, Staggering: bmi.EdgeRows, Type: bmi.Float64},
	"QxSGold": {Name: "QxSGold", Units: "m3/s", Role: bmi.RoleNone, Staggering: bmi.EdgeRows, Type: bmi.Float64},
	"Qy":      {Name: "Qy", Units: "m3/s", Role: bmi.RoleNone, Staggering: bmi.EdgeCols, Type: bmi.Float64},
	"QySGold": {Name: "QySGold", Units: "m3/s", Role: bmi.RoleNone, Staggering: bmi.EdgeCols, Type: bmi.Float64},
}

// areaVarName names the variable holding per-cell area, used by
// area-weighted computations elsewhere in the coupling framework.
const areaVarName = "dA"

// varInfo returns the table entry for name. An unlisted name is treated
// as a cell-centered float64 quantity; whether the engine knows it at all
// is the engine's own failure to report.
func varInfo(name string) bmi.VarInfo {
	if info, ok := varTable[name]; ok {
		return info
	}
	return bmi.VarInfo{Name: name, Staggering: bmi.Center, Type: bmi.Float64}
}

// VarNames returns the names in the fixed variable table.
func VarNames() []string {
	names := make([]string, 0, len(varTable))
	for n := range varTable {
		names = append(names, n)
	}
	return names
}

// VarUnits returns the declared physical unit of name, empty if unlisted.
func VarUnits(name string) string { return varInfo(name).Units }

// InputVarNames returns the variables the coupling framework may write.
func InputVarNames() []string { return []string{"SGCQin", "dA"} }

// OutputVarNames returns the variables the coupling framework may read.
func OutputVarNames() []string { return []string{"SGCQin", "H"} }

// AreaVarName returns the name of the per-cell area variable.
func AreaVarName() string { return areaVarName }

// Info returns the fixed table entry for name.
func (m *LFP) Info(name string) bmi.VarInfo { return varInfo(name) }

// mask derives the validity mask for name against the model grid. Center
// variables use the grid's cell mask unchanged. Edge variables get the
// mask padded by one row or column of falsity on the trailing side and
// expanded by a two-cell OR along the staggered axis: an edge is valid if
// either adjacent cell center is.
func (m *LFP) mask(name string) (mask []bool, nr, nc int, err error) {
	g, err := m.Grid()
	if err != nil {
		return nil, 0, 0, err
	}
	h, w := g.Height, g.Width
	switch varInfo(name).Staggering {
	case bmi.EdgeRows:
		nr, nc = h+1, w
		mask = make([]bool, nr*nc)
		for i := 0; i < nr; i++ {
			for j := 0; j < nc; j++ {
				above := i > 0 && g.Mask[(i-1)*w+j]
				below := i < h && g.Mask[i*w+j]
				mask[i*nc+j] = above || below
			}
		}
	case bmi.EdgeCols:
		nr, nc = h, w+1
		mask = make([]bool, nr*nc)
		for i := 0; i < nr; i++ {
			for j := 0; j < nc; j++ {
				left := j > 0 && g.Mask[i*w+j-1]
				right := j < w && g.Mask[i*w+j]
				mask[i*nc+j] = left || right
			}
		}
	default:
		nr, nc = h, w
		mask = g.Mask
	}
	return mask, nr, nc, nil
}

// liveVar fetches the engine's live buffer for name and checks its shape
// against the derived mask. The buffer aliases engine memory.
func (m *LFP) liveVar(name string) (buf *sparse.DenseArray, mask []bool, err error) {
	mask, nr, nc, err := m.mask(name)
	if err != nil {
		return nil, nil, err
	}
	buf, err = m.eng.Var(name)
	if err != nil {
		return nil, nil, err
	}
	if len(buf.Elements) != nr*nc {
		return nil, nil, fmt.Errorf("variable %s: engine shape %v does not match derived mask %dx%d",
			name, buf.Shape, nr, nc)
	}
	return buf, mask, nil
}

// Value returns a copy of the engine's array for name with every cell
// outside the variable's mask set to NaN. The engine's buffer is never
// aliased to the caller.
func (m *LFP) Value(name string) (*sparse.DenseArray, error) {
	buf, mask, err := m.liveVar(name)
	if err != nil {
		return nil, err
	}
	out := sparse.ZerosDense(buf.Shape...)
	copy(out.Elements, buf.Elements)
	for i, ok := range mask {
		if !ok {
			out.Elements[i] = math.NaN()
		}
	}
	return out, nil
}

// ValueAt gathers the masked value of name at the given indices into its
// row-major flattening.
func (m *LFP) ValueAt(name string, inds []int) ([]float64, error) {
	v, err := m.Value(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(inds))
	for i, ind := range inds {
		if ind < 0 || ind >= len(v.Elements) {
			return nil, fmt.Errorf("variable %s: index %d out of range [0, %d)", name, ind, len(v.Elements))
		}
		out[i] = v.Elements[ind]
	}
	return out, nil
}

// SetValue sanitizes src and writes it into the engine's live buffer in
// place. NaN inside the variable's mask becomes zero (the engine must
// never see an undefined value inside its active domain), and NaN outside
// the mask becomes fill. Values
// are cast through the variable's declared numeric type. LISFlood-FP has
// no set operation; writing means mutating the buffer its getter returns,
// so the engine buffer must stay aliased here, unlike in Value.
func (m *LFP) SetValue(name string, src *sparse.DenseArray, fill float64) error {
	buf, mask, err := m.liveVar(name)
	if err != nil {
		return err
	}
	if src == nil || len(src.Elements) != len(buf.Elements) {
		return fmt.Errorf("variable %s: source shape does not match engine shape %v", name, buf.Shape)
	}
	cast := castFor(varInfo(name).Type)
	for i, v := range src.Elements {
		if math.IsNaN(v) {
			if mask[i] {
				v = 0
			} else {
				v = fill
			}
		}
		buf.Elements[i] = cast(v)
	}
	return nil
}

// SetValueAt overwrites the given flattened positions of name and writes
// the result back through SetValue. The read-modify-write round trip is
// accepted inefficiency for a sparse-update convenience path.
func (m *LFP) SetValueAt(name string, inds []int, src []float64) error {
	if len(inds) != len(src) {
		return fmt.Errorf("variable %s: %d indices for %d values", name, len(inds), len(src))
	}
	val, err := m.Value(name)
	if err != nil {
		return err
	}
	for i, ind := range inds {
		if ind < 0 || ind >= len(val.Elements) {
			return fmt.Errorf("variable %s: index %d out of range [0, %d)", name, ind, len(val.Elements))
		}
		val.Elements[ind] = src[i]
	}
	return m.SetValue(name, val, 0)
}

// castFor returns the value coercion for the engine-declared dtype.
func castFor(t bmi.DType) func(float64) float64 {
	if t == bmi.Float32 {
		return func(v float64) float64 { return float64(float32(v)) }
	}
	return func(v float64) float64 { return v }
}
