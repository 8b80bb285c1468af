// Package kinds is the socket type vocabulary shared by the node catalog.
package kinds

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/vk/flowgrid/internal/flow"
	"github.com/vk/flowgrid/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

var (
	F32 = flow.Kind{Tag: "F32", Type: cty.Number, Default: cty.Zero}

	U16 = flow.Kind{Tag: "U16", Type: cty.Number, Default: cty.Zero, Check: checkU16}

	String = flow.Kind{Tag: "String", Type: cty.String, Default: cty.StringVal("")}

	Bool = flow.Kind{Tag: "Bool", Type: cty.Bool, Default: cty.False}

	// Vec4 is four numbers, e.g. an RGBA colour.
	Vec4 = flow.Kind{
		Tag:     "Vec4",
		Type:    cty.List(cty.Number),
		Default: cty.ListVal([]cty.Value{cty.Zero, cty.Zero, cty.Zero, cty.Zero}),
		Check:   checkVec4,
	}
)

var maxU16 = big.NewFloat(65535)

func checkU16(v cty.Value) error {
	bf := v.AsBigFloat()
	if !bf.IsInt() || bf.Sign() < 0 || bf.Cmp(maxU16) > 0 {
		return fmt.Errorf("%s is not an integer in [0, 65535]", bf.Text('f', -1))
	}
	return nil
}

func checkVec4(v cty.Value) error {
	if n := v.LengthInt(); n != 4 {
		return fmt.Errorf("expected 4 components, got %d", n)
	}
	return nil
}

// All lists the leaf kinds in a stable order.
func All() []flow.Kind {
	return []flow.Kind{F32, U16, String, Bool, Vec4}
}

// Module registers every leaf kind and a socket array of each.
type Module struct{}

func (Module) Register(r *registry.Registry) {
	for _, k := range All() {
		r.RegisterSocket(k)
		r.RegisterSocket(flow.ArrayOf(k))
	}
}

var errNotVec4 = errors.New("value is not a Vec4")

// Floats4 unpacks a Vec4 value.
func Floats4(v cty.Value) ([4]float64, error) {
	var out [4]float64
	if !v.Type().Equals(Vec4.Type) || v.LengthInt() != 4 {
		return out, errNotVec4
	}
	for i := range 4 {
		f, _ := v.Index(cty.NumberIntVal(int64(i))).AsBigFloat().Float64()
		out[i] = f
	}
	return out, nil
}
