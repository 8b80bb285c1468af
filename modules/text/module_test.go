package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vk/flowgrid/internal/flow"
	"github.com/zclconf/go-cty/cty"
)

func TestConcat(t *testing.T) {
	c := NewConcat("c")
	for _, s := range []string{"a", "b", "c"} {
		c.Parts.AppendSlot().Write(cty.StringVal(s))
	}
	c.Separator.Write(cty.StringVal("/"))

	assert.Equal(t, "a/b/c", flow.ReadAs[string](c.Result))

	c.Parts.AppendSlot().Write(cty.StringVal("d"))
	assert.Equal(t, "a/b/c/d", flow.ReadAs[string](c.Result))
}

func TestFormat(t *testing.T) {
	f := NewFormat("f")
	f.Value.Write(cty.NumberFloatVal(3.14159))
	f.Precision.Write(cty.NumberIntVal(2))

	assert.Equal(t, "3.14", flow.ReadAs[string](f.Result))
}

func TestFormatFeedsConcat(t *testing.T) {
	f := NewFormat("f")
	f.Value.Write(cty.NumberIntVal(6))
	c := NewConcat("c")
	c.Parts.AppendSlot().Write(cty.StringVal("result"))
	c.Parts.AppendSlot().ConnectFrom(f.Result)
	c.Separator.Write(cty.StringVal("="))
	assert.Equal(t, "result=6", flow.ReadAs[string](c.Result))

	f.Value.Write(cty.NumberIntVal(15))

	assert.True(t, c.Dirty())
	assert.Equal(t, "result=15", flow.ReadAs[string](c.Result))
}
