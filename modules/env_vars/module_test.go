package env_vars

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vk/flowgrid/internal/flow"
	"github.com/zclconf/go-cty/cty"
)

func TestEnv(t *testing.T) {
	t.Setenv("FLOWGRID_TEST_COLOR", "teal")
	e := NewEnv("e")
	e.Name.Write(cty.StringVal("FLOWGRID_TEST_COLOR"))
	e.Fallback.Write(cty.StringVal("grey"))

	assert.Equal(t, "teal", flow.ReadAs[string](e.Value))
	assert.True(t, flow.ReadAs[bool](e.Found))

	e.Name.Write(cty.StringVal("FLOWGRID_TEST_UNSET_VARIABLE"))
	assert.Equal(t, "grey", flow.ReadAs[string](e.Value))
	assert.False(t, flow.ReadAs[bool](e.Found))
}
