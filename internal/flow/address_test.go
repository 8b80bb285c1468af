package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	testCases := []struct {
		name         string
		raw          string
		expectErr    bool
		expectedAddr Address
	}{
		{
			name:         "top-level socket",
			raw:          "0.result",
			expectedAddr: Address{Node: 0, Socket: "result"},
		},
		{
			name:         "nested indices",
			raw:          "12.colorBuffers[0][3]",
			expectedAddr: Address{Node: 12, Socket: "colorBuffers", Indices: []int{0, 3}},
		},
		{
			name:         "label containing dots",
			raw:          "1.a.b",
			expectedAddr: Address{Node: 1, Socket: "a.b"},
		},
		{name: "error - empty string", raw: "", expectErr: true},
		{name: "error - missing node", raw: "result", expectErr: true},
		{name: "error - negative node", raw: "-1.result", expectErr: true},
		{name: "error - non-numeric index", raw: "0.terms[x]", expectErr: true},
		{name: "error - missing label", raw: "0.", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			addr, err := ParseAddress(tc.raw)
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tc.expectedAddr.Equal(addr), "got %v", addr)
		})
	}
}

func TestAddressStringRoundTrip(t *testing.T) {
	for _, addr := range []Address{
		{Node: 0, Socket: "value"},
		{Node: 7, Socket: "terms", Indices: []int{2}},
		{Node: 3, Socket: "rows", Indices: []int{1, 0}},
	} {
		parsed, err := ParseAddress(addr.String())
		require.NoError(t, err)
		assert.True(t, addr.Equal(parsed))
	}
	assert.Equal(t, "3.rows[1][0]", Address{Node: 3, Socket: "rows", Indices: []int{1, 0}}.String())
}
