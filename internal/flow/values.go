package flow

import (
	"github.com/zclconf/go-cty/cty/gocty"
)

// ReadAs reads s and converts the value into a Go value of type T.
func ReadAs[T any](s *Slot) T {
	var out T
	if err := gocty.FromCtyValue(s.Read(), &out); err != nil {
		violate("read", s.label, err)
	}
	return out
}

// WriteGo converts a Go value to the socket's type and writes it.
func WriteGo(s *Slot, v any) {
	val, err := gocty.ToCtyValue(v, s.kind.Type)
	if err != nil {
		violate("write", s.label, err)
	}
	s.Write(val)
}
