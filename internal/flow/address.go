package flow

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// Address names a socket in a Graph: a node, a top-level socket label, and
// an index path into nested socket arrays.
type Address struct {
	Node    NodeID
	Socket  string
	Indices []int
}

// addressRegex matches the canonical form, e.g. `3.colorBuffers[0][1]`.
var addressRegex = regexp.MustCompile(`^(\d+)\.([^\[\]]+)((?:\[\d+\])*)$`)

var indexRegex = regexp.MustCompile(`\[(\d+)\]`)

// String serializes the Address into its canonical form.
func (a Address) String() string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(int(a.Node)))
	sb.WriteRune('.')
	sb.WriteString(a.Socket)
	for _, i := range a.Indices {
		fmt.Fprintf(&sb, "[%d]", i)
	}
	return sb.String()
}

// Equal reports whether both addresses name the same socket.
func (a Address) Equal(other Address) bool {
	return a.Node == other.Node && a.Socket == other.Socket && slices.Equal(a.Indices, other.Indices)
}

// ParseAddress parses the canonical form produced by String.
func ParseAddress(raw string) (Address, error) {
	if raw == "" {
		return Address{}, fmt.Errorf("address cannot be empty")
	}
	m := addressRegex.FindStringSubmatch(raw)
	if m == nil {
		return Address{}, fmt.Errorf("invalid socket address: %q", raw)
	}
	node, err := strconv.Atoi(m[1])
	if err != nil {
		return Address{}, fmt.Errorf("invalid node index in %q: %w", raw, err)
	}
	addr := Address{Node: NodeID(node), Socket: m[2]}
	for _, im := range indexRegex.FindAllStringSubmatch(m[3], -1) {
		i, err := strconv.Atoi(im[1])
		if err != nil {
			return Address{}, fmt.Errorf("invalid array index in %q: %w", raw, err)
		}
		addr.Indices = append(addr.Indices, i)
	}
	return addr, nil
}
