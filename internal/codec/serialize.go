package codec

import (
	"slices"

	"github.com/vk/flowgrid/internal/flow"
)

type link struct {
	from, to *flow.Slot
}

// Serialize records nodes in order. Nil entries are skipped and take no
// index. A connection is recorded only when both of its endpoints belong to
// the given nodes.
func Serialize(nodes []*flow.Node) *Document {
	doc := &Document{}
	addrs := make(map[flow.Socket]flow.Address)
	var links []link

	var visit func(s flow.Socket, addr flow.Address)
	visit = func(s flow.Socket, addr flow.Address) {
		addrs[s] = addr
		switch v := s.(type) {
		case *flow.Slot:
			if up := v.Upstream(); up != nil {
				links = append(links, link{from: up, to: v})
			}
		case *flow.SocketArray:
			for i, child := range v.Elements() {
				visit(child, flow.Address{
					Node:    addr.Node,
					Socket:  addr.Socket,
					Indices: append(slices.Clone(addr.Indices), i),
				})
			}
		}
	}

	for _, n := range nodes {
		if n == nil {
			continue
		}
		id := flow.NodeID(len(doc.Nodes))
		rec := NodeRecord{Type: n.TypeTag(), Label: n.Label()}
		for _, s := range n.Inputs() {
			rec.Inputs = append(rec.Inputs, socketRecord(s))
			visit(s, flow.Address{Node: id, Socket: s.Label()})
		}
		for _, s := range n.Outputs() {
			rec.Outputs = append(rec.Outputs, socketRecord(s))
			visit(s, flow.Address{Node: id, Socket: s.Label()})
		}
		doc.Nodes = append(doc.Nodes, rec)
	}

	for _, l := range links {
		src, ok := addrs[l.from]
		if !ok {
			continue
		}
		dst, ok := addrs[l.to]
		if !ok {
			continue
		}
		doc.Connections = append(doc.Connections, ConnectionRecord{Source: src, Destination: dst})
	}
	return doc
}

func socketRecord(s flow.Socket) SocketRecord {
	return SocketRecord{Type: s.TypeTag(), Label: s.Label(), Value: s.EncodeValue()}
}
