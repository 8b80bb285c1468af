package flow

// pending is one entry of the invalidation worklist. owner reports whether
// the socket's node must be marked dirty; it is false only for an output
// overridden from outside its node.
type pending struct {
	socket Socket
	owner  bool
}

// invalidate floods staleness outward from start, breadth first. A socket is
// handled at most once per pass, which bounds the work on cyclic wiring.
// Sockets reading through a changed input are invalidated too.
func invalidate(start pending) {
	queue := []pending{start}
	seen := make(map[Socket]struct{})
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if _, ok := seen[p.socket]; ok {
			continue
		}
		seen[p.socket] = struct{}{}

		n := p.socket.Owner()
		if n.initializing {
			continue
		}
		if p.owner {
			for _, s := range n.markDirty(p.socket) {
				queue = append(queue, pending{socket: s, owner: true})
			}
		}
		for _, s := range p.socket.Downstream() {
			queue = append(queue, pending{socket: s, owner: true})
		}
	}
}
