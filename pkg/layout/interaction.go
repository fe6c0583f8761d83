package layout

import "time"

// PressAction reports what a pointer press did.
type PressAction int

const (
	PressMiss PressAction = iota
	// PressDrag locked the node and attached it to the pointer.
	PressDrag
	// PressToggleLock was a double press on the same node.
	PressToggleLock
)

func (a PressAction) String() string {
	switch a {
	case PressDrag:
		return "drag"
	case PressToggleLock:
		return "toggle_lock"
	default:
		return "miss"
	}
}

// LockNode sets the lock state of a node. It reports whether the node exists.
func (s *Simulation) LockNode(id string, locked bool) bool {
	n, ok := s.Node(id)
	if !ok {
		return false
	}
	n.Locked = locked
	return true
}

// ToggleLock flips the lock state of a node.
func (s *Simulation) ToggleLock(id string) bool {
	n, ok := s.Node(id)
	if !ok {
		return false
	}
	n.Locked = !n.Locked
	return true
}

// DragNode moves a node to pos, stops it and locks it in place.
func (s *Simulation) DragNode(id string, pos Vec) bool {
	n, ok := s.Node(id)
	if !ok {
		return false
	}
	n.Pos = pos
	n.Vel = Vec{}
	n.Locked = true
	return true
}

// hit returns the first visible node whose radius contains pos.
func (s *Simulation) hit(pos Vec) *Node {
	for _, n := range s.nodes {
		if s.visible[n.Type] && pos.Dist(n.Pos) < n.Mass/2 {
			return n
		}
	}
	return nil
}

// Press handles a pointer press at pos. A second press on the same node
// within 300ms toggles its lock. Any other press on a node locks it and
// starts a drag.
func (s *Simulation) Press(pos Vec, at time.Time) (string, PressAction) {
	n := s.hit(pos)
	if n == nil {
		return "", PressMiss
	}

	if n == s.lastClicked && at.Sub(s.lastClickAt) < doubleClick {
		n.Locked = !n.Locked
		s.lastClicked = nil
		return n.ID, PressToggleLock
	}

	s.dragged = n
	s.dragOffset = pos.Sub(n.Pos)
	n.Locked = true
	s.lastClicked = n
	s.lastClickAt = at
	return n.ID, PressDrag
}

// Move drags the attached node, keeping the offset from the press.
func (s *Simulation) Move(pos Vec) {
	if s.dragged == nil || !s.visible[s.dragged.Type] {
		return
	}
	s.dragged.Pos = pos.Sub(s.dragOffset)
	s.dragged.Vel = Vec{}
}

// Release detaches the dragged node. It stays locked where it was dropped.
func (s *Simulation) Release() {
	s.dragged = nil
}

// Dragging returns the id of the node attached to the pointer.
func (s *Simulation) Dragging() (string, bool) {
	if s.dragged == nil {
		return "", false
	}
	return s.dragged.ID, true
}

// HoverEdge returns the first visible entity edge within 10 units of pos.
func (s *Simulation) HoverEdge(pos Vec) (Edge, bool) {
	for _, e := range s.edges {
		if e.Hub {
			continue
		}
		n1, n2 := s.nodes[e.from], s.nodes[e.to]
		if !s.visible[n1.Type] || !s.visible[n2.Type] {
			continue
		}
		if distToSegment(pos, n1.Pos, n2.Pos) < hoverDistance {
			return e.Edge, true
		}
	}
	return Edge{}, false
}
