package layout

// NodeState is the drawable state of a node.
type NodeState struct {
	ID      string  `json:"id"`
	Type    string  `json:"type"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Mass    float64 `json:"mass"`
	Hub     bool    `json:"hub"`
	Locked  bool    `json:"locked"`
	Visible bool    `json:"visible"`
}

// EdgeState is a visible edge with resolved endpoint coordinates.
type EdgeState struct {
	From        string  `json:"from"`
	To          string  `json:"to"`
	Description string  `json:"desc"`
	Hub         bool    `json:"hub"`
	X1          float64 `json:"x1"`
	Y1          float64 `json:"y1"`
	X2          float64 `json:"x2"`
	Y2          float64 `json:"y2"`
}

// TypeState is one legend entry.
type TypeState struct {
	Name    string `json:"name"`
	Color   string `json:"color"`
	Visible bool   `json:"visible"`
	Center  Vec    `json:"center"`
}

// Frame is a snapshot of the simulation. Seq increases with every snapshot
// taken from the same simulation so consumers can drop stale frames.
type Frame struct {
	Seq        uint64      `json:"seq"`
	Tick       uint64      `json:"tick"`
	Width      float64     `json:"width"`
	Height     float64     `json:"height"`
	Repulsion  float64     `json:"repulsion"`
	AllVisible bool        `json:"allVisible"`
	Nodes      []NodeState `json:"nodes"`
	Edges      []EdgeState `json:"edges"`
	Types      []TypeState `json:"types"`
}

// Frame takes a snapshot of the current state.
func (s *Simulation) Frame() Frame {
	s.frame++
	f := Frame{
		Seq:        s.frame,
		Tick:       s.tick,
		Width:      s.width,
		Height:     s.height,
		Repulsion:  s.repulsion,
		AllVisible: s.AllVisible(),
		Nodes:      make([]NodeState, 0, len(s.nodes)),
		Edges:      make([]EdgeState, 0, len(s.edges)),
		Types:      make([]TypeState, 0, len(s.types)),
	}

	for _, n := range s.nodes {
		f.Nodes = append(f.Nodes, NodeState{
			ID:      n.ID,
			Type:    n.Type,
			X:       n.Pos.X,
			Y:       n.Pos.Y,
			Mass:    n.Mass,
			Hub:     n.IsHub,
			Locked:  n.Locked,
			Visible: s.visible[n.Type],
		})
	}

	for _, e := range s.edges {
		n1, n2 := s.nodes[e.from], s.nodes[e.to]
		if !s.visible[n1.Type] || !s.visible[n2.Type] {
			continue
		}
		f.Edges = append(f.Edges, EdgeState{
			From:        e.From,
			To:          e.To,
			Description: e.Description,
			Hub:         e.Hub,
			X1:          n1.Pos.X,
			Y1:          n1.Pos.Y,
			X2:          n2.Pos.X,
			Y2:          n2.Pos.Y,
		})
	}

	for i, t := range s.types {
		f.Types = append(f.Types, TypeState{
			Name:    t,
			Color:   TypeColor(i).Hex(),
			Visible: s.visible[t],
			Center:  s.centers[t],
		})
	}

	return f
}
