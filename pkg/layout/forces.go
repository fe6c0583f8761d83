package layout

// Step runs one physics frame: forces are recomputed from scratch, then
// every movable node is integrated with damping.
func (s *Simulation) Step() {
	s.applyForces()
	for _, n := range s.nodes {
		s.integrate(n)
	}
	s.tick++
}

func (s *Simulation) movable(n *Node) bool {
	return !n.IsHub && !n.Locked && s.visible[n.Type]
}

func (s *Simulation) applyForces() {
	for _, n := range s.nodes {
		n.Force = Vec{}
	}

	// gravity towards the origin
	for _, n := range s.nodes {
		if s.movable(n) {
			n.Force = n.Force.Add(n.Pos.Scale(-gravityFactor))
		}
	}

	// pairwise repulsion, hubs never repel each other
	for i := 0; i < len(s.nodes); i++ {
		n1 := s.nodes[i]
		if !s.visible[n1.Type] {
			continue
		}
		for j := i + 1; j < len(s.nodes); j++ {
			n2 := s.nodes[j]
			if n1.IsHub && n2.IsHub {
				continue
			}
			if !s.visible[n2.Type] {
				continue
			}
			d := n1.Pos.Dist(n2.Pos)
			if d <= 0 || d >= repulsionCutoff {
				continue
			}
			f := n1.Pos.Sub(n2.Pos).Normalize().Scale(s.repulsion / (d * d))
			if !n1.IsHub && !n1.Locked {
				n1.Force = n1.Force.Add(f)
			}
			if !n2.IsHub && !n2.Locked {
				n2.Force = n2.Force.Sub(f)
			}
		}
	}

	// springs along edges
	for _, e := range s.edges {
		n1, n2 := s.nodes[e.from], s.nodes[e.to]
		if !s.visible[n1.Type] || !s.visible[n2.Type] {
			continue
		}
		rest := springRest
		if n1.IsHub || n2.IsHub {
			rest = hubSpringRest
		}
		l := n1.Pos.Dist(n2.Pos)
		f := n2.Pos.Sub(n1.Pos).Normalize().Scale((l - rest) * springFactor)
		if !n1.IsHub && !n1.Locked {
			n1.Force = n1.Force.Add(f)
		}
		if !n2.IsHub && !n2.Locked {
			n2.Force = n2.Force.Sub(f)
		}
	}

	// weak pull towards the type center
	for _, n := range s.nodes {
		if !s.movable(n) {
			continue
		}
		if c, ok := s.centers[n.Type]; ok {
			n.Force = n.Force.Add(c.Sub(n.Pos).Scale(clusterFactor))
		}
	}
}

func (s *Simulation) integrate(n *Node) {
	switch {
	case s.movable(n):
		n.Vel = n.Vel.Add(n.Force)
		n.Pos = n.Pos.Add(n.Vel)
		n.Vel = n.Vel.Scale(damping)
	case !s.visible[n.Type]:
		n.Vel = Vec{}
		n.Force = Vec{}
	}
}
