package layout

import "math"

// Visible reports whether a type is currently shown. Unknown types are hidden.
func (s *Simulation) Visible(t string) bool {
	return s.visible[t]
}

// AllVisible reports whether every type is shown.
func (s *Simulation) AllVisible() bool {
	for _, t := range s.types {
		if !s.visible[t] {
			return false
		}
	}
	return true
}

// SetVisibility shows or hides a type and its hub. Unknown types are ignored.
func (s *Simulation) SetVisibility(t string, visible bool) {
	was, ok := s.visible[t]
	if !ok {
		return
	}
	s.visible[t] = visible
	if !was && visible {
		s.reactivate(t)
	}
}

// ToggleVisibility flips the visibility of a type.
func (s *Simulation) ToggleVisibility(t string) {
	if _, ok := s.visible[t]; !ok {
		return
	}
	s.SetVisibility(t, !s.visible[t])
}

// SetAllVisible shows or hides every type.
func (s *Simulation) SetAllVisible(visible bool) {
	for _, t := range s.types {
		s.SetVisibility(t, visible)
	}
}

// ToggleAll hides everything when all types are shown and shows everything otherwise.
func (s *Simulation) ToggleAll() {
	s.SetAllVisible(!s.AllVisible())
}

// reactivate pulls nodes of a type that just became visible back near their
// center when they drifted out of reasonable bounds.
func (s *Simulation) reactivate(t string) {
	center := s.centers[t]
	for _, n := range s.nodes {
		if n.Type != t {
			continue
		}
		if n.Pos.Finite() && n.Pos.Len() <= recenterDistance {
			continue
		}
		if n.IsHub {
			n.Pos = center
		} else {
			angle := s.rng.Float64() * 2 * math.Pi
			r := s.uniform(20, 60)
			n.Pos = center.Add(Vec{X: math.Cos(angle) * r, Y: math.Sin(angle) * r})
		}
		n.Vel = Vec{}
		n.Force = Vec{}
	}
}
