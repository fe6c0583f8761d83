// Package layout implements the force-directed layout of typed knowledge
// graphs. Every entity type gets a fixed hub node placed on a circle around
// the origin; entities are pulled towards their hub by springs and towards
// their type center by a weak attraction, while pairwise repulsion spreads
// them apart.
//
// A Simulation is not safe for concurrent use. Runner wraps one on a single
// goroutine for callers that need concurrent access.
package layout

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/cozyai/kitchenette/backend/pkg/common"
)

const (
	DefaultWidth     = 800.0
	DefaultHeight    = 600.0
	DefaultRepulsion = 1000.0
	MinRepulsion     = 500.0
	MaxRepulsion     = 2000.0
	// DefaultMass is used for entities that carry no mass.
	DefaultMass = 16.0
	HubMass     = 30.0

	gravityFactor    = 0.0002
	repulsionCutoff  = 300.0
	springRest       = 60.0
	hubSpringRest    = 80.0
	springFactor     = 0.01
	clusterFactor    = 0.0001
	damping          = 0.9
	recenterDistance = 400.0
	hoverDistance    = 10.0
	doubleClick      = 300 * time.Millisecond

	// HubPrefix namespaces hub ids so an entity may share its type's name.
	HubPrefix = "type:"
)

// HubID returns the node id of the hub for type t.
func HubID(t string) string { return HubPrefix + t }

// Node is a simulated graph node. Hubs are fixed at their type center.
type Node struct {
	ID     string  `json:"id"`
	Type   string  `json:"type"`
	Mass   float64 `json:"mass"`
	Pos    Vec     `json:"pos"`
	Vel    Vec     `json:"vel"`
	Force  Vec     `json:"-"`
	IsHub  bool    `json:"isHub"`
	Locked bool    `json:"locked"`
}

// Edge connects two nodes. Hub edges link an entity to its type hub.
type Edge struct {
	From        string `json:"from"`
	To          string `json:"to"`
	Description string `json:"desc"`
	Hub         bool   `json:"hub"`
}

type edge struct {
	Edge
	from, to int
}

// Options configures a Simulation.
type Options struct {
	Width  float64
	Height float64
	// Repulsion is clamped to [MinRepulsion, MaxRepulsion]; zero selects DefaultRepulsion.
	Repulsion float64
	Seed      uint64
	// UseScenarioPositions starts entities at their scenario position when
	// one is given instead of a random position in [-100, 100]^2.
	UseScenarioPositions bool
}

// Simulation holds the state of one graph layout.
type Simulation struct {
	width, height float64
	repulsion     float64

	nodes   []*Node
	index   map[string]int
	edges   []edge
	types   []string
	centers map[string]Vec
	visible map[string]bool

	rng   *rand.Rand
	tick  uint64
	frame uint64

	dragged     *Node
	dragOffset  Vec
	lastClicked *Node
	lastClickAt time.Time
}

// New builds a Simulation from a scenario. Entities flagged as hubs are
// ignored and relationships whose endpoints do not exist are skipped.
func New(sc *common.Scenario, opts Options) *Simulation {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}

	s := &Simulation{
		width:     opts.Width,
		height:    opts.Height,
		repulsion: clampRepulsion(opts.Repulsion),
		index:     make(map[string]int),
		centers:   make(map[string]Vec),
		visible:   make(map[string]bool),
		rng:       rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
	}
	if sc == nil {
		return s
	}

	for _, e := range sc.Entities {
		if e.IsHub {
			continue
		}
		mass := e.Mass
		if mass <= 0 {
			mass = DefaultMass
		}
		pos := Vec{X: s.uniform(-100, 100), Y: s.uniform(-100, 100)}
		if opts.UseScenarioPositions && e.Pos != nil {
			pos = Vec{X: e.Pos.X, Y: e.Pos.Y}
		}
		s.addNode(&Node{ID: e.ID, Type: e.Type, Mass: mass, Pos: pos})
	}

	for _, r := range sc.Relationships {
		from, ok := s.index[r.From]
		if !ok {
			continue
		}
		to, ok := s.index[r.To]
		if !ok {
			continue
		}
		s.edges = append(s.edges, edge{Edge: Edge{From: r.From, To: r.To, Description: r.Description}, from: from, to: to})
	}

	s.types = sc.Types()
	radius := math.Min(s.width, s.height) * 0.25
	for i, t := range s.types {
		angle := float64(i) / float64(len(s.types)) * 2 * math.Pi
		s.centers[t] = Vec{X: math.Cos(angle) * radius, Y: math.Sin(angle) * radius}
		s.visible[t] = true
	}

	hubs := make(map[string]int, len(s.types))
	entities := len(s.nodes)
	for _, t := range s.types {
		hubs[t] = s.addNode(&Node{ID: HubID(t), Type: t, Mass: HubMass, Pos: s.centers[t], IsHub: true})
	}
	for i := 0; i < entities; i++ {
		n := s.nodes[i]
		h := hubs[n.Type]
		s.edges = append(s.edges, edge{
			Edge: Edge{From: n.ID, To: HubID(n.Type), Description: n.ID + " belongs to " + n.Type + " category", Hub: true},
			from: i,
			to:   h,
		})
	}

	return s
}

func (s *Simulation) addNode(n *Node) int {
	s.nodes = append(s.nodes, n)
	idx := len(s.nodes) - 1
	// entities with duplicate ids: the first one is addressable by id
	if _, ok := s.index[n.ID]; !ok {
		s.index[n.ID] = idx
	}
	return idx
}

func (s *Simulation) uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

func clampRepulsion(r float64) float64 {
	if r == 0 {
		return DefaultRepulsion
	}
	return math.Max(MinRepulsion, math.Min(MaxRepulsion, r))
}

// SetRepulsion changes the repulsion strength, clamped to the allowed range.
func (s *Simulation) SetRepulsion(r float64) {
	s.repulsion = clampRepulsion(r)
}

// Repulsion returns the current repulsion strength.
func (s *Simulation) Repulsion() float64 { return s.repulsion }

// Node returns the node with the given id.
func (s *Simulation) Node(id string) (*Node, bool) {
	idx, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.nodes[idx], true
}

// Nodes returns the simulated nodes. Entities come first, then hubs.
func (s *Simulation) Nodes() []*Node { return s.nodes }

// Edges returns all edges including hub edges.
func (s *Simulation) Edges() []Edge {
	out := make([]Edge, len(s.edges))
	for i, e := range s.edges {
		out[i] = e.Edge
	}
	return out
}

// Types returns the entity types in order of first appearance.
func (s *Simulation) Types() []string { return append([]string(nil), s.types...) }

// Center returns the fixed center for a type.
func (s *Simulation) Center(t string) (Vec, bool) {
	c, ok := s.centers[t]
	return c, ok
}

// Tick returns the number of steps run so far.
func (s *Simulation) Tick() uint64 { return s.tick }

// Run advances the simulation by n steps.
func (s *Simulation) Run(n int) {
	for range n {
		s.Step()
	}
}
