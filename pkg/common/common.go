package common

// Scenario is a small typed knowledge graph together with the text it was
// derived from. It is the input for the layout simulation, the RAG pipeline
// and the graph extraction endpoints.
//
// A scenario contains:
//   - Entities: typed nodes, each belonging to exactly one category
//   - Relationships: directed, described edges between entities
//   - TextBody: the source paragraph the graph summarizes
type Scenario struct {
	Key           string         `json:"key" yaml:"key"`
	Title         string         `json:"title" yaml:"title"`
	TextBody      string         `json:"textBody" yaml:"textBody"`
	Entities      []Entity       `json:"nodes" yaml:"nodes"`
	Relationships []Relationship `json:"edges" yaml:"edges"`
}

// Entity is a node of a scenario graph. Mass controls the drawn size and
// hit radius. Pos is an optional starting position.
type Entity struct {
	ID    string  `json:"id" yaml:"id" validate:"required"`
	Type  string  `json:"type" yaml:"type" validate:"required"`
	Mass  float64 `json:"mass,omitempty" yaml:"mass"`
	Pos   *Point  `json:"pos,omitempty" yaml:"pos"`
	IsHub bool    `json:"isHub,omitempty" yaml:"isHub"`
}

// Relationship is a directed edge between two entities referenced by id.
type Relationship struct {
	From        string `json:"from" yaml:"from" validate:"required"`
	To          string `json:"to" yaml:"to" validate:"required"`
	Description string `json:"desc" yaml:"desc"`
}

// Point is a 2D coordinate.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Types returns the distinct entity types in order of first appearance.
// Entities flagged as hubs are ignored.
func (s *Scenario) Types() []string {
	seen := make(map[string]struct{})
	types := make([]string, 0)
	for _, e := range s.Entities {
		if e.IsHub {
			continue
		}
		if _, ok := seen[e.Type]; ok {
			continue
		}
		seen[e.Type] = struct{}{}
		types = append(types, e.Type)
	}
	return types
}
