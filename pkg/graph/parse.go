// Package graph turns model output into typed knowledge graphs, either from
// the plain text list formats the demo prompts ask for or through schema
// constrained structured output.
package graph

import (
	"regexp"
	"strings"
)

// FallbackHubName titles the raw text when no hub could be parsed.
const FallbackHubName = "Hub Structure"

var bulletPrefix = regexp.MustCompile(`^[-•*]\s*`)

// Hub is a category with the entities listed under it.
type Hub struct {
	Name     string   `json:"name"`
	Entities []string `json:"entities"`
}

// EntityLine is one "TYPE: name" line. Type is empty when the line has no colon.
type EntityLine struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// RelationshipLine is one "A -> relation -> B" line. Lines without an arrow
// only carry Raw.
type RelationshipLine struct {
	From     string `json:"from,omitempty"`
	Relation string `json:"relation,omitempty"`
	To       string `json:"to,omitempty"`
	Raw      string `json:"raw"`
}

func lines(text string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func isBullet(line string) bool {
	return strings.HasPrefix(line, "-") || strings.HasPrefix(line, "•") || strings.HasPrefix(line, "*")
}

// ParseHubs reads the "HUB_NAME:\n- Entity" format. A line that contains a
// colon or is all uppercase, and is not a bullet, starts a new hub; other
// lines are entities of the current hub. Before the first header any line
// becomes a hub. Hubs without entities are dropped. ok is false when nothing
// could be parsed and the caller should show the raw text.
func ParseHubs(text string) (hubs []Hub, ok bool) {
	var current *Hub
	flush := func() {
		if current != nil && len(current.Entities) > 0 {
			hubs = append(hubs, *current)
		}
	}

	for _, line := range lines(text) {
		header := (strings.Contains(line, ":") || strings.ToUpper(line) == line) && !isBullet(line)
		switch {
		case header:
			flush()
			current = &Hub{Name: strings.TrimSpace(strings.Replace(line, ":", "", 1))}
		case current != nil:
			if entity := strings.TrimSpace(bulletPrefix.ReplaceAllString(line, "")); entity != "" {
				current.Entities = append(current.Entities, entity)
			}
		default:
			current = &Hub{Name: line}
		}
	}
	flush()

	return hubs, len(hubs) > 0
}

// ParseEntities reads one entity per line, split at the first colon.
// Leading bullets are removed.
func ParseEntities(text string) []EntityLine {
	var out []EntityLine
	for _, line := range lines(text) {
		line = bulletPrefix.ReplaceAllString(line, "")
		typ, name, found := strings.Cut(line, ":")
		if !found {
			out = append(out, EntityLine{Name: strings.TrimSpace(line)})
			continue
		}
		out = append(out, EntityLine{Type: strings.TrimSpace(typ), Name: strings.TrimSpace(name)})
	}
	return out
}

// ParseRelationships reads one relationship per line. With two or more
// arrows the middle part is the relation; with one arrow it stays empty.
func ParseRelationships(text string) []RelationshipLine {
	var out []RelationshipLine
	for _, line := range lines(text) {
		if !strings.Contains(line, "->") {
			out = append(out, RelationshipLine{Raw: line})
			continue
		}
		parts := strings.Split(bulletPrefix.ReplaceAllString(line, ""), "->")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		rel := RelationshipLine{
			From: parts[0],
			To:   parts[len(parts)-1],
			Raw:  line,
		}
		if len(parts) > 2 {
			rel.Relation = strings.Join(parts[1:len(parts)-1], " -> ")
		}
		out = append(out, rel)
	}
	return out
}
