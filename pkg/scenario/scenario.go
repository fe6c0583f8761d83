// Package scenario provides the built-in example knowledge graphs.
package scenario

import (
	"embed"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/cozyai/kitchenette/backend/pkg/common"
)

//go:embed data/*.yaml
var files embed.FS

// ErrNotFound is returned when no scenario exists for a key.
var ErrNotFound = errors.New("scenario not found")

// Summary describes a scenario without its graph.
type Summary struct {
	Key           string `json:"key"`
	Title         string `json:"title"`
	Entities      int    `json:"nodeCount"`
	Relationships int    `json:"edgeCount"`
}

var (
	loadOnce  sync.Once
	scenarios map[string]common.Scenario
	loadErr   error
)

func load() {
	scenarios = make(map[string]common.Scenario)

	entries, err := files.ReadDir("data")
	if err != nil {
		loadErr = err
		return
	}
	for _, entry := range entries {
		raw, err := files.ReadFile(path.Join("data", entry.Name()))
		if err != nil {
			loadErr = err
			return
		}
		s, err := Parse(raw)
		if err != nil {
			loadErr = fmt.Errorf("parse %s: %w", entry.Name(), err)
			return
		}
		if s.Key == "" {
			s.Key = strings.TrimSuffix(entry.Name(), path.Ext(entry.Name()))
		}
		scenarios[s.Key] = *s
	}
}

// Parse decodes a scenario from YAML (JSON is accepted as well).
func Parse(raw []byte) (*common.Scenario, error) {
	var s common.Scenario
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Get returns a copy of the built-in scenario for key.
func Get(key string) (*common.Scenario, error) {
	loadOnce.Do(load)
	if loadErr != nil {
		return nil, loadErr
	}

	s, ok := scenarios[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	return clone(s), nil
}

// List returns summaries of all built-in scenarios sorted by key.
func List() ([]Summary, error) {
	loadOnce.Do(load)
	if loadErr != nil {
		return nil, loadErr
	}

	out := make([]Summary, 0, len(scenarios))
	for key, s := range scenarios {
		out = append(out, Summary{
			Key:           key,
			Title:         s.Title,
			Entities:      len(s.Entities),
			Relationships: len(s.Relationships),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func clone(s common.Scenario) *common.Scenario {
	c := s
	c.Entities = make([]common.Entity, len(s.Entities))
	for i, e := range s.Entities {
		c.Entities[i] = e
		if e.Pos != nil {
			p := *e.Pos
			c.Entities[i].Pos = &p
		}
	}
	c.Relationships = append([]common.Relationship(nil), s.Relationships...)
	return &c
}
