package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/cozyai/kitchenette/backend/pkg/ai"
	"github.com/cozyai/kitchenette/backend/pkg/common"
	"github.com/cozyai/kitchenette/backend/pkg/logger"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

type extractEntity struct {
	ID   string `json:"id" jsonschema_description:"Short canonical name of the entity, unique within the graph"`
	Type string `json:"type" jsonschema_description:"Uppercase category of the entity, e.g. PERSON or TECHNOLOGY"`
}

type extractRelationship struct {
	From        string `json:"from" jsonschema_description:"Id of the source entity, as listed in entities"`
	To          string `json:"to" jsonschema_description:"Id of the target entity, as listed in entities"`
	Description string `json:"description" jsonschema_description:"A few words describing how the source relates to the target"`
}

type extractResponse struct {
	Entities      []extractEntity       `json:"entities" jsonschema_description:"Entities identified in the text"`
	Relationships []extractRelationship `json:"relationships" jsonschema_description:"Relationships between the identified entities"`
}

// ExtractOptions tunes Extract.
type ExtractOptions struct {
	// Types restricts the entity categories the model may use.
	Types []string
	Model string
	Title string
}

// Extract asks client for the entities and relationships of text using a
// JSON schema constrained completion and returns them as a scenario.
// Duplicate entities are merged by normalized name; relationships that do
// not resolve to two distinct entities are dropped.
func Extract(
	ctx context.Context,
	client ai.Client,
	text string,
	opts ExtractOptions,
) (*common.Scenario, error) {
	rule := ""
	if len(opts.Types) > 0 {
		types := make([]string, len(opts.Types))
		for i, t := range opts.Types {
			types[i] = strings.ToUpper(strings.TrimSpace(t))
		}
		rule = fmt.Sprintf(ai.GraphTypesRule, strings.Join(types, ", "))
	}

	var res extractResponse
	err := client.GenerateCompletionWithFormat(
		ctx,
		"extract_graph",
		"Extract typed entities and the relationships between them from a text.",
		text,
		&res,
		ai.WithModel(opts.Model),
		ai.WithSystemPrompts(fmt.Sprintf(ai.GraphExtractPrompt, rule)),
	)
	if err != nil {
		return nil, err
	}

	key, err := gonanoid.New(10)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ID for scenario: %w", err)
	}

	sc := &common.Scenario{
		Key:      "extracted-" + key,
		Title:    opts.Title,
		TextBody: text,
	}
	sc.Entities, sc.Relationships = mergeExtraction(res)

	logger.Debug("[Graph] Extracted graph", "entities", len(sc.Entities), "relationships", len(sc.Relationships))
	return sc, nil
}

func normalizeKey(name string) string {
	return strings.ToUpper(strings.Join(strings.Fields(name), " "))
}

func mergeExtraction(res extractResponse) ([]common.Entity, []common.Relationship) {
	entities := make([]common.Entity, 0, len(res.Entities))
	byKey := make(map[string]int, len(res.Entities))
	for _, e := range res.Entities {
		name := strings.Join(strings.Fields(e.ID), " ")
		k := normalizeKey(name)
		if k == "" {
			continue
		}
		if _, ok := byKey[k]; ok {
			continue
		}
		typ := strings.ToUpper(strings.TrimSpace(e.Type))
		if typ == "" {
			typ = "CONCEPT"
		}
		byKey[k] = len(entities)
		entities = append(entities, common.Entity{ID: name, Type: typ})
	}

	relations := make([]common.Relationship, 0, len(res.Relationships))
	seen := make(map[[2]string]bool, len(res.Relationships))
	for _, r := range res.Relationships {
		si, sok := byKey[normalizeKey(r.From)]
		ti, tok := byKey[normalizeKey(r.To)]
		if !sok || !tok || si == ti {
			continue
		}
		from, to := entities[si].ID, entities[ti].ID
		// one edge per pair, whatever its direction
		pair := [2]string{from, to}
		if from > to {
			pair = [2]string{to, from}
		}
		if seen[pair] {
			continue
		}
		seen[pair] = true
		relations = append(relations, common.Relationship{
			From:        from,
			To:          to,
			Description: strings.TrimSpace(r.Description),
		})
	}

	return entities, relations
}
