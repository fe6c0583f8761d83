package graph

import (
	"context"
	"fmt"

	"github.com/cozyai/kitchenette/backend/pkg/ai"
	"github.com/cozyai/kitchenette/backend/pkg/common"
	"github.com/cozyai/kitchenette/backend/pkg/extract"

	"golang.org/x/sync/errgroup"
)

// Analysis is the result of the three list prompts over one text.
type Analysis struct {
	Entities      []EntityLine       `json:"entities"`
	Relationships []RelationshipLine `json:"relationships"`
	Hubs          []Hub              `json:"hubs"`
	// HubsRaw is set when the hub answer could not be parsed.
	HubsRaw string `json:"hubsRaw,omitempty"`
	Model   string `json:"model"`
}

// Analyze runs the entity, relationship and hub prompts against text as
// structured extractions and parses their line formats. The three requests
// run concurrently; the first failure cancels the others.
func Analyze(ctx context.Context, client ai.Client, text, model string) (*Analysis, error) {
	prompts := [3]string{ai.EntitiesPrompt, ai.RelationshipsPrompt, ai.HubsPrompt}
	results := [3]*extract.Result{}

	eg, ectx := errgroup.WithContext(ctx)
	for i, prompt := range prompts {
		eg.Go(func() error {
			res, err := extract.Run(ectx, client, text, prompt, extract.FormatStructured, model)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	a := &Analysis{
		Entities:      ParseEntities(results[0].Extraction),
		Relationships: ParseRelationships(results[1].Extraction),
		Model:         results[0].Model,
	}
	hubs, ok := ParseHubs(results[2].Extraction)
	if ok {
		a.Hubs = hubs
	} else {
		a.Hubs = []Hub{}
		a.HubsRaw = results[2].Extraction
	}
	return a, nil
}

// Scenario builds a graph from the parsed lines. Entities without a type
// are typed by the hub that lists them, or CONCEPT. Relationships are kept
// when both ends name a known entity.
func (a *Analysis) Scenario(key, text string) *common.Scenario {
	hubOf := make(map[string]string)
	for _, h := range a.Hubs {
		for _, e := range h.Entities {
			if _, ok := hubOf[normalizeKey(e)]; !ok {
				hubOf[normalizeKey(e)] = normalizeKey(h.Name)
			}
		}
	}

	res := extractResponse{}
	for _, e := range a.Entities {
		typ := e.Type
		if typ == "" {
			typ = hubOf[normalizeKey(e.Name)]
		}
		res.Entities = append(res.Entities, extractEntity{ID: e.Name, Type: typ})
	}
	for _, r := range a.Relationships {
		if r.From == "" {
			continue
		}
		res.Relationships = append(res.Relationships, extractRelationship{From: r.From, To: r.To, Description: r.Relation})
	}

	sc := &common.Scenario{
		Key:      key,
		Title:    fmt.Sprintf("Analysis of %d entities", len(a.Entities)),
		TextBody: text,
	}
	sc.Entities, sc.Relationships = mergeExtraction(res)
	return sc
}
