package graph

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/cozyai/kitchenette/backend/pkg/ai"
	"github.com/cozyai/kitchenette/backend/pkg/ai/stub"
)

func TestParseHubs(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   []Hub
		wantOK bool
	}{
		{
			name: "requested format",
			text: "APPLIANCES:\n- Stove\n- Oven\n\nTOOLS:\n• Knives\n* Cutting boards\n",
			want: []Hub{
				{Name: "APPLIANCES", Entities: []string{"Stove", "Oven"}},
				{Name: "TOOLS", Entities: []string{"Knives", "Cutting boards"}},
			},
			wantOK: true,
		},
		{
			name: "uppercase header without colon and indented bullets",
			text: "INGREDIENTS\n   - Tomatoes\n   - Garlic",
			want: []Hub{
				{Name: "INGREDIENTS", Entities: []string{"Tomatoes", "Garlic"}},
			},
			wantOK: true,
		},
		{
			name: "empty hubs dropped",
			text: "Chefs:\nTechniques:\n- Braising",
			want: []Hub{
				{Name: "Techniques", Entities: []string{"Braising"}},
			},
			wantOK: true,
		},
		{
			name: "fallback hub before any header",
			text: "here are the hubs\nsome entity",
			want: []Hub{
				{Name: "here are the hubs", Entities: []string{"some entity"}},
			},
			wantOK: true,
		},
		{
			name:   "nothing parses",
			text:   "SINGLE LINE",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseHubs(tt.text)
			if ok != tt.wantOK || len(got) != len(tt.want) {
				t.Fatalf("ParseHubs() = %+v, %v; want %+v, %v", got, ok, tt.want, tt.wantOK)
			}
			for i := range tt.want {
				if got[i].Name != tt.want[i].Name || strings.Join(got[i].Entities, "|") != strings.Join(tt.want[i].Entities, "|") {
					t.Fatalf("hub %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseEntities(t *testing.T) {
	got := ParseEntities("TECHNOLOGY: Neural networks\n- PERSON: Geoffrey Hinton\n\nCONCEPT: Bias: algorithmic\nplain line")
	want := []EntityLine{
		{Type: "TECHNOLOGY", Name: "Neural networks"},
		{Type: "PERSON", Name: "Geoffrey Hinton"},
		{Type: "CONCEPT", Name: "Bias: algorithmic"},
		{Name: "plain line"},
	}
	if len(got) != len(want) {
		t.Fatalf("ParseEntities() = %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entity %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestParseRelationships(t *testing.T) {
	got := ParseRelationships("Deep Learning -> is a subset of -> Machine Learning\nStove -> Oven\nNo arrow here")
	if len(got) != 3 {
		t.Fatalf("ParseRelationships() = %+v", got)
	}
	if got[0].From != "Deep Learning" || got[0].Relation != "is a subset of" || got[0].To != "Machine Learning" {
		t.Fatalf("unexpected first relationship %+v", got[0])
	}
	if got[1].From != "Stove" || got[1].To != "Oven" || got[1].Relation != "" {
		t.Fatalf("unexpected second relationship %+v", got[1])
	}
	if got[2].From != "" || got[2].Raw != "No arrow here" {
		t.Fatalf("unexpected third relationship %+v", got[2])
	}
}

func formatStub(answer string) *stub.Client {
	return &stub.Client{
		Format: func(name, prompt string, out any) error {
			return json.Unmarshal([]byte(answer), out)
		},
	}
}

func TestExtract(t *testing.T) {
	client := formatStub(`{
	  "entities": [
	    {"id": "Gordon Ramsay", "type": "chef"},
	    {"id": "gordon  ramsay", "type": "PERSON"},
	    {"id": "Oven", "type": "APPLIANCE"},
	    {"id": "Roasting", "type": ""},
	    {"id": "  ", "type": "TOOL"}
	  ],
	  "relationships": [
	    {"from": "Oven", "to": "Roasting", "description": " enables "},
	    {"from": "Roasting", "to": "oven", "description": "needs"},
	    {"from": "Gordon Ramsay", "to": "Julia Child", "description": "admires"},
	    {"from": "Oven", "to": "OVEN", "description": "self"}
	  ]
	}`)

	sc, err := Extract(context.Background(), client, "The oven enables roasting.", ExtractOptions{Types: []string{"chef", "appliance"}, Title: "Kitchen"})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if len(sc.Entities) != 3 {
		t.Fatalf("expected 3 merged entities, got %+v", sc.Entities)
	}
	if sc.Entities[0].ID != "Gordon Ramsay" || sc.Entities[0].Type != "CHEF" {
		t.Fatalf("first entity = %+v", sc.Entities[0])
	}
	if sc.Entities[2].Type != "CONCEPT" {
		t.Fatalf("untyped entity got %q", sc.Entities[2].Type)
	}
	if len(sc.Relationships) != 1 || sc.Relationships[0].Description != "enables" {
		t.Fatalf("unexpected relationships %+v", sc.Relationships)
	}
	if !strings.HasPrefix(sc.Key, "extracted-") || sc.TextBody == "" || sc.Title != "Kitchen" {
		t.Fatalf("unexpected scenario header %+v", sc)
	}

	call := client.Calls()[0]
	if !strings.Contains(call.Options.SystemPrompts[0], "Only use these entity types: CHEF, APPLIANCE.") {
		t.Fatalf("types rule missing from prompt: %s", call.Options.SystemPrompts[0])
	}
	if strings.Contains(call.Options.SystemPrompts[0], "The oven enables roasting.") {
		t.Fatal("input text repeated in the system prompt")
	}
	if len(call.Messages) != 1 || call.Messages[0].Message != "The oven enables roasting." {
		t.Fatalf("input text not sent as the user message: %+v", call.Messages)
	}
}

func TestExtract_Error(t *testing.T) {
	client := &stub.Client{Format: func(string, string, any) error { return errors.New("schema rejected") }}
	if _, err := Extract(context.Background(), client, "x", ExtractOptions{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestAnalyze(t *testing.T) {
	client := &stub.Client{
		Chat: func(opts ai.GenerateOptions, messages []ai.ChatMessage) (*ai.ChatResult, error) {
			msg := messages[0].Message
			switch {
			case strings.Contains(msg, "hub categories"):
				return &ai.ChatResult{Text: "APPLIANCE:\n- Oven\nTECHNIQUE:\n- Roasting"}, nil
			case strings.Contains(msg, "relationships"):
				return &ai.ChatResult{Text: "Oven -> enables -> Roasting"}, nil
			default:
				return &ai.ChatResult{Text: "APPLIANCE: Oven\nRoasting"}, nil
			}
		},
	}

	a, err := Analyze(context.Background(), client, "The oven enables roasting.", "gpt-4o-mini")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(a.Entities) != 2 || len(a.Relationships) != 1 || len(a.Hubs) != 2 || a.HubsRaw != "" {
		t.Fatalf("unexpected analysis %+v", a)
	}
	if len(client.Calls()) != 3 {
		t.Fatalf("expected 3 requests, got %d", len(client.Calls()))
	}

	sc := a.Scenario("analysis", "The oven enables roasting.")
	if len(sc.Entities) != 2 || sc.Entities[1].Type != "TECHNIQUE" {
		t.Fatalf("hub did not type the entity: %+v", sc.Entities)
	}
	if len(sc.Relationships) != 1 || sc.Relationships[0].From != "Oven" {
		t.Fatalf("unexpected relationships %+v", sc.Relationships)
	}
}

func TestAnalyze_HubFallback(t *testing.T) {
	client := &stub.Client{
		Chat: func(opts ai.GenerateOptions, messages []ai.ChatMessage) (*ai.ChatResult, error) {
			return &ai.ChatResult{Text: "NOTHING TO GROUP"}, nil
		},
	}
	a, err := Analyze(context.Background(), client, "text", "")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(a.Hubs) != 0 || a.HubsRaw != "NOTHING TO GROUP" {
		t.Fatalf("expected raw fallback, got %+v", a)
	}
}
