package server

import (
	"bufio"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	mid "github.com/cozyai/kitchenette/backend/internal/server/middleware"
	"github.com/cozyai/kitchenette/backend/pkg/ai"
	"github.com/cozyai/kitchenette/backend/pkg/ai/stub"
	"github.com/cozyai/kitchenette/backend/pkg/tokenizer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wordEncoder gives every distinct space separated word an id.
type wordEncoder struct {
	mu    sync.Mutex
	ids   map[string]int
	words []string
}

func (w *wordEncoder) Encode(text string, _ []string, _ []string) []int {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []int
	start := 0
	for i := 1; i <= len(text); i++ {
		if i == len(text) || text[i] == ' ' {
			piece := text[start:i]
			id, ok := w.ids[piece]
			if !ok {
				id = len(w.words)
				w.ids[piece] = id
				w.words = append(w.words, piece)
			}
			out = append(out, id)
			start = i
		}
	}
	return out
}

func (w *wordEncoder) Decode(tokens []int) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(w.words[t])
	}
	return b.String()
}

func newTestApp(client *stub.Client) *mid.App {
	return &mid.App{
		AiClient: client,
		Tokenizer: tokenizer.NewWithLoader(func(string) (tokenizer.Encoder, error) {
			return &wordEncoder{ids: map[string]int{}}, nil
		}),
		ChatModel:       "gpt-4o-mini",
		EmbeddingModel:  "text-embedding-3-small",
		EmbeddingModels: []string{"text-embedding-ada-002", "text-embedding-3-small"},
	}
}

func do(t *testing.T, app *mid.App, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	return doWith(t, New(app, Config{}), method, path, body)
}

func doWith(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func chatStub(text string) *stub.Client {
	return &stub.Client{
		Chat: func(opts ai.GenerateOptions, messages []ai.ChatMessage) (*ai.ChatResult, error) {
			return &ai.ChatResult{Text: text, Usage: ai.Usage{InputTokens: 3, OutputTokens: 2, TotalTokens: 5}}, nil
		},
	}
}

func TestHealthAndInfo(t *testing.T) {
	app := newTestApp(&stub.Client{})

	rec := do(t, app, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = do(t, app, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	info := decode[map[string]any](t, rec)
	assert.Equal(t, "API Server Running", info["message"])
	assert.Contains(t, info["endpoints"], "embeddings")
}

func TestEmbeddings(t *testing.T) {
	client := &stub.Client{
		Embed: func(model string, texts []string) ([][]float64, error) {
			if model == "m1" {
				return [][]float64{{1, 0}, {0, 1}}, nil
			}
			return [][]float64{{0.5, 0.5}, {0.5, -0.5}}, nil
		},
	}
	app := newTestApp(client)

	rec := do(t, app, http.MethodPost, "/api/embeddings", `{"texts":["salt","sugar"],"models":["m1"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"m1":[[1,0],[0,1]]}`, rec.Body.String())

	rec = do(t, app, http.MethodPost, "/api/embeddings", `{"texts":["salt","sugar"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[map[string][][]float64](t, rec)
	assert.Len(t, got, 2)
	assert.Contains(t, got, "text-embedding-ada-002")
	assert.Contains(t, got, "text-embedding-3-small")
}

func TestEmbeddings_BadRequest(t *testing.T) {
	app := newTestApp(&stub.Client{})
	for _, body := range []string{`{}`, `{"texts":[]}`, `{"texts":"salt"}`, `not json`} {
		rec := do(t, app, http.MethodPost, "/api/embeddings", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.JSONEq(t, `{"error":"Texts array is required and cannot be empty"}`, rec.Body.String(), body)
	}
}

func TestEmbeddings_UpstreamError(t *testing.T) {
	client := &stub.Client{
		Embed: func(string, []string) ([][]float64, error) {
			return nil, errors.New("deployment not found")
		},
	}
	rec := do(t, newTestApp(client), http.MethodPost, "/api/embeddings", `{"texts":["a"],"models":["m1"]}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "Failed to get embeddings", body["error"])
	assert.Contains(t, body["details"], "deployment not found")
}

func TestSimilarity(t *testing.T) {
	client := &stub.Client{
		Embed: func(model string, texts []string) ([][]float64, error) {
			return [][]float64{{1, 0}, {0, 1}, {1, 0}}, nil
		},
	}
	app := newTestApp(client)

	rec := do(t, app, http.MethodPost, "/api/similarity", `{"query":"knife","documents":["oven","blade"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[
		{"document":"blade","similarity":1,"index":1},
		{"document":"oven","similarity":0,"index":0}
	]`, rec.Body.String())
	assert.Equal(t, "text-embedding-3-small", client.Calls()[0].Model)

	rec = do(t, app, http.MethodPost, "/api/similarity", `{"query":"knife","documents":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Query and documents array are required"}`, rec.Body.String())
}

func TestComplete(t *testing.T) {
	client := chatStub("  a pinch of salt.  ")
	app := newTestApp(client)

	rec := do(t, app, http.MethodPost, "/api/complete", `{"prompt":"Season with"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"completion":"a pinch of salt.","hasContext":false,"model":"gpt-4o-mini"}`, rec.Body.String())

	call := client.Calls()[0]
	assert.Equal(t, ai.CompletePrompt, call.Options.SystemPrompts[0])
	assert.Equal(t, 150, call.Options.MaxTokens)
	assert.InDelta(t, 0.7, call.Options.Temperature, 1e-9)
	assert.Equal(t, "Season with", call.Messages[0].Message)

	rec = do(t, app, http.MethodPost, "/api/complete", `{"prompt":"Season with","context":"Recipe: pasta","model":"o3-mini"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, true, body["hasContext"])
	assert.Equal(t, "o3-mini", body["model"])

	call = client.Calls()[1]
	assert.Equal(t, ai.CompleteContextPrompt, call.Options.SystemPrompts[0])
	assert.Equal(t, "Context:\nRecipe: pasta\n\nComplete this sentence: Season with", call.Messages[0].Message)
}

func TestComplete_BlankContextKeepsPlainPrompt(t *testing.T) {
	client := chatStub("ok")
	rec := do(t, newTestApp(client), http.MethodPost, "/api/complete", `{"prompt":"Hi","context":"   "}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode[map[string]any](t, rec)["hasContext"])
	assert.Equal(t, ai.CompletePrompt, client.Calls()[0].Options.SystemPrompts[0])
}

func TestComplete_Errors(t *testing.T) {
	app := newTestApp(&stub.Client{
		Chat: func(ai.GenerateOptions, []ai.ChatMessage) (*ai.ChatResult, error) {
			return nil, errors.New("rate limit reached")
		},
	})

	for _, body := range []string{`{}`, `{"prompt":42}`, `{"prompt":""}`} {
		rec := do(t, app, http.MethodPost, "/api/complete", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.JSONEq(t, `{"error":"Prompt is required and must be a string"}`, rec.Body.String(), body)
	}

	rec := do(t, app, http.MethodPost, "/api/complete", `{"prompt":"Hi"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to generate completion","details":"rate limit reached"}`, rec.Body.String())
}

func TestCompleteStream(t *testing.T) {
	rec := do(t, newTestApp(chatStub("Salt and pepper")), http.MethodPost, "/api/complete/stream", `{"prompt":"Season with"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/x-ndjson", rec.Header().Get("Content-Type"))

	var lines []map[string]any
	scanner := bufio.NewScanner(rec.Body)
	for scanner.Scan() {
		var line map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
		lines = append(lines, line)
	}
	require.Len(t, lines, 4)
	assert.Equal(t, "Salt", lines[0]["completion"])
	assert.Equal(t, "Salt and", lines[1]["completion"])
	last := lines[3]
	assert.Equal(t, true, last["done"])
	assert.Equal(t, "Salt and pepper", last["completion"])
	assert.NotNil(t, last["metrics"])
}

func TestRag(t *testing.T) {
	client := chatStub("I don't know")
	app := newTestApp(client)

	rec := do(t, app, http.MethodPost, "/api/rag", `{"query":"Who invented pizza?","context":"Ovens bake bread.","idkMode":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"answer":"I don't know","query":"Who invented pizza?","model":"gpt-4o-mini"}`, rec.Body.String())

	call := client.Calls()[0]
	assert.Equal(t, ai.RagStrictPrompt, call.Options.SystemPrompts[0])
	assert.Equal(t, 200, call.Options.MaxTokens)
	assert.InDelta(t, 0.3, call.Options.Temperature, 1e-9)
	assert.Equal(t, "Context:\nOvens bake bread.\n\nQuestion: Who invented pizza?", call.Messages[0].Message)

	rec = do(t, app, http.MethodPost, "/api/rag", `{"context":"x"}`)
	assert.JSONEq(t, `{"error":"Query is required and must be a string"}`, rec.Body.String())
	rec = do(t, app, http.MethodPost, "/api/rag", `{"query":"x"}`)
	assert.JSONEq(t, `{"error":"Context is required and must be a string"}`, rec.Body.String())
}

func TestRagPipeline_Scenario(t *testing.T) {
	client := &stub.Client{
		Embed: func(model string, texts []string) ([][]float64, error) {
			out := make([][]float64, len(texts))
			for i, text := range texts {
				if strings.Contains(text, "Ramsay") || i == 0 {
					out[i] = []float64{1, 0}
				} else {
					out[i] = []float64{0, 1}
				}
			}
			return out, nil
		},
		Chat: func(ai.GenerateOptions, []ai.ChatMessage) (*ai.ChatResult, error) {
			return &ai.ChatResult{Text: "Gordon Ramsay and Julia Child."}, nil
		},
	}

	rec := do(t, newTestApp(client), http.MethodPost, "/api/rag/pipeline", `{"query":"Which chefs are famous?","scenario":"kitchen","chunk_size":20,"max_chunks":1}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode[map[string]any](t, rec)
	assert.Equal(t, "Gordon Ramsay and Julia Child.", body["answer"])
	assert.Len(t, body["retrieved"], 1)
	assert.Contains(t, body["context"], "Ramsay")
	assert.Greater(t, len(body["chunks"].([]any)), 1)

	rec = do(t, newTestApp(client), http.MethodPost, "/api/rag/pipeline", `{"query":"x","scenario":"bakery"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExtractStructured(t *testing.T) {
	client := chatStub(`{"appliances":["oven","stove"]}`)
	app := newTestApp(client)

	rec := do(t, app, http.MethodPost, "/api/extract-structured", `{"text":"The oven and the stove.","prompt":"appliances","format":"json"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "{\n  \"appliances\": [\n    \"oven\",\n    \"stove\"\n  ]\n}", body["extraction"])
	assert.Equal(t, "json", body["format"])
	assert.Equal(t, "appliances", body["originalPrompt"])
	assert.Equal(t, ai.ExtractJSONPrompt, client.Calls()[0].Options.SystemPrompts[0])
	assert.Equal(t, 1000, client.Calls()[0].Options.MaxTokens)

	rec = do(t, app, http.MethodPost, "/api/extract-structured", `{"text":"x","prompt":"y","format":"yaml"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "yaml", decode[map[string]string](t, rec)["format"])
	assert.Equal(t, ai.ExtractStructuredPrompt, client.Calls()[1].Options.SystemPrompts[0])

	rec = do(t, app, http.MethodPost, "/api/extract-structured", `{"prompt":"y"}`)
	assert.JSONEq(t, `{"error":"Text is required and must be a string"}`, rec.Body.String())
	rec = do(t, app, http.MethodPost, "/api/extract-structured", `{"text":"y"}`)
	assert.JSONEq(t, `{"error":"Prompt is required and must be a string"}`, rec.Body.String())
}

func TestCompleteLogprobs(t *testing.T) {
	client := &stub.Client{
		Chat: func(opts ai.GenerateOptions, _ []ai.ChatMessage) (*ai.ChatResult, error) {
			return &ai.ChatResult{
				Text: "red",
				Logprobs: []ai.TokenLogprob{{
					Token:   "red",
					Logprob: math.Log(0.5),
					TopLogprobs: []ai.TopLogprob{
						{Token: "red", Logprob: math.Log(0.5)},
						{Token: "blue", Logprob: math.Log(0.25)},
					},
				}},
				Usage: ai.Usage{InputTokens: 4, OutputTokens: 1, TotalTokens: 5},
			}, nil
		},
	}

	rec := do(t, newTestApp(client), http.MethodPost, "/api/complete-logprobs", `{"prompt":"Strawberries are","top_logprobs":50,"temperature":0}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Content string `json:"content"`
		Steps   []struct {
			Token       string  `json:"token"`
			Probability float64 `json:"probability"`
			TopLogprobs []struct {
				Token       string  `json:"token"`
				Probability float64 `json:"probability"`
			} `json:"top_logprobs"`
		} `json:"steps"`
		Usage ai.Usage `json:"usage"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "red", body.Content)
	require.Len(t, body.Steps, 1)
	assert.InDelta(t, 0.5, body.Steps[0].Probability, 1e-9)
	assert.InDelta(t, 0.25, body.Steps[0].TopLogprobs[1].Probability, 1e-9)
	assert.Equal(t, 5, body.Usage.TotalTokens)

	opts := client.Calls()[0].Options
	assert.True(t, opts.Logprobs)
	assert.Equal(t, 20, opts.TopLogprobs)
	assert.Equal(t, 50, opts.MaxTokens)
	assert.InDelta(t, 0.0, opts.Temperature, 1e-9)
}

func TestCompareModels_KeepsRequestOrder(t *testing.T) {
	client := &stub.Client{
		Chat: func(opts ai.GenerateOptions, _ []ai.ChatMessage) (*ai.ChatResult, error) {
			if opts.Model == "broken/model" {
				return nil, errors.New("unknown model")
			}
			return &ai.ChatResult{Text: "There are 3 Rs in " + opts.Model}, nil
		},
	}

	body := `{"question":"How many Rs are in strawberry?","models":["openai/gpt-4o-mini","broken/model","mistral-ai/mistral-small-2503"]}`
	rec := do(t, newTestApp(client), http.MethodPost, "/api/compare-models", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Results []modelResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 3)
	assert.Equal(t, "openai/gpt-4o-mini", resp.Results[0].Model)
	assert.Equal(t, "There are 3 Rs in openai/gpt-4o-mini", resp.Results[0].Response)
	assert.Equal(t, 6, resp.Results[0].Tokens.Input)
	assert.Equal(t, "unknown model", resp.Results[1].Error)
	assert.Equal(t, "mistral-ai/mistral-small-2503", resp.Results[2].Model)

	rec = do(t, newTestApp(client), http.MethodPost, "/api/compare-models", `{"question":"x","models":[]}`)
	assert.JSONEq(t, `{"error":"Models array is required and cannot be empty"}`, rec.Body.String())
}

type modelResult struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Error    string `json:"error"`
	Tokens   struct {
		Input  int `json:"input"`
		Output int `json:"output"`
		Total  int `json:"total"`
	} `json:"tokens"`
}

func TestTokenize(t *testing.T) {
	rec := do(t, newTestApp(&stub.Client{}), http.MethodPost, "/api/tokenize", `{"text":"straw berry"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"encoding":"o200k_base","count":2,"chars":11,
		"tokens":[
			{"id":0,"text":"straw","start_char":0,"end_char":5},
			{"id":1,"text":" berry","start_char":5,"end_char":11}
		]
	}`, rec.Body.String())

	rec = do(t, newTestApp(&stub.Client{}), http.MethodPost, "/api/tokenize", `{"text":"x","encoding":"klingon"}`)
	assert.JSONEq(t, `{"error":"Unknown encoding"}`, rec.Body.String())
}

func TestExtractGraph(t *testing.T) {
	client := &stub.Client{
		Format: func(name, prompt string, out any) error {
			return json.Unmarshal([]byte(`{
				"entities":[{"id":"Oven","type":"appliance"},{"id":"Roasting","type":"technique"}],
				"relationships":[{"from":"Oven","to":"Roasting","description":"enables"}]
			}`), out)
		},
	}

	rec := do(t, newTestApp(client), http.MethodPost, "/api/extract-graph", `{"text":"The oven enables roasting.","types":["appliance","technique"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Scenario struct {
			Nodes []struct {
				ID   string `json:"id"`
				Type string `json:"type"`
			} `json:"nodes"`
			Edges []struct {
				From string `json:"from"`
				Desc string `json:"desc"`
			} `json:"edges"`
		} `json:"scenario"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Scenario.Nodes, 2)
	assert.Equal(t, "APPLIANCE", body.Scenario.Nodes[0].Type)
	require.Len(t, body.Scenario.Edges, 1)
	assert.Equal(t, "enables", body.Scenario.Edges[0].Desc)

	rec = do(t, newTestApp(client), http.MethodPost, "/api/extract-graph", `{"text":"x","mode":"tree"}`)
	assert.JSONEq(t, `{"error":"Mode must be schema or text"}`, rec.Body.String())
}

func TestParseHubs(t *testing.T) {
	app := newTestApp(&stub.Client{})

	rec := do(t, app, http.MethodPost, "/api/graph/parse-hubs", `{"text":"APPLIANCES:\n- Stove\n- Oven"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"hubs":[{"name":"APPLIANCES","entities":["Stove","Oven"]}]}`, rec.Body.String())

	rec = do(t, app, http.MethodPost, "/api/graph/parse-hubs", `{"text":"NOTHING"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"hubs":[],"raw":"NOTHING"}`, rec.Body.String())
}

func TestScenarios(t *testing.T) {
	app := newTestApp(&stub.Client{})

	rec := do(t, app, http.MethodGet, "/api/scenarios", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]map[string]any](t, rec)
	require.Len(t, list, 3)
	assert.Equal(t, "ai", list[0]["key"])

	rec = do(t, app, http.MethodGet, "/api/scenarios/kitchen", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Modern Kitchen Ecosystem", decode[map[string]any](t, rec)["title"])

	rec = do(t, app, http.MethodGet, "/api/scenarios/bakery", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Scenario not found"}`, rec.Body.String())
}

func TestGraphLayout(t *testing.T) {
	app := newTestApp(&stub.Client{})

	rec := do(t, app, http.MethodPost, "/api/graph/layout", `{"scenario":"kitchen","frames":10,"seed":7,"hidden":["CHEF"],"locked":["Oven"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var frame struct {
		Nodes []struct {
			ID      string `json:"id"`
			Hub     bool   `json:"hub"`
			Locked  bool   `json:"locked"`
			Visible bool   `json:"visible"`
			Type    string `json:"type"`
		} `json:"nodes"`
		Types []struct {
			Name    string `json:"name"`
			Visible bool   `json:"visible"`
		} `json:"types"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &frame))
	assert.Len(t, frame.Nodes, 18)
	assert.Len(t, frame.Types, 5)
	for _, n := range frame.Nodes {
		if n.Type == "CHEF" {
			assert.False(t, n.Visible, n.ID)
		}
		if n.ID == "Oven" {
			assert.True(t, n.Locked)
		}
	}

	rec = do(t, app, http.MethodPost, "/api/graph/layout", `{"nodes":[{"id":"a","type":"X"},{"id":"b","type":"Y"}],"edges":[{"from":"a","to":"b"}],"frames":1,"format":"svg"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "<?xml"))

	rec = do(t, app, http.MethodPost, "/api/graph/layout", `{}`)
	assert.JSONEq(t, `{"error":"Scenario or nodes array is required"}`, rec.Body.String())
	rec = do(t, app, http.MethodPost, "/api/graph/layout", `{"nodes":[{"id":"a"}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGraphStream(t *testing.T) {
	rec := do(t, newTestApp(&stub.Client{}), http.MethodPost, "/api/graph/stream", `{"scenario":"ai","maxFrames":5,"stepsPerFrame":2}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var seqs []uint64
	scanner := bufio.NewScanner(rec.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var f struct {
			Seq  uint64 `json:"seq"`
			Tick uint64 `json:"tick"`
		}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &f))
		seqs = append(seqs, f.Seq)
	}
	require.Len(t, seqs, 5)
	for i := 1; i < len(seqs); i++ {
		assert.Greater(t, seqs[i], seqs[i-1])
	}
}

func TestGraphStream_Commands(t *testing.T) {
	body := `{"scenario":"ai","maxFrames":8,"commands":[
		{"atFrame":0,"action":"lock","id":"Deep Learning"},
		{"atFrame":2,"action":"hide","type":"RESEARCHER"},
		{"atFrame":3,"action":"repulsion","value":1800}
	]}`
	rec := do(t, newTestApp(&stub.Client{}), http.MethodPost, "/api/graph/stream", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	type frame struct {
		Repulsion float64 `json:"repulsion"`
		Types     []struct {
			Name    string `json:"name"`
			Visible bool   `json:"visible"`
		} `json:"types"`
		Nodes []struct {
			ID     string `json:"id"`
			Locked bool   `json:"locked"`
		} `json:"nodes"`
	}
	researchersVisible := func(f frame) bool {
		for _, typ := range f.Types {
			if typ.Name == "RESEARCHER" {
				return typ.Visible
			}
		}
		t.Fatalf("RESEARCHER missing from frame")
		return false
	}

	var frames []frame
	scanner := bufio.NewScanner(rec.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var f frame
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &f))
		frames = append(frames, f)
	}
	require.Len(t, frames, 8)

	for _, n := range frames[0].Nodes {
		if n.ID == "Deep Learning" {
			assert.True(t, n.Locked)
		}
	}
	assert.True(t, researchersVisible(frames[0]))
	assert.True(t, researchersVisible(frames[1]))
	last := frames[len(frames)-1]
	assert.False(t, researchersVisible(last))
	assert.Equal(t, 1800.0, last.Repulsion)
}

func TestGraphStream_UnknownCommand(t *testing.T) {
	rec := do(t, newTestApp(&stub.Client{}), http.MethodPost, "/api/graph/stream", `{"scenario":"ai","commands":[{"action":"explode"}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGraphLayout_EmptyNodesWithoutScenario(t *testing.T) {
	rec := do(t, newTestApp(&stub.Client{}), http.MethodPost, "/api/graph/layout", `{"nodes":[]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "Scenario or nodes array is required", body["error"])
}

func TestVisualize(t *testing.T) {
	client := &stub.Client{
		Embed: func(model string, texts []string) ([][]float64, error) {
			return [][]float64{{1, 0, 0}, {0.9, 0.1, 0}, {0, 0, 1}}, nil
		},
	}
	app := newTestApp(client)

	rec := do(t, app, http.MethodPost, "/api/visualize", `{"texts":["oven","stove","basil"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var scene struct {
		Width float64 `json:"width"`
		Panes []struct {
			Model string `json:"model"`
			Dots  []any  `json:"dots"`
			Links []any  `json:"links"`
		} `json:"panes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &scene))
	assert.Equal(t, 800.0, scene.Width)
	require.Len(t, scene.Panes, 2)
	assert.Equal(t, "text-embedding-ada-002", scene.Panes[0].Model)
	assert.Len(t, scene.Panes[0].Dots, 3)
	assert.Len(t, scene.Panes[0].Links, 1)

	rec = do(t, app, http.MethodPost, "/api/visualize", `{"texts":["a"],"method":"umap"}`)
	assert.JSONEq(t, `{"error":"method must be seeded or svd"}`, rec.Body.String())
}

func TestMetrics(t *testing.T) {
	client := chatStub("ok")
	app := newTestApp(client)
	e := New(app, Config{})

	doWith(t, e, http.MethodPost, "/api/complete", `{"prompt":"Hi"}`)
	rec := doWith(t, e, http.MethodGet, "/api/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var m struct {
		Default ai.ModelMetrics `json:"default"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.Equal(t, 5, m.Default.TotalTokens)
	assert.Equal(t, 1, m.Default.Requests)

	rec = doWith(t, e, http.MethodDelete, "/api/metrics", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, client.GetMetrics().TotalTokens)
}

func TestRateLimit(t *testing.T) {
	e := New(newTestApp(&stub.Client{}), Config{RateLimit: 1})

	codes := make([]int, 0, 3)
	for range 3 {
		codes = append(codes, doWith(t, e, http.MethodGet, "/api/scenarios", "").Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, http.StatusOK, doWith(t, e, http.MethodGet, "/health", "").Code)
}

func TestBodyLimit(t *testing.T) {
	e := New(newTestApp(&stub.Client{}), Config{BodyLimit: "1K"})
	body := `{"text":"` + strings.Repeat("a", 2048) + `"}`
	assert.Equal(t, http.StatusRequestEntityTooLarge, doWith(t, e, http.MethodPost, "/api/tokenize", body).Code)
}
