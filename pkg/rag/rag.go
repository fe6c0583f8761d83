// Package rag implements the word-chunk retrieval pipeline: split a text into
// fixed size word chunks, rank them against a query by embedding similarity
// and answer the query from the best chunks only.
package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cozyai/kitchenette/backend/pkg/ai"
	"github.com/cozyai/kitchenette/backend/pkg/logger"
	"github.com/cozyai/kitchenette/backend/pkg/vector"
)

const (
	DefaultChunkSize = 50
	DefaultMaxChunks = 3

	DefaultAnswerTokens      = 200
	DefaultAnswerTemperature = 0.3

	// IDontKnow is the exact answer requested in strict mode.
	IDontKnow = "I don't know"
)

var ErrEmptyQuery = errors.New("query is empty")

// Chunk is a run of consecutive words. ID is its position in the text.
type Chunk struct {
	ID         int     `json:"id"`
	Text       string  `json:"text"`
	Similarity float64 `json:"similarity"`
}

// ChunkText splits text on single spaces into chunks of size words. Blank
// chunks are skipped, so IDs can have gaps. A non-positive size uses
// DefaultChunkSize.
func ChunkText(text string, size int) []Chunk {
	if size <= 0 {
		size = DefaultChunkSize
	}
	words := strings.Split(text, " ")
	chunks := make([]Chunk, 0, len(words)/size+1)
	for i := 0; i < len(words); i += size {
		part := strings.Join(words[i:min(i+size, len(words))], " ")
		if strings.TrimSpace(part) == "" {
			continue
		}
		chunks = append(chunks, Chunk{ID: i / size, Text: part})
	}
	return chunks
}

// Rank scores chunks against query. vectors[i] embeds chunks[i]. The result
// is a new slice sorted by similarity, highest first.
func Rank(query []float64, chunks []Chunk, vectors [][]float64) []Chunk {
	labels := make([]string, len(chunks))
	for i, c := range chunks {
		labels[i] = c.Text
	}
	matches := vector.Rank(query, vectors[:min(len(vectors), len(chunks))], labels)

	ranked := make([]Chunk, len(matches))
	for i, m := range matches {
		ranked[i] = chunks[m.Index]
		ranked[i].Similarity = m.Similarity
	}
	return ranked
}

// Top returns at most k leading chunks.
func Top(ranked []Chunk, k int) []Chunk {
	if k <= 0 {
		k = DefaultMaxChunks
	}
	return ranked[:min(k, len(ranked))]
}

// JoinContext concatenates chunk texts with single spaces.
func JoinContext(chunks []Chunk) string {
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Text
	}
	return strings.Join(parts, " ")
}

// AnswerOptions tunes the grounded answer.
type AnswerOptions struct {
	Model string
	// Strict asks the model to reply IDontKnow when the context is insufficient.
	Strict bool
}

// Answer asks client to answer query using passage as the only context. The answer text is
// trimmed.
func Answer(
	ctx context.Context,
	client ai.Client,
	query string,
	passage string,
	opts AnswerOptions,
) (*ai.ChatResult, error) {
	system := ai.RagPrompt
	if opts.Strict {
		system = ai.RagStrictPrompt
	}

	res, err := client.GenerateChat(ctx,
		[]ai.ChatMessage{ai.UserMessage(fmt.Sprintf(ai.RagTemplate, passage, query))},
		ai.WithModel(opts.Model),
		ai.WithSystemPrompts(system),
		ai.WithMaxTokens(DefaultAnswerTokens),
		ai.WithTemperature(DefaultAnswerTemperature),
	)
	if err != nil {
		return nil, err
	}
	res.Text = strings.TrimSpace(res.Text)
	return res, nil
}

// Request is one run of the pipeline.
type Request struct {
	Query     string
	Text      string
	ChunkSize int
	MaxChunks int
	Strict    bool

	EmbeddingModel string
	ChatModel      string
}

// Result holds every intermediate step so clients can show the retrieval.
type Result struct {
	Query     string  `json:"query"`
	ChunkSize int     `json:"chunkSize"`
	Chunks    []Chunk `json:"chunks"`
	Ranked    []Chunk `json:"ranked"`
	Retrieved []Chunk `json:"retrieved"`
	Context   string  `json:"context"`
	Answer    string  `json:"answer"`

	EmbeddingModel string `json:"embeddingModel"`
	Model          string `json:"model"`
}

// Run chunks the text, embeds the query together with all chunks in one
// request, ranks the chunks and answers from the top MaxChunks of them.
func Run(ctx context.Context, client ai.Client, req Request) (*Result, error) {
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		return nil, ErrEmptyQuery
	}
	if req.ChunkSize <= 0 {
		req.ChunkSize = DefaultChunkSize
	}

	res := &Result{
		Query:     req.Query,
		ChunkSize: req.ChunkSize,
		Chunks:    ChunkText(req.Text, req.ChunkSize),
	}

	texts := make([]string, 0, len(res.Chunks)+1)
	texts = append(texts, req.Query)
	for _, c := range res.Chunks {
		texts = append(texts, c.Text)
	}

	emb, err := client.GenerateEmbeddings(ctx, texts, ai.WithModel(req.EmbeddingModel))
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(emb.Vectors) < len(texts) {
		return nil, fmt.Errorf("embed chunks: got %d vectors for %d texts", len(emb.Vectors), len(texts))
	}
	res.EmbeddingModel = emb.Model

	res.Ranked = Rank(emb.Vectors[0], res.Chunks, emb.Vectors[1:])
	res.Retrieved = Top(res.Ranked, req.MaxChunks)
	res.Context = JoinContext(res.Retrieved)

	logger.Debug("[RAG] Retrieved chunks", "query", req.Query, "chunks", len(res.Chunks), "retrieved", len(res.Retrieved))

	answer, err := Answer(ctx, client, req.Query, res.Context, AnswerOptions{
		Model:  req.ChatModel,
		Strict: req.Strict,
	})
	if err != nil {
		return nil, fmt.Errorf("answer: %w", err)
	}
	res.Answer = answer.Text
	res.Model = answer.Model

	return res, nil
}
