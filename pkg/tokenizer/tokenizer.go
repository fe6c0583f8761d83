// Package tokenizer splits text into BPE tokens with tiktoken.
package tokenizer

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is used when neither an encoding nor a known model is given.
const DefaultEncoding = "o200k_base"

// Encoder is the subset of a tiktoken encoding used here.
type Encoder interface {
	Encode(text string, allowedSpecial []string, disallowedSpecial []string) []int
	Decode(tokens []int) string
}

// Loader resolves an encoding name to an Encoder.
type Loader func(encoding string) (Encoder, error)

// Token is one token of a text. Offsets are rune offsets into the input.
type Token struct {
	ID        int    `json:"id"`
	Text      string `json:"text"`
	StartChar int    `json:"start_char"`
	EndChar   int    `json:"end_char"`
}

// Tokenizer caches encoders by name. It is safe for concurrent use.
type Tokenizer struct {
	load Loader

	mu       sync.Mutex
	encoders map[string]Encoder
}

// New returns a Tokenizer backed by tiktoken. BPE ranks are fetched on first
// use of an encoding unless they are cached locally (TIKTOKEN_CACHE_DIR).
func New() *Tokenizer {
	return NewWithLoader(func(encoding string) (Encoder, error) {
		enc, err := tiktoken.GetEncoding(encoding)
		if err != nil {
			return nil, err
		}
		return enc, nil
	})
}

// NewWithLoader returns a Tokenizer with a custom encoder source.
func NewWithLoader(load Loader) *Tokenizer {
	return &Tokenizer{load: load, encoders: make(map[string]Encoder)}
}

func (t *Tokenizer) encoder(encoding string) (Encoder, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if enc, ok := t.encoders[encoding]; ok {
		return enc, nil
	}
	enc, err := t.load(encoding)
	if err != nil {
		return nil, err
	}
	t.encoders[encoding] = enc
	return enc, nil
}

// Tokenize splits text into tokens using the named encoding.
func (t *Tokenizer) Tokenize(text, encoding string) ([]Token, error) {
	enc, err := t.encoder(encoding)
	if err != nil {
		return nil, err
	}

	runeAt := runeOffsets(text)
	ids := enc.Encode(text, nil, nil)
	tokens := make([]Token, 0, len(ids))
	offset := 0
	for _, id := range ids {
		piece := enc.Decode([]int{id})
		end := min(offset+len(piece), len(text))
		tokens = append(tokens, Token{ID: id, Text: piece, StartChar: runeAt[offset], EndChar: runeAt[end]})
		offset = end
	}
	return tokens, nil
}

// runeOffsets maps every byte position of text (and len(text)) to the number
// of runes started before it. A rune split over several tokens is counted by
// the token holding its first byte.
func runeOffsets(text string) []int {
	runeAt := make([]int, len(text)+1)
	n := 0
	for i := 0; i < len(text); {
		_, size := utf8.DecodeRuneInString(text[i:])
		runeAt[i] = n
		n++
		for j := i + 1; j < i+size; j++ {
			runeAt[j] = n
		}
		i += size
	}
	runeAt[len(text)] = n
	return runeAt
}

// Count returns the number of tokens of text.
func (t *Tokenizer) Count(text, encoding string) (int, error) {
	enc, err := t.encoder(encoding)
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(text, nil, nil)), nil
}

// EncodingForModel returns the encoding used by an OpenAI model. Provider
// prefixes such as "openai/" are ignored.
func EncodingForModel(model string) string {
	if i := strings.LastIndex(model, "/"); i >= 0 {
		model = model[i+1:]
	}
	switch {
	case strings.HasPrefix(model, "gpt-4o"),
		strings.HasPrefix(model, "gpt-4.1"),
		strings.HasPrefix(model, "gpt-5"),
		strings.HasPrefix(model, "o1"),
		strings.HasPrefix(model, "o3"),
		strings.HasPrefix(model, "o4"):
		return "o200k_base"
	case strings.HasPrefix(model, "gpt-4"),
		strings.HasPrefix(model, "gpt-3.5"),
		strings.HasPrefix(model, "text-embedding"):
		return "cl100k_base"
	default:
		return DefaultEncoding
	}
}
