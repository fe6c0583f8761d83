// Package extract pulls requested information out of free text with a chat
// model, in one of three output styles.
package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/cozyai/kitchenette/backend/pkg/ai"
)

// Format selects the output style of an extraction.
type Format string

const (
	// FormatStructured is human readable prose or lists.
	FormatStructured Format = "structured"
	// FormatJSON is a JSON object. Valid JSON is re-indented.
	FormatJSON Format = "json"
	// FormatExecutable is code (SQL, API calls) that would use the data.
	FormatExecutable Format = "executable"
)

const (
	DefaultMaxTokens   = 1000
	DefaultTemperature = 0.3
)

// ParseFormat maps a request value to a Format. Unknown values behave as
// FormatStructured but keep their original spelling in the response.
func ParseFormat(s string) Format {
	switch Format(s) {
	case FormatJSON, FormatExecutable:
		return Format(s)
	default:
		return FormatStructured
	}
}

// Prompts returns the system prompt and the filled user message for f.
func Prompts(f Format, request, text string) (system, user string) {
	switch f {
	case FormatJSON:
		return ai.ExtractJSONPrompt, fmt.Sprintf(ai.ExtractJSONTemplate, request, text)
	case FormatExecutable:
		return ai.ExtractExecutablePrompt, fmt.Sprintf(ai.ExtractExecutableTemplate, request, text)
	default:
		return ai.ExtractStructuredPrompt, fmt.Sprintf(ai.ExtractStructuredTemplate, request, text)
	}
}

// Result is one extraction.
type Result struct {
	Extraction string `json:"extraction"`
	// Pretty reports whether a JSON extraction was valid and re-indented.
	Pretty bool   `json:"-"`
	Model  string `json:"model"`
}

// Run extracts request from text. For FormatJSON the answer is re-indented
// with two spaces when it parses, otherwise the raw trimmed answer is kept.
func Run(
	ctx context.Context,
	client ai.Client,
	text string,
	request string,
	format Format,
	model string,
) (*Result, error) {
	system, user := Prompts(format, request, text)

	res, err := client.GenerateChat(ctx,
		[]ai.ChatMessage{ai.UserMessage(user)},
		ai.WithModel(model),
		ai.WithSystemPrompts(system),
		ai.WithMaxTokens(DefaultMaxTokens),
		ai.WithTemperature(DefaultTemperature),
	)
	if err != nil {
		return nil, err
	}

	out := &Result{Extraction: strings.TrimSpace(res.Text), Model: res.Model}
	if format == FormatJSON {
		out.Extraction, out.Pretty = ai.PrettyJSON(out.Extraction)
	}
	return out, nil
}
