package util

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ollama/ollama/api"
	"github.com/openai/openai-go/v3"
)

func TestProviderMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "plain", err: errors.New("dial tcp: refused"), want: "dial tcp: refused"},
		{
			name: "openai api error",
			err:  errors.Join(errors.New("chat"), &openai.Error{Message: "The model `gpt-9` does not exist"}),
			want: "The model `gpt-9` does not exist",
		},
		{
			name: "ollama status error",
			err:  fmt.Errorf("chat: %w", api.StatusError{StatusCode: 404, ErrorMessage: `model "llama9" not found`}),
			want: `model "llama9" not found`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProviderMessage(tt.err); got != tt.want {
				t.Fatalf("ProviderMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFieldMessage_FallsBack(t *testing.T) {
	msg := FieldMessage(errors.New("unexpected EOF"), Messages{"texts": "Texts array is required"}, "Invalid request body")
	if msg != "Invalid request body" {
		t.Fatalf("FieldMessage() = %q", msg)
	}
}
