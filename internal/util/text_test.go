package util

import "testing"

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain utf8",
			input: "sauté the onions",
			want:  "sauté the onions",
		},
		{
			name:  "contains null byte",
			input: "gar\x00lic",
			want:  "garlic",
		},
		{
			name:  "contains invalid utf8",
			input: string([]byte{'o', 0xff, 'k'}),
			want:  "ok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeText(tt.input)
			if got != tt.want {
				t.Fatalf("unexpected sanitized value: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitizeTexts(t *testing.T) {
	got := SanitizeTexts([]string{"a\x00", "b"})
	if got[0] != "a" || got[1] != "b" {
		t.Fatalf("SanitizeTexts() = %q", got)
	}
}
