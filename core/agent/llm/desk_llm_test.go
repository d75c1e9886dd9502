package llm

import (
	"errors"
	"testing"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{
			name:  "bare object",
			input: `{"category":"technical"}`,
			want:  `{"category":"technical"}`,
		},
		{
			name:  "markdown fenced",
			input: "```json\n{\"category\":\"billing\"}\n```",
			want:  `{"category":"billing"}`,
		},
		{
			name:  "prose around the object",
			input: `Here is the classification: {"urgency":3} Hope this helps!`,
			want:  `{"urgency":3}`,
		},
		{
			name:  "nested objects",
			input: `{"entities":{"order_id":"1543"},"urgency":2}`,
			want:  `{"entities":{"order_id":"1543"},"urgency":2}`,
		},
		{
			name:  "braces inside string values",
			input: `{"summary":"user pasted {weird} text"}`,
			want:  `{"summary":"user pasted {weird} text"}`,
		},
		{
			name:  "escaped quote inside string",
			input: `{"summary":"said \"it broke\" {twice}"}`,
			want:  `{"summary":"said \"it broke\" {twice}"}`,
		},
		{
			name:  "first of two objects wins",
			input: `{"a":1} {"b":2}`,
			want:  `{"a":1}`,
		},
		{
			name:    "no object at all",
			input:   "I cannot classify this message.",
			wantErr: ErrNoJSON,
		},
		{
			name:    "unbalanced object",
			input:   `{"category":"technical"`,
			wantErr: ErrNoJSON,
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: ErrNoJSON,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractJSONObject(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if c := NewClient(ClientConfig{}); c != nil {
		t.Error("client without API key should be nil")
	}
	if c := NewClassifier(nil); c != nil {
		t.Error("classifier over a nil client should be nil")
	}
}
