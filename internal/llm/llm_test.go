package llm

import (
	"context"
	"testing"

	"limelight/internal/config"
)

func TestNew_MissingKeyIsDisabled(t *testing.T) {
	gen, err := New(context.Background(), config.Gemini{Model: "gemini-2.0-flash"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if gen != nil {
		t.Error("generator should be nil without a credential")
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare json", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"fence no lang", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"leading whitespace", "  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCodeFence(tt.in); got != tt.want {
				t.Errorf("StripCodeFence(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
