// Package llm wraps the Gemini API behind a small Generator interface so
// pipeline stages can run with or without a configured model.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"limelight/internal/config"
	"limelight/internal/logger"
)

// Generator produces model output. A nil Generator is the disabled state;
// callers fall back to deterministic behavior instead of erroring.
type Generator interface {
	// GenerateJSON asks for a JSON-only response.
	GenerateJSON(ctx context.Context, system, user string, maxTokens int32, temperature float32) (string, error)
	// GenerateText asks for plain prose.
	GenerateText(ctx context.Context, system, user string, maxTokens int32, temperature float32) (string, error)
}

// Gemini is the production Generator.
type Gemini struct {
	client    *genai.Client
	modelName string
}

// New creates a Gemini generator from configuration. A missing API key is
// not an error: it returns (nil, nil) and the caller runs without a model.
func New(ctx context.Context, cfg config.Gemini) (*Gemini, error) {
	if cfg.APIKey == "" {
		logger.Debug("no language model credential, running without synthesis")
		return nil, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Gemini{client: client, modelName: cfg.Model}, nil
}

// GenerateJSON generates a JSON-mode response.
func (g *Gemini) GenerateJSON(ctx context.Context, system, user string, maxTokens int32, temperature float32) (string, error) {
	return g.generate(ctx, system, user, maxTokens, temperature, true)
}

// GenerateText generates a prose response.
func (g *Gemini) GenerateText(ctx context.Context, system, user string, maxTokens int32, temperature float32) (string, error) {
	return g.generate(ctx, system, user, maxTokens, temperature, false)
}

func (g *Gemini) generate(ctx context.Context, system, user string, maxTokens int32, temperature float32, jsonMode bool) (string, error) {
	model := g.client.GenerativeModel(g.modelName)
	if system != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(system)},
		}
	}
	if maxTokens > 0 {
		model.SetMaxOutputTokens(maxTokens)
	}
	if temperature > 0 {
		model.SetTemperature(temperature)
	}
	if jsonMode {
		model.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}

// Close releases the underlying client.
func (g *Gemini) Close() error {
	return g.client.Close()
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return strings.TrimSpace(b.String())
}

// StripCodeFence removes a surrounding markdown code fence from a model
// response. JSON mode usually prevents fences, but not every model version
// honors it.
func StripCodeFence(s string) string {
	out := strings.TrimSpace(s)
	if !strings.HasPrefix(out, "```") {
		return out
	}
	out = strings.TrimPrefix(out, "```json")
	out = strings.TrimPrefix(out, "```")
	out = strings.TrimSuffix(strings.TrimSpace(out), "```")
	return strings.TrimSpace(out)
}
