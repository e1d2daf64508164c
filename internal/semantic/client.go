// Package semantic asks a text-generation model to guess column mappings.
// The model is an untrusted collaborator: calls can fail, responses can be
// prose-wrapped or truncated, and every failure degrades to a low-confidence
// all-custom fallback instead of propagating.
package semantic

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	genai "google.golang.org/genai"
)

var ErrInvalidResponse = errors.New("semantic: invalid response from model")

// Client is the minimal text-generation surface the predictor needs.
type Client interface {
	Name() string
	GenerateText(ctx context.Context, prompt string, input any) (string, error)
	Close() error
}

// GeminiClient is a thin wrapper around the official genai client.
type GeminiClient struct {
	cli   *genai.Client
	model string
}

const DefaultModel = "gemini-2.5-flash-lite"

func NewGeminiClient(ctx context.Context, model string) (*GeminiClient, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = DefaultModel
	}
	return &GeminiClient{cli: cli, model: model}, nil
}

func (g *GeminiClient) Name() string { return "Gemini:" + g.model }
func (g *GeminiClient) Close() error { return nil }

// GenerateText sends the prompt plus the JSON-encoded input and returns the
// first candidate's text. Transient failures are retried with backoff.
func (g *GeminiClient) GenerateText(ctx context.Context, prompt string, input any) (string, error) {
	in, _ := json.MarshalIndent(input, "", "  ")
	full := prompt + "\n\nInput:\n" + string(in)
	log.Printf("semantic: request (%s): %d bytes", g.model, len(full))

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		resp, err := g.cli.Models.GenerateContent(ctx, g.model,
			[]*genai.Content{{Parts: []*genai.Part{{Text: full}}}},
			&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
		)
		if err != nil {
			lastErr = err
		} else if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
			lastErr = ErrInvalidResponse
		} else {
			return resp.Candidates[0].Content.Parts[0].Text, nil
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Duration(300*(1<<attempt)) * time.Millisecond):
		}
	}
	return "", lastErr
}
