package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"

	"docstudio/internal/domain/ports/adapter"
	"docstudio/internal/infra/metrics"
)

var _ adapter.GenerationService = (*GeminiGenerator)(nil)

// GeminiGenerator is the secondary provider, reached through the
// official SDK.
type GeminiGenerator struct {
	client  *genai.Client
	model   string
	prompts *PromptBuilder
}

func NewGeminiGenerator(ctx context.Context, apiKey, baseURL, model string, prompts *PromptBuilder) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	return &GeminiGenerator{client: c, model: model, prompts: prompts}, nil
}

func (g *GeminiGenerator) Name() string { return "gemini" }

func (g *GeminiGenerator) GenerateSections(ctx context.Context, req adapter.GenerationRequest) (*adapter.GeneratedDocument, error) {
	system, user, err := g.prompts.Build(req)
	if err != nil {
		return nil, err
	}

	contents := []*genai.Content{
		{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: user}},
		},
	}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		},
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	metrics.ObserveGeneration(g.Name(), err == nil, time.Since(start))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%w: %v", adapter.ErrGenerationTransient, err)
		}
		return nil, fmt.Errorf("%w: %v", adapter.ErrGenerationTransient, err)
	}

	text := ""
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil && len(resp.Candidates[0].Content.Parts) > 0 {
		text = resp.Candidates[0].Content.Parts[0].Text
	}
	if text == "" {
		return nil, fmt.Errorf("%w: empty candidate", adapter.ErrGenerationTransient)
	}
	return ParseGeneratedDocument(text)
}
