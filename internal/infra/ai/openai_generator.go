package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"docstudio/internal/domain/ports/adapter"
	"docstudio/internal/infra/metrics"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.GenerationService = (*OpenAIGenerator)(nil)

// OpenAIGenerator implements adapter.GenerationService on the Chat
// Completions API.
type OpenAIGenerator struct {
	client  openai.Client
	model   string
	prompts *PromptBuilder
}

func NewOpenAIGenerator(apiKey, model string, prompts *PromptBuilder) (*OpenAIGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key empty")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIGenerator{
		client:  openai.NewClient(option.WithAPIKey(apiKey)),
		model:   model,
		prompts: prompts,
	}, nil
}

func (g *OpenAIGenerator) Name() string { return "openai" }

func (g *OpenAIGenerator) GenerateSections(ctx context.Context, req adapter.GenerationRequest) (*adapter.GeneratedDocument, error) {
	system, user, err := g.prompts.Build(req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	})
	metrics.ObserveGeneration(g.Name(), err == nil, time.Since(start))
	if err != nil {
		return nil, classify(err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("%w: empty completion", adapter.ErrGenerationTransient)
	}
	return ParseGeneratedDocument(resp.Choices[0].Message.Content)
}

// classify separates retryable provider failures from permanent ones.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", adapter.ErrGenerationTransient, err)
	}
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		if apierr.StatusCode == 429 || apierr.StatusCode >= 500 {
			return fmt.Errorf("%w: openai http %d", adapter.ErrGenerationTransient, apierr.StatusCode)
		}
		return err
	}
	// Network-level failures without a status are worth retrying.
	return fmt.Errorf("%w: %v", adapter.ErrGenerationTransient, err)
}
