// File: internal/infra/ai/prompt.go
package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"docstudio/internal/domain"
	"docstudio/internal/domain/ports/adapter"
	"docstudio/internal/infra/metrics"
)

const systemPrompt = `You are a professional long-form writer. You produce complete,
well-structured documents as JSON. Respond with a single JSON object and
nothing else, using this shape:
{"title": "...", "description": "...", "chapters": [{"title": "...", "content": "..."}]}
Each chapter body is markdown. Write 8 to 12 chapters.`

// PromptBuilder turns a generation request into the messages sent to a
// provider, enforcing a token budget so oversized requests fail before
// the paid API call.
type PromptBuilder struct {
	maxTokens int
	enc       *tiktoken.Tiktoken
}

func NewPromptBuilder(maxTokens int) (*PromptBuilder, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("load token encoding: %w", err)
	}
	return &PromptBuilder{maxTokens: maxTokens, enc: enc}, nil
}

// Build returns the system and user prompts for req.
func (b *PromptBuilder) Build(req adapter.GenerationRequest) (system, user string, err error) {
	if strings.TrimSpace(req.Subject) == "" {
		return "", "", fmt.Errorf("%w: empty subject", domain.ErrInvalidArgument)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Write a complete document about: %s\n", req.Subject)
	if req.Audience != "" {
		fmt.Fprintf(&sb, "Target audience: %s\n", req.Audience)
	}
	if req.Tone != "" {
		fmt.Fprintf(&sb, "Tone: %s\n", req.Tone)
	}
	if req.Goal != "" {
		fmt.Fprintf(&sb, "The reader should come away with: %s\n", req.Goal)
	}
	user = sb.String()

	tokens := len(b.enc.Encode(systemPrompt+user, nil, nil))
	metrics.ObservePromptTokens("prompt", tokens)
	if b.maxTokens > 0 && tokens > b.maxTokens {
		return "", "", fmt.Errorf("%w: prompt is %d tokens, limit %d", domain.ErrInvalidArgument, tokens, b.maxTokens)
	}
	return systemPrompt, user, nil
}

// ParseGeneratedDocument decodes a provider reply. Models wrap JSON in
// markdown fences often enough that stripping them here is cheaper than
// retrying.
func ParseGeneratedDocument(raw string) (*adapter.GeneratedDocument, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	var doc adapter.GeneratedDocument
	if err := json.Unmarshal([]byte(s), &doc); err != nil {
		return nil, fmt.Errorf("%w: malformed generation output: %v", domain.ErrOperationFailed, err)
	}
	if doc.Title == "" || len(doc.Sections) == 0 {
		return nil, fmt.Errorf("%w: generation output missing title or chapters", domain.ErrOperationFailed)
	}
	return &doc, nil
}
