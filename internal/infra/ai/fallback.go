// File: internal/infra/ai/fallback.go
package ai

import (
	"context"

	"github.com/rs/zerolog"

	"docstudio/internal/domain/ports/adapter"
)

var _ adapter.GenerationService = (*FallbackGenerator)(nil)

// FallbackGenerator tries providers in order, moving on only for
// transient failures. A permanent error (bad request, content policy)
// surfaces immediately; the next provider would reject it too.
type FallbackGenerator struct {
	chain []adapter.GenerationService
	log   *zerolog.Logger
}

func NewFallbackGenerator(logger *zerolog.Logger, chain ...adapter.GenerationService) *FallbackGenerator {
	return &FallbackGenerator{chain: chain, log: logger}
}

func (f *FallbackGenerator) Name() string { return "fallback" }

func (f *FallbackGenerator) GenerateSections(ctx context.Context, req adapter.GenerationRequest) (*adapter.GeneratedDocument, error) {
	var lastErr error
	for _, g := range f.chain {
		if g == nil {
			continue
		}
		doc, err := g.GenerateSections(ctx, req)
		if err == nil {
			return doc, nil
		}
		if !adapter.IsTransient(err) {
			return nil, err
		}
		f.log.Warn().Err(err).Str("provider", g.Name()).Msg("generation provider failed, trying next")
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	if lastErr == nil {
		lastErr = adapter.ErrGenerationTransient
	}
	return nil, lastErr
}
