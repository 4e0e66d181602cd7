package ai

import (
	"context"
	"fmt"
	"time"

	"docstudio/internal/domain/ports/adapter"
)

var _ adapter.GenerationService = (*NoopGenerator)(nil)

// NoopGenerator returns a canned document for local/dev runs without
// any API keys.
type NoopGenerator struct{}

func NewNoopGenerator() *NoopGenerator {
	return &NoopGenerator{}
}

func (a *NoopGenerator) Name() string { return "noop" }

func (a *NoopGenerator) GenerateSections(ctx context.Context, req adapter.GenerationRequest) (*adapter.GeneratedDocument, error) {
	// Simulate slight processing time and respect ctx
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	doc := &adapter.GeneratedDocument{
		Title:       fmt.Sprintf("About %s", req.Subject),
		Description: "Placeholder content from the noop generator.",
	}
	for i := 1; i <= 3; i++ {
		doc.Sections = append(doc.Sections, adapter.GeneratedSection{
			Title: fmt.Sprintf("Chapter %d", i),
			Body:  fmt.Sprintf("Placeholder body for chapter %d about %s.", i, req.Subject),
		})
	}
	return doc, nil
}
