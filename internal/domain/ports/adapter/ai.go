package adapter

import (
	"context"
	"errors"
)

// GeneratedSection is one unit of generated content, already ordered.
type GeneratedSection struct {
	Title string `json:"title"`
	Body  string `json:"content"`
}

// GeneratedDocument is the structured result of one generation call.
type GeneratedDocument struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Sections    []GeneratedSection `json:"chapters"`
}

// GenerationRequest carries everything the prompt needs.
type GenerationRequest struct {
	Subject  string
	Audience string
	Tone     string
	Goal     string
}

// GenerationService is the opaque boundary to the text-generation
// provider. Implementations must honour ctx deadlines.
type GenerationService interface {
	Name() string
	GenerateSections(ctx context.Context, req GenerationRequest) (*GeneratedDocument, error)
}

// ErrGenerationTransient marks failures the caller may retry (rate
// limits, 5xx, timeouts). Anything not wrapped in it is permanent and
// must be surfaced without retry.
var ErrGenerationTransient = errors.New("transient generation failure")

func IsTransient(err error) bool { return errors.Is(err, ErrGenerationTransient) }
