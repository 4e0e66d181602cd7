package adapter

import "context"

// RenderCover is the title page of a render model.
type RenderCover struct {
	Title    string
	Subtitle string
}

// RenderPage is one page group: a heading plus body text.
type RenderPage struct {
	Heading string
	Body    string
}

// RenderModel is the paginated document model the renderer consumes.
// Pages are already in reading order; the renderer must not reorder.
type RenderModel struct {
	Cover RenderCover
	Pages []RenderPage
}

// Renderer turns a render model into an opaque binary. Implementations
// must hold no mutable global state: rendering the same model twice
// yields the same bytes up to the format's own nondeterminism.
type Renderer interface {
	ContentType() string
	Render(ctx context.Context, m RenderModel) ([]byte, error)
}
