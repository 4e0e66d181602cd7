// File: internal/render/assemble.go
package render

import (
	"sort"

	"docstudio/internal/domain/model"
	"docstudio/internal/domain/ports/adapter"
)

// Assemble turns a document into the paginated render model: a cover
// element followed by one page group per section in strict position
// order. Pure transformation; sections with empty bodies are kept,
// since empty content is valid.
func Assemble(doc *model.Document) adapter.RenderModel {
	sections := append([]model.Section(nil), doc.Sections...)
	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].Position < sections[j].Position
	})

	pages := make([]adapter.RenderPage, 0, len(sections))
	for _, s := range sections {
		pages = append(pages, adapter.RenderPage{Heading: s.Title, Body: s.Body})
	}
	return adapter.RenderModel{
		Cover: adapter.RenderCover{Title: doc.Title, Subtitle: doc.Subtitle},
		Pages: pages,
	}
}
