package ai

import (
	"errors"
	"strings"
	"testing"

	"docstudio/internal/domain"
	"docstudio/internal/domain/ports/adapter"
)

func TestPromptBuilder_Build(t *testing.T) {
	t.Parallel()
	b, err := NewPromptBuilder(4000)
	if err != nil {
		t.Fatalf("NewPromptBuilder: %v", err)
	}

	system, user, err := b.Build(adapter.GenerationRequest{
		Subject:  "Beekeeping for city dwellers",
		Audience: "urban hobbyists",
		Tone:     "practical",
		Goal:     "a working rooftop hive",
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.Contains(system, "JSON") {
		t.Error("system prompt should demand JSON output")
	}
	for _, want := range []string{"Beekeeping for city dwellers", "urban hobbyists", "practical", "rooftop hive"} {
		if !strings.Contains(user, want) {
			t.Errorf("user prompt missing %q", want)
		}
	}
}

func TestPromptBuilder_EmptySubject(t *testing.T) {
	t.Parallel()
	b, err := NewPromptBuilder(4000)
	if err != nil {
		t.Fatalf("NewPromptBuilder: %v", err)
	}
	if _, _, err := b.Build(adapter.GenerationRequest{Subject: "   "}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument, got %v", err)
	}
}

func TestPromptBuilder_TokenBudget(t *testing.T) {
	t.Parallel()
	b, err := NewPromptBuilder(50)
	if err != nil {
		t.Fatalf("NewPromptBuilder: %v", err)
	}
	if _, _, err := b.Build(adapter.GenerationRequest{
		Subject: strings.Repeat("a very long subject line ", 100),
	}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument for oversized prompt, got %v", err)
	}
}

func TestParseGeneratedDocument(t *testing.T) {
	t.Parallel()
	raw := `{"title":"T","description":"D","chapters":[{"title":"C1","content":"body"}]}`
	doc, err := ParseGeneratedDocument(raw)
	if err != nil {
		t.Fatalf("ParseGeneratedDocument: %v", err)
	}
	if doc.Title != "T" || len(doc.Sections) != 1 || doc.Sections[0].Body != "body" {
		t.Fatalf("unexpected doc: %+v", doc)
	}
}

func TestParseGeneratedDocument_Fenced(t *testing.T) {
	t.Parallel()
	raw := "```json\n{\"title\":\"T\",\"chapters\":[{\"title\":\"C1\",\"content\":\"b\"}]}\n```"
	doc, err := ParseGeneratedDocument(raw)
	if err != nil {
		t.Fatalf("ParseGeneratedDocument: %v", err)
	}
	if doc.Title != "T" {
		t.Fatalf("unexpected doc: %+v", doc)
	}
}

func TestParseGeneratedDocument_Invalid(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{
		"not json at all",
		`{"title":"","chapters":[]}`,
		`{"title":"T","chapters":[]}`,
	} {
		if _, err := ParseGeneratedDocument(raw); err == nil {
			t.Errorf("input %q: want error", raw)
		}
	}
}
