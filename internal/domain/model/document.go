package model

import (
	"sort"
	"time"

	"docstudio/internal/domain"
)

type DocumentStatus string

const (
	DocumentStatusDraft     DocumentStatus = "draft"
	DocumentStatusPublished DocumentStatus = "published"
)

// Section is one unit of generated or hand-edited content. Position is
// unique, dense and zero-based within the owning document.
type Section struct {
	ID       string // UUID
	Title    string
	Body     string // markdown; empty is valid
	Position int
}

// Document is a user-owned long-form document with usage counters the
// quota ledger reads. Counters only move through the store's atomic
// increment, never through read-modify-write in application code.
type Document struct {
	ID       string // UUID
	UserID   string // UUID
	Title    string
	Subtitle string
	Slug     string
	Status   DocumentStatus
	Sections []Section

	GenerationCount int
	EditCount       int
	RenderCount     int

	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewDocument(id, userID, title, subtitle string) (*Document, error) {
	if id == "" || userID == "" || title == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Document{
		ID:        id,
		UserID:    userID,
		Title:     title,
		Subtitle:  subtitle,
		Status:    DocumentStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ReplaceSections swaps the whole section list and renumbers.
func (d *Document) ReplaceSections(sections []Section) {
	d.Sections = append([]Section(nil), sections...)
	d.normalize()
}

// SectionAt returns the section occupying position pos.
func (d *Document) SectionAt(pos int) (*Section, error) {
	for i := range d.Sections {
		if d.Sections[i].Position == pos {
			return &d.Sections[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

// InsertSection places s at position pos (clamped to the list bounds) and
// renumbers everything after it.
func (d *Document) InsertSection(s Section, pos int) {
	d.normalize()
	if pos < 0 {
		pos = 0
	}
	if pos > len(d.Sections) {
		pos = len(d.Sections)
	}
	s.Position = pos
	d.Sections = append(d.Sections, Section{})
	copy(d.Sections[pos+1:], d.Sections[pos:])
	d.Sections[pos] = s
	d.renumber()
}

// MoveSection relocates the section at from to position to.
func (d *Document) MoveSection(from, to int) error {
	d.normalize()
	if from < 0 || from >= len(d.Sections) || to < 0 || to >= len(d.Sections) {
		return domain.ErrInvalidArgument
	}
	s := d.Sections[from]
	d.Sections = append(d.Sections[:from], d.Sections[from+1:]...)
	d.Sections = append(d.Sections, Section{})
	copy(d.Sections[to+1:], d.Sections[to:])
	d.Sections[to] = s
	d.renumber()
	return nil
}

// RemoveSection deletes the section at pos and closes the gap.
func (d *Document) RemoveSection(pos int) error {
	d.normalize()
	if pos < 0 || pos >= len(d.Sections) {
		return domain.ErrInvalidArgument
	}
	d.Sections = append(d.Sections[:pos], d.Sections[pos+1:]...)
	d.renumber()
	return nil
}

// normalize sorts by stored position, then renumbers so positions are
// dense and zero-based even if the stored values had gaps.
func (d *Document) normalize() {
	sort.SliceStable(d.Sections, func(i, j int) bool {
		return d.Sections[i].Position < d.Sections[j].Position
	})
	d.renumber()
}

func (d *Document) renumber() {
	for i := range d.Sections {
		d.Sections[i].Position = i
	}
}
