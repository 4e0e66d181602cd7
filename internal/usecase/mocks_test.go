// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"

	"docstudio/internal/domain"
	"docstudio/internal/domain/model"
	"docstudio/internal/domain/ports/adapter"
	"docstudio/internal/domain/ports/repository"
)

// The in-memory repositories journal their state so the fake
// transaction manager can restore it when a callback fails, mirroring
// a database rollback.

type snapshotter interface {
	snapshot() any
	restore(any)
}

type memTxManager struct {
	repos []snapshotter
}

func newMemTxManager(repos ...snapshotter) *memTxManager {
	return &memTxManager{repos: repos}
}

func (m *memTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	saved := make([]any, len(m.repos))
	for i, r := range m.repos {
		saved[i] = r.snapshot()
	}
	if err := fn(ctx, nil); err != nil {
		for i, r := range m.repos {
			r.restore(saved[i])
		}
		return err
	}
	return nil
}

// --- subscriptions ---

type memSubscriptionRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Subscription // by subscription ID
}

func newMemSubscriptionRepo() *memSubscriptionRepo {
	return &memSubscriptionRepo{store: make(map[string]*model.Subscription)}
}

func (m *memSubscriptionRepo) snapshot() any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cp := make(map[string]*model.Subscription, len(m.store))
	for k, v := range m.store {
		s := *v
		cp[k] = &s
	}
	return cp
}

func (m *memSubscriptionRepo) restore(v any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = v.(map[string]*model.Subscription)
}

func (m *memSubscriptionRepo) Upsert(_ context.Context, _ repository.Tx, s *model.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.Status == model.SubscriptionStatusActive {
		for _, other := range m.store {
			if other.UserID == s.UserID && other.ID != s.ID && other.Status == model.SubscriptionStatusActive {
				other.Status = model.SubscriptionStatusSuperseded
			}
		}
	}
	cp := *s
	m.store[s.ID] = &cp
	return nil
}

func (m *memSubscriptionRepo) FindActiveByUser(_ context.Context, _ repository.Tx, userID string) (*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.store {
		if s.UserID == userID && s.Status == model.SubscriptionStatusActive {
			cp := *s
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memSubscriptionRepo) FindByExternalSubscriptionID(_ context.Context, _ repository.Tx, externalID string) (*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.store {
		if s.ExternalSubscriptionID != nil && *s.ExternalSubscriptionID == externalID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memSubscriptionRepo) UpdateStatus(_ context.Context, _ repository.Tx, userID, id string, status model.SubscriptionStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.store[id]
	if !ok || s.UserID != userID {
		return domain.ErrNotFound
	}
	s.Status = status
	return nil
}

func (m *memSubscriptionRepo) SetExternalSubscriptionID(_ context.Context, _ repository.Tx, userID, id, externalID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.store[id]
	if !ok || s.UserID != userID {
		return domain.ErrNotFound
	}
	s.ExternalSubscriptionID = &externalID
	return nil
}

// activeFor is a test helper, not part of the port.
func (m *memSubscriptionRepo) activeFor(userID string) []*model.Subscription {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Subscription
	for _, s := range m.store {
		if s.UserID == userID && s.Status == model.SubscriptionStatusActive {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out
}

// --- documents ---

type memDocumentRepo struct {
	mu      sync.RWMutex
	store   map[string]*model.Document
	saveErr error
	incErr  error
}

func newMemDocumentRepo() *memDocumentRepo {
	return &memDocumentRepo{store: make(map[string]*model.Document)}
}

func (m *memDocumentRepo) Save(_ context.Context, _ repository.Tx, d *model.Document) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *d
	cp.Sections = append([]model.Section(nil), d.Sections...)
	m.store[d.ID] = &cp
	return nil
}

func (m *memDocumentRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *d
	cp.Sections = append([]model.Section(nil), d.Sections...)
	return &cp, nil
}

func (m *memDocumentRepo) FindBySlug(_ context.Context, _ repository.Tx, slug string) (*model.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.store {
		if d.Slug == slug && d.Status == model.DocumentStatusPublished {
			cp := *d
			cp.Sections = append([]model.Section(nil), d.Sections...)
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memDocumentRepo) CountByOwner(_ context.Context, _ repository.Tx, userID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, d := range m.store {
		if d.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (m *memDocumentRepo) ListByOwner(_ context.Context, _ repository.Tx, userID string) ([]*model.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Document
	for _, d := range m.store {
		if d.UserID == userID {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memDocumentRepo) IncrementCounter(_ context.Context, _ repository.Tx, documentID string, field repository.CounterField, delta int) error {
	if m.incErr != nil {
		return m.incErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.store[documentID]
	if !ok {
		return domain.ErrNotFound
	}
	switch field {
	case repository.CounterGenerations:
		d.GenerationCount += delta
	case repository.CounterEdits:
		d.EditCount += delta
	case repository.CounterRenders:
		d.RenderCount += delta
	default:
		return domain.ErrInvalidArgument
	}
	return nil
}

func (m *memDocumentRepo) UpdateStatus(_ context.Context, _ repository.Tx, id string, status model.DocumentStatus, slug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	d.Status = status
	d.Slug = slug
	return nil
}

// --- checkouts ---

type memCheckoutRepo struct {
	mu      sync.RWMutex
	store   map[string]*model.PendingCheckout
	saveErr error
}

func newMemCheckoutRepo() *memCheckoutRepo {
	return &memCheckoutRepo{store: make(map[string]*model.PendingCheckout)}
}

func (m *memCheckoutRepo) snapshot() any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cp := make(map[string]*model.PendingCheckout, len(m.store))
	for k, v := range m.store {
		c := *v
		cp[k] = &c
	}
	return cp
}

func (m *memCheckoutRepo) restore(v any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = v.(map[string]*model.PendingCheckout)
}

func (m *memCheckoutRepo) Save(_ context.Context, _ repository.Tx, c *model.PendingCheckout) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.store[c.SessionID] = &cp
	return nil
}

func (m *memCheckoutRepo) FindUnconsumed(_ context.Context, _ repository.Tx, sessionID string) (*model.PendingCheckout, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.store[sessionID]
	if !ok || c.Consumed {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memCheckoutRepo) MarkConsumed(_ context.Context, _ repository.Tx, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.store[sessionID]
	if !ok || c.Consumed {
		return domain.ErrNotFound
	}
	c.Consumed = true
	return nil
}

func (m *memCheckoutRepo) DeleteStale(_ context.Context, _ repository.Tx, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k, c := range m.store {
		if !c.Consumed && c.CreatedAt.Before(cutoff) {
			delete(m.store, k)
			n++
		}
	}
	return n, nil
}

// --- processed events ---

type memEventRepo struct {
	mu    sync.RWMutex
	store map[string]bool
}

func newMemEventRepo() *memEventRepo {
	return &memEventRepo{store: make(map[string]bool)}
}

func (m *memEventRepo) snapshot() any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cp := make(map[string]bool, len(m.store))
	for k, v := range m.store {
		cp[k] = v
	}
	return cp
}

func (m *memEventRepo) restore(v any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = v.(map[string]bool)
}

func (m *memEventRepo) MarkProcessed(_ context.Context, _ repository.Tx, eventID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.store[eventID] {
		return false, nil
	}
	m.store[eventID] = true
	return true, nil
}

func (m *memEventRepo) IsProcessed(_ context.Context, _ repository.Tx, eventID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.store[eventID], nil
}

// --- artifacts ---

type artifactKey struct {
	docID string
	kind  model.ArtifactKind
}

type memArtifactRepo struct {
	mu        sync.RWMutex
	store     map[artifactKey]*model.Artifact
	upsertErr error
}

func newMemArtifactRepo() *memArtifactRepo {
	return &memArtifactRepo{store: make(map[artifactKey]*model.Artifact)}
}

func (m *memArtifactRepo) Upsert(_ context.Context, _ repository.Tx, a *model.Artifact) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.store[artifactKey{a.DocumentID, a.Kind}] = &cp
	return nil
}

func (m *memArtifactRepo) Find(_ context.Context, _ repository.Tx, documentID string, kind model.ArtifactKind) (*model.Artifact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.store[artifactKey{documentID, kind}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

// --- adapters ---

type stubProcessor struct {
	session  *adapter.CheckoutSession
	err      error
	requests []adapter.SessionRequest
}

func (p *stubProcessor) Name() string { return "stub" }

func (p *stubProcessor) CreateSession(_ context.Context, req adapter.SessionRequest) (*adapter.CheckoutSession, error) {
	p.requests = append(p.requests, req)
	if p.err != nil {
		return nil, p.err
	}
	return p.session, nil
}

type stubGenerator struct {
	doc   *adapter.GeneratedDocument
	err   error
	calls int
}

func (g *stubGenerator) Name() string { return "stub" }

func (g *stubGenerator) GenerateSections(_ context.Context, _ adapter.GenerationRequest) (*adapter.GeneratedDocument, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.doc, nil
}

type stubRenderer struct {
	blob []byte
	err  error
}

func (r *stubRenderer) ContentType() string { return "application/pdf" }

func (r *stubRenderer) Render(_ context.Context, _ adapter.RenderModel) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.blob, nil
}

type stubStorage struct {
	err   error
	calls int
}

func (s *stubStorage) Put(_ context.Context, path string, _ []byte, _ string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return "https://cdn.example.com/" + path, nil
}

type allowAllLimiter struct{ denied bool }

func (l *allowAllLimiter) Allow(_ context.Context, _ string, _ int, _ time.Duration) (bool, error) {
	return !l.denied, nil
}

type stubLocker struct {
	mu       sync.Mutex
	failLock bool
	locked   []string
	unlocked []string
}

func (l *stubLocker) TryLock(_ context.Context, key string, _ time.Duration) (string, error) {
	if l.failLock {
		return "", domain.ErrLockContended
	}
	l.mu.Lock()
	l.locked = append(l.locked, key)
	l.mu.Unlock()
	return "token-" + key, nil
}

func (l *stubLocker) Unlock(_ context.Context, key, _ string) error {
	l.mu.Lock()
	l.unlocked = append(l.unlocked, key)
	l.mu.Unlock()
	return nil
}

// sampleGenerated returns a three-chapter generation result.
func sampleGenerated(title string) *adapter.GeneratedDocument {
	out := &adapter.GeneratedDocument{Title: title, Description: "about " + title}
	for i := 1; i <= 3; i++ {
		out.Sections = append(out.Sections, adapter.GeneratedSection{
			Title: fmt.Sprintf("Chapter %d", i),
			Body:  fmt.Sprintf("Body %d", i),
		})
	}
	return out
}
