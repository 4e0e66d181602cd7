// File: internal/usecase/document_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"docstudio/internal/domain"
	"docstudio/internal/domain/model"
	"docstudio/internal/domain/ports/adapter"
	"docstudio/internal/domain/ports/repository"
	"docstudio/internal/infra/metrics"
)

// generateTimeout bounds the generation-provider call.
const generateTimeout = 120 * time.Second

// QuotaDeniedError carries a ledger denial across an error boundary
// (HTTP). The reason stays attached so the surface can render an
// upgrade prompt.
type QuotaDeniedError struct {
	Reason DenialReason
}

func (e *QuotaDeniedError) Error() string { return "quota denied: " + string(e.Reason) }

// RateLimiter is the fixed-window limiter port (redis-backed in infra).
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type DocumentUseCase interface {
	// Generate creates a new document from a generation request. Quota
	// is consumed only after the provider call succeeds.
	Generate(ctx context.Context, userID string, req adapter.GenerationRequest) (*model.Document, error)

	// Regenerate replaces the content of an existing document.
	Regenerate(ctx context.Context, userID, documentID string, req adapter.GenerationRequest) (*model.Document, error)

	// EditSection rewrites one section. The edit counter moves only
	// after the save commits.
	EditSection(ctx context.Context, userID, documentID string, position int, title, body string) (*model.Document, error)

	Publish(ctx context.Context, userID, documentID string) (*model.Document, error)
	Unpublish(ctx context.Context, userID, documentID string) (*model.Document, error)
	Get(ctx context.Context, userID, documentID string) (*model.Document, error)
	List(ctx context.Context, userID string) ([]*model.Document, error)

	// GetPublished resolves a public slug; only published documents are
	// reachable this way.
	GetPublished(ctx context.Context, slug string) (*model.Document, error)
}

var _ DocumentUseCase = (*documentUC)(nil)

type documentUC struct {
	docs    repository.DocumentRepository
	subs    repository.SubscriptionRepository
	ledger  *QuotaLedger
	gen     adapter.GenerationService
	limiter RateLimiter
	log     *zerolog.Logger
}

func NewDocumentUseCase(
	docs repository.DocumentRepository,
	subs repository.SubscriptionRepository,
	ledger *QuotaLedger,
	gen adapter.GenerationService,
	limiter RateLimiter,
	logger *zerolog.Logger,
) *documentUC {
	return &documentUC{docs: docs, subs: subs, ledger: ledger, gen: gen, limiter: limiter, log: logger}
}

// generation rate limit per user, independent of plan quotas
const (
	genRateLimit  = 5
	genRateWindow = time.Minute
)

func (u *documentUC) Generate(ctx context.Context, userID string, req adapter.GenerationRequest) (*model.Document, error) {
	if userID == "" || strings.TrimSpace(req.Subject) == "" {
		return nil, domain.ErrInvalidArgument
	}
	if u.limiter != nil {
		ok, err := u.limiter.Allow(ctx, "gen:"+userID, genRateLimit, genRateWindow)
		if err == nil && !ok {
			return nil, fmt.Errorf("%w: generation rate limit", domain.ErrOperationFailed)
		}
	}

	sub := u.activeSubscription(ctx, userID)
	count, err := u.docs.CountByOwner(ctx, repository.NoTX, userID)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}
	if d := u.ledger.Authorize(AuthorizeInput{Subscription: sub, DocumentCount: count}, ActionGenerate); !d.Allowed {
		metrics.IncQuotaDenial(string(d.Reason))
		return nil, &QuotaDeniedError{Reason: d.Reason}
	}

	gen, err := u.callGenerator(ctx, req)
	if err != nil {
		return nil, err
	}

	doc, err := model.NewDocument(uuid.NewString(), userID, gen.Title, gen.Description)
	if err != nil {
		return nil, err
	}
	doc.ReplaceSections(sectionsFrom(gen))
	doc.GenerationCount = 1
	if err := u.docs.Save(ctx, repository.NoTX, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	u.log.Info().Str("user_id", userID).Str("document_id", doc.ID).
		Int("sections", len(doc.Sections)).Msg("document generated")
	return doc, nil
}

func (u *documentUC) Regenerate(ctx context.Context, userID, documentID string, req adapter.GenerationRequest) (*model.Document, error) {
	doc, err := u.owned(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}
	sub := u.activeSubscription(ctx, userID)
	if d := u.ledger.Authorize(AuthorizeInput{Subscription: sub, Document: doc}, ActionGenerate); !d.Allowed {
		metrics.IncQuotaDenial(string(d.Reason))
		return nil, &QuotaDeniedError{Reason: d.Reason}
	}

	gen, err := u.callGenerator(ctx, req)
	if err != nil {
		return nil, err
	}

	doc.Title = gen.Title
	doc.Subtitle = gen.Description
	doc.ReplaceSections(sectionsFrom(gen))
	doc.UpdatedAt = time.Now()
	if err := u.docs.Save(ctx, repository.NoTX, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	// strictly post-success: the provider answered and the save committed
	if err := u.docs.IncrementCounter(ctx, repository.NoTX, doc.ID, repository.CounterGenerations, 1); err != nil {
		return nil, fmt.Errorf("increment generation counter: %w", err)
	}
	doc.GenerationCount++
	return doc, nil
}

func (u *documentUC) EditSection(ctx context.Context, userID, documentID string, position int, title, body string) (*model.Document, error) {
	doc, err := u.owned(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}
	sub := u.activeSubscription(ctx, userID)
	if d := u.ledger.Authorize(AuthorizeInput{Subscription: sub, Document: doc}, ActionEdit); !d.Allowed {
		metrics.IncQuotaDenial(string(d.Reason))
		return nil, &QuotaDeniedError{Reason: d.Reason}
	}

	sec, err := doc.SectionAt(position)
	if err != nil {
		return nil, err
	}
	if title != "" {
		sec.Title = title
	}
	sec.Body = body // empty body is a valid edit
	doc.UpdatedAt = time.Now()
	if err := u.docs.Save(ctx, repository.NoTX, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	if err := u.docs.IncrementCounter(ctx, repository.NoTX, doc.ID, repository.CounterEdits, 1); err != nil {
		return nil, fmt.Errorf("increment edit counter: %w", err)
	}
	doc.EditCount++
	return doc, nil
}

func (u *documentUC) Publish(ctx context.Context, userID, documentID string) (*model.Document, error) {
	doc, err := u.owned(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}
	slug := doc.Slug
	if slug == "" {
		slug = Slugify(doc.Title) + "-" + doc.ID[:8]
	}
	if err := u.docs.UpdateStatus(ctx, repository.NoTX, doc.ID, model.DocumentStatusPublished, slug); err != nil {
		return nil, err
	}
	doc.Status = model.DocumentStatusPublished
	doc.Slug = slug
	return doc, nil
}

func (u *documentUC) Unpublish(ctx context.Context, userID, documentID string) (*model.Document, error) {
	doc, err := u.owned(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}
	if err := u.docs.UpdateStatus(ctx, repository.NoTX, doc.ID, model.DocumentStatusDraft, doc.Slug); err != nil {
		return nil, err
	}
	doc.Status = model.DocumentStatusDraft
	return doc, nil
}

func (u *documentUC) Get(ctx context.Context, userID, documentID string) (*model.Document, error) {
	return u.owned(ctx, userID, documentID)
}

func (u *documentUC) List(ctx context.Context, userID string) ([]*model.Document, error) {
	return u.docs.ListByOwner(ctx, repository.NoTX, userID)
}

func (u *documentUC) GetPublished(ctx context.Context, slug string) (*model.Document, error) {
	if slug == "" {
		return nil, domain.ErrInvalidArgument
	}
	return u.docs.FindBySlug(ctx, repository.NoTX, slug)
}

func (u *documentUC) owned(ctx context.Context, userID, documentID string) (*model.Document, error) {
	doc, err := u.docs.FindByID(ctx, repository.NoTX, documentID)
	if err != nil {
		return nil, err
	}
	if doc.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

// activeSubscription tolerates a missing row: the ledger resolves nil to
// the "none" plan, which is the intended closed default.
func (u *documentUC) activeSubscription(ctx context.Context, userID string) *model.Subscription {
	sub, err := u.subs.FindActiveByUser(ctx, repository.NoTX, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			u.log.Warn().Err(err).Str("user_id", userID).Msg("subscription lookup failed, degrading to no access")
		}
		return nil
	}
	return sub
}

func (u *documentUC) callGenerator(ctx context.Context, req adapter.GenerationRequest) (*adapter.GeneratedDocument, error) {
	gctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	// call metrics live in the provider adapters; observing here too
	// would double-count every request
	gen, err := u.gen.GenerateSections(gctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.ErrUpstreamTimeout
		}
		return nil, fmt.Errorf("generate sections: %w", err)
	}
	if gen.Title == "" || len(gen.Sections) == 0 {
		return nil, fmt.Errorf("%w: generator returned empty document", domain.ErrOperationFailed)
	}
	return gen, nil
}

func sectionsFrom(gen *adapter.GeneratedDocument) []model.Section {
	out := make([]model.Section, 0, len(gen.Sections))
	for i, s := range gen.Sections {
		out = append(out, model.Section{
			ID:       uuid.NewString(),
			Title:    s.Title,
			Body:     s.Body,
			Position: i,
		})
	}
	return out
}

// Slugify lowercases, strips accents-free non-alphanumerics and joins
// words with hyphens. ASCII-only on purpose: slugs end up in URLs and
// object keys.
func Slugify(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) && r < 128, unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
