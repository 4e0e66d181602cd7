// File: internal/usecase/artifact_uc.go
package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"docstudio/internal/domain"
	"docstudio/internal/domain/model"
	"docstudio/internal/domain/ports/adapter"
	"docstudio/internal/domain/ports/repository"
	"docstudio/internal/infra/metrics"
	"docstudio/internal/render"
)

// renderTimeout bounds the render call; a slow renderer fails the
// request instead of hanging it.
const renderTimeout = 60 * time.Second

type ArtifactUseCase interface {
	// Render runs authorize -> assemble -> render -> upload -> upsert.
	// The pointer row only moves after the upload returned a stable
	// location, and the render counter only moves after the pointer
	// committed.
	Render(ctx context.Context, userID, documentID string) (*model.Artifact, error)

	// Current returns the current pointer for (documentID, kind).
	Current(ctx context.Context, documentID string, kind model.ArtifactKind) (*model.Artifact, error)
}

var _ ArtifactUseCase = (*artifactUC)(nil)

type artifactUC struct {
	docs      repository.DocumentRepository
	subs      repository.SubscriptionRepository
	artifacts repository.ArtifactRepository
	ledger    *QuotaLedger
	renderer  adapter.Renderer
	storage   adapter.ObjectStorage
	log       *zerolog.Logger
}

func NewArtifactUseCase(
	docs repository.DocumentRepository,
	subs repository.SubscriptionRepository,
	artifacts repository.ArtifactRepository,
	ledger *QuotaLedger,
	renderer adapter.Renderer,
	storage adapter.ObjectStorage,
	logger *zerolog.Logger,
) *artifactUC {
	return &artifactUC{
		docs: docs, subs: subs, artifacts: artifacts,
		ledger: ledger, renderer: renderer, storage: storage, log: logger,
	}
}

func (u *artifactUC) Render(ctx context.Context, userID, documentID string) (*model.Artifact, error) {
	doc, err := u.docs.FindByID(ctx, repository.NoTX, documentID)
	if err != nil {
		return nil, err
	}
	if doc.UserID != userID {
		return nil, domain.ErrNotFound
	}

	sub, err := u.subs.FindActiveByUser(ctx, repository.NoTX, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("load subscription: %w", err)
	}
	if d := u.ledger.Authorize(AuthorizeInput{Subscription: sub, Document: doc}, ActionRender); !d.Allowed {
		metrics.IncQuotaDenial(string(d.Reason))
		return nil, &QuotaDeniedError{Reason: d.Reason}
	}

	m := render.Assemble(doc)

	rctx, cancel := context.WithTimeout(ctx, renderTimeout)
	defer cancel()
	start := time.Now()
	blob, err := u.renderer.Render(rctx, m)
	metrics.ObserveRender(err == nil, time.Since(start))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.ErrUpstreamTimeout
		}
		return nil, fmt.Errorf("render: %w", err)
	}
	metrics.ObserveArtifactSize(len(blob))

	// upload first; the previous pointer stays valid until the new
	// object has a stable location
	path := objectPath(doc.ID)
	url, err := u.storage.Put(ctx, path, blob, u.renderer.ContentType())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageFailure, err)
	}

	art, err := model.NewArtifact(uuid.NewString(), doc.ID, model.ArtifactKindPDF, path, url, int64(len(blob)))
	if err != nil {
		return nil, err
	}
	if err := u.artifacts.Upsert(ctx, repository.NoTX, art); err != nil {
		return nil, fmt.Errorf("%w: upsert pointer: %v", domain.ErrStorageFailure, err)
	}

	// strictly post-success
	if err := u.docs.IncrementCounter(ctx, repository.NoTX, doc.ID, repository.CounterRenders, 1); err != nil {
		return nil, fmt.Errorf("increment render counter: %w", err)
	}

	u.log.Info().Str("document_id", doc.ID).Str("path", path).
		Int("bytes", len(blob)).Msg("artifact rendered")
	return art, nil
}

func (u *artifactUC) Current(ctx context.Context, documentID string, kind model.ArtifactKind) (*model.Artifact, error) {
	return u.artifacts.Find(ctx, repository.NoTX, documentID, kind)
}

// objectPath yields a sortable, collision-free storage key. Old objects
// are left behind on re-render; only the pointer row moves.
func objectPath(documentID string) string {
	id := ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader)
	return fmt.Sprintf("documents/%s/%s.pdf", documentID, id.String())
}
