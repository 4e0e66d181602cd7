// File: internal/infra/http/server.go
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"docstudio/internal/config"
	"docstudio/internal/domain/ports/adapter"
	"docstudio/internal/infra/worker"
	"docstudio/internal/usecase"
)

// Server exposes the API surface: checkout, documents, rendering,
// the payment webhook and operational endpoints.
type Server struct {
	cfg        *config.Config
	checkoutUC usecase.CheckoutUseCase
	documentUC usecase.DocumentUseCase
	artifactUC usecase.ArtifactUseCase
	reconciler usecase.ReconcilerUseCase
	verifier   adapter.EventVerifier
	downloads  *DownloadTokenManager
	mailer     adapter.Mailer
	pool       *worker.Pool
	log        *zerolog.Logger
	server     *http.Server
}

func NewServer(
	cfg *config.Config,
	checkoutUC usecase.CheckoutUseCase,
	documentUC usecase.DocumentUseCase,
	artifactUC usecase.ArtifactUseCase,
	reconciler usecase.ReconcilerUseCase,
	verifier adapter.EventVerifier,
	downloads *DownloadTokenManager,
	mailer adapter.Mailer,
	pool *worker.Pool,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		cfg:        cfg,
		checkoutUC: checkoutUC,
		documentUC: documentUC,
		artifactUC: artifactUC,
		reconciler: reconciler,
		verifier:   verifier,
		downloads:  downloads,
		mailer:     mailer,
		pool:       pool,
		log:        logger,
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(150 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/webhooks/payment", s.handlePaymentWebhook)
	r.Get("/download", s.handleDownload)
	r.Get("/p/{slug}", s.handlePublished)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.requireUser)

		r.Post("/checkout", s.handleCheckoutStart)
		r.Post("/plans/activate-free", s.handleActivateFree)

		r.Get("/documents", s.handleDocumentList)
		r.Post("/documents", s.handleDocumentGenerate)
		r.Get("/documents/{id}", s.handleDocumentGet)
		r.Post("/documents/{id}/regenerate", s.handleDocumentRegenerate)
		r.Put("/documents/{id}/sections/{pos}", s.handleSectionEdit)
		r.Post("/documents/{id}/publish", s.handleDocumentPublish)
		r.Post("/documents/{id}/unpublish", s.handleDocumentUnpublish)
		r.Post("/documents/{id}/render", s.handleRender)
		r.Get("/documents/{id}/artifact", s.handleArtifactGet)
	})

	return r
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info().Int("port", s.cfg.Server.Port).Msg("HTTP server listening")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}
