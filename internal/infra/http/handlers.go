package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"docstudio/internal/domain"
	"docstudio/internal/domain/model"
	"docstudio/internal/domain/ports/adapter"
	"docstudio/internal/usecase"
)

type ctxKey int

const userIDKey ctxKey = iota

// requireUser reads the caller identity established by the edge proxy.
// The API trusts X-User-ID because it is only reachable behind that
// proxy; it is not an authentication layer of its own.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid := r.Header.Get("X-User-ID")
		if uid == "" {
			writeError(w, http.StatusUnauthorized, "missing user identity")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, uid)))
	})
}

func userID(r *http.Request) string {
	uid, _ := r.Context().Value(userIDKey).(string)
	return uid
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps domain and quota errors onto HTTP statuses.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	var qd *usecase.QuotaDeniedError
	switch {
	case errors.As(err, &qd):
		writeJSON(w, http.StatusForbidden, map[string]string{
			"error":  "quota denied",
			"reason": string(qd.Reason),
		})
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUpstreamTimeout):
		writeError(w, http.StatusGatewayTimeout, "upstream timed out")
	case errors.Is(err, domain.ErrLockContended):
		writeError(w, http.StatusConflict, "concurrent update, retry")
	default:
		s.log.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// --- checkout ---

type checkoutStartRequest struct {
	PlanID string `json:"plan_id"`
}

type checkoutStartResponse struct {
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"redirect_url"`
}

func (s *Server) handleCheckoutStart(w http.ResponseWriter, r *http.Request) {
	var req checkoutStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	session, err := s.checkoutUC.Start(r.Context(), userID(r), req.PlanID,
		s.cfg.Server.SuccessURL, s.cfg.Server.CancelURL)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, checkoutStartResponse{
		SessionID:   session.SessionID,
		RedirectURL: session.RedirectURL,
	})
}

func (s *Server) handleActivateFree(w http.ResponseWriter, r *http.Request) {
	var req checkoutStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	sub, err := s.checkoutUC.ActivateFree(r.Context(), userID(r), req.PlanID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"subscription_id": sub.ID,
		"plan_id":         sub.PlanID,
		"status":          string(sub.Status),
	})
}

// --- documents ---

type generateRequest struct {
	Subject  string `json:"subject"`
	Audience string `json:"audience"`
	Tone     string `json:"tone"`
	Goal     string `json:"goal"`
}

func (r generateRequest) toPort() adapter.GenerationRequest {
	return adapter.GenerationRequest{
		Subject:  r.Subject,
		Audience: r.Audience,
		Tone:     r.Tone,
		Goal:     r.Goal,
	}
}

type sectionView struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	Position int    `json:"position"`
}

type documentView struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	Subtitle        string        `json:"subtitle,omitempty"`
	Slug            string        `json:"slug,omitempty"`
	Status          string        `json:"status"`
	Sections        []sectionView `json:"sections,omitempty"`
	GenerationCount int           `json:"generation_count"`
	EditCount       int           `json:"edit_count"`
	RenderCount     int           `json:"render_count"`
}

func toDocumentView(d *model.Document, withSections bool) documentView {
	v := documentView{
		ID:              d.ID,
		Title:           d.Title,
		Subtitle:        d.Subtitle,
		Slug:            d.Slug,
		Status:          string(d.Status),
		GenerationCount: d.GenerationCount,
		EditCount:       d.EditCount,
		RenderCount:     d.RenderCount,
	}
	if withSections {
		for _, sec := range d.Sections {
			v.Sections = append(v.Sections, sectionView{
				ID: sec.ID, Title: sec.Title, Body: sec.Body, Position: sec.Position,
			})
		}
	}
	return v
}

func (s *Server) handleDocumentGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	doc, err := s.documentUC.Generate(r.Context(), userID(r), req.toPort())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDocumentView(doc, true))
}

func (s *Server) handleDocumentRegenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	doc, err := s.documentUC.Regenerate(r.Context(), userID(r), chi.URLParam(r, "id"), req.toPort())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDocumentView(doc, true))
}

func (s *Server) handleDocumentList(w http.ResponseWriter, r *http.Request) {
	docs, err := s.documentUC.List(r.Context(), userID(r))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	out := make([]documentView, 0, len(docs))
	for _, d := range docs {
		out = append(out, toDocumentView(d, false))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDocumentGet(w http.ResponseWriter, r *http.Request) {
	doc, err := s.documentUC.Get(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDocumentView(doc, true))
}

type sectionEditRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (s *Server) handleSectionEdit(w http.ResponseWriter, r *http.Request) {
	pos, err := strconv.Atoi(chi.URLParam(r, "pos"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad section position")
		return
	}
	var req sectionEditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	doc, err := s.documentUC.EditSection(r.Context(), userID(r), chi.URLParam(r, "id"), pos, req.Title, req.Body)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDocumentView(doc, true))
}

func (s *Server) handleDocumentPublish(w http.ResponseWriter, r *http.Request) {
	doc, err := s.documentUC.Publish(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDocumentView(doc, false))
}

func (s *Server) handleDocumentUnpublish(w http.ResponseWriter, r *http.Request) {
	doc, err := s.documentUC.Unpublish(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDocumentView(doc, false))
}

// handlePublished serves a published document by slug, no identity
// required.
func (s *Server) handlePublished(w http.ResponseWriter, r *http.Request) {
	doc, err := s.documentUC.GetPublished(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDocumentView(doc, true))
}

// --- artifacts ---

type renderRequest struct {
	// NotifyEmail, when set, gets the download link mailed after the
	// render finishes.
	NotifyEmail string `json:"notify_email"`
	NotifyName  string `json:"notify_name"`
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req) // body is optional
	}
	doc, err := s.documentUC.Get(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	art, err := s.artifactUC.Render(r.Context(), userID(r), doc.ID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	token, err := s.downloads.Mint(art.DocumentID, art.Kind)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	downloadURL := s.cfg.Server.PublicURL + "/download?token=" + token
	s.notifyRendered(req, doc.Title, downloadURL)
	writeJSON(w, http.StatusOK, map[string]any{
		"artifact_id":  art.ID,
		"size_bytes":   art.SizeBytes,
		"rendered_at":  art.RenderedAt,
		"download_url": downloadURL,
	})
}

// notifyRendered mails the download link off the request path. Delivery
// failures are logged, never surfaced: the render already succeeded.
func (s *Server) notifyRendered(req renderRequest, title, downloadURL string) {
	if req.NotifyEmail == "" || s.mailer == nil || s.pool == nil {
		return
	}
	msg := adapter.DownloadEmail{
		To:           req.NotifyEmail,
		Name:         req.NotifyName,
		DocumentName: title,
		DownloadURL:  downloadURL,
	}
	if err := s.pool.Submit(func(ctx context.Context) error {
		return s.mailer.SendDownloadLink(ctx, msg)
	}); err != nil {
		s.log.Warn().Err(err).Str("to", msg.To).Msg("could not queue download email")
	}
}

func (s *Server) handleArtifactGet(w http.ResponseWriter, r *http.Request) {
	// Ownership check rides on the document lookup.
	if _, err := s.documentUC.Get(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		s.writeDomainError(w, err)
		return
	}
	art, err := s.artifactUC.Current(r.Context(), chi.URLParam(r, "id"), model.ArtifactKindPDF)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	token, err := s.downloads.Mint(art.DocumentID, art.Kind)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"artifact_id":  art.ID,
		"size_bytes":   art.SizeBytes,
		"rendered_at":  art.RenderedAt,
		"download_url": s.cfg.Server.PublicURL + "/download?token=" + token,
	})
}

// handleDownload resolves a signed token to the stored artifact URL.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "missing token")
		return
	}
	docID, kind, err := s.downloads.Verify(token)
	if err != nil {
		writeError(w, http.StatusForbidden, "invalid or expired token")
		return
	}
	art, err := s.artifactUC.Current(r.Context(), docID, kind)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	http.Redirect(w, r, art.PublicURL, http.StatusFound)
}
