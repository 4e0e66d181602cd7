// File: internal/usecase/ledger_uc.go
package usecase

import (
	"docstudio/internal/domain/model"
)

// Action is a metered capability a request wants to exercise.
type Action string

const (
	ActionGenerate Action = "generate"
	ActionEdit     Action = "edit"
	ActionRender   Action = "render"
)

// DenialReason tells the caller exactly which limit blocked the action,
// so the surface can offer an upgrade instead of a generic failure.
type DenialReason string

const (
	ReasonPlanDoesNotIncludeRendering DenialReason = "PlanDoesNotIncludeRendering"
	ReasonRenderQuotaExceeded         DenialReason = "RenderQuotaExceeded"
	ReasonEditQuotaExceeded           DenialReason = "EditQuotaExceeded"
	ReasonDocumentQuotaExceeded       DenialReason = "DocumentQuotaExceeded"
	ReasonGenerationQuotaExceeded     DenialReason = "GenerationQuotaExceeded"
)

// Decision is a regular value, never an error: denial is expected
// behaviour, not an exceptional condition.
type Decision struct {
	Allowed bool
	Reason  DenialReason
}

func allowed() Decision              { return Decision{Allowed: true} }
func denied(r DenialReason) Decision { return Decision{Reason: r} }

// AuthorizeInput is everything the ledger reads. The caller supplies the
// owned-document count because the generate check is per user, not per
// document.
type AuthorizeInput struct {
	Subscription  *model.Subscription // nil resolves to the "none" plan
	Document      *model.Document     // nil for a brand-new document
	DocumentCount int                 // non-archived documents the user owns
}

// QuotaLedger decides whether a metered action is permitted. Pure: no
// I/O, a function of plan limits and current counters only. Counter
// increments are the caller's job and happen strictly after the guarded
// action succeeds.
type QuotaLedger struct{}

func NewQuotaLedger() *QuotaLedger { return &QuotaLedger{} }

func (l *QuotaLedger) Authorize(in AuthorizeInput, action Action) Decision {
	plan := in.Subscription.Plan()

	switch action {
	case ActionRender:
		if !plan.ArtifactRendering {
			return denied(ReasonPlanDoesNotIncludeRendering)
		}
		if in.Document != nil && !plan.MaxRendersPerPeriod.AllowsNext(in.Document.RenderCount) {
			return denied(ReasonRenderQuotaExceeded)
		}
		return allowed()

	case ActionEdit:
		used := 0
		if in.Document != nil {
			used = in.Document.EditCount
		}
		if !plan.MaxEditsPerDocument.AllowsNext(used) {
			return denied(ReasonEditQuotaExceeded)
		}
		return allowed()

	case ActionGenerate:
		if in.Document == nil {
			// new document: bounded by how many the user already owns
			if !plan.MaxDocuments.AllowsNext(in.DocumentCount) {
				return denied(ReasonDocumentQuotaExceeded)
			}
			if !plan.MaxGenerationsPerPeriod.AllowsNext(0) {
				return denied(ReasonGenerationQuotaExceeded)
			}
			return allowed()
		}
		// regeneration of an existing document
		if !plan.MaxGenerationsPerPeriod.AllowsNext(in.Document.GenerationCount) {
			return denied(ReasonGenerationQuotaExceeded)
		}
		return allowed()

	default:
		// unknown action: fail closed
		return Decision{}
	}
}
