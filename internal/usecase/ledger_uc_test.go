// File: internal/usecase/ledger_uc_test.go
package usecase

import (
	"math/rand"
	"testing"

	"docstudio/internal/domain/model"
)

func activeSub(t *testing.T, planID string) *model.Subscription {
	t.Helper()
	sub, err := model.NewActiveSubscription("sub-1", "user-1", planID)
	if err != nil {
		t.Fatalf("NewActiveSubscription(%q): %v", planID, err)
	}
	return sub
}

func TestAuthorize_NilSubscriptionFallsBackToNonePlan(t *testing.T) {
	t.Parallel()
	l := NewQuotaLedger()

	d := l.Authorize(AuthorizeInput{Subscription: nil}, ActionGenerate)
	if d.Allowed {
		t.Fatal("expected denial for user without subscription")
	}
	if d.Reason != ReasonDocumentQuotaExceeded {
		t.Fatalf("reason = %q, want %q", d.Reason, ReasonDocumentQuotaExceeded)
	}
}

func TestAuthorize_InactiveSubscriptionGrantsNothing(t *testing.T) {
	t.Parallel()
	l := NewQuotaLedger()

	sub := activeSub(t, model.PlanPro)
	sub.Status = model.SubscriptionStatusCanceled

	d := l.Authorize(AuthorizeInput{Subscription: sub}, ActionRender)
	if d.Allowed {
		t.Fatal("canceled pro subscription must not allow rendering")
	}
	if d.Reason != ReasonPlanDoesNotIncludeRendering {
		t.Fatalf("reason = %q, want %q", d.Reason, ReasonPlanDoesNotIncludeRendering)
	}
}

func TestAuthorize_GenerateNewDocumentBoundedByDocumentCount(t *testing.T) {
	t.Parallel()
	l := NewQuotaLedger()
	sub := activeSub(t, model.PlanStarter) // MaxDocuments = 1

	if d := l.Authorize(AuthorizeInput{Subscription: sub, DocumentCount: 0}, ActionGenerate); !d.Allowed {
		t.Fatalf("first document denied: %q", d.Reason)
	}
	d := l.Authorize(AuthorizeInput{Subscription: sub, DocumentCount: 1}, ActionGenerate)
	if d.Allowed {
		t.Fatal("second document should be denied on starter")
	}
	if d.Reason != ReasonDocumentQuotaExceeded {
		t.Fatalf("reason = %q, want %q", d.Reason, ReasonDocumentQuotaExceeded)
	}
}

func TestAuthorize_RegenerateBoundedByGenerationCounter(t *testing.T) {
	t.Parallel()
	l := NewQuotaLedger()
	sub := activeSub(t, model.PlanStarter) // MaxGenerationsPerPeriod = 3

	doc := &model.Document{ID: "d1", UserID: "user-1", GenerationCount: 2}
	if d := l.Authorize(AuthorizeInput{Subscription: sub, Document: doc}, ActionGenerate); !d.Allowed {
		t.Fatalf("third generation denied: %q", d.Reason)
	}

	doc.GenerationCount = 3
	d := l.Authorize(AuthorizeInput{Subscription: sub, Document: doc}, ActionGenerate)
	if d.Allowed {
		t.Fatal("fourth generation should be denied")
	}
	if d.Reason != ReasonGenerationQuotaExceeded {
		t.Fatalf("reason = %q, want %q", d.Reason, ReasonGenerationQuotaExceeded)
	}
}

func TestAuthorize_EditQuotaBoundary(t *testing.T) {
	t.Parallel()
	l := NewQuotaLedger()
	sub := activeSub(t, model.PlanStarter) // MaxEditsPerDocument = 5

	doc := &model.Document{ID: "d1", UserID: "user-1", EditCount: 4}
	if d := l.Authorize(AuthorizeInput{Subscription: sub, Document: doc}, ActionEdit); !d.Allowed {
		t.Fatalf("fifth edit denied: %q", d.Reason)
	}

	doc.EditCount = 5
	d := l.Authorize(AuthorizeInput{Subscription: sub, Document: doc}, ActionEdit)
	if d.Allowed {
		t.Fatal("sixth edit should be denied")
	}
	if d.Reason != ReasonEditQuotaExceeded {
		t.Fatalf("reason = %q, want %q", d.Reason, ReasonEditQuotaExceeded)
	}
}

// Edit authorization tracks EditCount under any interleaving of
// counter bumps, and the edit after the limit is always denied.
func TestAuthorize_EditQuotaProperty(t *testing.T) {
	t.Parallel()
	l := NewQuotaLedger()
	sub := activeSub(t, model.PlanStarter) // MaxEditsPerDocument = 5

	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 100; trial++ {
		doc := &model.Document{ID: "d1", UserID: "user-1"}
		for doc.EditCount < 5 {
			d := l.Authorize(AuthorizeInput{Subscription: sub, Document: doc}, ActionEdit)
			if !d.Allowed {
				t.Fatalf("trial %d: edit denied at EditCount=%d: %q", trial, doc.EditCount, d.Reason)
			}
			switch rng.Intn(3) {
			case 0:
				doc.EditCount++
			case 1:
				doc.GenerationCount++
			default:
				doc.RenderCount++
			}
		}
		d := l.Authorize(AuthorizeInput{Subscription: sub, Document: doc}, ActionEdit)
		if d.Allowed {
			t.Fatalf("trial %d: edit allowed past the limit (gen=%d render=%d)", trial, doc.GenerationCount, doc.RenderCount)
		}
		if d.Reason != ReasonEditQuotaExceeded {
			t.Fatalf("trial %d: reason = %q, want %q", trial, d.Reason, ReasonEditQuotaExceeded)
		}
	}
}

func TestAuthorize_StarterCannotRender(t *testing.T) {
	t.Parallel()
	l := NewQuotaLedger()
	sub := activeSub(t, model.PlanStarter)

	d := l.Authorize(AuthorizeInput{Subscription: sub, Document: &model.Document{ID: "d1"}}, ActionRender)
	if d.Allowed {
		t.Fatal("starter plan must not include rendering")
	}
	if d.Reason != ReasonPlanDoesNotIncludeRendering {
		t.Fatalf("reason = %q, want %q", d.Reason, ReasonPlanDoesNotIncludeRendering)
	}
}

func TestAuthorize_SingleDocumentRenderQuota(t *testing.T) {
	t.Parallel()
	l := NewQuotaLedger()
	sub := activeSub(t, model.PlanSingle) // MaxRendersPerPeriod = 5

	doc := &model.Document{ID: "d1", RenderCount: 4}
	if d := l.Authorize(AuthorizeInput{Subscription: sub, Document: doc}, ActionRender); !d.Allowed {
		t.Fatalf("fifth render denied: %q", d.Reason)
	}

	doc.RenderCount = 5
	d := l.Authorize(AuthorizeInput{Subscription: sub, Document: doc}, ActionRender)
	if d.Allowed {
		t.Fatal("sixth render should be denied")
	}
	if d.Reason != ReasonRenderQuotaExceeded {
		t.Fatalf("reason = %q, want %q", d.Reason, ReasonRenderQuotaExceeded)
	}
}

func TestAuthorize_UnlimitedPlansNeverDeny(t *testing.T) {
	t.Parallel()
	l := NewQuotaLedger()

	for _, planID := range []string{model.PlanPro, model.PlanBusiness} {
		sub := activeSub(t, planID)
		doc := &model.Document{ID: "d1", GenerationCount: 10_000, EditCount: 10_000, RenderCount: 10_000}

		for _, action := range []Action{ActionGenerate, ActionEdit, ActionRender} {
			if d := l.Authorize(AuthorizeInput{Subscription: sub, Document: doc, DocumentCount: 19}, action); !d.Allowed {
				t.Fatalf("plan %s denied %s: %q", planID, action, d.Reason)
			}
		}
	}
}

func TestAuthorize_UnknownActionFailsClosed(t *testing.T) {
	t.Parallel()
	l := NewQuotaLedger()
	sub := activeSub(t, model.PlanBusiness)

	if d := l.Authorize(AuthorizeInput{Subscription: sub}, Action("delete")); d.Allowed {
		t.Fatal("unknown action must be denied")
	}
}

func TestLimit_AllowsNext(t *testing.T) {
	t.Parallel()

	cases := []struct {
		limit model.Limit
		used  int
		want  bool
	}{
		{0, 0, false},
		{1, 0, true},
		{1, 1, false},
		{5, 4, true},
		{5, 5, false},
		{model.Unlimited, 1 << 30, true},
	}
	for _, tc := range cases {
		if got := tc.limit.AllowsNext(tc.used); got != tc.want {
			t.Errorf("Limit(%d).AllowsNext(%d) = %v, want %v", tc.limit, tc.used, got, tc.want)
		}
	}
}
