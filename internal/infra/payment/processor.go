package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"docstudio/internal/domain/ports/adapter"
)

var _ adapter.PaymentProcessor = (*HTTPProcessor)(nil)

// HTTPProcessor talks to the hosted-checkout API of the payment
// provider over plain HTTP calls.
type HTTPProcessor struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPProcessor(baseURL, apiKey string) *HTTPProcessor {
	return &HTTPProcessor{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *HTTPProcessor) Name() string { return "hosted-checkout" }

type sessionCreateRequest struct {
	AmountCents int64             `json:"amount_cents"`
	Currency    string            `json:"currency"`
	ProductName string            `json:"product_name"`
	Mode        string            `json:"mode"`
	SuccessURL  string            `json:"success_url"`
	CancelURL   string            `json:"cancel_url"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type sessionCreateResponse struct {
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"redirect_url"`
	Error       struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreateSession asks the provider for a hosted checkout session. The
// metadata echoes user and plan ids back through the confirmation
// event as a secondary correlation channel.
func (p *HTTPProcessor) CreateSession(ctx context.Context, req adapter.SessionRequest) (*adapter.CheckoutSession, error) {
	mode := "subscription"
	if req.OneTime {
		mode = "payment"
	}
	body := sessionCreateRequest{
		AmountCents: req.AmountCents,
		Currency:    req.Currency,
		ProductName: req.ProductName,
		Mode:        mode,
		SuccessURL:  req.SuccessURL,
		CancelURL:   req.CancelURL,
		Metadata: map[string]string{
			"user_id": req.UserID,
			"plan_id": req.PlanID,
		},
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request data: %w", err)
	}

	url := p.baseURL + "/v1/checkout/sessions"
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var out sessionCreateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, body: %s", err, string(raw))
	}
	if resp.StatusCode != http.StatusOK || out.Error.Code != "" {
		return nil, fmt.Errorf("processor error: status %d, code %s, message: %s",
			resp.StatusCode, out.Error.Code, out.Error.Message)
	}
	if out.SessionID == "" || out.RedirectURL == "" {
		return nil, fmt.Errorf("processor returned incomplete session, body: %s", string(raw))
	}

	return &adapter.CheckoutSession{SessionID: out.SessionID, RedirectURL: out.RedirectURL}, nil
}
