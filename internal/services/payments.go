package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// CheckoutItem is one purchasable line sent to the payment provider.
type CheckoutItem struct {
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	PictureURL string  `json:"picture_url,omitempty"`
	CurrencyID string  `json:"currency_id,omitempty"`
}

// CheckoutSession is the provider's handle for a started checkout.
type CheckoutSession struct {
	PreferenceID string
	InitPoint    string
}

// Payment is the provider's view of a completed or pending payment.
type Payment struct {
	ID       string
	Status   string
	Metadata map[string]any
}

// PaymentProvider is the opaque external payment collaborator. It is
// injected so tests can substitute fakes.
type PaymentProvider interface {
	CreatePreference(ctx context.Context, items []CheckoutItem, metadata map[string]any) (CheckoutSession, error)
	GetPayment(ctx context.Context, paymentID string) (Payment, error)
}

// PaymentClient talks to a MercadoPago-style REST API.
type PaymentClient struct {
	baseURL     string
	accessToken string
	frontendURL string
	httpClient  *http.Client
}

// NewPaymentClient constructs a PaymentClient. Configured reports whether an
// access token is present; an unconfigured client fails every call.
func NewPaymentClient(baseURL, accessToken, frontendURL string) *PaymentClient {
	return &PaymentClient{
		baseURL:     baseURL,
		accessToken: accessToken,
		frontendURL: frontendURL,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Configured reports whether the provider credentials are set.
func (p *PaymentClient) Configured() bool {
	return p.accessToken != ""
}

type preferenceRequest struct {
	Items      []CheckoutItem `json:"items"`
	BackURLs   backURLs       `json:"back_urls"`
	AutoReturn string         `json:"auto_return"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

type backURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

type preferenceResponse struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

// CreatePreference starts a hosted checkout for the items and returns the
// redirect URL the buyer should be sent to.
func (p *PaymentClient) CreatePreference(ctx context.Context, items []CheckoutItem, metadata map[string]any) (CheckoutSession, error) {
	if !p.Configured() {
		return CheckoutSession{}, fmt.Errorf("payment provider not configured")
	}

	reqBody := preferenceRequest{
		Items: items,
		BackURLs: backURLs{
			Success: p.frontendURL + "/cuenta/?pago=ok",
			Failure: p.frontendURL + "/checkout/?pago=fail",
			Pending: p.frontendURL + "/cuenta/?pago=pending",
		},
		AutoReturn: "approved",
		Metadata:   metadata,
	}

	var resp preferenceResponse
	if err := p.doJSON(ctx, http.MethodPost, "/checkout/preferences", reqBody, &resp); err != nil {
		return CheckoutSession{}, err
	}

	initPoint := resp.InitPoint
	if initPoint == "" {
		initPoint = resp.SandboxInitPoint
	}
	if initPoint == "" {
		return CheckoutSession{}, fmt.Errorf("provider returned no init_point")
	}

	return CheckoutSession{PreferenceID: resp.ID, InitPoint: initPoint}, nil
}

type paymentResponse struct {
	ID       json.Number    `json:"id"`
	Status   string         `json:"status"`
	Metadata map[string]any `json:"metadata"`
}

// GetPayment fetches the current state of a payment by provider ID.
func (p *PaymentClient) GetPayment(ctx context.Context, paymentID string) (Payment, error) {
	if !p.Configured() {
		return Payment{}, fmt.Errorf("payment provider not configured")
	}

	var resp paymentResponse
	if err := p.doJSON(ctx, http.MethodGet, "/v1/payments/"+paymentID, nil, &resp); err != nil {
		return Payment{}, err
	}

	return Payment{
		ID:       resp.ID.String(),
		Status:   resp.Status,
		Metadata: resp.Metadata,
	}, nil
}

func (p *PaymentClient) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body *bytes.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.accessToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("payment provider returned status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
