package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sidrxo/burner-ticketing/internal/domain"
)

const defaultTimeout = 10 * time.Second

// Client talks to the payment gateway's REST API. The gateway is the sole
// authority on whether money moved: payment records are fetched fresh on
// every use and never trusted from the caller.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type paymentPayload struct {
	Reference string `json:"reference"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Status    string `json:"status"`
	Metadata  struct {
		EventID string `json:"event_id"`
		UserID  string `json:"user_id"`
	} `json:"metadata"`
}

// GetPayment fetches the authoritative record for a payment reference.
func (c *Client) GetPayment(ctx context.Context, reference string) (domain.Payment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/payments/"+reference, nil)
	if err != nil {
		return domain.Payment{}, fmt.Errorf("build payment request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Payment{}, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.Payment{}, domain.ErrPaymentNotVerified
	case resp.StatusCode != http.StatusOK:
		return domain.Payment{}, fmt.Errorf("%w: payment lookup returned %d", domain.ErrGatewayUnavailable, resp.StatusCode)
	}

	var payload paymentPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.Payment{}, fmt.Errorf("decode payment: %w", err)
	}

	return domain.Payment{
		Reference: payload.Reference,
		Amount:    payload.Amount,
		Currency:  payload.Currency,
		Status:    domain.PaymentStatus(payload.Status),
		EventID:   payload.Metadata.EventID,
		UserID:    payload.Metadata.UserID,
	}, nil
}

type createIntentRequest struct {
	Metadata struct {
		EventID string `json:"event_id"`
		UserID  string `json:"user_id"`
	} `json:"metadata"`
}

type createIntentResponse struct {
	Reference    string `json:"reference"`
	ClientSecret string `json:"client_secret"`
}

// CreateIntent asks the gateway for a new payment intent carrying the
// event/user metadata that ConfirmPurchase later verifies. Pricing is the
// gateway's concern.
func (c *Client) CreateIntent(ctx context.Context, eventID, userID string) (domain.PaymentIntent, error) {
	var body createIntentRequest
	body.Metadata.EventID = eventID
	body.Metadata.UserID = userID

	resp, err := c.postJSON(ctx, "/v1/payment_intents", body)
	if err != nil {
		return domain.PaymentIntent{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return domain.PaymentIntent{}, fmt.Errorf("%w: create intent returned %d", domain.ErrGatewayUnavailable, resp.StatusCode)
	}

	var payload createIntentResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.PaymentIntent{}, fmt.Errorf("decode intent: %w", err)
	}
	return domain.PaymentIntent{
		PaymentReference: payload.Reference,
		ClientSecret:     payload.ClientSecret,
	}, nil
}

type refundRequest struct {
	PaymentReference string `json:"payment_reference"`
	Reason           string `json:"reason"`
}

// RefundPayment issues a refund for a captured payment. Refunding an
// already-refunded reference is a no-op: the gateway answers 409 and the
// call is treated as success.
func (c *Client) RefundPayment(ctx context.Context, reference string, reason domain.RefundReason) error {
	resp, err := c.postJSON(ctx, "/v1/refunds", refundRequest{
		PaymentReference: reference,
		Reason:           string(reason),
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusConflict:
		return nil
	default:
		return fmt.Errorf("%w: refund returned %d", domain.ErrGatewayUnavailable, resp.StatusCode)
	}
}

func (c *Client) postJSON(ctx context.Context, path string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	return resp, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}
