package payment

import (
	"bytes"
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ispnet/backend/internal/domain/billing"
)

const (
	midtransSnapTransactionsPath = "/snap/v1/transactions"
	midtransStatusPathFmt        = "/v2/%s/status"
)

// MidtransAdapter implements the PaymentGateway interface for Midtrans
type MidtransAdapter struct {
	config     *MidtransConfig
	httpClient *http.Client
}

// NewMidtransAdapter creates a new Midtrans adapter
func NewMidtransAdapter(config *MidtransConfig) (*MidtransAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &MidtransAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// CreateTransaction opens a Snap checkout session for an order
func (a *MidtransAdapter) CreateTransaction(ctx context.Context, req billing.CheckoutRequest) (*billing.CheckoutSession, error) {
	gross, err := parseRupiah(req.GrossAmount)
	if err != nil {
		return nil, fmt.Errorf("midtrans: invalid gross amount %q: %w", req.GrossAmount, err)
	}

	body := midtransSnapRequest{
		TransactionDetails: midtransTransactionDetails{
			OrderID:     req.OrderID,
			GrossAmount: gross,
		},
	}

	if req.CustomerName != "" || req.CustomerEmail != "" {
		body.CustomerDetails = &midtransCustomerDetails{
			FirstName: req.CustomerName,
			Email:     req.CustomerEmail,
		}
	}

	if req.ItemName != "" {
		price := gross
		if req.ItemPrice != "" {
			if p, err := parseRupiah(req.ItemPrice); err == nil {
				price = p
			}
		}
		body.ItemDetails = []midtransItemDetail{
			{
				ID:       req.OrderID,
				Name:     req.ItemName,
				Price:    price,
				Quantity: 1,
			},
		}
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("midtrans: failed to marshal request: %w", err)
	}

	respBody, err := a.doRequest(ctx, "POST", a.config.snapBaseURL()+midtransSnapTransactionsPath, bodyBytes)
	if err != nil {
		return nil, err
	}

	var snap midtransSnapResponse
	if err := json.Unmarshal(respBody, &snap); err != nil {
		return nil, fmt.Errorf("midtrans: failed to parse response: %w", err)
	}

	return &billing.CheckoutSession{
		Token:       snap.Token,
		RedirectURL: snap.RedirectURL,
	}, nil
}

// FetchStatus pulls the current transaction status for an order. The
// response body has the same shape as a webhook notification, so callers
// reconcile it through the same path.
func (a *MidtransAdapter) FetchStatus(ctx context.Context, orderID string) (*billing.GatewayNotification, error) {
	url := a.config.coreBaseURL() + fmt.Sprintf(midtransStatusPathFmt, orderID)

	respBody, err := a.doRequest(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}

	var notification billing.GatewayNotification
	if err := json.Unmarshal(respBody, &notification); err != nil {
		return nil, fmt.Errorf("midtrans: failed to parse status response: %w", err)
	}

	return &notification, nil
}

// ComputeSignature recomputes the notification signature from
// order_id + status_code + gross_amount + server key
func (a *MidtransAdapter) ComputeSignature(n *billing.GatewayNotification) string {
	payload := n.OrderID + n.StatusCode + n.GrossAmount + a.config.ServerKey
	sum := sha512.Sum512([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// VerifySignature checks the notification's signature key against the
// recomputed value
func (a *MidtransAdapter) VerifySignature(n *billing.GatewayNotification) bool {
	expected := a.ComputeSignature(n)

	// Constant-time compare; the signature is attacker-supplied input
	given := strings.ToLower(n.SignatureKey)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(given)) == 1
}

// doRequest performs an authenticated HTTP request to the Midtrans API
func (a *MidtransAdapter) doRequest(ctx context.Context, method, url string, body []byte) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("midtrans: failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", a.authHeader())

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("midtrans: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("midtrans: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp midtransErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil {
			if len(errResp.ErrorMessages) > 0 {
				return nil, fmt.Errorf("midtrans: HTTP %d: %s", resp.StatusCode, strings.Join(errResp.ErrorMessages, "; "))
			}
			if errResp.StatusMessage != "" {
				return nil, fmt.Errorf("midtrans: HTTP %d: %s", resp.StatusCode, errResp.StatusMessage)
			}
		}
		return nil, fmt.Errorf("midtrans: HTTP %d", resp.StatusCode)
	}

	return respBody, nil
}

// authHeader builds the Basic auth header from the server key
func (a *MidtransAdapter) authHeader() string {
	credentials := base64.StdEncoding.EncodeToString([]byte(a.config.ServerKey + ":"))
	return "Basic " + credentials
}

// parseRupiah converts a decimal amount string to whole rupiah.
// Midtrans rejects fractional gross amounts for IDR.
func parseRupiah(amount string) (int64, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, err
	}
	return d.Round(0).IntPart(), nil
}

// Ensure MidtransAdapter implements PaymentGateway
var _ billing.PaymentGateway = (*MidtransAdapter)(nil)
