package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ispnet/backend/internal/domain/billing"
)

func validMidtransConfig() *MidtransConfig {
	return &MidtransConfig{
		ServerKey: "SB-Mid-server-testkey",
		ClientKey: "SB-Mid-client-testkey",
	}
}

func TestMidtransConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *MidtransConfig
		wantErr error
	}{
		{
			name:   "valid config",
			config: validMidtransConfig(),
		},
		{
			name: "missing server key",
			config: &MidtransConfig{
				ClientKey: "SB-Mid-client-testkey",
			},
			wantErr: ErrMidtransMissingServerKey,
		},
		{
			name: "missing client key",
			config: &MidtransConfig{
				ServerKey: "SB-Mid-server-testkey",
			},
			wantErr: ErrMidtransMissingClientKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMidtransConfig_BaseURLs(t *testing.T) {
	sandbox := validMidtransConfig()
	assert.Equal(t, "https://app.sandbox.midtrans.com", sandbox.snapBaseURL())
	assert.Equal(t, "https://api.sandbox.midtrans.com", sandbox.coreBaseURL())

	production := validMidtransConfig()
	production.Production = true
	assert.Equal(t, "https://app.midtrans.com", production.snapBaseURL())
	assert.Equal(t, "https://api.midtrans.com", production.coreBaseURL())

	overridden := validMidtransConfig()
	overridden.SnapBaseURL = "http://localhost:1234"
	overridden.CoreBaseURL = "http://localhost:5678"
	assert.Equal(t, "http://localhost:1234", overridden.snapBaseURL())
	assert.Equal(t, "http://localhost:5678", overridden.coreBaseURL())
}

func TestNewMidtransAdapter(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		adapter, err := NewMidtransAdapter(validMidtransConfig())
		require.NoError(t, err)
		assert.NotNil(t, adapter)
	})

	t.Run("invalid config", func(t *testing.T) {
		adapter, err := NewMidtransAdapter(&MidtransConfig{})
		require.Error(t, err)
		assert.Nil(t, adapter)
	})
}

func TestMidtransAdapter_CreateTransaction(t *testing.T) {
	var captured midtransSnapRequest
	var authHeader string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/snap/v1/transactions", r.URL.Path)
		authHeader = r.Header.Get("Authorization")

		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(midtransSnapResponse{
			Token:       "66e4fa55-fdac-4ef9-91b5-733b97d1b862",
			RedirectURL: "https://app.sandbox.midtrans.com/snap/v2/vtweb/66e4fa55",
		})
	}))
	defer server.Close()

	config := validMidtransConfig()
	config.SnapBaseURL = server.URL
	adapter, err := NewMidtransAdapter(config)
	require.NoError(t, err)

	session, err := adapter.CreateTransaction(context.Background(), billing.CheckoutRequest{
		OrderID:       "INV-202601-0001-2481",
		GrossAmount:   "250000.00",
		CustomerName:  "Budi Santoso",
		CustomerEmail: "budi@example.com",
		ItemName:      "Home 50 Mbps - January 2026",
		ItemPrice:     "250000.00",
	})

	require.NoError(t, err)
	assert.Equal(t, "66e4fa55-fdac-4ef9-91b5-733b97d1b862", session.Token)
	assert.Contains(t, session.RedirectURL, "snap/v2")

	// Server key with empty password, base64 encoded
	assert.Equal(t, "Basic U0ItTWlkLXNlcnZlci10ZXN0a2V5Og==", authHeader)

	assert.Equal(t, "INV-202601-0001-2481", captured.TransactionDetails.OrderID)
	assert.Equal(t, int64(250000), captured.TransactionDetails.GrossAmount)
	require.NotNil(t, captured.CustomerDetails)
	assert.Equal(t, "Budi Santoso", captured.CustomerDetails.FirstName)
	require.Len(t, captured.ItemDetails, 1)
	assert.Equal(t, int64(250000), captured.ItemDetails[0].Price)
	assert.Equal(t, 1, captured.ItemDetails[0].Quantity)
}

func TestMidtransAdapter_CreateTransaction_InvalidAmount(t *testing.T) {
	adapter, err := NewMidtransAdapter(validMidtransConfig())
	require.NoError(t, err)

	_, err = adapter.CreateTransaction(context.Background(), billing.CheckoutRequest{
		OrderID:     "INV-202601-0001-2481",
		GrossAmount: "not-a-number",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid gross amount")
}

func TestMidtransAdapter_CreateTransaction_GatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(midtransErrorResponse{
			ErrorMessages: []string{"Access denied due to unauthorized transaction, please check client or server key"},
		})
	}))
	defer server.Close()

	config := validMidtransConfig()
	config.SnapBaseURL = server.URL
	adapter, err := NewMidtransAdapter(config)
	require.NoError(t, err)

	_, err = adapter.CreateTransaction(context.Background(), billing.CheckoutRequest{
		OrderID:     "INV-202601-0001-2481",
		GrossAmount: "250000.00",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 401")
	assert.Contains(t, err.Error(), "unauthorized transaction")
}

func TestMidtransAdapter_FetchStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/v2/INV-202601-0001-2481/status", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"order_id":           "INV-202601-0001-2481",
			"status_code":        "200",
			"gross_amount":       "250000.00",
			"transaction_status": "settlement",
			"transaction_id":     "9aed5972-5b6a-401e-894b-a32c91ed1a3a",
			"payment_type":       "bank_transfer",
			"settlement_time":    "2026-01-10 13:45:02",
		})
	}))
	defer server.Close()

	config := validMidtransConfig()
	config.CoreBaseURL = server.URL
	adapter, err := NewMidtransAdapter(config)
	require.NoError(t, err)

	notification, err := adapter.FetchStatus(context.Background(), "INV-202601-0001-2481")

	require.NoError(t, err)
	assert.Equal(t, "INV-202601-0001-2481", notification.OrderID)
	assert.Equal(t, "settlement", notification.TransactionStatus)
	assert.Equal(t, "9aed5972-5b6a-401e-894b-a32c91ed1a3a", notification.TransactionID)
	assert.Equal(t, billing.InvoiceStatusPaid, notification.TargetStatus())
}

func TestMidtransAdapter_FetchStatus_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(midtransErrorResponse{
			StatusCode:    "404",
			StatusMessage: "Transaction doesn't exist.",
		})
	}))
	defer server.Close()

	config := validMidtransConfig()
	config.CoreBaseURL = server.URL
	adapter, err := NewMidtransAdapter(config)
	require.NoError(t, err)

	_, err = adapter.FetchStatus(context.Background(), "INV-000000-0000-0000")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Transaction doesn't exist")
}

func TestMidtransAdapter_VerifySignature(t *testing.T) {
	adapter, err := NewMidtransAdapter(validMidtransConfig())
	require.NoError(t, err)

	// sha512("INV-202601-0001-2481" + "200" + "250000.00" + "SB-Mid-server-testkey")
	validSignature := "d79f06a25b22d388edc3d704da5570d5c9bad2309b275d5bbbb048cbe4800fd94e0a49e14ada2ecd7909019be4e10c3f892bb4c14ca318d6164fcdff4f0704e4"

	notification := &billing.GatewayNotification{
		OrderID:      "INV-202601-0001-2481",
		StatusCode:   "200",
		GrossAmount:  "250000.00",
		SignatureKey: validSignature,
	}

	t.Run("valid signature", func(t *testing.T) {
		assert.True(t, adapter.VerifySignature(notification))
	})

	t.Run("compute matches the documented digest", func(t *testing.T) {
		assert.Equal(t, validSignature, adapter.ComputeSignature(notification))
	})

	t.Run("uppercase signature accepted", func(t *testing.T) {
		n := *notification
		n.SignatureKey = "D79F06A25B22D388EDC3D704DA5570D5C9BAD2309B275D5BBBB048CBE4800FD94E0A49E14ADA2ECD7909019BE4E10C3F892BB4C14CA318D6164FCDFF4F0704E4"
		assert.True(t, adapter.VerifySignature(&n))
	})

	t.Run("tampered amount", func(t *testing.T) {
		n := *notification
		n.GrossAmount = "1.00"
		assert.False(t, adapter.VerifySignature(&n))
	})

	t.Run("forged signature", func(t *testing.T) {
		n := *notification
		n.SignatureKey = "deadbeef"
		assert.False(t, adapter.VerifySignature(&n))
	})

	t.Run("empty signature", func(t *testing.T) {
		n := *notification
		n.SignatureKey = ""
		assert.False(t, adapter.VerifySignature(&n))
	})
}

func TestParseRupiah(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "250000.00", want: 250000},
		{in: "250000", want: 250000},
		{in: "99.50", want: 100},
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseRupiah(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
