package payment

import "errors"

const (
	midtransSnapBaseURL        = "https://app.midtrans.com"
	midtransSnapSandboxBaseURL = "https://app.sandbox.midtrans.com"
	midtransCoreBaseURL        = "https://api.midtrans.com"
	midtransCoreSandboxBaseURL = "https://api.sandbox.midtrans.com"
)

// MidtransConfig contains configuration for the Midtrans Snap and Core APIs
type MidtransConfig struct {
	// ServerKey authenticates API calls and signs webhook notifications
	ServerKey string
	// ClientKey is exposed to the frontend Snap widget
	ClientKey string
	// Production switches from the sandbox to the live environment
	Production bool
	// SnapBaseURL overrides the Snap API endpoint, mainly for tests
	SnapBaseURL string
	// CoreBaseURL overrides the Core API endpoint, mainly for tests
	CoreBaseURL string
}

// Errors for configuration validation
var (
	ErrMidtransMissingServerKey = errors.New("midtrans: missing server key")
	ErrMidtransMissingClientKey = errors.New("midtrans: missing client key")
)

// Validate validates the configuration
func (c *MidtransConfig) Validate() error {
	if c.ServerKey == "" {
		return ErrMidtransMissingServerKey
	}
	if c.ClientKey == "" {
		return ErrMidtransMissingClientKey
	}
	return nil
}

func (c *MidtransConfig) snapBaseURL() string {
	if c.SnapBaseURL != "" {
		return c.SnapBaseURL
	}
	if c.Production {
		return midtransSnapBaseURL
	}
	return midtransSnapSandboxBaseURL
}

func (c *MidtransConfig) coreBaseURL() string {
	if c.CoreBaseURL != "" {
		return c.CoreBaseURL
	}
	if c.Production {
		return midtransCoreBaseURL
	}
	return midtransCoreSandboxBaseURL
}
