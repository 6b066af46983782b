package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	billapp "github.com/ispnet/backend/internal/application/billing"
	"github.com/ispnet/backend/internal/domain/billing"
)

// PaymentHandler handles payment checkout and gateway callback endpoints
type PaymentHandler struct {
	BaseHandler
	payments      *billapp.PaymentService
	reconciler    *billapp.Reconciler
	clientKey     string
	production    bool
	webhookGuards []gin.HandlerFunc
}

// NewPaymentHandler creates a new PaymentHandler. Any webhookGuards are
// installed on the notification endpoint only, ahead of the handler.
func NewPaymentHandler(payments *billapp.PaymentService, reconciler *billapp.Reconciler, clientKey string, production bool, webhookGuards ...gin.HandlerFunc) *PaymentHandler {
	return &PaymentHandler{
		payments:      payments,
		reconciler:    reconciler,
		clientKey:     clientKey,
		production:    production,
		webhookGuards: webhookGuards,
	}
}

// CheckoutRequest is the payload to start a gateway checkout for an invoice
type CheckoutRequest struct {
	InvoiceID uuid.UUID `json:"invoice_id" binding:"required"`
}

// PaymentConfigResponse exposes the public gateway configuration for clients
type PaymentConfigResponse struct {
	ClientKey  string `json:"client_key"`
	Production bool   `json:"production"`
}

// CreateCheckout godoc
// @Summary      Start a checkout session for an unpaid invoice
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body CheckoutRequest true "Invoice to pay"
// @Success      201 {object} APIResponse[billing.CheckoutSession]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /payments [post]
func (h *PaymentHandler) CreateCheckout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	session, err := h.payments.CreateCheckout(c.Request.Context(), req.InvoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, session)
}

// GetConfig godoc
// @Summary      Get the public payment gateway configuration
// @Tags         payments
// @Produce      json
// @Success      200 {object} APIResponse[PaymentConfigResponse]
// @Router       /payments/config [get]
func (h *PaymentHandler) GetConfig(c *gin.Context) {
	h.Success(c, PaymentConfigResponse{
		ClientKey:  h.clientKey,
		Production: h.production,
	})
}

// HandleWebhook godoc
// @Summary      Receive a payment gateway notification
// @Description  Verifies the notification signature and reconciles the referenced invoice
// @Tags         payments
// @Accept       json
// @Produce      json
// @Success      200 {object} APIResponse[billapp.ReconcileResult]
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /payments/webhook [post]
func (h *PaymentHandler) HandleWebhook(c *gin.Context) {
	var notification billing.GatewayNotification
	if err := c.ShouldBindJSON(&notification); err != nil {
		h.BadRequest(c, "Invalid notification payload: "+err.Error())
		return
	}

	result, err := h.reconciler.HandleNotification(c.Request.Context(), &notification)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	// The gateway retries on any non-2xx, so every reconciled outcome
	// (including raced and already-paid) acknowledges with 200.
	h.Success(c, result)
}

// PollStatus godoc
// @Summary      Poll the gateway for an order's status and reconcile it
// @Tags         payments
// @Produce      json
// @Param        orderId path string true "Gateway order ID (invoice number)"
// @Success      200 {object} APIResponse[billapp.ReconcileResult]
// @Failure      404 {object} ErrorResponse
// @Router       /payments/{orderId}/status [get]
func (h *PaymentHandler) PollStatus(c *gin.Context) {
	orderID := c.Param("orderId")
	if orderID == "" {
		h.BadRequest(c, "Order ID is required")
		return
	}

	result, err := h.reconciler.PollStatus(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// RegisterRoutes registers payment routes
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	{
		payments.POST("", h.CreateCheckout)
		payments.GET("/config", h.GetConfig)
		payments.POST("/webhook", append(append([]gin.HandlerFunc{}, h.webhookGuards...), h.HandleWebhook)...)
		payments.GET("/:orderId/status", h.PollStatus)
	}
}
