package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	billapp "github.com/ispnet/backend/internal/application/billing"
	"github.com/ispnet/backend/internal/domain/billing"
)

// InvoiceHandler handles invoice query API endpoints
type InvoiceHandler struct {
	BaseHandler
	invoices *billapp.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoices *billapp.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

// InvoiceResponse represents an invoice in API responses.
// Monetary amounts are serialized as decimal strings to avoid
// floating-point drift in clients.
type InvoiceResponse struct {
	ID             uuid.UUID         `json:"id"`
	SubscriptionID uuid.UUID         `json:"subscription_id"`
	InvoiceNumber  string            `json:"invoice_number"`
	BillingPeriod  time.Time         `json:"billing_period"`
	DueDate        time.Time         `json:"due_date"`
	AmountBasic    string            `json:"amount_basic"`
	AmountTax      string            `json:"amount_tax"`
	AmountDiscount string            `json:"amount_discount"`
	PenaltyFee     string            `json:"penalty_fee"`
	TotalAmount    string            `json:"total_amount"`
	Status         string            `json:"status"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	Payments       []PaymentResponse `json:"payments,omitempty"`
}

// PaymentResponse represents a settled payment attached to an invoice
type PaymentResponse struct {
	ID           uuid.UUID `json:"id"`
	AmountPaid   string    `json:"amount_paid"`
	Method       string    `json:"method"`
	GatewayTrxID string    `json:"gateway_trx_id"`
	PaidAt       time.Time `json:"paid_at"`
}

func toInvoiceResponse(inv *billing.Invoice, payments []billing.Payment) InvoiceResponse {
	resp := InvoiceResponse{
		ID:             inv.ID,
		SubscriptionID: inv.SubscriptionID,
		InvoiceNumber:  inv.InvoiceNumber,
		BillingPeriod:  inv.BillingPeriod,
		DueDate:        inv.DueDate,
		AmountBasic:    inv.AmountBasic.String(),
		AmountTax:      inv.AmountTax.String(),
		AmountDiscount: inv.AmountDiscount.String(),
		PenaltyFee:     inv.PenaltyFee.String(),
		TotalAmount:    inv.TotalAmount.String(),
		Status:         inv.Status.String(),
		CreatedAt:      inv.CreatedAt,
		UpdatedAt:      inv.UpdatedAt,
	}
	for i := range payments {
		p := &payments[i]
		resp.Payments = append(resp.Payments, PaymentResponse{
			ID:           p.ID,
			AmountPaid:   p.AmountPaid.String(),
			Method:       p.Method,
			GatewayTrxID: p.GatewayTrxID,
			PaidAt:       p.PaidAt,
		})
	}
	return resp
}

type listInvoicesQuery struct {
	Status string `form:"status"`
	Limit  int    `form:"limit"`
}

// GetByID godoc
// @Summary      Get an invoice with its payments
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Success      200 {object} APIResponse[InvoiceResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	inv, payments, err := h.invoices.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toInvoiceResponse(inv, payments))
}

// ListByCustomer godoc
// @Summary      List a customer's invoices
// @Tags         invoices
// @Produce      json
// @Param        customerId path string true "Customer ID"
// @Param        status query string false "Filter by invoice status"
// @Param        limit query int false "Maximum number of invoices"
// @Success      200 {object} APIResponse[[]InvoiceResponse]
// @Router       /customers/{customerId}/invoices [get]
func (h *InvoiceHandler) ListByCustomer(c *gin.Context) {
	customerID, err := uuid.Parse(c.Param("customerId"))
	if err != nil {
		h.BadRequest(c, "Invalid customer ID format")
		return
	}

	var query listInvoicesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	filter := billing.InvoiceFilter{Limit: query.Limit}
	if query.Status != "" {
		status := billing.InvoiceStatus(query.Status)
		if !status.IsValid() {
			h.BadRequest(c, "Unknown invoice status: "+query.Status)
			return
		}
		filter.Status = &status
	}

	invoices, err := h.invoices.ListByCustomer(c.Request.Context(), customerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		responses = append(responses, toInvoiceResponse(&invoices[i], nil))
	}

	h.Success(c, responses)
}

// CurrentUnpaid godoc
// @Summary      Get a customer's current unpaid invoice
// @Tags         invoices
// @Produce      json
// @Param        customerId path string true "Customer ID"
// @Success      200 {object} APIResponse[InvoiceResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /customers/{customerId}/invoices/current [get]
func (h *InvoiceHandler) CurrentUnpaid(c *gin.Context) {
	customerID, err := uuid.Parse(c.Param("customerId"))
	if err != nil {
		h.BadRequest(c, "Invalid customer ID format")
		return
	}

	inv, err := h.invoices.CurrentUnpaid(c.Request.Context(), customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toInvoiceResponse(inv, nil))
}

// RegisterRoutes registers invoice routes
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	{
		invoices.GET("/:id", h.GetByID)
	}

	customers := rg.Group("/customers")
	{
		customers.GET("/:customerId/invoices", h.ListByCustomer)
		customers.GET("/:customerId/invoices/current", h.CurrentUnpaid)
	}
}
