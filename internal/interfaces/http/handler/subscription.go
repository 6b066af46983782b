package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	subapp "github.com/ispnet/backend/internal/application/subscription"
	"github.com/ispnet/backend/internal/domain/subscription"
)

// SubscriptionHandler handles subscription lifecycle API endpoints
type SubscriptionHandler struct {
	BaseHandler
	lifecycle *subapp.LifecycleService
}

// NewSubscriptionHandler creates a new SubscriptionHandler
func NewSubscriptionHandler(lifecycle *subapp.LifecycleService) *SubscriptionHandler {
	return &SubscriptionHandler{lifecycle: lifecycle}
}

// SubscriptionResponse represents a subscription in API responses
type SubscriptionResponse struct {
	ID                  uuid.UUID  `json:"id"`
	CustomerID          uuid.UUID  `json:"customer_id"`
	PackageID           uuid.UUID  `json:"package_id"`
	ServiceNumber       string     `json:"service_number"`
	Status              string     `json:"status"`
	InstallationAddress string     `json:"installation_address"`
	GeoLat              float64    `json:"geo_lat"`
	GeoLong             float64    `json:"geo_long"`
	ActivationDate      *time.Time `json:"activation_date,omitempty"`
	ContractEndDate     *time.Time `json:"contract_end_date,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func toSubscriptionResponse(sub *subscription.Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		ID:                  sub.ID,
		CustomerID:          sub.CustomerID,
		PackageID:           sub.PackageID,
		ServiceNumber:       sub.ServiceNumber,
		Status:              sub.Status.String(),
		InstallationAddress: sub.InstallationAddress,
		GeoLat:              sub.GeoLat,
		GeoLong:             sub.GeoLong,
		ActivationDate:      sub.ActivationDate,
		ContractEndDate:     sub.ContractEndDate,
		CreatedAt:           sub.CreatedAt,
		UpdatedAt:           sub.UpdatedAt,
	}
}

type listSubscriptionsQuery struct {
	Status     string `form:"status"`
	CustomerID string `form:"customer_id"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
}

// Create godoc
// @Summary      Open a new subscription
// @Description  Creates a subscription in PENDING_INSTALL state with a generated service number
// @Tags         subscriptions
// @Accept       json
// @Produce      json
// @Param        request body subapp.CreateRequest true "Subscription details"
// @Success      201 {object} APIResponse[SubscriptionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /subscriptions [post]
func (h *SubscriptionHandler) Create(c *gin.Context) {
	var req subapp.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	sub, err := h.lifecycle.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toSubscriptionResponse(sub))
}

// List godoc
// @Summary      List subscriptions
// @Tags         subscriptions
// @Produce      json
// @Param        status query string false "Filter by status"
// @Param        customer_id query string false "Filter by customer"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} APIResponse[[]SubscriptionResponse]
// @Router       /subscriptions [get]
func (h *SubscriptionHandler) List(c *gin.Context) {
	var query listSubscriptionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	filter := subscription.Filter{
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if query.Status != "" {
		status := subscription.Status(query.Status)
		if !status.IsValid() {
			h.BadRequest(c, "Unknown subscription status: "+query.Status)
			return
		}
		filter.Status = &status
	}
	if query.CustomerID != "" {
		customerID, err := uuid.Parse(query.CustomerID)
		if err != nil {
			h.BadRequest(c, "Invalid customer ID format")
			return
		}
		filter.CustomerID = &customerID
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	subs, total, err := h.lifecycle.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]SubscriptionResponse, 0, len(subs))
	for i := range subs {
		responses = append(responses, toSubscriptionResponse(&subs[i]))
	}

	h.SuccessWithMeta(c, responses, total, filter.Page, filter.PageSize)
}

// GetByID godoc
// @Summary      Get a subscription
// @Tags         subscriptions
// @Produce      json
// @Param        id path string true "Subscription ID"
// @Success      200 {object} APIResponse[SubscriptionResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /subscriptions/{id} [get]
func (h *SubscriptionHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid subscription ID format")
		return
	}

	sub, err := h.lifecycle.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toSubscriptionResponse(sub))
}

// Activate godoc
// @Summary      Activate a subscription after installation
// @Description  Moves a PENDING_INSTALL subscription to ACTIVE and sets the billing anchor
// @Tags         subscriptions
// @Produce      json
// @Param        id path string true "Subscription ID"
// @Success      200 {object} APIResponse[SubscriptionResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /subscriptions/{id}/activate [post]
func (h *SubscriptionHandler) Activate(c *gin.Context) {
	h.transition(c, h.lifecycle.Activate)
}

// Isolate godoc
// @Summary      Isolate a subscription
// @Tags         subscriptions
// @Produce      json
// @Param        id path string true "Subscription ID"
// @Success      200 {object} APIResponse[SubscriptionResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /subscriptions/{id}/isolate [post]
func (h *SubscriptionHandler) Isolate(c *gin.Context) {
	h.transition(c, h.lifecycle.Isolate)
}

// Reactivate godoc
// @Summary      Reactivate an isolated subscription
// @Tags         subscriptions
// @Produce      json
// @Param        id path string true "Subscription ID"
// @Success      200 {object} APIResponse[SubscriptionResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /subscriptions/{id}/reactivate [post]
func (h *SubscriptionHandler) Reactivate(c *gin.Context) {
	h.transition(c, h.lifecycle.Reactivate)
}

// Terminate godoc
// @Summary      Terminate a subscription
// @Tags         subscriptions
// @Produce      json
// @Param        id path string true "Subscription ID"
// @Success      200 {object} APIResponse[SubscriptionResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /subscriptions/{id}/terminate [post]
func (h *SubscriptionHandler) Terminate(c *gin.Context) {
	h.transition(c, h.lifecycle.Terminate)
}

func (h *SubscriptionHandler) transition(c *gin.Context, apply func(ctx context.Context, id uuid.UUID) (*subscription.Subscription, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid subscription ID format")
		return
	}

	sub, err := apply(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toSubscriptionResponse(sub))
}

// RegisterRoutes registers subscription routes
func (h *SubscriptionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	subscriptions := rg.Group("/subscriptions")
	{
		subscriptions.POST("", h.Create)
		subscriptions.GET("", h.List)
		subscriptions.GET("/:id", h.GetByID)
		subscriptions.POST("/:id/activate", h.Activate)
		subscriptions.POST("/:id/isolate", h.Isolate)
		subscriptions.POST("/:id/reactivate", h.Reactivate)
		subscriptions.POST("/:id/terminate", h.Terminate)
	}
}
