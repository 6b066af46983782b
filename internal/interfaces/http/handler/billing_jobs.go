package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ispnet/backend/internal/infrastructure/scheduler"
	"github.com/ispnet/backend/internal/interfaces/http/dto"
)

// BillingJobHandler exposes operator endpoints for the billing scheduler
type BillingJobHandler struct {
	BaseHandler
	scheduler *scheduler.BillingScheduler
}

// NewBillingJobHandler creates a new BillingJobHandler
func NewBillingJobHandler(sched *scheduler.BillingScheduler) *BillingJobHandler {
	return &BillingJobHandler{scheduler: sched}
}

// JobListResponse lists the registered billing jobs
type JobListResponse struct {
	Jobs []string `json:"jobs"`
}

// JobRunResponse reports a manually triggered job run
type JobRunResponse struct {
	Job       string `json:"job"`
	Triggered bool   `json:"triggered"`
}

// List godoc
// @Summary      List registered billing jobs
// @Tags         billing-jobs
// @Produce      json
// @Success      200 {object} APIResponse[JobListResponse]
// @Router       /billing/jobs [get]
func (h *BillingJobHandler) List(c *gin.Context) {
	h.Success(c, JobListResponse{Jobs: h.scheduler.JobNames()})
}

// RunNow godoc
// @Summary      Trigger a billing job immediately
// @Description  Runs the named job outside its schedule. The daily schedule is unaffected.
// @Tags         billing-jobs
// @Produce      json
// @Param        name path string true "Job name"
// @Success      200 {object} APIResponse[JobRunResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /billing/jobs/{name}/run [post]
func (h *BillingJobHandler) RunNow(c *gin.Context) {
	name := c.Param("name")

	if err := h.scheduler.RunNow(c.Request.Context(), name); err != nil {
		if strings.Contains(err.Error(), "unknown job") {
			h.NotFound(c, "No billing job named "+name)
			return
		}
		h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, err.Error())
		return
	}

	h.Success(c, JobRunResponse{Job: name, Triggered: true})
}

// RegisterRoutes registers billing job routes
func (h *BillingJobHandler) RegisterRoutes(rg *gin.RouterGroup) {
	jobs := rg.Group("/billing/jobs")
	{
		jobs.GET("", h.List)
		jobs.POST("/:name/run", h.RunNow)
	}
}
