// internal/handlers/plan/plan_handler.go
package plan

import (
	"net/http"
	"strconv"

	"sparkhub-service/internal/domain/plan"
	"sparkhub-service/internal/pkg/response"
	plansvc "sparkhub-service/internal/service/plan"

	"github.com/gin-gonic/gin"
)

type PlanHandler struct {
	planService *plansvc.PlanService
}

func NewPlanHandler(planService *plansvc.PlanService) *PlanHandler {
	return &PlanHandler{
		planService: planService,
	}
}

// CreatePlan creates a new subscription plan
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req plan.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request body", err)
		return
	}

	created, err := h.planService.CreatePlan(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, "failed to create plan", err)
		return
	}

	response.Success(c, http.StatusCreated, "plan created", created)
}

// GetPlan retrieves a single subscription plan by ID
func (h *PlanHandler) GetPlan(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid plan ID", err)
		return
	}

	p, err := h.planService.GetPlan(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, "plan not found", err)
		return
	}

	response.Success(c, http.StatusOK, "plan retrieved", p)
}

// ListPlans retrieves subscription plans with filters
func (h *PlanHandler) ListPlans(c *gin.Context) {
	var filters plan.PlanListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.ValidationError(c, "invalid query parameters", err)
		return
	}

	plans, err := h.planService.ListPlans(c.Request.Context(), &filters)
	if err != nil {
		response.FromError(c, "failed to list plans", err)
		return
	}

	response.Success(c, http.StatusOK, "plans retrieved", plans)
}

// UpdatePlan updates a plan; referenced plans only accept the active flag
func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid plan ID", err)
		return
	}

	var req plan.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request body", err)
		return
	}

	updated, err := h.planService.UpdatePlan(c.Request.Context(), id, &req)
	if err != nil {
		response.FromError(c, "failed to update plan", err)
		return
	}

	response.Success(c, http.StatusOK, "plan updated", updated)
}

// DeletePlan removes a plan, deactivating instead when it is referenced
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid plan ID", err)
		return
	}

	deactivated, err := h.planService.DeletePlan(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, "failed to delete plan", err)
		return
	}

	if deactivated {
		response.Success(c, http.StatusOK, "plan is referenced and was deactivated", nil)
		return
	}
	response.Success(c, http.StatusOK, "plan deleted", nil)
}
