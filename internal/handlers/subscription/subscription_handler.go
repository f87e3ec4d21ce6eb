// internal/handlers/subscription/subscription_handler.go
package subscription

import (
	"net/http"
	"strconv"

	"sparkhub-service/internal/domain/subscription"
	"sparkhub-service/internal/middleware"
	"sparkhub-service/internal/pkg/response"
	subsvc "sparkhub-service/internal/service/subscription"

	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	subscriptionService *subsvc.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService *subsvc.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
	}
}

// Purchase sells a bundle plan to a customer
func (h *SubscriptionHandler) Purchase(c *gin.Context) {
	var req subscription.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request body", err)
		return
	}

	sub, err := h.subscriptionService.Purchase(c.Request.Context(), &req, middleware.MustGetStaffID(c))
	if err != nil {
		response.FromError(c, "failed to purchase subscription", err)
		return
	}

	response.Success(c, http.StatusCreated, "subscription purchased", sub)
}

// ListByCustomer retrieves a customer's subscriptions with status badges
func (h *SubscriptionHandler) ListByCustomer(c *gin.Context) {
	customerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid customer ID", err)
		return
	}

	views, err := h.subscriptionService.ListByCustomer(c.Request.Context(), customerID)
	if err != nil {
		response.FromError(c, "failed to list subscriptions", err)
		return
	}

	response.Success(c, http.StatusOK, "subscriptions retrieved", views)
}
