// internal/domain/subscription/dto.go
package subscription

type PurchaseRequest struct {
	CustomerID int64 `json:"customer_id" binding:"required"`
	PlanID     int64 `json:"plan_id" binding:"required"`
}

type SubscriptionView struct {
	SubscriptionActive
	PlanName string `json:"plan_name"`
	Status   string `json:"status"`
}
