// internal/domain/plan/dto.go
package plan

type CreatePlanRequest struct {
	Name  string  `json:"name" binding:"required,max=255"`
	Kind  Kind    `json:"kind" binding:"required,oneof=straight bundle hourly timed"`
	Price float64 `json:"price" binding:"min=0"`

	TimeIncluded *int32 `json:"time_included" binding:"omitempty,min=1"`
	DaysIncluded *int32 `json:"days_included" binding:"omitempty,min=1"`
	ExpiryDays   *int32 `json:"expiry_days" binding:"omitempty,min=1"`

	TimeValidStart string `json:"time_valid_start"`
	TimeValidEnd   string `json:"time_valid_end"`

	Branches []string `json:"branches"`
}

type UpdatePlanRequest struct {
	Name  *string  `json:"name" binding:"omitempty,max=255"`
	Price *float64 `json:"price" binding:"omitempty,min=0"`

	TimeIncluded *int32 `json:"time_included" binding:"omitempty,min=1"`
	DaysIncluded *int32 `json:"days_included" binding:"omitempty,min=1"`
	ExpiryDays   *int32 `json:"expiry_days" binding:"omitempty,min=1"`

	TimeValidStart *string `json:"time_valid_start"`
	TimeValidEnd   *string `json:"time_valid_end"`

	Branches []string `json:"branches"`

	IsActive *bool `json:"is_active"`
}

// OnlyActiveFlag reports whether the update touches nothing but is_active.
// Plans referenced by a subscription or session accept no other change.
func (r *UpdatePlanRequest) OnlyActiveFlag() bool {
	return r.Name == nil && r.Price == nil &&
		r.TimeIncluded == nil && r.DaysIncluded == nil && r.ExpiryDays == nil &&
		r.TimeValidStart == nil && r.TimeValidEnd == nil &&
		r.Branches == nil
}

type PlanListFilters struct {
	Kind       Kind   `form:"kind" binding:"omitempty,oneof=straight bundle hourly timed"`
	Branch     string `form:"branch"`
	ActiveOnly bool   `form:"active_only"`
}
