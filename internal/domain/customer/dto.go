// internal/domain/customer/dto.go
package customer

type RegisterCustomerRequest struct {
	FullName    string `json:"full_name" binding:"required,max=255"`
	PhoneNumber string `json:"phone_number" binding:"omitempty,max=20"`
	Notes       string `json:"notes" binding:"omitempty,max=1000"`
}

type CustomerListFilters struct {
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

type CustomerListResponse struct {
	Customers []Customer `json:"customers"`
	Total     int64      `json:"total"`
	Page      int        `json:"page"`
	PageSize  int        `json:"page_size"`
}
