// internal/handlers/customer/customer_handler.go
package customer

import (
	"net/http"
	"strconv"

	"sparkhub-service/internal/domain/customer"
	"sparkhub-service/internal/pkg/response"
	customersvc "sparkhub-service/internal/service/customer"

	"github.com/gin-gonic/gin"
)

type CustomerHandler struct {
	customerService *customersvc.CustomerService
}

func NewCustomerHandler(customerService *customersvc.CustomerService) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
	}
}

// RegisterCustomer creates a new customer record
func (h *CustomerHandler) RegisterCustomer(c *gin.Context) {
	var req customer.RegisterCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request body", err)
		return
	}

	created, err := h.customerService.Register(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, "failed to register customer", err)
		return
	}

	response.Success(c, http.StatusCreated, "customer registered", created)
}

// GetCustomer retrieves a single customer by ID
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid customer ID", err)
		return
	}

	cust, err := h.customerService.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, "customer not found", err)
		return
	}

	response.Success(c, http.StatusOK, "customer retrieved", cust)
}

// ListCustomers retrieves customers with optional search and pagination
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	var filters customer.CustomerListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.ValidationError(c, "invalid query parameters", err)
		return
	}

	result, err := h.customerService.List(c.Request.Context(), &filters)
	if err != nil {
		response.FromError(c, "failed to list customers", err)
		return
	}

	response.Success(c, http.StatusOK, "customers retrieved", result)
}

// SearchCustomers searches customers by name or phone number. ?q=xxx
func (h *CustomerHandler) SearchCustomers(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.ValidationError(c, "search query is required", nil)
		return
	}

	filters := customer.CustomerListFilters{Search: q, Page: 1, PageSize: 20}
	result, err := h.customerService.List(c.Request.Context(), &filters)
	if err != nil {
		response.FromError(c, "failed to search customers", err)
		return
	}

	response.Success(c, http.StatusOK, "customers retrieved", result)
}
