package partner

import (
	"time"

	"github.com/billing/backend/internal/domain/partner"
	"github.com/google/uuid"
)

// CreateCustomerRequest represents a request to create a customer
type CreateCustomerRequest struct {
	Code        string `json:"code" binding:"required,max=50"`
	Name        string `json:"name" binding:"required,max=200"`
	Email       string `json:"email" binding:"omitempty,email,max=200"`
	Phone       string `json:"phone" binding:"omitempty,max=50"`
	Currency    string `json:"currency" binding:"omitempty,len=3"`
	Address     string `json:"address"`
	TaxID       string `json:"tax_id" binding:"omitempty,max=50"`
	Notes       string `json:"notes"`
	ExternalRef string `json:"external_ref" binding:"omitempty,max=100"`
}

// UpdateCustomerRequest represents a request to update a customer.
// Nil fields are left unchanged.
type UpdateCustomerRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=200"`
	Email    *string `json:"email" binding:"omitempty,email,max=200"`
	Phone    *string `json:"phone" binding:"omitempty,max=50"`
	Currency *string `json:"currency" binding:"omitempty,len=3"`
	Address  *string `json:"address"`
	TaxID    *string `json:"tax_id" binding:"omitempty,max=50"`
	Notes    *string `json:"notes"`
}

// CustomerListFilter represents filtering options for listing customers
type CustomerListFilter struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir"`
	Search   string `form:"search"`
	Status   string `form:"status"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Currency    string    `json:"currency,omitempty"`
	Status      string    `json:"status"`
	Address     string    `json:"address,omitempty"`
	TaxID       string    `json:"tax_id,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	ExternalRef string    `json:"external_ref,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToCustomerResponse converts a domain customer to a response DTO
func ToCustomerResponse(customer *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:          customer.ID,
		Code:        customer.Code,
		Name:        customer.Name,
		Email:       customer.Email,
		Phone:       customer.Phone,
		Currency:    string(customer.Currency),
		Status:      string(customer.Status),
		Address:     customer.Address,
		TaxID:       customer.TaxID,
		Notes:       customer.Notes,
		ExternalRef: customer.ExternalRef,
		CreatedAt:   customer.CreatedAt,
		UpdatedAt:   customer.UpdatedAt,
	}
}
