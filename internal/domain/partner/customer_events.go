package partner

import (
	"github.com/billing/backend/internal/domain/shared"
)

// Event types for customer aggregate
const (
	EventTypeCustomerCreated = "partner.customer.created"
	EventTypeCustomerUpdated = "partner.customer.updated"
)

// CustomerCreatedEvent is published when a customer is created
type CustomerCreatedEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
	Name string `json:"name"`
}

// NewCustomerCreatedEvent creates a customer created event
func NewCustomerCreatedEvent(c *Customer) *CustomerCreatedEvent {
	return &CustomerCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerCreated, "Customer", c.ID, c.TenantID),
		Code:            c.Code,
		Name:            c.Name,
	}
}

// CustomerUpdatedEvent is published when customer details change
type CustomerUpdatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewCustomerUpdatedEvent creates a customer updated event
func NewCustomerUpdatedEvent(c *Customer) *CustomerUpdatedEvent {
	return &CustomerUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerUpdated, "Customer", c.ID, c.TenantID),
		Name:            c.Name,
	}
}
