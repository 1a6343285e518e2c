package partner

import (
	"regexp"
	"strings"
	"time"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// CustomerStatus represents the status of a customer
type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "active"
	CustomerStatusInactive CustomerStatus = "inactive"
)

// Customer is the billable party the ledger tracks balances for. The
// currency field is optional; when empty, monetary operations fall back to
// the tenant's default currency.
type Customer struct {
	shared.TenantAggregateRoot
	Code        string               `gorm:"type:varchar(50);not null;uniqueIndex:idx_customer_tenant_code,priority:2"`
	Name        string               `gorm:"type:varchar(200);not null"`
	Email       string               `gorm:"type:varchar(200);index"`
	Phone       string               `gorm:"type:varchar(50)"`
	Currency    valueobject.Currency `gorm:"type:varchar(3)"`
	Status      CustomerStatus       `gorm:"type:varchar(20);not null;default:'active'"`
	Address     string               `gorm:"type:text"`
	TaxID       string               `gorm:"type:varchar(50)"`
	Notes       string               `gorm:"type:text"`
	ExternalRef string               `gorm:"type:varchar(100);index"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

var customerCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// NewCustomer creates a new customer with required fields
func NewCustomer(tenantID uuid.UUID, code, name string) (*Customer, error) {
	if err := validateCustomerCode(code); err != nil {
		return nil, err
	}
	if err := validateCustomerName(name); err != nil {
		return nil, err
	}

	customer := &Customer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(code),
		Name:                name,
		Status:              CustomerStatusActive,
	}

	customer.AddDomainEvent(NewCustomerCreatedEvent(customer))

	return customer, nil
}

// Update updates the customer's basic information
func (c *Customer) Update(name, email, phone string) error {
	if err := validateCustomerName(name); err != nil {
		return err
	}

	c.Name = name
	c.Email = email
	c.Phone = phone
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewCustomerUpdatedEvent(c))

	return nil
}

// SetCurrency pins the customer to a currency. Allowed only while the
// customer has no pinned currency yet; the ledger keys balances by currency,
// so switching would orphan existing history.
func (c *Customer) SetCurrency(currency valueobject.Currency) error {
	if !currency.IsValid() {
		return shared.NewDomainError("INVALID_CURRENCY", "Currency is not valid")
	}
	if c.Currency != "" && c.Currency != currency {
		return shared.NewDomainError("CURRENCY_PINNED", "Customer currency cannot be changed once set")
	}
	c.Currency = currency
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// EffectiveCurrency resolves the currency used for this customer's monetary
// operations: the pinned currency if set, otherwise the tenant default.
func (c *Customer) EffectiveCurrency(tenantDefault valueobject.Currency) valueobject.Currency {
	if c.Currency != "" {
		return c.Currency
	}
	if tenantDefault != "" {
		return tenantDefault
	}
	return valueobject.DefaultCurrency
}

// Deactivate marks the customer as inactive
func (c *Customer) Deactivate() {
	if c.Status == CustomerStatusInactive {
		return
	}
	c.Status = CustomerStatusInactive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// Activate marks the customer as active
func (c *Customer) Activate() {
	if c.Status == CustomerStatusActive {
		return
	}
	c.Status = CustomerStatusActive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// IsActive returns true if the customer can take new transactions
func (c *Customer) IsActive() bool {
	return c.Status == CustomerStatusActive
}

func validateCustomerCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Customer code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Customer code cannot exceed 50 characters")
	}
	if !customerCodePattern.MatchString(code) {
		return shared.NewDomainError("INVALID_CODE", "Customer code may only contain letters, digits, hyphen and underscore")
	}
	return nil
}

func validateCustomerName(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot exceed 200 characters")
	}
	return nil
}
