package partner

import (
	"context"
	"errors"
	"strings"

	"github.com/billing/backend/internal/domain/partner"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/billing/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// CustomerService handles customer-related business operations
type CustomerService struct {
	customerRepo partner.CustomerRepository
	eventBus     shared.EventBus
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo partner.CustomerRepository, eventBus shared.EventBus) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		eventBus:     eventBus,
	}
}

// Create creates a new customer
func (s *CustomerService) Create(ctx context.Context, tenantID uuid.UUID, req CreateCustomerRequest) (*CustomerResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "customer", "create")
	defer span.End()

	existing, err := s.customerRepo.FindByCode(ctx, tenantID, strings.ToUpper(req.Code))
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Customer with this code already exists")
	}

	customer, err := partner.NewCustomer(tenantID, req.Code, req.Name)
	if err != nil {
		return nil, err
	}
	customer.Email = req.Email
	customer.Phone = req.Phone
	customer.Address = req.Address
	customer.TaxID = req.TaxID
	customer.Notes = req.Notes
	customer.ExternalRef = req.ExternalRef

	if req.Currency != "" {
		if err := customer.SetCurrency(valueobject.Currency(req.Currency)); err != nil {
			return nil, err
		}
	}

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrCustomerID, customer.ID.String())
	s.publishEvents(ctx, customer)

	response := ToCustomerResponse(customer)
	return &response, nil
}

// Update updates a customer's mutable fields. The pinned currency can be set
// once but never changed afterwards.
func (s *CustomerService) Update(ctx context.Context, tenantID, customerID uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "customer", "update")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrCustomerID, customerID.String())

	customer, err := s.getForTenant(ctx, tenantID, customerID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	name := customer.Name
	if req.Name != nil {
		name = *req.Name
	}
	email := customer.Email
	if req.Email != nil {
		email = *req.Email
	}
	phone := customer.Phone
	if req.Phone != nil {
		phone = *req.Phone
	}
	if err := customer.Update(name, email, phone); err != nil {
		return nil, err
	}

	if req.Currency != nil && *req.Currency != "" {
		if err := customer.SetCurrency(valueobject.Currency(*req.Currency)); err != nil {
			return nil, err
		}
	}
	if req.Address != nil {
		customer.Address = *req.Address
	}
	if req.TaxID != nil {
		customer.TaxID = *req.TaxID
	}
	if req.Notes != nil {
		customer.Notes = *req.Notes
	}

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishEvents(ctx, customer)

	response := ToCustomerResponse(customer)
	return &response, nil
}

// GetByID retrieves a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.getForTenant(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// GetByCode retrieves a customer by code
func (s *CustomerService) GetByCode(ctx context.Context, tenantID uuid.UUID, code string) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByCode(ctx, tenantID, code)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, shared.ErrNotFound
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// List retrieves a list of customers with filtering and pagination
func (s *CustomerService) List(ctx context.Context, tenantID uuid.UUID, filter CustomerListFilter) ([]CustomerResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "code"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	domainFilter := partner.CustomerFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
		},
		Search: filter.Search,
	}
	if filter.Status != "" {
		status := partner.CustomerStatus(filter.Status)
		domainFilter.Status = &status
	}

	customers, err := s.customerRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.customerRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]CustomerResponse, len(customers))
	for i := range customers {
		responses[i] = ToCustomerResponse(&customers[i])
	}
	return responses, total, nil
}

// Deactivate marks a customer inactive; the ledger keeps its history
func (s *CustomerService) Deactivate(ctx context.Context, tenantID, customerID uuid.UUID) error {
	customer, err := s.getForTenant(ctx, tenantID, customerID)
	if err != nil {
		return err
	}
	customer.Deactivate()
	return s.customerRepo.Save(ctx, customer)
}

// Activate marks a customer active again
func (s *CustomerService) Activate(ctx context.Context, tenantID, customerID uuid.UUID) error {
	customer, err := s.getForTenant(ctx, tenantID, customerID)
	if err != nil {
		return err
	}
	customer.Activate()
	return s.customerRepo.Save(ctx, customer)
}

func (s *CustomerService) getForTenant(ctx context.Context, tenantID, customerID uuid.UUID) (*partner.Customer, error) {
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, shared.ErrNotFound
	}
	return customer, nil
}

func (s *CustomerService) publishEvents(ctx context.Context, customer *partner.Customer) {
	if s.eventBus == nil {
		return
	}
	for _, event := range customer.GetDomainEvents() {
		_ = s.eventBus.Publish(ctx, event)
	}
	customer.ClearDomainEvents()
}
