package handler

import (
	"time"

	ledgerapp "github.com/billing/backend/internal/application/ledger"
	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreditHandler handles store-credit API endpoints
type CreditHandler struct {
	BaseHandler
	creditService *ledgerapp.CreditBalanceService
}

// NewCreditHandler creates a new CreditHandler
func NewCreditHandler(creditService *ledgerapp.CreditBalanceService) *CreditHandler {
	return &CreditHandler{
		creditService: creditService,
	}
}

// AdjustCreditRequest represents a manual store-credit adjustment
// @Description Request body for granting (positive) or consuming (negative) store credit
type AdjustCreditRequest struct {
	Amount   decimal.Decimal `json:"amount" binding:"required" example:"50.00"`
	Currency string          `json:"currency" binding:"omitempty,len=3" example:"USD"`
	Notes    string          `json:"notes" binding:"max=2000" example:"goodwill credit"`
}

// Balance godoc
// @ID           getCreditBalance
// @Summary      Get a customer's store-credit balance
// @Description  Retrieve the customer's store-credit balance, optionally as of a point in time
// @Tags         credit
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        customer_id path string true "Customer ID" format(uuid)
// @Param        currency query string false "Currency (defaults to the customer's pinned currency)"
// @Param        as_of query string false "Point in time (RFC3339, defaults to now)"
// @Success      200 {object} APIResponse[ledgerapp.BalanceResult]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /ledger/customers/{customer_id}/credit/balance [get]
func (h *CreditHandler) Balance(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	customerID, err := uuid.Parse(c.Param("customer_id"))
	if err != nil {
		h.BadRequest(c, "Invalid customer ID format")
		return
	}

	var asOf time.Time
	if raw := c.Query("as_of"); raw != "" {
		asOf, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			h.BadRequest(c, "Invalid as_of timestamp, expected RFC3339")
			return
		}
	}
	currency := valueobject.Currency(c.Query("currency"))

	result, err := h.creditService.Balance(c.Request.Context(), tenantID, customerID, currency, asOf)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// History godoc
// @ID           getCreditHistory
// @Summary      Get a customer's store-credit history
// @Description  Retrieve the full store-credit timeline for a customer and currency
// @Tags         credit
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        customer_id path string true "Customer ID" format(uuid)
// @Param        currency query string false "Currency (defaults to the customer's pinned currency)"
// @Success      200 {object} APIResponse[[]CreditSnapshotResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /ledger/customers/{customer_id}/credit/history [get]
func (h *CreditHandler) History(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	customerID, err := uuid.Parse(c.Param("customer_id"))
	if err != nil {
		h.BadRequest(c, "Invalid customer ID format")
		return
	}
	currency := valueobject.Currency(c.Query("currency"))

	snapshots, err := h.creditService.History(c.Request.Context(), tenantID, customerID, currency)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ToCreditSnapshotResponses(snapshots))
}

// Adjust godoc
// @ID           adjustCreditBalance
// @Summary      Adjust a customer's store credit
// @Description  Record a manual store-credit adjustment; a negative amount consumes credit
// @Tags         credit
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        customer_id path string true "Customer ID" format(uuid)
// @Param        request body AdjustCreditRequest true "Adjustment request"
// @Success      201 {object} APIResponse[TransactionResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /ledger/customers/{customer_id}/credit/adjust [post]
func (h *CreditHandler) Adjust(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	customerID, err := uuid.Parse(c.Param("customer_id"))
	if err != nil {
		h.BadRequest(c, "Invalid customer ID format")
		return
	}

	var req AdjustCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	tx, err := h.creditService.Adjust(c.Request.Context(), tenantID, customerID,
		req.Amount, valueobject.Currency(req.Currency), req.Notes)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, ToTransactionResponse(tx))
}
