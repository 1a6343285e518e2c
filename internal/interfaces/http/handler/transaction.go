package handler

import (
	"time"

	ledgerapp "github.com/billing/backend/internal/application/ledger"
	"github.com/billing/backend/internal/domain/ledger"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionHandler handles ledger transaction API endpoints
type TransactionHandler struct {
	BaseHandler
	txService *ledgerapp.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(txService *ledgerapp.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		txService: txService,
	}
}

// CreateTransactionRequest represents a request to record a ledger entry
// @Description Request body for creating a new ledger transaction
type CreateTransactionRequest struct {
	Type         string          `json:"type" binding:"required,oneof=CHARGE PAYMENT REFUND ADJUSTMENT DOCUMENT_ADJUSTMENT" example:"PAYMENT"`
	Status       string          `json:"status" binding:"omitempty,oneof=PENDING SUCCEEDED FAILED" example:"SUCCEEDED"`
	Method       string          `json:"method" binding:"required,max=50" example:"card"`
	Amount       decimal.Decimal `json:"amount" binding:"required" example:"100.00"`
	Currency     string          `json:"currency" binding:"omitempty,len=3" example:"USD"`
	Date         time.Time       `json:"date" example:"2026-01-24T12:00:00Z"`
	DocumentKind string          `json:"document_kind" binding:"omitempty,oneof=NONE INVOICE CREDIT_NOTE ESTIMATE" example:"INVOICE"`
	DocumentID   *uuid.UUID      `json:"document_id"`
	CustomerID   *uuid.UUID      `json:"customer_id"`
	PaymentID    *uuid.UUID      `json:"payment_id"`
	ParentID     *uuid.UUID      `json:"parent_transaction_id"`
	Notes        string          `json:"notes" binding:"max=2000"`
	GatewayID    string          `json:"gateway_id" binding:"max=100"`
}

// UpdateTransactionRequest represents a partial update of a ledger entry
// @Description Request body for updating a ledger transaction. Omitted fields stay unchanged.
type UpdateTransactionRequest struct {
	Status    *string          `json:"status" binding:"omitempty,oneof=PENDING SUCCEEDED FAILED" example:"SUCCEEDED"`
	Notes     *string          `json:"notes" binding:"omitempty,max=2000"`
	Amount    *decimal.Decimal `json:"amount"`
	Date      *time.Time       `json:"date"`
	GatewayID *string          `json:"gateway_id" binding:"omitempty,max=100"`
}

// ListTransactionsRequest represents query filters for listing transactions
// @Description Query parameters for listing ledger transactions
type ListTransactionsRequest struct {
	Page         int        `form:"page"`
	PageSize     int        `form:"page_size"`
	OrderBy      string     `form:"order_by"`
	OrderDir     string     `form:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
	CustomerID   *uuid.UUID `form:"customer_id"`
	PaymentID    *uuid.UUID `form:"payment_id"`
	ParentID     *uuid.UUID `form:"parent_transaction_id"`
	Type         string     `form:"type" binding:"omitempty,oneof=CHARGE PAYMENT REFUND ADJUSTMENT DOCUMENT_ADJUSTMENT"`
	Status       string     `form:"status" binding:"omitempty,oneof=PENDING SUCCEEDED FAILED"`
	Method       string     `form:"method"`
	DocumentKind string     `form:"document_kind" binding:"omitempty,oneof=NONE INVOICE CREDIT_NOTE ESTIMATE"`
	DocumentID   *uuid.UUID `form:"document_id"`
	FromDate     *time.Time `form:"from_date" time_format:"2006-01-02T15:04:05Z07:00"`
	ToDate       *time.Time `form:"to_date" time_format:"2006-01-02T15:04:05Z07:00"`
}

func (r *ListTransactionsRequest) toFilter() ledger.TransactionFilter {
	filter := ledger.TransactionFilter{
		Filter: shared.Filter{
			Page:     r.Page,
			PageSize: r.PageSize,
			OrderBy:  r.OrderBy,
			OrderDir: r.OrderDir,
		},
		CustomerID: r.CustomerID,
		PaymentID:  r.PaymentID,
		ParentID:   r.ParentID,
		DocumentID: r.DocumentID,
		FromDate:   r.FromDate,
		ToDate:     r.ToDate,
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if r.Type != "" {
		t := ledger.TransactionType(r.Type)
		filter.Type = &t
	}
	if r.Status != "" {
		s := ledger.TransactionStatus(r.Status)
		filter.Status = &s
	}
	if r.Method != "" {
		m := ledger.PaymentMethod(r.Method)
		filter.Method = &m
	}
	if r.DocumentKind != "" {
		k := ledger.DocumentKind(r.DocumentKind)
		filter.DocumentKind = &k
	}
	return filter
}

// Create godoc
// @ID           createTransaction
// @Summary      Record a ledger transaction
// @Description  Record a new monetary transaction and apply its side effects atomically
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        request body CreateTransactionRequest true "Transaction creation request"
// @Success      201 {object} APIResponse[TransactionResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /ledger/transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if req.Status == "" {
		req.Status = string(ledger.TransactionStatusPending)
	}

	appReq := ledgerapp.CreateTransactionRequest{
		Type:         ledger.TransactionType(req.Type),
		Status:       ledger.TransactionStatus(req.Status),
		Method:       ledger.PaymentMethod(req.Method),
		Amount:       req.Amount,
		Currency:     valueobject.Currency(req.Currency),
		Date:         req.Date,
		DocumentKind: ledger.DocumentKind(req.DocumentKind),
		CustomerID:   req.CustomerID,
		PaymentID:    req.PaymentID,
		ParentID:     req.ParentID,
		Notes:        req.Notes,
		GatewayID:    req.GatewayID,
	}
	if req.DocumentID != nil {
		appReq.DocumentID = *req.DocumentID
	}

	tx, err := h.txService.Create(c.Request.Context(), tenantID, appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, ToTransactionResponse(tx))
}

// Get godoc
// @ID           getTransactionById
// @Summary      Get transaction by ID
// @Description  Retrieve a single ledger transaction
// @Tags         transactions
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Transaction ID" format(uuid)
// @Success      200 {object} APIResponse[TransactionResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /ledger/transactions/{id} [get]
func (h *TransactionHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	txID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID format")
		return
	}

	tx, err := h.txService.Get(c.Request.Context(), tenantID, txID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ToTransactionResponse(tx))
}

// List godoc
// @ID           listTransactions
// @Summary      List transactions
// @Description  Retrieve a paginated list of ledger transactions with optional filtering
// @Tags         transactions
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        customer_id query string false "Customer ID" format(uuid)
// @Param        payment_id query string false "Payment ID" format(uuid)
// @Param        type query string false "Transaction type" Enums(CHARGE, PAYMENT, REFUND, ADJUSTMENT, DOCUMENT_ADJUSTMENT)
// @Param        status query string false "Transaction status" Enums(PENDING, SUCCEEDED, FAILED)
// @Param        document_kind query string false "Linked document kind" Enums(NONE, INVOICE, CREDIT_NOTE, ESTIMATE)
// @Param        document_id query string false "Linked document ID" format(uuid)
// @Param        from_date query string false "Start of date range (RFC3339)"
// @Param        to_date query string false "End of date range (RFC3339)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field" default(date)
// @Param        order_dir query string false "Order direction" Enums(asc, desc) default(desc)
// @Success      200 {object} APIResponse[[]TransactionResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /ledger/transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req ListTransactionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	filter := req.toFilter()

	txs, total, err := h.txService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, ToTransactionResponses(txs), total, filter.Page, filter.PageSize)
}

// Update godoc
// @ID           updateTransaction
// @Summary      Update a transaction
// @Description  Update mutable fields of a ledger transaction; side effects re-propagate atomically
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Transaction ID" format(uuid)
// @Param        request body UpdateTransactionRequest true "Transaction update request"
// @Success      200 {object} APIResponse[TransactionResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /ledger/transactions/{id} [put]
func (h *TransactionHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	txID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID format")
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := ledgerapp.UpdateTransactionRequest{
		Notes:     req.Notes,
		Amount:    req.Amount,
		Date:      req.Date,
		GatewayID: req.GatewayID,
	}
	if req.Status != nil {
		s := ledger.TransactionStatus(*req.Status)
		appReq.Status = &s
	}

	tx, err := h.txService.Update(c.Request.Context(), tenantID, txID, appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ToTransactionResponse(tx))
}

// Delete godoc
// @ID           deleteTransaction
// @Summary      Delete a transaction
// @Description  Remove a ledger transaction and unwind its side effects atomically
// @Tags         transactions
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Transaction ID" format(uuid)
// @Success      204 "No Content"
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /ledger/transactions/{id} [delete]
func (h *TransactionHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	txID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID format")
		return
	}

	if err := h.txService.Delete(c.Request.Context(), tenantID, txID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// GetTree godoc
// @ID           getTransactionTree
// @Summary      Get a transaction's refund tree
// @Description  Retrieve a transaction and all its descendants in breadth-first order
// @Tags         transactions
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Root transaction ID" format(uuid)
// @Success      200 {object} APIResponse[[]TransactionResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /ledger/transactions/{id}/tree [get]
func (h *TransactionHandler) GetTree(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	rootID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID format")
		return
	}

	tree, err := h.txService.GetTree(c.Request.Context(), tenantID, rootID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ToTransactionTreeResponse(tree))
}
