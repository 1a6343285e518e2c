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

// PaymentHandler handles payment API endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService *ledgerapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *ledgerapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// CreatePaymentRequest represents a request to record a payment
// @Description Request body for recording a new payment
type CreatePaymentRequest struct {
	CustomerID *uuid.UUID      `json:"customer_id"`
	Amount     decimal.Decimal `json:"amount" binding:"required" example:"250.00"`
	Currency   string          `json:"currency" binding:"omitempty,len=3" example:"USD"`
	Method     string          `json:"method" binding:"required,max=50" example:"card"`
	Date       time.Time       `json:"date" example:"2026-01-24T12:00:00Z"`
	Source     string          `json:"source" binding:"max=100" example:"checkout"`
	Notes      string          `json:"notes" binding:"max=2000"`
	AutoApply  bool            `json:"auto_apply" example:"true"`

	// Applications is an explicit priority-ordered split of the amount,
	// for callers that already know where the money goes. Mutually
	// exclusive with auto_apply.
	Applications []PaymentApplicationRequest `json:"applications" binding:"omitempty,dive"`
}

// PaymentApplicationRequest is one slice of an explicit application plan
// @Description One priority-ordered slice of a payment application plan
type PaymentApplicationRequest struct {
	Priority   int             `json:"priority" example:"1"`
	Target     string          `json:"target" binding:"required,oneof=STORE_CREDIT CREDIT_NOTE INVOICE ESTIMATE" example:"INVOICE"`
	DocumentID *uuid.UUID      `json:"document_id"`
	Amount     decimal.Decimal `json:"amount" binding:"required" example:"100.00"`
}

func (r *CreatePaymentRequest) toApplications() (ledger.ChargeApplicationList, error) {
	if len(r.Applications) == 0 {
		return nil, nil
	}
	list := make(ledger.ChargeApplicationList, 0, len(r.Applications))
	for _, item := range r.Applications {
		target := ledger.ApplicationTarget(item.Target)
		doc := ledger.NoDocument()
		if target != ledger.ApplicationTargetStoreCredit && item.DocumentID != nil {
			var kind ledger.DocumentKind
			switch target {
			case ledger.ApplicationTargetCreditNote:
				kind = ledger.DocumentKindCreditNote
			case ledger.ApplicationTargetEstimate:
				kind = ledger.DocumentKindEstimate
			default:
				kind = ledger.DocumentKindInvoice
			}
			var err error
			doc, err = ledger.NewDocumentRef(kind, *item.DocumentID)
			if err != nil {
				return nil, err
			}
		}
		list = append(list, ledger.ChargeApplication{
			Priority: item.Priority,
			Target:   target,
			Document: doc,
			Amount:   item.Amount,
		})
	}
	return list, nil
}

// SetPaymentAmountRequest represents a request to change a payment's amount
// @Description Request body for adjusting a payment's total amount
type SetPaymentAmountRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required" example:"300.00"`
}

// ListPaymentsRequest represents query filters for listing payments
// @Description Query parameters for listing payments
type ListPaymentsRequest struct {
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
	CustomerID *uuid.UUID `form:"customer_id"`
	Applied    *bool      `form:"applied"`
	Voided     *bool      `form:"voided"`
	Method     string     `form:"method"`
	FromDate   *time.Time `form:"from_date" time_format:"2006-01-02T15:04:05Z07:00"`
	ToDate     *time.Time `form:"to_date" time_format:"2006-01-02T15:04:05Z07:00"`
}

func (r *ListPaymentsRequest) toFilter() ledger.PaymentFilter {
	filter := ledger.PaymentFilter{
		Filter: shared.Filter{
			Page:     r.Page,
			PageSize: r.PageSize,
			OrderBy:  r.OrderBy,
			OrderDir: r.OrderDir,
		},
		CustomerID: r.CustomerID,
		Applied:    r.Applied,
		Voided:     r.Voided,
		FromDate:   r.FromDate,
		ToDate:     r.ToDate,
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if r.Method != "" {
		m := ledger.PaymentMethod(r.Method)
		filter.Method = &m
	}
	return filter
}

// Create godoc
// @ID           createPayment
// @Summary      Record a payment
// @Description  Record a payment, optionally auto-applying it across the customer's open items
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        request body CreatePaymentRequest true "Payment creation request"
// @Success      201 {object} APIResponse[PaymentResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /ledger/payments [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	applications, err := req.toApplications()
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	payment, err := h.paymentService.CreatePayment(c.Request.Context(), tenantID, ledgerapp.CreatePaymentRequest{
		CustomerID:   req.CustomerID,
		Amount:       req.Amount,
		Currency:     valueobject.Currency(req.Currency),
		Method:       ledger.PaymentMethod(req.Method),
		Date:         req.Date,
		Source:       req.Source,
		Notes:        req.Notes,
		AutoApply:    req.AutoApply,
		Applications: applications,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, ToPaymentResponse(payment))
}

// Get godoc
// @ID           getPaymentById
// @Summary      Get payment by ID
// @Description  Retrieve a single payment
// @Tags         payments
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Payment ID" format(uuid)
// @Success      200 {object} APIResponse[PaymentResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /ledger/payments/{id} [get]
func (h *PaymentHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	payment, err := h.paymentService.Get(c.Request.Context(), tenantID, paymentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ToPaymentResponse(payment))
}

// List godoc
// @ID           listPayments
// @Summary      List payments
// @Description  Retrieve a paginated list of payments with optional filtering
// @Tags         payments
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        customer_id query string false "Customer ID" format(uuid)
// @Param        applied query bool false "Fully applied flag"
// @Param        voided query bool false "Voided flag"
// @Param        method query string false "Payment method"
// @Param        from_date query string false "Start of date range (RFC3339)"
// @Param        to_date query string false "End of date range (RFC3339)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field" default(date)
// @Param        order_dir query string false "Order direction" Enums(asc, desc) default(desc)
// @Success      200 {object} APIResponse[[]PaymentResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /ledger/payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req ListPaymentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	filter := req.toFilter()

	payments, total, err := h.paymentService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, ToPaymentResponses(payments), total, filter.Page, filter.PageSize)
}

// SetAmount godoc
// @ID           setPaymentAmount
// @Summary      Adjust a payment's amount
// @Description  Change a payment's total; the unapplied balance moves by the same delta
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Payment ID" format(uuid)
// @Param        request body SetPaymentAmountRequest true "New amount"
// @Success      200 {object} APIResponse[PaymentResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /ledger/payments/{id}/amount [put]
func (h *PaymentHandler) SetAmount(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	var req SetPaymentAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	payment, err := h.paymentService.SetAmount(c.Request.Context(), tenantID, paymentID, req.Amount)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ToPaymentResponse(payment))
}

// Void godoc
// @ID           voidPayment
// @Summary      Void a payment
// @Description  Void a payment and fail all of its owned transactions atomically
// @Tags         payments
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Payment ID" format(uuid)
// @Success      200 {object} APIResponse[PaymentResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /ledger/payments/{id}/void [post]
func (h *PaymentHandler) Void(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	payment, err := h.paymentService.Void(c.Request.Context(), tenantID, paymentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ToPaymentResponse(payment))
}

// Breakdown godoc
// @ID           getPaymentBreakdown
// @Summary      Get a payment's breakdown
// @Description  Aggregate the settled effect of the payment's owned transactions
// @Tags         payments
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Payment ID" format(uuid)
// @Success      200 {object} APIResponse[ledger.PaymentBreakdown]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /ledger/payments/{id}/breakdown [get]
func (h *PaymentHandler) Breakdown(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	breakdown, err := h.paymentService.Breakdown(c.Request.Context(), tenantID, paymentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, breakdown)
}

// Suggestions godoc
// @ID           getPaymentSuggestions
// @Summary      Get match suggestions for a payment
// @Description  Retrieve the advisory split of a payment across the customer's open documents
// @Tags         payments
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Payment ID" format(uuid)
// @Success      200 {object} APIResponse[[]MatchSuggestionResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /ledger/payments/{id}/suggestions [get]
func (h *PaymentHandler) Suggestions(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	suggestions, err := h.paymentService.Suggestions(c.Request.Context(), tenantID, paymentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ToMatchSuggestionResponses(suggestions))
}
