package handler

import (
	receivableapp "github.com/billing/backend/internal/application/receivable"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CreditNoteHandler handles credit-note-related API endpoints
type CreditNoteHandler struct {
	BaseHandler
	creditNoteService *receivableapp.CreditNoteService
}

// NewCreditNoteHandler creates a new CreditNoteHandler
func NewCreditNoteHandler(creditNoteService *receivableapp.CreditNoteService) *CreditNoteHandler {
	return &CreditNoteHandler{
		creditNoteService: creditNoteService,
	}
}

// Create godoc
// @ID           createCreditNote
// @Summary      Create a new credit note
// @Description  Issue a credit note; its amount becomes spendable store credit for the customer
// @Tags         credit-notes
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        request body receivableapp.CreateCreditNoteRequest true "Credit note creation request"
// @Success      201 {object} APIResponse[CreditNoteResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /receivable/credit-notes [post]
func (h *CreditNoteHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req receivableapp.CreateCreditNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	note, err := h.creditNoteService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, ToCreditNoteResponse(note))
}

// Get godoc
// @ID           getCreditNote
// @Summary      Get credit note by ID
// @Description  Retrieve a credit note by its ID
// @Tags         credit-notes
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Credit Note ID" format(uuid)
// @Success      200 {object} APIResponse[CreditNoteResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /receivable/credit-notes/{id} [get]
func (h *CreditNoteHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	noteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid credit note ID format")
		return
	}

	note, err := h.creditNoteService.Get(c.Request.Context(), tenantID, noteID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ToCreditNoteResponse(note))
}

// List godoc
// @ID           listCreditNotes
// @Summary      List credit notes
// @Description  Retrieve a list of credit notes with optional filtering
// @Tags         credit-notes
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        customer_id query string false "Filter by customer ID" format(uuid)
// @Param        status query string false "Document status" Enums(PENDING, PARTIAL, PAID, VOID)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field" default(issued_at)
// @Param        order_dir query string false "Order direction" Enums(asc, desc) default(desc)
// @Success      200 {object} APIResponse[[]CreditNoteResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /receivable/credit-notes [get]
func (h *CreditNoteHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter receivableapp.DocumentListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	// Set defaults
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	notes, err := h.creditNoteService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ToCreditNoteResponses(notes))
}

// Void godoc
// @ID           voidCreditNote
// @Summary      Void a credit note
// @Description  Void a credit note; fails if any of its credit has already been spent
// @Tags         credit-notes
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Credit Note ID" format(uuid)
// @Success      200 {object} APIResponse[CreditNoteResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /receivable/credit-notes/{id}/void [post]
func (h *CreditNoteHandler) Void(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	noteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid credit note ID format")
		return
	}

	note, err := h.creditNoteService.Void(c.Request.Context(), tenantID, noteID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ToCreditNoteResponse(note))
}
