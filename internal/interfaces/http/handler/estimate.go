package handler

import (
	"time"

	receivableapp "github.com/billing/backend/internal/application/receivable"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EstimateHandler handles estimate-related API endpoints
type EstimateHandler struct {
	BaseHandler
	estimateService *receivableapp.EstimateService
}

// NewEstimateHandler creates a new EstimateHandler
func NewEstimateHandler(estimateService *receivableapp.EstimateService) *EstimateHandler {
	return &EstimateHandler{
		estimateService: estimateService,
	}
}

// ConvertEstimateRequest represents a request to convert an estimate into an invoice
// @Description Request body for converting an accepted estimate into an invoice
type ConvertEstimateRequest struct {
	InvoiceNumber string     `json:"invoice_number" binding:"required,max=50" example:"INV-2026-0042"`
	DueAt         *time.Time `json:"due_at"`
}

// Create godoc
// @ID           createEstimate
// @Summary      Create a new estimate
// @Description  Issue an estimate; deposits may be applied to it before conversion
// @Tags         estimates
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        request body receivableapp.CreateEstimateRequest true "Estimate creation request"
// @Success      201 {object} APIResponse[EstimateResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /receivable/estimates [post]
func (h *EstimateHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req receivableapp.CreateEstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	estimate, err := h.estimateService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, ToEstimateResponse(estimate))
}

// Get godoc
// @ID           getEstimate
// @Summary      Get estimate by ID
// @Description  Retrieve an estimate by its ID
// @Tags         estimates
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Estimate ID" format(uuid)
// @Success      200 {object} APIResponse[EstimateResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /receivable/estimates/{id} [get]
func (h *EstimateHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	estimateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid estimate ID format")
		return
	}

	estimate, err := h.estimateService.Get(c.Request.Context(), tenantID, estimateID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ToEstimateResponse(estimate))
}

// List godoc
// @ID           listEstimates
// @Summary      List estimates
// @Description  Retrieve a list of estimates with optional filtering
// @Tags         estimates
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        customer_id query string false "Filter by customer ID" format(uuid)
// @Param        status query string false "Document status" Enums(PENDING, PARTIAL, PAID, VOID)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field" default(issued_at)
// @Param        order_dir query string false "Order direction" Enums(asc, desc) default(desc)
// @Success      200 {object} APIResponse[[]EstimateResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /receivable/estimates [get]
func (h *EstimateHandler) List(c *gin.Context) {
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

	estimates, err := h.estimateService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ToEstimateResponses(estimates))
}

// Convert godoc
// @ID           convertEstimate
// @Summary      Convert an estimate into an invoice
// @Description  Create an invoice from an estimate; deposits paid against the estimate carry over
// @Tags         estimates
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Estimate ID" format(uuid)
// @Param        request body ConvertEstimateRequest true "Conversion request"
// @Success      201 {object} APIResponse[InvoiceResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /receivable/estimates/{id}/convert [post]
func (h *EstimateHandler) Convert(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	estimateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid estimate ID format")
		return
	}

	var req ConvertEstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.estimateService.Convert(c.Request.Context(), tenantID, estimateID, req.InvoiceNumber, req.DueAt)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, ToInvoiceResponse(invoice))
}
