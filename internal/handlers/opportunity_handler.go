package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unilink-hq/placement-service/internal/services"
	"github.com/unilink-hq/placement-service/internal/utils"
	"github.com/unilink-hq/placement-service/internal/validator"
)

type OpportunityHandler struct {
	BaseHandler
	opportunityService services.OpportunityService
	validator          *validator.Validator
}

func NewOpportunityHandler(
	opportunityService services.OpportunityService,
	validator *validator.Validator,
	logger utils.Logger,
) *OpportunityHandler {
	return &OpportunityHandler{
		BaseHandler:        NewBaseHandler(logger),
		opportunityService: opportunityService,
		validator:          validator,
	}
}

// CreateOpportunity creates a new opportunity
// @Summary Create opportunity
// @Description Creates a new opportunity listing as a draft
// @Tags opportunities
// @Accept json
// @Produce json
// @Param opportunity body services.CreateOpportunityRequest true "Opportunity data"
// @Success 201 {object} services.OpportunityResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /opportunities [post]
func (h *OpportunityHandler) CreateOpportunity(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateOpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	opportunity, err := h.opportunityService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "opportunity created", "opportunity_id", opportunity.ID, "user_id", userID)
	c.JSON(http.StatusCreated, opportunity)
}

// GetOpportunity retrieves an opportunity by ID
// @Summary Get opportunity
// @Tags opportunities
// @Produce json
// @Param id path string true "Opportunity ID"
// @Success 200 {object} services.OpportunityResponse
// @Failure 404 {object} ErrorResponse
// @Router /opportunities/{id} [get]
func (h *OpportunityHandler) GetOpportunity(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	opportunity, err := h.opportunityService.GetByID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, opportunity)
}

// UpdateOpportunity updates an opportunity
// @Summary Update opportunity
// @Tags opportunities
// @Accept json
// @Produce json
// @Param id path string true "Opportunity ID"
// @Param opportunity body services.UpdateOpportunityRequest true "Fields to update"
// @Success 200 {object} services.OpportunityResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /opportunities/{id} [put]
func (h *OpportunityHandler) UpdateOpportunity(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.UpdateOpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	opportunity, err := h.opportunityService.Update(c.Request.Context(), c.Param("id"), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, opportunity)
}

// DeleteOpportunity deletes an opportunity
// @Summary Delete opportunity
// @Tags opportunities
// @Param id path string true "Opportunity ID"
// @Success 204 "No Content"
// @Failure 403 {object} ErrorResponse
// @Router /opportunities/{id} [delete]
func (h *OpportunityHandler) DeleteOpportunity(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	if err := h.opportunityService.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "opportunity deleted", "opportunity_id", c.Param("id"), "user_id", userID)
	c.Status(http.StatusNoContent)
}

// ListOpportunities lists opportunities with filters
// @Summary List opportunities
// @Description Students see active listings only; administrators see all
// @Tags opportunities
// @Produce json
// @Param type query string false "Type filter"
// @Param status query string false "Status filter (administrators only)"
// @Param organization query string false "Organization substring"
// @Param location query string false "Location substring"
// @Success 200 {object} services.OpportunityListResponse
// @Router /opportunities [get]
func (h *OpportunityHandler) ListOpportunities(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	list, err := h.opportunityService.List(c.Request.Context(), parseOpportunityFilters(c), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// GetSavedOpportunities lists the caller's saved opportunities
// @Summary Saved opportunities
// @Tags opportunities
// @Produce json
// @Success 200 {object} services.OpportunityListResponse
// @Router /opportunities/saved [get]
func (h *OpportunityHandler) GetSavedOpportunities(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	list, err := h.opportunityService.GetSaved(c.Request.Context(), userID, parseOpportunityFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// ToggleSave toggles the opportunity on the caller's saved list
// @Summary Toggle save
// @Description Adds the opportunity to the saved list, or removes it when present
// @Tags opportunities
// @Produce json
// @Param id path string true "Opportunity ID"
// @Success 200 {object} map[string]bool
// @Failure 404 {object} ErrorResponse
// @Router /opportunities/{id}/save [post]
func (h *OpportunityHandler) ToggleSave(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	saved, err := h.opportunityService.ToggleSave(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"saved": saved})
}

// DuplicateOpportunity clones an opportunity as a fresh draft
// @Summary Duplicate opportunity
// @Tags opportunities
// @Produce json
// @Param id path string true "Opportunity ID"
// @Success 201 {object} services.OpportunityResponse
// @Failure 403 {object} ErrorResponse
// @Router /opportunities/{id}/duplicate [post]
func (h *OpportunityHandler) DuplicateOpportunity(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	opportunity, err := h.opportunityService.Duplicate(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "opportunity duplicated", "source_id", c.Param("id"), "opportunity_id", opportunity.ID)
	c.JSON(http.StatusCreated, opportunity)
}

// GetOpportunityStats returns aggregate opportunity statistics
// @Summary Opportunity statistics
// @Tags opportunities
// @Produce json
// @Success 200 {object} repositories.OpportunityStats
// @Failure 403 {object} ErrorResponse
// @Router /opportunities/stats [get]
func (h *OpportunityHandler) GetOpportunityStats(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	stats, err := h.opportunityService.GetStats(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetOpportunityAnalytics returns per-type, per-status and trend analytics
// @Summary Opportunity analytics
// @Tags opportunities
// @Produce json
// @Param trend_days query int false "Trend window in days" default(30)
// @Success 200 {object} repositories.OpportunityAnalytics
// @Failure 403 {object} ErrorResponse
// @Router /opportunities/analytics [get]
func (h *OpportunityHandler) GetOpportunityAnalytics(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	analytics, err := h.opportunityService.GetAnalytics(c.Request.Context(), userID, parseIntQuery(c, "trend_days", 30))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, analytics)
}
