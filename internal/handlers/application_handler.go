package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unilink-hq/placement-service/internal/services"
	"github.com/unilink-hq/placement-service/internal/utils"
	"github.com/unilink-hq/placement-service/internal/validator"
)

type ApplicationHandler struct {
	BaseHandler
	applicationService services.ApplicationService
	validator          *validator.Validator
}

func NewApplicationHandler(
	applicationService services.ApplicationService,
	validator *validator.Validator,
	logger utils.Logger,
) *ApplicationHandler {
	return &ApplicationHandler{
		BaseHandler:        NewBaseHandler(logger),
		applicationService: applicationService,
		validator:          validator,
	}
}

// CreateApplication submits an application with its resume
// @Summary Submit application
// @Description Submits an application to an opportunity with a resume file
// @Tags applications
// @Accept multipart/form-data
// @Produce json
// @Param opportunity_id formData string true "Opportunity ID"
// @Param cover_letter formData string true "Cover letter"
// @Param resume formData file true "Resume file (PDF or Word, max 5MB)"
// @Success 201 {object} services.ApplicationResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /applications [post]
func (h *ApplicationHandler) CreateApplication(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	req := services.CreateApplicationRequest{
		OpportunityID: c.PostForm("opportunity_id"),
		CoverLetter:   c.PostForm("cover_letter"),
	}

	fileHeader, err := c.FormFile("resume")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Resume file is required",
			Details: err.Error(),
		})
		return
	}

	resume, closeFile, err := openUpload(fileHeader)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Failed to read uploaded file",
			Details: err.Error(),
		})
		return
	}
	defer closeFile()

	application, err := h.applicationService.Create(c.Request.Context(), &req, resume, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "application submitted",
		"application_id", application.ID,
		"opportunity_id", req.OpportunityID,
		"user_id", userID)
	c.JSON(http.StatusCreated, application)
}

// GetApplication retrieves an application by ID
// @Summary Get application
// @Tags applications
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} services.ApplicationResponse
// @Failure 404 {object} ErrorResponse
// @Router /applications/{id} [get]
func (h *ApplicationHandler) GetApplication(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	application, err := h.applicationService.GetByID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, application)
}

// ListApplications lists applications visible to the caller
// @Summary List applications
// @Description Students see their own applications; administrators see all
// @Tags applications
// @Produce json
// @Param status query string false "Status filter"
// @Param opportunity_id query string false "Opportunity filter"
// @Success 200 {object} services.ApplicationListResponse
// @Router /applications [get]
func (h *ApplicationHandler) ListApplications(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	list, err := h.applicationService.List(c.Request.Context(), parseApplicationFilters(c), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// UpdateApplicationStatus changes an application's status
// @Summary Update application status
// @Tags applications
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param request body services.UpdateApplicationStatusRequest true "New status"
// @Success 200 {object} services.ApplicationResponse
// @Failure 403 {object} ErrorResponse
// @Router /applications/{id}/status [put]
func (h *ApplicationHandler) UpdateApplicationStatus(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.UpdateApplicationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	application, err := h.applicationService.UpdateStatus(c.Request.Context(), c.Param("id"), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "application status updated",
		"application_id", c.Param("id"),
		"status", application.Status)
	c.JSON(http.StatusOK, application)
}

// ScheduleInterview schedules an interview for an application
// @Summary Schedule interview
// @Description Schedules an interview and moves the application to shortlisted
// @Tags applications
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param request body services.ScheduleInterviewRequest true "Interview details"
// @Success 200 {object} services.ApplicationResponse
// @Failure 403 {object} ErrorResponse
// @Router /applications/{id}/interview [post]
func (h *ApplicationHandler) ScheduleInterview(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.ScheduleInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	application, err := h.applicationService.ScheduleInterview(c.Request.Context(), c.Param("id"), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "interview scheduled",
		"application_id", c.Param("id"),
		"interview_date", req.InterviewDate)
	c.JSON(http.StatusOK, application)
}

// SubmitFeedback records feedback and a final decision
// @Summary Submit feedback
// @Tags applications
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param request body services.SubmitFeedbackRequest true "Feedback and decision"
// @Success 200 {object} services.ApplicationResponse
// @Failure 403 {object} ErrorResponse
// @Router /applications/{id}/feedback [post]
func (h *ApplicationHandler) SubmitFeedback(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	application, err := h.applicationService.SubmitFeedback(c.Request.Context(), c.Param("id"), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, application)
}

// BulkUpdateStatus updates the status of several applications at once
// @Summary Bulk status update
// @Description Updates every listed application of one opportunity to the same status
// @Tags applications
// @Accept json
// @Produce json
// @Param id path string true "Opportunity ID"
// @Param request body services.BulkStatusUpdateRequest true "Application IDs and status"
// @Success 200 {object} services.BulkStatusUpdateResponse
// @Failure 403 {object} ErrorResponse
// @Router /opportunities/{id}/applications/bulk-status [post]
func (h *ApplicationHandler) BulkUpdateStatus(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.BulkStatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	result, err := h.applicationService.BulkUpdateStatus(c.Request.Context(), c.Param("id"), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "applications bulk updated",
		"opportunity_id", c.Param("id"),
		"updated", result.Updated,
		"status", req.Status)
	c.JSON(http.StatusOK, result)
}

// WithdrawApplication withdraws the caller's own application
// @Summary Withdraw application
// @Tags applications
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} services.ApplicationResponse
// @Failure 403 {object} ErrorResponse
// @Router /applications/{id}/withdraw [post]
func (h *ApplicationHandler) WithdrawApplication(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	application, err := h.applicationService.Withdraw(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, application)
}

// UploadResume replaces the resume on an application
// @Summary Replace resume
// @Tags applications
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Application ID"
// @Param resume formData file true "Resume file (PDF or Word, max 10MB)"
// @Success 200 {object} services.ApplicationResponse
// @Failure 400 {object} ErrorResponse
// @Router /applications/{id}/resume [put]
func (h *ApplicationHandler) UploadResume(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("resume")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Resume file is required",
			Details: err.Error(),
		})
		return
	}

	resume, closeFile, err := openUpload(fileHeader)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Failed to read uploaded file",
			Details: err.Error(),
		})
		return
	}
	defer closeFile()

	application, err := h.applicationService.UploadResume(c.Request.Context(), c.Param("id"), resume, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "resume replaced", "application_id", c.Param("id"), "size", resume.Size)
	c.JSON(http.StatusOK, application)
}

// GetApplicationStats returns application counts by status
// @Summary Application statistics
// @Tags applications
// @Produce json
// @Success 200 {object} repositories.ApplicationStats
// @Router /applications/stats [get]
func (h *ApplicationHandler) GetApplicationStats(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	stats, err := h.applicationService.GetStats(c.Request.Context(), parseApplicationFilters(c), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ExportApplications exports applications to a spreadsheet
// @Summary Export applications
// @Description Generates an Excel export of the filtered applications
// @Tags applications
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Failure 403 {object} ErrorResponse
// @Router /applications/export [get]
func (h *ApplicationHandler) ExportApplications(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	result, err := h.applicationService.Export(c.Request.Context(), parseApplicationFilters(c), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
