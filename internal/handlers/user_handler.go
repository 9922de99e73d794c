package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unilink-hq/placement-service/internal/models"
	"github.com/unilink-hq/placement-service/internal/repositories"
	"github.com/unilink-hq/placement-service/internal/services"
	"github.com/unilink-hq/placement-service/internal/utils"
	"github.com/unilink-hq/placement-service/internal/validator"
)

type UserHandler struct {
	BaseHandler
	userService services.UserService
	validator   *validator.Validator
}

func NewUserHandler(
	userService services.UserService,
	validator *validator.Validator,
	logger utils.Logger,
) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		userService: userService,
		validator:   validator,
	}
}

// GetProfile returns the authenticated user's profile
// @Summary Get own profile
// @Tags users
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateProfile updates the authenticated user's profile fields
// @Summary Update own profile
// @Tags users
// @Accept json
// @Produce json
// @Param request body services.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} models.User
// @Failure 400 {object} ErrorResponse
// @Router /users/me [patch]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UploadProfilePicture replaces the authenticated user's profile picture
// @Summary Upload profile picture
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Param picture formData file true "Image file"
// @Success 200 {object} models.User
// @Failure 400 {object} ErrorResponse
// @Router /users/me/picture [post]
func (h *UserHandler) UploadProfilePicture(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("picture")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Picture file is required",
			Details: err.Error(),
		})
		return
	}

	upload, closeFile, err := openUpload(fileHeader)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Failed to read uploaded file",
			Details: err.Error(),
		})
		return
	}
	defer closeFile()

	user, err := h.userService.UploadProfilePicture(
		c.Request.Context(), userID, upload.Filename, upload.ContentType, upload.Size, upload.Content)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "profile picture uploaded", "user_id", userID, "size", upload.Size)
	c.JSON(http.StatusOK, user)
}

// ListUsers lists users with optional role and search filters
// @Summary List users
// @Description Admin-only user listing
// @Tags users
// @Produce json
// @Param role query string false "Role filter"
// @Param query query string false "Name or email search"
// @Success 200 {object} map[string]any
// @Failure 403 {object} ErrorResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	filters := repositories.UserFilters{
		Query:  c.Query("query"),
		Limit:  parseIntQuery(c, "limit", 0),
		Offset: parseIntQuery(c, "offset", 0),
	}
	if role := c.Query("role"); role != "" {
		r := models.UserRole(role)
		filters.Role = &r
	}

	users, total, err := h.userService.List(c.Request.Context(), userID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"total": total,
	})
}

// GetUser returns a single user by ID
// @Summary Get user
// @Description Admin-only user lookup
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// GetUserStats returns platform-wide user statistics
// @Summary User statistics
// @Tags users
// @Produce json
// @Success 200 {object} repositories.UserStats
// @Failure 403 {object} ErrorResponse
// @Router /users/stats [get]
func (h *UserHandler) GetUserStats(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	stats, err := h.userService.GetStats(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
