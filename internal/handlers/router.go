package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unilink-hq/placement-service/internal/models"
	"github.com/unilink-hq/placement-service/internal/services"
	"github.com/unilink-hq/placement-service/internal/utils"
	"github.com/unilink-hq/placement-service/internal/validator"
)

// HandlerManager wires every handler and owns route registration
type HandlerManager struct {
	authHandler         *AuthHandler
	userHandler         *UserHandler
	opportunityHandler  *OpportunityHandler
	applicationHandler  *ApplicationHandler
	notificationHandler *NotificationHandler
	dashboardHandler    *DashboardHandler

	authMiddleware *AuthMiddleware
	serviceManager services.ServiceManager
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		authHandler:         NewAuthHandler(serviceManager.Auth(), validator, logger),
		userHandler:         NewUserHandler(serviceManager.User(), validator, logger),
		opportunityHandler:  NewOpportunityHandler(serviceManager.Opportunity(), validator, logger),
		applicationHandler:  NewApplicationHandler(serviceManager.Application(), validator, logger),
		notificationHandler: NewNotificationHandler(serviceManager.Notification(), logger),
		dashboardHandler:    NewDashboardHandler(serviceManager.Dashboard(), logger),
		authMiddleware:      NewAuthMiddleware(serviceManager.Auth(), logger),
		serviceManager:      serviceManager,
	}
}

// SetupRoutes registers all API routes on the router
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.healthCheck)

	v1 := router.Group("/api/v1")

	// Public authentication routes
	auth := v1.Group("/auth")
	{
		auth.POST("/register", hm.authHandler.Register)
		auth.POST("/login", hm.authHandler.Login)
		auth.POST("/refresh", hm.authHandler.Refresh)
	}

	// Everything below requires a valid token
	authed := v1.Group("")
	authed.Use(hm.authMiddleware.RequireAuth())
	{
		authed.POST("/auth/change-password", hm.authHandler.ChangePassword)

		users := authed.Group("/users")
		{
			users.GET("/me", hm.userHandler.GetProfile)
			users.PATCH("/me", hm.userHandler.UpdateProfile)
			users.POST("/me/picture", hm.userHandler.UploadProfilePicture)

			admin := hm.authMiddleware.RequireRoleMiddleware(models.RoleAdministrator)
			users.GET("", admin, hm.userHandler.ListUsers)
			users.GET("/stats", admin, hm.userHandler.GetUserStats)
			users.GET("/:id", admin, hm.userHandler.GetUser)
		}

		opportunities := authed.Group("/opportunities")
		{
			opportunities.GET("", hm.opportunityHandler.ListOpportunities)
			opportunities.GET("/saved", hm.opportunityHandler.GetSavedOpportunities)
			opportunities.GET("/:id", hm.opportunityHandler.GetOpportunity)
			opportunities.POST("/:id/save", hm.opportunityHandler.ToggleSave)

			admin := hm.authMiddleware.RequireRoleMiddleware(models.RoleAdministrator)
			opportunities.POST("", admin, hm.opportunityHandler.CreateOpportunity)
			opportunities.PUT("/:id", admin, hm.opportunityHandler.UpdateOpportunity)
			opportunities.DELETE("/:id", admin, hm.opportunityHandler.DeleteOpportunity)
			opportunities.POST("/:id/duplicate", admin, hm.opportunityHandler.DuplicateOpportunity)
			opportunities.GET("/stats", admin, hm.opportunityHandler.GetOpportunityStats)
			opportunities.GET("/analytics", admin, hm.opportunityHandler.GetOpportunityAnalytics)
			opportunities.POST("/:id/applications/bulk-status", admin, hm.applicationHandler.BulkUpdateStatus)
		}

		applications := authed.Group("/applications")
		{
			applications.POST("", hm.applicationHandler.CreateApplication)
			applications.GET("", hm.applicationHandler.ListApplications)
			applications.GET("/stats", hm.applicationHandler.GetApplicationStats)
			applications.GET("/:id", hm.applicationHandler.GetApplication)
			applications.POST("/:id/withdraw", hm.applicationHandler.WithdrawApplication)
			applications.PUT("/:id/resume", hm.applicationHandler.UploadResume)

			admin := hm.authMiddleware.RequireRoleMiddleware(models.RoleAdministrator)
			applications.GET("/export", admin, hm.applicationHandler.ExportApplications)
			applications.PUT("/:id/status", admin, hm.applicationHandler.UpdateApplicationStatus)
			applications.POST("/:id/interview", admin, hm.applicationHandler.ScheduleInterview)
			applications.POST("/:id/feedback", admin, hm.applicationHandler.SubmitFeedback)
		}

		notifications := authed.Group("/notifications")
		{
			notifications.GET("", hm.notificationHandler.ListNotifications)
			notifications.GET("/unread-count", hm.notificationHandler.GetUnreadCount)
			notifications.POST("/read-all", hm.notificationHandler.MarkAllNotificationsRead)
			notifications.POST("/:id/read", hm.notificationHandler.MarkNotificationRead)
		}

		authed.GET("/dashboard", hm.dashboardHandler.GetDashboard)
	}
}

func (hm *HandlerManager) healthCheck(c *gin.Context) {
	if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
