package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/unilink-hq/placement-service/internal/models"
	"github.com/unilink-hq/placement-service/internal/repositories"
)

func parseIntQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func parseTimeQuery(c *gin.Context, name string) *time.Time {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	value, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}
	return &value
}

func parseOpportunityFilters(c *gin.Context) repositories.OpportunityFilters {
	filters := repositories.OpportunityFilters{
		Limit:     parseIntQuery(c, "limit", 0),
		Offset:    parseIntQuery(c, "offset", 0),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if v := c.Query("type"); v != "" {
		t := models.OpportunityType(v)
		filters.Type = &t
	}
	if v := c.Query("status"); v != "" {
		s := models.OpportunityStatus(v)
		filters.Status = &s
	}
	if v := c.Query("organization"); v != "" {
		filters.Organization = &v
	}
	if v := c.Query("location"); v != "" {
		filters.Location = &v
	}
	filters.DeadlineAfter = parseTimeQuery(c, "deadline_after")
	return filters
}

func parseApplicationFilters(c *gin.Context) repositories.ApplicationFilters {
	filters := repositories.ApplicationFilters{
		Limit:     parseIntQuery(c, "limit", 0),
		Offset:    parseIntQuery(c, "offset", 0),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if v := c.Query("status"); v != "" {
		s := models.ApplicationStatus(v)
		filters.Status = &s
	}
	if v := c.Query("opportunity_id"); v != "" {
		filters.OpportunityID = &v
	}
	filters.AppliedAfter = parseTimeQuery(c, "applied_after")
	return filters
}

func parseNotificationFilters(c *gin.Context) repositories.NotificationFilters {
	filters := repositories.NotificationFilters{
		Limit:  parseIntQuery(c, "limit", 0),
		Offset: parseIntQuery(c, "offset", 0),
	}
	if v := c.Query("read"); v != "" {
		read, err := strconv.ParseBool(v)
		if err == nil {
			filters.Read = &read
		}
	}
	if v := c.Query("type"); v != "" {
		t := models.NotificationType(v)
		filters.Type = &t
	}
	return filters
}
