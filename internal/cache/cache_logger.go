package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateOpportunityCache invalidates all opportunity-related caches
func InvalidateOpportunityCache(ctx context.Context, cm *CacheManager, opportunityID, creatorID string) {
	SafeDelete(ctx, cm.Opportunity,
		fmt.Sprintf("id:%s", opportunityID),
		fmt.Sprintf("details:%s", opportunityID))

	SafeInvalidatePattern(ctx, cm.Opportunity, fmt.Sprintf("creator:%s:*", creatorID))
	SafeInvalidatePattern(ctx, cm.Opportunity, "list:*")
	SafeInvalidatePattern(ctx, cm.Stats, "opportunity:*")
}

// InvalidateApplicationCache invalidates all application-related caches
func InvalidateApplicationCache(ctx context.Context, cm *CacheManager, applicationID, userID, opportunityID string) {
	SafeDelete(ctx, cm.Application, fmt.Sprintf("id:%s", applicationID))
	SafeInvalidatePattern(ctx, cm.Application, fmt.Sprintf("user:%s:*", userID))
	SafeInvalidatePattern(ctx, cm.Application, fmt.Sprintf("opportunity:%s:*", opportunityID))
	SafeInvalidatePattern(ctx, cm.Stats, "application:*")
}

// InvalidateUserCache invalidates caches for a single user
func InvalidateUserCache(ctx context.Context, cm *CacheManager, userID string) {
	SafeDelete(ctx, cm.User, fmt.Sprintf("id:%s", userID))
	SafeInvalidatePattern(ctx, cm.Stats, "user:*")
}
