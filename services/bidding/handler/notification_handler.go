//go:generate mockgen -package=handler -destination=mock_notification_handler.go -source=notification_handler.go

package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"bid-ledger/internal/biddingerrors"
	model "bid-ledger/internal/models"
	"bid-ledger/services/bidding/helpers"
	"bid-ledger/utils"

	"github.com/gin-gonic/gin"
)

type NotificationFeedInterface interface {
	Recent(ctx context.Context, limit int) ([]model.Notification, error)
	DefaultLimit() int
}

type NotificationHandler struct {
	feed NotificationFeedInterface
}

func NewNotificationHandler(feed NotificationFeedInterface) *NotificationHandler {
	return &NotificationHandler{feed: feed}
}

// RecentNotificationsHandler handles GET /notifications/recent?limit=N.
// N defaults to and is capped at the feed's default limit.
func (h *NotificationHandler) RecentNotificationsHandler(c *gin.Context) {
	limit := h.feed.DefaultLimit()
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			helpers.RespondError(c, "RecentNotificationsHandler",
				fmt.Errorf("%w - limit must be a positive integer", biddingerrors.ErrInvalidArgument),
				map[string]any{"limit": raw})
			return
		}
		limit = min(n, limit)
	}

	notifications, err := h.feed.Recent(c.Request.Context(), limit)
	if err != nil {
		helpers.RespondError(c, "RecentNotificationsHandler", err, nil)
		return
	}

	if notifications == nil {
		notifications = []model.Notification{}
	}

	utils.JSONResponse(c, http.StatusOK, notifications, "notifications retrieved successfully")
	helpers.LogSuccess("RecentNotificationsHandler", "notifications retrieved successfully", map[string]any{
		"count": len(notifications),
	})
}
