package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/soundguard/soundguard-go/internal/datastore"
	"github.com/soundguard/soundguard-go/internal/errors"
)

// NotificationResponse is the public view of a per-user notification.
type NotificationResponse struct {
	ID        uint      `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Priority  string    `json:"priority"`
	Read      bool      `json:"read"`
	Timestamp time.Time `json:"timestamp"`
}

func (c *Controller) initNotificationRoutes(group *echo.Group) {
	notifications := group.Group("/notifications")
	notifications.GET("", c.GetNotifications)
	notifications.GET("/unread-count", c.GetUnreadCount)
	notifications.PUT("/:id/read", c.MarkNotificationRead)
	notifications.PUT("/read-all", c.MarkAllNotificationsRead)
	notifications.DELETE("/:id", c.DeleteNotification)
}

// GetNotifications lists the authenticated user's notifications, newest
// first.
func (c *Controller) GetNotifications(ctx echo.Context) error {
	notifications, err := c.DS.GetUserNotifications(currentUserID(ctx))
	if err != nil {
		return c.HandleError(ctx, err, "알림 조회 실패", http.StatusInternalServerError)
	}

	responses := make([]NotificationResponse, 0, len(notifications))
	for i := range notifications {
		n := &notifications[i]
		responses = append(responses, NotificationResponse{
			ID:        n.ID,
			Type:      n.Type,
			Title:     n.Title,
			Message:   n.Message,
			Priority:  n.Priority,
			Read:      n.Read,
			Timestamp: n.CreatedAt,
		})
	}
	return ctx.JSON(http.StatusOK, responses)
}

// GetUnreadCount returns the authenticated user's unread notification count.
func (c *Controller) GetUnreadCount(ctx echo.Context) error {
	count, err := c.DS.CountUnreadNotifications(currentUserID(ctx))
	if err != nil {
		return c.HandleError(ctx, err, "알림 개수 조회 실패", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, map[string]int64{"count": count})
}

// MarkNotificationRead marks one of the user's notifications as read.
func (c *Controller) MarkNotificationRead(ctx echo.Context) error {
	id, err := notificationID(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "잘못된 알림 ID입니다"})
	}

	if err := c.DS.MarkNotificationRead(id, currentUserID(ctx)); err != nil {
		if errors.Is(err, datastore.ErrRecordNotFound) {
			return ctx.JSON(http.StatusNotFound, ErrorResponse{Error: "알림을 찾을 수 없습니다"})
		}
		return c.HandleError(ctx, err, "알림 읽음 처리 실패", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, map[string]bool{"success": true})
}

// MarkAllNotificationsRead marks every notification of the user as read.
func (c *Controller) MarkAllNotificationsRead(ctx echo.Context) error {
	if err := c.DS.MarkAllNotificationsRead(currentUserID(ctx)); err != nil {
		return c.HandleError(ctx, err, "알림 읽음 처리 실패", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, map[string]bool{"success": true})
}

// DeleteNotification removes one of the user's notifications.
func (c *Controller) DeleteNotification(ctx echo.Context) error {
	id, err := notificationID(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "잘못된 알림 ID입니다"})
	}

	if err := c.DS.DeleteNotification(id, currentUserID(ctx)); err != nil {
		switch {
		case errors.Is(err, datastore.ErrRecordNotFound):
			return ctx.JSON(http.StatusNotFound, ErrorResponse{Error: "알림을 찾을 수 없습니다"})
		case errors.Is(err, datastore.ErrNotOwner):
			return ctx.JSON(http.StatusForbidden, ErrorResponse{Error: "권한이 없습니다"})
		default:
			return c.HandleError(ctx, err, "알림 삭제 실패", http.StatusInternalServerError)
		}
	}
	return ctx.JSON(http.StatusOK, map[string]bool{"success": true})
}

func notificationID(ctx echo.Context) (uint, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	return uint(id), err
}
