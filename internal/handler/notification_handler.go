package handler

import (
	"net/http"

	"storefront/internal/domain/model"

	"github.com/labstack/echo/v4"
)

// 直近の通知を読む約束（notify.Feed）
type NoticeReader interface {
	Recent() []model.Notice
}

// /notifications
type NotificationHandler struct {
	feed NoticeReader
}

// DI
func NewNotificationHandler(feed NoticeReader) *NotificationHandler {
	return &NotificationHandler{feed: feed}
}

type NotificationsResponse struct {
	Items []model.Notice `json:"items"`
}

func (h *NotificationHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/notifications", h.list)
}

func (h *NotificationHandler) list(c echo.Context) error {
	return c.JSON(http.StatusOK, NotificationsResponse{Items: h.feed.Recent()})
}
