package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/agribalance/internal/notify"
)

// Feed is the read side of the notification bus.
type Feed interface {
	Active() []notify.Notification
	Subscribe() (<-chan []notify.Notification, func())
}

// NotificationHandler exposes active notifications.
type NotificationHandler struct {
	feed Feed
}

func NewNotificationHandler(feed Feed) *NotificationHandler {
	return &NotificationHandler{feed: feed}
}

func (h *NotificationHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.feed.Active())
}

// Stream pushes a snapshot of the active notifications as a server-sent
// event after every change until the client disconnects.
func (h *NotificationHandler) Stream(c *gin.Context) {
	ch, unsubscribe := h.feed.Subscribe()
	defer unsubscribe()

	done := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-done:
			return false
		case snapshot, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("notifications", snapshot)
			return true
		}
	})
}
