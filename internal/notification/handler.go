package notification

import (
	"net/http"
	"strconv"

	"prompt-sharing-service/internal/errors"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Inbox(c *gin.Context) {
	userID, _ := c.Get("user_id")
	unreadOnly := c.Query("unread") == "true"

	notifications, err := h.service.Inbox(c.Request.Context(), userID.(string), unreadOnly)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": notifications})
}

func (h *Handler) MarkRead(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(err)
		return
	}

	userID, _ := c.Get("user_id")

	ok, err := h.service.MarkRead(c.Request.Context(), id, userID.(string))
	if err != nil {
		c.Error(err)
		return
	}
	if !ok {
		c.Error(errors.NotFound("Notification not found", nil))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "notification marked as read"})
}
