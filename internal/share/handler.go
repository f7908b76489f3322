package share

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

type IssueRequest struct {
	Permission    string `json:"permission" binding:"required,oneof=read write admin"`
	ExpiresInDays *int   `json:"expires_in_days"`
	MaxUses       *int   `json:"max_uses"`
	Description   string `json:"description" binding:"max=500"`
}

func (h *Handler) Issue(c *gin.Context) {
	promptID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(err)
		return
	}

	var req IssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	userID, _ := c.Get("user_id")
	userName, _ := c.Get("user_name")

	link, err := h.service.Issue(
		c.Request.Context(),
		promptID,
		userID.(string),
		userName.(string),
		IssueInput{
			Permission:    req.Permission,
			ExpiresInDays: req.ExpiresInDays,
			MaxUses:       req.MaxUses,
			Description:   req.Description,
		},
	)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, link)
}

func (h *Handler) Resolve(c *gin.Context) {
	link, err := h.service.Resolve(c.Request.Context(), c.Param("token"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, link)
}

func (h *Handler) Consume(c *gin.Context) {
	userID, _ := c.Get("user_id")

	result, err := h.service.Consume(c.Request.Context(), c.Param("token"), userID.(string))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) Revoke(c *gin.Context) {
	userID, _ := c.Get("user_id")
	userName, _ := c.Get("user_name")

	ok, err := h.service.Revoke(
		c.Request.Context(),
		c.Param("token"),
		userID.(string),
		userName.(string),
	)
	if err != nil {
		c.Error(err)
		return
	}
	if !ok {
		// same response whether the token is missing or owned by someone
		// else, so probing reveals nothing
		c.Error(errors.NotFound("Share link not found", nil))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "share link revoked"})
}

func (h *Handler) ListMine(c *gin.Context) {
	userID, _ := c.Get("user_id")

	views, err := h.service.ListByCreator(c.Request.Context(), userID.(string))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": views})
}
