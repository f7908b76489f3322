package comment

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

type PostCommentRequest struct {
	Content  string  `json:"content" binding:"required,min=1,max=4000"`
	ParentID *uint64 `json:"parent_id"`
}

func (h *Handler) Post(c *gin.Context) {
	promptID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(err)
		return
	}

	var req PostCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	userID, _ := c.Get("user_id")
	userName, _ := c.Get("user_name")

	result, err := h.service.Post(
		c.Request.Context(),
		promptID,
		userID.(string),
		userName.(string),
		req.Content,
		req.ParentID,
	)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *Handler) List(c *gin.Context) {
	promptID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(err)
		return
	}

	comments, err := h.service.List(c.Request.Context(), promptID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": comments})
}

func (h *Handler) Resolve(c *gin.Context) {
	promptID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(err)
		return
	}

	commentID, err := strconv.ParseUint(c.Param("commentId"), 10, 64)
	if err != nil {
		c.Error(err)
		return
	}

	userID, _ := c.Get("user_id")
	userName, _ := c.Get("user_name")

	ok, err := h.service.Resolve(
		c.Request.Context(),
		commentID,
		promptID,
		userID.(string),
		userName.(string),
	)
	if err != nil {
		c.Error(err)
		return
	}
	if !ok {
		c.Error(errors.NotFound("Comment not found", nil))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "comment resolved"})
}
