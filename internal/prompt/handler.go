package prompt

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

type CreatePromptRequest struct {
	Title   string `json:"title" binding:"required,min=1,max=255"`
	Content string `json:"content"`
}

func (h *Handler) Create(c *gin.Context) {
	var form CreatePromptRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	userID, _ := c.Get("user_id")
	userName, _ := c.Get("user_name")

	p, err := h.service.CreatePrompt(
		c.Request.Context(),
		userID.(string),
		userName.(string),
		form.Title,
		form.Content,
	)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, p)
}

func (h *Handler) Show(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(err)
		return
	}

	p, err := h.service.GetPrompt(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, p)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(err)
		return
	}

	userID, _ := c.Get("user_id")

	if err := h.service.DeletePrompt(c.Request.Context(), id, userID.(string)); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
