package version

import (
	"net/http"
	"strconv"

	"prompt-sharing-service/internal/errors"
	"prompt-sharing-service/internal/utils"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type CommitRequest struct {
	Title         string `json:"title" binding:"required,min=1,max=255"`
	Content       string `json:"content" binding:"required"`
	ChangeSummary string `json:"change_summary" binding:"max=500"`
}

func (h *Handler) Commit(c *gin.Context) {
	promptID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(err)
		return
	}

	var req CommitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	userID, _ := c.Get("user_id")
	userName, _ := c.Get("user_name")

	v, err := h.service.Commit(
		c.Request.Context(),
		promptID,
		userID.(string),
		userName.(string),
		CommitInput{
			Title:         req.Title,
			Content:       req.Content,
			ChangeSummary: req.ChangeSummary,
		},
	)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, v)
}

func (h *Handler) History(c *gin.Context) {
	promptID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(err)
		return
	}

	page, pageSize := utils.GetPaginationParams(c)

	result, err := h.service.History(c.Request.Context(), promptID, page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) Current(c *gin.Context) {
	promptID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(err)
		return
	}

	v, err := h.service.Current(c.Request.Context(), promptID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, v)
}
