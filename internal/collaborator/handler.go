package collaborator

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

type AddCollaboratorRequest struct {
	UserID     string `json:"user_id" binding:"required"`
	UserName   string `json:"user_name" binding:"required"`
	Email      string `json:"email" binding:"omitempty,email"`
	Permission string `json:"permission" binding:"required,oneof=read write admin"`
}

func (h *Handler) Add(c *gin.Context) {
	promptID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(err)
		return
	}

	var req AddCollaboratorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	requesterID, _ := c.Get("user_id")
	requesterName, _ := c.Get("user_name")

	result, err := h.service.AddOrUpdate(
		c.Request.Context(),
		promptID,
		requesterID.(string),
		requesterName.(string),
		AddInput{
			UserID:     req.UserID,
			UserName:   req.UserName,
			Email:      req.Email,
			Permission: req.Permission,
		},
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

	result, err := h.service.List(c.Request.Context(), promptID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (h *Handler) Remove(c *gin.Context) {
	promptID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(err)
		return
	}

	targetUserID := c.Param("userId")
	requesterID, _ := c.Get("user_id")
	requesterName, _ := c.Get("user_name")

	err = h.service.Remove(
		c.Request.Context(),
		promptID,
		targetUserID,
		requesterID.(string),
		requesterName.(string),
	)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "collaborator removed",
	})
}
