package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"estatebot/internal/domain/reason"
	"estatebot/internal/middleware"
	"estatebot/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type ensureRequest struct {
	Username string `json:"username" binding:"omitempty,max=64"`
	FullName string `json:"full_name" binding:"omitempty,max=200"`
	Phone    string `json:"phone" binding:"omitempty,max=32"`
}

// meResponse includes the caller's own phone, which User hides.
type meResponse struct {
	*User
	Phone string `json:"phone,omitempty"`
}

// Ensure registers the caller on first contact and refreshes the profile.
func (h *Handler) Ensure(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return
	}

	var req ensureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	u, err := h.service.Ensure(c.Request.Context(), Profile{
		ID:       userID,
		Username: req.Username,
		FullName: req.FullName,
		Phone:    req.Phone,
	})
	if err != nil {
		response.Internal(c, err)
		return
	}
	response.Success(c, http.StatusOK, meResponse{User: u, Phone: u.Phone})
}

func (h *Handler) GetMe(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return
	}

	u, err := h.service.Get(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, err)
		return
	}
	if u == nil {
		response.Reason(c, reason.UserNotFound)
		return
	}
	response.Success(c, http.StatusOK, meResponse{User: u, Phone: u.Phone})
}
