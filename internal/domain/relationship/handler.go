package relationship

import (
	"net/http"
	"strconv"

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

// Block godoc
// @Summary Block a user from chatting with the caller
// @Tags Relationships
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body blockRequest true "User to block"
// @Router /relationships/block [post]
func (h *Handler) Block(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return
	}
	var req blockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	code, err := h.service.Block(c.Request.Context(), userID, req.UserID)
	if err != nil {
		response.Internal(c, err)
		return
	}
	if code != reason.OK {
		response.Reason(c, code)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"user_id": req.UserID})
}

func (h *Handler) Unblock(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return
	}
	targetID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil || targetID <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid user_id")
		return
	}

	code, err := h.service.Unblock(c.Request.Context(), userID, targetID)
	if err != nil {
		response.Internal(c, err)
		return
	}
	if code != reason.OK {
		response.Reason(c, code)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user_id": targetID})
}

func (h *Handler) ListBlocked(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return
	}
	list, err := h.service.ListBlocked(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}
