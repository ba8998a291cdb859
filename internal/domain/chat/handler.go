package chat

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

// CreateChat godoc
// @Summary Start or get the chat with another user
// @Tags Chat
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body CreateChatRequest true "Peer and optional property"
// @Success 200 {object} Chat
// @Router /chats [post]
func (h *Handler) CreateChat(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return
	}

	var req CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	chat, code, err := h.service.GetOrCreateChat(c.Request.Context(), userID, req.PeerID, req.PropertyID)
	if err != nil {
		response.Internal(c, err)
		return
	}
	if code != reason.OK {
		response.Reason(c, code)
		return
	}
	response.Success(c, http.StatusOK, chat)
}

func (h *Handler) ListChats(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return
	}

	list, err := h.service.ListForUser(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}

// GetMessages godoc
// @Summary Chat history, oldest first
// @Tags Chat
// @Security BearerAuth
// @Produce json
// @Param id path int true "Chat ID"
// @Param limit query int false "Max messages (default 50)"
// @Param before query int false "Only messages with a smaller id"
// @Router /chats/{id}/messages [get]
func (h *Handler) GetMessages(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return
	}
	chatID, ok := pathID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	before, _ := strconv.ParseInt(c.DefaultQuery("before", "0"), 10, 64)

	list, code, err := h.service.History(c.Request.Context(), chatID, userID, limit, before)
	if err != nil {
		response.Internal(c, err)
		return
	}
	if code != reason.OK {
		response.Reason(c, code)
		return
	}
	response.Success(c, http.StatusOK, list)
}

func (h *Handler) SendMessage(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return
	}
	chatID, ok := pathID(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	msg, code, err := h.service.SendMessage(c.Request.Context(), chatID, userID, req.Body)
	if err != nil {
		response.Internal(c, err)
		return
	}
	if code != reason.OK {
		response.Reason(c, code)
		return
	}
	response.Success(c, http.StatusCreated, msg)
}

func (h *Handler) MarkRead(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return
	}
	chatID, ok := pathID(c)
	if !ok {
		return
	}

	n, code, err := h.service.MarkRead(c.Request.Context(), chatID, userID)
	if err != nil {
		response.Internal(c, err)
		return
	}
	if code != reason.OK {
		response.Reason(c, code)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"marked": n})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid id")
		return 0, false
	}
	return id, true
}
