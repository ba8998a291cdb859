package contact

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

// GetContact godoc
// @Summary Contact details of a user, if the caller may see them
// @Tags Contacts
// @Security BearerAuth
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} Visibility
// @Router /users/{id}/contact [get]
func (h *Handler) GetContact(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return
	}
	ownerID, ok := pathID(c)
	if !ok {
		return
	}

	v, err := h.service.CanShowContact(c.Request.Context(), ownerID, userID)
	if err != nil {
		response.Internal(c, err)
		return
	}
	if v.Reason == reason.TargetNotFound {
		response.Reason(c, v.Reason)
		return
	}
	// a restricted contact is an answer, not an error
	response.Success(c, http.StatusOK, v)
}

// RequestContact godoc
// @Summary Ask the administrators for a user's contact
// @Tags Contacts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body CreateRequest true "Target and property"
// @Success 201 {object} Request
// @Router /contact-requests [post]
func (h *Handler) RequestContact(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	created, code, err := h.service.RequestContact(c.Request.Context(), userID, req.TargetID, req.PropertyID)
	if err != nil {
		response.Internal(c, err)
		return
	}
	if code != reason.OK {
		response.Reason(c, code)
		return
	}
	response.Success(c, http.StatusCreated, created)
}

func (h *Handler) ListMine(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return
	}

	list, err := h.service.ListMine(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}

func (h *Handler) ListPending(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	list, err := h.service.ListPending(c.Request.Context(), limit)
	if err != nil {
		response.Internal(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}

// Approve godoc
// @Summary Approve a contact request; returns the contact to forward
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param id path int true "Request ID"
// @Success 200 {object} Approval
// @Router /admin/contact-requests/{id}/approve [post]
func (h *Handler) Approve(c *gin.Context) {
	adminID, ok := middleware.UserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	a, code, err := h.service.Approve(c.Request.Context(), id, adminID)
	if err != nil {
		response.Internal(c, err)
		return
	}
	if code != reason.OK {
		response.Reason(c, code)
		return
	}
	response.Success(c, http.StatusOK, a)
}

func (h *Handler) Reject(c *gin.Context) {
	adminID, ok := middleware.UserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	req, code, err := h.service.Reject(c.Request.Context(), id, adminID)
	if err != nil {
		response.Internal(c, err)
		return
	}
	if code != reason.OK {
		response.Reason(c, code)
		return
	}
	response.Success(c, http.StatusOK, req)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid id")
		return 0, false
	}
	return id, true
}
