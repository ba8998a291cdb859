package subscription

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"estatebot/internal/domain/reason"
	"estatebot/internal/domain/user"
	"estatebot/internal/middleware"
	"estatebot/internal/pkg/response"
)

// Handler exposes the eligibility evaluator to the chat layer.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type roleRequest struct {
	Role user.Role `json:"role" binding:"required"`
}

// GetMySubscription godoc
// @Summary Current subscription interval and days left
// @Tags Subscriptions
// @Security BearerAuth
// @Produce json
// @Success 200 {object} Info
// @Router /subscription [get]
func (h *Handler) GetMySubscription(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return
	}

	info, code, err := h.service.Info(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, err)
		return
	}
	if code != reason.OK {
		response.Reason(c, code)
		return
	}
	response.Success(c, http.StatusOK, info)
}

func (h *Handler) GetHistory(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return
	}

	list, err := h.service.History(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}

// CanPublish godoc
// @Summary Whether the caller may publish a listing right now
// @Tags Subscriptions
// @Security BearerAuth
// @Produce json
// @Success 200 {object} Decision
// @Router /subscription/can-publish [get]
func (h *Handler) CanPublish(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return
	}

	d, err := h.service.CanPublish(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, err)
		return
	}
	response.Success(c, http.StatusOK, d)
}

func (h *Handler) CanChangeRole(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return
	}

	d, err := h.service.CanChangeRole(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, err)
		return
	}
	response.Success(c, http.StatusOK, d)
}

// SelectRole godoc
// @Summary Pick a marketplace role; grants the role's free period
// @Tags Subscriptions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body roleRequest true "Role"
// @Success 200 {object} RoleSelection
// @Router /users/me/role [put]
func (h *Handler) SelectRole(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return
	}

	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	sel, code, err := h.service.SelectRole(c.Request.Context(), userID, req.Role)
	if err != nil {
		response.Internal(c, err)
		return
	}
	if code != reason.OK {
		response.Reason(c, code)
		return
	}
	response.Success(c, http.StatusOK, sel)
}

func (h *Handler) GrantFreePeriod(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return
	}

	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	iv, code, err := h.service.GrantFreePeriod(c.Request.Context(), userID, req.Role)
	if err != nil {
		response.Internal(c, err)
		return
	}
	if code != reason.OK {
		response.Reason(c, code)
		return
	}
	response.Success(c, http.StatusCreated, iv)
}

// ActivatePaid godoc
// @Summary Activate a paid subscription (admin)
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body ActivateRequest true "User, role and months"
// @Success 201 {object} Interval
// @Router /admin/subscriptions [post]
func (h *Handler) ActivatePaid(c *gin.Context) {
	adminID, ok := middleware.UserID(c)
	if !ok {
		return
	}

	var req ActivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	req.ApprovedBy = adminID

	iv, code, err := h.service.ActivatePaid(c.Request.Context(), req)
	if err != nil {
		response.Internal(c, err)
		return
	}
	if code != reason.OK {
		response.Reason(c, code)
		return
	}
	response.Success(c, http.StatusCreated, iv)
}

func (h *Handler) ListExpiring(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil || days < 0 || days > 365 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "days must be between 0 and 365")
		return
	}

	list, err := h.service.ExpiringIn(c.Request.Context(), days)
	if err != nil {
		response.Internal(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}
