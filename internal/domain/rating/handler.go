package rating

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

// AddRating godoc
// @Summary Rate another user once
// @Tags Ratings
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body CreateRequest true "Target, score 1-5 and comment"
// @Success 201 {object} Rating
// @Router /ratings [post]
func (h *Handler) AddRating(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	rt, code, err := h.service.AddRating(c.Request.Context(), req.TargetID, userID, req.Score, req.Comment)
	if err != nil {
		response.Internal(c, err)
		return
	}
	if code != reason.OK {
		response.Reason(c, code)
		return
	}
	response.Success(c, http.StatusCreated, rt)
}

func (h *Handler) GetStats(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	stats, code, err := h.service.GetStats(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, err)
		return
	}
	if code != reason.OK {
		response.Reason(c, code)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

func (h *Handler) ListForUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	list, code, err := h.service.ListForUser(c.Request.Context(), id, limit, offset)
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

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid id")
		return 0, false
	}
	return id, true
}
