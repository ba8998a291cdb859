package property

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

type searchQuery struct {
	Type      Type    `form:"type"`
	District  string  `form:"district"`
	MinPrice  float64 `form:"min_price" binding:"gte=0"`
	MaxPrice  float64 `form:"max_price" binding:"gte=0"`
	Rooms     int     `form:"rooms" binding:"gte=0"`
	DailyOnly bool    `form:"daily"`
	Limit     int     `form:"limit" binding:"gte=0,lte=100"`
	Offset    int     `form:"offset" binding:"gte=0"`
}

// Create godoc
// @Summary Publish a listing
// @Tags Properties
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body CreateRequest true "Listing"
// @Success 201 {object} Property
// @Router /properties [post]
func (h *Handler) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	p, code, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		response.Internal(c, err)
		return
	}
	if code != reason.OK {
		response.Reason(c, code)
		return
	}
	response.Success(c, http.StatusCreated, p)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	p, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, err)
		return
	}
	if p == nil {
		response.Reason(c, reason.PropertyNotFound)
		return
	}
	response.Success(c, http.StatusOK, p)
}

// Search godoc
// @Summary Search active listings, newest first
// @Tags Properties
// @Security BearerAuth
// @Produce json
// @Router /properties [get]
func (h *Handler) Search(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	list, total, err := h.service.Search(c.Request.Context(), Filter{
		Type:      q.Type,
		District:  q.District,
		MinPrice:  q.MinPrice,
		MaxPrice:  q.MaxPrice,
		Rooms:     q.Rooms,
		DailyOnly: q.DailyOnly,
		Limit:     q.Limit,
		Offset:    q.Offset,
	})
	if err != nil {
		response.Internal(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"properties": list,
		"total":      total,
	})
}

func (h *Handler) ListMine(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return
	}

	list, err := h.service.ListByOwner(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}

func (h *Handler) Archive(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	code, err := h.service.Archive(c.Request.Context(), id, userID, middleware.IsAdmin(c))
	if err != nil {
		response.Internal(c, err)
		return
	}
	if code != reason.OK {
		response.Reason(c, code)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"archived": true})
}

func (h *Handler) Approve(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	code, err := h.service.Approve(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, err)
		return
	}
	if code != reason.OK {
		response.Reason(c, code)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": StatusActive})
}

func (h *Handler) AddFavorite(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	code, err := h.service.AddFavorite(c.Request.Context(), userID, id)
	if err != nil {
		response.Internal(c, err)
		return
	}
	if code != reason.OK {
		response.Reason(c, code)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"favorite": true})
}

func (h *Handler) RemoveFavorite(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	code, err := h.service.RemoveFavorite(c.Request.Context(), userID, id)
	if err != nil {
		response.Internal(c, err)
		return
	}
	if code != reason.OK {
		response.Reason(c, code)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"favorite": false})
}

func (h *Handler) ListFavorites(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return
	}

	list, err := h.service.ListFavorites(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid "+name)
		return 0, false
	}
	return id, true
}
