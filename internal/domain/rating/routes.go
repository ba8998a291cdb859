package rating

import "github.com/gin-gonic/gin"

func RegisterRoutes(protected *gin.RouterGroup, h *Handler, limit ...gin.HandlerFunc) {
	protected.POST("/ratings", append(limit, h.AddRating)...)
	protected.GET("/users/:id/ratings", h.ListForUser)
	protected.GET("/users/:id/rating-stats", h.GetStats)
}
