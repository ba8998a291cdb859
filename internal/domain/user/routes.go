package user

import "github.com/gin-gonic/gin"

func RegisterRoutes(protected *gin.RouterGroup, h *Handler) {
	protected.POST("/users/me", h.Ensure)
	protected.GET("/users/me", h.GetMe)
}
