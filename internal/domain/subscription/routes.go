package subscription

import "github.com/gin-gonic/gin"

func RegisterRoutes(protected *gin.RouterGroup, h *Handler) {
	sub := protected.Group("/subscription")
	{
		sub.GET("", h.GetMySubscription)
		sub.GET("/history", h.GetHistory)
		sub.GET("/can-publish", h.CanPublish)
		sub.POST("/free-period", h.GrantFreePeriod)
	}

	me := protected.Group("/users/me/role")
	{
		me.GET("/can-change", h.CanChangeRole)
		me.PUT("", h.SelectRole)
	}
}

// RegisterAdminRoutes expects a group already guarded by AdminOnly.
func RegisterAdminRoutes(admin *gin.RouterGroup, h *Handler) {
	admin.POST("/subscriptions", h.ActivatePaid)
	admin.GET("/subscriptions/expiring", h.ListExpiring)
}
