package contact

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the user-facing endpoints. limit guards request
// creation.
func RegisterRoutes(protected *gin.RouterGroup, h *Handler, limit ...gin.HandlerFunc) {
	protected.GET("/users/:id/contact", h.GetContact)

	requests := protected.Group("/contact-requests")
	{
		requests.GET("", h.ListMine)
		requests.POST("", append(limit, h.RequestContact)...)
	}
}

func RegisterAdminRoutes(admin *gin.RouterGroup, h *Handler) {
	requests := admin.Group("/contact-requests")
	{
		requests.GET("", h.ListPending)
		requests.POST("/:id/approve", h.Approve)
		requests.POST("/:id/reject", h.Reject)
	}
}
