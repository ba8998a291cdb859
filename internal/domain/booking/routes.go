package booking

import "github.com/gin-gonic/gin"

func RegisterRoutes(protected *gin.RouterGroup, h *Handler) {
	protected.POST("/bookings", h.CreateBooking)
	protected.GET("/bookings/:id", h.GetBooking)
	protected.PATCH("/bookings/:id/cancel", h.CancelBooking)

	protected.GET("/properties/:id/availability", h.GetAvailability)
	protected.GET("/users/me/bookings", h.GetMyBookings)
}

// RegisterAdminRoutes expects a group already guarded by AdminOnly.
func RegisterAdminRoutes(admin *gin.RouterGroup, h *Handler) {
	admin.PATCH("/bookings/:id/confirm", h.ConfirmBooking)
	admin.GET("/properties/:id/bookings", h.GetPropertyBookings)
}
