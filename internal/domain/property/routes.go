package property

import "github.com/gin-gonic/gin"

func RegisterRoutes(protected *gin.RouterGroup, h *Handler) {
	props := protected.Group("/properties")
	{
		props.GET("", h.Search)
		props.POST("", h.Create)
		props.GET("/mine", h.ListMine)
		props.GET("/:id", h.Get)
		props.DELETE("/:id", h.Archive)
		props.POST("/:id/favorite", h.AddFavorite)
		props.DELETE("/:id/favorite", h.RemoveFavorite)
	}

	protected.GET("/favorites", h.ListFavorites)
}

func RegisterAdminRoutes(admin *gin.RouterGroup, h *Handler) {
	admin.POST("/properties/:id/approve", h.Approve)
}
