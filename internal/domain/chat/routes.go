package chat

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the chat endpoints. limit guards message sending.
func RegisterRoutes(protected *gin.RouterGroup, h *Handler, limit ...gin.HandlerFunc) {
	chats := protected.Group("/chats")
	{
		chats.GET("", h.ListChats)
		chats.POST("", h.CreateChat)
		chats.GET("/:id/messages", h.GetMessages)
		chats.POST("/:id/messages", append(limit, h.SendMessage)...)
		chats.POST("/:id/read", h.MarkRead)
	}
}

// RegisterWebSocket mounts the websocket outside the bearer-auth group; the
// handler authenticates with the token query parameter.
func RegisterWebSocket(r gin.IRoutes, ws *WSHandler) {
	r.GET("/ws/chat", ws.HandleWebSocket)
}
