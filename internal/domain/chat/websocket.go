package chat

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"estatebot/internal/domain/reason"
	"estatebot/internal/pkg/jwt"
	"estatebot/internal/pkg/response"
)

const wsOpTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// clients are the bot process and operator tools, not browsers
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WSHandler struct {
	hub     *Hub
	jwt     *jwt.Service
	service *Service
	log     logrus.FieldLogger
}

func NewWSHandler(hub *Hub, jwtService *jwt.Service, service *Service, log logrus.FieldLogger) *WSHandler {
	return &WSHandler{hub: hub, jwt: jwtService, service: service, log: log}
}

// HandleWebSocket upgrades GET /ws/chat?token=JWT. The token travels in the
// query because websocket clients cannot always set headers.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "token query parameter is required")
		return
	}
	claims, err := h.jwt.ValidateToken(token)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	userID := claims.UserID
	h.hub.Serve(conn, userID, func(msg ClientMessage) {
		h.dispatch(userID, msg)
	})
}

func (h *WSHandler) dispatch(userID int64, msg ClientMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), wsOpTimeout)
	defer cancel()

	var (
		code reason.Code
		err  error
	)
	switch msg.Type {
	case "message":
		_, code, err = h.service.SendMessage(ctx, msg.ChatID, userID, msg.Body)
	case "typing":
		code, err = h.service.Typing(ctx, msg.ChatID, userID, msg.IsTyping)
	case "read":
		_, code, err = h.service.MarkRead(ctx, msg.ChatID, userID)
	case "ping":
		h.hub.SendToUser(userID, &ServerEvent{Type: EventPong})
		return
	default:
		h.hub.SendToUser(userID, newErrorEvent("UNKNOWN_TYPE", "Unknown message type: "+msg.Type))
		return
	}

	if err != nil {
		h.log.WithError(err).WithFields(logrus.Fields{
			"user_id": userID,
			"chat_id": msg.ChatID,
			"type":    msg.Type,
		}).Error("websocket operation failed")
		h.hub.SendToUser(userID, newErrorEvent("INTERNAL_ERROR", "Internal server error"))
		return
	}
	if code != reason.OK {
		h.hub.SendToUser(userID, newErrorEvent(string(code), code.String()))
	}
}
