package chat

// ClientMessage is what a websocket client sends.
type ClientMessage struct {
	Type     string `json:"type"`
	ChatID   int64  `json:"chat_id,omitempty"`
	Body     string `json:"body,omitempty"`
	IsTyping bool   `json:"is_typing,omitempty"`
}

// ServerEvent is pushed to websocket clients.
type ServerEvent struct {
	Type         string   `json:"type"`
	ChatID       int64    `json:"chat_id,omitempty"`
	Message      *Message `json:"message,omitempty"`
	UserID       int64    `json:"user_id,omitempty"`
	IsTyping     bool     `json:"is_typing,omitempty"`
	ErrorCode    string   `json:"code,omitempty"`
	ErrorMessage string   `json:"error,omitempty"`
}

const (
	EventNewMessage = "new_message"
	EventTyping     = "typing"
	EventRead       = "read"
	EventPong       = "pong"
	EventError      = "error"
)

func newMessageEvent(m *Message) *ServerEvent {
	return &ServerEvent{Type: EventNewMessage, ChatID: m.ChatID, Message: m}
}

func newTypingEvent(chatID, userID int64, typing bool) *ServerEvent {
	return &ServerEvent{Type: EventTyping, ChatID: chatID, UserID: userID, IsTyping: typing}
}

func newReadEvent(chatID, userID int64) *ServerEvent {
	return &ServerEvent{Type: EventRead, ChatID: chatID, UserID: userID}
}

func newErrorEvent(code, message string) *ServerEvent {
	return &ServerEvent{Type: EventError, ErrorCode: code, ErrorMessage: message}
}
