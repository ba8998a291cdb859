package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"estatebot/internal/database"
	"estatebot/internal/domain/notification"
	"estatebot/internal/domain/reason"
	"estatebot/internal/domain/user"
	"estatebot/internal/pkg/clock"
)

const (
	defaultHistory = 50
	maxHistory     = 200
	previewLen     = 100
)

var ErrChatVanished = errors.New("chat: row missing after unique violation")

// Delivery pushes a payload to a connected user. It reports false when the
// user has no live connection.
type Delivery interface {
	SendToUser(userID int64, v any) bool
}

// BlockChecker reports whether either user has blocked the other.
type BlockChecker interface {
	IsBlocked(ctx context.Context, userA, userB int64) (bool, error)
}

type Service struct {
	repo     Repository
	users    user.Repository
	blocks   BlockChecker
	delivery Delivery
	clock    clock.Clock
	events   notification.Publisher
	log      logrus.FieldLogger
}

func NewService(repo Repository, users user.Repository, blocks BlockChecker, delivery Delivery, clk clock.Clock, events notification.Publisher, log logrus.FieldLogger) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		blocks:   blocks,
		delivery: delivery,
		clock:    clk,
		events:   events,
		log:      log,
	}
}

// GetOrCreateChat returns the chat of the pair about propertyID, creating it
// on first contact. Argument order does not matter.
func (s *Service) GetOrCreateChat(ctx context.Context, userID, peerID int64, propertyID *int64) (*Chat, reason.Code, error) {
	if userID == peerID {
		return nil, reason.CannotChatSelf, nil
	}

	checks := []struct {
		id   int64
		code reason.Code
	}{
		{userID, reason.UserNotFound},
		{peerID, reason.TargetNotFound},
	}
	for _, chk := range checks {
		u, err := s.users.GetByID(ctx, chk.id)
		if err != nil {
			return nil, reason.OK, fmt.Errorf("get user: %w", err)
		}
		if u == nil {
			return nil, chk.code, nil
		}
	}

	if code, err := s.blocked(ctx, userID, peerID); err != nil || code != reason.OK {
		return nil, code, err
	}

	a, b := normalize(userID, peerID)
	c, err := s.repo.FindChat(ctx, a, b, propertyID)
	if err != nil {
		return nil, reason.OK, fmt.Errorf("find chat: %w", err)
	}
	if c != nil {
		return c, reason.OK, nil
	}

	c = &Chat{UserAID: a, UserBID: b, PropertyID: propertyID, CreatedAt: s.clock.Now()}
	if err := s.repo.CreateChat(ctx, c); err != nil {
		if !database.IsUniqueViolation(err) {
			return nil, reason.OK, fmt.Errorf("create chat: %w", err)
		}
		// created concurrently by the peer
		c, err = s.repo.FindChat(ctx, a, b, propertyID)
		if err != nil {
			return nil, reason.OK, fmt.Errorf("reload chat: %w", err)
		}
		if c == nil {
			return nil, reason.OK, ErrChatVanished
		}
	}
	return c, reason.OK, nil
}

// SendMessage stores a message and pushes it to the peer, falling back to a
// chat.message event when the peer is offline.
func (s *Service) SendMessage(ctx context.Context, chatID, senderID int64, body string) (*Message, reason.Code, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, reason.EmptyMessage, nil
	}

	c, code, err := s.member(ctx, chatID, senderID)
	if err != nil || code != reason.OK {
		return nil, code, err
	}
	if code, err := s.blocked(ctx, senderID, c.Peer(senderID)); err != nil || code != reason.OK {
		return nil, code, err
	}

	m := &Message{ChatID: chatID, SenderID: senderID, Body: body, SentAt: s.clock.Now()}
	if err := s.repo.CreateMessage(ctx, m); err != nil {
		return nil, reason.OK, fmt.Errorf("create message: %w", err)
	}
	if err := s.repo.TouchChat(ctx, chatID, m.SentAt); err != nil {
		return nil, reason.OK, fmt.Errorf("touch chat: %w", err)
	}

	peer := c.Peer(senderID)
	event := newMessageEvent(m)
	if s.delivery != nil {
		s.delivery.SendToUser(senderID, event)
	}
	if s.delivery == nil || !s.delivery.SendToUser(peer, event) {
		notification.Emit(ctx, s.events, s.log, notification.ForUser(
			notification.TypeChatMessage, peer, m.SentAt,
			map[string]any{
				"chat_id":    chatID,
				"message_id": m.ID,
				"sender_id":  senderID,
				"preview":    preview(body),
			},
		))
	}
	return m, reason.OK, nil
}

// History returns messages oldest first, ending before beforeID when set.
func (s *Service) History(ctx context.Context, chatID, userID int64, limit int, beforeID int64) ([]Message, reason.Code, error) {
	if _, code, err := s.member(ctx, chatID, userID); err != nil || code != reason.OK {
		return nil, code, err
	}
	if limit <= 0 {
		limit = defaultHistory
	}
	if limit > maxHistory {
		limit = maxHistory
	}

	list, err := s.repo.ListMessages(ctx, chatID, limit, beforeID)
	if err != nil {
		return nil, reason.OK, fmt.Errorf("list messages: %w", err)
	}
	for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
		list[i], list[j] = list[j], list[i]
	}
	return list, reason.OK, nil
}

func (s *Service) ListForUser(ctx context.Context, userID int64) ([]Summary, error) {
	chats, err := s.repo.ListChatsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}

	out := make([]Summary, 0, len(chats))
	for _, c := range chats {
		unread, err := s.repo.CountUnread(ctx, c.ID, userID)
		if err != nil {
			return nil, fmt.Errorf("count unread: %w", err)
		}
		out = append(out, Summary{Chat: c, PeerID: c.Peer(userID), UnreadCount: unread})
	}
	return out, nil
}

// MarkRead marks the peer's messages as read and tells the peer.
func (s *Service) MarkRead(ctx context.Context, chatID, userID int64) (int64, reason.Code, error) {
	c, code, err := s.member(ctx, chatID, userID)
	if err != nil || code != reason.OK {
		return 0, code, err
	}

	n, err := s.repo.MarkRead(ctx, chatID, userID)
	if err != nil {
		return 0, reason.OK, fmt.Errorf("mark read: %w", err)
	}
	if n > 0 && s.delivery != nil {
		s.delivery.SendToUser(c.Peer(userID), newReadEvent(chatID, userID))
	}
	return n, reason.OK, nil
}

// Typing relays a typing indicator to the peer.
func (s *Service) Typing(ctx context.Context, chatID, userID int64, typing bool) (reason.Code, error) {
	c, code, err := s.member(ctx, chatID, userID)
	if err != nil || code != reason.OK {
		return code, err
	}
	if s.delivery != nil {
		s.delivery.SendToUser(c.Peer(userID), newTypingEvent(chatID, userID, typing))
	}
	return reason.OK, nil
}

func (s *Service) member(ctx context.Context, chatID, userID int64) (*Chat, reason.Code, error) {
	c, err := s.repo.GetChat(ctx, chatID)
	if err != nil {
		return nil, reason.OK, fmt.Errorf("get chat: %w", err)
	}
	if c == nil {
		return nil, reason.NotFound, nil
	}
	if !c.HasMember(userID) {
		return nil, reason.NotChatMember, nil
	}
	return c, reason.OK, nil
}

func (s *Service) blocked(ctx context.Context, userA, userB int64) (reason.Code, error) {
	if s.blocks == nil {
		return reason.OK, nil
	}
	blocked, err := s.blocks.IsBlocked(ctx, userA, userB)
	if err != nil {
		return reason.OK, fmt.Errorf("check block: %w", err)
	}
	if blocked {
		return reason.UserBlocked, nil
	}
	return reason.OK, nil
}

func preview(body string) string {
	r := []rune(body)
	if len(r) <= previewLen {
		return body
	}
	return string(r[:previewLen]) + "…"
}
