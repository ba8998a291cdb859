package chat

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estatebot/internal/database/dbtest"
	"estatebot/internal/domain/notification"
	"estatebot/internal/domain/notification/notificationtest"
	"estatebot/internal/domain/reason"
	"estatebot/internal/domain/user"
	"estatebot/internal/pkg/clock"
	"estatebot/internal/pkg/logger"
)

var t0 = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

type fakeDelivery struct {
	mu     sync.Mutex
	online map[int64]bool
	sent   map[int64][]any
}

func newFakeDelivery(online ...int64) *fakeDelivery {
	d := &fakeDelivery{online: map[int64]bool{}, sent: map[int64][]any{}}
	for _, id := range online {
		d.online[id] = true
	}
	return d
}

func (d *fakeDelivery) SendToUser(userID int64, v any) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.online[userID] {
		return false
	}
	d.sent[userID] = append(d.sent[userID], v)
	return true
}

func (d *fakeDelivery) to(userID int64) []any {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sent[userID]
}

// blockSet holds blocked pairs as [blocker, blocked].
type blockSet map[[2]int64]bool

func (b blockSet) IsBlocked(_ context.Context, userA, userB int64) (bool, error) {
	return b[[2]int64{userA, userB}] || b[[2]int64{userB, userA}], nil
}

type testEnv struct {
	svc      *Service
	blocks   blockSet
	clock    *clock.Manual
	delivery *fakeDelivery
	events   *notificationtest.Recorder
}

func newTestEnv(t *testing.T, online ...int64) *testEnv {
	t.Helper()
	db := dbtest.New(t, &user.User{}, &Chat{}, &Message{})

	users := user.NewRepository(db)
	for _, id := range []int64{1, 2, 3} {
		require.NoError(t, users.Create(context.Background(), &user.User{ID: id, Role: user.RoleBuyer, LastActiveAt: t0}))
	}

	env := &testEnv{
		blocks:   blockSet{},
		clock:    clock.NewManual(t0),
		delivery: newFakeDelivery(online...),
		events:   &notificationtest.Recorder{},
	}
	env.svc = NewService(NewRepository(db), users, env.blocks, env.delivery, env.clock, env.events, logger.Discard())
	return env
}

func (e *testEnv) chat(t *testing.T, a, b int64) *Chat {
	t.Helper()
	c, code, err := e.svc.GetOrCreateChat(context.Background(), a, b, nil)
	require.NoError(t, err)
	require.Equal(t, reason.OK, code)
	return c
}

func (e *testEnv) send(t *testing.T, chatID, from int64, body string) *Message {
	t.Helper()
	m, code, err := e.svc.SendMessage(context.Background(), chatID, from, body)
	require.NoError(t, err)
	require.Equal(t, reason.OK, code)
	e.clock.Advance(time.Second)
	return m
}

func TestGetOrCreateChat_Symmetric(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ab := env.chat(t, 2, 1)
	ba := env.chat(t, 1, 2)
	assert.Equal(t, ab.ID, ba.ID)
	assert.Equal(t, int64(1), ab.UserAID)
	assert.Equal(t, int64(2), ab.UserBID)

	pid := int64(42)
	withProperty, code, err := env.svc.GetOrCreateChat(ctx, 2, 1, &pid)
	require.NoError(t, err)
	require.Equal(t, reason.OK, code)
	assert.NotEqual(t, ab.ID, withProperty.ID, "a listing gets its own chat")

	again, _, err := env.svc.GetOrCreateChat(ctx, 1, 2, &pid)
	require.NoError(t, err)
	assert.Equal(t, withProperty.ID, again.ID)
}

func TestGetOrCreateChat_Denials(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, code, err := env.svc.GetOrCreateChat(ctx, 1, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, reason.CannotChatSelf, code)

	_, code, err = env.svc.GetOrCreateChat(ctx, 404, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, reason.UserNotFound, code)

	_, code, err = env.svc.GetOrCreateChat(ctx, 1, 404, nil)
	require.NoError(t, err)
	assert.Equal(t, reason.TargetNotFound, code)
}

func TestSendMessage_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.chat(t, 1, 2)

	_, code, err := env.svc.SendMessage(ctx, c.ID, 1, "   ")
	require.NoError(t, err)
	assert.Equal(t, reason.EmptyMessage, code)

	_, code, err = env.svc.SendMessage(ctx, 999, 1, "hi")
	require.NoError(t, err)
	assert.Equal(t, reason.NotFound, code)

	_, code, err = env.svc.SendMessage(ctx, c.ID, 3, "hi")
	require.NoError(t, err)
	assert.Equal(t, reason.NotChatMember, code)

	_, code, err = env.svc.History(ctx, c.ID, 3, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, reason.NotChatMember, code)
}

func TestSendMessage_OfflinePeerGetsEvent(t *testing.T) {
	env := newTestEnv(t, 1)
	c := env.chat(t, 1, 2)

	m := env.send(t, c.ID, 1, strings.Repeat("x", 150))

	events := env.events.OfType(notification.TypeChatMessage)
	require.Len(t, events, 1)
	assert.Equal(t, int64(2), events[0].UserID)
	assert.Equal(t, m.ID, events[0].Payload["message_id"])
	assert.Len(t, []rune(events[0].Payload["preview"].(string)), previewLen+1)

	require.Len(t, env.delivery.to(1), 1, "sender gets an echo")
}

func TestSendMessage_OnlinePeerGetsPush(t *testing.T) {
	env := newTestEnv(t, 1, 2)
	c := env.chat(t, 1, 2)

	env.send(t, c.ID, 1, "hello")

	assert.Empty(t, env.events.Events())
	pushed := env.delivery.to(2)
	require.Len(t, pushed, 1)
	ev, ok := pushed[0].(*ServerEvent)
	require.True(t, ok)
	assert.Equal(t, EventNewMessage, ev.Type)
	assert.Equal(t, "hello", ev.Message.Body)
}

func TestHistoryAndUnread(t *testing.T) {
	env := newTestEnv(t, 1)
	ctx := context.Background()
	c := env.chat(t, 1, 2)

	var ids []int64
	for _, body := range []string{"one", "two", "three", "four"} {
		ids = append(ids, env.send(t, c.ID, 2, body).ID)
	}
	env.send(t, c.ID, 1, "reply")

	list, code, err := env.svc.History(ctx, c.ID, 1, 2, 0)
	require.NoError(t, err)
	require.Equal(t, reason.OK, code)
	require.Len(t, list, 2)
	assert.Equal(t, "four", list[0].Body)
	assert.Equal(t, "reply", list[1].Body)

	list, _, err = env.svc.History(ctx, c.ID, 1, 10, ids[2])
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "one", list[0].Body)

	summaries, err := env.svc.ListForUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, int64(2), summaries[0].PeerID)
	assert.Equal(t, int64(4), summaries[0].UnreadCount)

	n, code, err := env.svc.MarkRead(ctx, c.ID, 1)
	require.NoError(t, err)
	require.Equal(t, reason.OK, code)
	assert.Equal(t, int64(4), n)

	summaries, err = env.svc.ListForUser(ctx, 2)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, int64(1), summaries[0].UnreadCount)

	_, code, err = env.svc.MarkRead(ctx, c.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, reason.NotChatMember, code)
}

func TestListForUser_LatestActivityFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	older := env.chat(t, 1, 2)
	env.clock.Advance(time.Minute)
	newer := env.chat(t, 1, 3)

	list, err := env.svc.ListForUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)

	env.clock.Advance(time.Minute)
	env.send(t, older.ID, 2, "ping")

	list, err = env.svc.ListForUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, older.ID, list[0].ID)
}

func TestBlockedPairCannotChat(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.chat(t, 1, 2)

	env.blocks[[2]int64{2, 1}] = true

	_, code, err := env.svc.SendMessage(ctx, c.ID, 1, "hello?")
	require.NoError(t, err)
	assert.Equal(t, reason.UserBlocked, code)

	_, code, err = env.svc.GetOrCreateChat(ctx, 1, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, reason.UserBlocked, code)

	// other pairs are unaffected
	env.chat(t, 1, 3)
}
