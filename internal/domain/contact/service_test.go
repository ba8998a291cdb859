package contact

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estatebot/internal/database/dbtest"
	"estatebot/internal/domain/notification"
	"estatebot/internal/domain/notification/notificationtest"
	"estatebot/internal/domain/policy"
	"estatebot/internal/domain/property"
	"estatebot/internal/domain/reason"
	"estatebot/internal/domain/user"
	"estatebot/internal/pkg/clock"
	"estatebot/internal/pkg/logger"
)

const adminID int64 = 900

var t0 = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

type testEnv struct {
	svc    *Service
	repo   Repository
	users  user.Repository
	props  property.Repository
	events *notificationtest.Recorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := dbtest.New(t, &user.User{}, &property.Property{}, &Request{})

	env := &testEnv{
		repo:   NewRepository(db),
		users:  user.NewRepository(db),
		props:  property.NewRepository(db),
		events: &notificationtest.Recorder{},
	}
	env.svc = NewService(env.repo, env.users, env.props, policy.Default().WithAdmins(adminID),
		clock.NewManual(t0), env.events, logger.Discard())
	return env
}

func (e *testEnv) addUser(t *testing.T, id int64, role user.Role) {
	t.Helper()
	require.NoError(t, e.users.Create(context.Background(), &user.User{
		ID: id, Username: "user", Phone: "+998901234567", Role: role, LastActiveAt: t0,
	}))
}

func (e *testEnv) addProperty(t *testing.T, ownerID int64) int64 {
	t.Helper()
	p := &property.Property{
		OwnerID: ownerID, Type: property.TypeHouse, Price: 1, Currency: "USD",
		Status: property.StatusActive, CreatedAt: t0,
	}
	require.NoError(t, e.props.Create(context.Background(), p))
	return p.ID
}

func TestCanShowContact(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addUser(t, 1, user.RoleSeller)
	env.addUser(t, 2, user.RoleRealtor)
	env.addUser(t, 3, user.RoleBuyer)

	v, err := env.svc.CanShowContact(ctx, 1, 3)
	require.NoError(t, err)
	assert.True(t, v.Show)
	require.NotNil(t, v.Contact)
	assert.Equal(t, "+998901234567", v.Contact.Phone)

	v, err = env.svc.CanShowContact(ctx, 2, 3)
	require.NoError(t, err)
	assert.False(t, v.Show)
	assert.Nil(t, v.Contact)
	assert.Equal(t, reason.ContactRestricted, v.Reason)
	assert.Contains(t, v.Message, "@admin")

	v, err = env.svc.CanShowContact(ctx, 2, adminID)
	require.NoError(t, err)
	assert.True(t, v.Show, "admins see restricted contacts")

	v, err = env.svc.CanShowContact(ctx, 404, 3)
	require.NoError(t, err)
	assert.False(t, v.Show)
	assert.Equal(t, reason.TargetNotFound, v.Reason)
}

func TestRequestContact_Lookups(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addUser(t, 2, user.RoleAgency)
	env.addUser(t, 3, user.RoleBuyer)

	_, code, err := env.svc.RequestContact(ctx, 404, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, reason.UserNotFound, code)

	_, code, err = env.svc.RequestContact(ctx, 3, 404, nil)
	require.NoError(t, err)
	assert.Equal(t, reason.TargetNotFound, code)

	missing := int64(777)
	_, code, err = env.svc.RequestContact(ctx, 3, 2, &missing)
	require.NoError(t, err)
	assert.Equal(t, reason.PropertyNotFound, code)
}

func TestRequestContact_OnePendingPerTriple(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addUser(t, 2, user.RoleAgency)
	env.addUser(t, 3, user.RoleBuyer)
	pid := env.addProperty(t, 2)

	req, code, err := env.svc.RequestContact(ctx, 3, 2, &pid)
	require.NoError(t, err)
	require.Equal(t, reason.OK, code)
	assert.Equal(t, StatusPending, req.Status)

	_, code, err = env.svc.RequestContact(ctx, 3, 2, &pid)
	require.NoError(t, err)
	assert.Equal(t, reason.AlreadyPending, code)

	_, code, err = env.svc.RequestContact(ctx, 3, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, reason.OK, code, "no property is a different triple")

	_, code, err = env.svc.RequestContact(ctx, 3, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, reason.AlreadyPending, code)

	requested := env.events.OfType(notification.TypeContactRequested)
	require.Len(t, requested, 2)
	assert.True(t, requested[0].ToAdmins)
}

func TestPendingIndexRejectsDuplicates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	mk := func() *Request {
		return &Request{RequesterID: 3, TargetID: 2, Status: StatusPending, CreatedAt: t0}
	}
	require.NoError(t, env.repo.Create(ctx, mk()))
	assert.Error(t, env.repo.Create(ctx, mk()))

	done := mk()
	done.Status = StatusRejected
	require.NoError(t, env.repo.Create(ctx, done), "resolved requests are not constrained")
}

func TestApproveAndReject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addUser(t, 2, user.RoleDeveloper)
	env.addUser(t, 3, user.RoleBuyer)
	env.addUser(t, 4, user.RoleRenter)

	first, _, err := env.svc.RequestContact(ctx, 3, 2, nil)
	require.NoError(t, err)
	second, _, err := env.svc.RequestContact(ctx, 4, 2, nil)
	require.NoError(t, err)

	pending, err := env.svc.ListPending(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	_, code, err := env.svc.Approve(ctx, first.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, reason.Forbidden, code)

	_, code, err = env.svc.Approve(ctx, 999, adminID)
	require.NoError(t, err)
	assert.Equal(t, reason.NotFound, code)

	a, code, err := env.svc.Approve(ctx, first.ID, adminID)
	require.NoError(t, err)
	require.Equal(t, reason.OK, code)
	assert.Equal(t, StatusApproved, a.Request.Status)
	assert.Equal(t, int64(2), a.Contact.UserID)
	assert.Equal(t, "+998901234567", a.Contact.Phone)

	stored, err := env.repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, stored.Status)
	require.NotNil(t, stored.ProcessedBy)
	assert.Equal(t, adminID, *stored.ProcessedBy)
	assert.NotNil(t, stored.ProcessedAt)

	_, code, err = env.svc.Approve(ctx, first.ID, adminID)
	require.NoError(t, err)
	assert.Equal(t, reason.AlreadyProcessed, code)

	_, code, err = env.svc.Reject(ctx, first.ID, adminID)
	require.NoError(t, err)
	assert.Equal(t, reason.AlreadyProcessed, code)

	rejected, code, err := env.svc.Reject(ctx, second.ID, adminID)
	require.NoError(t, err)
	require.Equal(t, reason.OK, code)
	assert.Equal(t, StatusRejected, rejected.Status)

	pending, err = env.svc.ListPending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	approved := env.events.OfType(notification.TypeContactApproved)
	require.Len(t, approved, 1)
	assert.Equal(t, int64(3), approved[0].UserID)
	assert.Len(t, env.events.OfType(notification.TypeContactRejected), 1)

	v, err := env.svc.CanShowContact(ctx, 2, 3)
	require.NoError(t, err)
	assert.True(t, v.Show, "approved requester sees the contact")

	v, err = env.svc.CanShowContact(ctx, 2, 4)
	require.NoError(t, err)
	assert.False(t, v.Show)
}

func TestApprove_MissingTargetLeavesRequestPending(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	req := &Request{RequesterID: 3, TargetID: 77, Status: StatusPending, CreatedAt: t0}
	require.NoError(t, env.repo.Create(ctx, req))

	a, code, err := env.svc.Approve(ctx, req.ID, adminID)
	require.NoError(t, err)
	assert.Equal(t, reason.TargetNotFound, code)
	assert.Nil(t, a)

	stored, err := env.repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, stored.Status)
	assert.Nil(t, stored.ProcessedBy)
	assert.Empty(t, env.events.OfType(notification.TypeContactApproved))

	rejected, code, err := env.svc.Reject(ctx, req.ID, adminID)
	require.NoError(t, err)
	require.Equal(t, reason.OK, code)
	assert.Equal(t, StatusRejected, rejected.Status)
}

func TestResolveIsConditional(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	req := &Request{RequesterID: 3, TargetID: 2, Status: StatusPending, CreatedAt: t0}
	require.NoError(t, env.repo.Create(ctx, req))

	ok, err := env.repo.Resolve(ctx, req.ID, StatusApproved, adminID, t0)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = env.repo.Resolve(ctx, req.ID, StatusRejected, adminID, t0)
	require.NoError(t, err)
	assert.False(t, ok)
}
