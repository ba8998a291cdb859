package booking

import (
	"context"
	"math/rand"
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

var t0 = time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)

func date(month time.Month, d int) time.Time {
	return time.Date(2024, month, d, 0, 0, 0, 0, time.UTC)
}

type testEnv struct {
	svc    *Service
	repo   Repository
	props  property.Repository
	users  user.Repository
	events *notificationtest.Recorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := dbtest.New(t, &user.User{}, &property.Property{}, &Booking{})

	env := &testEnv{
		repo:   NewRepository(db),
		props:  property.NewRepository(db),
		users:  user.NewRepository(db),
		events: &notificationtest.Recorder{},
	}
	env.svc = NewService(env.repo, policy.Default().WithAdmins(adminID), clock.NewManual(t0), env.events, logger.Discard())
	return env
}

func (e *testEnv) addUser(t *testing.T, id int64) {
	t.Helper()
	require.NoError(t, e.users.Create(context.Background(), &user.User{ID: id, Role: user.RoleBuyer, LastActiveAt: t0}))
}

func (e *testEnv) addProperty(t *testing.T, price float64) *property.Property {
	t.Helper()
	p := &property.Property{
		OwnerID:     1,
		Type:        property.TypeApartment,
		District:    "Mirzo Ulugbek",
		Price:       price,
		Currency:    "USD",
		IsDailyRent: true,
		Status:      property.StatusActive,
		CreatedAt:   t0,
	}
	require.NoError(t, e.props.Create(context.Background(), p))
	return p
}

func (e *testEnv) book(t *testing.T, userID, propertyID int64, in, out time.Time) *Booking {
	t.Helper()
	b, code, err := e.svc.CreateBooking(context.Background(), userID, CreateRequest{
		PropertyID: propertyID, CheckIn: in, CheckOut: out,
	})
	require.NoError(t, err)
	require.Equal(t, reason.OK, code)
	return b
}

func TestNights(t *testing.T) {
	assert.Equal(t, 4, Nights(date(6, 1), date(6, 5)))
	assert.Equal(t, 0, Nights(date(6, 1), date(6, 1)))
	assert.Equal(t, 0, Nights(date(6, 5), date(6, 1)))
	assert.Equal(t, 0, Nights(date(6, 1), date(6, 1).Add(23*time.Hour)))
	assert.Equal(t, 1, Nights(date(6, 1), date(6, 2).Add(12*time.Hour)))
}

func TestOverlaps(t *testing.T) {
	assert.False(t, Overlaps(date(6, 1), date(6, 5), date(6, 5), date(6, 8)), "touching")
	assert.True(t, Overlaps(date(6, 1), date(6, 5), date(6, 4), date(6, 6)))
	assert.True(t, Overlaps(date(6, 1), date(6, 10), date(6, 3), date(6, 4)), "contained")
}

func TestAvailability_TouchingRanges(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addUser(t, 10)
	p := env.addProperty(t, 100)

	b := env.book(t, 10, p.ID, date(6, 1), date(6, 5))

	ok, err := env.svc.IsAvailable(ctx, p.ID, date(6, 4), date(6, 6))
	require.NoError(t, err)
	assert.True(t, ok, "pending bookings do not block")

	_, code, err := env.svc.ConfirmBooking(ctx, b.ID, adminID)
	require.NoError(t, err)
	require.Equal(t, reason.OK, code)

	ok, err = env.svc.IsAvailable(ctx, p.ID, date(6, 5), date(6, 8))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = env.svc.IsAvailable(ctx, p.ID, date(6, 4), date(6, 6))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = env.svc.IsAvailable(ctx, p.ID, date(6, 8), date(6, 8))
	require.NoError(t, err)
	assert.False(t, ok, "empty range")
}

func TestCreateBooking_InvalidDateRange(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, 10)
	p := env.addProperty(t, 100)

	ranges := [][2]time.Time{
		{date(6, 5), date(6, 5)},
		{date(6, 5), date(6, 1)},
		{date(6, 5), date(6, 5).Add(6 * time.Hour)},
	}
	for _, r := range ranges {
		b, code, err := env.svc.CreateBooking(context.Background(), 10, CreateRequest{
			PropertyID: p.ID, CheckIn: r[0], CheckOut: r[1],
		})
		require.NoError(t, err)
		assert.Nil(t, b)
		assert.Equal(t, reason.InvalidDateRange, code)
	}
}

func TestCreateBooking_PriceAndEvent(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, 10)
	p := env.addProperty(t, 120)

	tashkent := time.FixedZone("UZT", 5*3600)
	b := env.book(t, 10, p.ID,
		time.Date(2024, 6, 1, 14, 0, 0, 0, tashkent),
		time.Date(2024, 6, 4, 14, 0, 0, 0, tashkent))

	assert.Equal(t, StatusPending, b.Status)
	assert.Equal(t, 1, b.Guests)
	assert.InDelta(t, 360.0, b.TotalPrice, 0.001)
	assert.Equal(t, time.UTC, b.CheckIn.Location())

	created := env.events.OfType(notification.TypeBookingCreated)
	require.Len(t, created, 1)
	assert.True(t, created[0].ToAdmins)
	assert.Equal(t, int64(10), created[0].UserID)
}

func TestCreateBooking_Lookups(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addUser(t, 10)
	p := env.addProperty(t, 100)

	req := CreateRequest{PropertyID: 999, CheckIn: date(6, 1), CheckOut: date(6, 2)}
	_, code, err := env.svc.CreateBooking(ctx, 10, req)
	require.NoError(t, err)
	assert.Equal(t, reason.PropertyNotFound, code)

	req.PropertyID = p.ID
	_, code, err = env.svc.CreateBooking(ctx, 404, req)
	require.NoError(t, err)
	assert.Equal(t, reason.UserNotFound, code)

	require.NoError(t, env.props.UpdateStatus(ctx, p.ID, property.StatusArchived))
	_, code, err = env.svc.CreateBooking(ctx, 10, req)
	require.NoError(t, err)
	assert.Equal(t, reason.PropertyUnavailable, code)
}

func TestCreateBooking_ConfirmedOverlapRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addUser(t, 10)
	env.addUser(t, 11)
	p := env.addProperty(t, 100)

	b := env.book(t, 10, p.ID, date(6, 1), date(6, 5))
	_, code, err := env.svc.ConfirmBooking(ctx, b.ID, adminID)
	require.NoError(t, err)
	require.Equal(t, reason.OK, code)

	_, code, err = env.svc.CreateBooking(ctx, 11, CreateRequest{PropertyID: p.ID, CheckIn: date(6, 3), CheckOut: date(6, 7)})
	require.NoError(t, err)
	assert.Equal(t, reason.PropertyUnavailable, code)

	env.book(t, 11, p.ID, date(6, 5), date(6, 7))
}

func TestConfirmBooking_RevalidatesOverlap(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addUser(t, 10)
	env.addUser(t, 11)
	p := env.addProperty(t, 100)

	first := env.book(t, 10, p.ID, date(6, 1), date(6, 5))
	second := env.book(t, 11, p.ID, date(6, 3), date(6, 6))

	_, code, err := env.svc.ConfirmBooking(ctx, first.ID, adminID)
	require.NoError(t, err)
	require.Equal(t, reason.OK, code)

	_, code, err = env.svc.ConfirmBooking(ctx, second.ID, adminID)
	require.NoError(t, err)
	assert.Equal(t, reason.PropertyUnavailable, code)

	got, err := env.svc.Get(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)
}

func TestConfirmBooking_Denials(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addUser(t, 10)
	p := env.addProperty(t, 100)
	b := env.book(t, 10, p.ID, date(6, 1), date(6, 5))

	_, code, err := env.svc.ConfirmBooking(ctx, b.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, reason.Forbidden, code)

	_, code, err = env.svc.ConfirmBooking(ctx, 999, adminID)
	require.NoError(t, err)
	assert.Equal(t, reason.NotFound, code)

	confirmed, code, err := env.svc.ConfirmBooking(ctx, b.ID, adminID)
	require.NoError(t, err)
	require.Equal(t, reason.OK, code)
	require.NotNil(t, confirmed.ConfirmedBy)
	assert.Equal(t, adminID, *confirmed.ConfirmedBy)
	assert.Len(t, env.events.OfType(notification.TypeBookingConfirmed), 1)

	_, code, err = env.svc.ConfirmBooking(ctx, b.ID, adminID)
	require.NoError(t, err)
	assert.Equal(t, reason.InvalidStatusTransition, code)
}

func TestCancelBooking(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addUser(t, 10)
	env.addUser(t, 11)
	p := env.addProperty(t, 100)

	b := env.book(t, 10, p.ID, date(6, 1), date(6, 5))

	_, code, err := env.svc.CancelBooking(ctx, b.ID, 11)
	require.NoError(t, err)
	assert.Equal(t, reason.Forbidden, code)

	_, code, err = env.svc.CancelBooking(ctx, 999, 10)
	require.NoError(t, err)
	assert.Equal(t, reason.NotFound, code)

	cancelled, code, err := env.svc.CancelBooking(ctx, b.ID, 10)
	require.NoError(t, err)
	require.Equal(t, reason.OK, code)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)

	_, code, err = env.svc.CancelBooking(ctx, b.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, reason.InvalidStatusTransition, code)

	_, code, err = env.svc.ConfirmBooking(ctx, b.ID, adminID)
	require.NoError(t, err)
	assert.Equal(t, reason.InvalidStatusTransition, code, "cancelled is terminal")

	other := env.book(t, 11, p.ID, date(7, 1), date(7, 3))
	_, code, err = env.svc.CancelBooking(ctx, other.ID, adminID)
	require.NoError(t, err)
	require.Equal(t, reason.OK, code)

	events := env.events.OfType(notification.TypeBookingCancelled)
	require.Len(t, events, 2)
	assert.True(t, events[0].ToAdmins, "guest cancellation goes to admins")
	assert.False(t, events[1].ToAdmins, "admin cancellation goes to the guest")
	assert.Equal(t, int64(11), events[1].UserID)
}

func TestCancelBooking_ConfirmedIsFinal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addUser(t, 10)
	p := env.addProperty(t, 100)

	b := env.book(t, 10, p.ID, date(6, 1), date(6, 5))
	_, code, err := env.svc.ConfirmBooking(ctx, b.ID, adminID)
	require.NoError(t, err)
	require.Equal(t, reason.OK, code)

	_, code, err = env.svc.CancelBooking(ctx, b.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, reason.InvalidStatusTransition, code)

	ok, err := env.svc.IsAvailable(ctx, p.ID, date(6, 2), date(6, 3))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConfirmedBookingsNeverOverlap(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addUser(t, 10)
	p := env.addProperty(t, 50)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 60; i++ {
		in := date(6, 1).AddDate(0, 0, rng.Intn(30))
		out := in.AddDate(0, 0, 1+rng.Intn(5))

		b, code, err := env.svc.CreateBooking(ctx, 10, CreateRequest{PropertyID: p.ID, CheckIn: in, CheckOut: out})
		require.NoError(t, err)
		if code != reason.OK {
			continue
		}
		if rng.Intn(3) > 0 {
			_, _, err = env.svc.ConfirmBooking(ctx, b.ID, adminID)
			require.NoError(t, err)
		}
	}

	list, err := env.svc.ListForProperty(ctx, p.ID)
	require.NoError(t, err)

	var confirmed []Booking
	for _, b := range list {
		if b.Status == StatusConfirmed {
			confirmed = append(confirmed, b)
		}
	}
	require.NotEmpty(t, confirmed)
	for i := range confirmed {
		for j := i + 1; j < len(confirmed); j++ {
			a, b := confirmed[i], confirmed[j]
			assert.False(t, Overlaps(a.CheckIn, a.CheckOut, b.CheckIn, b.CheckOut),
				"bookings %d and %d overlap", a.ID, b.ID)
		}
	}
}
