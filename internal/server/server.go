// Package server assembles the marketplace services and their HTTP router.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"estatebot/internal/domain/booking"
	"estatebot/internal/domain/chat"
	"estatebot/internal/domain/contact"
	"estatebot/internal/domain/notification"
	"estatebot/internal/domain/policy"
	"estatebot/internal/domain/property"
	"estatebot/internal/domain/rating"
	"estatebot/internal/domain/relationship"
	"estatebot/internal/domain/subscription"
	"estatebot/internal/domain/user"
	"estatebot/internal/middleware"
	"estatebot/internal/pkg/clock"
	"estatebot/internal/pkg/jwt"
	"estatebot/internal/pkg/logger"
	"estatebot/internal/pkg/ratelimit"
	"estatebot/internal/pkg/response"
)

// Models lists every persisted entity.
func Models() []any {
	return []any{
		&user.User{},
		&subscription.Interval{},
		&property.Property{},
		&property.Favorite{},
		&booking.Booking{},
		&contact.Request{},
		&rating.Rating{},
		&chat.Chat{},
		&chat.Message{},
		&relationship.Block{},
		&notification.Notification{},
	}
}

type Options struct {
	Policy    *policy.Policy
	Clock     clock.Clock
	JWT       *jwt.Service
	Moderator *property.Moderator
	// Limiter is optional; nil disables rate limiting.
	Limiter ratelimit.Limiter
	// Broker receives every domain event next to the inbox; nil logs them.
	Broker      notification.Publisher
	CORSOrigins []string
	Log         logrus.FieldLogger
}

type App struct {
	Users         *user.Service
	Subscriptions *subscription.Service
	Properties    *property.Service
	Bookings      *booking.Service
	Contacts      *contact.Service
	Ratings       *rating.Service
	Chats         *chat.Service
	Blocks        *relationship.Service
	Notifications *notification.Service
	Hub           *chat.Hub

	db   *gorm.DB
	opts Options
}

func New(db *gorm.DB, opts Options) *App {
	if opts.Log == nil {
		opts.Log = logger.Discard()
	}
	if opts.Policy == nil {
		opts.Policy = policy.Default()
	}
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	if opts.Moderator == nil {
		opts.Moderator = property.DefaultModerator()
	}
	if opts.Broker == nil {
		opts.Broker = notification.NewLogPublisher(opts.Log)
	}

	pol, clk, log := opts.Policy, opts.Clock, opts.Log

	userRepo := user.NewRepository(db)
	propertyRepo := property.NewRepository(db)

	inbox := notification.NewService(notification.NewRepository(db), pol, clk)
	events := notification.Multi{inbox, opts.Broker}

	subs := subscription.NewService(subscription.NewRepository(db), pol, clk, events, log)
	hub := chat.NewHub(log)
	blocks := relationship.NewService(relationship.NewRepository(db), userRepo, clk)

	return &App{
		Users:         user.NewService(userRepo, clk),
		Subscriptions: subs,
		Properties:    property.NewService(propertyRepo, subs, opts.Moderator, clk, events, log),
		Bookings:      booking.NewService(booking.NewRepository(db), pol, clk, events, log),
		Contacts:      contact.NewService(contact.NewRepository(db), userRepo, propertyRepo, pol, clk, events, log),
		Ratings:       rating.NewService(rating.NewRepository(db), pol, clk, log),
		Chats:         chat.NewService(chat.NewRepository(db), userRepo, blocks, hub, clk, events, log),
		Blocks:        blocks,
		Notifications: inbox,
		Hub:           hub,
		db:            db,
		opts:          opts,
	}
}

// Router mounts the API under /api/v1. Everything except /health and the
// chat websocket requires a bearer token; /api/v1/admin requires the admin
// API role.
func (a *App) Router() *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(a.opts.Log),
		middleware.CORS(a.opts.CORSOrigins),
	)

	r.GET("/health", a.health)

	v1 := r.Group("/api/v1")
	chat.RegisterWebSocket(v1, chat.NewWSHandler(a.Hub, a.opts.JWT, a.Chats, a.opts.Log))

	protected := v1.Group("")
	protected.Use(middleware.JWTAuth(a.opts.JWT))

	admin := protected.Group("/admin")
	admin.Use(middleware.AdminOnly())

	limit := func(action string) gin.HandlerFunc {
		return middleware.RateLimit(a.opts.Limiter, action, a.opts.Log)
	}

	userHandler := user.NewHandler(a.Users)
	user.RegisterRoutes(protected, userHandler)

	subHandler := subscription.NewHandler(a.Subscriptions)
	subscription.RegisterRoutes(protected, subHandler)
	subscription.RegisterAdminRoutes(admin, subHandler)

	propertyHandler := property.NewHandler(a.Properties)
	property.RegisterRoutes(protected, propertyHandler)
	property.RegisterAdminRoutes(admin, propertyHandler)

	bookingHandler := booking.NewHandler(a.Bookings)
	booking.RegisterRoutes(protected, bookingHandler)
	booking.RegisterAdminRoutes(admin, bookingHandler)

	contactHandler := contact.NewHandler(a.Contacts)
	contact.RegisterRoutes(protected, contactHandler, limit("contact"))
	contact.RegisterAdminRoutes(admin, contactHandler)

	rating.RegisterRoutes(protected, rating.NewHandler(a.Ratings), limit("rating"))
	chat.RegisterRoutes(protected, chat.NewHandler(a.Chats), limit("chat"))
	relationship.RegisterRoutes(protected, relationship.NewHandler(a.Blocks))
	notification.RegisterRoutes(protected, notification.NewHandler(a.Notifications))

	return r
}

func (a *App) health(c *gin.Context) {
	sqlDB, err := a.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		a.opts.Log.WithError(err).Warn("health check failed")
		response.Error(c, http.StatusServiceUnavailable, "UNAVAILABLE", "Database unavailable")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "ok"})
}
