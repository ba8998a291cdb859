package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"estatebot/internal/config"
	"estatebot/internal/database"
	"estatebot/internal/domain/booking"
	"estatebot/internal/domain/property"
	"estatebot/internal/domain/reason"
	"estatebot/internal/domain/user"
	"estatebot/internal/pkg/logger"
	"estatebot/internal/server"
)

// Demo chat platform ids.
const (
	adminID     int64 = 100
	buyerID     int64 = 1001
	renterID    int64 = 1002
	realtorID   int64 = 1003
	developerID int64 = 1004
)

var cleanupTables = []string{
	"notifications",
	"chat_messages",
	"chats",
	"ratings",
	"contact_requests",
	"bookings",
	"favorites",
	"user_blocks",
	"properties",
	"subscription_intervals",
	"users",
}

func main() {
	keep := flag.Bool("keep", false, "do not wipe existing data first")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := logger.New(cfg.LogLevel, "text")

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.WithError(err).Fatal("connect database")
	}
	if err := database.Migrate(db, server.Models()...); err != nil {
		log.WithError(err).Fatal("migrate database")
	}

	if !*keep {
		log.Info("cleaning old data")
		for _, table := range cleanupTables {
			if err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
				log.WithError(err).WithField("table", table).Fatal("cleanup failed")
			}
		}
	}

	pol, err := cfg.Policy()
	if err != nil {
		log.WithError(err).Fatal("load role policy")
	}
	app := server.New(db, server.Options{Policy: pol.WithAdmins(adminID), Log: log})
	ctx := context.Background()

	s := seeder{app: app, log: log}
	s.users(ctx)
	props := s.listings(ctx)
	s.activity(ctx, props)

	log.WithFields(logrus.Fields{
		"admin":     adminID,
		"buyer":     buyerID,
		"developer": developerID,
	}).Info("seed complete; mint tokens with cmd/token")
}

type seeder struct {
	app *server.App
	log logrus.FieldLogger
}

// must stops on both infrastructure errors and unexpected rule denials.
func (s *seeder) must(step string, code reason.Code, err error) {
	if err != nil {
		s.log.WithError(err).Fatal(step)
	}
	if code != reason.OK {
		s.log.WithField("reason", code).Fatal(step)
	}
}

func (s *seeder) users(ctx context.Context) {
	s.log.Info("creating users")

	people := []struct {
		id       int64
		username string
		name     string
		role     user.Role
	}{
		{adminID, "estate_admin", "Administrator", user.RoleNone},
		{buyerID, "aziza_b", "Aziza Karimova", user.RoleBuyer},
		{renterID, "timur_r", "Timur Rakhimov", user.RoleRenter},
		{realtorID, "dilnoza_realty", "Dilnoza Yusupova", user.RoleRealtor},
		{developerID, "tashkent_city_dev", "Tashkent City Development", user.RoleDeveloper},
	}
	for _, p := range people {
		_, err := s.app.Users.Ensure(ctx, user.Profile{
			ID:       p.id,
			Username: p.username,
			FullName: p.name,
			Phone:    fmt.Sprintf("+998 90 %03d %02d %02d", p.id%1000, p.id%97, p.id%89),
		})
		s.must("ensure user "+p.username, reason.OK, err)
		if p.role == user.RoleNone {
			continue
		}
		_, code, err := s.app.Subscriptions.SelectRole(ctx, p.id, p.role)
		s.must("select role "+string(p.role), code, err)
	}
}

func (s *seeder) listings(ctx context.Context) []*property.Property {
	s.log.Info("creating listings")

	reqs := []struct {
		owner int64
		req   property.CreateRequest
	}{
		{realtorID, property.CreateRequest{
			Type: property.TypeApartment, District: "Chilonzor", Address: "Chilonzor 9, 14",
			Price: 180_000_000, Rooms: 3, Area: 72, Description: "Renovated three-room flat near the metro",
		}},
		{realtorID, property.CreateRequest{
			Type: property.TypeApartment, District: "Yunusabad", Address: "Yunusabad 4, 21",
			Price: 45, Currency: "USD", Rooms: 1, Area: 38, IsDailyRent: true,
			Description: "Studio for short stays, washing machine and wifi",
		}},
		{developerID, property.CreateRequest{
			Type: property.TypeHouse, District: "Mirzo Ulugbek", Address: "Buyuk Ipak Yoli 12",
			Price: 520_000_000, Rooms: 5, Area: 240, Description: "New build with a garden",
		}},
		{developerID, property.CreateRequest{
			Type: property.TypeCommercial, District: "Shaykhantakhur", Address: "Navoi 30",
			Price: 310_000_000, Area: 120, Description: "Ground floor retail space",
		}},
	}

	out := make([]*property.Property, 0, len(reqs))
	for _, r := range reqs {
		p, code, err := s.app.Properties.Create(ctx, r.owner, r.req)
		s.must("create listing in "+r.req.District, code, err)
		out = append(out, p)
	}
	return out
}

func (s *seeder) activity(ctx context.Context, props []*property.Property) {
	s.log.Info("creating bookings, contact requests and ratings")

	daily := props[1]
	checkIn := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, 7)

	b, code, err := s.app.Bookings.CreateBooking(ctx, buyerID, booking.CreateRequest{
		PropertyID: daily.ID,
		CheckIn:    checkIn,
		CheckOut:   checkIn.AddDate(0, 0, 3),
		Guests:     2,
	})
	s.must("create booking", code, err)
	_, code, err = s.app.Bookings.ConfirmBooking(ctx, b.ID, adminID)
	s.must("confirm booking", code, err)

	_, code, err = s.app.Bookings.CreateBooking(ctx, renterID, booking.CreateRequest{
		PropertyID: daily.ID,
		CheckIn:    checkIn.AddDate(0, 0, 5),
		CheckOut:   checkIn.AddDate(0, 0, 6),
	})
	s.must("create pending booking", code, err)

	_, code, err = s.app.Contacts.RequestContact(ctx, buyerID, developerID, &props[2].ID)
	s.must("request developer contact", code, err)
	req, code, err := s.app.Contacts.RequestContact(ctx, buyerID, realtorID, &props[0].ID)
	s.must("request realtor contact", code, err)
	_, code, err = s.app.Contacts.Approve(ctx, req.ID, adminID)
	s.must("approve realtor contact", code, err)

	_, code, err = s.app.Ratings.AddRating(ctx, realtorID, buyerID, 5, "Quick and honest")
	s.must("rate realtor", code, err)
	_, code, err = s.app.Ratings.AddRating(ctx, realtorID, renterID, 4, "")
	s.must("rate realtor", code, err)

	chat, code, err := s.app.Chats.GetOrCreateChat(ctx, buyerID, realtorID, &props[0].ID)
	s.must("open chat", code, err)
	_, code, err = s.app.Chats.SendMessage(ctx, chat.ID, buyerID, "Can I see the flat on Saturday?")
	s.must("send message", code, err)
}
