package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"estatebot/internal/config"
	"estatebot/internal/pkg/jwt"
)

// token mints a bearer token for a chat platform user id. The bot process
// uses one per user it acts for; operators use it for admin calls.
func main() {
	userID := flag.Int64("user", 0, "chat platform user id")
	admin := flag.Bool("admin", false, "issue an admin token (the id must be a configured admin)")
	flag.Parse()

	if *userID <= 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	pol, err := cfg.Policy()
	if err != nil {
		logrus.WithError(err).Fatal("load role policy")
	}

	role := jwt.RoleUser
	if *admin {
		if !pol.IsAdmin(*userID) {
			logrus.WithField("user_id", *userID).Fatal("not a configured admin")
		}
		role = jwt.RoleAdmin
	}

	token, err := jwt.New(cfg.JWTSecret, cfg.JWTTTL).GenerateToken(*userID, role)
	if err != nil {
		logrus.WithError(err).Fatal("generate token")
	}
	fmt.Println(token)
}
