package main

import (
	"flag"

	"github.com/sirupsen/logrus"

	"estatebot/internal/config"
	"estatebot/internal/database"
	"estatebot/internal/domain/notification"
	"estatebot/internal/domain/subscription"
	"estatebot/internal/pkg/logger"
	"estatebot/internal/scheduler"
	"estatebot/internal/server"
)

// maintenance runs the scheduled jobs once, for hosts that drive them from
// an external cron instead of the api process.
func main() {
	reminders := flag.Bool("reminders", true, "send subscription expiry reminders")
	cleanup := flag.Bool("cleanup", true, "delete old notifications")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	pol, err := cfg.Policy()
	if err != nil {
		log.WithError(err).Fatal("load role policy")
	}
	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.WithError(err).Fatal("connect database")
	}

	var broker notification.Publisher
	if cfg.RabbitMQURL != "" {
		amqpPub := notification.NewAMQPPublisher(cfg.RabbitMQURL, log)
		defer amqpPub.Close()
		broker = amqpPub
	}
	app := server.New(db, server.Options{Policy: pol, Broker: broker, Log: log})

	// registered but never started: jobs only run through RunNow
	sched := scheduler.New(log, cfg.JobTimeout)

	var names []string
	if *reminders {
		job := subscription.NewReminderJob(app.Subscriptions, nil)
		if err := sched.Add(cfg.ReminderCron, job); err != nil {
			log.WithError(err).Fatal("register reminders")
		}
		names = append(names, job.Name())
	}
	if *cleanup {
		job := notification.NewCleanupJob(app.Notifications, cfg.NotificationRetention, log)
		if err := sched.Add(cfg.CleanupCron, job); err != nil {
			log.WithError(err).Fatal("register cleanup")
		}
		names = append(names, job.Name())
	}

	failed := false
	for _, name := range names {
		if err := sched.RunNow(name); err != nil {
			log.WithError(err).WithField("job", name).Error("job failed")
			failed = true
		}
	}
	if failed {
		log.Fatal("maintenance finished with errors")
	}
	log.WithField("jobs", names).Info("maintenance completed")
}
