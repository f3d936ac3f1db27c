package main

import (
	"fmt"
	"log"

	"github.com/ChalithH/SkillForge/internal/config"
	"github.com/ChalithH/SkillForge/internal/database"
	"github.com/ChalithH/SkillForge/internal/notify"
	"github.com/ChalithH/SkillForge/internal/presence"
	"github.com/ChalithH/SkillForge/internal/router"
	"github.com/ChalithH/SkillForge/internal/service"

	"github.com/sirupsen/logrus"
)

func main() {
	// load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := newLogger(cfg.Log)

	// init database
	db, err := database.Init(cfg.Database)
	if err != nil {
		logger.Fatalf("init database: %v", err)
	}

	// run migrations
	if err := database.AutoMigrate(db); err != nil {
		logger.Fatalf("migrate database: %v", err)
	}

	// notification dispatch: AMQP when configured, log-only otherwise
	var notifier notify.Notifier = notify.NewLogNotifier(logger)
	if cfg.Notify.AMQPURL != "" {
		amqpNotifier, err := notify.NewAMQPNotifier(cfg.Notify.AMQPURL, cfg.Notify.Exchange, logger)
		if err != nil {
			logger.WithError(err).Warn("amqp notifier unavailable, falling back to log notifier")
		} else {
			defer amqpNotifier.Close()
			notifier = amqpNotifier
		}
	}

	tracker := presence.NewTracker()
	ledger := service.NewCreditLedger(db, logger, notifier)

	deps := router.Deps{
		DB:       db,
		Log:      logger,
		Tracker:  tracker,
		Ledger:   ledger,
		Exchange: service.NewExchangeService(db, logger, ledger, notifier),
		Matching: service.NewMatchingService(db, tracker),
		Skills:   service.NewSkillService(db, logger),
	}

	r := router.SetupRouter(cfg, deps)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	logger.Infof("server listening on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("run server: %v", err)
	}
}

func newLogger(cfg config.LogConfig) *logrus.Logger {
	logger := logrus.New()
	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	}
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}
