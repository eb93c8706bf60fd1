package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/SamuelOshin/XlideLand-RealEstate/internal/api"
	"github.com/SamuelOshin/XlideLand-RealEstate/internal/config"
	"github.com/SamuelOshin/XlideLand-RealEstate/internal/delivery"
	"github.com/SamuelOshin/XlideLand-RealEstate/internal/dispatch"
	"github.com/SamuelOshin/XlideLand-RealEstate/internal/notify"
	"github.com/SamuelOshin/XlideLand-RealEstate/internal/queue"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	db, err := sql.Open("sqlite", cfg.SQLiteDSN())
	if err != nil {
		log.Fatal().Err(err).Msg("open db")
	}
	defer db.Close()
	db.SetMaxOpenConns(1) // SQLite single writer

	if err := queue.EnsureSchema(db); err != nil {
		log.Fatal().Err(err).Msg("ensure schema")
	}
	store := queue.NewSQLiteStore(db)

	deliverer := &delivery.Deliverer{
		Email: delivery.NewSMTPMailer(delivery.SMTPConfig{
			Host: cfg.SMTPHost, Port: cfg.SMTPPort,
			User: cfg.SMTPUser, Pass: cfg.SMTPPass,
			From: cfg.FromEmail,
		}),
		WhatsApp: delivery.NewWhatsAppClient(delivery.WhatsAppConfig{
			Token:         cfg.WhatsAppToken,
			PhoneNumberID: cfg.WhatsAppPhoneNumberID,
			CountryCode:   cfg.CountryCode,
		}),
		AdminEmail: cfg.AdminEmail,
		AdminPhone: cfg.AdminPhone,
	}

	var strategy dispatch.Strategy
	switch cfg.Strategy {
	case "sync":
		strategy = dispatch.NewSync(deliverer)
	case "threaded":
		strategy = dispatch.NewThreaded(deliverer)
	default:
		strategy = dispatch.NewDurable(store, cfg.MaxRetries)
	}
	log.Info().Str("strategy", strategy.Name()).Msg("dispatch strategy selected")

	manager := notify.NewManager(strategy, notify.Flags{
		EmailNotifications: cfg.EmailNotifications,
		UserConfirmations:  cfg.UserConfirmations,
		WhatsAppEnabled:    cfg.WhatsAppNotifications,
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: api.NewServer(manager, store)}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
