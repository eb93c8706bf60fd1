package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/SamuelOshin/XlideLand-RealEstate/internal/config"
	"github.com/SamuelOshin/XlideLand-RealEstate/internal/delivery"
	"github.com/SamuelOshin/XlideLand-RealEstate/internal/queue"
	"github.com/SamuelOshin/XlideLand-RealEstate/internal/worker"
)

const usage = `notification worker

Usage:
  worker process [--batch-size N]     process pending tasks once
  worker retry-failed                 requeue retry-eligible failed tasks
  worker cleanup [--older-than DAYS]  purge old completed tasks
  worker status                       print queue counts and recent tasks
  worker run                          long-running loop (poll + scheduled sweeps)

Exit code is 0 regardless of individual task outcomes; nonzero only when the
store is unreachable or the command itself fails.
`

// Leases older than this belong to a worker that died mid-batch.
const staleLeaseWindow = 10 * time.Minute

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

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
	proc := worker.NewProcessor(store, newDeliverer(cfg))

	ctx := context.Background()
	switch os.Args[1] {
	case "process":
		fs := flag.NewFlagSet("process", flag.ExitOnError)
		batch := fs.Int("batch-size", cfg.BatchSize, "tasks per batch")
		fs.Parse(os.Args[2:])
		// Cron-style deployments have no long-running loop to reclaim
		// leases from a crashed run, so each one-shot pass self-heals.
		if _, err := proc.RecoverStale(ctx, staleLeaseWindow); err != nil {
			log.Fatal().Err(err).Msg("recover stale")
		}
		n, err := proc.ProcessPending(ctx, *batch)
		if err != nil {
			log.Fatal().Err(err).Msg("process pending")
		}
		fmt.Printf("processed %d tasks\n", n)

	case "retry-failed":
		n, err := proc.RetryFailed(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("retry failed")
		}
		fmt.Printf("requeued %d tasks\n", n)

	case "cleanup":
		fs := flag.NewFlagSet("cleanup", flag.ExitOnError)
		days := fs.Int("older-than", cfg.RetentionDays, "retention in days")
		fs.Parse(os.Args[2:])
		n, err := proc.Cleanup(ctx, time.Duration(*days)*24*time.Hour)
		if err != nil {
			log.Fatal().Err(err).Msg("cleanup")
		}
		fmt.Printf("purged %d tasks\n", n)

	case "status":
		if err := printStatus(ctx, store, cfg); err != nil {
			log.Fatal().Err(err).Msg("status")
		}

	case "run":
		runLoop(cfg, proc)

	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func buildAdapters(cfg *config.Config) (*delivery.SMTPMailer, *delivery.WhatsAppClient) {
	mailer := delivery.NewSMTPMailer(delivery.SMTPConfig{
		Host: cfg.SMTPHost, Port: cfg.SMTPPort,
		User: cfg.SMTPUser, Pass: cfg.SMTPPass,
		From: cfg.FromEmail,
	})
	wa := delivery.NewWhatsAppClient(delivery.WhatsAppConfig{
		Token:         cfg.WhatsAppToken,
		PhoneNumberID: cfg.WhatsAppPhoneNumberID,
		CountryCode:   cfg.CountryCode,
	})
	return mailer, wa
}

func newDeliverer(cfg *config.Config) *delivery.Deliverer {
	mailer, wa := buildAdapters(cfg)
	return &delivery.Deliverer{
		Email:      mailer,
		WhatsApp:   wa,
		AdminEmail: cfg.AdminEmail,
		AdminPhone: cfg.AdminPhone,
	}
}

func printStatus(ctx context.Context, store queue.Store, cfg *config.Config) error {
	counts, err := store.CountByStatus(ctx)
	if err != nil {
		return err
	}
	fmt.Println("Notification Queue Status")
	fmt.Println("=========================")
	fmt.Printf("pending:    %d\n", counts["pending"])
	fmt.Printf("processing: %d\n", counts["processing"])
	fmt.Printf("completed:  %d\n", counts["completed"])
	fmt.Printf("failed:     %d\n", counts["failed"])

	recent, err := store.ListRecent(ctx, 5)
	if err != nil {
		return err
	}
	if len(recent) > 0 {
		fmt.Println("\nRecent tasks:")
		for _, t := range recent {
			line := fmt.Sprintf("  %s  %-15s %-10s %s", t.ID, t.Kind, t.Status, t.CreatedAt.Format(time.RFC3339))
			if t.ErrorMessage != "" {
				line += "  (" + t.ErrorMessage + ")"
			}
			fmt.Println(line)
		}
	}

	mailer, wa := buildAdapters(cfg)
	fmt.Println("\nTransports:")
	fmt.Printf("  email notifications: %v (smtp configured: %v)\n",
		cfg.EmailNotifications, mailer.Configured())
	fmt.Printf("  user confirmations:  %v\n", cfg.UserConfirmations)
	fmt.Printf("  whatsapp:            %v (api configured: %v)\n",
		cfg.WhatsAppNotifications, wa.Configured())
	return nil
}

// runLoop is the long-running mode: pending tasks are processed on a poll
// ticker, while the retry sweep and retention cleanup run on cron schedules.
func runLoop(cfg *config.Config, proc *worker.Processor) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Anything still leased by a previous run that died is reclaimed first.
	if _, err := proc.RecoverStale(ctx, staleLeaseWindow); err != nil {
		log.Error().Err(err).Msg("recover stale")
	}

	c := cron.New()
	c.AddFunc("*/5 * * * *", func() {
		if _, err := proc.RetryFailed(ctx); err != nil {
			log.Error().Err(err).Msg("retry sweep")
		}
	})
	c.AddFunc("0 3 * * *", func() {
		if _, err := proc.Cleanup(ctx, cfg.Retention()); err != nil {
			log.Error().Err(err).Msg("retention cleanup")
		}
	})
	c.Start()
	defer c.Stop()

	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	log.Info().Dur("poll", cfg.PollInterval).Int("batch_size", cfg.BatchSize).Msg("worker loop started")
	for {
		select {
		case <-sig:
			log.Info().Msg("worker shutting down")
			return
		case <-ticker.C:
			if _, err := proc.ProcessPending(ctx, cfg.BatchSize); err != nil {
				log.Error().Err(err).Msg("process pending")
			}
		}
	}
}
