package main // Entry point for the automatic cancellation sweep

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/travel-agency-api/internal/config"
	"github.com/iliyamo/travel-agency-api/internal/database"
	"github.com/iliyamo/travel-agency-api/internal/repository"
	"github.com/iliyamo/travel-agency-api/internal/sweep"
)

// The sweep is meant to run once per day from cron.  It cancels unpaid
// reservations whose departure is inside the payment window and exits.
func main() {
	dryRun := flag.Bool("dry-run", false, "log candidates without cancelling anything")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall run deadline")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	s := &sweep.Sweeper{
		ReservaRepo: repository.NewReservaRepo(db),
		SalidaRepo:  repository.NewSalidaRepo(db),
		PaqueteRepo: repository.NewPaqueteRepo(db),
		DryRun:      *dryRun,
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	res, err := s.Run(ctx)
	if err != nil {
		log.Fatalf("sweep: %v", err)
	}
	log.Printf("sweep done: evaluated=%d cancelled=%d skipped=%d failed=%d dry_run=%v",
		res.Evaluated, res.Cancelled, res.Skipped, res.Failed, *dryRun)
}
