package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"biblioteca.dev/internal/library"
	"biblioteca.dev/internal/obs"
	"biblioteca.dev/internal/store/pg"
)

func main() {
	var (
		dsn      = flag.String("dsn", os.Getenv("BIBLIOTECA_PG_DSN"), "PostgreSQL DSN")
		schedule = flag.String("schedule", "0 3 * * *", "Cron schedule for the overdue sweep")
		once     = flag.Bool("once", false, "Run a single sweep and exit")
	)
	flag.Parse()

	obs.Init()
	log := obs.Logger()

	if *dsn == "" {
		log.Fatal("missing DSN: provide via -dsn or BIBLIOTECA_PG_DSN")
	}
	store, err := pg.Open(*dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer func() { _ = store.Close() }()

	loans, err := library.NewLoanService(store)
	if err != nil {
		log.Fatalf("loans: %v", err)
	}

	sweep := func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		n, err := loans.SweepOverdue(ctx)
		if err != nil {
			log.WithError(err).Error("overdue sweep failed")
			return
		}
		log.WithField("marked", n).Info("overdue sweep finished")
	}

	if *once {
		sweep()
		return
	}

	c := cron.New()
	if _, err := c.AddFunc(*schedule, sweep); err != nil {
		log.Fatalf("schedule %q: %v", *schedule, err)
	}
	c.Start()
	log.WithField("schedule", *schedule).Info("overdue sweeper started")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	<-c.Stop().Done()
	log.Info("stopped")
}
