package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"biblioteca.dev/internal/images"
	"biblioteca.dev/internal/obs"
)

func main() {
	var (
		addr      = flag.String("addr", envOr("IMAGES_ADDR", ":8000"), "Listen address")
		dir       = flag.String("dir", envOr("IMAGES_DIR", "data/images"), "Storage directory")
		baseURL   = flag.String("base-url", envOr("IMAGES_BASE_URL", "http://localhost:8000"), "Public base URL for served files")
		retention = flag.Duration("retention", 90*24*time.Hour, "Delete stored files older than this during cleanup")
		schedule  = flag.String("cleanup-schedule", "30 4 * * *", "Cron schedule for the cleanup pass")
	)
	flag.Parse()

	obs.Init()
	log := obs.Logger()

	apiKey := os.Getenv("IMAGES_API_KEY")
	srv, err := images.NewServer(*dir, apiKey, *baseURL, log)
	if err != nil {
		log.Fatalf("images: %v", err)
	}

	c := cron.New()
	if _, err := c.AddFunc(*schedule, func() {
		n, err := srv.CleanupOlderThan(*retention)
		if err != nil {
			log.WithError(err).Error("cleanup failed")
			return
		}
		log.WithField("removed", n).Info("cleanup finished")
	}); err != nil {
		log.Fatalf("schedule %q: %v", *schedule, err)
	}
	c.Start()

	httpSrv := &http.Server{
		Addr:              *addr,
		Handler:           srv.Handler(),
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.WithField("addr", *addr).Info("starting images service")
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(ctx)
	<-c.Stop().Done()
	log.Info("stopped")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
