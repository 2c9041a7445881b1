package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"biblioteca.dev/internal/auth"
	"biblioteca.dev/internal/config"
	"biblioteca.dev/internal/httpapi"
	"biblioteca.dev/internal/images"
	"biblioteca.dev/internal/library"
	"biblioteca.dev/internal/obs"
	"biblioteca.dev/internal/rbac"
	"biblioteca.dev/internal/store/pg"
)

var version = "1.2.0"

func main() {
	obs.Init()
	log := obs.Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	obs.SetLevel(cfg.LogLevel)

	if cfg.DatabaseURL == "" {
		log.Fatal("BIBLIOTECA_PG_DSN is required")
	}
	store, err := pg.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer func() { _ = store.Close() }()

	issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.TokenTTL)
	if err != nil {
		log.Fatalf("token issuer: %v", err)
	}

	users, err := library.NewUserService(store)
	if err != nil {
		log.Fatalf("users: %v", err)
	}
	books, err := library.NewBookService(store)
	if err != nil {
		log.Fatalf("books: %v", err)
	}
	loans, err := library.NewLoanService(store)
	if err != nil {
		log.Fatalf("loans: %v", err)
	}
	rbacSvc, err := rbac.NewService(store)
	if err != nil {
		log.Fatalf("rbac: %v", err)
	}
	authSvc, err := auth.NewService(users, rbacSvc, issuer)
	if err != nil {
		log.Fatalf("auth: %v", err)
	}

	var imagesClient *images.Client
	if cfg.ImagesAPIKey != "" {
		imagesClient = images.NewClient(cfg.ImagesURL, cfg.ImagesAPIKey)
	} else {
		log.Warn("BIBLIOTECA_IMAGES_API_KEY not set; image uploads disabled")
	}

	api := httpapi.New(httpapi.Options{
		Auth:         authSvc,
		Issuer:       issuer,
		Users:        users,
		Books:        books,
		Loans:        loans,
		RBAC:         rbacSvc,
		Images:       imagesClient,
		ReadyProbe:   httpapi.ReadyProbe{DB: store.DB()},
		Version:      version,
		Log:          log,
		RateBurst:    cfg.RateBurst,
		RatePerSec:   cfg.RatePerSec,
		MaxBodyBytes: cfg.MaxBodyBytes,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.WithField("addr", srv.Addr).Infof("starting biblioteca-api %s", version)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("stopped")
}
