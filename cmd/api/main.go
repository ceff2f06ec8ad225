package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Akash94kumar/employeHR/internal/auth"
	"github.com/Akash94kumar/employeHR/internal/config"
	"github.com/Akash94kumar/employeHR/internal/hr"
	"github.com/Akash94kumar/employeHR/internal/httpapi"
	"github.com/Akash94kumar/employeHR/internal/obs"
)

var (
	version = "1.0.0"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// In-memory stores keep the binary runnable without Postgres; a DSN
	// switches both domains to the database.
	var (
		db        *sql.DB
		authStore auth.Store = auth.NewMemoryStore()
		hrStore   hr.Store   = hr.NewMemoryStore()
	)
	if cfg.PostgresDSN != "" {
		db, err = sql.Open("pgx", cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
		authStore = auth.NewPGStore(db)
		hrStore = hr.NewPGStore(db)
	}

	issuer, err := auth.NewTokenIssuer(cfg.AccessSecret, cfg.RefreshSecret,
		auth.WithAccessTTL(cfg.AccessTTL),
		auth.WithRefreshTTL(cfg.RefreshTTL),
	)
	if err != nil {
		log.Fatalf("token issuer: %v", err)
	}

	sessions := auth.NewService(authStore, issuer)
	hrSvc := hr.NewService(hrStore)

	opts := []httpapi.Option{httpapi.WithRateLimit(cfg.RateBurst, cfg.RatePerSec)}
	if cfg.ActiveRecheck {
		opts = append(opts, httpapi.WithActiveRecheck())
	}
	api := httpapi.New(httpapi.ReadyProbe{DB: db}, version, sessions, hrSvc, opts...)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting employehr-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if db != nil {
		_ = db.Close()
	}
	log.Println("Stopped")
}
