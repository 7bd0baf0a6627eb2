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

	"gatekey.org/internal/auth"
	"gatekey.org/internal/config"
	"gatekey.org/internal/httpapi"
	"gatekey.org/internal/obs"
)

var version = "0.3.1"

func main() {
	obs.Init()
	obs.InitBuildInfo(version, os.Getenv("GATEKEY_COMMIT"))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var db *sql.DB
	if cfg.DatabaseURL != "" {
		db, err = sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
	}
	if db == nil {
		log.Fatal("missing DSN: set GATEKEY_PG_DSN")
	}

	opts := []auth.ServiceOption{
		auth.WithIssuerName(cfg.Issuer),
		auth.WithExpiryPolicy(auth.ExpiryPolicy{
			StandardAccessTTL:  cfg.StandardAccessTTL,
			StandardRefreshTTL: cfg.StandardRefreshTTL,
			ElevatedAccessTTL:  cfg.ElevatedAccessTTL,
			ElevatedRefreshTTL: cfg.ElevatedRefreshTTL,
		}),
	}
	if cfg.GoogleClientID != "" {
		opts = append(opts, auth.WithProvider(auth.NewGoogleProvider(auth.GoogleConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Timeout:      cfg.ProviderTimeout,
		})))
	}

	svc, err := auth.NewService(auth.NewPGStore(db), cfg.AuthSecret, opts...)
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}

	api := httpapi.New(svc, httpapi.ReadyProbe{DB: db}, version, httpapi.Options{
		LoginRatePerSecond: cfg.LoginRatePerSecond,
		LoginRateBurst:     cfg.LoginRateBurst,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting gatekey-api %s on %s", version, srv.Addr)

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
	_ = db.Close()
	log.Println("Stopped")
}
