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

	"github.com/Aviat-at/mapleCMS/internal/audit"
	"github.com/Aviat-at/mapleCMS/internal/auth"
	"github.com/Aviat-at/mapleCMS/internal/config"
	"github.com/Aviat-at/mapleCMS/internal/content"
	"github.com/Aviat-at/mapleCMS/internal/httpapi"
	"github.com/Aviat-at/mapleCMS/internal/obs"
	"github.com/Aviat-at/mapleCMS/internal/stream"
)

var version = "0.3.1"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	obs.Init()
	obs.InitBuildInfo(version, os.Getenv("MAPLE_BUILD_COMMIT"))

	// Stores: Postgres when a DSN is configured, in-memory otherwise.
	var (
		db         *sql.DB
		authStore  auth.Store
		itemStore  content.ItemStore
		readyProbe httpapi.ReadyProbe
	)
	if cfg.DatabaseURL != "" {
		db, err = sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
		authStore = auth.NewPGStore(db)
		itemStore = content.NewPGStore(db)
		readyProbe = httpapi.ReadyProbe{DB: db}
	} else {
		log.Println("no MAPLE_PG_DSN configured, using in-memory stores")
		authStore = auth.NewInMemory()
		itemStore = content.NewInMemory()
	}

	issuer, err := auth.NewTokenIssuer([]byte(cfg.AuthSecret),
		auth.WithIssuer(cfg.TokenIssuer),
		auth.WithAccessTTL(cfg.AccessTTL),
	)
	if err != nil {
		log.Fatalf("token issuer: %v", err)
	}

	refresh := auth.NewRefreshTokens(authStore.RefreshTokens(context.Background()),
		auth.WithRefreshTTL(cfg.RefreshTTL),
		auth.WithReuseHandler(func(ctx context.Context, userID, chainID string) {
			obs.ObserveReuseDetected()
			_ = audit.LogEvent(ctx, "auth.refresh.reuse_detected", map[string]any{
				"user_id":  userID,
				"chain_id": chainID,
			})
		}),
	)
	sessions := auth.NewSessions(authStore, issuer, refresh)

	events := stream.New()
	engine := content.NewEngine(itemStore, content.WithEvents(events))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := bootstrapAdmin(ctx, cfg, authStore); err != nil {
		log.Fatalf("bootstrap admin: %v", err)
	}

	// Periodic sweep of expired refresh tokens. Overlaps freely with live
	// traffic: only already-invalid records are removed.
	go func() {
		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := sessions.Sweep(ctx, time.Now().UTC()); err != nil {
					log.Printf("sweep: %v", err)
				} else if n > 0 {
					log.Printf("sweep: removed %d expired refresh tokens", n)
				}
			}
		}
	}()

	api := httpapi.New(httpapi.Options{
		Ready:    readyProbe,
		Version:  version,
		Sessions: sessions,
		Issuer:   issuer,
		Engine:   engine,
		Events:   events,
	})

	handler := api.Handler()
	handler = httpapi.RateLimit(ctx, handler, cfg.RateBurst, cfg.RatePerSecond)
	handler = httpapi.MaxBodyBytes(handler, cfg.MaxBodyBytes)
	handler = httpapi.CORS(handler)
	handler = httpapi.SecurityHeaders(handler)
	handler = httpapi.Logging(handler)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting maplecms-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	if db != nil {
		_ = db.Close()
	}
	log.Println("Stopped")
}

// bootstrapAdmin creates the initial admin account when the user table is
// empty and credentials are configured.
func bootstrapAdmin(ctx context.Context, cfg config.Config, store auth.Store) error {
	if cfg.AdminEmail == "" {
		return nil
	}
	users := store.Users(ctx)
	n, err := users.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}
	admin := &auth.User{
		Username:     "admin",
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
		Role:         auth.RoleAdmin,
		Active:       true,
	}
	if err := users.Create(ctx, admin); err != nil {
		return err
	}
	log.Printf("created bootstrap admin %s", cfg.AdminEmail)
	return nil
}
