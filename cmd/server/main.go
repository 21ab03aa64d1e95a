package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"invoice-dashboard-backend/internal/auth"
	"invoice-dashboard-backend/internal/cache"
	"invoice-dashboard-backend/internal/config"
	handler "invoice-dashboard-backend/internal/handlers"
	"invoice-dashboard-backend/internal/models"
	"invoice-dashboard-backend/internal/repository"
	"invoice-dashboard-backend/internal/routes"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("server exited", "module", "main", "outcome", "failure", "error", err.Error())
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(config.NewLogger(os.Stdout, cfg.LogLevel))

	db, err := config.InitDB(cfg)
	if err != nil {
		return err
	}

	if len(args) > 0 && args[0] == "migrate" {
		return migrate(context.Background(), db, cfg)
	}
	if cfg.AutoMigrate {
		if err := automigrate(db); err != nil {
			return err
		}
	}

	var (
		pages       cache.Pages = cache.Nop{}
		revocations auth.RevocationStore
	)
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := cache.Connect(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			return err
		}
		defer client.Close()
		pages = cache.NewRedisPages(client, cfg.PageCacheTTL)
		revocations = cache.NewRedisRevocations(client)
	} else {
		slog.Warn("redis not configured, page cache and logout revocation disabled", "module", "main")
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	// CORS config
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-Request-Id"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-Id", "X-Cache"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, db, routes.Options{
		Pages:    pages,
		Sessions: auth.NewSessionManager(cfg.SessionSecret, cfg.SessionTTL, revocations),
		Cookie:   handler.CookieConfig{Name: cfg.SessionCookie, Secure: cfg.CookieSecure},
		Gate:     auth.NewGate(),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "module", "main", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("http server stopped", "module", "main", "outcome", "success")
	return nil
}

func automigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Customer{},
		&models.Invoice{},
		&models.User{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

// migrate creates the schema and the configured operator account.
func migrate(ctx context.Context, db *gorm.DB, cfg config.Config) error {
	if err := automigrate(db); err != nil {
		return err
	}
	if !cfg.SeedUser.Enabled() {
		slog.Info("no seed user configured", "module", "main", "operation", "migrate")
		return nil
	}

	hashed, err := auth.HashPassword(cfg.SeedUser.Password, cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}
	created, err := repository.NewUserRepository(db).CreateIfMissing(ctx, &models.User{
		Name:     cfg.SeedUser.Name,
		Email:    cfg.SeedUser.Email,
		Password: hashed,
	})
	if err != nil {
		return fmt.Errorf("seed user: %w", err)
	}
	slog.Info("migrate completed", "module", "main", "operation", "migrate", "outcome", "success",
		"email", cfg.SeedUser.Email, "user_created", created)
	return nil
}
