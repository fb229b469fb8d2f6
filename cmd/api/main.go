// Command api serves the event booking HTTP API.
//
// @title Event Booking API
// @version 1.0
// @description Browse events, check seat availability and book seats without overselling.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventbooking/config"
	_ "eventbooking/docs"
	"eventbooking/internal/adapters/auth"
	"eventbooking/internal/adapters/email"
	"eventbooking/internal/adapters/queue"
	delivery "eventbooking/internal/delivery/http"
	"eventbooking/internal/delivery/http/controllers"
	"eventbooking/internal/delivery/http/middleware"
	"eventbooking/internal/domain"
	"eventbooking/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("api stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.close()
	logger.Info("storage ready", "driver", cfg.StorageDriver)

	var limiter middleware.Limiter
	rdb, err := config.NewRedisClient(ctx, cfg.Redis)
	switch {
	case err != nil:
		logger.Warn("redis unavailable, booking rate limit disabled", "addr", cfg.Redis.Addr, "err", err)
	case rdb != nil:
		defer rdb.Close()
		limiter = middleware.NewRedisLimiter(rdb, cfg.RateLimit)
	}

	publisher := newPublisher(cfg, logger)
	if c, ok := publisher.(interface{ Close() error }); ok {
		defer c.Close()
	}

	mailer, err := email.NewMailer(cfg.Email, logger)
	if err != nil {
		return err
	}
	emailSvc := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)

	authSvc := services.NewAuthService(repos.users, repos.roles,
		auth.NewBcryptHasher(auth.DefaultCost), auth.NewJWTIssuer(cfg.JWTSecret),
		emailSvc, cfg.JWTExpiry, logger)
	availability := services.NewAvailabilityCalculator(repos.events, repos.bookings, cfg.RequestTimeout)
	eventSvc := services.NewEventService(repos.events, repos.bookings, availability, cfg.RequestTimeout)
	bookingSvc := services.NewBookingService(repos.events, repos.bookings, repos.users, publisher, logger, cfg.RequestTimeout)

	if cfg.Admin.Email != "" {
		admin, err := authSvc.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.Username)
		if err != nil {
			return err
		}
		logger.Info("admin account ready", "user_id", admin.ID, "email", admin.Email)
	}

	deps := delivery.RouterDeps{
		Auth:      controllers.NewAuthController(logger, authSvc, cfg.JWTExpiry),
		Events:    controllers.NewEventController(logger, eventSvc, availability),
		Bookings:  controllers.NewBookingController(logger, bookingSvc),
		Verifier:  auth.NewJWTVerifier(cfg.JWTSecret),
		Limiter:   limiter,
		RateLimit: cfg.RateLimit,
		Logger:    logger,
	}
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           delivery.NewHandler(deps, cfg.CORSAllowedOrigins),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", cfg.Environment)
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

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

func newPublisher(cfg *config.Config, logger *slog.Logger) domain.BookingPublisher {
	if cfg.RabbitMQURL == "" {
		return queue.NewNoopPublisher(logger)
	}
	return queue.NewPublisher(cfg.RabbitMQURL, logger)
}
