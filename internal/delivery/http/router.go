package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventbooking/config"
	"eventbooking/internal/delivery/http/controllers"
	"eventbooking/internal/delivery/http/middleware"
	"eventbooking/internal/domain"
)

// RouterDeps holds what NewRouter needs to mount every route.
type RouterDeps struct {
	Auth      *controllers.AuthController
	Events    *controllers.EventController
	Bookings  *controllers.BookingController
	Verifier  domain.TokenVerifier
	Limiter   middleware.Limiter
	RateLimit config.RateLimitConfig
	Logger    *slog.Logger
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(d RouterDeps) *http.ServeMux {
	mux := http.NewServeMux()

	authed := middleware.RequireAuth(d.Verifier, d.Logger)
	admin := func(next http.HandlerFunc) http.HandlerFunc {
		return authed(middleware.RequireRole(domain.RoleAdmin)(next))
	}
	limited := middleware.RateLimit(d.Limiter, d.RateLimit, d.Logger)

	mux.HandleFunc("GET /health", controllers.Health)

	// Auth
	mux.HandleFunc("POST /api/auth/register", d.Auth.Register)
	mux.HandleFunc("POST /api/auth/login", d.Auth.Login)

	// Events
	mux.HandleFunc("GET /api/events", d.Events.ListPublished)
	mux.HandleFunc("GET /api/events/{eventID}", d.Events.Get)
	mux.HandleFunc("GET /api/events/{eventID}/availability", d.Events.GetAvailability)
	mux.HandleFunc("POST /api/events", admin(d.Events.Create))
	mux.HandleFunc("PUT /api/events/{eventID}", admin(d.Events.Update))
	mux.HandleFunc("DELETE /api/events/{eventID}", admin(d.Events.Delete))
	mux.HandleFunc("GET /api/admin/events", admin(d.Events.ListAll))

	// Bookings
	mux.HandleFunc("POST /api/bookings", authed(limited(d.Bookings.Create)))
	mux.HandleFunc("GET /api/bookings/me", authed(d.Bookings.ListMine))
	mux.HandleFunc("GET /api/bookings/event/{eventID}", admin(d.Bookings.ListForEvent))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

// NewHandler wraps the router with CORS and request logging.
func NewHandler(d RouterDeps, allowedOrigins []string) http.Handler {
	return middleware.CORS(allowedOrigins, middleware.LoggingMiddleware(d.Logger, NewRouter(d)))
}
