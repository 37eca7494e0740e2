package main

import (
	"net/http"

	"github.com/rs/zerolog"

	httphandlers "mesada/internal/interfaces/http"
	"mesada/internal/shared/config"
	"mesada/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config, log zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	authMiddleware := middleware.Auth(deps.Sessions)
	protected := func(h http.HandlerFunc) http.Handler {
		return authMiddleware(h)
	}
	guardian := func(h http.HandlerFunc) http.Handler {
		return authMiddleware(middleware.RequireGuardian(h))
	}

	// Health check
	mux.HandleFunc("/health", httphandlers.HandleHealth)

	// Navigation works with or without a session
	mux.Handle("/api/navigation", middleware.OptionalAuth(deps.Sessions)(http.HandlerFunc(httphandlers.HandleNavigation)))

	// Public auth routes
	mux.HandleFunc("/api/auth/signup", deps.AuthHandler.HandleSignUp)
	mux.HandleFunc("/api/auth/signin", deps.AuthHandler.HandleSignIn)
	mux.HandleFunc("/api/auth/refresh", deps.AuthHandler.HandleRefresh)
	mux.HandleFunc("/api/auth/signout", deps.AuthHandler.HandleSignOut)
	mux.Handle("/api/auth/password", protected(deps.AuthHandler.HandleChangePassword))

	// Member screens
	mux.Handle("/api/profile", protected(deps.ProfileHandler.HandleProfile))
	mux.Handle("/api/dashboard", protected(deps.DashboardHandler.HandleDashboard))
	mux.Handle("/api/budget", protected(deps.DashboardHandler.HandleBudget))
	mux.Handle("/api/transactions", protected(deps.TransactionHandler.HandleTransactions))
	mux.Handle("/api/goals", protected(deps.GoalHandler.HandleGoals))
	mux.Handle("/api/goals/{id}/contribute", protected(deps.GoalHandler.HandleContribute))
	mux.Handle("/api/medals", protected(deps.MedalHandler.HandleMedals))
	mux.Handle("/api/notifications", protected(deps.NotificationHandler.HandleNotifications))
	mux.Handle("/api/notifications/register-device/", protected(deps.NotificationHandler.HandleRegisterDevice))
	mux.Handle("/api/tips", protected(deps.TipHandler.HandleTips))

	// Guardian-only routes
	mux.Handle("/api/goals/{id}/approve", guardian(deps.GoalHandler.HandleApprove))
	mux.Handle("/api/goals/{id}/release", guardian(deps.GoalHandler.HandleRelease))
	mux.Handle("/api/dependents", guardian(deps.DependentHandler.HandleDependents))
	mux.Handle("/api/dependents/{id}", guardian(deps.DependentHandler.HandleDependentByID))
	mux.Handle("/api/medals/{id}/prize", guardian(deps.MedalHandler.HandlePrize))

	// Apply global middleware, innermost first
	handler := middleware.Metrics(mux)(mux)
	handler = middleware.Telemetry(cfg.Telemetry.ServiceName)(handler)
	handler = middleware.CORS(cfg.Server.AllowedHosts)(handler)
	handler = middleware.Logging(log)(handler)
	handler = middleware.Recover(log)(handler)

	// Apply security middleware when TLS is enabled
	if cfg.TLS.Enabled {
		handler = middleware.SecureHeaders(middleware.SecureCookies(handler))
		log.Info().Msg("TLS security middleware enabled (HSTS + SecureCookies)")
	}

	return handler
}
