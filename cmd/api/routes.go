package main

import (
	"log"
	"net/http"

	httphandlers "mietwerk/internal/interfaces/http"
	"mietwerk/internal/shared/config"
	"mietwerk/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", httphandlers.HandleHealth)

	// Protected routes
	authMiddleware := middleware.Auth(deps.JWT)

	mux.Handle("/api/match/rule", authMiddleware(http.HandlerFunc(deps.MatchHandler.HandleRuleMatch)))
	mux.Handle("/api/match/bulk", authMiddleware(http.HandlerFunc(deps.MatchHandler.HandleBulkMatch)))
	mux.Handle("/api/rules/", authMiddleware(http.HandlerFunc(deps.RuleHandler.HandleRules)))
	mux.Handle("/api/rules/{id}", authMiddleware(http.HandlerFunc(deps.RuleHandler.HandleRuleByID)))
	mux.Handle("/api/transactions/", authMiddleware(http.HandlerFunc(deps.TransactionHandler.HandleTransactions)))
	mux.Handle("/api/transactions/{id}", authMiddleware(http.HandlerFunc(deps.TransactionHandler.HandleTransactionByID)))
	mux.Handle("/api/transactions/{id}/ignore", authMiddleware(http.HandlerFunc(deps.TransactionHandler.HandleIgnoreTransaction)))

	// Apply global middleware
	var handler http.Handler = middleware.Tracing(mux)
	if cfg.Telemetry.Enabled {
		handler = middleware.Telemetry(handler)
	}
	handler = middleware.Logging(middleware.CORS(cfg.Server.AllowedHosts)(handler))

	// Apply security middleware when TLS is enabled
	if cfg.TLS.Enabled {
		handler = middleware.HSTS(middleware.SecureCookies(handler))
		log.Println("TLS security middleware enabled (HSTS + SecureCookies)")
	}

	return handler
}
