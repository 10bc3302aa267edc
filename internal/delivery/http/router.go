package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"talenttrack/internal/delivery/http/controllers"
	"talenttrack/internal/delivery/http/middleware"
	"talenttrack/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(
	webhookController *controllers.WebhookController,
	applicationController *controllers.ApplicationController,
	providerController *controllers.ProviderController,
	verifier domain.TokenVerifier,
	logger *slog.Logger,
) *http.ServeMux {
	mux := http.NewServeMux()
	requireAuth := middleware.RequireAuth(verifier, logger)

	// Provider-facing webhook; Calendly retries on any non-2xx, so this
	// route stays outside the bearer-auth wrapper.
	mux.HandleFunc("POST /webhooks/calendly", webhookController.Handle)

	// Operator API
	mux.HandleFunc("POST /applications/{applicationID}/status", requireAuth(applicationController.UpdateStatus))
	mux.HandleFunc("GET /applications/{applicationID}/history", requireAuth(applicationController.GetHistory))
	mux.HandleFunc("GET /applications/{applicationID}/interviews", requireAuth(applicationController.ListInterviews))

	// Calendly integration
	mux.HandleFunc("POST /integrations/calendly/actions", requireAuth(providerController.Action))
	mux.HandleFunc("POST /integrations/calendly/sync", requireAuth(providerController.SyncNow))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
