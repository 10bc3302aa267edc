package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"talenttrack/internal/delivery/http/helpers"
	"talenttrack/internal/delivery/http/middleware"
	"talenttrack/internal/domain"
	"talenttrack/internal/services"
)

// ProviderController exposes the Calendly action gateway and the manual
// sync trigger.
type ProviderController struct {
	Logger   *slog.Logger
	Provider domain.CalendarProvider
	Poller   *services.SyncPoller
}

func NewProviderController(logger *slog.Logger, provider domain.CalendarProvider, poller *services.SyncPoller) *ProviderController {
	return &ProviderController{
		Logger:   logger,
		Provider: provider,
		Poller:   poller,
	}
}

// ActionRequest is the request body for POST /integrations/calendly/actions.
type ActionRequest struct {
	Action string `json:"action"`
}

// Validate implements helpers.Validator.
func (r *ActionRequest) Validate() []string {
	if r.Action == "" {
		return []string{"action is required"}
	}
	return nil
}

// Action godoc
// @Summary Run a read action against the scheduling provider
// @Description Forwards the provider's JSON response and HTTP status untouched. Supported actions: getScheduledEvents, getEventTypes, getCurrentUser.
// @Tags integrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controllers.ActionRequest true "Action name"
// @Success 200 {object} object "provider JSON, passthrough"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (provider settings missing)"
// @Failure 502 {object} helpers.APIResponse "error.code: upstream_unavailable"
// @Router /integrations/calendly/actions [post]
func (c *ProviderController) Action(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.AdminIDFromContext(r.Context()); !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req ActionRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	body, status, err := c.Provider.Passthrough(r.Context(), req.Action)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "provider settings not configured")
			return
		}
		if errors.Is(err, domain.ErrUpstreamUnavailable) {
			helpers.WriteJSONError(w, http.StatusBadGateway, helpers.ErrCodeUpstream, "scheduling provider unavailable")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteRawJSON(w, status, body)
}

// SyncSuccessResponse is the success envelope for POST /integrations/calendly/sync.
type SyncSuccessResponse struct {
	Data  *domain.ReconcileReport `json:"data"`
	Error *helpers.APIError       `json:"error"`
}

// SyncNow godoc
// @Summary Trigger an immediate calendar reconciliation
// @Description Runs one reconciliation pass now. If a run is already in progress the request is accepted and skipped rather than queued.
// @Tags integrations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.SyncSuccessResponse
// @Success 202 {object} helpers.APIResponse "run already in progress, skipped"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /integrations/calendly/sync [post]
func (c *ProviderController) SyncNow(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.AdminIDFromContext(r.Context()); !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	report, skipped, err := c.Poller.SyncNow(r.Context())
	if skipped {
		helpers.WriteJSONSuccess(w, http.StatusAccepted, map[string]bool{"skipped": true})
		return
	}
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "manual sync failed", "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, report)
}
