package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"talenttrack/internal/delivery/http/helpers"
	"talenttrack/internal/delivery/http/middleware"
	"talenttrack/internal/domain"
)

// uuidRegex matches a canonical UUID string (8-4-4-4-12 hex).
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// ApplicationController exposes the operator-facing workflow endpoints.
type ApplicationController struct {
	Logger   *slog.Logger
	Workflow domain.StatusWorkflowService
	Sync     domain.CalendarSyncService
}

func NewApplicationController(logger *slog.Logger, workflow domain.StatusWorkflowService, sync domain.CalendarSyncService) *ApplicationController {
	return &ApplicationController{
		Logger:   logger,
		Workflow: workflow,
		Sync:     sync,
	}
}

// UpdateStatusRequest is the request body for POST /applications/{applicationID}/status.
// Status accepts the canonical eight-value vocabulary or the legacy
// three-value one (waiting, approved, rejected).
type UpdateStatusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

// Validate implements helpers.Validator.
func (r *UpdateStatusRequest) Validate() []string {
	r.Status = strings.TrimSpace(r.Status)
	if r.Status == "" {
		return []string{"status is required"}
	}
	return nil
}

// UpdateStatusSuccessResponse is the success envelope for POST /applications/{applicationID}/status.
type UpdateStatusSuccessResponse struct {
	Data  *domain.TransitionResult `json:"data"`
	Error *helpers.APIError        `json:"error"`
}

// UpdateStatus godoc
// @Summary Request an application status transition
// @Description Validates the requested status against the workflow and records the attempt in the status ledger. Invalid transitions are recorded with transition_valid=false and leave the status unchanged.
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param applicationID path string true "Application ID (UUID)"
// @Param body body controllers.UpdateStatusRequest true "Requested status (canonical or legacy) and optional note"
// @Success 200 {object} controllers.UpdateStatusSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /applications/{applicationID}/status [post]
func (c *ApplicationController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	applicationID := r.PathValue("applicationID")
	if !uuidRegex.MatchString(applicationID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid applicationID")
		return
	}
	adminID, ok := middleware.AdminIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	var req UpdateStatusRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	var result *domain.TransitionResult
	var err error
	if status, isCanonical := domain.ParseStatus(req.Status); isCanonical {
		result, err = c.Workflow.RequestTransition(r.Context(), applicationID, status, &adminID, req.Note)
	} else {
		switch legacy := domain.LegacyStatus(req.Status); legacy {
		case domain.LegacyWaiting, domain.LegacyApproved, domain.LegacyRejected:
			result, err = c.Workflow.RequestLegacyTransition(r.Context(), applicationID, legacy, &adminID, req.Note)
		default:
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "unknown status "+req.Status)
			return
		}
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "application not found")
			return
		}
		if errors.Is(err, domain.ErrConflict) {
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "application was modified concurrently, refetch and retry")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// HistorySuccessResponse is the success envelope for GET /applications/{applicationID}/history.
type HistorySuccessResponse struct {
	Data  []*domain.StatusHistoryEntry `json:"data"`
	Error *helpers.APIError            `json:"error"`
}

// GetHistory godoc
// @Summary Get the full status ledger for an application
// @Description Returns every transition attempt, valid or not, newest first, with actor display names resolved. Operator UIs poll this on a short interval.
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param applicationID path string true "Application ID (UUID)"
// @Success 200 {object} controllers.HistorySuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /applications/{applicationID}/history [get]
func (c *ApplicationController) GetHistory(w http.ResponseWriter, r *http.Request) {
	applicationID := r.PathValue("applicationID")
	if !uuidRegex.MatchString(applicationID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid applicationID")
		return
	}
	if _, ok := middleware.AdminIDFromContext(r.Context()); !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	entries, err := c.Workflow.GetHistory(r.Context(), applicationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "application not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, entries)
}

// InterviewsSuccessResponse is the success envelope for GET /applications/{applicationID}/interviews.
type InterviewsSuccessResponse struct {
	Data  []*domain.Interview `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// ListInterviews godoc
// @Summary List interviews for an application
// @Description Returns all interview rows for the application, most recent scheduled time first, including cancelled ones.
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param applicationID path string true "Application ID (UUID)"
// @Success 200 {object} controllers.InterviewsSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /applications/{applicationID}/interviews [get]
func (c *ApplicationController) ListInterviews(w http.ResponseWriter, r *http.Request) {
	applicationID := r.PathValue("applicationID")
	if !uuidRegex.MatchString(applicationID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid applicationID")
		return
	}
	if _, ok := middleware.AdminIDFromContext(r.Context()); !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	interviews, err := c.Sync.ListInterviews(r.Context(), applicationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "application not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, interviews)
}
