package controllers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"talenttrack/internal/domain"
)

// Webhook event kinds delivered by Calendly.
const (
	webhookInviteeCreated  = "invitee.created"
	webhookInviteeCanceled = "invitee.canceled"
)

// WebhookController ingests Calendly webhook notifications. Responses use
// the provider-facing wire shapes, not the admin API envelope, so Calendly's
// redelivery behaves as expected.
type WebhookController struct {
	Logger  *slog.Logger
	Service domain.CalendarSyncService
}

func NewWebhookController(logger *slog.Logger, svc domain.CalendarSyncService) *WebhookController {
	return &WebhookController{
		Logger:  logger,
		Service: svc,
	}
}

// webhookPayload is the raw Calendly webhook body. Pointer fields distinguish
// absent from empty so validation can reject malformed payloads outright.
type webhookPayload struct {
	Event   *string `json:"event"`
	Payload struct {
		Event struct {
			URI              *string `json:"uri"`
			StartTime        *string `json:"start_time"`
			MeetingURL       *string `json:"meeting_url"`
			EventMemberships []struct {
				User struct {
					Email string `json:"email"`
					Name  string `json:"name"`
				} `json:"user"`
			} `json:"event_memberships"`
			EventGuests []struct {
				Email string `json:"email"`
				Name  string `json:"name"`
			} `json:"event_guests"`
		} `json:"event"`
	} `json:"payload"`
}

// toInviteeEvent validates the payload into a typed event. No untyped
// provider JSON travels past this boundary.
func (p *webhookPayload) toInviteeEvent() (*domain.InviteeEvent, error) {
	if p.Event == nil {
		return nil, errors.New("missing event kind")
	}
	kind := *p.Event
	if kind != webhookInviteeCreated && kind != webhookInviteeCanceled {
		return nil, errors.New("unsupported event kind: " + kind)
	}
	ev := p.Payload.Event
	if ev.URI == nil || *ev.URI == "" {
		return nil, errors.New("missing payload.event.uri")
	}
	out := &domain.InviteeEvent{
		Kind:     kind,
		EventURI: *ev.URI,
	}
	if kind == webhookInviteeCanceled {
		return out, nil
	}
	if ev.StartTime == nil {
		return nil, errors.New("missing payload.event.start_time")
	}
	start, err := time.Parse(time.RFC3339, *ev.StartTime)
	if err != nil {
		return nil, errors.New("invalid payload.event.start_time")
	}
	out.StartTime = start
	if len(ev.EventGuests) == 0 || ev.EventGuests[0].Email == "" {
		return nil, errors.New("missing candidate email in event_guests")
	}
	out.CandidateEmail = ev.EventGuests[0].Email
	if len(ev.EventMemberships) > 0 && ev.EventMemberships[0].User.Email != "" {
		email := ev.EventMemberships[0].User.Email
		out.InterviewerEmail = &email
	}
	if ev.MeetingURL != nil && *ev.MeetingURL != "" {
		out.MeetingURL = ev.MeetingURL
	}
	return out, nil
}

// Handle godoc
// @Summary Ingest a Calendly webhook notification
// @Description Handles invitee.created and invitee.canceled events. Duplicate deliveries of the same event are no-ops. Error statuses let Calendly's own redelivery retry the call.
// @Tags webhooks
// @Accept json
// @Produce json
// @Success 200 {object} map[string]bool "{\"success\": true}"
// @Failure 400 {object} map[string]string "malformed payload"
// @Failure 404 {object} map[string]string "no matching application or interview"
// @Failure 500 {object} map[string]string "internal failure"
// @Router /webhooks/calendly [post]
func (c *WebhookController) Handle(w http.ResponseWriter, r *http.Request) {
	var payload webhookPayload
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&payload); err != nil {
		writeWebhookError(w, http.StatusBadRequest, "malformed payload")
		return
	}
	ev, err := payload.toInviteeEvent()
	if err != nil {
		writeWebhookError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch ev.Kind {
	case webhookInviteeCreated:
		_, err = c.Service.ApplyInviteeCreated(r.Context(), ev)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				writeWebhookError(w, http.StatusNotFound, "Application not found")
				return
			}
			if errors.Is(err, domain.ErrConflict) {
				// Lost a status race; Calendly will redeliver.
				writeWebhookError(w, http.StatusConflict, "Concurrent update, retry")
				return
			}
			c.Logger.ErrorContext(r.Context(), "webhook processing failed", "event", ev.EventURI, "err", err)
			writeWebhookError(w, http.StatusInternalServerError, "Internal error")
			return
		}
	case webhookInviteeCanceled:
		if err := c.Service.ApplyInviteeCanceled(r.Context(), ev.EventURI); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				writeWebhookError(w, http.StatusNotFound, "Interview not found")
				return
			}
			c.Logger.ErrorContext(r.Context(), "webhook processing failed", "event", ev.EventURI, "err", err)
			writeWebhookError(w, http.StatusInternalServerError, "Internal error")
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

func writeWebhookError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
