package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"talenttrack/internal/delivery/http/helpers"
	"talenttrack/internal/delivery/http/middleware"
	"talenttrack/internal/domain"
	"talenttrack/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCalendarProvider implements domain.CalendarProvider for handler tests.
type fakeCalendarProvider struct {
	passthroughBody   json.RawMessage
	passthroughStatus int
	passthroughErr    error
	lastAction        string
}

func (f *fakeCalendarProvider) ListScheduledEvents(ctx context.Context, window domain.EventWindow) ([]*domain.ScheduledEvent, error) {
	return nil, nil
}

func (f *fakeCalendarProvider) ListEventTypes(ctx context.Context) ([]*domain.EventType, error) {
	return nil, nil
}

func (f *fakeCalendarProvider) GetCurrentUser(ctx context.Context) (*domain.ProviderUser, error) {
	return nil, nil
}

func (f *fakeCalendarProvider) Passthrough(ctx context.Context, action string) (json.RawMessage, int, error) {
	f.lastAction = action
	if f.passthroughErr != nil {
		return nil, 0, f.passthroughErr
	}
	return f.passthroughBody, f.passthroughStatus, nil
}

func newProviderController(provider *fakeCalendarProvider, sync *fakeCalendarSync) *ProviderController {
	poller := services.NewSyncPoller(sync, testLogger, time.Minute)
	return NewProviderController(testLogger, provider, poller)
}

func authedRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, bytes.NewBufferString(body))
	}
	return req.WithContext(middleware.SetAdminID(req.Context(), "admin-123"))
}

func TestProviderController_Action(t *testing.T) {
	provider := &fakeCalendarProvider{
		passthroughBody:   json.RawMessage(`{"collection": [], "pagination": {"next_page_token": null}}`),
		passthroughStatus: http.StatusOK,
	}
	ctrl := newProviderController(provider, &fakeCalendarSync{})

	req := authedRequest(http.MethodPost, "/integrations/calendly/actions", `{"action": "getScheduledEvents"}`)
	rec := httptest.NewRecorder()
	ctrl.Action(rec, req)

	// The provider's body and status are forwarded without the envelope.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, string(provider.passthroughBody), rec.Body.String())
	assert.Equal(t, "getScheduledEvents", provider.lastAction)
}

func TestProviderController_Action_ForwardsProviderStatus(t *testing.T) {
	provider := &fakeCalendarProvider{
		passthroughBody:   json.RawMessage(`{"message": "insufficient scope"}`),
		passthroughStatus: http.StatusForbidden,
	}
	ctrl := newProviderController(provider, &fakeCalendarSync{})

	req := authedRequest(http.MethodPost, "/integrations/calendly/actions", `{"action": "getCurrentUser"}`)
	rec := httptest.NewRecorder()
	ctrl.Action(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"message": "insufficient scope"}`, rec.Body.String())
}

func TestProviderController_Action_Errors(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		authed      bool
		provider    *fakeCalendarProvider
		wantStatus  int
		wantErrCode string
	}{
		{
			name:        "unauthenticated",
			body:        `{"action": "getEventTypes"}`,
			provider:    &fakeCalendarProvider{},
			wantStatus:  http.StatusUnauthorized,
			wantErrCode: helpers.ErrCodeUnauthorized,
		},
		{
			name:        "missing action",
			body:        `{}`,
			authed:      true,
			provider:    &fakeCalendarProvider{},
			wantStatus:  http.StatusBadRequest,
			wantErrCode: helpers.ErrCodeBadRequest,
		},
		{
			name:        "unknown action",
			body:        `{"action": "deleteEverything"}`,
			authed:      true,
			provider:    &fakeCalendarProvider{passthroughErr: domain.ErrInvalidInput},
			wantStatus:  http.StatusBadRequest,
			wantErrCode: helpers.ErrCodeBadRequest,
		},
		{
			name:        "provider settings missing",
			body:        `{"action": "getEventTypes"}`,
			authed:      true,
			provider:    &fakeCalendarProvider{passthroughErr: domain.ErrNotFound},
			wantStatus:  http.StatusNotFound,
			wantErrCode: helpers.ErrCodeNotFound,
		},
		{
			name:        "upstream unavailable",
			body:        `{"action": "getEventTypes"}`,
			authed:      true,
			provider:    &fakeCalendarProvider{passthroughErr: domain.ErrUpstreamUnavailable},
			wantStatus:  http.StatusBadGateway,
			wantErrCode: helpers.ErrCodeUpstream,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := newProviderController(tt.provider, &fakeCalendarSync{})

			req := httptest.NewRequest(http.MethodPost, "/integrations/calendly/actions", bytes.NewBufferString(tt.body))
			if tt.authed {
				req = req.WithContext(middleware.SetAdminID(req.Context(), "admin-123"))
			}
			rec := httptest.NewRecorder()
			ctrl.Action(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decodeEnvelope(t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantErrCode, resp.Error.Code)
		})
	}
}

func TestProviderController_SyncNow(t *testing.T) {
	sync := &fakeCalendarSync{reconcileReport: &domain.ReconcileReport{RunID: "run-9", EventsSeen: 3, Created: 1}}
	ctrl := newProviderController(&fakeCalendarProvider{}, sync)

	req := authedRequest(http.MethodPost, "/integrations/calendly/sync", "")
	rec := httptest.NewRecorder()
	ctrl.SyncNow(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp SyncSuccessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Data)
	assert.Equal(t, "run-9", resp.Data.RunID)
	assert.Equal(t, 3, resp.Data.EventsSeen)
}

func TestProviderController_SyncNow_SkippedDuringActiveRun(t *testing.T) {
	sync := &fakeCalendarSync{
		reconcileStarted: make(chan struct{}),
		reconcileGate:    make(chan struct{}),
	}
	poller := services.NewSyncPoller(sync, testLogger, time.Minute)
	ctrl := NewProviderController(testLogger, &fakeCalendarProvider{}, poller)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _, _ = poller.SyncNow(context.Background())
	}()
	<-sync.reconcileStarted

	req := authedRequest(http.MethodPost, "/integrations/calendly/sync", "")
	rec := httptest.NewRecorder()
	ctrl.SyncNow(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"data": {"skipped": true}, "error": null}`, rec.Body.String())

	close(sync.reconcileGate)
	<-done
}
