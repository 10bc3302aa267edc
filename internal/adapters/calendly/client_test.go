package calendly

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"talenttrack/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSettingsRepo implements domain.ProviderSettingsRepository for tests.
type fakeSettingsRepo struct {
	settings *domain.ProviderSettings
	err      error
}

func (f *fakeSettingsRepo) Get(ctx context.Context) (*domain.ProviderSettings, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.settings, nil
}

func testSettings() *fakeSettingsRepo {
	return &fakeSettingsRepo{settings: &domain.ProviderSettings{
		APIToken:        "tok-123",
		OrganizationURI: "https://api.calendly.com/organizations/ORG1",
	}}
}

func TestClient_ListScheduledEvents(t *testing.T) {
	var requests []*http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.Clone(context.Background()))
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page_token") == "" {
			fmt.Fprint(w, `{
				"collection": [{
					"uri": "https://api.calendly.com/scheduled_events/EV1",
					"name": "Technical Interview",
					"status": "active",
					"start_time": "2026-03-10T14:00:00Z",
					"end_time": "2026-03-10T14:45:00Z",
					"location": {"join_url": "https://meet.example.com/ev1"},
					"event_memberships": [{"user_email": "recruiter@example.com"}],
					"event_guests": [{"email": "jane@example.com"}]
				}],
				"pagination": {"next_page_token": "tok-page-2"}
			}`)
			return
		}
		fmt.Fprint(w, `{
			"collection": [{
				"uri": "https://api.calendly.com/scheduled_events/EV2",
				"status": "canceled",
				"start_time": "2026-03-11T09:00:00Z"
			}],
			"pagination": {"next_page_token": null}
		}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), testSettings())
	window := domain.EventWindow{MinStartTime: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}
	events, err := client.ListScheduledEvents(context.Background(), window)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "https://api.calendly.com/scheduled_events/EV1", events[0].URI)
	assert.Equal(t, domain.ProviderEventActive, events[0].Status)
	assert.Equal(t, "https://meet.example.com/ev1", events[0].MeetingURL)
	assert.Equal(t, []string{"jane@example.com"}, events[0].GuestEmails)
	assert.Equal(t, []string{"recruiter@example.com"}, events[0].MemberEmails)
	assert.Equal(t, domain.ProviderEventCanceled, events[1].Status)

	require.Len(t, requests, 2)
	first := requests[0]
	assert.Equal(t, "Bearer tok-123", first.Header.Get("Authorization"))
	assert.Equal(t, "https://api.calendly.com/organizations/ORG1", first.URL.Query().Get("organization"))
	assert.Equal(t, "2026-03-01T00:00:00Z", first.URL.Query().Get("min_start_time"))
	assert.Equal(t, "100", first.URL.Query().Get("count"))
	assert.Equal(t, "tok-page-2", requests[1].URL.Query().Get("page_token"))
}

func TestClient_ListScheduledEvents_MissingRequiredField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"collection": [{"uri": "https://api.calendly.com/scheduled_events/EV1", "start_time": "2026-03-10T14:00:00Z"}], "pagination": {}}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), testSettings())
	_, err := client.ListScheduledEvents(context.Background(), domain.EventWindow{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestClient_ListScheduledEvents_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), testSettings())
	_, err := client.ListScheduledEvents(context.Background(), domain.EventWindow{})
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestClient_ListScheduledEvents_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, nil, testSettings())
	_, err := client.ListScheduledEvents(context.Background(), domain.EventWindow{})
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestClient_ListEventTypes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/event_types", r.URL.Path)
		fmt.Fprint(w, `{"collection": [{"uri": "https://api.calendly.com/event_types/ET1", "name": "Tech Screen", "duration": 45, "active": true}]}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), testSettings())
	types, err := client.ListEventTypes(context.Background())
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.Equal(t, "Tech Screen", types[0].Name)
	assert.Equal(t, 45, types[0].Duration)
	assert.True(t, types[0].Active)
}

func TestClient_GetCurrentUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/me", r.URL.Path)
		fmt.Fprint(w, `{"resource": {"uri": "https://api.calendly.com/users/U1", "name": "Recruiting Bot", "email": "bot@example.com"}}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), testSettings())
	user, err := client.GetCurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://api.calendly.com/users/U1", user.URI)
	assert.Equal(t, "bot@example.com", user.Email)
}

func TestClient_Passthrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message": "insufficient scope"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), testSettings())
	body, status, err := client.Passthrough(context.Background(), ActionGetCurrentUser)
	require.NoError(t, err)

	// The provider's body and status come back untouched.
	assert.Equal(t, http.StatusForbidden, status)
	assert.JSONEq(t, `{"message": "insufficient scope"}`, string(body))
}

func TestClient_Passthrough_UnknownAction(t *testing.T) {
	client := NewClient("http://unused", nil, testSettings())
	_, _, err := client.Passthrough(context.Background(), "deleteEverything")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestClient_Passthrough_SettingsMissing(t *testing.T) {
	client := NewClient("http://unused", nil, &fakeSettingsRepo{err: domain.ErrNotFound})
	_, _, err := client.Passthrough(context.Background(), ActionGetEventTypes)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
