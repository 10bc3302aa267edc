package calendly

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/singleflight"

	"talenttrack/internal/domain"
)

// Gateway actions accepted by Passthrough.
const (
	ActionGetScheduledEvents = "getScheduledEvents"
	ActionGetEventTypes      = "getEventTypes"
	ActionGetCurrentUser     = "getCurrentUser"
)

const maxPageSize = 100

type client struct {
	baseURL    string
	httpClient *http.Client
	settings   domain.ProviderSettingsRepository

	// Collapses concurrent identical gateway fetches into one upstream call.
	inflight singleflight.Group
}

// NewClient returns a CalendarProvider over the Calendly HTTP API. The
// bearer token and organization URI are read from provider settings on each
// call so a rotated token takes effect without a restart. The client never
// retries; that is the reconciliation poller's job.
func NewClient(baseURL string, httpClient *http.Client, settings domain.ProviderSettingsRepository) domain.CalendarProvider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &client{
		baseURL:    baseURL,
		httpClient: httpClient,
		settings:   settings,
	}
}

// pagedEvents is the wire shape of GET /scheduled_events.
type pagedEvents struct {
	Collection []wireEvent `json:"collection"`
	Pagination struct {
		NextPageToken *string `json:"next_page_token"`
	} `json:"pagination"`
}

type wireEvent struct {
	URI       *string    `json:"uri"`
	Name      string     `json:"name"`
	Status    *string    `json:"status"`
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	Location  struct {
		JoinURL string `json:"join_url"`
	} `json:"location"`
	EventMemberships []struct {
		UserEmail string `json:"user_email"`
	} `json:"event_memberships"`
	EventGuests []struct {
		Email string `json:"email"`
	} `json:"event_guests"`
}

// toDomain validates required fields; missing ones are a parse error, never a
// silent default.
func (w *wireEvent) toDomain() (*domain.ScheduledEvent, error) {
	if w.URI == nil || *w.URI == "" {
		return nil, fmt.Errorf("scheduled event missing uri: %w", domain.ErrInvalidInput)
	}
	if w.Status == nil || *w.Status == "" {
		return nil, fmt.Errorf("scheduled event %s missing status: %w", *w.URI, domain.ErrInvalidInput)
	}
	if w.StartTime == nil {
		return nil, fmt.Errorf("scheduled event %s missing start_time: %w", *w.URI, domain.ErrInvalidInput)
	}
	ev := &domain.ScheduledEvent{
		URI:        *w.URI,
		Name:       w.Name,
		Status:     *w.Status,
		StartTime:  *w.StartTime,
		MeetingURL: w.Location.JoinURL,
	}
	if w.EndTime != nil {
		ev.EndTime = *w.EndTime
	}
	for _, g := range w.EventGuests {
		if g.Email != "" {
			ev.GuestEmails = append(ev.GuestEmails, g.Email)
		}
	}
	for _, m := range w.EventMemberships {
		if m.UserEmail != "" {
			ev.MemberEmails = append(ev.MemberEmails, m.UserEmail)
		}
	}
	return ev, nil
}

func (c *client) ListScheduledEvents(ctx context.Context, window domain.EventWindow) ([]*domain.ScheduledEvent, error) {
	settings, err := c.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load provider settings: %w", err)
	}

	query := url.Values{}
	query.Set("organization", settings.OrganizationURI)
	query.Set("count", fmt.Sprintf("%d", maxPageSize))
	if !window.MinStartTime.IsZero() {
		query.Set("min_start_time", window.MinStartTime.UTC().Format(time.RFC3339))
	}
	if !window.MaxStartTime.IsZero() {
		query.Set("max_start_time", window.MaxStartTime.UTC().Format(time.RFC3339))
	}

	var events []*domain.ScheduledEvent
	for {
		body, status, err := c.do(ctx, settings.APIToken, "/scheduled_events", query)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("calendly scheduled_events returned status %d: %w", status, domain.ErrUpstreamUnavailable)
		}
		var page pagedEvents
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("decode scheduled_events: %v: %w", err, domain.ErrInvalidInput)
		}
		for i := range page.Collection {
			ev, err := page.Collection[i].toDomain()
			if err != nil {
				return nil, err
			}
			events = append(events, ev)
		}
		if page.Pagination.NextPageToken == nil || *page.Pagination.NextPageToken == "" {
			return events, nil
		}
		query.Set("page_token", *page.Pagination.NextPageToken)
	}
}

// pagedEventTypes is the wire shape of GET /event_types.
type pagedEventTypes struct {
	Collection []struct {
		URI      *string `json:"uri"`
		Name     string  `json:"name"`
		Duration int     `json:"duration"`
		Active   bool    `json:"active"`
	} `json:"collection"`
}

func (c *client) ListEventTypes(ctx context.Context) ([]*domain.EventType, error) {
	settings, err := c.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load provider settings: %w", err)
	}
	query := url.Values{}
	query.Set("organization", settings.OrganizationURI)
	body, status, err := c.do(ctx, settings.APIToken, "/event_types", query)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("calendly event_types returned status %d: %w", status, domain.ErrUpstreamUnavailable)
	}
	var page pagedEventTypes
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("decode event_types: %v: %w", err, domain.ErrInvalidInput)
	}
	types := make([]*domain.EventType, 0, len(page.Collection))
	for _, t := range page.Collection {
		if t.URI == nil || *t.URI == "" {
			return nil, fmt.Errorf("event type missing uri: %w", domain.ErrInvalidInput)
		}
		types = append(types, &domain.EventType{URI: *t.URI, Name: t.Name, Duration: t.Duration, Active: t.Active})
	}
	return types, nil
}

func (c *client) GetCurrentUser(ctx context.Context) (*domain.ProviderUser, error) {
	settings, err := c.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load provider settings: %w", err)
	}
	body, status, err := c.do(ctx, settings.APIToken, "/users/me", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("calendly users/me returned status %d: %w", status, domain.ErrUpstreamUnavailable)
	}
	var wrapper struct {
		Resource struct {
			URI   *string `json:"uri"`
			Name  string  `json:"name"`
			Email *string `json:"email"`
		} `json:"resource"`
	}
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return nil, fmt.Errorf("decode users/me: %v: %w", err, domain.ErrInvalidInput)
	}
	if wrapper.Resource.URI == nil || wrapper.Resource.Email == nil {
		return nil, fmt.Errorf("users/me missing uri or email: %w", domain.ErrInvalidInput)
	}
	return &domain.ProviderUser{URI: *wrapper.Resource.URI, Name: wrapper.Resource.Name, Email: *wrapper.Resource.Email}, nil
}

// Passthrough runs the named gateway action and returns the provider's JSON
// and status untouched. Concurrent identical actions share one upstream call.
func (c *client) Passthrough(ctx context.Context, action string) (json.RawMessage, int, error) {
	type result struct {
		body   json.RawMessage
		status int
	}
	v, err, _ := c.inflight.Do(action, func() (any, error) {
		settings, err := c.settings.Get(ctx)
		if err != nil {
			return nil, fmt.Errorf("load provider settings: %w", err)
		}
		var path string
		query := url.Values{}
		switch action {
		case ActionGetScheduledEvents:
			path = "/scheduled_events"
			query.Set("organization", settings.OrganizationURI)
		case ActionGetEventTypes:
			path = "/event_types"
			query.Set("organization", settings.OrganizationURI)
		case ActionGetCurrentUser:
			path = "/users/me"
		default:
			return nil, fmt.Errorf("unknown action %q: %w", action, domain.ErrInvalidInput)
		}
		body, status, err := c.do(ctx, settings.APIToken, path, query)
		if err != nil {
			return nil, err
		}
		return result{body: body, status: status}, nil
	})
	if err != nil {
		return nil, 0, err
	}
	res := v.(result)
	return res.body, res.status, nil
}

// do performs one authenticated GET and returns the raw body and status.
func (c *client) do(ctx context.Context, token, path string, query url.Values) (json.RawMessage, int, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build calendly request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("calendly request failed: %v: %w", err, domain.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read calendly response: %v: %w", err, domain.ErrUpstreamUnavailable)
	}
	return body, resp.StatusCode, nil
}
