package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"talenttrack/internal/domain"
)

type calendarSyncService struct {
	appRepo        domain.ApplicationRepository
	interviewRepo  domain.InterviewRepository
	provider       domain.CalendarProvider
	notifier       domain.NotificationDispatcher
	logger         *slog.Logger
	contextTimeout time.Duration
	lookback       time.Duration
}

// NewCalendarSyncService creates the service shared by the webhook ingestor
// and the reconciliation poller. Both paths converge on the same idempotent
// interview writes.
func NewCalendarSyncService(
	appRepo domain.ApplicationRepository,
	interviewRepo domain.InterviewRepository,
	provider domain.CalendarProvider,
	notifier domain.NotificationDispatcher,
	logger *slog.Logger,
	timeout time.Duration,
	lookback time.Duration,
) domain.CalendarSyncService {
	return &calendarSyncService{
		appRepo:        appRepo,
		interviewRepo:  interviewRepo,
		provider:       provider,
		notifier:       notifier,
		logger:         logger,
		contextTimeout: timeout,
		lookback:       lookback,
	}
}

func (s *calendarSyncService) ApplyInviteeCreated(ctx context.Context, ev *domain.InviteeEvent) (*domain.Interview, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if ev.EventURI == "" || ev.CandidateEmail == "" {
		return nil, domain.ErrInvalidInput
	}

	app, err := s.appRepo.GetLatestByEmail(ctx, ev.CandidateEmail)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("resolve application by email: %w", err)
	}

	decision := domain.ProposeTransition(app.Status, domain.StatusInterviewScheduled)
	now := time.Now()
	iv := domain.NewInterview(app.ID, ev.EventURI, ev.CandidateEmail, ev.InterviewerEmail, ev.StartTime, ev.MeetingURL, now, now)

	_, err = s.interviewRepo.CreateScheduledWithTransition(ctx, iv, app.Status, decision.NewStatus, decision.Valid, nil, "interview scheduled via calendly")
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEvent) {
			// Redelivery of an already-applied event: surface the stored row.
			existing, err := s.interviewRepo.GetByEventID(ctx, ev.EventURI)
			if err != nil {
				return nil, fmt.Errorf("load existing interview: %w", err)
			}
			return existing, nil
		}
		return nil, fmt.Errorf("create interview: %w", err)
	}

	s.notifyScheduled(ctx, app, iv)
	return iv, nil
}

func (s *calendarSyncService) notifyScheduled(ctx context.Context, app *domain.Application, iv *domain.Interview) {
	if s.notifier == nil {
		return
	}
	vars := map[string]any{
		"application_id":  app.ID,
		"candidate_email": iv.CandidateEmail,
		"scheduled_time":  iv.ScheduledTime.Format(time.RFC3339),
	}
	if iv.MeetingURL != nil {
		vars["meeting_url"] = *iv.MeetingURL
	}
	if err := s.notifier.Dispatch(ctx, domain.TemplateInterviewScheduled, iv.CandidateEmail, vars); err != nil {
		s.logger.Warn("notification dispatch failed",
			"template", domain.TemplateInterviewScheduled,
			"application_id", app.ID,
			"err", err,
		)
	}
}

// ApplyInviteeCanceled marks the targeted interview cancelled. The
// application status is deliberately left untouched.
func (s *calendarSyncService) ApplyInviteeCanceled(ctx context.Context, calendlyEventID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if calendlyEventID == "" {
		return domain.ErrInvalidInput
	}
	if err := s.interviewRepo.UpdateStatusByEventID(ctx, calendlyEventID, domain.InterviewCancelled); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("cancel interview: %w", err)
	}
	return nil
}

// Reconcile converges local interview rows toward the provider's scheduled
// events for the lookback window. Rows absent from the provider response are
// never deleted; a pagination gap must not read as a cancellation.
func (s *calendarSyncService) Reconcile(ctx context.Context) (*domain.ReconcileReport, error) {
	report := &domain.ReconcileReport{RunID: uuid.NewString()}

	window := domain.EventWindow{MinStartTime: time.Now().Add(-s.lookback)}
	events, err := s.provider.ListScheduledEvents(ctx, window)
	if err != nil {
		return report, fmt.Errorf("list scheduled events: %w", err)
	}
	report.EventsSeen = len(events)

	for _, ev := range events {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		local, err := s.interviewRepo.GetByEventID(ctx, ev.URI)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			if ev.Status == domain.ProviderEventCanceled {
				// Never locally tracked; nothing to cancel.
				report.Skipped++
				continue
			}
			if s.reconcileCreate(ctx, ev, report) {
				report.Created++
			}
		case err != nil:
			s.logger.Warn("reconcile: interview lookup failed", "run_id", report.RunID, "event", ev.URI, "err", err)
			report.Skipped++
		default:
			if s.reconcileStatus(ctx, ev, local, report) {
				report.StatusUpdated++
			}
		}
	}
	return report, nil
}

// reconcileCreate runs the same creation path as the webhook for a provider
// event with no local row. Returns true when a row was created.
func (s *calendarSyncService) reconcileCreate(ctx context.Context, ev *domain.ScheduledEvent, report *domain.ReconcileReport) bool {
	if len(ev.GuestEmails) == 0 {
		s.logger.Warn("reconcile: event has no guests, skipping", "run_id", report.RunID, "event", ev.URI)
		report.Skipped++
		return false
	}
	invitee := &domain.InviteeEvent{
		Kind:           "invitee.created",
		EventURI:       ev.URI,
		StartTime:      ev.StartTime,
		CandidateEmail: ev.GuestEmails[0],
	}
	if ev.MeetingURL != "" {
		invitee.MeetingURL = &ev.MeetingURL
	}
	if len(ev.MemberEmails) > 0 {
		invitee.InterviewerEmail = &ev.MemberEmails[0]
	}
	if _, err := s.ApplyInviteeCreated(ctx, invitee); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Info("reconcile: no application for guest, skipping", "run_id", report.RunID, "event", ev.URI)
		} else {
			s.logger.Warn("reconcile: interview creation failed", "run_id", report.RunID, "event", ev.URI, "err", err)
		}
		report.Skipped++
		return false
	}
	return true
}

// reconcileStatus fixes a local row whose status drifted from the provider's.
// Returns true when an update was written.
func (s *calendarSyncService) reconcileStatus(ctx context.Context, ev *domain.ScheduledEvent, local *domain.Interview, report *domain.ReconcileReport) bool {
	var want domain.InterviewStatus
	switch {
	case ev.Status == domain.ProviderEventCanceled && local.Status != domain.InterviewCancelled:
		want = domain.InterviewCancelled
	case ev.Status == domain.ProviderEventActive && local.Status == domain.InterviewCancelled:
		// A missed reschedule: the provider considers the event live again.
		want = domain.InterviewScheduled
	default:
		return false
	}
	if err := s.interviewRepo.UpdateStatusByEventID(ctx, ev.URI, want); err != nil {
		s.logger.Warn("reconcile: status update failed", "run_id", report.RunID, "event", ev.URI, "err", err)
		report.Skipped++
		return false
	}
	return true
}

func (s *calendarSyncService) ListInterviews(ctx context.Context, applicationID string) ([]*domain.Interview, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.appRepo.GetByID(ctx, applicationID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get application: %w", err)
	}
	interviews, err := s.interviewRepo.ListByApplicationID(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("list interviews: %w", err)
	}
	return interviews, nil
}
