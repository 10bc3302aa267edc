package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"talenttrack/internal/domain"
)

type statusWorkflowService struct {
	appRepo        domain.ApplicationRepository
	historyRepo    domain.StatusHistoryRepository
	admins         domain.AdminDirectory
	notifier       domain.NotificationDispatcher
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewStatusWorkflowService creates the workflow service driving all
// application status mutations.
func NewStatusWorkflowService(
	appRepo domain.ApplicationRepository,
	historyRepo domain.StatusHistoryRepository,
	admins domain.AdminDirectory,
	notifier domain.NotificationDispatcher,
	logger *slog.Logger,
	timeout time.Duration,
) domain.StatusWorkflowService {
	return &statusWorkflowService{
		appRepo:        appRepo,
		historyRepo:    historyRepo,
		admins:         admins,
		notifier:       notifier,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *statusWorkflowService) RequestTransition(ctx context.Context, applicationID string, requested domain.Status, actorID *string, note string) (*domain.TransitionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	app, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get application: %w", err)
	}

	decision := domain.ProposeTransition(app.Status, requested)
	entry, err := s.historyRepo.RecordTransition(ctx, applicationID, app.Status, decision.NewStatus, decision.Valid, actorID, note)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.ErrConflict
		}
		return nil, fmt.Errorf("record transition: %w", err)
	}

	if decision.Valid {
		s.notifyTerminal(ctx, app, decision.NewStatus)
	}
	return &domain.TransitionResult{Entry: entry, Status: decision.NewStatus}, nil
}

func (s *statusWorkflowService) RequestLegacyTransition(ctx context.Context, applicationID string, requested domain.LegacyStatus, actorID *string, note string) (*domain.TransitionResult, error) {
	return s.RequestTransition(ctx, applicationID, domain.CanonicalOf(requested), actorID, note)
}

// notifyTerminal sends the hired/rejected notification. The transition is
// already committed, so a dispatch failure is logged and not propagated.
func (s *statusWorkflowService) notifyTerminal(ctx context.Context, app *domain.Application, newStatus domain.Status) {
	if s.notifier == nil {
		return
	}
	var templateID string
	switch newStatus {
	case domain.StatusHired:
		templateID = domain.TemplateApplicationHired
	case domain.StatusRejected:
		templateID = domain.TemplateApplicationRejected
	default:
		return
	}
	vars := map[string]any{
		"application_id":  app.ID,
		"candidate_email": app.CandidateEmail,
		"status":          string(newStatus),
	}
	if err := s.notifier.Dispatch(ctx, templateID, app.CandidateEmail, vars); err != nil {
		s.logger.Warn("notification dispatch failed",
			"template", templateID,
			"application_id", app.ID,
			"err", err,
		)
	}
}

func (s *statusWorkflowService) GetHistory(ctx context.Context, applicationID string) ([]*domain.StatusHistoryEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.appRepo.GetByID(ctx, applicationID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get application: %w", err)
	}

	entries, err := s.historyRepo.ListByApplicationID(ctx, applicationID)
	if err == nil {
		return entries, nil
	}
	// The joined read failed; degrade to the two-step path so a broken admin
	// lookup cannot take down the whole history view.
	s.logger.Warn("enriched history read failed, falling back to two-step resolution",
		"application_id", applicationID,
		"err", err,
	)
	entries, err = s.historyRepo.ListRawByApplicationID(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	s.resolveActors(ctx, entries)
	return entries, nil
}

// resolveActors fills ActorName on each entry from a batch admin lookup of
// the distinct actor ids. Resolution failure leaves names empty rather than
// failing the read.
func (s *statusWorkflowService) resolveActors(ctx context.Context, entries []*domain.StatusHistoryEntry) {
	seen := make(map[string]struct{})
	var ids []string
	for _, e := range entries {
		if e.ActorID == nil {
			continue
		}
		if _, ok := seen[*e.ActorID]; ok {
			continue
		}
		seen[*e.ActorID] = struct{}{}
		ids = append(ids, *e.ActorID)
	}
	if len(ids) == 0 {
		return
	}
	admins, err := s.admins.GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("actor resolution failed", "err", err)
		return
	}
	for _, e := range entries {
		if e.ActorID == nil {
			continue
		}
		admin, ok := admins[*e.ActorID]
		if !ok {
			continue
		}
		if name := admin.ResolveName(); name != "" {
			e.ActorName = &name
		}
	}
}
