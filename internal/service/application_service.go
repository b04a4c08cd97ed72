package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sportlink/opportunity-engine/internal/model"
)

// ApplicationService owns the application state machine. Transitions on one
// application are serialized by a compare-and-swap in the store: of two
// racing callers exactly one commits, the other sees model.ErrConflict.
type ApplicationService struct {
	apps     ApplicationStore
	postings PostingStore
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewApplicationService(apps ApplicationStore, postings PostingStore, notifier Notifier, logger *zap.Logger) *ApplicationService {
	return &ApplicationService{
		apps:     apps,
		postings: postings,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Submit creates an application in status new. The posting must be active
// with its deadline in the future, and the candidate must not have applied
// before. The publisher is notified.
func (s *ApplicationService) Submit(ctx context.Context, postingID, candidateID uuid.UUID) (*model.Application, error) {
	posting, err := s.postings.GetByID(ctx, postingID)
	if err != nil {
		return nil, fmt.Errorf("get posting: %w", err)
	}

	if !posting.AcceptsApplications(s.now()) {
		return nil, model.ErrPostingClosed
	}

	app := &model.Application{
		ID:          uuid.New(),
		PostingID:   postingID,
		CandidateID: candidateID,
		Status:      model.ApplicationStatusNew,
	}
	first := model.StatusChange{
		Status:    model.ApplicationStatusNew,
		Actor:     candidateID,
		CreatedAt: s.now(),
	}

	if err := s.apps.Create(ctx, app, first); err != nil {
		return nil, err
	}

	s.logger.Info("Application submitted",
		zap.String("application_id", app.ID.String()),
		zap.String("posting_id", postingID.String()),
		zap.String("candidate_id", candidateID.String()),
	)

	s.notifier.Publish(ctx, model.LifecycleEvent{
		Kind:       model.KindApplicationReceived,
		SubjectRef: app.ID,
		Parties:    []uuid.UUID{posting.PublisherID, candidateID},
		Actor:      candidateID,
		Payload: map[string]any{
			"posting_id":    postingID.String(),
			"posting_title": posting.Title,
			"candidate_id":  candidateID.String(),
		},
		EmittedAt: s.now(),
	})

	return app, nil
}

// Transition moves an application along the state-machine graph on behalf of
// actor. A retried call that finds the application already at target is a
// no-op success. The non-acting party is notified on every committed change.
func (s *ApplicationService) Transition(ctx context.Context, applicationID uuid.UUID, target model.ApplicationStatus, actor uuid.UUID, reason string) (*model.Application, error) {
	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}

	if app.Status == target {
		return app, nil
	}

	if !model.KnownApplicationStatus(target) || !model.CanTransition(app.Status, target) {
		return nil, &model.IllegalTransitionError{
			Entity: "application",
			From:   string(app.Status),
			To:     string(target),
		}
	}

	if !target.KeepsReason() {
		reason = ""
	}

	from := app.Status
	updated, err := s.apps.UpdateStatus(ctx, applicationID, from, target, actor, reason)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Application transitioned",
		zap.String("application_id", applicationID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(target)),
		zap.String("actor", actor.String()),
	)

	payload := map[string]any{
		"posting_id": updated.PostingID.String(),
		"from":       string(from),
		"to":         string(target),
	}
	if reason != "" {
		payload["reason"] = reason
	}

	// The transition is committed; a failed posting lookup only degrades the
	// notification (no title, no publisher recipient), it never drops it.
	parties := []uuid.UUID{updated.CandidateID}
	posting, err := s.postings.GetByID(ctx, updated.PostingID)
	if err != nil {
		s.logger.Error("Posting lookup failed after transition",
			zap.String("application_id", applicationID.String()),
			zap.Error(err),
		)
	} else {
		payload["posting_title"] = posting.Title
		parties = []uuid.UUID{posting.PublisherID, updated.CandidateID}
	}

	s.notifier.Publish(ctx, model.LifecycleEvent{
		Kind:       model.KindApplicationStatus,
		SubjectRef: updated.ID,
		Parties:    parties,
		Actor:      actor,
		Payload:    payload,
		EmittedAt:  s.now(),
	})

	return updated, nil
}

// Withdraw is the candidate-initiated exit, legal from any non-terminal
// status.
func (s *ApplicationService) Withdraw(ctx context.Context, applicationID, candidateID uuid.UUID, reason string) (*model.Application, error) {
	return s.Transition(ctx, applicationID, model.ApplicationStatusWithdrawn, candidateID, reason)
}

// GetByID returns an application with its full status history.
func (s *ApplicationService) GetByID(ctx context.Context, applicationID uuid.UUID) (*model.Application, error) {
	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if err := s.apps.LoadHistory(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

// ListByCandidate returns a candidate's applications, newest first.
func (s *ApplicationService) ListByCandidate(ctx context.Context, candidateID uuid.UUID) ([]*model.Application, error) {
	return s.apps.GetByCandidateID(ctx, candidateID)
}

// ListByPosting returns a posting's applications, newest first.
func (s *ApplicationService) ListByPosting(ctx context.Context, postingID uuid.UUID) ([]*model.Application, error) {
	return s.apps.GetByPostingID(ctx, postingID)
}
