package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sportlink/opportunity-engine/internal/model"
)

// PostingAnnouncer is the slice of MatchService the posting lifecycle needs:
// fan a freshly published posting out to matched candidates.
type PostingAnnouncer interface {
	AnnouncePosting(ctx context.Context, posting *model.Posting)
}

// PostingService manages posting statuses. Closed is near-terminal: the only
// way back is the explicit administrative Reopen, never a silent re-entry.
type PostingService struct {
	postings  PostingStore
	announcer PostingAnnouncer
	logger    *zap.Logger
	now       func() time.Time
}

func NewPostingService(postings PostingStore, announcer PostingAnnouncer, logger *zap.Logger) *PostingService {
	return &PostingService{
		postings:  postings,
		announcer: announcer,
		logger:    logger,
		now:       time.Now,
	}
}

// Create stores a new draft posting.
func (s *PostingService) Create(ctx context.Context, p *model.Posting) (*model.Posting, error) {
	if p.Title == "" {
		return nil, fmt.Errorf("posting title is required")
	}
	if !p.Deadline.After(s.now()) {
		return nil, fmt.Errorf("posting deadline must be in the future")
	}
	if p.Positions <= 0 {
		p.Positions = 1
	}

	p.ID = uuid.New()
	p.Status = model.PostingStatusDraft

	if err := s.postings.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("Posting created",
		zap.String("posting_id", p.ID.String()),
		zap.String("publisher_id", p.PublisherID.String()),
		zap.String("title", p.Title),
	)

	return p, nil
}

// Publish opens a draft posting for applications and announces it to matched
// candidates. Announcement failures never fail the publish.
func (s *PostingService) Publish(ctx context.Context, postingID, actor uuid.UUID) (*model.Posting, error) {
	if err := s.postings.UpdateStatus(ctx, postingID, model.PostingStatusDraft, model.PostingStatusActive); err != nil {
		return nil, err
	}

	posting, err := s.postings.GetByID(ctx, postingID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Posting published",
		zap.String("posting_id", postingID.String()),
		zap.String("actor", actor.String()),
	)

	s.announcer.AnnouncePosting(ctx, posting)

	return posting, nil
}

// Close takes an active posting off the market.
func (s *PostingService) Close(ctx context.Context, postingID, actor uuid.UUID) error {
	if err := s.postings.UpdateStatus(ctx, postingID, model.PostingStatusActive, model.PostingStatusClosed); err != nil {
		return err
	}

	s.logger.Info("Posting closed",
		zap.String("posting_id", postingID.String()),
		zap.String("actor", actor.String()),
	)

	return nil
}

// Reopen is the explicit administrative action that puts a closed posting
// back on the market.
func (s *PostingService) Reopen(ctx context.Context, postingID, actor uuid.UUID) (*model.Posting, error) {
	if err := s.postings.UpdateStatus(ctx, postingID, model.PostingStatusClosed, model.PostingStatusActive); err != nil {
		return nil, err
	}

	posting, err := s.postings.GetByID(ctx, postingID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Posting reopened",
		zap.String("posting_id", postingID.String()),
		zap.String("actor", actor.String()),
	)

	return posting, nil
}

// GetByID returns one posting.
func (s *PostingService) GetByID(ctx context.Context, postingID uuid.UUID) (*model.Posting, error) {
	return s.postings.GetByID(ctx, postingID)
}

// ListActive returns every posting currently accepting applications.
func (s *PostingService) ListActive(ctx context.Context) ([]*model.Posting, error) {
	return s.postings.ListActive(ctx, s.now())
}

// SweepExpired closes active postings whose deadline has passed. Called
// periodically by the background worker.
func (s *PostingService) SweepExpired(ctx context.Context) error {
	closed, err := s.postings.CloseExpired(ctx, s.now())
	if err != nil {
		return err
	}

	for _, p := range closed {
		s.logger.Info("Posting closed by deadline",
			zap.String("posting_id", p.ID.String()),
			zap.Time("deadline", p.Deadline),
		)
	}

	return nil
}
