package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sportlink/opportunity-engine/internal/matching"
	"github.com/sportlink/opportunity-engine/internal/model"
)

// MatchService recomputes candidate↔posting scores whenever a posting is
// published or a profile changes, and dispatches the ones that cross the
// threshold. Scoring is pure, so batches fan out across a bounded worker
// pool with no ordering requirement.
type MatchService struct {
	weights   matching.Weights
	threshold int
	workers   int
	postings  PostingStore
	profiles  ProfileStore
	notifier  Notifier
	logger    *zap.Logger
	now       func() time.Time
}

func NewMatchService(weights matching.Weights, threshold int, postings PostingStore, profiles ProfileStore, notifier Notifier, logger *zap.Logger) (*MatchService, error) {
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("match weights: %w", err)
	}

	return &MatchService{
		weights:   weights,
		threshold: threshold,
		workers:   8,
		postings:  postings,
		profiles:  profiles,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// UpdateProfile stores a candidate's profile and rescores it against every
// active posting. Returns the fresh match results, dispatched or not.
func (s *MatchService) UpdateProfile(ctx context.Context, profile *model.CandidateProfile) ([]matching.MatchResult, error) {
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return nil, err
	}

	s.logger.Info("Candidate profile updated",
		zap.String("candidate_id", profile.CandidateID.String()),
		zap.Int("skills", len(profile.Skills)),
	)

	return s.RecomputeForCandidate(ctx, profile.CandidateID)
}

// RecomputeForCandidate scores one candidate against all active postings and
// dispatches a job_match for every score at or above the threshold.
func (s *MatchService) RecomputeForCandidate(ctx context.Context, candidateID uuid.UUID) ([]matching.MatchResult, error) {
	profile, err := s.profiles.GetByCandidateID(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("get candidate profile: %w", err)
	}

	postings, err := s.postings.ListActive(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("list active postings: %w", err)
	}

	results := s.scoreAll(ctx, postings, []*model.CandidateProfile{profile})
	s.dispatchMatches(ctx, model.KindJobMatch, results)
	return results, nil
}

// RecomputeForPosting scores every candidate profile against one posting and
// dispatches a job_match for every score at or above the threshold. A
// posting that no longer accepts applications produces no results.
func (s *MatchService) RecomputeForPosting(ctx context.Context, postingID uuid.UUID) ([]matching.MatchResult, error) {
	posting, err := s.postings.GetByID(ctx, postingID)
	if err != nil {
		return nil, fmt.Errorf("get posting: %w", err)
	}

	if !posting.AcceptsApplications(s.now()) {
		return nil, nil
	}

	profiles, err := s.profiles.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list candidate profiles: %w", err)
	}

	results := s.scoreAll(ctx, []*model.Posting{posting}, profiles)
	s.dispatchMatches(ctx, model.KindJobMatch, results)
	return results, nil
}

// AnnouncePosting runs the match pass for a freshly published posting. The
// dispatched kind is urgent_job when the deadline is imminent, new_job
// otherwise; in both cases only candidates above the threshold hear about it.
func (s *MatchService) AnnouncePosting(ctx context.Context, posting *model.Posting) {
	profiles, err := s.profiles.ListAll(ctx)
	if err != nil {
		s.logger.Error("Posting announcement skipped",
			zap.String("posting_id", posting.ID.String()),
			zap.Error(err),
		)
		return
	}

	kind := model.KindNewJob
	if posting.Urgent(s.now()) {
		kind = model.KindUrgentJob
	}

	results := s.scoreAll(ctx, []*model.Posting{posting}, profiles)
	s.dispatchMatches(ctx, kind, results)
}

// scoreAll computes the full cross product. Independent pairs carry no
// ordering requirement, so the work fans out across the pool.
func (s *MatchService) scoreAll(ctx context.Context, postings []*model.Posting, profiles []*model.CandidateProfile) []matching.MatchResult {
	results := make([]matching.MatchResult, len(postings)*len(profiles))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, posting := range postings {
		posting := posting
		for j, profile := range profiles {
			profile := profile
			idx := i*len(profiles) + j
			g.Go(func() error {
				score, factors := matching.Score(s.weights, profile, posting)
				results[idx] = matching.MatchResult{
					PostingID:   posting.ID,
					CandidateID: profile.CandidateID,
					Score:       score,
					Factors:     factors,
				}
				return nil
			})
		}
	}

	g.Wait()
	return results
}

// dispatchMatches publishes one event per result above the threshold. The
// subject is the posting and the sole recipient is the candidate; the unread
// upsert key collapses repeated recomputation into a refreshed score.
func (s *MatchService) dispatchMatches(ctx context.Context, kind model.NotificationKind, results []matching.MatchResult) {
	for _, r := range results {
		if r.Score < s.threshold {
			continue
		}

		s.notifier.Publish(ctx, model.LifecycleEvent{
			Kind:       kind,
			SubjectRef: r.PostingID,
			Parties:    []uuid.UUID{r.CandidateID},
			Payload: map[string]any{
				"candidate_id": r.CandidateID.String(),
				"score":        r.Score,
				"factors":      r.Factors,
			},
			EmittedAt: s.now(),
		})
	}
}
