package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sportlink/opportunity-engine/internal/matching"
	"github.com/sportlink/opportunity-engine/internal/model"
)

func newMatchFixture(t *testing.T, threshold int) (*MatchService, *fakePostingStore, *fakeProfileStore, *recordingNotifier) {
	t.Helper()
	postings := newFakePostingStore()
	profiles := newFakeProfileStore()
	notifier := &recordingNotifier{}
	svc, err := NewMatchService(matching.DefaultWeights, threshold, postings, profiles, notifier, zap.NewNop())
	if err != nil {
		t.Fatalf("new match service: %v", err)
	}
	return svc, postings, profiles, notifier
}

func TestNewMatchServiceRejectsBadWeights(t *testing.T) {
	_, err := NewMatchService(matching.Weights{SkillOverlap: 50, ExperienceFit: 50, LocationMatch: 50, LanguageMatch: 50}, 70, nil, nil, nil, zap.NewNop())
	if err == nil {
		t.Fatal("weights summing to 200 accepted, want error")
	}
}

func TestRecomputeForCandidateDispatchesOnlyAboveThreshold(t *testing.T) {
	svc, postings, profiles, notifier := newMatchFixture(t, 70)
	candidate := uuid.New()

	// Mirrors the canonical example: 2/3 skills, 1/3 experience, same city
	// and language give exactly 70.
	strong := &model.Posting{
		ID:          uuid.New(),
		PublisherID: uuid.New(),
		Title:       "Assistant coach",
		Skills:      []string{"coaching", "nutrition", "fitness"},
		MinYears:    3,
		City:        "Rotterdam",
		Country:     "NL",
		Languages:   []string{"dutch"},
		Deadline:    time.Now().Add(7 * 24 * time.Hour),
		Status:      model.PostingStatusActive,
	}
	weak := &model.Posting{
		ID:          uuid.New(),
		PublisherID: uuid.New(),
		Title:       "Data analyst",
		Skills:      []string{"statistics", "video analysis"},
		MinYears:    5,
		City:        "Lisbon",
		Country:     "PT",
		Languages:   []string{"portuguese"},
		Deadline:    time.Now().Add(7 * 24 * time.Hour),
		Status:      model.PostingStatusActive,
	}
	for _, p := range []*model.Posting{strong, weak} {
		if err := postings.Create(context.Background(), p); err != nil {
			t.Fatalf("seed posting: %v", err)
		}
	}

	profile := &model.CandidateProfile{
		CandidateID: candidate,
		Skills:      []string{"coaching", "fitness"},
		Years:       1,
		City:        "Rotterdam",
		Country:     "NL",
		Languages:   []string{"dutch"},
	}
	if err := profiles.Upsert(context.Background(), profile); err != nil {
		t.Fatalf("seed profile: %v", err)
	}

	results, err := svc.RecomputeForCandidate(context.Background(), candidate)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 (below-threshold scores are still computed)", len(results))
	}

	var strongScore int
	for _, r := range results {
		if r.PostingID == strong.ID {
			strongScore = r.Score
		}
	}
	if strongScore != 70 {
		t.Fatalf("strong posting score = %d, want 70", strongScore)
	}

	events := notifier.Events()
	if len(events) != 1 {
		t.Fatalf("got %d events, want only the above-threshold match dispatched", len(events))
	}
	if events[0].Kind != model.KindJobMatch || events[0].SubjectRef != strong.ID {
		t.Fatalf("event = %q/%s, want job_match for the strong posting", events[0].Kind, events[0].SubjectRef)
	}
	if got := events[0].Recipients(); len(got) != 1 || got[0] != candidate {
		t.Fatalf("recipients = %v, want exactly the candidate", got)
	}
}

func TestUpdateProfileStoresAndRescores(t *testing.T) {
	svc, postings, profiles, notifier := newMatchFixture(t, 50)

	p := &model.Posting{
		ID:          uuid.New(),
		PublisherID: uuid.New(),
		Title:       "Goalkeeper trainer",
		Skills:      []string{"goalkeeping"},
		MinYears:    0,
		City:        "Turin",
		Languages:   []string{"italian"},
		Deadline:    time.Now().Add(24 * time.Hour),
		Status:      model.PostingStatusActive,
	}
	if err := postings.Create(context.Background(), p); err != nil {
		t.Fatalf("seed posting: %v", err)
	}

	profile := &model.CandidateProfile{
		CandidateID: uuid.New(),
		Skills:      []string{"goalkeeping"},
		City:        "Turin",
		Languages:   []string{"italian"},
	}
	results, err := svc.UpdateProfile(context.Background(), profile)
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if len(results) != 1 || results[0].Score != 100 {
		t.Fatalf("results = %+v, want one perfect score", results)
	}

	if _, err := profiles.GetByCandidateID(context.Background(), profile.CandidateID); err != nil {
		t.Fatalf("profile was not stored: %v", err)
	}
	if len(notifier.Events()) != 1 {
		t.Fatalf("got %d events, want 1", len(notifier.Events()))
	}
}

func TestRecomputeForPostingSkipsClosedOnes(t *testing.T) {
	svc, postings, profiles, notifier := newMatchFixture(t, 0)

	p := &model.Posting{
		ID:          uuid.New(),
		PublisherID: uuid.New(),
		Title:       "Scout",
		Deadline:    time.Now().Add(24 * time.Hour),
		Status:      model.PostingStatusClosed,
	}
	if err := postings.Create(context.Background(), p); err != nil {
		t.Fatalf("seed posting: %v", err)
	}
	if err := profiles.Upsert(context.Background(), &model.CandidateProfile{CandidateID: uuid.New()}); err != nil {
		t.Fatalf("seed profile: %v", err)
	}

	results, err := svc.RecomputeForPosting(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if results != nil {
		t.Fatalf("results = %+v, want none for a closed posting", results)
	}
	if len(notifier.Events()) != 0 {
		t.Fatalf("got %d events, want none", len(notifier.Events()))
	}
}

func TestAnnouncePostingPicksUrgencyKind(t *testing.T) {
	tests := []struct {
		name     string
		deadline time.Duration
		want     model.NotificationKind
	}{
		{name: "comfortable deadline", deadline: 10 * 24 * time.Hour, want: model.KindNewJob},
		{name: "imminent deadline", deadline: 24 * time.Hour, want: model.KindUrgentJob},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, postings, profiles, notifier := newMatchFixture(t, 0)

			candidate := uuid.New()
			if err := profiles.Upsert(context.Background(), &model.CandidateProfile{CandidateID: candidate}); err != nil {
				t.Fatalf("seed profile: %v", err)
			}

			p := &model.Posting{
				ID:          uuid.New(),
				PublisherID: uuid.New(),
				Title:       "Team manager",
				Deadline:    time.Now().Add(tt.deadline),
				Status:      model.PostingStatusActive,
			}
			if err := postings.Create(context.Background(), p); err != nil {
				t.Fatalf("seed posting: %v", err)
			}

			svc.AnnouncePosting(context.Background(), p)

			events := notifier.Events()
			if len(events) != 1 {
				t.Fatalf("got %d events, want 1", len(events))
			}
			if events[0].Kind != tt.want {
				t.Fatalf("kind = %q, want %q", events[0].Kind, tt.want)
			}
		})
	}
}
