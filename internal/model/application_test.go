package model

import (
	"testing"

	"github.com/google/uuid"
)

func TestCanTransitionMatchesGraph(t *testing.T) {
	all := []ApplicationStatus{
		ApplicationStatusNew,
		ApplicationStatusUnderReview,
		ApplicationStatusInterviewed,
		ApplicationStatusOffered,
		ApplicationStatusAccepted,
		ApplicationStatusRejected,
		ApplicationStatusWithdrawn,
	}

	allowed := map[ApplicationStatus][]ApplicationStatus{
		ApplicationStatusNew:         {ApplicationStatusUnderReview, ApplicationStatusWithdrawn},
		ApplicationStatusUnderReview: {ApplicationStatusInterviewed, ApplicationStatusWithdrawn},
		ApplicationStatusInterviewed: {ApplicationStatusOffered, ApplicationStatusWithdrawn},
		ApplicationStatusOffered:     {ApplicationStatusAccepted, ApplicationStatusRejected, ApplicationStatusWithdrawn},
	}

	for _, from := range all {
		wanted := map[ApplicationStatus]bool{}
		for _, to := range allowed[from] {
			wanted[to] = true
		}
		for _, to := range all {
			if got := CanTransition(from, to); got != wanted[to] {
				t.Errorf("CanTransition(%q, %q) = %v, want %v", from, to, got, wanted[to])
			}
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	for status, want := range map[ApplicationStatus]bool{
		ApplicationStatusNew:         false,
		ApplicationStatusUnderReview: false,
		ApplicationStatusInterviewed: false,
		ApplicationStatusOffered:     false,
		ApplicationStatusAccepted:    true,
		ApplicationStatusRejected:    true,
		ApplicationStatusWithdrawn:   true,
	} {
		if got := status.IsTerminal(); got != want {
			t.Errorf("%q.IsTerminal() = %v, want %v", status, got, want)
		}
	}
}

func TestKeepsReason(t *testing.T) {
	for status, want := range map[ApplicationStatus]bool{
		ApplicationStatusRejected:    true,
		ApplicationStatusWithdrawn:   true,
		ApplicationStatusAccepted:    false,
		ApplicationStatusUnderReview: false,
	} {
		if got := status.KeepsReason(); got != want {
			t.Errorf("%q.KeepsReason() = %v, want %v", status, got, want)
		}
	}
}

func TestEventRecipients(t *testing.T) {
	publisher := uuid.New()
	candidate := uuid.New()

	event := LifecycleEvent{Parties: []uuid.UUID{publisher, candidate}, Actor: candidate}
	if got := event.Recipients(); len(got) != 1 || got[0] != publisher {
		t.Fatalf("recipients = %v, want the non-acting party only", got)
	}

	event.Actor = uuid.Nil
	if got := event.Recipients(); len(got) != 2 {
		t.Fatalf("recipients = %v, want all parties when no actor", got)
	}
}
