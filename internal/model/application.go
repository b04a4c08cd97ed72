package model

import (
	"time"

	"github.com/google/uuid"
)

type ApplicationStatus string

const (
	ApplicationStatusNew         ApplicationStatus = "new"          // Just submitted
	ApplicationStatusUnderReview ApplicationStatus = "under_review" // Publisher is reviewing
	ApplicationStatusInterviewed ApplicationStatus = "interviewed"  // Interview took place
	ApplicationStatusOffered     ApplicationStatus = "offered"      // Offer extended
	ApplicationStatusAccepted    ApplicationStatus = "accepted"     // Candidate accepted the offer
	ApplicationStatusRejected    ApplicationStatus = "rejected"     // Publisher rejected
	ApplicationStatusWithdrawn   ApplicationStatus = "withdrawn"    // Candidate withdrew
)

type Application struct {
	ID          uuid.UUID         `json:"id"`
	PostingID   uuid.UUID         `json:"posting_id"`
	CandidateID uuid.UUID         `json:"candidate_id"`
	Status      ApplicationStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`

	History []StatusChange `json:"history,omitempty"`
}

// StatusChange is one entry of an application's status history.
type StatusChange struct {
	Status    ApplicationStatus `json:"status"`
	Actor     uuid.UUID         `json:"actor"`
	Reason    string            `json:"reason,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// IsTerminal reports whether no further transition is possible.
func (s ApplicationStatus) IsTerminal() bool {
	switch s {
	case ApplicationStatusAccepted, ApplicationStatusRejected, ApplicationStatusWithdrawn:
		return true
	default:
		return false
	}
}

// KeepsReason reports whether a transition into this status records the
// caller-supplied reason. All other transitions ignore it.
func (s ApplicationStatus) KeepsReason() bool {
	return s == ApplicationStatusRejected || s == ApplicationStatusWithdrawn
}

// CanTransition reports whether to is a direct successor of from.
// Withdrawn is reachable from every non-terminal status.
func CanTransition(from, to ApplicationStatus) bool {
	if to == ApplicationStatusWithdrawn {
		return !from.IsTerminal()
	}
	switch from {
	case ApplicationStatusNew:
		return to == ApplicationStatusUnderReview
	case ApplicationStatusUnderReview:
		return to == ApplicationStatusInterviewed
	case ApplicationStatusInterviewed:
		return to == ApplicationStatusOffered
	case ApplicationStatusOffered:
		return to == ApplicationStatusAccepted || to == ApplicationStatusRejected
	default:
		return false
	}
}

// KnownApplicationStatus reports whether the value is one of the closed set.
func KnownApplicationStatus(s ApplicationStatus) bool {
	switch s {
	case ApplicationStatusNew, ApplicationStatusUnderReview, ApplicationStatusInterviewed,
		ApplicationStatusOffered, ApplicationStatusAccepted, ApplicationStatusRejected,
		ApplicationStatusWithdrawn:
		return true
	default:
		return false
	}
}
