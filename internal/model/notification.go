package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationKind string

const (
	KindNewJob              NotificationKind = "new_job"              // Active posting a candidate may care about
	KindUrgentJob           NotificationKind = "urgent_job"           // Same, but deadline is imminent
	KindApplicationReceived NotificationKind = "application_received" // Candidate applied to the publisher's posting
	KindApplicationStatus   NotificationKind = "application_status"   // Application moved to a new status
	KindJobMatch            NotificationKind = "job_match"            // Match score crossed the threshold
	KindSessionStatus       NotificationKind = "session_status"       // Session completed/cancelled/no_show
)

// Notification is one inbox entry. Rows are never deleted; an unread row for
// the same (recipient, kind, subject) is superseded in place on re-dispatch.
type Notification struct {
	ID          int64            `json:"id"`
	RecipientID uuid.UUID        `json:"recipient_id"`
	Kind        NotificationKind `json:"kind"`
	SubjectRef  uuid.UUID        `json:"subject_ref"`
	Payload     map[string]any   `json:"payload,omitempty"`
	Read        bool             `json:"read"`
	CreatedAt   time.Time        `json:"created_at"`
}

// NotificationCursor is a keyset position into a recipient's inbox, ordered
// unread first, then newest first. Keyset pagination keeps already-fetched
// pages stable while new unread entries arrive at the head.
type NotificationCursor struct {
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
	ID        int64     `json:"id"`
}

// CursorFor returns the cursor pointing just past this notification.
func (n *Notification) CursorFor() NotificationCursor {
	return NotificationCursor{Read: n.Read, CreatedAt: n.CreatedAt, ID: n.ID}
}
