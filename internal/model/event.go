package model

import (
	"time"

	"github.com/google/uuid"
)

// LifecycleEvent is emitted on every committed lifecycle change and consumed
// by the notification dispatcher. It carries the interested parties so the
// dispatcher can resolve recipients without re-reading the entity.
type LifecycleEvent struct {
	Kind       NotificationKind `json:"kind"`
	SubjectRef uuid.UUID        `json:"subject_ref"`
	Parties    []uuid.UUID      `json:"parties"`
	Actor      uuid.UUID        `json:"actor"`
	Payload    map[string]any   `json:"payload,omitempty"`
	EmittedAt  time.Time        `json:"emitted_at"`
}

// Recipients resolves who gets notified: every interested party except the
// one who caused the change. An event without an actor goes to all parties.
func (e LifecycleEvent) Recipients() []uuid.UUID {
	if e.Actor == uuid.Nil {
		return e.Parties
	}
	var out []uuid.UUID
	for _, p := range e.Parties {
		if p != e.Actor {
			out = append(out, p)
		}
	}
	return out
}
