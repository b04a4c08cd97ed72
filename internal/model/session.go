package model

import (
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionStatusUpcoming  SessionStatus = "upcoming"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusCancelled SessionStatus = "cancelled"
	SessionStatusNoShow    SessionStatus = "no_show"
)

type Attendance string

const (
	AttendanceUnset   Attendance = "unset"
	AttendancePresent Attendance = "present"
	AttendanceAbsent  Attendance = "absent"
)

type Session struct {
	ID                 uuid.UUID     `json:"id"`
	CoachID            uuid.UUID     `json:"coach_id"`
	StudentID          uuid.UUID     `json:"student_id"`
	ScheduledStart     time.Time     `json:"scheduled_start"`
	ScheduledEnd       time.Time     `json:"scheduled_end"`
	Status             SessionStatus `json:"status"`
	Attendance         Attendance    `json:"attendance"`
	CancellationReason string        `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// IsTerminal reports whether the session reached a final status.
// Every status except upcoming is final.
func (s SessionStatus) IsTerminal() bool {
	return s != SessionStatusUpcoming
}

// KnownSessionStatus reports whether the value is one of the closed set.
func KnownSessionStatus(s SessionStatus) bool {
	switch s {
	case SessionStatusUpcoming, SessionStatusCompleted, SessionStatusCancelled, SessionStatusNoShow:
		return true
	default:
		return false
	}
}
