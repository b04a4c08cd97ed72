package model

import (
	"time"

	"github.com/google/uuid"
)

// CandidateProfile holds the attributes the match scorer reads. Updating any
// of them is what triggers rescoring, never the passage of time.
type CandidateProfile struct {
	CandidateID uuid.UUID `json:"candidate_id"`
	Skills      []string  `json:"skills"`
	Years       int       `json:"years"`
	City        string    `json:"city"`
	Country     string    `json:"country"`
	RemoteOK    bool      `json:"remote_ok"`
	Languages   []string  `json:"languages"`
	UpdatedAt   time.Time `json:"updated_at"`
}
