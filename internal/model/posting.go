package model

import (
	"time"

	"github.com/google/uuid"
)

type PostingStatus string

const (
	PostingStatusDraft  PostingStatus = "draft"  // Not yet visible to candidates
	PostingStatusActive PostingStatus = "active" // Open for applications
	PostingStatusClosed PostingStatus = "closed" // Deadline passed or closed manually
)

type Posting struct {
	ID          uuid.UUID     `json:"id"`
	PublisherID uuid.UUID     `json:"publisher_id"`
	Title       string        `json:"title"`
	Sport       string        `json:"sport"`
	Skills      []string      `json:"skills"`
	MinYears    int           `json:"min_years"`
	City        string        `json:"city"`
	Country     string        `json:"country"`
	RemoteOK    bool          `json:"remote_ok"`
	Languages   []string      `json:"languages"`
	Deadline    time.Time     `json:"deadline"`
	Positions   int           `json:"positions"`
	Status      PostingStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// AcceptsApplications reports whether the posting can take a new application
// at the given time.
func (p *Posting) AcceptsApplications(now time.Time) bool {
	return p.Status == PostingStatusActive && now.Before(p.Deadline)
}

// Urgent reports whether the posting's deadline is close enough to warrant
// an urgent_job notification instead of a regular new_job one.
func (p *Posting) Urgent(now time.Time) bool {
	return p.Deadline.Sub(now) <= 48*time.Hour
}
