package app

import (
	"github.com/sportlink/opportunity-engine/internal/service"
)

// Engine bundles the full service set. The delivery transport (poll
// endpoint, push, email) mounts on these; the background worker drives the
// posting sweep and the dispatch retry from the same instances.
type Engine struct {
	Postings      *service.PostingService
	Applications  *service.ApplicationService
	Sessions      *service.SessionService
	Matches       *service.MatchService
	Notifications *service.NotificationService
}
