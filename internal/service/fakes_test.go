package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sportlink/opportunity-engine/internal/model"
)

// In-memory stores mirroring the repository semantics, including the
// compare-and-swap behavior the services rely on.

type fakePostingStore struct {
	mu       sync.Mutex
	postings map[uuid.UUID]model.Posting
}

func newFakePostingStore() *fakePostingStore {
	return &fakePostingStore{postings: make(map[uuid.UUID]model.Posting)}
}

func (f *fakePostingStore) Create(_ context.Context, p *model.Posting) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	f.postings[p.ID] = *p
	return nil
}

func (f *fakePostingStore) GetByID(_ context.Context, id uuid.UUID) (*model.Posting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.postings[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &p, nil
}

func (f *fakePostingStore) ListActive(_ context.Context, now time.Time) ([]*model.Posting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Posting
	for _, p := range f.postings {
		if p.Status == model.PostingStatusActive && now.Before(p.Deadline) {
			cp := p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakePostingStore) UpdateStatus(_ context.Context, id uuid.UUID, from, to model.PostingStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.postings[id]
	if !ok {
		return model.ErrNotFound
	}
	if p.Status != from {
		return model.ErrConflict
	}
	p.Status = to
	p.UpdatedAt = time.Now()
	f.postings[id] = p
	return nil
}

func (f *fakePostingStore) CloseExpired(_ context.Context, now time.Time) ([]*model.Posting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var closed []*model.Posting
	for id, p := range f.postings {
		if p.Status == model.PostingStatusActive && !now.Before(p.Deadline) {
			p.Status = model.PostingStatusClosed
			f.postings[id] = p
			cp := p
			closed = append(closed, &cp)
		}
	}
	return closed, nil
}

type fakeProfileStore struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]model.CandidateProfile
}

func newFakeProfileStore() *fakeProfileStore {
	return &fakeProfileStore{profiles: make(map[uuid.UUID]model.CandidateProfile)}
}

func (f *fakeProfileStore) Upsert(_ context.Context, p *model.CandidateProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.UpdatedAt = time.Now()
	f.profiles[p.CandidateID] = *p
	return nil
}

func (f *fakeProfileStore) GetByCandidateID(_ context.Context, candidateID uuid.UUID) (*model.CandidateProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[candidateID]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &p, nil
}

func (f *fakeProfileStore) ListAll(_ context.Context) ([]*model.CandidateProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.CandidateProfile
	for _, p := range f.profiles {
		cp := p
		out = append(out, &cp)
	}
	return out, nil
}

type applicationKey struct {
	posting   uuid.UUID
	candidate uuid.UUID
}

type fakeApplicationStore struct {
	mu      sync.Mutex
	apps    map[uuid.UUID]model.Application
	byKey   map[applicationKey]uuid.UUID
	history map[uuid.UUID][]model.StatusChange
}

func newFakeApplicationStore() *fakeApplicationStore {
	return &fakeApplicationStore{
		apps:    make(map[uuid.UUID]model.Application),
		byKey:   make(map[applicationKey]uuid.UUID),
		history: make(map[uuid.UUID][]model.StatusChange),
	}
}

func (f *fakeApplicationStore) Create(_ context.Context, app *model.Application, first model.StatusChange) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := applicationKey{posting: app.PostingID, candidate: app.CandidateID}
	if _, exists := f.byKey[key]; exists {
		return model.ErrDuplicateApplication
	}
	app.CreatedAt = time.Now()
	app.UpdatedAt = app.CreatedAt
	stored := *app
	stored.History = nil
	f.apps[app.ID] = stored
	f.byKey[key] = app.ID
	f.history[app.ID] = []model.StatusChange{first}
	return nil
}

func (f *fakeApplicationStore) GetByID(_ context.Context, id uuid.UUID) (*model.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	app, ok := f.apps[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &app, nil
}

func (f *fakeApplicationStore) LoadHistory(_ context.Context, app *model.Application) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	app.History = append([]model.StatusChange(nil), f.history[app.ID]...)
	return nil
}

func (f *fakeApplicationStore) UpdateStatus(_ context.Context, id uuid.UUID, from, to model.ApplicationStatus, actor uuid.UUID, reason string) (*model.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	app, ok := f.apps[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	if app.Status != from {
		return nil, model.ErrConflict
	}
	app.Status = to
	app.UpdatedAt = time.Now()
	f.apps[id] = app
	f.history[id] = append(f.history[id], model.StatusChange{
		Status:    to,
		Actor:     actor,
		Reason:    reason,
		CreatedAt: app.UpdatedAt,
	})
	return &app, nil
}

func (f *fakeApplicationStore) GetByCandidateID(_ context.Context, candidateID uuid.UUID) ([]*model.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Application
	for _, app := range f.apps {
		if app.CandidateID == candidateID {
			cp := app
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeApplicationStore) GetByPostingID(_ context.Context, postingID uuid.UUID) ([]*model.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Application
	for _, app := range f.apps {
		if app.PostingID == postingID {
			cp := app
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]model.Session
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[uuid.UUID]model.Session)}
}

func (f *fakeSessionStore) Create(_ context.Context, s *model.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	f.sessions[s.ID] = *s
	return nil
}

func (f *fakeSessionStore) GetByID(_ context.Context, id uuid.UUID) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &s, nil
}

func (f *fakeSessionStore) UpdateStatus(_ context.Context, id uuid.UUID, from, to model.SessionStatus, attendance model.Attendance, reason string) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	if s.Status != from {
		return nil, model.ErrConflict
	}
	s.Status = to
	s.Attendance = attendance
	s.CancellationReason = reason
	s.UpdatedAt = time.Now()
	f.sessions[id] = s
	return &s, nil
}

func (f *fakeSessionStore) ConfirmAttendance(_ context.Context, id uuid.UUID) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	if s.Status != model.SessionStatusUpcoming {
		return nil, model.ErrConflict
	}
	s.Attendance = model.AttendancePresent
	s.UpdatedAt = time.Now()
	f.sessions[id] = s
	return &s, nil
}

func (f *fakeSessionStore) GetByParty(_ context.Context, userID uuid.UUID) ([]*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Session
	for _, s := range f.sessions {
		if s.CoachID == userID || s.StudentID == userID {
			cp := s
			out = append(out, &cp)
		}
	}
	return out, nil
}

// fakeNotificationStore reproduces the partial-unique-index upsert: at most
// one unread row per (recipient, kind, subject).
type fakeNotificationStore struct {
	mu     sync.Mutex
	rows   []*model.Notification
	nextID int64

	failUpserts int // inject this many upsert failures
	upsertErr   error
}

func newFakeNotificationStore() *fakeNotificationStore {
	return &fakeNotificationStore{nextID: 1}
}

func (f *fakeNotificationStore) Upsert(_ context.Context, n *model.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpserts > 0 {
		f.failUpserts--
		return f.upsertErr
	}
	for _, row := range f.rows {
		if !row.Read && row.RecipientID == n.RecipientID && row.Kind == n.Kind && row.SubjectRef == n.SubjectRef {
			// A redelivered older event never rewinds a newer unread row.
			if row.CreatedAt.After(n.CreatedAt) {
				n.ID = row.ID
				return nil
			}
			row.Payload = n.Payload
			row.CreatedAt = n.CreatedAt
			n.ID = row.ID
			return nil
		}
	}
	n.ID = f.nextID
	f.nextID++
	cp := *n
	f.rows = append(f.rows, &cp)
	return nil
}

func (f *fakeNotificationStore) MarkRead(_ context.Context, id int64, recipientID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.ID == id && row.RecipientID == recipientID {
			row.Read = true
			return nil
		}
	}
	return model.ErrNotFoundOrForbidden
}

func (f *fakeNotificationStore) List(_ context.Context, recipientID uuid.UUID, after *model.NotificationCursor, limit int) ([]*model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []*model.Notification
	for _, row := range f.rows {
		if row.RecipientID != recipientID {
			continue
		}
		if after != nil && !afterCursor(row, after) {
			continue
		}
		cp := *row
		matched = append(matched, &cp)
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.Read != b.Read {
			return !a.Read
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})

	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// afterCursor reports whether row sorts strictly after the cursor position
// in (read asc, created_at desc, id desc) order.
func afterCursor(row *model.Notification, c *model.NotificationCursor) bool {
	if row.Read != c.Read {
		return row.Read
	}
	if !row.CreatedAt.Equal(c.CreatedAt) {
		return row.CreatedAt.Before(c.CreatedAt)
	}
	return row.ID < c.ID
}

func (f *fakeNotificationStore) CountUnread(_ context.Context, recipientID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, row := range f.rows {
		if row.RecipientID == recipientID && !row.Read {
			count++
		}
	}
	return count, nil
}

// recordingNotifier captures published events for assertions.
type recordingNotifier struct {
	mu     sync.Mutex
	events []model.LifecycleEvent
}

func (r *recordingNotifier) Publish(_ context.Context, event model.LifecycleEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingNotifier) Events() []model.LifecycleEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.LifecycleEvent(nil), r.events...)
}
