package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gatherhq/gather-api/models"
)

// Memory is an in-process Store used when no DATABASE_URL is configured
// (local development) and by the test suites. It mirrors the Postgres
// backend's semantics, including models.ErrNotFound on misses.
type Memory struct {
	mu sync.RWMutex

	users    map[string]*models.User       // by id
	events   map[string]*models.Event      // by id
	members  map[string]map[string]bool    // event id -> user ids
	pending  map[string]map[string]bool    // user id -> event ids
	invites  map[string]models.UserInvite  // by id
	sessions map[string]memorySession      // by refresh token
}

type memorySession struct {
	userID    string
	expiresAt time.Time
}

func NewMemory() *Memory {
	return &Memory{
		users:    map[string]*models.User{},
		events:   map[string]*models.Event{},
		members:  map[string]map[string]bool{},
		pending:  map[string]map[string]bool{},
		invites:  map[string]models.UserInvite{},
		sessions: map[string]memorySession{},
	}
}

func (s *Memory) CreateUser(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	clone := *u
	s.users[u.ID] = &clone
	return nil
}

func (s *Memory) UserByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (s *Memory) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *Memory) UpdateUser(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.users[u.ID]
	if !ok {
		return models.ErrNotFound
	}
	u.CreatedAt = current.CreatedAt
	u.UpdatedAt = time.Now()
	clone := *u
	s.users[u.ID] = &clone
	return nil
}

func (s *Memory) UsersByIDs(ctx context.Context, ids []string) (map[string]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := map[string]models.User{}
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			users[id] = *u
		}
	}
	return users, nil
}

func (s *Memory) CreateSession(ctx context.Context, userID, refreshToken string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[refreshToken] = memorySession{userID: userID, expiresAt: expiresAt}
	return nil
}

func (s *Memory) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	now := time.Now()
	for token, sess := range s.sessions {
		if now.After(sess.expiresAt) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed, nil
}

func (s *Memory) CreateEvent(ctx context.Context, e *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	e.Members = []string{e.Organizer}
	if e.PendingMembers == nil {
		e.PendingMembers = []string{}
	}
	if e.Items == nil {
		e.Items = []models.Item{}
	}

	s.events[e.ID] = cloneEvent(e)
	s.members[e.ID] = map[string]bool{e.Organizer: true}
	return nil
}

func (s *Memory) EventByID(ctx context.Context, id string) (*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.events[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	out := cloneEvent(e)
	s.fillRelations(out)
	return out, nil
}

func (s *Memory) UpdateEvent(ctx context.Context, e *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[e.ID]; !ok {
		return models.ErrNotFound
	}
	e.UpdatedAt = time.Now()
	for i := range e.Items {
		if e.Items[i].ID == "" {
			e.Items[i].ID = uuid.New().String()
		}
	}
	s.events[e.ID] = cloneEvent(e)
	return nil
}

func (s *Memory) DeleteEventOwnedBy(ctx context.Context, id, organizerID string) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[id]
	if !ok || e.Organizer != organizerID {
		return nil, models.ErrNotFound
	}
	out := cloneEvent(e)
	s.fillRelations(out)

	delete(s.events, id)
	delete(s.members, id)
	for _, pendingSet := range s.pending {
		delete(pendingSet, id)
	}
	return out, nil
}

func (s *Memory) EventsByOrganizer(ctx context.Context, userID string) ([]models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := []models.Event{}
	for _, e := range s.events {
		if e.Organizer == userID {
			out := cloneEvent(e)
			s.fillRelations(out)
			events = append(events, *out)
		}
	}
	return events, nil
}

func (s *Memory) EventsByMember(ctx context.Context, userID string) ([]models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := []models.Event{}
	for id, memberSet := range s.members {
		if memberSet[userID] {
			if e, ok := s.events[id]; ok {
				out := cloneEvent(e)
				s.fillRelations(out)
				events = append(events, *out)
			}
		}
	}
	return events, nil
}

func (s *Memory) EventsByIDs(ctx context.Context, ids []string) ([]models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := []models.Event{}
	for _, id := range ids {
		if e, ok := s.events[id]; ok {
			out := cloneEvent(e)
			s.fillRelations(out)
			events = append(events, *out)
		}
	}
	return events, nil
}

func (s *Memory) AddMember(ctx context.Context, eventID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[eventID]; !ok {
		return models.ErrNotFound
	}
	if s.members[eventID] == nil {
		s.members[eventID] = map[string]bool{}
	}
	s.members[eventID][userID] = true
	return nil
}

func (s *Memory) PendingEventIDs(ctx context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := []string{}
	for id := range s.pending[userID] {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Memory) AddPendingEvent(ctx context.Context, userID, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending[userID] == nil {
		s.pending[userID] = map[string]bool{}
	}
	s.pending[userID][eventID] = true
	return nil
}

func (s *Memory) RemovePendingEvent(ctx context.Context, userID, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.pending[userID][eventID] {
		return false, nil
	}
	delete(s.pending[userID], eventID)
	return true, nil
}

func (s *Memory) CreateUserInvite(ctx context.Context, inv *models.UserInvite) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.invites {
		if existing.Email == inv.Email && existing.EventID == inv.EventID {
			return nil
		}
	}
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	inv.CreatedAt = time.Now()
	s.invites[inv.ID] = *inv
	return nil
}

func (s *Memory) UserInvitesByEmail(ctx context.Context, email string) ([]models.UserInvite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	invites := []models.UserInvite{}
	for _, inv := range s.invites {
		if inv.Email == email {
			invites = append(invites, inv)
		}
	}
	return invites, nil
}

func (s *Memory) DeleteUserInvitesByEmail(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, inv := range s.invites {
		if inv.Email == email {
			delete(s.invites, id)
		}
	}
	return nil
}

// fillRelations recomputes the member and pending-member views. Caller must
// hold at least a read lock.
func (s *Memory) fillRelations(e *models.Event) {
	e.Members = []string{}
	for id := range s.members[e.ID] {
		e.Members = append(e.Members, id)
	}
	e.PendingMembers = []string{}
	for userID, pendingSet := range s.pending {
		if pendingSet[e.ID] {
			e.PendingMembers = append(e.PendingMembers, userID)
		}
	}
}

func cloneEvent(e *models.Event) *models.Event {
	clone := *e
	clone.Items = append([]models.Item{}, e.Items...)
	clone.Members = append([]string{}, e.Members...)
	clone.PendingMembers = append([]string{}, e.PendingMembers...)
	return &clone
}
