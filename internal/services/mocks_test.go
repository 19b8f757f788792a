package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"explorewithme/internal/domain"
)

// fakeTxManager serializes transactions with a mutex, standing in for
// the row lock the postgres implementation takes on the event.
type fakeTxManager struct {
	mu sync.Mutex
}

func (m *fakeTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

type memEventRepo struct {
	mu     sync.Mutex
	nextID int64
	events map[int64]*domain.Event
	err    error
}

func newMemEventRepo(events ...*domain.Event) *memEventRepo {
	repo := &memEventRepo{events: map[int64]*domain.Event{}, nextID: 1}
	for _, e := range events {
		repo.events[e.ID] = e
		if e.ID >= repo.nextID {
			repo.nextID = e.ID + 1
		}
	}
	return repo
}

func (m *memEventRepo) Create(ctx context.Context, event *domain.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	event.ID = m.nextID
	m.nextID++
	m.events[event.ID] = event
	return nil
}

func (m *memEventRepo) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	e, ok := m.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *e
	return &copied, nil
}

func (m *memEventRepo) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Event, error) {
	return m.GetByID(ctx, id)
}

func (m *memEventRepo) Update(ctx context.Context, event *domain.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.events[event.ID]; !ok {
		return domain.ErrNotFound
	}
	copied := *event
	m.events[event.ID] = &copied
	return nil
}

func (m *memEventRepo) ListByInitiator(ctx context.Context, initiatorID int64, p domain.PaginationParams) ([]*domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Event
	for _, e := range m.events {
		if e.InitiatorID == initiatorID {
			copied := *e
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memEventRepo) AdminSearch(ctx context.Context, f domain.AdminEventFilter, p domain.PaginationParams) ([]*domain.Event, error) {
	return nil, m.err
}

func (m *memEventRepo) PublicSearch(ctx context.Context, f domain.PublicEventFilter, p domain.PaginationParams) ([]*domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []*domain.Event
	for _, e := range m.events {
		if e.State == domain.EventStatePublished {
			copied := *e
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memEventRepo) ExistsByCategory(ctx context.Context, categoryID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.CategoryID == categoryID {
			return true, nil
		}
	}
	return false, nil
}

type memRequestRepo struct {
	mu       sync.Mutex
	nextID   int64
	requests map[int64]*domain.ParticipationRequest
	err      error
}

func newMemRequestRepo(reqs ...*domain.ParticipationRequest) *memRequestRepo {
	repo := &memRequestRepo{requests: map[int64]*domain.ParticipationRequest{}, nextID: 1}
	for _, r := range reqs {
		repo.requests[r.ID] = r
		if r.ID >= repo.nextID {
			repo.nextID = r.ID + 1
		}
	}
	return repo
}

func (m *memRequestRepo) Create(ctx context.Context, req *domain.ParticipationRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, r := range m.requests {
		if r.EventID == req.EventID && r.RequesterID == req.RequesterID {
			return domain.ErrDuplicateRequest
		}
	}
	req.ID = m.nextID
	m.nextID++
	copied := *req
	m.requests[req.ID] = &copied
	return nil
}

func (m *memRequestRepo) GetByID(ctx context.Context, id int64) (*domain.ParticipationRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	r, ok := m.requests[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *r
	return &copied, nil
}

func (m *memRequestRepo) GetByEventAndRequester(ctx context.Context, eventID, requesterID int64) (*domain.ParticipationRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, r := range m.requests {
		if r.EventID == eventID && r.RequesterID == requesterID {
			copied := *r
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memRequestRepo) ListByRequester(ctx context.Context, requesterID int64) ([]*domain.ParticipationRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.ParticipationRequest
	for _, r := range m.requests {
		if r.RequesterID == requesterID {
			copied := *r
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memRequestRepo) ListByEventExcludingRequester(ctx context.Context, eventID, requesterID int64) ([]*domain.ParticipationRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.ParticipationRequest
	for _, r := range m.requests {
		if r.EventID == eventID && r.RequesterID != requesterID {
			copied := *r
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memRequestRepo) ListByIDs(ctx context.Context, ids []int64) ([]*domain.ParticipationRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []*domain.ParticipationRequest
	for _, id := range ids {
		if r, ok := m.requests[id]; ok {
			copied := *r
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memRequestRepo) ListPendingByEvent(ctx context.Context, eventID int64) ([]*domain.ParticipationRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.ParticipationRequest
	for _, r := range m.requests {
		if r.EventID == eventID && r.Status == domain.RequestStatusPending {
			copied := *r
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memRequestRepo) UpdateStatus(ctx context.Context, id int64, status domain.ParticipationRequestStatus) error {
	return m.UpdateStatusBatch(ctx, []int64{id}, status)
}

func (m *memRequestRepo) UpdateStatusBatch(ctx context.Context, ids []int64, status domain.ParticipationRequestStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, id := range ids {
		r, ok := m.requests[id]
		if !ok {
			return domain.ErrNotFound
		}
		r.Status = status
	}
	return nil
}

func (m *memRequestRepo) CountByEventAndStatus(ctx context.Context, eventID int64, status domain.ParticipationRequestStatus) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, r := range m.requests {
		if r.EventID == eventID && r.Status == status {
			count++
		}
	}
	return count, nil
}

func (m *memRequestRepo) statusOf(id int64) domain.ParticipationRequestStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[id].Status
}

type memUserRepo struct {
	users map[int64]*domain.User
	err   error
}

func newMemUserRepo(ids ...int64) *memUserRepo {
	repo := &memUserRepo{users: map[int64]*domain.User{}}
	for _, id := range ids {
		repo.users[id] = &domain.User{ID: id, Name: "user", Email: "user@example.com"}
	}
	return repo
}

func (m *memUserRepo) Create(ctx context.Context, user *domain.User) error { return m.err }

func (m *memUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (m *memUserRepo) List(ctx context.Context, ids []int64, p domain.PaginationParams) ([]*domain.User, error) {
	return nil, m.err
}

func (m *memUserRepo) Delete(ctx context.Context, id int64) error { return m.err }

type memCategoryRepo struct {
	categories map[int64]*domain.Category
}

func newMemCategoryRepo(ids ...int64) *memCategoryRepo {
	repo := &memCategoryRepo{categories: map[int64]*domain.Category{}}
	for _, id := range ids {
		repo.categories[id] = &domain.Category{ID: id, Name: "category"}
	}
	return repo
}

func (m *memCategoryRepo) Create(ctx context.Context, c *domain.Category) error { return nil }

func (m *memCategoryRepo) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	c, ok := m.categories[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (m *memCategoryRepo) Update(ctx context.Context, c *domain.Category) error { return nil }
func (m *memCategoryRepo) Delete(ctx context.Context, id int64) error           { return nil }
func (m *memCategoryRepo) List(ctx context.Context, p domain.PaginationParams) ([]*domain.Category, error) {
	return nil, nil
}

type stubStatsClient struct {
	mu    sync.Mutex
	hits  []domain.EndpointHit
	byURI map[string]int64
	err   error
}

func (s *stubStatsClient) RecordHit(ctx context.Context, hit domain.EndpointHit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.hits = append(s.hits, hit)
	return nil
}

func (s *stubStatsClient) GetStats(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]domain.ViewStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var out []domain.ViewStats
	for _, uri := range uris {
		if hits, ok := s.byURI[uri]; ok {
			out = append(out, domain.ViewStats{App: "explore-with-me", URI: uri, Hits: hits})
		}
	}
	return out, nil
}

type stubEmailService struct {
	mu   sync.Mutex
	sent []*domain.ModerationOutcomeEmailData
	err  error
}

func (s *stubEmailService) SendModerationOutcome(ctx context.Context, data *domain.ModerationOutcomeEmailData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, data)
	return nil
}
