package testutil

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"nestaway/internal/models"
	"nestaway/internal/repository"
)

// UserRepoStub is an in-memory repository.UserRepository.
type UserRepoStub struct {
	mu    sync.Mutex
	users map[string]*models.User
	// Err, when set, is returned by every method.
	Err error
}

func NewUserRepoStub() *UserRepoStub {
	return &UserRepoStub{users: make(map[string]*models.User)}
}

func (s *UserRepoStub) GetByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, models.NewNotFoundMessage("User not found")
	}
	cp := *u
	return &cp, nil
}

func (s *UserRepoStub) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	email = models.NormalizeEmail(email)
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *UserRepoStub) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	user.Prepare()
	for _, u := range s.users {
		if u.Email == user.Email {
			return models.NewConflictError("Email already registered")
		}
	}
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *UserRepoStub) MarkVerified(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	u, ok := s.users[id]
	if !ok {
		return models.NewNotFoundMessage("User not found")
	}
	u.Verified = true
	return nil
}

func (s *UserRepoStub) ListUnverified(_ context.Context, limit int) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.User{}
	for _, u := range s.users {
		if !u.Verified {
			out = append(out, *u)
		}
	}
	slices.SortFunc(out, func(a, b models.User) int { return a.CreatedAt.Compare(b.CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Seed stores u as is, bypassing the email uniqueness check.
func (s *UserRepoStub) Seed(u *models.User) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.Prepare()
	cp := *u
	s.users[u.ID] = &cp
	return u
}

// PropertyRepoStub is an in-memory repository.PropertyRepository.
type PropertyRepoStub struct {
	mu    sync.Mutex
	items []models.Property
	users *UserRepoStub
	Err   error
	// Creates counts successful Create calls.
	Creates int
}

// NewPropertyRepoStub joins hosts from users when it is not nil.
func NewPropertyRepoStub(users *UserRepoStub) *PropertyRepoStub {
	return &PropertyRepoStub{users: users}
}

func (s *PropertyRepoStub) Create(_ context.Context, p *models.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	p.Prepare()
	s.items = append(s.items, *p)
	s.Creates++
	return nil
}

func (s *PropertyRepoStub) join(p models.Property) models.Property {
	if s.users != nil {
		if host, err := s.users.GetByID(context.Background(), p.HostID); err == nil {
			p.HostInfo = host.Summary()
		}
	}
	return p
}

func (s *PropertyRepoStub) GetByID(_ context.Context, id string) (*models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, p := range s.items {
		if p.ID == id {
			out := s.join(p)
			return &out, nil
		}
	}
	return nil, models.NewNotFoundMessage("Property not found")
}

func matches(p models.Property, f repository.PropertyFilter) bool {
	if !p.IsAvailable {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Title), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) &&
			!strings.Contains(strings.ToLower(p.Location), q) {
			return false
		}
	}
	switch {
	case f.Category != "" && p.Category != f.Category,
		f.PriceMin != nil && p.Price < *f.PriceMin,
		f.PriceMax != nil && p.Price > *f.PriceMax,
		f.MinBeds > 0 && p.Beds < f.MinBeds,
		f.RoomType != "" && p.RoomType != f.RoomType,
		f.MinGuests > 0 && p.MaxGuests < f.MinGuests:
		return false
	}
	return true
}

func (s *PropertyRepoStub) List(_ context.Context, f repository.PropertyFilter) ([]models.Property, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, 0, s.Err
	}
	var hits []models.Property
	for _, p := range s.items {
		if matches(p, f) {
			hits = append(hits, s.join(p))
		}
	}
	slices.SortStableFunc(hits, func(a, b models.Property) int {
		switch f.Sort {
		case repository.SortPriceAsc:
			return cmp.Compare(a.Price, b.Price)
		case repository.SortPriceDesc:
			return cmp.Compare(b.Price, a.Price)
		case repository.SortRating:
			return cmp.Compare(b.Rating, a.Rating)
		default:
			return b.CreatedAt.Compare(a.CreatedAt)
		}
	})

	total := int64(len(hits))
	limit := f.Limit
	if limit <= 0 {
		limit = repository.DefaultPageSize
	}
	start := min(f.Offset(), len(hits))
	end := min(start+limit, len(hits))
	return hits[start:end], total, nil
}

func (s *PropertyRepoStub) ListByHost(_ context.Context, hostID string) ([]models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := []models.Property{}
	for _, p := range s.items {
		if p.HostID == hostID {
			out = append(out, s.join(p))
		}
	}
	slices.SortStableFunc(out, func(a, b models.Property) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}
