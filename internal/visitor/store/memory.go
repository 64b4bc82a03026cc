package store

import (
	"context"
	"sync"

	"gatepass/internal/visitor/models"
	id "gatepass/pkg/domain"
	"gatepass/pkg/platform/sentinel"
)

// InMemory keeps visitor identities behind a mutex. The email and phone maps
// enforce the same uniqueness the postgres partial unique indexes provide;
// the check and the insert happen under one lock so concurrent provisioning
// of the same email yields exactly one row.
type InMemory struct {
	mu       sync.RWMutex
	visitors map[id.VisitorID]*models.Visitor
	byEmail  map[string]id.VisitorID
	byPhone  map[string]id.VisitorID
}

func NewInMemory() *InMemory {
	return &InMemory{
		visitors: make(map[id.VisitorID]*models.Visitor),
		byEmail:  make(map[string]id.VisitorID),
		byPhone:  make(map[string]id.VisitorID),
	}
}

// Create inserts the visitor unless its email or phone is already taken.
func (s *InMemory) Create(_ context.Context, v *models.Visitor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v.Email != "" {
		if _, taken := s.byEmail[v.Email]; taken {
			return sentinel.ErrAlreadyUsed
		}
	}
	if v.Phone != "" {
		if _, taken := s.byPhone[v.Phone]; taken {
			return sentinel.ErrAlreadyUsed
		}
	}
	cp := *v
	s.visitors[v.ID] = &cp
	if v.Email != "" {
		s.byEmail[v.Email] = v.ID
	}
	if v.Phone != "" {
		s.byPhone[v.Phone] = v.ID
	}
	return nil
}

func (s *InMemory) FindByID(_ context.Context, visitorID id.VisitorID) (*models.Visitor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.visitors[visitorID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (s *InMemory) FindByEmail(_ context.Context, email string) (*models.Visitor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	visitorID, ok := s.byEmail[email]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.visitors[visitorID]
	return &cp, nil
}

func (s *InMemory) FindByPhone(_ context.Context, phone string) (*models.Visitor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	visitorID, ok := s.byPhone[phone]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.visitors[visitorID]
	return &cp, nil
}
