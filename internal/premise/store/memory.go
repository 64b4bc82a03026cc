package store

import (
	"context"
	"sync"

	"gatepass/internal/premise/models"
	id "gatepass/pkg/domain"
	"gatepass/pkg/platform/sentinel"
)

// InMemory keeps premises behind a mutex. Uniqueness of owner and friendly
// code is enforced under the same lock that performs the insert, mirroring
// the postgres unique indexes.
type InMemory struct {
	mu       sync.RWMutex
	premises map[id.PremiseID]*models.Premise
	byOwner  map[id.UserID]id.PremiseID
	byCode   map[string]id.PremiseID
}

func NewInMemory() *InMemory {
	return &InMemory{
		premises: make(map[id.PremiseID]*models.Premise),
		byOwner:  make(map[id.UserID]id.PremiseID),
		byCode:   make(map[string]id.PremiseID),
	}
}

// CreateIfOwnerAvailable inserts the premise unless the owner already has one
// or the friendly code is taken.
func (s *InMemory) CreateIfOwnerAvailable(_ context.Context, p *models.Premise) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byOwner[p.OwnerID]; taken {
		return sentinel.ErrAlreadyUsed
	}
	if _, taken := s.byCode[p.FriendlyCode]; taken {
		return sentinel.ErrAlreadyUsed
	}
	cp := *p
	s.premises[p.ID] = &cp
	s.byOwner[p.OwnerID] = p.ID
	s.byCode[p.FriendlyCode] = p.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, premiseID id.PremiseID) (*models.Premise, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.premises[premiseID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *InMemory) FindByOwner(_ context.Context, ownerID id.UserID) (*models.Premise, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	premiseID, ok := s.byOwner[ownerID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.premises[premiseID]
	return &cp, nil
}

// Update persists mutable premise fields. The friendly code and owner are
// immutable and ignored here.
func (s *InMemory) Update(_ context.Context, p *models.Premise) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.premises[p.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	current.Name = p.Name
	current.BusinessType = p.BusinessType
	current.UpdatedAt = p.UpdatedAt
	return nil
}
