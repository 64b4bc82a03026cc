package form

import (
	"context"
	"sort"
	"sync"

	"gatepass/internal/form/models"
	id "gatepass/pkg/domain"
	"gatepass/pkg/platform/sentinel"
)

// InMemory keeps forms behind a mutex.
type InMemory struct {
	mu    sync.RWMutex
	forms map[id.FormID]*models.Form
}

func NewInMemory() *InMemory {
	return &InMemory{forms: make(map[id.FormID]*models.Form)}
}

func (s *InMemory) Create(_ context.Context, f *models.Form) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := cloneForm(f)
	s.forms[f.ID] = cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, formID id.FormID) (*models.Form, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.forms[formID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneForm(f), nil
}

func (s *InMemory) ListByPremise(_ context.Context, premiseID id.PremiseID) ([]*models.Form, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Form
	for _, f := range s.forms {
		if f.PremiseID == premiseID {
			out = append(out, cloneForm(f))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemory) Update(_ context.Context, f *models.Form) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.forms[f.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.forms[f.ID] = cloneForm(f)
	return nil
}

func (s *InMemory) Delete(_ context.Context, formID id.FormID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.forms[formID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.forms, formID)
	return nil
}

func cloneForm(f *models.Form) *models.Form {
	cp := *f
	cp.Fields = make([]models.FieldDefinition, len(f.Fields))
	copy(cp.Fields, f.Fields)
	return &cp
}
