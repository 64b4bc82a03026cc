package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"gatepass/internal/visit/models"
	id "gatepass/pkg/domain"
	"gatepass/pkg/platform/sentinel"
)

// InMemory keeps visits behind a mutex.
type InMemory struct {
	mu     sync.RWMutex
	visits map[id.VisitID]*models.Visit
}

func NewInMemory() *InMemory {
	return &InMemory{visits: make(map[id.VisitID]*models.Visit)}
}

func (s *InMemory) Create(_ context.Context, v *models.Visit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visits[v.ID] = cloneVisit(v)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, visitID id.VisitID) (*models.Visit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.visits[visitID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneVisit(v), nil
}

// ListByPremise returns the premise's visits, optionally filtered by status,
// newest check-in first.
func (s *InMemory) ListByPremise(_ context.Context, premiseID id.PremiseID, status *models.VisitStatus) ([]*models.Visit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Visit
	for _, v := range s.visits {
		if v.PremiseID != premiseID {
			continue
		}
		if status != nil && v.Status != *status {
			continue
		}
		out = append(out, cloneVisit(v))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CheckInTime.After(out[j].CheckInTime)
	})
	return out, nil
}

// Execute atomically validates and mutates the visit, holding the store lock
// across both so two concurrent transitions on the same visit serialize and
// exactly one passes its status precondition.
func (s *InMemory) Execute(_ context.Context, visitID id.VisitID, validate func(*models.Visit) error, mutate func(*models.Visit)) (*models.Visit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.visits[visitID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(v); err != nil {
		return nil, err
	}
	mutate(v)
	return cloneVisit(v), nil
}

// LinkVisitor attaches the resolved visitor identity as a secondary update.
func (s *InMemory) LinkVisitor(_ context.Context, visitID id.VisitID, visitorID id.VisitorID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.visits[visitID]
	if !ok {
		return sentinel.ErrNotFound
	}
	v.LinkVisitor(visitorID, at)
	return nil
}

func cloneVisit(v *models.Visit) *models.Visit {
	cp := *v
	if v.VisitorID != nil {
		visitorID := *v.VisitorID
		cp.VisitorID = &visitorID
	}
	if v.DecidedBy != nil {
		decidedBy := *v.DecidedBy
		cp.DecidedBy = &decidedBy
	}
	if v.CheckOutTime != nil {
		checkOut := *v.CheckOutTime
		cp.CheckOutTime = &checkOut
	}
	cp.FormData.Original = copyMap(v.FormData.Original)
	cp.FormData.Normalized = copyMap(v.FormData.Normalized)
	return &cp
}

func copyMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	cp := make(map[string]string, len(m))
	for k, val := range m {
		cp[k] = val
	}
	return cp
}
