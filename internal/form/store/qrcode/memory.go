package qrcode

import (
	"context"
	"sync"
	"time"

	"gatepass/internal/form/models"
	id "gatepass/pkg/domain"
	"gatepass/pkg/platform/sentinel"
)

// InMemory keeps QR bindings behind a mutex. The identifier map enforces the
// same uniqueness the postgres unique index provides.
type InMemory struct {
	mu           sync.RWMutex
	codes        map[id.QRCodeID]*models.QRCode
	byIdentifier map[string]id.QRCodeID
}

func NewInMemory() *InMemory {
	return &InMemory{
		codes:        make(map[id.QRCodeID]*models.QRCode),
		byIdentifier: make(map[string]id.QRCodeID),
	}
}

func (s *InMemory) Create(_ context.Context, qr *models.QRCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byIdentifier[qr.Identifier]; taken {
		return sentinel.ErrAlreadyUsed
	}
	cp := *qr
	s.codes[qr.ID] = &cp
	s.byIdentifier[qr.Identifier] = qr.ID
	return nil
}

func (s *InMemory) FindByIdentifier(_ context.Context, identifier string) (*models.QRCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	qrID, ok := s.byIdentifier[identifier]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.codes[qrID]
	return &cp, nil
}

func (s *InMemory) FindActiveByForm(_ context.Context, formID id.FormID) (*models.QRCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, qr := range s.codes {
		if qr.FormID == formID && qr.IsActive {
			cp := *qr
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// DeactivateByForm marks every active identifier for the form inactive.
func (s *InMemory) DeactivateByForm(_ context.Context, formID id.FormID, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, qr := range s.codes {
		if qr.FormID == formID {
			qr.IsActive = false
		}
	}
	return nil
}

func (s *InMemory) CountByForm(_ context.Context, formID id.FormID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, qr := range s.codes {
		if qr.FormID == formID {
			n++
		}
	}
	return n, nil
}
