package models

import (
	"strings"
	"time"

	id "gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
)

// Premise is the aggregate root for a tenant account: one physical or logical
// site accepting visitors.
//
// Invariants:
//   - Name is non-empty and at most 128 characters
//   - OwnerID identifies exactly one principal; at most one premise exists
//     per owner (enforced by the store's unique owner constraint)
//   - FriendlyCode is unique across all premises and immutable after creation
//
// Every authorization decision in the system reduces to "is the acting
// principal this premise's owner"; Form, QRCode, and Visit all resolve to a
// PremiseID and through it to OwnerID.
type Premise struct {
	ID           id.PremiseID `json:"id"`
	OwnerID      id.UserID    `json:"owner_id"`
	Name         string       `json:"name"`
	BusinessType string       `json:"business_type,omitempty"`
	FriendlyCode string       `json:"friendly_code"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// NewPremise validates invariants and constructs a premise.
func NewPremise(premiseID id.PremiseID, ownerID id.UserID, name, businessType, friendlyCode string, now time.Time) (*Premise, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "premise name cannot be empty")
	}
	if len(name) > 128 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "premise name must be 128 characters or less")
	}
	if ownerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "premise owner is required")
	}
	if friendlyCode == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "friendly code is required")
	}
	return &Premise{
		ID:           premiseID,
		OwnerID:      ownerID,
		Name:         name,
		BusinessType: strings.TrimSpace(businessType),
		FriendlyCode: friendlyCode,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// IsOwnedBy reports whether principal owns this premise.
func (p *Premise) IsOwnedBy(principal id.UserID) bool {
	return !principal.IsNil() && p.OwnerID == principal
}
