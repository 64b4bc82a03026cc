package models

import (
	"time"

	id "gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
)

// Visitor is a deduplicated identity recurring across submissions. Email and
// phone are the matching keys; each is unique across visitors when present.
type Visitor struct {
	ID        id.VisitorID `json:"id"`
	Email     string       `json:"email,omitempty"`
	Phone     string       `json:"phone,omitempty"`
	FullName  string       `json:"full_name,omitempty"`
	IDNumber  string       `json:"id_number,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// NewVisitor constructs a visitor identity. At least one of full name, email
// or id number must be present; phone alone is not enough to provision.
func NewVisitor(visitorID id.VisitorID, email, phone, fullName, idNumber string, now time.Time) (*Visitor, error) {
	if fullName == "" && email == "" && idNumber == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "visitor requires a name, email or id number")
	}
	return &Visitor{
		ID:        visitorID,
		Email:     email,
		Phone:     phone,
		FullName:  fullName,
		IDNumber:  idNumber,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
