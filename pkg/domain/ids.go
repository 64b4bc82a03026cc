// Package domain holds shared domain primitives: typed identifiers and the
// small value types that cross module boundaries.
//
// IDs are distinct named UUID types so the compiler rejects accidental
// cross-entity assignment (a VisitID can never be passed where a PremiseID is
// expected). Parse functions enforce validity at trust boundaries.
package domain

import (
	"github.com/google/uuid"

	dErrors "gatepass/pkg/domain-errors"
)

// Typed identifiers for every premise-scoped entity plus the two identities
// that are not premise-owned (UserID for principals, VisitorID for the shared
// visitor profile pool).
type (
	UserID    uuid.UUID
	PremiseID uuid.UUID
	FormID    uuid.UUID
	QRCodeID  uuid.UUID
	VisitID   uuid.UUID
	VisitorID uuid.UUID
)

func parseUUID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, what+" id is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "invalid "+what+" id")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, what+" id must not be nil")
	}
	return u, nil
}

// ParseUserID validates and converts a string into a UserID.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user")
	return UserID(u), err
}

// ParsePremiseID validates and converts a string into a PremiseID.
func ParsePremiseID(s string) (PremiseID, error) {
	u, err := parseUUID(s, "premise")
	return PremiseID(u), err
}

// ParseFormID validates and converts a string into a FormID.
func ParseFormID(s string) (FormID, error) {
	u, err := parseUUID(s, "form")
	return FormID(u), err
}

// ParseQRCodeID validates and converts a string into a QRCodeID.
func ParseQRCodeID(s string) (QRCodeID, error) {
	u, err := parseUUID(s, "qrcode")
	return QRCodeID(u), err
}

// ParseVisitID validates and converts a string into a VisitID.
func ParseVisitID(s string) (VisitID, error) {
	u, err := parseUUID(s, "visit")
	return VisitID(u), err
}

// ParseVisitorID validates and converts a string into a VisitorID.
func ParseVisitorID(s string) (VisitorID, error) {
	u, err := parseUUID(s, "visitor")
	return VisitorID(u), err
}

func (id UserID) String() string    { return uuid.UUID(id).String() }
func (id PremiseID) String() string { return uuid.UUID(id).String() }
func (id FormID) String() string    { return uuid.UUID(id).String() }
func (id QRCodeID) String() string  { return uuid.UUID(id).String() }
func (id VisitID) String() string   { return uuid.UUID(id).String() }
func (id VisitorID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id PremiseID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id FormID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id QRCodeID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id VisitID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id VisitorID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// NewUserID returns a fresh random UserID.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewPremiseID returns a fresh random PremiseID.
func NewPremiseID() PremiseID { return PremiseID(uuid.New()) }

// NewFormID returns a fresh random FormID.
func NewFormID() FormID { return FormID(uuid.New()) }

// NewQRCodeID returns a fresh random QRCodeID.
func NewQRCodeID() QRCodeID { return QRCodeID(uuid.New()) }

// NewVisitID returns a fresh random VisitID.
func NewVisitID() VisitID { return VisitID(uuid.New()) }

// NewVisitorID returns a fresh random VisitorID.
func NewVisitorID() VisitorID { return VisitorID(uuid.New()) }
