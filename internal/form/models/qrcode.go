package models

import (
	"time"

	id "gatepass/pkg/domain"
)

// QRCode is a durable opaque identifier bound 1:1 to a form at creation time.
// PremiseID is denormalized from the form for fast lookup on the hot intake
// path; qrcode.PremiseID == form.PremiseID must always hold, and a mismatch
// is a configuration-integrity fault, never a user error.
//
// Exactly one active QR identifier exists per form; regeneration deactivates
// the previous identifier instead of deleting it so printed codes fail with
// "expired" rather than "unknown".
type QRCode struct {
	ID         id.QRCodeID  `json:"id"`
	FormID     id.FormID    `json:"form_id"`
	PremiseID  id.PremiseID `json:"premise_id"`
	Identifier string       `json:"qr_identifier"`
	IsActive   bool         `json:"is_active"`
	CreatedAt  time.Time    `json:"created_at"`
}

// OwningPremise satisfies authz.PremiseScoped.
func (q *QRCode) OwningPremise() id.PremiseID { return q.PremiseID }
