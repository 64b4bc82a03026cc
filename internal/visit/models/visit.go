package models

import (
	"time"

	id "gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/formdata"
)

// VisitStatus is the lifecycle state of a visit record.
type VisitStatus string

const (
	// StatusPendingApproval is the canonical awaiting-decision state for
	// newly submitted visits.
	StatusPendingApproval VisitStatus = "pending_approval"
	// StatusCheckedIn is a legacy alias for the awaiting-decision state,
	// kept readable so rows written by older intake paths stay actionable.
	// New visits are never created in this status.
	StatusCheckedIn  VisitStatus = "checked_in"
	StatusApproved   VisitStatus = "approved"
	StatusDenied     VisitStatus = "denied"
	StatusCheckedOut VisitStatus = "checked_out"
)

var validStatuses = map[VisitStatus]bool{
	StatusPendingApproval: true,
	StatusCheckedIn:       true,
	StatusApproved:        true,
	StatusDenied:          true,
	StatusCheckedOut:      true,
}

// ParseVisitStatus validates a status string, used for list filters.
func ParseVisitStatus(s string) (VisitStatus, error) {
	status := VisitStatus(s)
	if !validStatuses[status] {
		return "", dErrors.New(dErrors.CodeValidation, "unknown visit status: "+s)
	}
	return status, nil
}

// AwaitingDecision reports whether the status is in the awaiting-decision
// superstate. pending_approval and the legacy checked_in marker are treated
// identically by every transition.
func (s VisitStatus) AwaitingDecision() bool {
	return s == StatusPendingApproval || s == StatusCheckedIn
}

// Terminal reports whether no further transition is possible.
func (s VisitStatus) Terminal() bool {
	return s == StatusDenied || s == StatusCheckedOut
}

// Visit is one submission against a premise's check-in form.
//
// Invariants:
//   - Status is one of pending_approval, checked_in, approved, denied,
//     checked_out
//   - CheckOutTime is non-nil iff Status is checked_out
//   - DenialReason is non-empty iff Status is denied
//   - awaiting → approved|denied and approved → checked_out are the only
//     transitions; denied and checked_out are terminal
type Visit struct {
	ID            id.VisitID        `json:"id"`
	PremiseID     id.PremiseID      `json:"premise_id"`
	FormID        id.FormID         `json:"form_id"`
	QRCodeID      id.QRCodeID       `json:"qrcode_id"`
	VisitorID     *id.VisitorID     `json:"visitor_id,omitempty"`
	FormVersion   int               `json:"form_version"`
	FormData      formdata.FormData `json:"form_data"`
	Status        VisitStatus       `json:"status"`
	DenialReason  string            `json:"denial_reason,omitempty"`
	DeviceSummary string            `json:"device_summary,omitempty"`
	ClientIP      string            `json:"client_ip,omitempty"`
	DecidedBy     *id.UserID        `json:"decided_by,omitempty"`
	CheckInTime   time.Time         `json:"check_in_time"`
	CheckOutTime  *time.Time        `json:"check_out_time,omitempty"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// OwningPremise satisfies authz.PremiseScoped.
func (v *Visit) OwningPremise() id.PremiseID { return v.PremiseID }

// NewVisit constructs a visit in the awaiting-decision state with the
// check-in time set to submission time.
func NewVisit(visitID id.VisitID, premiseID id.PremiseID, formID id.FormID, qrcodeID id.QRCodeID, formVersion int, data formdata.FormData, now time.Time) (*Visit, error) {
	if premiseID.IsNil() || formID.IsNil() || qrcodeID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "visit requires premise, form and qr code")
	}
	return &Visit{
		ID:          visitID,
		PremiseID:   premiseID,
		FormID:      formID,
		QRCodeID:    qrcodeID,
		FormVersion: formVersion,
		FormData:    data,
		Status:      StatusPendingApproval,
		CheckInTime: now,
		UpdatedAt:   now,
	}, nil
}

// CanApprove checks the awaiting → approved transition.
// Use with ApplyApproval in Execute callbacks so the status check and the
// write happen under the same lock.
func (v *Visit) CanApprove() error {
	if v.Status.AwaitingDecision() {
		return nil
	}
	return v.transitionError("approve")
}

// ApplyApproval transitions the visit to approved. Call CanApprove first.
func (v *Visit) ApplyApproval(by id.UserID, now time.Time) {
	v.Status = StatusApproved
	v.DecidedBy = &by
	v.UpdatedAt = now
}

// CanDeny checks the awaiting → denied transition.
func (v *Visit) CanDeny() error {
	if v.Status.AwaitingDecision() {
		return nil
	}
	return v.transitionError("deny")
}

// ApplyDenial transitions the visit to denied with the given reason.
// Call CanDeny first; the reason is validated at the service boundary.
func (v *Visit) ApplyDenial(by id.UserID, reason string, now time.Time) {
	v.Status = StatusDenied
	v.DenialReason = reason
	v.DecidedBy = &by
	v.UpdatedAt = now
}

// CanCheckout checks the approved → checked_out transition. An already
// checked-out visit and a never-approved visit fail with distinct messages.
func (v *Visit) CanCheckout() error {
	switch {
	case v.Status == StatusCheckedOut:
		return dErrors.New(dErrors.CodeInvalidState, "visit already checked out")
	case v.Status != StatusApproved:
		return dErrors.New(dErrors.CodeInvalidState, "visit is not approved")
	}
	return nil
}

// ApplyCheckout transitions the visit to checked_out and records the
// departure time. Call CanCheckout first.
func (v *Visit) ApplyCheckout(now time.Time) {
	v.Status = StatusCheckedOut
	v.CheckOutTime = &now
	v.UpdatedAt = now
}

// LinkVisitor attaches a resolved visitor identity. Linkage is a secondary
// update and carries no status precondition.
func (v *Visit) LinkVisitor(visitorID id.VisitorID, now time.Time) {
	v.VisitorID = &visitorID
	v.UpdatedAt = now
}

func (v *Visit) transitionError(action string) error {
	switch v.Status {
	case StatusCheckedOut:
		return dErrors.New(dErrors.CodeInvalidState, "visit already checked out")
	case StatusApproved:
		return dErrors.New(dErrors.CodeInvalidState, "visit is already approved")
	case StatusDenied:
		return dErrors.New(dErrors.CodeInvalidState, "visit is already denied")
	}
	return dErrors.New(dErrors.CodeInvalidState, "cannot "+action+" visit in status "+string(v.Status))
}
