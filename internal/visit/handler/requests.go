package handler

import (
	"strings"

	dErrors "gatepass/pkg/domain-errors"
)

const maxReasonLength = 500

// DenyRequest is the HTTP request body for POST /visits/{visitID}/deny.
type DenyRequest struct {
	Reason string `json:"reason"`
}

// Validate validates the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *DenyRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Reason = strings.TrimSpace(r.Reason)
	if r.Reason == "" {
		return dErrors.New(dErrors.CodeValidation, "reason is required")
	}
	if len(r.Reason) > maxReasonLength {
		return dErrors.New(dErrors.CodeValidation, "reason is too long")
	}
	return nil
}
