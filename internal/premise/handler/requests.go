package handler

import (
	"strings"

	dErrors "gatepass/pkg/domain-errors"
)

const maxNameLength = 120

// CreatePremiseRequest is the HTTP request body for POST /premises.
type CreatePremiseRequest struct {
	Name         string `json:"name"`
	BusinessType string `json:"business_type"`
}

// Validate validates the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *CreatePremiseRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if len(r.Name) > maxNameLength {
		return dErrors.New(dErrors.CodeValidation, "name is too long")
	}
	r.BusinessType = strings.TrimSpace(r.BusinessType)
	if r.BusinessType == "" {
		return dErrors.New(dErrors.CodeValidation, "business_type is required")
	}
	return nil
}

// UpdatePremiseRequest is the HTTP request body for PATCH /premises/me.
type UpdatePremiseRequest struct {
	Name         *string `json:"name"`
	BusinessType *string `json:"business_type"`
}

// Validate validates the request.
func (r *UpdatePremiseRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Name == nil && r.BusinessType == nil {
		return dErrors.New(dErrors.CodeValidation, "no fields to update")
	}
	if r.Name != nil {
		trimmed := strings.TrimSpace(*r.Name)
		if trimmed == "" {
			return dErrors.New(dErrors.CodeValidation, "name cannot be empty")
		}
		if len(trimmed) > maxNameLength {
			return dErrors.New(dErrors.CodeValidation, "name is too long")
		}
		r.Name = &trimmed
	}
	if r.BusinessType != nil {
		trimmed := strings.TrimSpace(*r.BusinessType)
		if trimmed == "" {
			return dErrors.New(dErrors.CodeValidation, "business_type cannot be empty")
		}
		r.BusinessType = &trimmed
	}
	return nil
}
