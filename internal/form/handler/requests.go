package handler

import (
	"strings"

	"gatepass/internal/form/models"
	dErrors "gatepass/pkg/domain-errors"
)

const (
	maxFormNameLength = 120
	maxFieldCount     = 50
)

// FieldInput is one field definition in a create or update body.
type FieldInput struct {
	Label     string `json:"label"`
	InputKind string `json:"input_kind"`
	Required  bool   `json:"required"`
}

// CreateFormRequest is the HTTP request body for POST /forms.
type CreateFormRequest struct {
	Name   string       `json:"name"`
	Fields []FieldInput `json:"fields"`

	parsedFields []models.FieldDefinition
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *CreateFormRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if len(r.Name) > maxFormNameLength {
		return dErrors.New(dErrors.CodeValidation, "name is too long")
	}

	fields, err := parseFields(r.Fields)
	if err != nil {
		return err
	}
	r.parsedFields = fields
	return nil
}

// ParsedFields returns the validated field definitions.
func (r *CreateFormRequest) ParsedFields() []models.FieldDefinition {
	return r.parsedFields
}

// UpdateFormRequest is the HTTP request body for PATCH /forms/{formID}.
// Absent members leave the current value unchanged.
type UpdateFormRequest struct {
	Name     *string      `json:"name"`
	Fields   []FieldInput `json:"fields"`
	IsActive *bool        `json:"is_active"`

	parsedFields []models.FieldDefinition
}

// Validate validates and parses the request.
func (r *UpdateFormRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Name == nil && r.Fields == nil && r.IsActive == nil {
		return dErrors.New(dErrors.CodeValidation, "no fields to update")
	}
	if r.Name != nil {
		trimmed := strings.TrimSpace(*r.Name)
		if trimmed == "" {
			return dErrors.New(dErrors.CodeValidation, "name cannot be empty")
		}
		if len(trimmed) > maxFormNameLength {
			return dErrors.New(dErrors.CodeValidation, "name is too long")
		}
		r.Name = &trimmed
	}
	if r.Fields != nil {
		fields, err := parseFields(r.Fields)
		if err != nil {
			return err
		}
		r.parsedFields = fields
	}
	return nil
}

// ParsedFields returns the validated field definitions, nil when the body
// did not carry a fields member.
func (r *UpdateFormRequest) ParsedFields() []models.FieldDefinition {
	return r.parsedFields
}

func parseFields(inputs []FieldInput) ([]models.FieldDefinition, error) {
	if len(inputs) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "at least one field is required")
	}
	if len(inputs) > maxFieldCount {
		return nil, dErrors.New(dErrors.CodeValidation, "too many fields")
	}
	fields := make([]models.FieldDefinition, 0, len(inputs))
	for _, in := range inputs {
		fields = append(fields, models.FieldDefinition{
			Label:     strings.TrimSpace(in.Label),
			InputKind: models.InputKind(strings.TrimSpace(strings.ToLower(in.InputKind))),
			Required:  in.Required,
		})
	}
	if err := models.ValidateFields(fields); err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, dErrors.MessageOf(err))
	}
	return fields, nil
}
