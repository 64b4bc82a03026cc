package models

import (
	"strings"
	"time"

	id "gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
)

// InputKind names the input widget a field renders as. The engine treats it
// as opaque beyond validation; rendering is the UI's concern.
type InputKind string

const (
	InputText     InputKind = "text"
	InputEmail    InputKind = "email"
	InputPhone    InputKind = "phone"
	InputNumber   InputKind = "number"
	InputDate     InputKind = "date"
	InputTextarea InputKind = "textarea"
)

var validInputKinds = map[InputKind]bool{
	InputText: true, InputEmail: true, InputPhone: true,
	InputNumber: true, InputDate: true, InputTextarea: true,
}

// FieldDefinition is one entry in a form's ordered field list.
type FieldDefinition struct {
	Label     string    `json:"label"`
	InputKind InputKind `json:"input_kind"`
	Required  bool      `json:"required"`
}

// Form is a named, versioned set of field definitions owned by exactly one
// premise.
//
// Invariants:
//   - Name is non-empty
//   - at least one field; every field has a non-empty label and a known kind
//   - a form is never deleted while QR codes reference it (enforced at the
//     service layer against the QR store)
type Form struct {
	ID        id.FormID         `json:"id"`
	PremiseID id.PremiseID      `json:"premise_id"`
	Name      string            `json:"name"`
	Fields    []FieldDefinition `json:"fields"`
	IsActive  bool              `json:"is_active"`
	Version   int               `json:"version"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// OwningPremise satisfies authz.PremiseScoped.
func (f *Form) OwningPremise() id.PremiseID { return f.PremiseID }

// ValidateFields checks the field list invariants shared by create and update.
func ValidateFields(fields []FieldDefinition) error {
	if len(fields) == 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "form requires at least one field")
	}
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		label := strings.TrimSpace(f.Label)
		if label == "" {
			return dErrors.New(dErrors.CodeInvariantViolation, "field label cannot be empty")
		}
		if !validInputKinds[f.InputKind] {
			return dErrors.New(dErrors.CodeInvariantViolation, "unknown input kind: "+string(f.InputKind))
		}
		key := strings.ToLower(label)
		if seen[key] {
			return dErrors.New(dErrors.CodeInvariantViolation, "duplicate field label: "+label)
		}
		seen[key] = true
	}
	return nil
}

// NewForm validates invariants and constructs an active version-1 form.
func NewForm(formID id.FormID, premiseID id.PremiseID, name string, fields []FieldDefinition, now time.Time) (*Form, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "form name cannot be empty")
	}
	if premiseID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "form premise is required")
	}
	if err := ValidateFields(fields); err != nil {
		return nil, err
	}
	return &Form{
		ID:        formID,
		PremiseID: premiseID,
		Name:      name,
		Fields:    fields,
		IsActive:  true,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
