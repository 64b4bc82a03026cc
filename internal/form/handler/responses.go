package handler

import (
	"time"

	"gatepass/internal/form/models"
)

// FormResponse is the HTTP representation of a form.
type FormResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Fields    []FieldResponse `json:"fields"`
	IsActive  bool            `json:"is_active"`
	Version   int             `json:"version"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// FieldResponse is one field definition in a form response.
type FieldResponse struct {
	Label     string `json:"label"`
	InputKind string `json:"input_kind"`
	Required  bool   `json:"required"`
}

// FromForm converts a domain form to its HTTP representation.
func FromForm(f *models.Form) *FormResponse {
	fields := make([]FieldResponse, 0, len(f.Fields))
	for _, fd := range f.Fields {
		fields = append(fields, FieldResponse{
			Label:     fd.Label,
			InputKind: string(fd.InputKind),
			Required:  fd.Required,
		})
	}
	return &FormResponse{
		ID:        f.ID.String(),
		Name:      f.Name,
		Fields:    fields,
		IsActive:  f.IsActive,
		Version:   f.Version,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// FromForms converts a form list.
func FromForms(forms []*models.Form) []*FormResponse {
	out := make([]*FormResponse, 0, len(forms))
	for _, f := range forms {
		out = append(out, FromForm(f))
	}
	return out
}

// QRCodeResponse is the HTTP representation of a form's QR binding.
type QRCodeResponse struct {
	ID         string    `json:"id"`
	FormID     string    `json:"form_id"`
	Identifier string    `json:"qr_identifier"`
	CheckinURL string    `json:"checkin_url"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

// FromQRCode converts a QR binding to its HTTP representation.
func FromQRCode(qr *models.QRCode) *QRCodeResponse {
	return &QRCodeResponse{
		ID:         qr.ID.String(),
		FormID:     qr.FormID.String(),
		Identifier: qr.Identifier,
		CheckinURL: "/checkin/" + qr.Identifier,
		IsActive:   qr.IsActive,
		CreatedAt:  qr.CreatedAt,
	}
}
