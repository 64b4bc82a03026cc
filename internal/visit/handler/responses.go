package handler

import (
	"time"

	"gatepass/internal/visit/models"
)

// VisitResponse is the HTTP representation of a visit.
type VisitResponse struct {
	ID             string            `json:"id"`
	FormID         string            `json:"form_id"`
	VisitorID      *string           `json:"visitor_id,omitempty"`
	Status         string            `json:"status"`
	FormData       map[string]string `json:"form_data"`
	NormalizedData map[string]string `json:"normalized_data"`
	DenialReason   string            `json:"denial_reason,omitempty"`
	DeviceSummary  string            `json:"device_summary,omitempty"`
	CheckInTime    time.Time         `json:"check_in_time"`
	CheckOutTime   *time.Time        `json:"check_out_time,omitempty"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// FromVisit converts a domain visit to its HTTP representation.
func FromVisit(v *models.Visit) *VisitResponse {
	resp := &VisitResponse{
		ID:             v.ID.String(),
		FormID:         v.FormID.String(),
		Status:         string(v.Status),
		FormData:       v.FormData.Original,
		NormalizedData: v.FormData.Normalized,
		DenialReason:   v.DenialReason,
		DeviceSummary:  v.DeviceSummary,
		CheckInTime:    v.CheckInTime,
		CheckOutTime:   v.CheckOutTime,
		UpdatedAt:      v.UpdatedAt,
	}
	if v.VisitorID != nil {
		visitorID := v.VisitorID.String()
		resp.VisitorID = &visitorID
	}
	return resp
}

// FromVisits converts a visit list.
func FromVisits(visits []*models.Visit) []*VisitResponse {
	out := make([]*VisitResponse, 0, len(visits))
	for _, v := range visits {
		out = append(out, FromVisit(v))
	}
	return out
}
