package handler

import (
	"time"

	"landregistry/internal/property/models"
)

type PropertyResponse struct {
	ID              int64     `json:"property_id"`
	Owner           string    `json:"owner"`
	OwnerShort      string    `json:"owner_short"`
	Admin           string    `json:"admin,omitempty"`
	DepartmentID    int64     `json:"revenue_department_id"`
	LocationID      int64     `json:"location_id"`
	SurveyNumber    string    `json:"survey_number"`
	Area            int64     `json:"area"`
	MarketValue     int64     `json:"market_value"`
	DocumentCID     string    `json:"document_cid,omitempty"`
	State           string    `json:"state"`
	StateLabel      string    `json:"state_label"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
	RegisteredAt    time.Time `json:"registered_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ToResponse renders a property for clients. Exported for the dashboard.
func ToResponse(p *models.Property) PropertyResponse {
	return PropertyResponse{
		ID:              int64(p.ID),
		Owner:           p.Owner.String(),
		OwnerShort:      p.Owner.Short(),
		Admin:           p.Admin.String(),
		DepartmentID:    int64(p.DepartmentID),
		LocationID:      int64(p.LocationID),
		SurveyNumber:    p.SurveyNumber,
		Area:            p.Area,
		MarketValue:     p.MarketValue,
		DocumentCID:     p.DocumentCID,
		State:           string(p.State),
		StateLabel:      p.State.Label(),
		RejectionReason: p.RejectionReason,
		RegisteredAt:    p.RegisteredAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

type PropertyListResponse struct {
	Properties []PropertyResponse `json:"properties"`
}

func ToListResponse(props []*models.Property) PropertyListResponse {
	out := PropertyListResponse{Properties: make([]PropertyResponse, 0, len(props))}
	for _, p := range props {
		out.Properties = append(out.Properties, ToResponse(p))
	}
	return out
}
