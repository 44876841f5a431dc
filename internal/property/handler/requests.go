package handler

import (
	"strings"

	"landregistry/internal/property/models"
	"landregistry/pkg/domain"
	dErrors "landregistry/pkg/domain-errors"
)

type RegisterRequest struct {
	DepartmentID int64  `json:"revenue_department_id"`
	LocationID   int64  `json:"location_id"`
	SurveyNumber string `json:"survey_number"`
	Area         int64  `json:"area"`
	MarketValue  int64  `json:"market_value"`
	DocumentCID  string `json:"document_cid"`
}

func (r *RegisterRequest) Normalize() {
	r.SurveyNumber = strings.TrimSpace(r.SurveyNumber)
	r.DocumentCID = strings.TrimSpace(r.DocumentCID)
}

func (r *RegisterRequest) Validate() error {
	// Size
	if len(r.SurveyNumber) > models.MaxSurveyNumberLen {
		return dErrors.Newf(dErrors.CodeValidation, "survey number must be at most %d characters", models.MaxSurveyNumberLen)
	}
	if len(r.DocumentCID) > models.MaxCIDLen {
		return dErrors.Newf(dErrors.CodeValidation, "document cid must be at most %d characters", models.MaxCIDLen)
	}
	// Required
	if r.SurveyNumber == "" {
		return dErrors.New(dErrors.CodeValidation, "survey number is required")
	}
	// Semantic
	if r.DepartmentID <= 0 || r.LocationID <= 0 {
		return dErrors.New(dErrors.CodeValidation, "revenue department id and location id must be positive")
	}
	if r.Area <= 0 {
		return dErrors.New(dErrors.CodeValidation, "area must be positive")
	}
	if r.MarketValue <= 0 {
		return dErrors.New(dErrors.CodeValidation, "market value must be positive")
	}
	return nil
}

func (r *RegisterRequest) Registration() models.Registration {
	return models.Registration{
		DepartmentID: domain.DepartmentID(r.DepartmentID),
		LocationID:   domain.LocationID(r.LocationID),
		SurveyNumber: r.SurveyNumber,
		Area:         r.Area,
		MarketValue:  r.MarketValue,
		DocumentCID:  r.DocumentCID,
	}
}

type RejectRequest struct {
	Reason string `json:"reason"`
}

func (r *RejectRequest) Normalize() {
	r.Reason = strings.TrimSpace(r.Reason)
}

func (r *RejectRequest) Validate() error {
	if len(r.Reason) > models.MaxReasonLen {
		return dErrors.Newf(dErrors.CodeValidation, "reason must be at most %d characters", models.MaxReasonLen)
	}
	if r.Reason == "" {
		return dErrors.New(dErrors.CodeValidation, "reason is required")
	}
	return nil
}
