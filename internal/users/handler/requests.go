package handler

import (
	"strings"

	"landregistry/internal/users/models"
	"landregistry/pkg/domain"
	dErrors "landregistry/pkg/domain-errors"
	"landregistry/pkg/email"
)

// RegisterRequest is the KYC submission body.
type RegisterRequest struct {
	Name         string `json:"name"`
	Age          int    `json:"age"`
	City         string `json:"city"`
	GovernmentID string `json:"government_id"`
	DocumentCID  string `json:"document_cid"`
	Email        string `json:"email"`
	DepartmentID int64  `json:"revenue_department_id"`
}

func (r *RegisterRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.City = strings.TrimSpace(r.City)
	r.GovernmentID = strings.TrimSpace(r.GovernmentID)
	r.DocumentCID = strings.TrimSpace(r.DocumentCID)
	r.Email = email.Normalize(r.Email)
}

func (r *RegisterRequest) Validate() error {
	// Size
	if len(r.Name) > models.MaxNameLen {
		return dErrors.Newf(dErrors.CodeValidation, "name must be at most %d characters", models.MaxNameLen)
	}
	if len(r.DocumentCID) > models.MaxCIDLen {
		return dErrors.Newf(dErrors.CodeValidation, "document cid must be at most %d characters", models.MaxCIDLen)
	}
	// Required
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if r.City == "" {
		return dErrors.New(dErrors.CodeValidation, "city is required")
	}
	if r.GovernmentID == "" {
		return dErrors.New(dErrors.CodeValidation, "government id is required")
	}
	if r.DocumentCID == "" {
		return dErrors.New(dErrors.CodeValidation, "document cid is required")
	}
	// Syntax
	if err := email.Validate(r.Email); err != nil {
		return err
	}
	// Semantic
	if r.Age < models.MinAge || r.Age > models.MaxAge {
		return dErrors.Newf(dErrors.CodeValidation, "age must be between %d and %d", models.MinAge, models.MaxAge)
	}
	if r.DepartmentID <= 0 {
		return dErrors.New(dErrors.CodeValidation, "revenue department id must be positive")
	}
	return nil
}

func (r *RegisterRequest) Registration() models.Registration {
	return models.Registration{
		Name:         r.Name,
		Age:          r.Age,
		City:         r.City,
		GovernmentID: r.GovernmentID,
		DocumentCID:  r.DocumentCID,
		Email:        r.Email,
		DepartmentID: domain.DepartmentID(r.DepartmentID),
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

// AddAdminRequest appoints a regional admin.
type AddAdminRequest struct {
	Address      string `json:"address"`
	Name         string `json:"name"`
	DepartmentID int64  `json:"revenue_department_id"`
	Designation  string `json:"designation"`
	City         string `json:"city"`

	parsedAddress domain.Address
}

func (r *AddAdminRequest) Normalize() {
	r.Address = strings.TrimSpace(r.Address)
	r.Name = strings.TrimSpace(r.Name)
	r.Designation = strings.TrimSpace(r.Designation)
	r.City = strings.TrimSpace(r.City)
}

func (r *AddAdminRequest) Validate() error {
	if len(r.Name) > models.MaxNameLen {
		return dErrors.Newf(dErrors.CodeValidation, "name must be at most %d characters", models.MaxNameLen)
	}
	if r.Address == "" || r.Name == "" || r.Designation == "" || r.City == "" {
		return dErrors.New(dErrors.CodeValidation, "address, name, designation and city are required")
	}
	addr, err := domain.ParseAddress(r.Address)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "address must be 0x followed by 40 hex digits")
	}
	r.parsedAddress = addr
	if r.DepartmentID <= 0 {
		return dErrors.New(dErrors.CodeValidation, "revenue department id must be positive")
	}
	return nil
}
