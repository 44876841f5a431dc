package handler

import (
	"time"

	"landregistry/internal/users/models"
	"landregistry/pkg/email"
)

var statusLabels = map[models.Status]string{
	models.StatusPending:  "Pending",
	models.StatusVerified: "Verified",
	models.StatusRejected: "Rejected",
}

type UserResponse struct {
	Address         string     `json:"address"`
	ShortAddress    string     `json:"short_address"`
	Name            string     `json:"name"`
	Age             int        `json:"age"`
	City            string     `json:"city"`
	GovernmentID    string     `json:"government_id"`
	DocumentCID     string     `json:"document_cid"`
	Email           string     `json:"email"`
	DepartmentID    int64      `json:"revenue_department_id"`
	Status          string     `json:"status"`
	StatusLabel     string     `json:"status_label"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	VerifiedBy      string     `json:"verified_by,omitempty"`
	RegisteredAt    time.Time  `json:"registered_at"`
	VerifiedAt      *time.Time `json:"verified_at,omitempty"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{
		Address:         u.Address.String(),
		ShortAddress:    u.Address.Short(),
		Name:            u.Name,
		Age:             u.Age,
		City:            u.City,
		GovernmentID:    u.GovernmentID,
		DocumentCID:     u.DocumentCID,
		Email:           u.Email,
		DepartmentID:    int64(u.DepartmentID),
		Status:          string(u.Status),
		StatusLabel:     statusLabels[u.Status],
		RejectionReason: u.RejectionReason,
		VerifiedBy:      u.VerifiedBy.String(),
		RegisteredAt:    u.RegisteredAt,
		VerifiedAt:      u.ReviewedAt,
	}
}

// UserSummary is the list form. Contact details are masked.
type UserSummary struct {
	Address      string    `json:"address"`
	ShortAddress string    `json:"short_address"`
	Name         string    `json:"name"`
	City         string    `json:"city"`
	Email        string    `json:"email"`
	DocumentCID  string    `json:"document_cid"`
	Status       string    `json:"status"`
	StatusLabel  string    `json:"status_label"`
	RegisteredAt time.Time `json:"registered_at"`
}

type UserListResponse struct {
	Users []UserSummary `json:"users"`
}

func toUserList(users []*models.User) UserListResponse {
	out := UserListResponse{Users: make([]UserSummary, 0, len(users))}
	for _, u := range users {
		out.Users = append(out.Users, UserSummary{
			Address:      u.Address.String(),
			ShortAddress: u.Address.Short(),
			Name:         u.Name,
			City:         u.City,
			Email:        email.Mask(u.Email),
			DocumentCID:  u.DocumentCID,
			Status:       string(u.Status),
			StatusLabel:  statusLabels[u.Status],
			RegisteredAt: u.RegisteredAt,
		})
	}
	return out
}

type AdminResponse struct {
	Address      string    `json:"address"`
	ShortAddress string    `json:"short_address"`
	Name         string    `json:"name"`
	DepartmentID int64     `json:"revenue_department_id"`
	Designation  string    `json:"designation"`
	City         string    `json:"city"`
	CreatedAt    time.Time `json:"created_at"`
}

func toAdminResponse(a *models.RegionalAdmin) AdminResponse {
	return AdminResponse{
		Address:      a.Address.String(),
		ShortAddress: a.Address.Short(),
		Name:         a.Name,
		DepartmentID: int64(a.DepartmentID),
		Designation:  a.Designation,
		City:         a.City,
		CreatedAt:    a.CreatedAt,
	}
}

type AdminListResponse struct {
	Admins []AdminResponse `json:"admins"`
}

// ProfileResponse tells the client who the connected wallet is.
type ProfileResponse struct {
	Address  string         `json:"address"`
	Role     string         `json:"role"`
	Verified bool           `json:"verified"`
	User     *UserResponse  `json:"user,omitempty"`
	Admin    *AdminResponse `json:"admin,omitempty"`
}

func toProfileResponse(p *models.Profile) ProfileResponse {
	resp := ProfileResponse{
		Address:  p.Address.String(),
		Role:     string(p.Role),
		Verified: p.IsVerified(),
	}
	if p.User != nil {
		u := toUserResponse(p.User)
		resp.User = &u
	}
	if p.Admin != nil {
		a := toAdminResponse(p.Admin)
		resp.Admin = &a
	}
	return resp
}
