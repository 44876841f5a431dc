package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"landregistry/internal/users/models"
	"landregistry/internal/users/service"
	"landregistry/pkg/domain"
	"landregistry/pkg/platform/httputil"
	"landregistry/pkg/requestcontext"
)

type Service interface {
	RegisterUser(ctx context.Context, caller domain.Address, reg models.Registration) (*models.User, error)
	VerifyUser(ctx context.Context, caller, target domain.Address) (*models.User, error)
	RejectUser(ctx context.Context, caller, target domain.Address, reason string) (*models.User, error)
	AddRegionalAdmin(ctx context.Context, caller domain.Address, in service.NewAdmin) (*models.RegionalAdmin, error)
	RemoveRegionalAdmin(ctx context.Context, caller, target domain.Address) error
	ListRegionalAdmins(ctx context.Context) ([]*models.RegionalAdmin, error)
	ListUsersByDepartment(ctx context.Context, caller domain.Address, status models.Status) ([]*models.User, error)
	GetUser(ctx context.Context, caller, target domain.Address) (*models.User, error)
	Profile(ctx context.Context, addr domain.Address) (*models.Profile, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
	auth    func(http.Handler) http.Handler
}

func New(service Service, logger *slog.Logger, auth func(http.Handler) http.Handler) *Handler {
	return &Handler{service: service, logger: logger, auth: auth}
}

// Register mounts the user registry routes. Every route needs a session.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Get("/users/me", h.HandleProfile)
		r.Post("/users", h.HandleRegister)
		r.Get("/users", h.HandleListDepartment)
		r.Get("/users/{address}", h.HandleGetUser)
		r.Post("/users/{address}/verify", h.HandleVerify)
		r.Post("/users/{address}/reject", h.HandleReject)

		r.Get("/admins", h.HandleListAdmins)
		r.Post("/admins", h.HandleAddAdmin)
		r.Delete("/admins/{address}", h.HandleRemoveAdmin)
	})
}

func (h *Handler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := h.service.Profile(ctx, requestcontext.Address(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load profile",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toProfileResponse(p))
}

// HandleRegister handles POST /users, both first submission and resubmission
// after a rejection.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	caller := requestcontext.Address(ctx)
	u, err := h.service.RegisterUser(ctx, caller, req.Registration())
	if err != nil {
		h.logger.WarnContext(ctx, "user registration failed",
			"request_id", requestID,
			"address", caller.Short(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toUserResponse(u))
}

// HandleListDepartment handles GET /users?status=pending for regional admins.
func (h *Handler) HandleListDepartment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var status models.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		st, err := models.ParseStatus(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		status = st
	}
	users, err := h.service.ListUsersByDepartment(ctx, requestcontext.Address(ctx), status)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toUserList(users))
}

func (h *Handler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	target, err := httputil.PathAddress(r, "address")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	u, err := h.service.GetUser(ctx, requestcontext.Address(ctx), target)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	target, err := httputil.PathAddress(r, "address")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	u, err := h.service.VerifyUser(ctx, requestcontext.Address(ctx), target)
	if err != nil {
		h.logger.WarnContext(ctx, "user verification failed",
			"request_id", requestcontext.RequestID(ctx),
			"user", target.Short(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	target, err := httputil.PathAddress(r, "address")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[RejectRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	u, err := h.service.RejectUser(ctx, requestcontext.Address(ctx), target, req.Reason)
	if err != nil {
		h.logger.WarnContext(ctx, "user rejection failed",
			"request_id", requestID,
			"user", target.Short(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *Handler) HandleListAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.service.ListRegionalAdmins(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	resp := AdminListResponse{Admins: make([]AdminResponse, 0, len(admins))}
	for _, a := range admins {
		resp.Admins = append(resp.Admins, toAdminResponse(a))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleAddAdmin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[AddAdminRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	admin, err := h.service.AddRegionalAdmin(ctx, requestcontext.Address(ctx), service.NewAdmin{
		Address:      req.parsedAddress,
		Name:         req.Name,
		DepartmentID: domain.DepartmentID(req.DepartmentID),
		Designation:  req.Designation,
		City:         req.City,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "add regional admin failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "regional admin added",
		"request_id", requestID,
		"admin", admin.Address.Short(),
		"department", admin.DepartmentID,
	)
	httputil.WriteJSON(w, http.StatusCreated, toAdminResponse(admin))
}

func (h *Handler) HandleRemoveAdmin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	target, err := httputil.PathAddress(r, "address")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.RemoveRegionalAdmin(ctx, requestcontext.Address(ctx), target); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
