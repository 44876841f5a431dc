package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"landregistry/internal/property/models"
	"landregistry/pkg/domain"
	"landregistry/pkg/platform/httputil"
	"landregistry/pkg/requestcontext"
)

type Service interface {
	RegisterProperty(ctx context.Context, owner domain.Address, reg models.Registration) (*models.Property, error)
	VerifyProperty(ctx context.Context, admin domain.Address, id domain.PropertyID) (*models.Property, error)
	RejectProperty(ctx context.Context, admin domain.Address, id domain.PropertyID, reason string) (*models.Property, error)
	GetProperty(ctx context.Context, id domain.PropertyID) (*models.Property, error)
	ListByOwner(ctx context.Context, owner domain.Address) ([]*models.Property, error)
	ListByDepartment(ctx context.Context, admin domain.Address, state models.State) ([]*models.Property, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
	auth    func(http.Handler) http.Handler
}

func New(service Service, logger *slog.Logger, auth func(http.Handler) http.Handler) *Handler {
	return &Handler{service: service, logger: logger, auth: auth}
}

func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Post("/properties", h.HandleRegister)
		r.Get("/properties", h.HandleListDepartment)
		r.Get("/properties/mine", h.HandleListMine)
		r.Get("/properties/{id}", h.HandleGet)
		r.Post("/properties/{id}/verify", h.HandleVerify)
		r.Post("/properties/{id}/reject", h.HandleReject)
	})
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	p, err := h.service.RegisterProperty(ctx, requestcontext.Address(ctx), req.Registration())
	if err != nil {
		h.logger.WarnContext(ctx, "property registration failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, ToResponse(p))
}

// HandleListDepartment handles GET /properties?state=registered for regional admins.
func (h *Handler) HandleListDepartment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var state models.State
	if raw := r.URL.Query().Get("state"); raw != "" {
		st, err := models.ParseState(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		state = st
	}
	props, err := h.service.ListByDepartment(ctx, requestcontext.Address(ctx), state)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ToListResponse(props))
}

func (h *Handler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	props, err := h.service.ListByOwner(ctx, requestcontext.Address(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ToListResponse(props))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathSequence(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	p, err := h.service.GetProperty(r.Context(), domain.PropertyID(id))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ToResponse(p))
}

func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := httputil.PathSequence(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	p, err := h.service.VerifyProperty(ctx, requestcontext.Address(ctx), domain.PropertyID(id))
	if err != nil {
		h.logger.WarnContext(ctx, "property verification failed",
			"request_id", requestcontext.RequestID(ctx),
			"property_id", id,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ToResponse(p))
}

func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	id, err := httputil.PathSequence(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[RejectRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	p, err := h.service.RejectProperty(ctx, requestcontext.Address(ctx), domain.PropertyID(id), req.Reason)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ToResponse(p))
}
