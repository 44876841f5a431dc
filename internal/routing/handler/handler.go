package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"landregistry/internal/routing/service"
	"landregistry/pkg/domain"
	"landregistry/pkg/platform/httputil"
	"landregistry/pkg/requestcontext"
)

type Service interface {
	Resolve(ctx context.Context, addr domain.Address) (*service.Route, error)
	Dashboard(ctx context.Context, addr domain.Address) (*service.Dashboard, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
	auth    func(http.Handler) http.Handler
}

func New(svc Service, logger *slog.Logger, auth func(http.Handler) http.Handler) *Handler {
	return &Handler{service: svc, logger: logger, auth: auth}
}

func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Get("/route", h.HandleResolve)
		r.Get("/dashboard", h.HandleDashboard)
	})
}

// HandleResolve tells the client which page the connected wallet lands on.
func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	route, err := h.service.Resolve(ctx, requestcontext.Address(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "route resolution failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRouteResponse(route))
}

func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	d, err := h.service.Dashboard(ctx, requestcontext.Address(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "dashboard failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toDashboardResponse(d))
}
