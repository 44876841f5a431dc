package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"landregistry/internal/wallet/models"
	"landregistry/pkg/domain"
	"landregistry/pkg/platform/httputil"
	"landregistry/pkg/requestcontext"
)

// Service is the wallet behaviour the HTTP layer needs.
type Service interface {
	CreateAccount(ctx context.Context, addr domain.Address, passphrase string) (*models.State, error)
	Connect(ctx context.Context, addr domain.Address, passphrase string) (*models.Session, error)
	Disconnect(ctx context.Context, addr domain.Address, jti string, expiresAt time.Time) error
	AccountState(ctx context.Context, addr domain.Address) (*models.State, error)
	History(ctx context.Context, addr domain.Address, limit int) ([]*models.Transfer, error)
	Deposit(ctx context.Context, addr domain.Address, amount int64) (*models.State, error)
	ChainID() int64
}

type Handler struct {
	service Service
	logger  *slog.Logger
	auth    func(http.Handler) http.Handler
}

// New constructs the wallet handler. auth guards the session routes.
func New(service Service, logger *slog.Logger, auth func(http.Handler) http.Handler) *Handler {
	return &Handler{service: service, logger: logger, auth: auth}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/wallet/chain", h.HandleChain)
	r.Post("/wallet/accounts", h.HandleCreateAccount)
	r.Post("/wallet/connect", h.HandleConnect)

	r.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Post("/wallet/disconnect", h.HandleDisconnect)
		r.Get("/wallet/account", h.HandleAccount)
		r.Get("/wallet/transfers", h.HandleTransfers)
		r.Post("/wallet/deposit", h.HandleDeposit)
	})
}

func (h *Handler) HandleChain(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]int64{"chain_id": h.service.ChainID()})
}

// HandleCreateAccount handles POST /wallet/accounts.
func (h *Handler) HandleCreateAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CredentialsRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	st, err := h.service.CreateAccount(ctx, req.ParsedAddress(), req.Passphrase)
	if err != nil {
		h.logger.WarnContext(ctx, "create wallet account failed",
			"request_id", requestID,
			"address", req.ParsedAddress().Short(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toAccountResponse(st))
}

// HandleConnect handles POST /wallet/connect.
func (h *Handler) HandleConnect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CredentialsRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	sess, err := h.service.Connect(ctx, req.ParsedAddress(), req.Passphrase)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "wallet connected",
		"request_id", requestID,
		"address", sess.Address.Short(),
		"device", sess.Device,
	)
	httputil.WriteJSON(w, http.StatusOK, toSessionResponse(sess))
}

func (h *Handler) HandleDisconnect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	err := h.service.Disconnect(ctx, requestcontext.Address(ctx), requestcontext.TokenID(ctx), requestcontext.TokenExpiry(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "wallet disconnect failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	st, err := h.service.AccountState(ctx, requestcontext.Address(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAccountResponse(st))
}

// HandleTransfers handles GET /wallet/transfers?limit=N.
func (h *Handler) HandleTransfers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit, err := httputil.QueryLimit(r, 50, 500)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	transfers, err := h.service.History(ctx, requestcontext.Address(ctx), limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toTransferList(transfers))
}

func (h *Handler) HandleDeposit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[DepositRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	st, err := h.service.Deposit(ctx, requestcontext.Address(ctx), req.Amount)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAccountResponse(st))
}
