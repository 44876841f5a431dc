package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"landregistry/internal/exchange/models"
	"landregistry/pkg/domain"
	"landregistry/pkg/platform/httputil"
	"landregistry/pkg/requestcontext"
)

type Service interface {
	PutOnSale(ctx context.Context, seller domain.Address, propertyID domain.PropertyID, price int64) (*models.Sale, error)
	CancelSale(ctx context.Context, seller domain.Address, saleID domain.SaleID) (*models.Sale, error)
	SendPurchaseRequest(ctx context.Context, buyer domain.Address, saleID domain.SaleID, offer int64) (*models.PurchaseRequest, error)
	CancelPurchaseRequest(ctx context.Context, buyer domain.Address, requestID domain.RequestID) (*models.PurchaseRequest, error)
	AcceptPurchaseRequest(ctx context.Context, seller domain.Address, requestID domain.RequestID) (*models.Sale, error)
	RejectPurchaseRequest(ctx context.Context, seller domain.Address, requestID domain.RequestID) (*models.PurchaseRequest, error)
	MakePayment(ctx context.Context, buyer domain.Address, requestID domain.RequestID, amount int64) (*models.Sale, error)
	TransferOwnership(ctx context.Context, admin domain.Address, saleID domain.SaleID) (*models.Sale, error)
	GetSale(ctx context.Context, id domain.SaleID) (*models.Sale, error)
	ListActiveSales(ctx context.Context) ([]*models.Sale, error)
	ListSalesBySeller(ctx context.Context, seller domain.Address) ([]*models.Sale, error)
	ListRequestsBySale(ctx context.Context, caller domain.Address, saleID domain.SaleID) ([]*models.PurchaseRequest, error)
	ListRequestsByBuyer(ctx context.Context, buyer domain.Address) ([]*models.PurchaseRequest, error)
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
		r.Post("/sales", h.HandlePutOnSale)
		r.Get("/sales", h.HandleListActive)
		r.Get("/sales/mine", h.HandleListMine)
		r.Get("/sales/{id}", h.HandleGetSale)
		r.Post("/sales/{id}/cancel", h.HandleCancelSale)
		r.Post("/sales/{id}/requests", h.HandleSendRequest)
		r.Get("/sales/{id}/requests", h.HandleListSaleRequests)
		r.Post("/sales/{id}/transfer", h.HandleTransfer)

		r.Get("/requests/mine", h.HandleListMyRequests)
		r.Post("/requests/{id}/cancel", h.HandleCancelRequest)
		r.Post("/requests/{id}/accept", h.HandleAccept)
		r.Post("/requests/{id}/reject", h.HandleReject)
		r.Post("/requests/{id}/payment", h.HandlePayment)
	})
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error, attrs ...any) {
	args := append([]any{"request_id", requestcontext.RequestID(ctx), "error", err}, attrs...)
	h.logger.WarnContext(ctx, msg, args...)
	httputil.WriteError(w, err)
}

func (h *Handler) HandlePutOnSale(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[PutOnSaleRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	sale, err := h.service.PutOnSale(ctx, requestcontext.Address(ctx), domain.PropertyID(req.PropertyID), req.Price)
	if err != nil {
		h.fail(ctx, w, "put on sale failed", err, "property_id", req.PropertyID)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, ToSaleResponse(sale))
}

func (h *Handler) HandleListActive(w http.ResponseWriter, r *http.Request) {
	sales, err := h.service.ListActiveSales(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ToSaleListResponse(sales))
}

func (h *Handler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sales, err := h.service.ListSalesBySeller(ctx, requestcontext.Address(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ToSaleListResponse(sales))
}

func (h *Handler) HandleGetSale(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathSequence(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	sale, err := h.service.GetSale(r.Context(), domain.SaleID(id))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ToSaleResponse(sale))
}

func (h *Handler) HandleCancelSale(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := httputil.PathSequence(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	sale, err := h.service.CancelSale(ctx, requestcontext.Address(ctx), domain.SaleID(id))
	if err != nil {
		h.fail(ctx, w, "cancel sale failed", err, "sale_id", id)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ToSaleResponse(sale))
}

func (h *Handler) HandleSendRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	id, err := httputil.PathSequence(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	body, ok := httputil.DecodeAndPrepare[PurchaseRequestBody](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	req, err := h.service.SendPurchaseRequest(ctx, requestcontext.Address(ctx), domain.SaleID(id), body.OfferedPrice)
	if err != nil {
		h.fail(ctx, w, "purchase request failed", err, "sale_id", id)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, ToRequestResponse(req))
}

// HandleListSaleRequests handles GET /sales/{id}/requests for the seller.
func (h *Handler) HandleListSaleRequests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := httputil.PathSequence(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	reqs, err := h.service.ListRequestsBySale(ctx, requestcontext.Address(ctx), domain.SaleID(id))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ToRequestListResponse(reqs))
}

func (h *Handler) HandleTransfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := httputil.PathSequence(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	sale, err := h.service.TransferOwnership(ctx, requestcontext.Address(ctx), domain.SaleID(id))
	if err != nil {
		h.fail(ctx, w, "ownership transfer failed", err, "sale_id", id)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ToSaleResponse(sale))
}

func (h *Handler) HandleListMyRequests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqs, err := h.service.ListRequestsByBuyer(ctx, requestcontext.Address(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ToRequestListResponse(reqs))
}

func (h *Handler) HandleCancelRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := httputil.PathSequence(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := h.service.CancelPurchaseRequest(ctx, requestcontext.Address(ctx), domain.RequestID(id))
	if err != nil {
		h.fail(ctx, w, "cancel purchase request failed", err, "purchase_request_id", id)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ToRequestResponse(req))
}

func (h *Handler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := httputil.PathSequence(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	sale, err := h.service.AcceptPurchaseRequest(ctx, requestcontext.Address(ctx), domain.RequestID(id))
	if err != nil {
		h.fail(ctx, w, "accept purchase request failed", err, "purchase_request_id", id)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ToSaleResponse(sale))
}

func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := httputil.PathSequence(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := h.service.RejectPurchaseRequest(ctx, requestcontext.Address(ctx), domain.RequestID(id))
	if err != nil {
		h.fail(ctx, w, "reject purchase request failed", err, "purchase_request_id", id)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ToRequestResponse(req))
}

func (h *Handler) HandlePayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	id, err := httputil.PathSequence(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	body, ok := httputil.DecodeAndPrepare[PaymentRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	sale, err := h.service.MakePayment(ctx, requestcontext.Address(ctx), domain.RequestID(id), body.Amount)
	if err != nil {
		h.fail(ctx, w, "payment failed", err, "purchase_request_id", id)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ToSaleResponse(sale))
}
