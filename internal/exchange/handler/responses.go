package handler

import (
	"time"

	"landregistry/internal/exchange/models"
)

type SaleResponse struct {
	ID                int64      `json:"sale_id"`
	PropertyID        int64      `json:"property_id"`
	Seller            string     `json:"seller"`
	SellerShort       string     `json:"seller_short"`
	Price             int64      `json:"price"`
	State             string     `json:"state"`
	AcceptedRequestID int64      `json:"accepted_request_id,omitempty"`
	AcceptedFor       string     `json:"accepted_for,omitempty"`
	AcceptedPrice     int64      `json:"accepted_price,omitempty"`
	PaymentDeadline   *time.Time `json:"payment_deadline,omitempty"`
	PaidAt            *time.Time `json:"paid_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func ToSaleResponse(s *models.Sale) SaleResponse {
	return SaleResponse{
		ID:                int64(s.ID),
		PropertyID:        int64(s.PropertyID),
		Seller:            s.Seller.String(),
		SellerShort:       s.Seller.Short(),
		Price:             s.Price,
		State:             string(s.State),
		AcceptedRequestID: int64(s.AcceptedRequestID),
		AcceptedFor:       s.AcceptedFor.String(),
		AcceptedPrice:     s.AcceptedPrice,
		PaymentDeadline:   s.PaymentDeadline,
		PaidAt:            s.PaidAt,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}

type SaleListResponse struct {
	Sales []SaleResponse `json:"sales"`
}

func ToSaleListResponse(sales []*models.Sale) SaleListResponse {
	out := SaleListResponse{Sales: make([]SaleResponse, 0, len(sales))}
	for _, s := range sales {
		out.Sales = append(out.Sales, ToSaleResponse(s))
	}
	return out
}

type RequestResponse struct {
	ID           int64     `json:"request_id"`
	SaleID       int64     `json:"sale_id"`
	Buyer        string    `json:"buyer"`
	BuyerShort   string    `json:"buyer_short"`
	OfferedPrice int64     `json:"offered_price"`
	State        string    `json:"state"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func ToRequestResponse(r *models.PurchaseRequest) RequestResponse {
	return RequestResponse{
		ID:           int64(r.ID),
		SaleID:       int64(r.SaleID),
		Buyer:        r.Buyer.String(),
		BuyerShort:   r.Buyer.Short(),
		OfferedPrice: r.OfferedPrice,
		State:        string(r.State),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type RequestListResponse struct {
	Requests []RequestResponse `json:"requests"`
}

func ToRequestListResponse(reqs []*models.PurchaseRequest) RequestListResponse {
	out := RequestListResponse{Requests: make([]RequestResponse, 0, len(reqs))}
	for _, r := range reqs {
		out.Requests = append(out.Requests, ToRequestResponse(r))
	}
	return out
}
