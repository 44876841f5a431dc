package handler

import (
	dErrors "landregistry/pkg/domain-errors"
)

// MaxPrice bounds prices, offers and payments.
const MaxPrice = 1 << 53

type PutOnSaleRequest struct {
	PropertyID int64 `json:"property_id"`
	Price      int64 `json:"price"`
}

func (r *PutOnSaleRequest) Normalize() {}

func (r *PutOnSaleRequest) Validate() error {
	if r.PropertyID <= 0 {
		return dErrors.New(dErrors.CodeValidation, "property id is required")
	}
	return validateAmount("price", r.Price)
}

type PurchaseRequestBody struct {
	OfferedPrice int64 `json:"offered_price"`
}

func (r *PurchaseRequestBody) Normalize() {}

func (r *PurchaseRequestBody) Validate() error {
	return validateAmount("offered price", r.OfferedPrice)
}

type PaymentRequest struct {
	Amount int64 `json:"amount"`
}

func (r *PaymentRequest) Normalize() {}

func (r *PaymentRequest) Validate() error {
	return validateAmount("amount", r.Amount)
}

func validateAmount(field string, v int64) error {
	if v > MaxPrice {
		return dErrors.Newf(dErrors.CodeValidation, "%s is too large", field)
	}
	if v <= 0 {
		return dErrors.Newf(dErrors.CodeValidation, "%s must be positive", field)
	}
	return nil
}
