package dto

import "github.com/shopspring/decimal"

type AddCartItemRequest struct {
	SubjectID     string `json:"subject_id"`
	ContentTypeID string `json:"content_type_id,omitempty"`
	IsBundle      bool   `json:"is_bundle"`
}

type RemoveSelectionRequest struct {
	SubjectID     string `json:"subject_id"`
	ContentTypeID string `json:"content_type_id,omitempty"`
	IsBundle      bool   `json:"is_bundle"`
}

// ActionResult is the envelope for user-facing cart/checkout actions: a
// success flag plus an inline-renderable message instead of a bare error.
type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type CartItemView struct {
	ID            string          `json:"id"`
	SubjectID     string          `json:"subject_id"`
	SubjectName   string          `json:"subject_name"`
	ContentTypeID string          `json:"content_type_id,omitempty"`
	IsBundle      bool            `json:"is_bundle"`
	Price         decimal.Decimal `json:"price"`
}

type CartView struct {
	Items []CartItemView  `json:"items"`
	Total decimal.Decimal `json:"total"`
}

type QuoteRequest struct {
	OfferCode string `json:"offer_code,omitempty"`
}

type QuoteResponse struct {
	ActionResult
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
	Package  string          `json:"package,omitempty"`
	Offer    string          `json:"offer,omitempty"`
}

type CheckoutRequest struct {
	OfferCode string `json:"offer_code,omitempty"`
}

type CheckoutResponse struct {
	ActionResult
	SessionID   string `json:"session_id,omitempty"`
	RedirectURL string `json:"redirect_url,omitempty"`
}

type PurchaseView struct {
	ID            string          `json:"id"`
	SubjectID     string          `json:"subject_id"`
	ContentTypeID string          `json:"content_type_id,omitempty"`
	IsBundle      bool            `json:"is_bundle"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	CreatedAt     string          `json:"created_at"`
}
