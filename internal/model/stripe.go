package model

import "encoding/json"

type StripeCheckoutSession struct {
	ID            string            `json:"id"`
	URL           string            `json:"url"`
	Status        string            `json:"status"`
	PaymentStatus string            `json:"payment_status"`
	AmountTotal   int64             `json:"amount_total"`
	Currency      string            `json:"currency"`
	Metadata      map[string]string `json:"metadata"`
}

type StripeEventData struct {
	Object StripeCheckoutSession `json:"object"`
}

type StripeEvent struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Created int64           `json:"created"`
	Data    StripeEventData `json:"data"`
}

type StripeErrorDetail struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type StripeErrorResponse struct {
	Error StripeErrorDetail `json:"error"`
}

// CartItemSnapshot is the per-item payload serialized into checkout session
// metadata. Fulfillment reads this back instead of re-querying the cart, so
// it survives the cart being mutated between session creation and webhook
// delivery. UnitAmount is in minor currency units.
type CartItemSnapshot struct {
	ID            string `json:"id"`
	SubjectID     string `json:"subject_id"`
	ContentTypeID string `json:"content_type_id,omitempty"`
	IsBundle      bool   `json:"is_bundle"`
	UnitAmount    int64  `json:"unit_amount"`
}

func MarshalSnapshots(items []CartItemSnapshot) (string, error) {
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func UnmarshalSnapshots(raw string) ([]CartItemSnapshot, error) {
	var items []CartItemSnapshot
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, err
	}
	return items, nil
}
