package model

import "errors"

var (
	ErrAlreadyInCart    = errors.New("selection is already in the cart")
	ErrNotFound         = errors.New("not found")
	ErrInvalidOfferCode = errors.New("offer code is invalid or expired")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrInvalidSignature = errors.New("webhook signature verification failed")
	ErrPaymentProvider  = errors.New("payment provider request failed")
)
