package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"course-commerce/internal/model"
	"course-commerce/internal/pricing"
	"course-commerce/internal/repository"
)

type OfferService interface {
	// Resolve validates a free-text offer code and returns the pricing-level
	// offer. An empty code resolves to (nil, nil); an unknown or expired code
	// fails with ErrInvalidOfferCode carrying a user-facing reason.
	Resolve(ctx context.Context, code string) (*pricing.Offer, error)
}

type offerServiceImpl struct {
	offerRepo repository.OfferRepository
	now       func() time.Time
}

func NewOfferService(offerRepo repository.OfferRepository) OfferService {
	return &offerServiceImpl{
		offerRepo: offerRepo,
		now:       time.Now,
	}
}

func (s *offerServiceImpl) Resolve(ctx context.Context, code string) (*pricing.Offer, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, nil
	}

	offer, err := s.offerRepo.FindByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("%w: code %q does not exist", model.ErrInvalidOfferCode, normalized)
		}
		return nil, fmt.Errorf("look up offer code: %w", err)
	}

	if !repository.Active(offer, s.now()) {
		return nil, fmt.Errorf("%w: code %q is not currently active", model.ErrInvalidOfferCode, normalized)
	}

	resolved := &pricing.Offer{Code: offer.Code}
	if offer.DiscountPercent.Valid {
		resolved.Percent = offer.DiscountPercent.Decimal
	} else if offer.DiscountAmount.Valid {
		resolved.Amount = offer.DiscountAmount.Decimal
	}
	return resolved, nil
}
