package repository

import (
	"context"
	"errors"
	"time"

	"course-commerce/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OfferRepository interface {
	Seed(ctx context.Context) error
	// FindByCode expects an already-uppercased code.
	FindByCode(ctx context.Context, code string) (*model.Offer, error)
}

type offerRepoImpl struct {
	db *gorm.DB
}

func NewOfferRepository(db *gorm.DB) OfferRepository {
	return &offerRepoImpl{
		db: db,
	}
}

func (r *offerRepoImpl) Seed(ctx context.Context) error {
	offers := []model.Offer{
		{
			ID:              uuid.NewString(),
			Code:            "WELCOME10",
			Name:            "Welcome discount",
			DiscountPercent: decimal.NewNullDecimal(decimal.NewFromInt(10)),
		},
		{
			ID:             uuid.NewString(),
			Code:           "LAUNCH50",
			Name:           "Launch discount",
			DiscountAmount: decimal.NewNullDecimal(decimal.NewFromInt(50)),
		},
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&offers).Error
}

func (r *offerRepoImpl) FindByCode(ctx context.Context, code string) (*model.Offer, error) {
	var offer model.Offer
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&offer).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &offer, nil
}

// Active reports whether the offer's validity window covers now.
func Active(offer *model.Offer, now time.Time) bool {
	if offer.StartsAt != nil && now.Before(*offer.StartsAt) {
		return false
	}
	if offer.EndsAt != nil && now.After(*offer.EndsAt) {
		return false
	}
	return true
}
