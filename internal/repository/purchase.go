package repository

import (
	"context"

	"course-commerce/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PurchaseRepository interface {
	// CreateIfAbsent inserts the purchase unless one already exists for its
	// (stripe_session_id, cart_item_id) pair. Returns whether a row was
	// actually created, so webhook replays can be told apart from first
	// deliveries.
	CreateIfAbsent(ctx context.Context, tx *gorm.DB, purchase *model.Purchase) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Purchase, error)
	ExistsForSession(ctx context.Context, stripeSessionID string) (bool, error)
}

type purchaseRepoImpl struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepoImpl{
		db: db,
	}
}

func (r *purchaseRepoImpl) CreateIfAbsent(ctx context.Context, tx *gorm.DB, purchase *model.Purchase) (bool, error) {
	result := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stripe_session_id"}, {Name: "cart_item_id"}},
		DoNothing: true,
	}).Create(purchase)

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *purchaseRepoImpl) ListByUser(ctx context.Context, userID string) ([]*model.Purchase, error) {
	var purchases []*model.Purchase
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&purchases).Error

	if err != nil {
		return nil, err
	}
	return purchases, nil
}

func (r *purchaseRepoImpl) ExistsForSession(ctx context.Context, stripeSessionID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Purchase{}).
		Where("stripe_session_id = ?", stripeSessionID).
		Count(&count).Error

	return count > 0, err
}
