package repository

import (
	"context"
	"errors"

	"course-commerce/internal/model"

	"gorm.io/gorm"
)

type CartRepository interface {
	Add(ctx context.Context, item *model.CartItem) error
	Remove(ctx context.Context, userID, itemID string) error
	RemoveBySelection(ctx context.Context, userID, subjectID, contentTypeID string, isBundle bool) error
	List(ctx context.Context, userID string) ([]*model.CartItem, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.CartItem, error)
	DeleteByID(ctx context.Context, tx *gorm.DB, itemID string) error
}

type cartRepoImpl struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepoImpl{
		db: db,
	}
}

func (r *cartRepoImpl) Add(ctx context.Context, item *model.CartItem) error {
	err := r.db.WithContext(ctx).Create(item).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return model.ErrAlreadyInCart
	}
	return err
}

func (r *cartRepoImpl) Remove(ctx context.Context, userID, itemID string) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, itemID).
		Delete(&model.CartItem{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *cartRepoImpl) RemoveBySelection(ctx context.Context, userID, subjectID, contentTypeID string, isBundle bool) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND subject_id = ? AND content_type_id = ? AND is_bundle = ?",
			userID, subjectID, contentTypeID, isBundle).
		Delete(&model.CartItem{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *cartRepoImpl) List(ctx context.Context, userID string) ([]*model.CartItem, error) {
	var items []*model.CartItem
	// rowid breaks created_at ties in true insertion order; a uuid tiebreak
	// would not.
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, rowid ASC").
		Find(&items).Error

	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *cartRepoImpl) FindByIDs(ctx context.Context, ids []string) ([]*model.CartItem, error) {
	var items []*model.CartItem
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&items).Error

	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *cartRepoImpl) DeleteByID(ctx context.Context, tx *gorm.DB, itemID string) error {
	return tx.WithContext(ctx).
		Where("id = ?", itemID).
		Delete(&model.CartItem{}).Error
}
