package repository

import (
	"context"

	"course-commerce/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CatalogRepository interface {
	Seed(ctx context.Context) error
	FindSubject(ctx context.Context, subjectID string) (*model.Subject, error)
	FindSubjects(ctx context.Context, subjectIDs []string) ([]*model.Subject, error)
	FindContentType(ctx context.Context, contentTypeID string) (*model.ContentType, error)
	FindContentTypes(ctx context.Context, contentTypeIDs []string) ([]*model.ContentType, error)
}

type catalogRepoImpl struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepoImpl{
		db: db,
	}
}

func (r *catalogRepoImpl) Seed(ctx context.Context) error {
	bundle := decimal.NewFromInt(300)
	per := decimal.NewFromInt(150)

	subjects := []model.Subject{
		{ID: "mathematics", Name: "Mathematics", BundlePrice: bundle, BundleEnabled: true},
		{ID: "english", Name: "English", BundlePrice: bundle, BundleEnabled: true},
		{ID: "kiswahili", Name: "Kiswahili", BundlePrice: bundle, BundleEnabled: true},
		{ID: "science", Name: "Science", BundlePrice: bundle, BundleEnabled: true},
		{ID: "social-studies", Name: "Social Studies", BundlePrice: bundle, BundleEnabled: true},
	}

	var contentTypes []model.ContentType
	for _, s := range subjects {
		contentTypes = append(contentTypes,
			model.ContentType{ID: s.ID + "-notes", SubjectID: s.ID, Name: "Notes", Price: per},
			model.ContentType{ID: s.ID + "-exams", SubjectID: s.ID, Name: "Exams", Price: per},
		)
	}

	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&subjects).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&contentTypes).Error
}

func (r *catalogRepoImpl) FindSubject(ctx context.Context, subjectID string) (*model.Subject, error) {
	var subject model.Subject
	err := r.db.WithContext(ctx).
		Where("id = ?", subjectID).
		First(&subject).Error

	if err != nil {
		return nil, err
	}
	return &subject, nil
}

func (r *catalogRepoImpl) FindSubjects(ctx context.Context, subjectIDs []string) ([]*model.Subject, error) {
	var subjects []*model.Subject
	err := r.db.WithContext(ctx).
		Where("id IN ?", subjectIDs).
		Find(&subjects).Error

	if err != nil {
		return nil, err
	}
	return subjects, nil
}

func (r *catalogRepoImpl) FindContentType(ctx context.Context, contentTypeID string) (*model.ContentType, error) {
	var contentType model.ContentType
	err := r.db.WithContext(ctx).
		Where("id = ?", contentTypeID).
		First(&contentType).Error

	if err != nil {
		return nil, err
	}
	return &contentType, nil
}

func (r *catalogRepoImpl) FindContentTypes(ctx context.Context, contentTypeIDs []string) ([]*model.ContentType, error) {
	var contentTypes []*model.ContentType
	err := r.db.WithContext(ctx).
		Where("id IN ?", contentTypeIDs).
		Find(&contentTypes).Error

	if err != nil {
		return nil, err
	}
	return contentTypes, nil
}
