package service

import (
	"context"
	"errors"
	"fmt"

	"course-commerce/internal/dto"
	"course-commerce/internal/model"
	"course-commerce/internal/pricing"
	"course-commerce/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CartService interface {
	Add(ctx context.Context, userID string, req *dto.AddCartItemRequest) (*dto.CartItemView, error)
	Remove(ctx context.Context, userID, itemID string) error
	RemoveBySelection(ctx context.Context, userID string, req *dto.RemoveSelectionRequest) error
	List(ctx context.Context, userID string) (*dto.CartView, error)
	Quote(ctx context.Context, userID, offerCode string) (*dto.QuoteResponse, error)
}

type cartServiceImpl struct {
	cartRepo     repository.CartRepository
	catalogRepo  repository.CatalogRepository
	offerService OfferService
}

func NewCartService(
	cartRepo repository.CartRepository,
	catalogRepo repository.CatalogRepository,
	offerService OfferService,
) CartService {
	return &cartServiceImpl{
		cartRepo:     cartRepo,
		catalogRepo:  catalogRepo,
		offerService: offerService,
	}
}

func (s *cartServiceImpl) Add(ctx context.Context, userID string, req *dto.AddCartItemRequest) (*dto.CartItemView, error) {
	subject, err := s.catalogRepo.FindSubject(ctx, req.SubjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: subject %q", model.ErrNotFound, req.SubjectID)
		}
		return nil, fmt.Errorf("find subject: %w", err)
	}

	var price decimal.Decimal
	contentTypeID := ""

	if req.IsBundle {
		if req.ContentTypeID != "" {
			return nil, fmt.Errorf("%w: bundle selections must not name a content type", model.ErrNotFound)
		}
		if !subject.BundleEnabled {
			return nil, fmt.Errorf("%w: subject %q has no bundle", model.ErrNotFound, req.SubjectID)
		}
		price = subject.BundlePrice
	} else {
		contentType, err := s.catalogRepo.FindContentType(ctx, req.ContentTypeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: content type %q", model.ErrNotFound, req.ContentTypeID)
			}
			return nil, fmt.Errorf("find content type: %w", err)
		}
		if contentType.SubjectID != subject.ID {
			return nil, fmt.Errorf("%w: content type %q does not belong to subject %q",
				model.ErrNotFound, req.ContentTypeID, req.SubjectID)
		}
		price = contentType.Price
		contentTypeID = contentType.ID
	}

	item := &model.CartItem{
		ID:            uuid.NewString(),
		UserID:        userID,
		SubjectID:     subject.ID,
		ContentTypeID: contentTypeID,
		IsBundle:      req.IsBundle,
		Price:         price,
	}
	if err := s.cartRepo.Add(ctx, item); err != nil {
		return nil, err
	}

	return &dto.CartItemView{
		ID:            item.ID,
		SubjectID:     item.SubjectID,
		SubjectName:   subject.Name,
		ContentTypeID: item.ContentTypeID,
		IsBundle:      item.IsBundle,
		Price:         item.Price,
	}, nil
}

func (s *cartServiceImpl) Remove(ctx context.Context, userID, itemID string) error {
	return s.cartRepo.Remove(ctx, userID, itemID)
}

func (s *cartServiceImpl) RemoveBySelection(ctx context.Context, userID string, req *dto.RemoveSelectionRequest) error {
	return s.cartRepo.RemoveBySelection(ctx, userID, req.SubjectID, req.ContentTypeID, req.IsBundle)
}

func (s *cartServiceImpl) List(ctx context.Context, userID string) (*dto.CartView, error) {
	items, err := s.cartRepo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}

	subjectNames, err := s.subjectNames(ctx, items)
	if err != nil {
		return nil, err
	}

	view := &dto.CartView{Items: make([]dto.CartItemView, 0, len(items)), Total: decimal.Zero}
	for _, item := range items {
		view.Items = append(view.Items, dto.CartItemView{
			ID:            item.ID,
			SubjectID:     item.SubjectID,
			SubjectName:   subjectNames[item.SubjectID],
			ContentTypeID: item.ContentTypeID,
			IsBundle:      item.IsBundle,
			Price:         item.Price,
		})
		view.Total = view.Total.Add(item.Price)
	}
	return view, nil
}

func (s *cartServiceImpl) Quote(ctx context.Context, userID, offerCode string) (*dto.QuoteResponse, error) {
	items, err := s.cartRepo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}

	pricingItems, err := s.pricingItems(ctx, items)
	if err != nil {
		return nil, err
	}

	offer, err := s.offerService.Resolve(ctx, offerCode)
	if err != nil {
		if errors.Is(err, model.ErrInvalidOfferCode) {
			// Declined code: quote without it and report why.
			quote := pricing.ComputeQuote(pricingItems, nil)
			return &dto.QuoteResponse{
				ActionResult: dto.ActionResult{Success: false, Message: err.Error()},
				Subtotal:     quote.Subtotal,
				Discount:     quote.Discount,
				Total:        quote.Total,
				Package:      quote.Package,
			}, nil
		}
		return nil, err
	}

	quote := pricing.ComputeQuote(pricingItems, offer)
	resp := &dto.QuoteResponse{
		ActionResult: dto.ActionResult{Success: true},
		Subtotal:     quote.Subtotal,
		Discount:     quote.Discount,
		Total:        quote.Total,
		Package:      quote.Package,
	}
	if offer != nil {
		resp.Offer = offer.Code
	}
	return resp, nil
}

func (s *cartServiceImpl) subjectNames(ctx context.Context, items []*model.CartItem) (map[string]string, error) {
	ids := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if !seen[item.SubjectID] {
			seen[item.SubjectID] = true
			ids = append(ids, item.SubjectID)
		}
	}
	if len(ids) == 0 {
		return map[string]string{}, nil
	}

	subjects, err := s.catalogRepo.FindSubjects(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("find subjects: %w", err)
	}
	names := make(map[string]string, len(subjects))
	for _, subject := range subjects {
		names[subject.ID] = subject.Name
	}
	return names, nil
}

func (s *cartServiceImpl) pricingItems(ctx context.Context, items []*model.CartItem) ([]pricing.Item, error) {
	subjectNames, err := s.subjectNames(ctx, items)
	if err != nil {
		return nil, err
	}

	pricingItems := make([]pricing.Item, 0, len(items))
	for _, item := range items {
		pricingItems = append(pricingItems, pricing.Item{
			SubjectID:   item.SubjectID,
			SubjectName: subjectNames[item.SubjectID],
			IsBundle:    item.IsBundle,
			Price:       item.Price,
		})
	}
	return pricingItems, nil
}
