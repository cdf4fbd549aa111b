package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"course-commerce/internal/dto"
	"course-commerce/internal/model"
	"course-commerce/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mockCartRepo struct {
	m     sync.Mutex
	items map[string]*model.CartItem // keyed by id
	seq   int
}

func newMockCartRepo() *mockCartRepo {
	return &mockCartRepo{items: map[string]*model.CartItem{}}
}

func (m *mockCartRepo) selectionExists(item *model.CartItem) bool {
	for _, existing := range m.items {
		if existing.UserID == item.UserID &&
			existing.SubjectID == item.SubjectID &&
			existing.ContentTypeID == item.ContentTypeID &&
			existing.IsBundle == item.IsBundle {
			return true
		}
	}
	return false
}

func (m *mockCartRepo) Add(_ context.Context, item *model.CartItem) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.selectionExists(item) {
		return model.ErrAlreadyInCart
	}
	m.seq++
	item.CreatedAt = time.Unix(int64(m.seq), 0)
	m.items[item.ID] = item
	return nil
}

func (m *mockCartRepo) Remove(_ context.Context, userID, itemID string) error {
	m.m.Lock()
	defer m.m.Unlock()
	item, ok := m.items[itemID]
	if !ok || item.UserID != userID {
		return model.ErrNotFound
	}
	delete(m.items, itemID)
	return nil
}

func (m *mockCartRepo) RemoveBySelection(_ context.Context, userID, subjectID, contentTypeID string, isBundle bool) error {
	m.m.Lock()
	defer m.m.Unlock()
	for id, item := range m.items {
		if item.UserID == userID && item.SubjectID == subjectID &&
			item.ContentTypeID == contentTypeID && item.IsBundle == isBundle {
			delete(m.items, id)
			return nil
		}
	}
	return model.ErrNotFound
}

func (m *mockCartRepo) List(_ context.Context, userID string) ([]*model.CartItem, error) {
	m.m.Lock()
	defer m.m.Unlock()
	var items []*model.CartItem
	for _, item := range m.items {
		if item.UserID == userID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	return items, nil
}

func (m *mockCartRepo) FindByIDs(_ context.Context, ids []string) ([]*model.CartItem, error) {
	m.m.Lock()
	defer m.m.Unlock()
	var items []*model.CartItem
	for _, id := range ids {
		if item, ok := m.items[id]; ok {
			items = append(items, item)
		}
	}
	return items, nil
}

func (m *mockCartRepo) DeleteByID(_ context.Context, _ *gorm.DB, itemID string) error {
	m.m.Lock()
	defer m.m.Unlock()
	delete(m.items, itemID)
	return nil
}

type mockCatalogRepo struct {
	subjects     map[string]*model.Subject
	contentTypes map[string]*model.ContentType
}

func newMockCatalogRepo() *mockCatalogRepo {
	price := decimal.RequireFromString("150.00")
	bundle := decimal.RequireFromString("300.00")
	subjects := map[string]*model.Subject{
		"mathematics": {ID: "mathematics", Name: "Mathematics", BundlePrice: bundle, BundleEnabled: true},
		"english":     {ID: "english", Name: "English", BundlePrice: bundle, BundleEnabled: true},
	}
	contentTypes := map[string]*model.ContentType{
		"mathematics-notes": {ID: "mathematics-notes", SubjectID: "mathematics", Name: "Notes", Price: price},
		"english-notes":     {ID: "english-notes", SubjectID: "english", Name: "Notes", Price: price},
	}
	return &mockCatalogRepo{subjects: subjects, contentTypes: contentTypes}
}

func (m *mockCatalogRepo) Seed(context.Context) error { return nil }

func (m *mockCatalogRepo) FindSubject(_ context.Context, id string) (*model.Subject, error) {
	if s, ok := m.subjects[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCatalogRepo) FindSubjects(_ context.Context, ids []string) ([]*model.Subject, error) {
	var out []*model.Subject
	for _, id := range ids {
		if s, ok := m.subjects[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockCatalogRepo) FindContentType(_ context.Context, id string) (*model.ContentType, error) {
	if ct, ok := m.contentTypes[id]; ok {
		return ct, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCatalogRepo) FindContentTypes(_ context.Context, ids []string) ([]*model.ContentType, error) {
	var out []*model.ContentType
	for _, id := range ids {
		if ct, ok := m.contentTypes[id]; ok {
			out = append(out, ct)
		}
	}
	return out, nil
}

type mockOfferRepo struct {
	offers map[string]*model.Offer
}

func (m *mockOfferRepo) Seed(context.Context) error { return nil }

func (m *mockOfferRepo) FindByCode(_ context.Context, code string) (*model.Offer, error) {
	if o, ok := m.offers[code]; ok {
		return o, nil
	}
	return nil, model.ErrNotFound
}

var _ repository.CartRepository = (*mockCartRepo)(nil)
var _ repository.CatalogRepository = (*mockCatalogRepo)(nil)
var _ repository.OfferRepository = (*mockOfferRepo)(nil)

func newTestCartService(offers map[string]*model.Offer) (CartService, *mockCartRepo) {
	cartRepo := newMockCartRepo()
	offerService := NewOfferService(&mockOfferRepo{offers: offers})
	return NewCartService(cartRepo, newMockCatalogRepo(), offerService), cartRepo
}

func TestCartService_DuplicateAddCollapsesToOneItem(t *testing.T) {
	svc, repo := newTestCartService(nil)
	ctx := context.Background()

	req := &dto.AddCartItemRequest{SubjectID: "mathematics", ContentTypeID: "mathematics-notes"}
	_, err := svc.Add(ctx, "u1", req)
	require.NoError(t, err)

	_, err = svc.Add(ctx, "u1", req)
	assert.ErrorIs(t, err, model.ErrAlreadyInCart)
	assert.Len(t, repo.items, 1)
}

func TestCartService_RemoveThenAddSucceeds(t *testing.T) {
	svc, _ := newTestCartService(nil)
	ctx := context.Background()

	req := &dto.AddCartItemRequest{SubjectID: "mathematics", IsBundle: true}
	item, err := svc.Add(ctx, "u1", req)
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, "u1", item.ID))

	_, err = svc.Add(ctx, "u1", req)
	assert.NoError(t, err)
}

func TestCartService_RemoveMissingItem(t *testing.T) {
	svc, _ := newTestCartService(nil)

	err := svc.Remove(context.Background(), "u1", "nope")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestCartService_ListPreservesInsertionOrderAndSumsTotal(t *testing.T) {
	svc, _ := newTestCartService(nil)
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", &dto.AddCartItemRequest{SubjectID: "mathematics", ContentTypeID: "mathematics-notes"})
	require.NoError(t, err)
	_, err = svc.Add(ctx, "u1", &dto.AddCartItemRequest{SubjectID: "english", IsBundle: true})
	require.NoError(t, err)

	view, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
	assert.Equal(t, "mathematics", view.Items[0].SubjectID)
	assert.Equal(t, "english", view.Items[1].SubjectID)
	assert.Equal(t, "Mathematics", view.Items[0].SubjectName)
	assert.True(t, view.Total.Equal(decimal.RequireFromString("450.00")), "total %s", view.Total)
}

func TestCartService_AddUnknownSubject(t *testing.T) {
	svc, _ := newTestCartService(nil)

	_, err := svc.Add(context.Background(), "u1", &dto.AddCartItemRequest{SubjectID: "history", IsBundle: true})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestCartService_BundleMustNotNameContentType(t *testing.T) {
	svc, _ := newTestCartService(nil)

	_, err := svc.Add(context.Background(), "u1", &dto.AddCartItemRequest{
		SubjectID: "mathematics", ContentTypeID: "mathematics-notes", IsBundle: true,
	})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestCartService_QuoteWithValidFlatOffer(t *testing.T) {
	svc, _ := newTestCartService(map[string]*model.Offer{
		"LAUNCH50": {
			ID: "o1", Code: "LAUNCH50", Name: "Launch discount",
			DiscountAmount: decimal.NewNullDecimal(decimal.RequireFromString("50")),
		},
	})
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", &dto.AddCartItemRequest{SubjectID: "mathematics", ContentTypeID: "mathematics-notes"})
	require.NoError(t, err)

	// Codes are case-insensitive at entry.
	quote, err := svc.Quote(ctx, "u1", "launch50")
	require.NoError(t, err)
	assert.True(t, quote.Success)
	assert.Equal(t, "LAUNCH50", quote.Offer)
	assert.True(t, quote.Subtotal.Equal(decimal.RequireFromString("150.00")), "subtotal %s", quote.Subtotal)
	assert.True(t, quote.Discount.Equal(decimal.RequireFromString("50")), "discount %s", quote.Discount)
	assert.True(t, quote.Total.Equal(decimal.RequireFromString("100.00")), "total %s", quote.Total)
}

func TestCartService_QuoteWithInvalidOfferLeavesTotalUnchanged(t *testing.T) {
	svc, _ := newTestCartService(nil)
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", &dto.AddCartItemRequest{SubjectID: "mathematics", ContentTypeID: "mathematics-notes"})
	require.NoError(t, err)

	quote, err := svc.Quote(ctx, "u1", "BOGUS")
	require.NoError(t, err)
	assert.False(t, quote.Success)
	assert.NotEmpty(t, quote.Message)
	assert.True(t, quote.Discount.IsZero())
	assert.True(t, quote.Total.Equal(decimal.RequireFromString("150.00")), "total %s", quote.Total)
}

func TestCartService_QuoteWithExpiredOffer(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	svc, _ := newTestCartService(map[string]*model.Offer{
		"OLD10": {
			ID: "o2", Code: "OLD10", Name: "Expired",
			DiscountPercent: decimal.NewNullDecimal(decimal.RequireFromString("10")),
			EndsAt:          &past,
		},
	})
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", &dto.AddCartItemRequest{SubjectID: "mathematics", ContentTypeID: "mathematics-notes"})
	require.NoError(t, err)

	quote, err := svc.Quote(ctx, "u1", "OLD10")
	require.NoError(t, err)
	assert.False(t, quote.Success)
	assert.True(t, quote.Total.Equal(decimal.RequireFromString("150.00")), "total %s", quote.Total)
}
