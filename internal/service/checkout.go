package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"course-commerce/internal/client"
	"course-commerce/internal/dto"
	"course-commerce/internal/model"
	"course-commerce/internal/pricing"
	"course-commerce/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CheckoutService interface {
	// BeginCheckout turns the user's current cart into one provider checkout
	// session and returns the redirect URL. The cart is not touched: clearing
	// happens only on confirmed fulfillment, so an abandoned checkout leaves
	// it intact.
	BeginCheckout(ctx context.Context, userID, offerCode string) (*dto.CheckoutResponse, error)
	// HandleWebhook consumes one signed provider event. Replayed deliveries
	// are no-ops. Items that can never fulfill are logged and skipped because
	// the payment has already been collected; a transient persistence failure
	// instead surfaces as an error so the delivery is retried.
	HandleWebhook(ctx context.Context, signatureHeader string, body []byte) error
	ListPurchases(ctx context.Context, userID string) ([]*dto.PurchaseView, error)
}

type checkoutServiceImpl struct {
	db               *gorm.DB
	stripeClient     client.StripeClient
	baseURL          string
	currency         string
	cartRepo         repository.CartRepository
	catalogRepo      repository.CatalogRepository
	purchaseRepo     repository.PurchaseRepository
	webhookEventRepo repository.WebhookEventRepository
	offerService     OfferService
}

func NewCheckoutService(
	db *gorm.DB,
	stripeClient client.StripeClient,
	baseURL string,
	currency string,
	cartRepo repository.CartRepository,
	catalogRepo repository.CatalogRepository,
	purchaseRepo repository.PurchaseRepository,
	webhookEventRepo repository.WebhookEventRepository,
	offerService OfferService,
) CheckoutService {
	return &checkoutServiceImpl{
		db:               db,
		stripeClient:     stripeClient,
		baseURL:          baseURL,
		currency:         currency,
		cartRepo:         cartRepo,
		catalogRepo:      catalogRepo,
		purchaseRepo:     purchaseRepo,
		webhookEventRepo: webhookEventRepo,
		offerService:     offerService,
	}
}

func (s *checkoutServiceImpl) BeginCheckout(ctx context.Context, userID, offerCode string) (*dto.CheckoutResponse, error) {
	items, err := s.cartRepo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}
	if len(items) == 0 {
		return nil, model.ErrEmptyCart
	}

	offer, err := s.offerService.Resolve(ctx, offerCode)
	if err != nil {
		return nil, err
	}

	pricingItems, names, err := s.describeItems(ctx, items)
	if err != nil {
		return nil, err
	}

	quote := pricing.ComputeQuote(pricingItems, offer)
	amounts, err := pricing.AllocateTotal(pricingItems, quote.Total, s.currency)
	if err != nil {
		return nil, fmt.Errorf("allocate line amounts: %w", err)
	}

	lineItems := make([]client.LineItem, len(items))
	snapshots := make([]model.CartItemSnapshot, len(items))
	itemIDs := make([]string, len(items))
	for i, item := range items {
		lineItems[i] = client.LineItem{
			Name:       names[i],
			Currency:   s.currency,
			UnitAmount: amounts[i],
			Quantity:   1,
		}
		snapshots[i] = model.CartItemSnapshot{
			ID:            item.ID,
			SubjectID:     item.SubjectID,
			ContentTypeID: item.ContentTypeID,
			IsBundle:      item.IsBundle,
			UnitAmount:    amounts[i],
		}
		itemIDs[i] = item.ID
	}

	idsJSON, err := json.Marshal(itemIDs)
	if err != nil {
		return nil, fmt.Errorf("marshal cart item ids: %w", err)
	}
	snapshotJSON, err := model.MarshalSnapshots(snapshots)
	if err != nil {
		return nil, fmt.Errorf("marshal cart snapshot: %w", err)
	}

	metadata := map[string]string{
		"user_id":       userID,
		"cart_item_ids": string(idsJSON),
		"cart_items":    snapshotJSON,
	}
	if offer != nil {
		metadata["offer_code"] = offer.Code
	}

	session, err := s.stripeClient.CreateCheckoutSession(ctx, &client.CheckoutSessionParams{
		SuccessURL: s.baseURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  s.baseURL + "/cart",
		LineItems:  lineItems,
		Metadata:   metadata,
	})
	if err != nil {
		return nil, err
	}

	return &dto.CheckoutResponse{
		ActionResult: dto.ActionResult{Success: true},
		SessionID:    session.ID,
		RedirectURL:  session.URL,
	}, nil
}

func (s *checkoutServiceImpl) HandleWebhook(ctx context.Context, signatureHeader string, body []byte) error {
	if err := s.stripeClient.VerifyWebhookSignature(signatureHeader, body); err != nil {
		return err
	}

	var event model.StripeEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("decode webhook payload: %w", err)
	}

	processed, err := s.webhookEventRepo.Exists(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("check webhook event: %w", err)
	}
	if processed {
		slog.Info("webhook event already processed", "event_id", event.ID)
		return nil
	}

	switch event.Type {
	case "checkout.session.completed":
		// A fulfillment error means something was not durably persisted:
		// leave the event unmarked and fail the delivery so the provider
		// retries it.
		if err := s.fulfill(ctx, &event.Data.Object); err != nil {
			return fmt.Errorf("fulfill session %s: %w", event.Data.Object.ID, err)
		}
	case "checkout.session.expired":
		// Abandoned checkout: the cart stays intact.
		slog.Info("checkout session expired", "session_id", event.Data.Object.ID)
	default:
		slog.Debug("ignoring webhook event", "type", event.Type)
		return nil
	}

	if err := s.webhookEventRepo.MarkProcessed(ctx, event.ID, event.Type); err != nil {
		return fmt.Errorf("mark webhook event processed: %w", err)
	}
	return nil
}

// errBadSessionMetadata marks payloads no redelivery can repair.
var errBadSessionMetadata = errors.New("unusable session metadata")

// fulfill records purchases for a completed session. Each item is its own
// transaction: a conditional insert keyed on (session, item) plus removal of
// the fulfilled cart row. Items that can never fulfill (malformed snapshot
// entries, rows whose referenced entities are gone) are logged and skipped so
// the rest of the batch still lands, since the customer has already paid.
// Transient persistence failures instead return an error: the event stays
// unacknowledged and the provider's redelivery is safe thanks to the
// (session, item) unique index.
func (s *checkoutServiceImpl) fulfill(ctx context.Context, session *model.StripeCheckoutSession) error {
	userID := session.Metadata["user_id"]
	if userID == "" {
		slog.Error("completed session has no user_id metadata", "session_id", session.ID)
		return nil
	}

	currency := session.Currency
	if currency == "" {
		currency = s.currency
	}

	snapshots, err := s.sessionSnapshots(ctx, session)
	if err != nil {
		if errors.Is(err, errBadSessionMetadata) {
			slog.Error("reconstruct session items", "session_id", session.ID, "error", err)
			return nil
		}
		return fmt.Errorf("reconstruct session items: %w", err)
	}

	var failed int
	for _, snap := range snapshots {
		if snap.ID == "" || snap.SubjectID == "" {
			slog.Error("skipping malformed snapshot item",
				"session_id", session.ID, "cart_item_id", snap.ID)
			continue
		}

		purchase := &model.Purchase{
			ID:              uuid.NewString(),
			UserID:          userID,
			SubjectID:       snap.SubjectID,
			ContentTypeID:   snap.ContentTypeID,
			IsBundle:        snap.IsBundle,
			AmountPaid:      pricing.FromMinorUnits(snap.UnitAmount, currency),
			StripeSessionID: session.ID,
			CartItemID:      snap.ID,
		}

		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			created, err := s.purchaseRepo.CreateIfAbsent(ctx, tx, purchase)
			if err != nil {
				return fmt.Errorf("create purchase: %w", err)
			}
			if !created {
				// Webhook replay: the first delivery already fulfilled this item.
				return nil
			}
			if err := s.cartRepo.DeleteByID(ctx, tx, snap.ID); err != nil {
				return fmt.Errorf("clear cart item: %w", err)
			}
			return nil
		})
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, gorm.ErrForeignKeyViolated) {
				slog.Error("cart item can no longer fulfill",
					"session_id", session.ID, "cart_item_id", snap.ID, "error", err)
				continue
			}
			failed++
			slog.Error("fulfill cart item",
				"session_id", session.ID, "cart_item_id", snap.ID, "error", err)
			continue
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d purchases not durably persisted", failed, len(snapshots))
	}
	return nil
}

// sessionSnapshots prefers the metadata snapshot; when an older session only
// carries ids, it falls back to loading the referenced cart rows.
func (s *checkoutServiceImpl) sessionSnapshots(ctx context.Context, session *model.StripeCheckoutSession) ([]model.CartItemSnapshot, error) {
	if raw := session.Metadata["cart_items"]; raw != "" {
		snapshots, err := model.UnmarshalSnapshots(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: decode cart_items: %v", errBadSessionMetadata, err)
		}
		return snapshots, nil
	}

	raw := session.Metadata["cart_item_ids"]
	if raw == "" {
		return nil, fmt.Errorf("%w: neither cart_items nor cart_item_ids present", errBadSessionMetadata)
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("%w: decode cart_item_ids: %v", errBadSessionMetadata, err)
	}

	items, err := s.cartRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load cart items: %w", err)
	}

	currency := session.Currency
	if currency == "" {
		currency = s.currency
	}
	snapshots := make([]model.CartItemSnapshot, 0, len(items))
	for _, item := range items {
		minor, err := pricing.MinorUnits(item.Price, currency)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errBadSessionMetadata, err)
		}
		snapshots = append(snapshots, model.CartItemSnapshot{
			ID:            item.ID,
			SubjectID:     item.SubjectID,
			ContentTypeID: item.ContentTypeID,
			IsBundle:      item.IsBundle,
			UnitAmount:    minor,
		})
	}
	return snapshots, nil
}

func (s *checkoutServiceImpl) describeItems(ctx context.Context, items []*model.CartItem) ([]pricing.Item, []string, error) {
	subjectIDs := make([]string, 0, len(items))
	contentTypeIDs := make([]string, 0, len(items))
	for _, item := range items {
		subjectIDs = append(subjectIDs, item.SubjectID)
		if item.ContentTypeID != "" {
			contentTypeIDs = append(contentTypeIDs, item.ContentTypeID)
		}
	}

	subjects, err := s.catalogRepo.FindSubjects(ctx, subjectIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("find subjects: %w", err)
	}
	subjectNames := make(map[string]string, len(subjects))
	for _, subject := range subjects {
		subjectNames[subject.ID] = subject.Name
	}

	contentTypeNames := make(map[string]string)
	if len(contentTypeIDs) > 0 {
		contentTypes, err := s.catalogRepo.FindContentTypes(ctx, contentTypeIDs)
		if err != nil {
			return nil, nil, fmt.Errorf("find content types: %w", err)
		}
		for _, contentType := range contentTypes {
			contentTypeNames[contentType.ID] = contentType.Name
		}
	}

	pricingItems := make([]pricing.Item, len(items))
	names := make([]string, len(items))
	for i, item := range items {
		subjectName, ok := subjectNames[item.SubjectID]
		if !ok {
			return nil, nil, fmt.Errorf("%w: subject %q no longer exists", model.ErrNotFound, item.SubjectID)
		}
		pricingItems[i] = pricing.Item{
			SubjectID:   item.SubjectID,
			SubjectName: subjectName,
			IsBundle:    item.IsBundle,
			Price:       item.Price,
		}
		if item.IsBundle {
			names[i] = fmt.Sprintf("%s (Full Bundle)", subjectName)
		} else {
			contentTypeName, ok := contentTypeNames[item.ContentTypeID]
			if !ok {
				return nil, nil, fmt.Errorf("%w: content type %q no longer exists", model.ErrNotFound, item.ContentTypeID)
			}
			names[i] = fmt.Sprintf("%s (%s)", subjectName, contentTypeName)
		}
	}
	return pricingItems, names, nil
}

func (s *checkoutServiceImpl) ListPurchases(ctx context.Context, userID string) ([]*dto.PurchaseView, error) {
	purchases, err := s.purchaseRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}

	views := make([]*dto.PurchaseView, len(purchases))
	for i, purchase := range purchases {
		views[i] = &dto.PurchaseView{
			ID:            purchase.ID,
			SubjectID:     purchase.SubjectID,
			ContentTypeID: purchase.ContentTypeID,
			IsBundle:      purchase.IsBundle,
			AmountPaid:    purchase.AmountPaid,
			CreatedAt:     purchase.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}
	return views, nil
}
