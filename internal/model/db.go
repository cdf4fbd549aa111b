package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Subject struct {
	ID            string          `gorm:"primaryKey;size:64;not null"` // subject slug
	Name          string          `gorm:"size:128;uniqueIndex;not null"`
	BundlePrice   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	BundleEnabled bool            `gorm:"not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type ContentType struct {
	ID        string          `gorm:"primaryKey;size:64;not null"` // content type slug
	SubjectID string          `gorm:"size:64;index;not null"`
	Name      string          `gorm:"size:128;not null"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt time.Time
}

// ContentTypeID is "" (not NULL) for whole-subject bundles so the selection
// index stays unique: NULLs compare distinct in sqlite unique indexes.
type CartItem struct {
	ID            string          `gorm:"primaryKey;size:36;not null"`
	UserID        string          `gorm:"size:64;not null;uniqueIndex:ux_cart_selection,priority:1"`
	SubjectID     string          `gorm:"size:64;not null;uniqueIndex:ux_cart_selection,priority:2"`
	ContentTypeID string          `gorm:"size:64;not null;uniqueIndex:ux_cart_selection,priority:3"`
	IsBundle      bool            `gorm:"not null;uniqueIndex:ux_cart_selection,priority:4"`
	Price         decimal.Decimal `gorm:"type:decimal(10,2);not null"` // snapshot at add-time
	CreatedAt     time.Time
}

type Offer struct {
	ID              string              `gorm:"primaryKey;size:36;not null"`
	Code            string              `gorm:"size:64;uniqueIndex;not null"` // stored uppercase
	Name            string              `gorm:"size:128;not null"`
	DiscountAmount  decimal.NullDecimal `gorm:"type:decimal(10,2)"`
	DiscountPercent decimal.NullDecimal `gorm:"type:decimal(5,2)"`
	StartsAt        *time.Time
	EndsAt          *time.Time
	CreatedAt       time.Time
}

// Purchase is the durable entitlement record, created exactly once per
// (stripe_session_id, cart_item_id). Never updated, never deleted.
type Purchase struct {
	ID              string          `gorm:"primaryKey;size:36;not null"`
	UserID          string          `gorm:"size:64;index;not null"`
	SubjectID       string          `gorm:"size:64;not null"`
	ContentTypeID   string          `gorm:"size:64;not null"` // "" for bundles
	IsBundle        bool            `gorm:"not null"`
	AmountPaid      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	StripeSessionID string          `gorm:"size:128;not null;uniqueIndex:ux_purchase_session_item,priority:1"`
	CartItemID      string          `gorm:"size:36;not null;uniqueIndex:ux_purchase_session_item,priority:2"`
	CreatedAt       time.Time
}

type WebhookEvent struct {
	EventID     string `gorm:"primaryKey;size:128;not null"`
	EventType   string `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}
