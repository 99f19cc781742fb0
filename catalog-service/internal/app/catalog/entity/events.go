package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventProductCreated = "PRODUCT_CREATED"
	EventProductUpdated = "PRODUCT_UPDATED"
	EventProductDeleted = "PRODUCT_DELETED"
	// EventMediaOrphaned отправляется, когда файл загружен, но строка в БД не записалась
	EventMediaOrphaned = "MEDIA_ORPHANED"
)

// ProductEvent - событие об изменении товара в топике product_events
// PreviousImageURL заполняется только при замене изображения
type ProductEvent struct {
	EventType        string          `json:"event_type"`
	ProductID        uuid.UUID       `json:"product_id"`
	Name             string          `json:"name,omitempty"`
	Price            decimal.Decimal `json:"price"`
	CategoryID       uint            `json:"category_id,omitempty"`
	ImageURL         string          `json:"image_url,omitempty"`
	PreviousImageURL string          `json:"previous_image_url,omitempty"`
	Timestamp        time.Time       `json:"timestamp"`
}

// WebhookDelivery - запись о доставке события от identity provider
type WebhookDelivery struct {
	DeliveryID string    `bson:"delivery_id"`
	EventType  string    `bson:"event_type"`
	SubjectID  string    `bson:"subject_id,omitempty"`
	ReceivedAt time.Time `bson:"received_at"`
}
