package repository

import (
	"context"
	"fmt"
	"time"

	"storefront/catalog-service/internal/app/catalog/entity"
	"storefront/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const webhookDeliveriesCollection = "webhook_deliveries"

type webhookDeliveryRepository struct {
	collection *mongo.Collection
}

// NewWebhookDeliveryRepository создает журнал доставок в MongoDB
// Уникальный индекс по delivery_id отсекает повторные доставки одного события
func NewWebhookDeliveryRepository(db *mongo.Database) WebhookDeliveryRepository {
	collection := db.Collection(webhookDeliveriesCollection)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "delivery_id", Value: 1}},
			Options: options.Index().SetName("delivery_id_uniq").SetUnique(true),
		},
		{
			// старые записи удаляет TTL индекс
			Keys:    bson.D{{Key: "received_at", Value: 1}},
			Options: options.Index().SetName("received_at_ttl").SetExpireAfterSeconds(int32((30 * 24 * time.Hour).Seconds())),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Warn().Err(err).Msg("failed to create webhook delivery indexes")
	}

	return &webhookDeliveryRepository{collection: collection}
}

// Record сохраняет доставку; ErrDuplicateDelivery, если id уже встречался
func (r *webhookDeliveryRepository) Record(ctx context.Context, delivery *entity.WebhookDelivery) error {
	if delivery.ReceivedAt.IsZero() {
		delivery.ReceivedAt = time.Now().UTC()
	}

	if _, err := r.collection.InsertOne(ctx, delivery); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateDelivery
		}
		return fmt.Errorf("failed to record webhook delivery: %w", err)
	}
	return nil
}

// Forget удаляет запись, чтобы повторная доставка после сбоя обработалась заново
func (r *webhookDeliveryRepository) Forget(ctx context.Context, deliveryID string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"delivery_id": deliveryID}); err != nil {
		return fmt.Errorf("failed to forget webhook delivery: %w", err)
	}
	return nil
}
