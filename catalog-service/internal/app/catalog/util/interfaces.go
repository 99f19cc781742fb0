package util

import (
	"context"
	"io"
	"net/http"
	"time"

	"storefront/catalog-service/internal/app/catalog/entity"
)

// CategoryScope - какой список категорий лежит в кеше
type CategoryScope string

const (
	ScopeAllCategories    CategoryScope = "all"
	ScopeActiveCategories CategoryScope = "active"
)

// CategoryCache кеш списков категорий в Redis
type CategoryCache interface {
	// GetCategories возвращает found == false при промахе кеша
	GetCategories(ctx context.Context, scope CategoryScope) ([]entity.Category, bool, error)
	SetCategories(ctx context.Context, scope CategoryScope, categories []entity.Category, ttl time.Duration) error
	InvalidateCategories(ctx context.Context) error
}

// MessagePublisher интерфейс для отправки сообщений в Kafka
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}

// ObjectStorage - внешнее хранилище изображений товаров
type ObjectStorage interface {
	// Upload сохраняет файл и возвращает постоянный URL
	Upload(ctx context.Context, filename string, content io.Reader) (string, error)
}

// TokenVerifier проверяет bearer токен identity provider
type TokenVerifier interface {
	Verify(token string) (*SessionClaims, error)
}

// WebhookVerifier проверяет подпись webhook от identity provider
type WebhookVerifier interface {
	Verify(payload []byte, headers http.Header) error
}
