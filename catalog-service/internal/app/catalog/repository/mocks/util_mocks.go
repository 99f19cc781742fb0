package mocks

import (
	"context"
	"io"
	"net/http"
	"time"

	"storefront/catalog-service/internal/app/catalog/entity"
	"storefront/catalog-service/internal/app/catalog/util"

	"github.com/stretchr/testify/mock"
)

// MockCategoryCache мок для util.CategoryCache
type MockCategoryCache struct {
	mock.Mock
}

func (m *MockCategoryCache) GetCategories(ctx context.Context, scope util.CategoryScope) ([]entity.Category, bool, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]entity.Category), args.Bool(1), args.Error(2)
}

func (m *MockCategoryCache) SetCategories(ctx context.Context, scope util.CategoryScope, categories []entity.Category, ttl time.Duration) error {
	args := m.Called(ctx, scope, categories, ttl)
	return args.Error(0)
}

func (m *MockCategoryCache) InvalidateCategories(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockMessagePublisher мок для util.MessagePublisher
type MockMessagePublisher struct {
	mock.Mock
}

func (m *MockMessagePublisher) PublishMessage(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockObjectStorage мок для util.ObjectStorage
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) Upload(ctx context.Context, filename string, content io.Reader) (string, error) {
	args := m.Called(ctx, filename, content)
	return args.String(0), args.Error(1)
}

// MockWebhookVerifier мок для util.WebhookVerifier
type MockWebhookVerifier struct {
	mock.Mock
}

func (m *MockWebhookVerifier) Verify(payload []byte, headers http.Header) error {
	args := m.Called(payload, headers)
	return args.Error(0)
}

// MockTokenVerifier мок для util.TokenVerifier
type MockTokenVerifier struct {
	mock.Mock
}

func (m *MockTokenVerifier) Verify(token string) (*util.SessionClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*util.SessionClaims), args.Error(1)
}
