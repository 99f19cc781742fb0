package service

import (
	"context"
	"net/http"

	"storefront/catalog-service/internal/app/catalog/entity"

	"github.com/google/uuid"
)

type CategoryServiceInterface interface {
	CreateCategory(ctx context.Context, req *entity.CreateCategoryRequest) (*entity.Category, error)
	GetCategory(ctx context.Context, id uint) (*entity.Category, error)
	ListCategories(ctx context.Context) ([]entity.Category, error)
	ListActiveCategories(ctx context.Context) ([]entity.Category, error)
	UpdateCategory(ctx context.Context, id uint, req *entity.UpdateCategoryRequest) (*entity.Category, error)
	DeleteCategory(ctx context.Context, id uint) error
	ToggleHomepage(ctx context.Context, id uint, active bool) (*entity.Category, error)
}

type ProductServiceInterface interface {
	CreateProduct(ctx context.Context, input *entity.CreateProductInput) (*entity.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	ListProducts(ctx context.Context, query *entity.ProductQuery) (*entity.ProductPage, error)
	ListFlagged(ctx context.Context, flag entity.ProductFlag, limit *int) ([]entity.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, patch *entity.ProductPatch) (*entity.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	// ToggleFlag выставляет флаг в value или инвертирует его, если value == nil
	ToggleFlag(ctx context.Context, id uuid.UUID, flag entity.ProductFlag, value *bool) (*entity.Product, error)
}

type ReviewServiceInterface interface {
	CreateReview(ctx context.Context, userID string, req *entity.CreateReviewRequest) (*entity.Review, error)
	ListReviews(ctx context.Context, productID *uuid.UUID) ([]entity.Review, error)
	// UpdateReview и DeleteReview разрешены автору отзыва и администратору
	UpdateReview(ctx context.Context, actorID string, id uint, req *entity.UpdateReviewRequest) (*entity.Review, error)
	DeleteReview(ctx context.Context, actorID string, id uint) error
}

type UserServiceInterface interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// HandleWebhook проверяет подпись и обрабатывает событие провайдера
	HandleWebhook(ctx context.Context, payload []byte, headers http.Header) (*entity.User, error)
}
