package repository

import (
	"context"
	"errors"

	"storefront/catalog-service/internal/app/catalog/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const serviceName = "catalog"

var (
	ErrCategoryNotFound      = errors.New("category not found")
	ErrCategoryAlreadyExists = errors.New("category with this name already exists")
	ErrCategoryHasProducts   = errors.New("category still has products")
	ErrHomepageLimitReached  = errors.New("homepage category limit reached")

	ErrProductNotFound      = errors.New("product not found")
	ErrProductAlreadyExists = errors.New("product with this name already exists")

	ErrReviewNotFound = errors.New("review not found")

	ErrUserNotFound   = errors.New("user not found")
	ErrUserEmailTaken = errors.New("email already belongs to another user")

	ErrDuplicateDelivery = errors.New("webhook delivery already recorded")
)

type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id uint) (*entity.Category, error)
	// GetByName ищет категорию по точному (регистрозависимому) совпадению имени
	GetByName(ctx context.Context, name string) (*entity.Category, error)
	GetAll(ctx context.Context) ([]entity.Category, error)
	GetActive(ctx context.Context, limit int) ([]entity.Category, error)
	Update(ctx context.Context, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
	// ActivateOnHomepage включает флаг, только если активных категорий меньше limit
	ActivateOnHomepage(ctx context.Context, id uint, limit int) error
	DeactivateOnHomepage(ctx context.Context, id uint) error
}

type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	GetByName(ctx context.Context, name string) (*entity.Product, error)
	List(ctx context.Context, filter entity.ProductFilter) ([]entity.Product, int64, error)
	ListByFlag(ctx context.Context, flag entity.ProductFlag, limit int) ([]entity.Product, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	GetByID(ctx context.Context, id uint) (*entity.Review, error)
	// List возвращает отзывы от новых к старым, productID == nil - все отзывы
	List(ctx context.Context, productID *uuid.UUID) ([]entity.Review, error)
	Update(ctx context.Context, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// FindOrCreate возвращает существующего пользователя или создает нового
	// created == true, если запись была вставлена этим вызовом
	FindOrCreate(ctx context.Context, user *entity.User) (*entity.User, bool, error)
}

// WebhookDeliveryRepository - журнал доставок webhook для идемпотентности
type WebhookDeliveryRepository interface {
	Record(ctx context.Context, delivery *entity.WebhookDelivery) error
	Forget(ctx context.Context, deliveryID string) error
}

// pgErrorCode возвращает код ошибки PostgreSQL или пустую строку
func pgErrorCode(err error) (string, string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	return "", ""
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	code, _ := pgErrorCode(err)
	return code == "23505"
}

func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	code, _ := pgErrorCode(err)
	return code == "23503"
}
