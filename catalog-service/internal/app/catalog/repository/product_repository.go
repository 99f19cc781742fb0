package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/catalog-service/internal/app/catalog/entity"
	"storefront/pkg/metrics"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sortColumns - допустимые поля сортировки и соответствующие колонки
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"price":     "price",
	"name":      "name",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository создает новый репозиторий товаров
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, "products")
	defer timer.ObserveDuration()

	if err := r.db.WithContext(ctx).Omit("Category").Create(product).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrProductAlreadyExists
		}
		if isForeignKeyViolation(err) {
			return ErrCategoryNotFound
		}
		metrics.RecordDbError(serviceName, metrics.DbOpInsert)
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// GetByID получает товар вместе с краткой категорией
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var product entity.Product
	result := r.db.WithContext(ctx).
		Preload("Category", selectCategoryRef).
		First(&product, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product by id: %w", result.Error)
	}
	return &product, nil
}

func (r *productRepository) GetByName(ctx context.Context, name string) (*entity.Product, error) {
	var product entity.Product
	result := r.db.WithContext(ctx).First(&product, "name = ?", name)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product by name: %w", result.Error)
	}
	return &product, nil
}

// List возвращает страницу товаров и общее количество подходящих под фильтр
func (r *productRepository) List(ctx context.Context, filter entity.ProductFilter) ([]entity.Product, int64, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "products")
	defer timer.ObserveDuration()

	var total int64
	err := r.db.WithContext(ctx).
		Model(&entity.Product{}).
		Scopes(filterProducts(filter)).
		Count(&total).Error
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	products := make([]entity.Product, 0, filter.Limit)
	if total == 0 {
		return products, 0, nil
	}

	err = r.db.WithContext(ctx).
		Scopes(filterProducts(filter), sortProducts(filter)).
		Preload("Category", selectCategoryRef).
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&products).Error
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	return products, total, nil
}

// ListByFlag возвращает последние товары с установленным флагом
func (r *productRepository) ListByFlag(ctx context.Context, flag entity.ProductFlag, limit int) ([]entity.Product, error) {
	products := make([]entity.Product, 0, limit)
	err := r.db.WithContext(ctx).
		Where(clause.Eq{Column: clause.Column{Name: string(flag)}, Value: true}).
		Preload("Category", selectCategoryRef).
		Order("created_at DESC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list products by %s: %w", flag, err)
	}
	return products, nil
}

func (r *productRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, "products")
	defer timer.ObserveDuration()

	result := r.db.WithContext(ctx).
		Model(&entity.Product{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return ErrProductAlreadyExists
		}
		if isForeignKeyViolation(result.Error) {
			return ErrCategoryNotFound
		}
		metrics.RecordDbError(serviceName, metrics.DbOpUpdate)
		return fmt.Errorf("failed to update product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// Delete удаляет товар, отзывы удаляются каскадно (ON DELETE CASCADE)
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&entity.Product{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func selectCategoryRef(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name")
}

// filterProducts добавляет WHERE только для заданных условий
func filterProducts(f entity.ProductFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.Search != "" {
			db = db.Where("name ILIKE ?", "%"+likeEscaper.Replace(f.Search)+"%")
		}
		if f.CategoryID != nil {
			db = db.Where("category_id = ?", *f.CategoryID)
		}
		if f.MinPrice != nil {
			db = db.Where("price >= ?", *f.MinPrice)
		}
		if f.MaxPrice != nil {
			db = db.Where("price <= ?", *f.MaxPrice)
		}
		if f.MinStock != nil {
			db = db.Where("stock >= ?", *f.MinStock)
		}
		if f.MaxStock != nil {
			db = db.Where("stock <= ?", *f.MaxStock)
		}
		return db
	}
}

// sortProducts сортирует по выбранной колонке, id добавляется для стабильных страниц
func sortProducts(f entity.ProductFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		column, ok := sortColumns[f.SortBy]
		if !ok {
			column = sortColumns["createdAt"]
		}
		return db.Order(clause.OrderBy{Columns: []clause.OrderByColumn{
			{Column: clause.Column{Name: column}, Desc: f.Order != "ASC"},
			{Column: clause.Column{Name: "id"}},
		}})
	}
}
