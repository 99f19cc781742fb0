package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/catalog-service/internal/app/catalog/entity"

	"gorm.io/gorm"
)

// homepageLockKey - ключ advisory lock, сериализующий включение категорий на главной
const homepageLockKey int64 = 0x486f6d6570616765

const activateHomepageQuery = `
	UPDATE categories
	SET is_active_on_homepage = TRUE, updated_at = NOW()
	WHERE id = ?
	  AND (is_active_on_homepage
	       OR (SELECT COUNT(*) FROM categories WHERE is_active_on_homepage) < ?)
`

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository создает новый репозиторий категорий
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// Create вставляет категорию, уникальность имени проверяет UNIQUE индекс
func (r *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrCategoryAlreadyExists
		}
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id uint) (*entity.Category, error) {
	var category entity.Category
	result := r.db.WithContext(ctx).First(&category, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category by id: %w", result.Error)
	}
	return &category, nil
}

func (r *categoryRepository) GetByName(ctx context.Context, name string) (*entity.Category, error) {
	var category entity.Category
	result := r.db.WithContext(ctx).First(&category, "name = ?", name)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category by name: %w", result.Error)
	}
	return &category, nil
}

func (r *categoryRepository) GetAll(ctx context.Context) ([]entity.Category, error) {
	categories := make([]entity.Category, 0)
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return categories, nil
}

// GetActive возвращает категории главной страницы в порядке id
func (r *categoryRepository) GetActive(ctx context.Context, limit int) ([]entity.Category, error) {
	categories := make([]entity.Category, 0, limit)
	err := r.db.WithContext(ctx).
		Where("is_active_on_homepage = ?", true).
		Order("id ASC").
		Limit(limit).
		Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get active categories: %w", err)
	}
	return categories, nil
}

// Update применяет только переданные поля
func (r *categoryRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&entity.Category{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return ErrCategoryAlreadyExists
		}
		return fmt.Errorf("failed to update category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// Delete удаляет категорию, если на нее не ссылается ни один товар
func (r *categoryRepository) Delete(ctx context.Context, id uint) error {
	var productCount int64
	err := r.db.WithContext(ctx).
		Model(&entity.Product{}).
		Where("category_id = ?", id).
		Count(&productCount).Error
	if err != nil {
		return fmt.Errorf("failed to count products in category: %w", err)
	}
	if productCount > 0 {
		return ErrCategoryHasProducts
	}

	result := r.db.WithContext(ctx).Delete(&entity.Category{}, "id = ?", id)
	if result.Error != nil {
		// товар мог появиться между проверкой и удалением
		if isForeignKeyViolation(result.Error) {
			return ErrCategoryHasProducts
		}
		return fmt.Errorf("failed to delete category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// ActivateOnHomepage выполняет условный UPDATE под транзакционным advisory lock.
// Если UPDATE не затронул строку, отличаем отсутствие категории от превышения лимита.
func (r *categoryRepository) ActivateOnHomepage(ctx context.Context, id uint, limit int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", homepageLockKey).Error; err != nil {
			return fmt.Errorf("failed to acquire homepage lock: %w", err)
		}

		result := tx.Exec(activateHomepageQuery, id, limit)
		if result.Error != nil {
			return fmt.Errorf("failed to activate category on homepage: %w", result.Error)
		}
		if result.RowsAffected > 0 {
			return nil
		}

		var exists int64
		if err := tx.Model(&entity.Category{}).Where("id = ?", id).Count(&exists).Error; err != nil {
			return fmt.Errorf("failed to check category: %w", err)
		}
		if exists == 0 {
			return ErrCategoryNotFound
		}
		return ErrHomepageLimitReached
	})
}

func (r *categoryRepository) DeactivateOnHomepage(ctx context.Context, id uint) error {
	return r.Update(ctx, id, map[string]interface{}{"is_active_on_homepage": false})
}
