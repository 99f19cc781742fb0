package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/catalog-service/internal/app/catalog/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository создает новый репозиторий отзывов
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create сохраняет отзыв; нарушение FK переводится в отсутствие товара или пользователя
func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	if err := r.db.WithContext(ctx).Omit("User").Create(review).Error; err != nil {
		if isForeignKeyViolation(err) {
			_, constraint := pgErrorCode(err)
			if strings.Contains(constraint, "user") {
				return ErrUserNotFound
			}
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *reviewRepository) GetByID(ctx context.Context, id uint) (*entity.Review, error) {
	var review entity.Review
	result := r.db.WithContext(ctx).
		Preload("User").
		First(&review, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", result.Error)
	}
	return &review, nil
}

func (r *reviewRepository) List(ctx context.Context, productID *uuid.UUID) ([]entity.Review, error) {
	reviews := make([]entity.Review, 0)

	query := r.db.WithContext(ctx).Preload("User")
	if productID != nil {
		query = query.Where("product_id = ?", *productID)
	}

	if err := query.Order("created_at DESC").Order("id DESC").Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

func (r *reviewRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&entity.Review{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update review: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func (r *reviewRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&entity.Review{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete review: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrReviewNotFound
	}
	return nil
}
