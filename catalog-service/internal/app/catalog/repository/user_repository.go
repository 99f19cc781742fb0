package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/catalog-service/internal/app/catalog/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository создает новый репозиторий пользователей
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var user entity.User
	result := r.db.WithContext(ctx).First(&user, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", result.Error)
	}
	return &user, nil
}

// FindOrCreate вставляет пользователя с ON CONFLICT (id) DO NOTHING,
// поэтому повторные события user.created не создают дубликатов
func (r *userRepository) FindOrCreate(ctx context.Context, user *entity.User) (*entity.User, bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).
		Create(user)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return nil, false, ErrUserEmailTaken
		}
		return nil, false, fmt.Errorf("failed to create user: %w", result.Error)
	}

	if result.RowsAffected == 1 {
		return user, true, nil
	}

	existing, err := r.GetByID(ctx, user.ID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}
