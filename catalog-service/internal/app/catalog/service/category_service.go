package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/catalog-service/internal/app/catalog/entity"
	"storefront/catalog-service/internal/app/catalog/repository"
	"storefront/catalog-service/internal/app/catalog/util"
	"storefront/pkg/logger"
	"storefront/pkg/metrics"
)

// CreateCategory создает категорию; имена сравниваются с учетом регистра
func (s *CatalogService) CreateCategory(ctx context.Context, req *entity.CreateCategoryRequest) (*entity.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, newValidationError("name is required")
	}

	if _, err := s.categoryRepo.GetByName(ctx, name); err == nil {
		return nil, ErrCategoryAlreadyExists
	} else if !errors.Is(err, repository.ErrCategoryNotFound) {
		return nil, fmt.Errorf("failed to check category name: %w", err)
	}

	category := &entity.Category{
		Name:        name,
		Description: req.Description,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, repository.ErrCategoryAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.invalidateCategories(ctx)
	return category, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id uint) (*entity.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

// ListCategories возвращает все категории, список кешируется в Redis
func (s *CatalogService) ListCategories(ctx context.Context) ([]entity.Category, error) {
	return s.cachedCategories(ctx, util.ScopeAllCategories, s.categoryRepo.GetAll)
}

// ListActiveCategories возвращает категории главной страницы (не больше HomepageCategoryLimit)
func (s *CatalogService) ListActiveCategories(ctx context.Context) ([]entity.Category, error) {
	return s.cachedCategories(ctx, util.ScopeActiveCategories, func(ctx context.Context) ([]entity.Category, error) {
		return s.categoryRepo.GetActive(ctx, entity.HomepageCategoryLimit)
	})
}

func (s *CatalogService) cachedCategories(
	ctx context.Context,
	scope util.CategoryScope,
	load func(ctx context.Context) ([]entity.Category, error),
) ([]entity.Category, error) {
	categories, found, err := s.cache.GetCategories(ctx, scope)
	if err != nil {
		logger.Warn().Err(err).Str("scope", string(scope)).Msg("Failed to read categories from cache")
	}
	if found {
		return categories, nil
	}

	categories, err = load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	if categories == nil {
		categories = []entity.Category{}
	}

	if err := s.cache.SetCategories(ctx, scope, categories, s.cacheTTL); err != nil {
		logger.Warn().Err(err).Str("scope", string(scope)).Msg("Failed to cache categories")
	}
	return categories, nil
}

// UpdateCategory применяет только переданные поля
// пустая description очищает описание, пустой name запрещен
func (s *CatalogService) UpdateCategory(ctx context.Context, id uint, req *entity.UpdateCategoryRequest) (*entity.Category, error) {
	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, newValidationError("name must not be empty")
		}
		if name != category.Name {
			existing, err := s.categoryRepo.GetByName(ctx, name)
			if err == nil && existing.ID != id {
				return nil, ErrCategoryAlreadyExists
			}
			if err != nil && !errors.Is(err, repository.ErrCategoryNotFound) {
				return nil, fmt.Errorf("failed to check category name: %w", err)
			}
			fields["name"] = name
		}
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}

	if len(fields) == 0 {
		return category, nil
	}

	if err := s.categoryRepo.Update(ctx, id, fields); err != nil {
		if errors.Is(err, repository.ErrCategoryAlreadyExists) || errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	s.invalidateCategories(ctx)
	return s.GetCategory(ctx, id)
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id uint) error {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) || errors.Is(err, repository.ErrCategoryHasProducts) {
			return err
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}

	s.invalidateCategories(ctx)
	return nil
}

// ToggleHomepage включает или выключает показ категории на главной
// Включение сверх лимита возвращает ErrHomepageLimitReached, состояние не меняется
func (s *CatalogService) ToggleHomepage(ctx context.Context, id uint, active bool) (*entity.Category, error) {
	var err error
	if active {
		err = s.categoryRepo.ActivateOnHomepage(ctx, id, entity.HomepageCategoryLimit)
	} else {
		err = s.categoryRepo.DeactivateOnHomepage(ctx, id)
	}

	if err != nil {
		if errors.Is(err, repository.ErrHomepageLimitReached) {
			metrics.CatalogHomepageToggles.WithLabelValues("rejected").Inc()
			return nil, err
		}
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to toggle homepage category: %w", err)
	}

	if active {
		metrics.CatalogHomepageToggles.WithLabelValues("activated").Inc()
	} else {
		metrics.CatalogHomepageToggles.WithLabelValues("deactivated").Inc()
	}

	s.invalidateCategories(ctx)
	return s.GetCategory(ctx, id)
}

// invalidateCategories: ошибка кеша не должна ломать уже выполненную запись
func (s *CatalogService) invalidateCategories(ctx context.Context) {
	if err := s.cache.InvalidateCategories(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to invalidate categories cache")
	}
}
