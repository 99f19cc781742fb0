package service

import (
	"context"
	"errors"
	"fmt"

	"storefront/catalog-service/internal/app/catalog/entity"
	"storefront/catalog-service/internal/app/catalog/repository"
	"storefront/pkg/metrics"

	"github.com/google/uuid"
)

const defaultReviewRating = 3

// ReviewService обрабатывает бизнес-логику отзывов
type ReviewService struct {
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
) *ReviewService {
	return &ReviewService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
	}
}

// CreateReview сохраняет отзыв от имени userID, рейтинг по умолчанию 3
func (s *ReviewService) CreateReview(ctx context.Context, userID string, req *entity.CreateReviewRequest) (*entity.Review, error) {
	if req.ProductID == uuid.Nil {
		return nil, newValidationError("productId is required")
	}

	rating := defaultReviewRating
	if req.Rating != nil {
		rating = *req.Rating
	}
	if err := validateRating(rating); err != nil {
		return nil, err
	}

	if _, err := s.productRepo.GetByID(ctx, req.ProductID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to check product: %w", err)
	}

	review := &entity.Review{
		UserID:    userID,
		ProductID: req.ProductID,
		Rating:    rating,
		Comment:   req.Comment,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) || errors.Is(err, repository.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	metrics.ReviewsRating.Observe(float64(rating))
	return s.getReview(ctx, review.ID)
}

// ListReviews возвращает отзывы от новых к старым; productID == nil - все отзывы
func (s *ReviewService) ListReviews(ctx context.Context, productID *uuid.UUID) ([]entity.Review, error) {
	reviews, err := s.reviewRepo.List(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	if reviews == nil {
		reviews = []entity.Review{}
	}
	return reviews, nil
}

// UpdateReview меняет только переданные поля
func (s *ReviewService) UpdateReview(ctx context.Context, actorID string, id uint, req *entity.UpdateReviewRequest) (*entity.Review, error) {
	review, err := s.authorizedReview(ctx, actorID, id)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	if req.Rating != nil {
		if err := validateRating(*req.Rating); err != nil {
			return nil, err
		}
		fields["rating"] = *req.Rating
	}
	if req.Comment != nil {
		fields["comment"] = *req.Comment
	}

	if len(fields) == 0 {
		return review, nil
	}

	if err := s.reviewRepo.Update(ctx, id, fields); err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	if req.Rating != nil {
		metrics.ReviewsRating.Observe(float64(*req.Rating))
	}
	return s.getReview(ctx, id)
}

func (s *ReviewService) DeleteReview(ctx context.Context, actorID string, id uint) error {
	if _, err := s.authorizedReview(ctx, actorID, id); err != nil {
		return err
	}

	if err := s.reviewRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete review: %w", err)
	}
	return nil
}

// authorizedReview загружает отзыв и проверяет, что actorID - автор или администратор
func (s *ReviewService) authorizedReview(ctx context.Context, actorID string, id uint) (*entity.Review, error) {
	review, err := s.getReview(ctx, id)
	if err != nil {
		return nil, err
	}
	if review.UserID == actorID {
		return review, nil
	}

	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrForbidden
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	return review, nil
}

func (s *ReviewService) getReview(ctx context.Context, id uint) (*entity.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return review, nil
}

func validateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return newValidationError("rating must be between 1 and 5")
	}
	return nil
}
