package service

import (
	"errors"

	"storefront/catalog-service/internal/app/catalog/repository"
)

// Доменные ошибки репозитория пробрасываются без изменений,
// хендлеры сравнивают их через errors.Is
var (
	ErrCategoryNotFound      = repository.ErrCategoryNotFound
	ErrCategoryAlreadyExists = repository.ErrCategoryAlreadyExists
	ErrCategoryHasProducts   = repository.ErrCategoryHasProducts
	ErrHomepageLimitReached  = repository.ErrHomepageLimitReached
	ErrProductNotFound       = repository.ErrProductNotFound
	ErrProductAlreadyExists  = repository.ErrProductAlreadyExists
	ErrReviewNotFound        = repository.ErrReviewNotFound
	ErrUserNotFound          = repository.ErrUserNotFound
	ErrUserEmailTaken        = repository.ErrUserEmailTaken
)

var (
	ErrValidation        = errors.New("validation error")
	ErrForbidden         = errors.New("access forbidden")
	ErrImageUpload       = errors.New("failed to upload image")
	ErrUnsupportedEvent  = errors.New("unsupported webhook event")
	ErrInvalidSignature  = errors.New("invalid webhook signature")
	ErrDeliveryProcessed = errors.New("webhook delivery already processed")
)

// validationError добавляет к ErrValidation текст для клиента
type validationError struct {
	msg string
}

func (e *validationError) Error() string {
	return e.msg
}

func (e *validationError) Is(target error) bool {
	return target == ErrValidation
}

func newValidationError(msg string) error {
	return &validationError{msg: msg}
}
