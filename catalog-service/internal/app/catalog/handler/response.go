package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"storefront/catalog-service/internal/app/catalog/entity"
	"storefront/catalog-service/internal/app/catalog/service"
	"storefront/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var errorStatuses = []struct {
	err    error
	status int
}{
	{service.ErrValidation, http.StatusBadRequest},
	{service.ErrHomepageLimitReached, http.StatusBadRequest},
	{service.ErrUnsupportedEvent, http.StatusBadRequest},
	{service.ErrInvalidSignature, http.StatusBadRequest},
	{service.ErrForbidden, http.StatusForbidden},
	{service.ErrCategoryNotFound, http.StatusNotFound},
	{service.ErrProductNotFound, http.StatusNotFound},
	{service.ErrReviewNotFound, http.StatusNotFound},
	{service.ErrUserNotFound, http.StatusNotFound},
	{service.ErrCategoryAlreadyExists, http.StatusConflict},
	{service.ErrProductAlreadyExists, http.StatusConflict},
	{service.ErrCategoryHasProducts, http.StatusConflict},
	{service.ErrUserEmailTaken, http.StatusConflict},
	{service.ErrImageUpload, http.StatusBadGateway},
}

func respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, entity.ErrorResponse{Message: message})
}

// respondServiceError переводит доменную ошибку в HTTP статус
// неизвестные ошибки логируются, клиент получает только общее сообщение
func respondServiceError(c *gin.Context, err error, operation string) {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			message := err.Error()
			if e.status == http.StatusBadGateway {
				message = service.ErrImageUpload.Error()
				logger.Error().Err(err).Str("operation", operation).Msg("Media host error")
			}
			respondError(c, e.status, message)
			return
		}
	}

	requestID, _ := c.Get(logger.RequestIDKey)
	logger.Error().
		Err(err).
		Str("operation", operation).
		Interface("request_id", requestID).
		Msg("Request failed")
	respondError(c, http.StatusInternalServerError, "internal server error")
}

// formatValidationError берет первое поле, не прошедшее проверку
func formatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		fe := validationErrors[0]
		switch fe.Tag() {
		case "required":
			return fe.Field() + " is required"
		case "min", "max":
			return fe.Field() + " must satisfy " + fe.Tag() + "=" + fe.Param()
		case "oneof":
			return fe.Field() + " must be one of: " + fe.Param()
		default:
			return fe.Field() + " is invalid"
		}
	}
	return "invalid request"
}

func parseUintParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondError(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// newValidator называет поля в ошибках так же, как клиент их передает (json/form теги)
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return field.Name
	})
	return v
}
