package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"storefront/catalog-service/internal/app/catalog/entity"
	"storefront/catalog-service/internal/app/catalog/repository"
	"storefront/catalog-service/internal/app/catalog/util"
	"storefront/pkg/logger"
	"storefront/pkg/metrics"
)

const deliveryIDHeader = "svix-id"

// UserService отдает пользователей и создает их по webhook от identity provider
type UserService struct {
	userRepo   repository.UserRepository
	deliveries repository.WebhookDeliveryRepository
	verifier   util.WebhookVerifier
}

func NewUserService(
	userRepo repository.UserRepository,
	deliveries repository.WebhookDeliveryRepository,
	verifier util.WebhookVerifier,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		deliveries: deliveries,
		verifier:   verifier,
	}
}

func (s *UserService) GetByID(ctx context.Context, id string) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// HandleWebhook обрабатывает доставку от identity provider:
// 1. Проверяет подпись svix
// 2. Принимает только user.created
// 3. Отмечает svix-id в журнале доставок, повтор возвращает ErrDeliveryProcessed
// 4. Находит или создает пользователя по subject id
func (s *UserService) HandleWebhook(ctx context.Context, payload []byte, headers http.Header) (*entity.User, error) {
	if err := s.verifier.Verify(payload, headers); err != nil {
		metrics.CatalogWebhookEvents.WithLabelValues("unknown", "invalid_signature").Inc()
		logger.Warn().Err(err).Msg("Webhook signature verification failed")
		return nil, ErrInvalidSignature
	}

	var event entity.IdentityEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		metrics.CatalogWebhookEvents.WithLabelValues("unknown", "malformed").Inc()
		return nil, newValidationError("malformed webhook payload")
	}

	if event.Type != entity.EventUserCreated {
		metrics.CatalogWebhookEvents.WithLabelValues(event.Type, "unsupported").Inc()
		return nil, ErrUnsupportedEvent
	}
	if event.Data.ID == "" {
		metrics.CatalogWebhookEvents.WithLabelValues(event.Type, "malformed").Inc()
		return nil, newValidationError("user id is required")
	}

	user := event.Data.ToUser()
	if user.Email == "" {
		metrics.CatalogWebhookEvents.WithLabelValues(event.Type, "malformed").Inc()
		return nil, newValidationError("user email is required")
	}

	deliveryID := headers.Get(deliveryIDHeader)
	recorded, err := s.recordDelivery(ctx, deliveryID, event.Type, user.ID)
	if err != nil {
		metrics.CatalogWebhookEvents.WithLabelValues(event.Type, "duplicate").Inc()
		return nil, err
	}

	result, created, err := s.userRepo.FindOrCreate(ctx, user)
	if err != nil {
		if recorded {
			s.forgetDelivery(ctx, deliveryID)
		}
		metrics.CatalogWebhookEvents.WithLabelValues(event.Type, "failed").Inc()
		if errors.Is(err, repository.ErrUserEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find or create user: %w", err)
	}

	if created {
		metrics.CatalogWebhookEvents.WithLabelValues(event.Type, "created").Inc()
		logger.Info().Str("user_id", result.ID).Msg("User created from webhook")
	} else {
		metrics.CatalogWebhookEvents.WithLabelValues(event.Type, "existing").Inc()
	}

	return result, nil
}

// recordDelivery возвращает recorded == true, если запись добавлена в журнал
// недоступность MongoDB не блокирует создание пользователя: find-or-create идемпотентен сам по себе
func (s *UserService) recordDelivery(ctx context.Context, deliveryID, eventType, subjectID string) (bool, error) {
	if deliveryID == "" {
		return false, nil
	}

	err := s.deliveries.Record(ctx, &entity.WebhookDelivery{
		DeliveryID: deliveryID,
		EventType:  eventType,
		SubjectID:  subjectID,
		ReceivedAt: time.Now().UTC(),
	})
	if err == nil {
		return true, nil
	}
	if errors.Is(err, repository.ErrDuplicateDelivery) {
		return false, ErrDeliveryProcessed
	}

	logger.Warn().Err(err).Str("delivery_id", deliveryID).Msg("Failed to record webhook delivery")
	return false, nil
}

func (s *UserService) forgetDelivery(ctx context.Context, deliveryID string) {
	if err := s.deliveries.Forget(ctx, deliveryID); err != nil {
		logger.Warn().Err(err).Str("delivery_id", deliveryID).Msg("Failed to forget webhook delivery")
	}
}
