package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"storefront/catalog-service/internal/app/catalog/entity"
	"storefront/catalog-service/internal/app/catalog/repository"
	"storefront/catalog-service/internal/app/catalog/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const userCreatedPayload = `{
	"type": "user.created",
	"data": {
		"id": "user_2abc",
		"username": "",
		"first_name": "Ada",
		"last_name": "Lovelace",
		"email_addresses": [{"email_address": "ada@example.com"}],
		"phone_numbers": [{"phone_number": "+15550100"}]
	}
}`

type userMocks struct {
	userRepo   *mocks.MockUserRepository
	deliveries *mocks.MockWebhookDeliveryRepository
	verifier   *mocks.MockWebhookVerifier
}

func newTestUserService() (*UserService, *userMocks) {
	m := &userMocks{
		userRepo:   new(mocks.MockUserRepository),
		deliveries: new(mocks.MockWebhookDeliveryRepository),
		verifier:   new(mocks.MockWebhookVerifier),
	}
	return NewUserService(m.userRepo, m.deliveries, m.verifier), m
}

func webhookHeaders(id string) http.Header {
	headers := http.Header{}
	headers.Set("svix-id", id)
	headers.Set("svix-timestamp", "1700000000")
	headers.Set("svix-signature", "v1,test")
	return headers
}

func TestUserService_HandleWebhook_CreatesUser(t *testing.T) {
	ctx := context.Background()
	svc, m := newTestUserService()

	payload := []byte(userCreatedPayload)
	headers := webhookHeaders("msg_1")

	m.verifier.On("Verify", payload, headers).Return(nil)
	m.deliveries.On("Record", ctx, mock.MatchedBy(func(d *entity.WebhookDelivery) bool {
		return d.DeliveryID == "msg_1" && d.SubjectID == "user_2abc" && d.EventType == "user.created"
	})).Return(nil)
	m.userRepo.On("FindOrCreate", ctx, mock.MatchedBy(func(u *entity.User) bool {
		return u.ID == "user_2abc" &&
			u.Username == "Ada Lovelace" &&
			u.Email == "ada@example.com" &&
			u.Phone == "+15550100" &&
			u.Role == entity.RoleUser
	})).Return(&entity.User{ID: "user_2abc", Username: "Ada Lovelace"}, true, nil)

	user, err := svc.HandleWebhook(ctx, payload, headers)

	require.NoError(t, err)
	assert.Equal(t, "user_2abc", user.ID)
	m.userRepo.AssertExpectations(t)
	m.deliveries.AssertExpectations(t)
}

func TestUserService_HandleWebhook_ExistingUser(t *testing.T) {
	ctx := context.Background()
	svc, m := newTestUserService()

	payload := []byte(userCreatedPayload)
	headers := webhookHeaders("msg_2")
	existing := &entity.User{ID: "user_2abc", Username: "ada"}

	m.verifier.On("Verify", payload, headers).Return(nil)
	m.deliveries.On("Record", ctx, mock.AnythingOfType("*entity.WebhookDelivery")).Return(nil)
	m.userRepo.On("FindOrCreate", ctx, mock.AnythingOfType("*entity.User")).Return(existing, false, nil)

	user, err := svc.HandleWebhook(ctx, payload, headers)

	require.NoError(t, err)
	assert.Equal(t, "ada", user.Username)
}

func TestUserService_HandleWebhook_InvalidSignature(t *testing.T) {
	ctx := context.Background()
	svc, m := newTestUserService()

	payload := []byte(userCreatedPayload)
	headers := webhookHeaders("msg_1")
	m.verifier.On("Verify", payload, headers).Return(errors.New("signature mismatch"))

	_, err := svc.HandleWebhook(ctx, payload, headers)

	assert.ErrorIs(t, err, ErrInvalidSignature)
	m.deliveries.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	m.userRepo.AssertNotCalled(t, "FindOrCreate", mock.Anything, mock.Anything)
}

func TestUserService_HandleWebhook_UnsupportedEvent(t *testing.T) {
	ctx := context.Background()
	svc, m := newTestUserService()

	payload := []byte(`{"type":"user.deleted","data":{"id":"user_2abc"}}`)
	headers := webhookHeaders("msg_3")
	m.verifier.On("Verify", payload, headers).Return(nil)

	_, err := svc.HandleWebhook(ctx, payload, headers)

	assert.ErrorIs(t, err, ErrUnsupportedEvent)
	m.deliveries.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestUserService_HandleWebhook_DuplicateDelivery(t *testing.T) {
	ctx := context.Background()
	svc, m := newTestUserService()

	payload := []byte(userCreatedPayload)
	headers := webhookHeaders("msg_1")
	m.verifier.On("Verify", payload, headers).Return(nil)
	m.deliveries.On("Record", ctx, mock.AnythingOfType("*entity.WebhookDelivery")).Return(repository.ErrDuplicateDelivery)

	_, err := svc.HandleWebhook(ctx, payload, headers)

	assert.ErrorIs(t, err, ErrDeliveryProcessed)
	m.userRepo.AssertNotCalled(t, "FindOrCreate", mock.Anything, mock.Anything)
}

func TestUserService_HandleWebhook_DeliveryLogDownStillCreates(t *testing.T) {
	ctx := context.Background()
	svc, m := newTestUserService()

	payload := []byte(userCreatedPayload)
	headers := webhookHeaders("msg_1")
	m.verifier.On("Verify", payload, headers).Return(nil)
	m.deliveries.On("Record", ctx, mock.AnythingOfType("*entity.WebhookDelivery")).Return(errors.New("mongo unavailable"))
	m.userRepo.On("FindOrCreate", ctx, mock.AnythingOfType("*entity.User")).Return(&entity.User{ID: "user_2abc"}, true, nil)

	_, err := svc.HandleWebhook(ctx, payload, headers)

	require.NoError(t, err)
}

func TestUserService_HandleWebhook_FailureForgetsDelivery(t *testing.T) {
	ctx := context.Background()
	svc, m := newTestUserService()

	payload := []byte(userCreatedPayload)
	headers := webhookHeaders("msg_4")
	m.verifier.On("Verify", payload, headers).Return(nil)
	m.deliveries.On("Record", ctx, mock.AnythingOfType("*entity.WebhookDelivery")).Return(nil)
	m.userRepo.On("FindOrCreate", ctx, mock.AnythingOfType("*entity.User")).Return(nil, false, errors.New("db down"))
	m.deliveries.On("Forget", ctx, "msg_4").Return(nil)

	_, err := svc.HandleWebhook(ctx, payload, headers)

	require.Error(t, err)
	m.deliveries.AssertExpectations(t)
}

func TestUserService_HandleWebhook_MissingEmail(t *testing.T) {
	ctx := context.Background()
	svc, m := newTestUserService()

	payload := []byte(`{"type":"user.created","data":{"id":"user_1","username":"bob"}}`)
	headers := webhookHeaders("msg_5")
	m.verifier.On("Verify", payload, headers).Return(nil)

	_, err := svc.HandleWebhook(ctx, payload, headers)

	assert.ErrorIs(t, err, ErrValidation)
}

func TestUserService_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	svc, m := newTestUserService()

	m.userRepo.On("GetByID", ctx, "user_x").Return(nil, repository.ErrUserNotFound)

	_, err := svc.GetByID(ctx, "user_x")

	assert.ErrorIs(t, err, ErrUserNotFound)
}
